// Package hedge implements the exposure-flattening algorithm of §4.6: given
// the strategy's quote-side and hedge-side positions, compute and submit the
// market order needed to bring total exposure back under min_hedge_size,
// netting out hedge orders already in flight. It is grounded on
// ordermgr.Manager's open-order bookkeeping and position.Manager's
// lock-free position read.
package hedge

import (
	"math"

	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
	"github.com/yanun0323/logs"
)

// PositionSource is the subset of position.Manager the hedger reads.
type PositionSource interface {
	Position() float64
}

// OrderSubmitter is the subset of ordermgr.Manager the hedger drives.
type OrderSubmitter interface {
	PlaceOrder(price model.Price, qty model.Quantity, side enum.OrderSide, instrument, orderType, tdMode string, banAmend bool) int64
	OpenOrders() []model.Order
}

// Config parameterizes one instrument's hedger.
type Config struct {
	Instrument   string
	OrderType    string
	TdMode       string
	MinHedgeSize float64

	QuotePosition PositionSource
	HedgePosition PositionSource
	OrderMgr      OrderSubmitter
	Health        *HealthCheck
}

// Hedger evaluates exposure and submits flattening market orders (§4.6).
type Hedger struct {
	cfg Config
}

// New builds a Hedger.
func New(cfg Config) *Hedger {
	return &Hedger{cfg: cfg}
}

// Result describes the outcome of one Evaluate call.
type Result struct {
	Submitted     bool
	ClientOrderID int64
	Side          enum.OrderSide
	Size          float64
	Reason        string
}

// Evaluate runs the §4.6 algorithm once: health check, exposure calculation,
// in-flight netting, and (if still over min_hedge_size) a market order.
func (h *Hedger) Evaluate() Result {
	if h.cfg.Health != nil {
		if ok, reason := h.cfg.Health.Check(); !ok {
			return Result{Reason: reason}
		}
	}

	totalExposure := h.cfg.QuotePosition.Position() + h.cfg.HedgePosition.Position()
	if math.Abs(totalExposure) < h.cfg.MinHedgeSize {
		return Result{Reason: "exposure within min_hedge_size"}
	}

	reduceSide := enum.OrderSideSell
	if totalExposure < 0 {
		reduceSide = enum.OrderSideBuy
	}

	potentialFills := h.potentialFillsOnSide(reduceSide)
	unhedged := math.Max(0, math.Abs(totalExposure)-potentialFills)
	if unhedged < h.cfg.MinHedgeSize {
		return Result{Reason: "unhedged exposure within min_hedge_size after in-flight netting"}
	}

	clOrdID := h.cfg.OrderMgr.PlaceOrder(model.Price(""), model.NewQuantity(unhedged), reduceSide, h.cfg.Instrument, h.cfg.OrderType, h.cfg.TdMode, false)
	if clOrdID == 0 {
		logs.Errorf("hedge[%s]: market order submission failed, side=%s size=%.8f", h.cfg.Instrument, reduceSide, unhedged)
		return Result{Reason: "order submission failed"}
	}

	return Result{Submitted: true, ClientOrderID: clOrdID, Side: reduceSide, Size: unhedged}
}

// potentialFillsOnSide sums the remaining quantity of PENDING, LIVE, and
// PARTIALLY_FILLED hedge orders on side, to avoid double-hedging against a
// prior hedge still in flight (§4.6 step 3, rationale).
func (h *Hedger) potentialFillsOnSide(side enum.OrderSide) float64 {
	var sum float64
	for _, o := range h.cfg.OrderMgr.OpenOrders() {
		if o.Side != side {
			continue
		}
		remaining := o.SubmitQty.Float64() - o.CumulativeFilledQty.Float64()
		if remaining > 0 {
			sum += remaining
		}
	}
	return sum
}
