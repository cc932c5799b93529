// Package strategy wires the event loop, venue connectors, order managers,
// position trackers, the quote ladder generator, and the hedger into one
// running cross-exchange market-making strategy (§4, §5). It is grounded on
// the teacher's cmd/trader/main.go assembly style — construct every
// component, wire its callbacks into the next stage, then fan out the
// independent startup steps — generalized from that file's WAL/record-mode
// plumbing to this domain's dispatcher-driven quote/hedge loop, and its
// sync.WaitGroup fan-out is generalized to golang.org/x/sync/errgroup so a
// failure in one startup step (e.g. a failed position warmup) cancels the
// others instead of leaving them to run to no purpose.
package strategy

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayanmadaan/trading-engine/internal/audit"
	"github.com/ayanmadaan/trading-engine/internal/book"
	"github.com/ayanmadaan/trading-engine/internal/errors"
	"github.com/ayanmadaan/trading-engine/internal/eventloop"
	"github.com/ayanmadaan/trading-engine/internal/hedge"
	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
	"github.com/ayanmadaan/trading-engine/internal/obs"
	"github.com/ayanmadaan/trading-engine/internal/ordermgr"
	"github.com/ayanmadaan/trading-engine/internal/position"
	"github.com/ayanmadaan/trading-engine/internal/quote"
	"github.com/ayanmadaan/trading-engine/internal/support"
	"github.com/ayanmadaan/trading-engine/internal/venue"
	"github.com/yanun0323/logs"
)

// VenueBinding bundles one exchange's two channels (market data, order
// routing) and its position tracker into the unit the strategy drives.
type VenueBinding struct {
	Venue      enum.Venue
	Instrument string

	MarketData *venue.MarketDataConnector
	OrderRoute *venue.OrderRouteConnector
	RejectMap  ordermgr.RejectCodeMap

	PositionCfg position.Config
	ReconCfg    position.ReconConfig
}

// Config parameterizes one running strategy instance (§4, §6).
type Config struct {
	LiveTradingEnabled bool
	ReadyTimeout       time.Duration

	OrderType string
	TdMode    string

	Quote VenueBinding
	Hedge VenueBinding

	// ReferenceBook is the book the ladder generator prices against
	// (§6 quoting_reference_price.source resolves to one of the two venues'
	// books, or a dedicated faster feed wired in by the caller).
	ReferenceBook *book.Book

	Ladder     quote.Config
	MidShifter *quote.MidShifter

	OrderHealthMinimumDistance float64

	RateLimiter *support.TokenBucket
	Cooldown    *support.Cooldown
	Pending     *support.PendingOps

	HedgeHealth  hedge.HealthCheck
	MinHedgeSize float64

	Audit   *audit.Store
	Metrics *obs.Metrics
	Trace   *obs.TraceGenerator
}

// Strategy owns every live component for one instrument pair and drives them
// from the single dispatcher thread of its eventloop.Loop (§4.1, §5).
type Strategy struct {
	cfg  Config
	loop *eventloop.Loop

	quoteOrderMgr *ordermgr.Manager
	hedgeOrderMgr *ordermgr.Manager
	quotePosition *position.Manager
	hedgePosition *position.Manager
	quoteRecon    *position.Recon
	hedgeRecon    *position.Recon

	ladder *quote.Generator
	hedger *hedge.Hedger
	health *support.OrderHealthCheck

	liveOrders [2][]int64 // indexed by quote.SideIndex; parallel to the ladder's rungs

	cancel context.CancelFunc
}

// New assembles every component from cfg but starts nothing.
func New(cfg Config) *Strategy {
	s := &Strategy{cfg: cfg}
	s.loop = eventloop.New()

	s.quotePosition = position.New(cfg.Quote.PositionCfg)
	s.hedgePosition = position.New(cfg.Hedge.PositionCfg)

	quoteReconCfg := cfg.Quote.ReconCfg
	quoteReconCfg.OnResult = func(status enum.ReconStatus) { s.onReconResult(cfg.Quote.Venue, status) }
	s.quoteRecon = position.NewRecon(s.quotePosition, quoteReconCfg)

	hedgeReconCfg := cfg.Hedge.ReconCfg
	hedgeReconCfg.OnResult = func(status enum.ReconStatus) { s.onReconResult(cfg.Hedge.Venue, status) }
	s.hedgeRecon = position.NewRecon(s.hedgePosition, hedgeReconCfg)

	s.quoteOrderMgr = ordermgr.New(ordermgr.Config{
		Venue:     cfg.Quote.Venue,
		Sender:    cfg.Quote.OrderRoute,
		IsReady:   func() bool { return cfg.Quote.OrderRoute.State() == venue.StateOpen },
		RejectMap: cfg.Quote.RejectMap,
		OnStatus:  func(o model.Order) { s.onOrderStatus(cfg.Quote.Venue, o) },
	})
	s.hedgeOrderMgr = ordermgr.New(ordermgr.Config{
		Venue:     cfg.Hedge.Venue,
		Sender:    cfg.Hedge.OrderRoute,
		IsReady:   func() bool { return cfg.Hedge.OrderRoute.State() == venue.StateOpen },
		RejectMap: cfg.Hedge.RejectMap,
		OnStatus:  func(o model.Order) { s.onOrderStatus(cfg.Hedge.Venue, o) },
	})

	s.ladder = quote.New(cfg.Ladder, cfg.MidShifter, cfg.ReferenceBook, cfg.Quote.MarketData.Book)

	s.health = &support.OrderHealthCheck{
		ReferenceBook:   cfg.ReferenceBook,
		Mid:             cfg.MidShifter,
		MinimumDistance: cfg.OrderHealthMinimumDistance,
	}

	health := cfg.HedgeHealth
	health.HedgeBook = cfg.Hedge.MarketData.Book
	s.hedger = hedge.New(hedge.Config{
		Instrument:    cfg.Hedge.Instrument,
		OrderType:     cfg.OrderType,
		TdMode:        cfg.TdMode,
		MinHedgeSize:  cfg.MinHedgeSize,
		QuotePosition: s.quotePosition,
		HedgePosition: s.hedgePosition,
		OrderMgr:      s.hedgeOrderMgr,
		Health:        &health,
	})

	s.loop.On(model.EventMarketUpdate, s.onMarketUpdate)
	s.loop.On(model.EventOrderUpdate, s.onOrderUpdate)
	s.loop.On(model.EventWebSocketDisconnected, s.onWebSocketDisconnected)
	s.loop.On(model.EventStopTrading, s.onStopTrading)
	s.loop.OnHandlerError(func(e model.Event, r any) {
		cfg.Metrics.IncHandlerError()
		logs.Errorf("strategy: handler panic kind=%s recovered=%+v", e.Kind.String(), r)
	})

	return s
}

// Start warms up both position managers, opens every connector, starts both
// reconciliation loops, and blocks until is_trading_ready() or ReadyTimeout
// elapses (§4.2, §5). The returned error is non-nil only on a readiness
// timeout or a failed position warmup; the strategy keeps running
// regardless, since live_trading_enabled (not readiness) gates order
// placement.
func (s *Strategy) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.loop.Start()

	warmupCtx, warmupCancel := context.WithTimeout(ctx, s.cfg.ReadyTimeout)
	defer warmupCancel()
	g, gctx := errgroup.WithContext(warmupCtx)
	g.Go(func() error { return s.quotePosition.Warmup(gctx) })
	g.Go(func() error { return s.hedgePosition.Warmup(gctx) })
	if err := g.Wait(); err != nil {
		logs.Errorf("strategy: position warmup failed: %+v", err)
	}

	s.cfg.Quote.MarketData.Start(ctx)
	s.cfg.Quote.OrderRoute.Start(ctx)
	s.cfg.Hedge.MarketData.Start(ctx)
	s.cfg.Hedge.OrderRoute.Start(ctx)

	s.quoteRecon.Start(ctx)
	s.hedgeRecon.Start(ctx)

	return s.waitReady(ctx)
}

func (s *Strategy) waitReady(ctx context.Context) error {
	deadline := time.Now().Add(s.cfg.ReadyTimeout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		if s.isTradingReady() {
			return nil
		}
		if time.Now().After(deadline) {
			return errors.ErrStrategyReadyTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// isTradingReady reads the bookWarmedUp flag across every market-data
// connector, both position managers' warmed-up flag, and every channel's
// connection state (§4.2: "the strategy's is_trading_ready() predicate reads
// this flag across all connectors").
func (s *Strategy) isTradingReady() bool {
	if !s.cfg.Quote.MarketData.IsWarmedUp() || !s.cfg.Hedge.MarketData.IsWarmedUp() {
		return false
	}
	if !s.quotePosition.IsWarmedUp() || !s.hedgePosition.IsWarmedUp() {
		return false
	}
	if s.cfg.Quote.MarketData.State() != venue.StateOpen || s.cfg.Quote.OrderRoute.State() != venue.StateOpen {
		return false
	}
	if s.cfg.Hedge.MarketData.State() != venue.StateOpen || s.cfg.Hedge.OrderRoute.State() != venue.StateOpen {
		return false
	}
	return true
}

// Stop cancels every resting order, stops both reconciliation loops and all
// four connectors, and drains the dispatcher.
func (s *Strategy) Stop() {
	s.cancelAllOpenOrders(s.quoteOrderMgr, s.cfg.Quote.Instrument)
	s.cancelAllOpenOrders(s.hedgeOrderMgr, s.cfg.Hedge.Instrument)

	s.quoteRecon.Stop()
	s.hedgeRecon.Stop()

	s.cfg.Quote.MarketData.Stop()
	s.cfg.Quote.OrderRoute.Stop()
	s.cfg.Hedge.MarketData.Stop()
	s.cfg.Hedge.OrderRoute.Stop()

	if s.cancel != nil {
		s.cancel()
	}
	s.loop.Stop()
}

func (s *Strategy) cancelAllOpenOrders(mgr *ordermgr.Manager, instrument string) {
	for _, o := range mgr.OpenOrders() {
		mgr.CancelOrder(o.ClientOrderID, instrument)
	}
}

// Submit feeds one externally observed event (a market-data tick, an order
// update, a disconnect) into the dispatcher. Connectors call this directly
// via the submit callback they were constructed with.
func (s *Strategy) Submit(e model.Event) {
	s.cfg.Metrics.ObserveEvent(e)
	s.loop.Submit(e)
}

func (s *Strategy) onMarketUpdate(model.Event) {
	s.ladder.MarkDirty()
	s.syncSide(enum.SideBid)
	s.syncSide(enum.SideAsk)

	if result := s.hedger.Evaluate(); result.Submitted {
		logs.Infof("hedge[%s]: submitted clOrdId=%d side=%s size=%.8f", s.cfg.Hedge.Instrument, result.ClientOrderID, result.Side.String(), result.Size)
	}
}

// syncSide refreshes one side's target ladder and reconciles it against the
// orders currently resting on the quote venue (§4.5, §4.7).
func (s *Strategy) syncSide(side enum.Side) {
	target, err := s.ladder.Refresh(side)
	if err != nil {
		return
	}

	healthy, err := s.health.IsHealthy(target, side)
	if err != nil || !healthy {
		s.cancelSide(side)
		return
	}

	if !s.cfg.LiveTradingEnabled {
		return
	}

	idx := quote.SideIndex(side)
	live := s.liveOrders[idx]

	for i, rung := range target {
		if i < len(live) && live[i] != 0 {
			existing, ok := s.quoteOrderMgr.Order(live[i])
			if ok && !existing.Status.IsTerminal() {
				if !model.EqualEpsilon(existing.SubmitPrice.Float64(), rung.Price.Float64()) {
					s.modifyRung(side, i, rung)
				}
				continue
			}
		}
		s.placeRung(side, i, rung)
	}

	for i := len(target); i < len(live); i++ {
		if live[i] != 0 {
			s.quoteOrderMgr.CancelOrder(live[i], s.cfg.Quote.Instrument)
		}
	}
	if len(live) > len(target) {
		s.liveOrders[idx] = live[:len(target)]
	}
}

func (s *Strategy) cancelSide(side enum.Side) {
	idx := quote.SideIndex(side)
	for _, id := range s.liveOrders[idx] {
		if id != 0 {
			s.quoteOrderMgr.CancelOrder(id, s.cfg.Quote.Instrument)
		}
	}
	s.liveOrders[idx] = s.liveOrders[idx][:0]
}

func (s *Strategy) placeRung(side enum.Side, i int, rung model.TargetOrder) {
	if s.cfg.RateLimiter != nil && !s.cfg.RateLimiter.TryConsume(time.Now()) {
		return
	}
	clOrdID := s.quoteOrderMgr.PlaceOrder(rung.Price, rung.Size, side.QuoteSide(), s.cfg.Quote.Instrument, s.cfg.OrderType, s.cfg.TdMode, false)
	if clOrdID == 0 {
		return
	}
	if s.cfg.Pending != nil {
		s.cfg.Pending.Submission.Track(clOrdID, time.Now())
	}
	s.setLive(side, i, clOrdID)
}

func (s *Strategy) modifyRung(side enum.Side, i int, rung model.TargetOrder) {
	idx := quote.SideIndex(side)
	id := s.liveOrders[idx][i]
	if s.cfg.RateLimiter != nil && !s.cfg.RateLimiter.TryConsume(time.Now()) {
		return
	}
	sent := s.quoteOrderMgr.ModifyOrder(id, rung.Size, rung.Price, s.cfg.Quote.Instrument)
	if sent == 0 {
		return
	}
	if s.cfg.Pending != nil {
		s.cfg.Pending.Modification.Track(id, time.Now())
	}
}

func (s *Strategy) setLive(side enum.Side, i int, clOrdID int64) {
	idx := quote.SideIndex(side)
	for len(s.liveOrders[idx]) <= i {
		s.liveOrders[idx] = append(s.liveOrders[idx], 0)
	}
	s.liveOrders[idx][i] = clOrdID
}

func (s *Strategy) onOrderUpdate(e model.Event) {
	mgr := s.quoteOrderMgr
	if e.Venue == s.cfg.Hedge.Venue {
		mgr = s.hedgeOrderMgr
	}
	if e.IsAck {
		mgr.HandleAck(e.AckReqID, e.AckRetCode, e.TsEvent)
		return
	}
	mgr.HandleStatusUpdate(e.Order)
}

// onOrderStatus is wired as both order managers' OnStatus callback. It
// applies fills to the matching position manager and records terminal
// outcomes (§4.3, §4.4, §4.6).
func (s *Strategy) onOrderStatus(v enum.Venue, o model.Order) {
	posMgr := s.quotePosition
	if v == s.cfg.Hedge.Venue {
		posMgr = s.hedgePosition
	}

	if o.LastFillQty.Float64() > 0 {
		posMgr.UpdatePositionByFillSize(o.LastFillQty.Float64(), o.Side)
		if o.TsFillExchange > 0 {
			s.cfg.Metrics.ObserveFill(time.Duration(o.TsFillObservedLocal - o.TsFillExchange))
		}
	}

	if o.Status.IsTerminal() {
		s.cfg.Audit.RecordOrder(o)
		if s.cfg.Pending != nil {
			s.cfg.Pending.Submission.Resolve(o.ClientOrderID)
			s.cfg.Pending.Modification.Resolve(o.ClientOrderID)
			s.cfg.Pending.Cancellation.Resolve(o.ClientOrderID)
		}
		if o.Status == enum.OrderStatusRejected {
			s.cfg.Metrics.IncRejectReason(o.RejectReason)
		}
	}
}

func (s *Strategy) onReconResult(v enum.Venue, status enum.ReconStatus) {
	s.cfg.Metrics.IncReconStatus(status)
	instrument := s.cfg.Quote.Instrument
	if v == s.cfg.Hedge.Venue {
		instrument = s.cfg.Hedge.Instrument
	}
	s.cfg.Audit.RecordRecon(v, instrument, status, 0)

	if status.IsTerminal() {
		s.loop.Submit(model.Event{Kind: model.EventStopTrading, Venue: v, Reason: "recon: " + status.String()})
	}
}

func (s *Strategy) onWebSocketDisconnected(e model.Event) {
	if s.cfg.Cooldown != nil {
		s.cfg.Cooldown.StartCooldown(time.Now(), s.cfg.ReadyTimeout)
	}
	if e.ReachedRetryLimit {
		s.loop.Submit(model.Event{Kind: model.EventStopTrading, Venue: e.Venue, Reason: "websocket retry limit exceeded"})
	}
}

func (s *Strategy) onStopTrading(e model.Event) {
	logs.Errorf("strategy: stopping, reason=%s", e.Reason)
	s.cancelAllOpenOrders(s.quoteOrderMgr, s.cfg.Quote.Instrument)
	s.cancelAllOpenOrders(s.hedgeOrderMgr, s.cfg.Hedge.Instrument)
}

// MetricsSnapshot exposes the running strategy's metrics for shutdown
// logging (§12).
func (s *Strategy) MetricsSnapshot() obs.Snapshot {
	return s.cfg.Metrics.Snapshot()
}
