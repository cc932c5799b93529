// Package ordermgr implements the order map, request-id correlation, and
// venue-reject-code translation of §4.3. It is grounded on the teacher's
// order/delegator request/response correlation pattern (a map from the
// caller's request-id to the order awaiting an ack), generalized from one
// venue's wire format to the domain's venue-independent Order model, and on
// internal/bus.Queue's single-consumer assumption: like book.Book, Manager
// carries no internal locking because every call arrives serialized off the
// event loop (§4.1, §5).
package ordermgr

import (
	"time"

	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
	"github.com/yanun0323/logs"
)

// DefaultRetainedPerQueue bounds each of the three terminal-order FIFOs
// (§4.3: "if queue.size > N_retained ..., the head id is popped").
const DefaultRetainedPerQueue = 500

// OrderSender is the subset of venue.OrderRouteConnector the order manager
// drives. Accepting an interface keeps Manager testable without a live
// websocket connection.
type OrderSender interface {
	SendOrder(price model.Price, qty model.Quantity, side enum.OrderSide, reqID uint64, instrument, orderType, tdMode string, banAmend bool) int64
	SendCancelOrder(clOrdID int64, reqID uint64, instrument string) int64
	ModifyOrder(clOrdID int64, newQty model.Quantity, newPrice model.Price, reqID uint64, instrument string) int64
}

// AckKind distinguishes which outbound operation an ack/reject correlates to,
// since each writes a different exchange-timestamp field on the order.
type AckKind uint8

const (
	_ack_kind_beg AckKind = iota
	AckNew
	AckModify
	AckCancel
	_ack_kind_end
)

func (k AckKind) IsAvailable() bool { return k > _ack_kind_beg && k < _ack_kind_end }

// pendingAck is the request-id correlation entry (§4.3: "correlate
// request-ids to order handlers").
type pendingAck struct {
	clOrdID int64
	kind    AckKind
}

// Manager offers placeOrder/cancelOrder/modifyOrder to upstream callers and
// owns the order map, the request-id correlation map, and the three
// bounded retention FIFOs (§4.3).
type Manager struct {
	venue     enum.Venue
	sender    OrderSender
	isReady   func() bool
	rejectMap RejectCodeMap
	onStatus  func(model.Order)
	retainN   int

	nextReqID uint64

	orders  map[int64]*model.Order
	pending map[uint64]pendingAck

	cancelQueue   []int64
	filledQueue   []int64
	rejectedQueue []int64
	retained      map[int64]struct{}
}

// Config constructs a Manager.
type Config struct {
	Venue     enum.Venue
	Sender    OrderSender
	IsReady   func() bool
	RejectMap RejectCodeMap
	OnStatus  func(model.Order)
	RetainN   int
}

// New builds an order manager bound to one venue's order-routing channel.
func New(cfg Config) *Manager {
	if cfg.RetainN <= 0 {
		cfg.RetainN = DefaultRetainedPerQueue
	}
	return &Manager{
		venue:     cfg.Venue,
		sender:    cfg.Sender,
		isReady:   cfg.IsReady,
		rejectMap: cfg.RejectMap,
		onStatus:  cfg.OnStatus,
		retainN:   cfg.RetainN,
		orders:    make(map[int64]*model.Order),
		pending:   make(map[uint64]pendingAck),
		retained:  make(map[int64]struct{}),
	}
}

// Order returns the live order handler for clOrdID, if any.
func (m *Manager) Order(clOrdID int64) (model.Order, bool) {
	o, ok := m.orders[clOrdID]
	if !ok {
		return model.Order{}, false
	}
	return o.Snapshot(), true
}

// Len returns the number of orders currently tracked (open plus not-yet-evicted terminal).
func (m *Manager) Len() int { return len(m.orders) }

// OpenOrders returns a snapshot of every order still in an open status
// (PENDING, LIVE, PARTIALLY_FILLED). Used by the hedger to net out
// in-flight hedge orders before sizing a new one (§4.6 step 3).
func (m *Manager) OpenOrders() []model.Order {
	open := make([]model.Order, 0, len(m.orders))
	for _, o := range m.orders {
		if o.Status.IsOpen() {
			open = append(open, o.Snapshot())
		}
	}
	return open
}

func (m *Manager) allocReqID() uint64 {
	m.nextReqID++
	return m.nextReqID
}

// PlaceOrder implements the public contract's step 1-3 for a new order
// (§4.3). Returns the client-order-id, or 0 on any failure.
func (m *Manager) PlaceOrder(price model.Price, qty model.Quantity, side enum.OrderSide, instrument, orderType, tdMode string, banAmend bool) int64 {
	if !m.ready() {
		m.synthesizeWSFailure(instrument, side, price, qty)
		return 0
	}

	reqID := m.allocReqID()
	clOrdID := m.sender.SendOrder(price, qty, side, reqID, instrument, orderType, tdMode, banAmend)
	if clOrdID == 0 {
		return 0
	}

	order := &model.Order{
		ClientOrderID: clOrdID,
		Venue:         m.venue,
		Instrument:    instrument,
		Side:          side,
		SubmitPrice:   price,
		SubmitQty:     qty,
		Status:        enum.OrderStatusPending,
		TsSubmitLocal: time.Now().UnixNano(),
	}
	m.orders[clOrdID] = order
	m.pending[reqID] = pendingAck{clOrdID: clOrdID, kind: AckNew}
	return clOrdID
}

// CancelOrder requests cancellation of a resting order. Returns clOrdID on
// success, 0 on failure.
func (m *Manager) CancelOrder(clOrdID int64, instrument string) int64 {
	if !m.ready() {
		return 0
	}
	if _, ok := m.orders[clOrdID]; !ok {
		return 0
	}
	reqID := m.allocReqID()
	sent := m.sender.SendCancelOrder(clOrdID, reqID, instrument)
	if sent == 0 {
		return 0
	}
	m.orders[clOrdID].TsCancelLocal = time.Now().UnixNano()
	m.pending[reqID] = pendingAck{clOrdID: clOrdID, kind: AckCancel}
	return sent
}

// ModifyOrder requests a price/quantity amendment of a resting order.
// Returns clOrdID on success, 0 on failure.
func (m *Manager) ModifyOrder(clOrdID int64, newQty model.Quantity, newPrice model.Price, instrument string) int64 {
	if !m.ready() {
		return 0
	}
	if _, ok := m.orders[clOrdID]; !ok {
		return 0
	}
	reqID := m.allocReqID()
	sent := m.sender.ModifyOrder(clOrdID, newQty, newPrice, reqID, instrument)
	if sent == 0 {
		return 0
	}
	m.orders[clOrdID].TsModifyLocal = time.Now().UnixNano()
	m.pending[reqID] = pendingAck{clOrdID: clOrdID, kind: AckModify}
	return sent
}

// HandleAck processes one ack/reject frame carrying reqId and a venue retCode
// (§4.3: "Ack and reject routing"). rawRetCode == "0" means success; any
// other value is translated via the manager's reject map.
func (m *Manager) HandleAck(reqID uint64, rawRetCode string, exchangeTs int64) {
	p, ok := m.pending[reqID]
	if !ok {
		return
	}
	delete(m.pending, reqID)

	order, ok := m.orders[p.clOrdID]
	if !ok {
		return
	}

	if rawRetCode == "0" || rawRetCode == "" {
		switch p.kind {
		case AckNew:
			order.TsAcceptedByExchange = exchangeTs
			if order.Status == enum.OrderStatusPending {
				order.Status = enum.OrderStatusLive
				order.EverLive = true
			}
		case AckModify:
			order.TsModifyConfirmed = exchangeTs
		case AckCancel:
			order.TsCancelConfirmed = exchangeTs
		}
		return
	}

	if p.kind != AckNew {
		// Reject of a cancel/modify does not invalidate the still-live order;
		// only a rejected new order transitions straight to REJECTED.
		return
	}
	order.Status = enum.OrderStatusRejected
	order.RejectReason = m.rejectMap.Translate(rawRetCode)
	order.TsRejected = exchangeTs
	m.retainTerminal(order)
}

// HandleStatusUpdate applies one order/execution-channel frame (§4.3:
// "Order-status-update routing"). incoming must carry ClientOrderID as
// parsed from the venue-specific field; incoming.ClientOrderID not found in
// the order map is logged and dropped, never synthesized into a new handler.
func (m *Manager) HandleStatusUpdate(incoming model.Order) {
	order, ok := m.orders[incoming.ClientOrderID]
	if !ok {
		logs.Warnf("ordermgr[%s]: status update for clOrdId=%d not from this run, dropped", m.venue.String(), incoming.ClientOrderID)
		return
	}

	if incoming.CumulativeFilledQty.Float64() > order.CumulativeFilledQty.Float64() {
		order.CumulativeFilledQty = incoming.CumulativeFilledQty
	}
	order.Status = incoming.Status
	order.ExchangeRemainingQty = incoming.ExchangeRemainingQty
	order.ExchangePrice = incoming.ExchangePrice
	order.LastFillPrice = incoming.LastFillPrice
	order.LastFillQty = incoming.LastFillQty
	order.LastFillFee = incoming.LastFillFee
	order.LastFillIsMaker = incoming.LastFillIsMaker
	order.CumulativeFee = order.CumulativeFee.Add(incoming.LastFillFee)
	order.ExchangeOrderID = incoming.ExchangeOrderID
	order.LastFillTxID = incoming.LastFillTxID
	if incoming.TsFillExchange != 0 {
		order.TsFillExchange = incoming.TsFillExchange
	}
	order.TsFillObservedLocal = time.Now().UnixNano()

	if order.Status.IsTerminal() {
		m.retainTerminal(order)
	}

	if m.onStatus != nil {
		m.onStatus(order.Snapshot())
	}
}

// retainTerminal pushes clOrdID onto the FIFO matching its terminal status
// and evicts the oldest entry past retainN (§4.3 retention policy). Guarded
// by m.retained so a given order is retained at most once, keeping the three
// queues disjoint (§4.3 invariant).
func (m *Manager) retainTerminal(order *model.Order) {
	if _, already := m.retained[order.ClientOrderID]; already {
		return
	}
	m.retained[order.ClientOrderID] = struct{}{}

	queue := m.queueFor(order.Status)
	if queue == nil {
		return
	}
	*queue = append(*queue, order.ClientOrderID)
	if len(*queue) > m.retainN {
		evict := (*queue)[0]
		*queue = (*queue)[1:]
		delete(m.orders, evict)
		delete(m.retained, evict)
	}
}

func (m *Manager) queueFor(status enum.OrderStatus) *[]int64 {
	switch status {
	case enum.OrderStatusCanceled:
		return &m.cancelQueue
	case enum.OrderStatusFilled:
		return &m.filledQueue
	case enum.OrderStatusRejected:
		return &m.rejectedQueue
	default:
		return nil
	}
}

func (m *Manager) ready() bool {
	return m.isReady == nil || m.isReady()
}

func (m *Manager) synthesizeWSFailure(instrument string, side enum.OrderSide, price model.Price, qty model.Quantity) {
	if m.onStatus == nil {
		return
	}
	m.onStatus(model.Order{
		Venue:        m.venue,
		Instrument:   instrument,
		Side:         side,
		SubmitPrice:  price,
		SubmitQty:    qty,
		Status:       enum.OrderStatusRejected,
		RejectReason: enum.RejectReasonWSFailure,
		TsRejected:   time.Now().UnixNano(),
	})
}
