package model

import "github.com/ayanmadaan/trading-engine/internal/model/enum"

// EventKind tags the union of heterogeneous inputs the event loop serializes
// (§3 "Event", §4.1). The teacher's schema.EventType plays the analogous role
// for its WAL records; here the tag drives dispatcher handler lookup instead.
type EventKind uint8

const (
	_event_kind_beg EventKind = iota
	EventStartTrading
	EventStopTrading
	EventMarketUpdate
	EventOrderUpdate
	EventPositionReconResult
	EventPnlReconResult
	EventWebSocketDisconnected
	_event_kind_end
)

func (k EventKind) IsAvailable() bool {
	return k > _event_kind_beg && k < _event_kind_end
}

func (k EventKind) String() string {
	switch k {
	case EventStartTrading:
		return "start_trading"
	case EventStopTrading:
		return "stop_trading"
	case EventMarketUpdate:
		return "market_update"
	case EventOrderUpdate:
		return "order_update"
	case EventPositionReconResult:
		return "position_recon_result"
	case EventPnlReconResult:
		return "pnl_recon_result"
	case EventWebSocketDisconnected:
		return "websocket_disconnected"
	default:
		return "unknown"
	}
}

// Event is the tagged union pushed through the event queue. Only the field(s)
// relevant to Kind are populated; this mirrors the teacher's flattened
// callback-chain-to-enum-variant design note (§9).
type Event struct {
	Kind EventKind

	// EventMarketUpdate / EventOrderUpdate / EventWebSocketDisconnected
	Venue enum.Venue

	// EventStopTrading
	Reason string

	// EventOrderUpdate
	Order Order

	// EventOrderUpdate, ack/reject frames only (§4.2 "Ack and reject
	// routing"): IsAck distinguishes an ack/nack frame, routed to the order
	// manager's reqId correlation table, from a status/fill frame routed by
	// client-order-id.
	IsAck      bool
	AckReqID   uint64
	AckRetCode string

	// EventPositionReconResult
	ReconStatus enum.ReconStatus

	// EventPnlReconResult
	PnlOK bool

	// EventWebSocketDisconnected
	ReachedRetryLimit bool

	// TraceID is the emitting venue connector's own increasing sequence
	// number for this event, after the teacher's EventHeader.TraceID (§12).
	// Events the strategy raises itself leave it zero, and it is not carried
	// over to the orders or events that follow from this one.
	TraceID uint64

	// TsEvent is the nanosecond timestamp the originating condition occurred;
	// TsRecv is when the dispatcher observed it.
	TsEvent int64
	TsRecv  int64
}
