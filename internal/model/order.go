package model

import "github.com/ayanmadaan/trading-engine/internal/model/enum"

// Order is an individual order's mutable record, keyed by client-order-id (§3).
// Fields are grouped the way the teacher's adapter.Order / og.Order structs are:
// immutable-at-creation, lifecycle state, execution state, exchange-reported
// state, and a block of nanosecond timestamps.
type Order struct {
	// immutable at creation
	ClientOrderID int64
	Venue         enum.Venue
	Instrument    string
	Side          enum.OrderSide
	SubmitPrice   Price
	SubmitQty     Quantity

	// lifecycle state
	Status       enum.OrderStatus
	RejectReason enum.RejectReason
	EverLive     bool

	// execution state
	CumulativeFilledQty Quantity
	CumulativeFee       Price
	LastFillPrice       Price
	LastFillQty         Quantity
	LastFillFee         Price
	LastFillIsMaker     bool
	ExchangeOrderID     string
	LastFillTxID        string

	// exchange-reported state
	ExchangePrice        Price
	ExchangeRemainingQty Quantity

	// timestamps, nanoseconds
	TsSubmitLocal        int64
	TsAcceptedByExchange int64
	TsConfirmedLocal     int64
	TsModifyLocal        int64
	TsModifyExchange     int64
	TsModifyConfirmed    int64
	TsCancelLocal        int64
	TsCancelExchange     int64
	TsCancelConfirmed    int64
	TsRejected           int64
	TsFillExchange       int64
	TsFillObservedLocal  int64
}

// Snapshot returns a value copy of the order's mutable fields, suitable for
// attaching to an OrderUpdate event (§3 "Event" — "snapshot of the order
// handler's mutable fields") without sharing the live pointer across the
// event-queue boundary.
func (o *Order) Snapshot() Order {
	if o == nil {
		return Order{}
	}
	return *o
}

// IsDone reports whether cumulative-filled has reached the submitted quantity
// within PriceEpsilon — used by invariant checks (§8.1).
func (o *Order) IsDone() bool {
	if o == nil {
		return true
	}
	return o.CumulativeFilledQty.Float64() >= o.SubmitQty.Float64()-PriceEpsilon
}
