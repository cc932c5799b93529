package venue

import (
	"sync/atomic"
	"time"

	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
	"github.com/yanun0323/logs"

	"github.com/ayanmadaan/trading-engine/pkg/websocket"
)

// OrderEncoder builds the outbound wire payload for one order operation.
// Bit-level format knowledge is the venue's; clOrdId is always pre-assigned
// by OrderRouteConnector before the encoder is called.
type OrderEncoder interface {
	EncodeOrder(clOrdID int64, price model.Price, qty model.Quantity, side enum.OrderSide, reqID uint64, instrument, orderType, tdMode string, banAmend bool) (websocket.MessageType, []byte, error)
	EncodeCancel(clOrdID int64, reqID uint64, instrument string) (websocket.MessageType, []byte, error)
	EncodeModify(clOrdID int64, newQty model.Quantity, newPrice model.Price, reqID uint64, instrument string) (websocket.MessageType, []byte, error)
}

// OrderUpdateParser turns one inbound trade-channel frame into an order
// snapshot update, or ok=false for frames the connector should ignore.
type OrderUpdateParser interface {
	Parse(payload []byte) (order model.Order, ok bool)

	// ParseAck recognizes an ack/reject frame carrying reqId and retCode
	// (§4.2 "Ack and reject routing"), tried before Parse for every inbound
	// frame on this channel.
	ParseAck(payload []byte) (reqID uint64, retCode string, ok bool)
}

// OrderRouteConnector owns one venue's private order-routing channel:
// outbound order operations (§4.2 "Outbound operations") and inbound
// order-status parsing.
type OrderRouteConnector struct {
	*Connector

	venue   enum.Venue
	encoder OrderEncoder
	submit  func(model.Event)

	lastClOrdID atomic.Int64
	traceSeq    atomic.Uint64
}

// NewOrderRouteConnector wires encoder/parser/submit into a Connector built
// from cfg. cfg.OnMessage is overwritten; callers should leave it nil.
func NewOrderRouteConnector(cfg Config, encoder OrderEncoder, parser OrderUpdateParser, submit func(model.Event)) *OrderRouteConnector {
	o := &OrderRouteConnector{
		venue:   cfg.Venue,
		encoder: encoder,
		submit:  submit,
	}
	cfg.OnMessage = func(payload []byte) {
		if o.submit == nil {
			return
		}
		now := time.Now().UnixNano()

		if reqID, retCode, ok := parser.ParseAck(payload); ok {
			o.submit(model.Event{
				Kind:       model.EventOrderUpdate,
				Venue:      o.venue,
				IsAck:      true,
				AckReqID:   reqID,
				AckRetCode: retCode,
				TraceID:    o.traceSeq.Add(1),
				TsEvent:    now,
				TsRecv:     now,
			})
			return
		}

		order, ok := parser.Parse(payload)
		if !ok {
			return
		}
		tsEvent := order.TsAcceptedByExchange
		if tsEvent == 0 {
			tsEvent = now
		}
		o.submit(model.Event{
			Kind:    model.EventOrderUpdate,
			Venue:   o.venue,
			Order:   order,
			TraceID: o.traceSeq.Add(1),
			TsEvent: tsEvent,
			TsRecv:  now,
		})
	}
	o.Connector = New(cfg)
	return o
}

// nextClOrdID returns a local-nanosecond-timestamp client-order-id, nudged
// forward when the clock does not advance between two calls so IDs stay
// strictly increasing (§4.2: "client-order-id (local-nanosecond timestamp)").
func (o *OrderRouteConnector) nextClOrdID() int64 {
	for {
		candidate := time.Now().UnixNano()
		prev := o.lastClOrdID.Load()
		if candidate <= prev {
			candidate = prev + 1
		}
		if o.lastClOrdID.CompareAndSwap(prev, candidate) {
			return candidate
		}
	}
}

// SendOrder submits a new order and returns its client-order-id, or 0 if the
// send failed (§4.2: "On send failure returns 0; caller treats 0 as
// submission failure.").
func (o *OrderRouteConnector) SendOrder(price model.Price, qty model.Quantity, side enum.OrderSide, reqID uint64, instrument, orderType, tdMode string, banAmend bool) int64 {
	clOrdID := o.nextClOrdID()
	msgType, payload, err := o.encoder.EncodeOrder(clOrdID, price, qty, side, reqID, instrument, orderType, tdMode, banAmend)
	if err != nil {
		logs.Errorf("venue[%s]: encode order failed: %+v", o.venue.String(), err)
		return 0
	}
	if err := o.Send(msgType, payload); err != nil {
		logs.Warnf("venue[%s]: send order failed: %+v", o.venue.String(), err)
		return 0
	}
	return clOrdID
}

// SendCancelOrder cancels a resting order, returning clOrdID on success or 0
// on send failure.
func (o *OrderRouteConnector) SendCancelOrder(clOrdID int64, reqID uint64, instrument string) int64 {
	msgType, payload, err := o.encoder.EncodeCancel(clOrdID, reqID, instrument)
	if err != nil {
		logs.Errorf("venue[%s]: encode cancel failed: %+v", o.venue.String(), err)
		return 0
	}
	if err := o.Send(msgType, payload); err != nil {
		logs.Warnf("venue[%s]: send cancel failed: %+v", o.venue.String(), err)
		return 0
	}
	return clOrdID
}

// ModifyOrder amends price/quantity of a resting order, returning clOrdID on
// success or 0 on send failure.
func (o *OrderRouteConnector) ModifyOrder(clOrdID int64, newQty model.Quantity, newPrice model.Price, reqID uint64, instrument string) int64 {
	msgType, payload, err := o.encoder.EncodeModify(clOrdID, newQty, newPrice, reqID, instrument)
	if err != nil {
		logs.Errorf("venue[%s]: encode modify failed: %+v", o.venue.String(), err)
		return 0
	}
	if err := o.Send(msgType, payload); err != nil {
		logs.Warnf("venue[%s]: send modify failed: %+v", o.venue.String(), err)
		return 0
	}
	return clOrdID
}
