package gateway

import (
	"github.com/bytedance/sonic"

	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
	"github.com/ayanmadaan/trading-engine/pkg/websocket"
)

// OrderCodec implements venue.OrderEncoder and venue.OrderUpdateParser
// against this package's generic order-routing frame shape.
type OrderCodec struct{}

type orderOpFrame struct {
	Op         string `json:"op"`
	ReqID      uint64 `json:"reqId"`
	ClOrdID    int64  `json:"clOrdId"`
	Instrument string `json:"instrument,omitempty"`
	Side       string `json:"side,omitempty"`
	Price      string `json:"price,omitempty"`
	Qty        string `json:"qty,omitempty"`
	OrderType  string `json:"orderType,omitempty"`
	TdMode     string `json:"tdMode,omitempty"`
	BanAmend   bool   `json:"banAmend,omitempty"`
}

func (OrderCodec) EncodeOrder(clOrdID int64, price model.Price, qty model.Quantity, side enum.OrderSide, reqID uint64, instrument, orderType, tdMode string, banAmend bool) (websocket.MessageType, []byte, error) {
	payload, err := sonic.ConfigFastest.Marshal(orderOpFrame{
		Op:         "order",
		ReqID:      reqID,
		ClOrdID:    clOrdID,
		Instrument: instrument,
		Side:       side.String(),
		Price:      price.String(),
		Qty:        qty.String(),
		OrderType:  orderType,
		TdMode:     tdMode,
		BanAmend:   banAmend,
	})
	if err != nil {
		return 0, nil, err
	}
	return websocket.MessageText, payload, nil
}

func (OrderCodec) EncodeCancel(clOrdID int64, reqID uint64, instrument string) (websocket.MessageType, []byte, error) {
	payload, err := sonic.ConfigFastest.Marshal(orderOpFrame{
		Op:         "cancel",
		ReqID:      reqID,
		ClOrdID:    clOrdID,
		Instrument: instrument,
	})
	if err != nil {
		return 0, nil, err
	}
	return websocket.MessageText, payload, nil
}

func (OrderCodec) EncodeModify(clOrdID int64, newQty model.Quantity, newPrice model.Price, reqID uint64, instrument string) (websocket.MessageType, []byte, error) {
	payload, err := sonic.ConfigFastest.Marshal(orderOpFrame{
		Op:         "modify",
		ReqID:      reqID,
		ClOrdID:    clOrdID,
		Instrument: instrument,
		Price:      newPrice.String(),
		Qty:        newQty.String(),
	})
	if err != nil {
		return 0, nil, err
	}
	return websocket.MessageText, payload, nil
}

type ackFrame struct {
	Op      string `json:"op"`
	ReqID   uint64 `json:"reqId"`
	RetCode string `json:"retCode"`
}

// ParseAck recognizes {"op":"ack",...} frames; every other op is left for
// Parse.
func (OrderCodec) ParseAck(payload []byte) (uint64, string, bool) {
	var f ackFrame
	if err := sonic.Unmarshal(payload, &f); err != nil || f.Op != "ack" {
		return 0, "", false
	}
	return f.ReqID, f.RetCode, true
}

type orderUpdateFrame struct {
	Op                    string `json:"op"`
	ClOrdID               int64  `json:"clOrdId"`
	Instrument            string `json:"instrument"`
	Side                  string `json:"side"`
	Status                string `json:"status"`
	SubmitPrice           string `json:"submitPrice"`
	SubmitQty             string `json:"submitQty"`
	CumulativeFilledQty   string `json:"cumFilledQty"`
	CumulativeFee         string `json:"cumFee"`
	LastFillPrice         string `json:"lastFillPrice"`
	LastFillQty           string `json:"lastFillQty"`
	LastFillFee           string `json:"lastFillFee"`
	LastFillIsMaker       bool   `json:"lastFillIsMaker"`
	LastFillTxID          string `json:"lastFillTxId"`
	ExchangeOrderID       string `json:"exchangeOrderId"`
	ExchangePrice         string `json:"exchangePrice"`
	ExchangeRemainingQty  string `json:"exchangeRemainingQty"`
	TsAcceptedByExchange  int64  `json:"tsAcceptedByExchange"`
	TsFillExchange        int64  `json:"tsFillExchange"`
}

// Parse recognizes {"op":"order_update",...} status/fill frames.
func (OrderCodec) Parse(payload []byte) (model.Order, bool) {
	var f orderUpdateFrame
	if err := sonic.Unmarshal(payload, &f); err != nil || f.Op != "order_update" {
		return model.Order{}, false
	}

	order := model.Order{
		ClientOrderID:        f.ClOrdID,
		Instrument:           f.Instrument,
		Side:                 parseOrderSide(f.Side),
		Status:               parseOrderStatus(f.Status),
		LastFillIsMaker:      f.LastFillIsMaker,
		LastFillTxID:         f.LastFillTxID,
		ExchangeOrderID:      f.ExchangeOrderID,
		TsAcceptedByExchange: f.TsAcceptedByExchange,
		TsFillExchange:       f.TsFillExchange,
	}
	order.SubmitPrice, _ = model.ParsePrice(f.SubmitPrice)
	order.SubmitQty, _ = model.ParseQuantity(f.SubmitQty)
	order.CumulativeFilledQty, _ = model.ParseQuantity(f.CumulativeFilledQty)
	order.CumulativeFee, _ = model.ParsePrice(f.CumulativeFee)
	order.LastFillPrice, _ = model.ParsePrice(f.LastFillPrice)
	order.LastFillQty, _ = model.ParseQuantity(f.LastFillQty)
	order.LastFillFee, _ = model.ParsePrice(f.LastFillFee)
	order.ExchangePrice, _ = model.ParsePrice(f.ExchangePrice)
	order.ExchangeRemainingQty, _ = model.ParseQuantity(f.ExchangeRemainingQty)
	return order, true
}

func parseOrderSide(s string) enum.OrderSide {
	if s == "sell" {
		return enum.OrderSideSell
	}
	return enum.OrderSideBuy
}

func parseOrderStatus(s string) enum.OrderStatus {
	switch s {
	case "pending":
		return enum.OrderStatusPending
	case "live":
		return enum.OrderStatusLive
	case "partially_filled":
		return enum.OrderStatusPartiallyFilled
	case "filled":
		return enum.OrderStatusFilled
	case "canceled":
		return enum.OrderStatusCanceled
	case "rejected":
		return enum.OrderStatusRejected
	default:
		return enum.OrderStatusInitial
	}
}
