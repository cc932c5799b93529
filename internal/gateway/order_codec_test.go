package gateway

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
)

func TestOrderCodec_EncodedOrderIsNotParsedAsUpdate(t *testing.T) {
	var c OrderCodec

	_, payload, err := c.EncodeOrder(123, model.NewPrice(100.5), model.NewQuantity(2), enum.OrderSideBuy, 7, "BTC-USD", "limit", "cross", false)
	require.NoError(t, err)
	require.Contains(t, string(payload), `"op":"order"`)

	// The encoded frame is an outbound op, not an inbound update; Parse must
	// reject it rather than half-populate an Order from the wrong shape.
	_, ok := c.Parse(payload)
	require.False(t, ok)
}

func TestOrderCodec_ParseAck(t *testing.T) {
	var c OrderCodec

	reqID, retCode, ok := c.ParseAck([]byte(`{"op":"ack","reqId":42,"retCode":"0"}`))
	require.True(t, ok)
	require.Equal(t, uint64(42), reqID)
	require.Equal(t, "0", retCode)
}

func TestOrderCodec_ParseAck_WrongOpIsRejected(t *testing.T) {
	var c OrderCodec
	_, _, ok := c.ParseAck([]byte(`{"op":"order_update"}`))
	require.False(t, ok)
}

func TestOrderCodec_ParseOrderUpdate(t *testing.T) {
	var c OrderCodec

	frame := `{"op":"order_update","clOrdId":99,"instrument":"BTC-USD","side":"sell",` +
		`"status":"partially_filled","submitPrice":"100.5","submitQty":"2",` +
		`"cumFilledQty":"1","cumFee":"0.01","lastFillPrice":"100.5","lastFillQty":"1",` +
		`"lastFillFee":"0.01","lastFillIsMaker":true,"exchangeOrderId":"X1",` +
		`"exchangeRemainingQty":"1"}`

	order, ok := c.Parse([]byte(frame))
	require.True(t, ok)
	require.Equal(t, int64(99), order.ClientOrderID)
	require.Equal(t, enum.OrderSideSell, order.Side)
	require.Equal(t, enum.OrderStatusPartiallyFilled, order.Status)
	require.InDelta(t, 1.0, order.LastFillQty.Float64(), 1e-9)
	require.True(t, order.LastFillIsMaker)
	require.Equal(t, "X1", order.ExchangeOrderID)
}

func TestOrderCodec_ParseOrderUpdate_WrongOpIsRejected(t *testing.T) {
	var c OrderCodec
	_, ok := c.Parse([]byte(`{"op":"ack","reqId":1}`))
	require.False(t, ok)
}
