package ordermgr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
)

type fakeSender struct {
	nextClOrdID int64
	failNext    bool
	sentOrders  int
}

func (f *fakeSender) SendOrder(price model.Price, qty model.Quantity, side enum.OrderSide, reqID uint64, instrument, orderType, tdMode string, banAmend bool) int64 {
	if f.failNext {
		f.failNext = false
		return 0
	}
	f.nextClOrdID++
	f.sentOrders++
	return f.nextClOrdID
}

func (f *fakeSender) SendCancelOrder(clOrdID int64, reqID uint64, instrument string) int64 {
	if f.failNext {
		f.failNext = false
		return 0
	}
	return clOrdID
}

func (f *fakeSender) ModifyOrder(clOrdID int64, newQty model.Quantity, newPrice model.Price, reqID uint64, instrument string) int64 {
	if f.failNext {
		f.failNext = false
		return 0
	}
	return clOrdID
}

func newTestManager(sender OrderSender, onStatus func(model.Order)) *Manager {
	return New(Config{
		Venue:  enum.VenueQuote,
		Sender: sender,
		IsReady: func() bool {
			return true
		},
		RejectMap: RejectCodeMap{
			"10006": enum.RejectReasonThrottled,
			"10001": enum.RejectReasonInvalidSize,
		},
		OnStatus: onStatus,
		RetainN:  2,
	})
}

func TestPlaceOrder_WSNotReady_SynthesizesRejection(t *testing.T) {
	var got model.Order
	sender := &fakeSender{}
	m := New(Config{
		Venue:   enum.VenueQuote,
		Sender:  sender,
		IsReady: func() bool { return false },
		OnStatus: func(o model.Order) {
			got = o
		},
	})

	clOrdID := m.PlaceOrder(model.NewPrice(100), model.NewQuantity(1), enum.OrderSideBuy, "BTC-USDT", "limit", "cross", false)

	require.Equal(t, int64(0), clOrdID)
	require.Equal(t, enum.OrderStatusRejected, got.Status)
	require.Equal(t, enum.RejectReasonWSFailure, got.RejectReason)
	require.Equal(t, 0, sender.sentOrders)
}

func TestPlaceOrder_SuccessTracksOrderAndReqID(t *testing.T) {
	sender := &fakeSender{}
	m := newTestManager(sender, nil)

	clOrdID := m.PlaceOrder(model.NewPrice(100), model.NewQuantity(1), enum.OrderSideBuy, "BTC-USDT", "limit", "cross", false)
	require.NotZero(t, clOrdID)

	order, ok := m.Order(clOrdID)
	require.True(t, ok)
	require.Equal(t, enum.OrderStatusPending, order.Status)
}

func TestHandleAck_SuccessMovesToLiveAndClearsCorrelation(t *testing.T) {
	sender := &fakeSender{}
	m := newTestManager(sender, nil)
	clOrdID := m.PlaceOrder(model.NewPrice(100), model.NewQuantity(1), enum.OrderSideBuy, "BTC-USDT", "limit", "cross", false)

	m.HandleAck(1, "0", 12345)

	order, ok := m.Order(clOrdID)
	require.True(t, ok)
	require.Equal(t, enum.OrderStatusLive, order.Status)
	require.True(t, order.EverLive)
	require.Equal(t, int64(12345), order.TsAcceptedByExchange)

	// Correlation entry removed: a second ack for the same reqId is a no-op.
	m.HandleAck(1, "0", 99999)
	order2, _ := m.Order(clOrdID)
	require.Equal(t, int64(12345), order2.TsAcceptedByExchange)
}

func TestHandleAck_RejectTranslatesVenueCode(t *testing.T) {
	sender := &fakeSender{}
	m := newTestManager(sender, nil)
	clOrdID := m.PlaceOrder(model.NewPrice(100), model.NewQuantity(1), enum.OrderSideBuy, "BTC-USDT", "limit", "cross", false)

	m.HandleAck(1, "10006", 555)

	order, ok := m.Order(clOrdID)
	require.True(t, ok)
	require.Equal(t, enum.OrderStatusRejected, order.Status)
	require.Equal(t, enum.RejectReasonThrottled, order.RejectReason)
}

func TestHandleAck_UnknownCodeMapsToUnknownError(t *testing.T) {
	sender := &fakeSender{}
	m := newTestManager(sender, nil)
	clOrdID := m.PlaceOrder(model.NewPrice(100), model.NewQuantity(1), enum.OrderSideBuy, "BTC-USDT", "limit", "cross", false)

	m.HandleAck(1, "99999", 555)

	order, _ := m.Order(clOrdID)
	require.Equal(t, enum.RejectReasonUnknownError, order.RejectReason)
}

func TestHandleStatusUpdate_UnknownClientOrderIDIsDropped(t *testing.T) {
	var called bool
	sender := &fakeSender{}
	m := newTestManager(sender, func(model.Order) { called = true })

	m.HandleStatusUpdate(model.Order{ClientOrderID: 999, Status: enum.OrderStatusFilled})

	require.False(t, called)
	require.Equal(t, 0, m.Len())
}

func TestHandleStatusUpdate_CumulativeFilledIsMonotonic(t *testing.T) {
	sender := &fakeSender{}
	m := newTestManager(sender, nil)
	clOrdID := m.PlaceOrder(model.NewPrice(100), model.NewQuantity(10), enum.OrderSideBuy, "BTC-USDT", "limit", "cross", false)

	m.HandleStatusUpdate(model.Order{ClientOrderID: clOrdID, Status: enum.OrderStatusPartiallyFilled, CumulativeFilledQty: model.NewQuantity(4)})
	m.HandleStatusUpdate(model.Order{ClientOrderID: clOrdID, Status: enum.OrderStatusPartiallyFilled, CumulativeFilledQty: model.NewQuantity(2)})

	order, _ := m.Order(clOrdID)
	require.InDelta(t, 4.0, order.CumulativeFilledQty.Float64(), model.PriceEpsilon)
}

func TestHandleStatusUpdate_TerminalRetentionEvictsOldest(t *testing.T) {
	sender := &fakeSender{}
	m := newTestManager(sender, nil)

	var ids []int64
	for i := 0; i < 3; i++ {
		id := m.PlaceOrder(model.NewPrice(100), model.NewQuantity(1), enum.OrderSideBuy, "BTC-USDT", "limit", "cross", false)
		ids = append(ids, id)
	}
	// RetainN=2: filling all three should evict the first.
	for _, id := range ids {
		m.HandleStatusUpdate(model.Order{ClientOrderID: id, Status: enum.OrderStatusFilled, CumulativeFilledQty: model.NewQuantity(1)})
	}

	_, ok := m.Order(ids[0])
	require.False(t, ok, "oldest filled order should have been evicted")
	_, ok = m.Order(ids[2])
	require.True(t, ok)
	require.Equal(t, 2, m.Len())
}

func TestHandleStatusUpdate_RetainedAtMostOnce(t *testing.T) {
	sender := &fakeSender{}
	m := newTestManager(sender, nil)
	clOrdID := m.PlaceOrder(model.NewPrice(100), model.NewQuantity(1), enum.OrderSideBuy, "BTC-USDT", "limit", "cross", false)

	m.HandleStatusUpdate(model.Order{ClientOrderID: clOrdID, Status: enum.OrderStatusFilled, CumulativeFilledQty: model.NewQuantity(1)})
	m.HandleStatusUpdate(model.Order{ClientOrderID: clOrdID, Status: enum.OrderStatusFilled, CumulativeFilledQty: model.NewQuantity(1)})

	require.Len(t, m.filledQueue, 1)
}

func TestPlaceOrder_SendFailureReturnsZeroAndDoesNotTrack(t *testing.T) {
	sender := &fakeSender{failNext: true}
	m := newTestManager(sender, nil)

	clOrdID := m.PlaceOrder(model.NewPrice(100), model.NewQuantity(1), enum.OrderSideBuy, "BTC-USDT", "limit", "cross", false)

	require.Equal(t, int64(0), clOrdID)
	require.Equal(t, 0, m.Len())
}
