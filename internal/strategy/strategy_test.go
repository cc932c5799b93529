package strategy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ayanmadaan/trading-engine/internal/book"
	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
	"github.com/ayanmadaan/trading-engine/internal/ordermgr"
	"github.com/ayanmadaan/trading-engine/internal/position"
	"github.com/ayanmadaan/trading-engine/internal/quote"
	"github.com/ayanmadaan/trading-engine/internal/support"
)

type fakeSender struct {
	nextID  int64
	placed  []model.TargetOrder
	modified []int64
	canceled []int64
}

func (f *fakeSender) SendOrder(price model.Price, qty model.Quantity, side enum.OrderSide, reqID uint64, instrument, orderType, tdMode string, banAmend bool) int64 {
	f.nextID++
	f.placed = append(f.placed, model.TargetOrder{Price: price, Size: qty})
	return f.nextID
}

func (f *fakeSender) SendCancelOrder(clOrdID int64, reqID uint64, instrument string) int64 {
	f.canceled = append(f.canceled, clOrdID)
	return clOrdID
}

func (f *fakeSender) ModifyOrder(clOrdID int64, newQty model.Quantity, newPrice model.Price, reqID uint64, instrument string) int64 {
	f.modified = append(f.modified, clOrdID)
	return clOrdID
}

func identityMid() *quote.MidShifter { return &quote.MidShifter{} }

func newTestStrategy(t *testing.T, sender *fakeSender, live bool) *Strategy {
	// A wide reference spread keeps the ladder's tighter rungs inner to the
	// reference touch, so the order-health check passes (§4.7).
	refBook := book.New("TEST", 5)
	require.NoError(t, refBook.ApplyBidLevel(model.NewPrice(99.50), model.NewQuantity(1)))
	require.NoError(t, refBook.ApplyAskLevel(model.NewPrice(100.50), model.NewQuantity(1)))

	quoteBook := book.New("TEST", 5)
	require.NoError(t, quoteBook.ApplyBidLevel(model.NewPrice(99.98), model.NewQuantity(1)))
	require.NoError(t, quoteBook.ApplyAskLevel(model.NewPrice(100.02), model.NewQuantity(1)))

	ladderCfg := quote.Config{
		TickSizePrice: 0.01,
		TickSizeQty:   0.01,
		OffsetBase:    enum.OffsetBaseMid,
		Bid: quote.SideConfig{
			Pairs:          []quote.OffsetSizePair{{Offset: 0.001, Size: 1}, {Offset: 0.002, Size: 1}},
			PriceRoundMode: enum.PriceRoundNearest,
			SizeRoundMode:  enum.SizeRoundNearest,
		},
		Ask: quote.SideConfig{
			Pairs:          []quote.OffsetSizePair{{Offset: 0.001, Size: 1}, {Offset: 0.002, Size: 1}},
			PriceRoundMode: enum.PriceRoundNearest,
			SizeRoundMode:  enum.SizeRoundNearest,
		},
	}

	gen := quote.New(ladderCfg, identityMid(), refBook, quoteBook)

	mgr := ordermgr.New(ordermgr.Config{
		Venue:   enum.VenueQuote,
		Sender:  sender,
		IsReady: func() bool { return true },
	})

	s := &Strategy{
		cfg: Config{
			LiveTradingEnabled: live,
			Quote:              VenueBinding{Venue: enum.VenueQuote, Instrument: "TEST"},
			OrderType:          "limit",
			TdMode:             "cross",
			OrderHealthMinimumDistance: 0,
		},
		quoteOrderMgr: mgr,
		ladder:        gen,
		health: &support.OrderHealthCheck{
			ReferenceBook:   refBook,
			Mid:             identityMid(),
			MinimumDistance: 0,
		},
		quotePosition: position.New(position.Config{BasePosition: 0}),
		hedgePosition: position.New(position.Config{BasePosition: 0}),
	}
	return s
}

func TestStrategy_SyncSidePlacesNewRungs(t *testing.T) {
	sender := &fakeSender{}
	s := newTestStrategy(t, sender, true)

	s.syncSide(enum.SideAsk)

	require.Len(t, sender.placed, 2)
	require.Len(t, s.liveOrders[quote.SideIndex(enum.SideAsk)], 2)
}

func TestStrategy_SyncSideSkipsWhenLiveTradingDisabled(t *testing.T) {
	sender := &fakeSender{}
	s := newTestStrategy(t, sender, false)

	s.syncSide(enum.SideAsk)

	require.Empty(t, sender.placed)
}

func TestStrategy_SyncSideReplacesShrunkLadder(t *testing.T) {
	sender := &fakeSender{}
	s := newTestStrategy(t, sender, true)

	s.syncSide(enum.SideAsk)
	require.Len(t, sender.placed, 2)

	// Shrink the ladder to one rung; the second live order must be canceled.
	s.ladder = quote.New(quote.Config{
		TickSizePrice: 0.01,
		OffsetBase:    enum.OffsetBaseMid,
		Ask: quote.SideConfig{
			Pairs:          []quote.OffsetSizePair{{Offset: 0.001, Size: 1}},
			PriceRoundMode: enum.PriceRoundNearest,
			SizeRoundMode:  enum.SizeRoundNearest,
		},
		Bid: quote.SideConfig{PriceRoundMode: enum.PriceRoundNearest, SizeRoundMode: enum.SizeRoundNearest},
	}, identityMid(), s.health.ReferenceBook, book.New("TEST", 5))

	s.syncSide(enum.SideAsk)
	require.Len(t, sender.canceled, 1)
	require.Len(t, s.liveOrders[quote.SideIndex(enum.SideAsk)], 1)
}

func TestStrategy_CancelSideCancelsAllLiveOrders(t *testing.T) {
	sender := &fakeSender{}
	s := newTestStrategy(t, sender, true)
	s.syncSide(enum.SideAsk)

	s.cancelSide(enum.SideAsk)

	require.Len(t, sender.canceled, 2)
	require.Empty(t, s.liveOrders[quote.SideIndex(enum.SideAsk)])
}

func TestStrategy_OnOrderStatusAppliesFillToPosition(t *testing.T) {
	sender := &fakeSender{}
	s := newTestStrategy(t, sender, true)

	before := s.quotePosition.Position()
	s.onOrderStatus(enum.VenueQuote, model.Order{
		Venue:       enum.VenueQuote,
		Side:        enum.OrderSideBuy,
		LastFillQty: model.NewQuantity(0.5),
		Status:      enum.OrderStatusPartiallyFilled,
	})

	require.InDelta(t, before+0.5, s.quotePosition.Position(), 1e-9)
}

func TestStrategy_OnOrderStatusTerminalDoesNotPanicWithNilAudit(t *testing.T) {
	sender := &fakeSender{}
	s := newTestStrategy(t, sender, true)

	s.onOrderStatus(enum.VenueQuote, model.Order{
		Venue:  enum.VenueQuote,
		Status: enum.OrderStatusFilled,
	})
}
