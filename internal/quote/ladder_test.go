package quote

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ayanmadaan/trading-engine/internal/book"
	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
)

func newBookWithTouch(t *testing.T, bid, ask float64) *book.Book {
	t.Helper()
	b := book.New("TEST", 10)
	require.NoError(t, b.ApplyBidLevel(model.NewPrice(bid), model.NewQuantity(1)))
	require.NoError(t, b.ApplyAskLevel(model.NewPrice(ask), model.NewQuantity(1)))
	return b
}

// TestGenerator_BasicLadderMidOffset exercises the mechanics of the basic
// quote scenario: reference 100.00/100.10, tick=0.01, offset=0.001, size=1.0,
// no shifts, nearest rounding. The ask rung lands on 100.15; the bid rung
// lands symmetrically on the opposite side of mid.
func TestGenerator_BasicLadderMidOffset(t *testing.T) {
	ref := newBookWithTouch(t, 100.00, 100.10)
	quoteBook := newBookWithTouch(t, 100.00, 100.10)

	cfg := Config{
		TickSizePrice: 0.01,
		TickSizeQty:   0.01,
		OffsetBase:    enum.OffsetBaseMid,
		Bid: SideConfig{
			Pairs:          []OffsetSizePair{{Offset: 0.001, Size: 1.0}},
			PriceRoundMode: enum.PriceRoundNearest,
			SizeRoundMode:  enum.SizeRoundNearest,
		},
		Ask: SideConfig{
			Pairs:          []OffsetSizePair{{Offset: 0.001, Size: 1.0}},
			PriceRoundMode: enum.PriceRoundNearest,
			SizeRoundMode:  enum.SizeRoundNearest,
		},
	}
	g := New(cfg, &MidShifter{}, ref, quoteBook)

	bidOrders, err := g.Refresh(enum.SideBid)
	require.NoError(t, err)
	require.Len(t, bidOrders, 1)
	require.InDelta(t, 99.95, bidOrders[0].Price.Float64(), 1e-9)

	askOrders, err := g.Refresh(enum.SideAsk)
	require.NoError(t, err)
	require.Len(t, askOrders, 1)
	require.InDelta(t, 100.15, askOrders[0].Price.Float64(), 1e-9)
	require.True(t, bidOrders[0].Price.Float64() < askOrders[0].Price.Float64())
}

// TestGenerator_S5TouchShift reproduces S5's touch-shift cascade exactly.
func TestGenerator_S5TouchShift(t *testing.T) {
	ref := newBookWithTouch(t, 99.99, 100.01)
	quoteBook := newBookWithTouch(t, 99.95, 100.05)

	cfg := Config{
		TickSizePrice:    0.01,
		TickSizeQty:      1,
		OffsetBase:       enum.OffsetBaseMid,
		EnableTouchShift: true,
		TicksFromTouch:   1,
		Ask: SideConfig{
			Pairs: []OffsetSizePair{
				{Offset: 0.0001, Size: 1.0},
				{Offset: 0.0002, Size: 1.0},
				{Offset: 0.0003, Size: 1.0},
			},
			PriceRoundMode: enum.PriceRoundAway,
			SizeRoundMode:  enum.SizeRoundNearest,
		},
	}
	g := New(cfg, &MidShifter{}, ref, quoteBook)

	orders, err := g.Refresh(enum.SideAsk)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	require.InDelta(t, 100.06, orders[0].Price.Float64(), 1e-9)
	require.InDelta(t, 100.07, orders[1].Price.Float64(), 1e-9)
	require.InDelta(t, 100.08, orders[2].Price.Float64(), 1e-9)
}

func TestGenerator_CleanSideIsNoOp(t *testing.T) {
	ref := newBookWithTouch(t, 100.00, 100.10)
	quoteBook := newBookWithTouch(t, 100.00, 100.10)
	cfg := Config{
		TickSizePrice: 0.01,
		TickSizeQty:   1,
		OffsetBase:    enum.OffsetBaseMid,
		Bid: SideConfig{
			Pairs:          []OffsetSizePair{{Offset: 0.001, Size: 1.0}},
			PriceRoundMode: enum.PriceRoundAway,
			SizeRoundMode:  enum.SizeRoundNearest,
		},
	}
	g := New(cfg, &MidShifter{}, ref, quoteBook)

	first, err := g.Refresh(enum.SideBid)
	require.NoError(t, err)
	require.False(t, g.IsDirty(enum.SideBid))

	second, err := g.Refresh(enum.SideBid)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestGenerator_MarkDirtyRecomputesBothSides(t *testing.T) {
	ref := newBookWithTouch(t, 100.00, 100.10)
	quoteBook := newBookWithTouch(t, 100.00, 100.10)
	cfg := Config{
		TickSizePrice: 0.01,
		TickSizeQty:   1,
		OffsetBase:    enum.OffsetBaseMid,
		Bid:           SideConfig{Pairs: []OffsetSizePair{{Offset: 0.001, Size: 1}}, PriceRoundMode: enum.PriceRoundAway, SizeRoundMode: enum.SizeRoundNearest},
		Ask:           SideConfig{Pairs: []OffsetSizePair{{Offset: 0.001, Size: 1}}, PriceRoundMode: enum.PriceRoundAway, SizeRoundMode: enum.SizeRoundNearest},
	}
	g := New(cfg, &MidShifter{}, ref, quoteBook)

	_, err := g.Refresh(enum.SideBid)
	require.NoError(t, err)
	_, err = g.Refresh(enum.SideAsk)
	require.NoError(t, err)
	require.False(t, g.IsDirty(enum.SideBid))
	require.False(t, g.IsDirty(enum.SideAsk))

	g.MarkDirty()
	require.True(t, g.IsDirty(enum.SideBid))
	require.True(t, g.IsDirty(enum.SideAsk))
}

func TestGenerator_EmptyPairsProducesEmptyLadder(t *testing.T) {
	ref := newBookWithTouch(t, 100.00, 100.10)
	quoteBook := newBookWithTouch(t, 100.00, 100.10)
	g := New(Config{TickSizePrice: 0.01, OffsetBase: enum.OffsetBaseMid}, &MidShifter{}, ref, quoteBook)

	orders, err := g.Refresh(enum.SideBid)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestGenerator_EmptyReferenceBookErrors(t *testing.T) {
	ref := book.New("TEST", 10)
	quoteBook := newBookWithTouch(t, 100.00, 100.10)
	cfg := Config{
		TickSizePrice: 0.01,
		OffsetBase:    enum.OffsetBaseMid,
		Bid:           SideConfig{Pairs: []OffsetSizePair{{Offset: 0.001, Size: 1}}, PriceRoundMode: enum.PriceRoundAway, SizeRoundMode: enum.SizeRoundNearest},
	}
	g := New(cfg, &MidShifter{}, ref, quoteBook)

	_, err := g.Refresh(enum.SideBid)
	require.Error(t, err)
	require.True(t, g.IsDirty(enum.SideBid), "a failed refresh must leave the side dirty for retry")
}
