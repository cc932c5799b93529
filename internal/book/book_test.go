package book

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ayanmadaan/trading-engine/internal/model"
)

func TestApplyBidLevel_SortedDescending(t *testing.T) {
	b := New("BTC-USDT", 10)
	require.NoError(t, b.ApplyBidLevel(model.NewPrice(100), model.NewQuantity(1)))
	require.NoError(t, b.ApplyBidLevel(model.NewPrice(102), model.NewQuantity(1)))
	require.NoError(t, b.ApplyBidLevel(model.NewPrice(101), model.NewQuantity(1)))

	bids := b.Bids()
	require.Len(t, bids, 3)
	for i := 1; i < len(bids); i++ {
		require.Greater(t, bids[i-1].Price.Float64(), bids[i].Price.Float64())
	}
	best, ok := b.BestBid()
	require.True(t, ok)
	require.InDelta(t, 102.0, best.Price.Float64(), model.PriceEpsilon)
}

func TestApplyAskLevel_SortedAscending(t *testing.T) {
	b := New("BTC-USDT", 10)
	require.NoError(t, b.ApplyAskLevel(model.NewPrice(100), model.NewQuantity(1)))
	require.NoError(t, b.ApplyAskLevel(model.NewPrice(98), model.NewQuantity(1)))
	require.NoError(t, b.ApplyAskLevel(model.NewPrice(99), model.NewQuantity(1)))

	asks := b.Asks()
	require.Len(t, asks, 3)
	for i := 1; i < len(asks); i++ {
		require.Less(t, asks[i-1].Price.Float64(), asks[i].Price.Float64())
	}
	best, ok := b.BestAsk()
	require.True(t, ok)
	require.InDelta(t, 98.0, best.Price.Float64(), model.PriceEpsilon)
}

func TestApplyLevel_ZeroQuantityErases(t *testing.T) {
	b := New("BTC-USDT", 10)
	require.NoError(t, b.ApplyBidLevel(model.NewPrice(100), model.NewQuantity(1)))
	require.NoError(t, b.ApplyBidLevel(model.NewPrice(100), model.NewQuantity(0)))
	require.Len(t, b.Bids(), 0)
}

func TestApplyLevel_CapacityBounded(t *testing.T) {
	b := New("BTC-USDT", 2)
	require.NoError(t, b.ApplyBidLevel(model.NewPrice(100), model.NewQuantity(1)))
	require.NoError(t, b.ApplyBidLevel(model.NewPrice(99), model.NewQuantity(1)))
	// A worse (lower) bid than the current worst-retained level should be rejected.
	err := b.ApplyBidLevel(model.NewPrice(98), model.NewQuantity(1))
	require.Error(t, err)
	require.Len(t, b.Bids(), 2)

	// A better bid displaces the worst retained level.
	require.NoError(t, b.ApplyBidLevel(model.NewPrice(101), model.NewQuantity(1)))
	require.Len(t, b.Bids(), 2)
	best, _ := b.BestBid()
	require.InDelta(t, 101.0, best.Price.Float64(), model.PriceEpsilon)
}

func TestMidAndSpread(t *testing.T) {
	b := New("BTC-USDT", 10)
	require.NoError(t, b.ApplyBidLevel(model.NewPrice(100), model.NewQuantity(1)))
	require.NoError(t, b.ApplyAskLevel(model.NewPrice(100.10), model.NewQuantity(1)))

	mid, ok := b.Mid()
	require.True(t, ok)
	require.InDelta(t, 100.05, mid, model.PriceEpsilon)

	spread, ok := b.Spread()
	require.True(t, ok)
	require.InDelta(t, 0.10, spread, 1e-6)
}

func TestApplyLevel_ApplyingSameFrameTwiceIsNoop(t *testing.T) {
	b := New("BTC-USDT", 10)
	require.NoError(t, b.ApplyBidLevel(model.NewPrice(100), model.NewQuantity(1)))
	before := b.Bids()[0]
	require.NoError(t, b.ApplyBidLevel(model.NewPrice(100), model.NewQuantity(1)))
	after := b.Bids()[0]
	require.Equal(t, before, after)
	require.Len(t, b.Bids(), 1)
}
