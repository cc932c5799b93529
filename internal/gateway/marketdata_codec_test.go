package gateway

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ayanmadaan/trading-engine/internal/model/enum"
)

func TestMarketDataCodec_ParseBidLevel(t *testing.T) {
	var c MarketDataCodec

	levels, ok := c.Parse([]byte(`{"op":"book","side":"bid","price":"100.10","qty":"2.5"}`))
	require.True(t, ok)
	require.Len(t, levels, 1)
	require.Equal(t, enum.SideBid, levels[0].Side)
	require.InDelta(t, 100.10, levels[0].Price.Float64(), 1e-9)
	require.InDelta(t, 2.5, levels[0].Quantity.Float64(), 1e-9)
}

func TestMarketDataCodec_ParseAskLevel(t *testing.T) {
	var c MarketDataCodec

	levels, ok := c.Parse([]byte(`{"op":"book","side":"ask","price":"100.20","qty":"1"}`))
	require.True(t, ok)
	require.Equal(t, enum.SideAsk, levels[0].Side)
}

func TestMarketDataCodec_IgnoresOtherOps(t *testing.T) {
	var c MarketDataCodec
	_, ok := c.Parse([]byte(`{"op":"heartbeat"}`))
	require.False(t, ok)
}
