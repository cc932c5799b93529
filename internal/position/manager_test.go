package position

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ayanmadaan/trading-engine/internal/model/enum"
)

type fakeQuerier struct {
	value float64
	err   error
}

func (f *fakeQuerier) QueryPosition(ctx context.Context) (float64, error) {
	return f.value, f.err
}

func TestManager_WarmupSeedsFromExchange(t *testing.T) {
	q := &fakeQuerier{value: 2.5}
	m := New(Config{BasePosition: 0, Querier: q})

	require.False(t, m.IsWarmedUp())
	require.NoError(t, m.Warmup(context.Background()))
	require.True(t, m.IsWarmedUp())
	require.InDelta(t, 2.5, m.Position(), 1e-9)
}

func TestManager_WarmupFailureLeavesNotWarmedUp(t *testing.T) {
	q := &fakeQuerier{err: errors.New("http timeout")}
	m := New(Config{BasePosition: 1, Querier: q})

	require.Error(t, m.Warmup(context.Background()))
	require.False(t, m.IsWarmedUp())
	require.InDelta(t, 1.0, m.Position(), 1e-9)
}

func TestManager_UpdatePositionByFillSizeAppliesContractMultiplier(t *testing.T) {
	m := New(Config{BasePosition: 0, ContractMultiplier: 0.01, Querier: &fakeQuerier{}})

	m.UpdatePositionByFillSize(100, enum.OrderSideBuy)
	require.InDelta(t, 1.0, m.Position(), 1e-9)

	m.UpdatePositionByFillSize(50, enum.OrderSideSell)
	require.InDelta(t, 0.5, m.Position(), 1e-9)
}
