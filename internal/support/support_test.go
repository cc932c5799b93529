package support

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ayanmadaan/trading-engine/internal/book"
	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
)

func TestCooldown_StartDoesNotExtendWhileCooling(t *testing.T) {
	var c Cooldown
	base := time.Unix(0, 0)
	c.StartCooldown(base, time.Second)
	require.True(t, c.IsInCooldown(base.Add(500*time.Millisecond)))

	c.StartCooldown(base.Add(500*time.Millisecond), 5*time.Second)
	require.False(t, c.IsInCooldown(base.Add(2*time.Second)), "second StartCooldown must be a no-op while still cooling")
}

func TestCooldown_RestartAlwaysResets(t *testing.T) {
	var c Cooldown
	base := time.Unix(0, 0)
	c.StartCooldown(base, time.Second)
	c.RestartCooldown(base.Add(500*time.Millisecond), 5*time.Second)
	require.True(t, c.IsInCooldown(base.Add(2*time.Second)))
	require.False(t, c.IsInCooldown(base.Add(6*time.Second)))
}

func TestTokenBucket_EmptiesAfterMaxTokensConsumed(t *testing.T) {
	base := time.Unix(0, 0)
	b := NewTokenBucket(2, time.Second, time.Second)

	require.True(t, b.TryConsume(base))
	require.True(t, b.TryConsume(base))
	require.False(t, b.TryConsume(base), "bucket should be empty on the third immediate consume")
}

func TestTokenBucket_EntersCooldownOnExhaustion(t *testing.T) {
	base := time.Unix(0, 0)
	b := NewTokenBucket(1, time.Second, 2*time.Second)

	require.True(t, b.TryConsume(base))
	require.False(t, b.TryConsume(base.Add(100*time.Millisecond)))
	// Still within the cooldown window even though tokens would have refilled.
	require.False(t, b.TryConsume(base.Add(time.Second)))
	require.True(t, b.TryConsume(base.Add(3*time.Second)))
}

func TestPendingTracker_OverdueAndResolve(t *testing.T) {
	pt := NewPendingTracker()
	base := time.Unix(0, 0)
	pt.Track(1, base)
	pt.Track(2, base.Add(2*time.Second))

	overdue := pt.Overdue(base.Add(3*time.Second), time.Second)
	require.ElementsMatch(t, []int64{1}, overdue)

	pt.Resolve(1)
	require.Equal(t, 1, pt.Len())
}

func TestOrderHealthCheck_InnerAndFarEnoughIsHealthy(t *testing.T) {
	ref := book.New("TEST", 5)
	require.NoError(t, ref.ApplyAskLevel(model.NewPrice(100.10), model.NewQuantity(1)))
	require.NoError(t, ref.ApplyBidLevel(model.NewPrice(100.00), model.NewQuantity(1)))

	c := &OrderHealthCheck{ReferenceBook: ref, Mid: identityShifter{}, MinimumDistance: 0.0004}
	ladder := []model.TargetOrder{{Price: model.NewPrice(100.05), Side: enum.SideAsk}}

	ok, err := c.IsHealthy(ladder, enum.SideAsk)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestOrderHealthCheck_TooCloseIsUnhealthy(t *testing.T) {
	ref := book.New("TEST", 5)
	require.NoError(t, ref.ApplyAskLevel(model.NewPrice(100.10), model.NewQuantity(1)))
	require.NoError(t, ref.ApplyBidLevel(model.NewPrice(100.00), model.NewQuantity(1)))

	c := &OrderHealthCheck{ReferenceBook: ref, Mid: identityShifter{}, MinimumDistance: 0.5}
	ladder := []model.TargetOrder{{Price: model.NewPrice(100.09), Side: enum.SideAsk}}

	ok, err := c.IsHealthy(ladder, enum.SideAsk)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOrderHealthCheck_OuterThanTouchIsUnhealthy(t *testing.T) {
	ref := book.New("TEST", 5)
	require.NoError(t, ref.ApplyAskLevel(model.NewPrice(100.10), model.NewQuantity(1)))
	require.NoError(t, ref.ApplyBidLevel(model.NewPrice(100.00), model.NewQuantity(1)))

	c := &OrderHealthCheck{ReferenceBook: ref, Mid: identityShifter{}, MinimumDistance: 0.0001}
	ladder := []model.TargetOrder{{Price: model.NewPrice(100.20), Side: enum.SideAsk}}

	ok, err := c.IsHealthy(ladder, enum.SideAsk)
	require.NoError(t, err)
	require.False(t, ok)
}

type identityShifter struct{}

func (identityShifter) QuoteMid(referenceMid float64) float64 { return referenceMid }
