// Package position tracks the strategy's net position in one instrument and
// runs the periodic reconciliation loop against the exchange's ground truth
// (§4.4). It is grounded on the teacher's position-tracking atomic-plus-mutex
// pattern described for m_wsState-style flags (§9's "WebSocket state flag:
// atomic bool" design note, generalized here to a float64 position value:
// a mutex-protected read-modify-write for compound updates, with an atomic
// mirror for lock-free reads from outside the event loop).
package position

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ayanmadaan/trading-engine/internal/errors"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
)

// Querier fetches the exchange's current reported position.
type Querier interface {
	QueryPosition(ctx context.Context) (float64, error)
}

// Config configures one instrument's position manager.
type Config struct {
	Venue              enum.Venue
	Instrument         string
	ContractMultiplier float64
	BasePosition       float64
	Querier            Querier
}

// Manager tracks net position for one (venue, instrument) pair.
type Manager struct {
	cfg Config

	mu       sync.Mutex
	position float64
	atomic   atomic.Uint64 // math.Float64bits(position), for lock-free reads

	warmedUp atomic.Bool
}

// New constructs a Manager seeded at cfg.BasePosition. Call Warmup before
// trading to replace the seed with the exchange's reported value.
func New(cfg Config) *Manager {
	if cfg.ContractMultiplier == 0 {
		cfg.ContractMultiplier = 1
	}
	m := &Manager{cfg: cfg, position: cfg.BasePosition}
	m.atomic.Store(math.Float64bits(cfg.BasePosition))
	return m
}

// Warmup issues one synchronous query to fetch the exchange position
// (§4.4: "On construction, the position manager issues one synchronous
// query... If it succeeds, the internal position is seeded with the
// reported value; otherwise warmed_up stays false").
func (m *Manager) Warmup(ctx context.Context) error {
	reported, err := m.cfg.Querier.QueryPosition(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrPositionQueryFailed.Error())
	}
	m.mu.Lock()
	m.position = reported
	m.atomic.Store(math.Float64bits(reported))
	m.mu.Unlock()
	m.warmedUp.Store(true)
	return nil
}

// IsWarmedUp reports whether Warmup has completed successfully at least
// once. Read by the strategy's is_trading_ready predicate (§4.2, §5).
func (m *Manager) IsWarmedUp() bool {
	return m.warmedUp.Load()
}

// Position returns the current internal position without blocking
// (§4.4: "the internal position is also an atomic for lock-free observation").
func (m *Manager) Position() float64 {
	return math.Float64frombits(m.atomic.Load())
}

// UpdatePositionByFillSize applies one observed fill's signed quantity,
// scaled by the instrument's contract multiplier (§4.4, §8.6).
func (m *Manager) UpdatePositionByFillSize(qty float64, side enum.OrderSide) {
	signed := side.SignedQty(qty) * m.cfg.ContractMultiplier
	m.mu.Lock()
	m.position += signed
	m.atomic.Store(math.Float64bits(m.position))
	m.mu.Unlock()
}

// SetPosition overwrites the internal position directly. The reconciliation
// loop classifies gaps but never calls this itself (§4.4 describes no
// resync-on-reconcile step); it is exposed for an operator-driven correction.
func (m *Manager) SetPosition(v float64) {
	m.mu.Lock()
	m.position = v
	m.atomic.Store(math.Float64bits(v))
	m.mu.Unlock()
}
