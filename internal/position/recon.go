package position

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/ayanmadaan/trading-engine/internal/model/enum"
	"github.com/yanun0323/logs"
)

// ReconConfig parameterizes the gap-classification thresholds and interval
// policy of §4.4's state machine.
type ReconConfig struct {
	TickSize                float64
	TolerableThreshold      float64
	MaxMismatchCount        int
	MaxFailQueryCount       int
	NormalReconInterval     time.Duration
	RetryIntervalOnFailure  time.Duration
	RetryIntervalOnMismatch time.Duration

	// OnResult fires once per cycle that produces a reportable status
	// (§4.4: "fires the external callback"). A cycle where the query failed
	// and the failure streak has not yet reached MaxFailQueryCount does not
	// report — see Recon.onQueryFailure.
	OnResult func(enum.ReconStatus)
}

// Recon runs the position manager's periodic reconciliation loop (§4.4).
// One dedicated goroutine per instrument, matching the teacher's
// one-thread-per-concern style (cmd/trader/main.go's per-component
// goroutines) generalized to this domain's recon cycle.
type Recon struct {
	posMgr *Manager
	cfg    ReconConfig

	mu   sync.Mutex
	cond *sync.Cond

	nextReconTime time.Time
	wake          bool
	stopped       bool

	mismatchStreak    int
	inconsistentCount int
	lastGap           float64
	queryFailStreak   int

	pending []chan enum.ReconStatus

	done chan struct{}
}

// NewRecon builds a reconciliation loop bound to posMgr.
func NewRecon(posMgr *Manager, cfg ReconConfig) *Recon {
	if cfg.TickSize <= 0 {
		cfg.TickSize = 1e-9
	}
	if cfg.MaxMismatchCount <= 0 {
		cfg.MaxMismatchCount = 1
	}
	if cfg.MaxFailQueryCount <= 0 {
		cfg.MaxFailQueryCount = 1
	}
	if cfg.NormalReconInterval <= 0 {
		cfg.NormalReconInterval = 5 * time.Second
	}
	r := &Recon{posMgr: posMgr, cfg: cfg}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Start runs the loop on a new goroutine until ctx is canceled, Stop is
// called, or a terminal status is produced.
func (r *Recon) Start(ctx context.Context) {
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		r.run(ctx)
	}()
}

// Stop requests the loop to exit and waits for it to do so.
func (r *Recon) Stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
	r.cond.Broadcast()
	if r.done != nil {
		<-r.done
	}
}

// Recon forces an immediate check and returns a one-shot future resolved
// with the next cycle's status (§4.4 "External trigger").
func (r *Recon) Recon() <-chan enum.ReconStatus {
	ch := make(chan enum.ReconStatus, 1)
	r.mu.Lock()
	r.pending = append(r.pending, ch)
	r.wake = true
	r.mu.Unlock()
	r.cond.Broadcast()
	return ch
}

func (r *Recon) run(ctx context.Context) {
	r.mu.Lock()
	r.nextReconTime = time.Now()
	r.mu.Unlock()

	for {
		if !r.sleepUntilDue(ctx) {
			return
		}

		status, reported := r.cycle(ctx)

		if reported {
			r.mu.Lock()
			pending := r.pending
			r.pending = nil
			r.mu.Unlock()
			for _, ch := range pending {
				ch <- status
			}
			if r.cfg.OnResult != nil {
				r.cfg.OnResult(status)
			}
			if status.IsTerminal() {
				return
			}
		}
	}
}

// sleepUntilDue blocks until nextReconTime, an explicit Recon() wake, a
// Stop(), or ctx cancellation. Returns false if the loop should exit.
func (r *Recon) sleepUntilDue(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		if r.stopped || ctx.Err() != nil {
			return false
		}
		if r.wake {
			r.wake = false
			return true
		}
		wait := time.Until(r.nextReconTime)
		if wait <= 0 {
			return true
		}

		timer := time.AfterFunc(wait, func() {
			r.mu.Lock()
			r.cond.Broadcast()
			r.mu.Unlock()
		})
		r.cond.Wait()
		timer.Stop()
	}
}

// cycle runs one query-classify-reschedule step and returns the resulting
// status plus whether it is reportable this cycle.
func (r *Recon) cycle(ctx context.Context) (enum.ReconStatus, bool) {
	reportedExchange, err := r.posMgr.cfg.Querier.QueryPosition(ctx)
	if err != nil {
		return r.onQueryFailure()
	}
	r.queryFailStreak = 0

	gap := math.Abs(reportedExchange - r.posMgr.Position())
	status := r.classify(gap)

	r.mu.Lock()
	switch status {
	case enum.ReconStatusNoGap, enum.ReconStatusTolerableGap:
		r.nextReconTime = time.Now().Add(r.cfg.NormalReconInterval)
	default:
		r.nextReconTime = time.Now().Add(r.cfg.RetryIntervalOnMismatch)
	}
	r.mu.Unlock()

	return status, true
}

func (r *Recon) onQueryFailure() (enum.ReconStatus, bool) {
	r.queryFailStreak++
	logs.Warnf("position: recon query failed (streak=%d/%d)", r.queryFailStreak, r.cfg.MaxFailQueryCount)

	r.mu.Lock()
	r.nextReconTime = time.Now().Add(r.cfg.RetryIntervalOnFailure)
	r.mu.Unlock()

	if r.queryFailStreak >= r.cfg.MaxFailQueryCount {
		return enum.ReconStatusFailedQuery, true
	}
	return enum.ReconStatusNoGap, false
}

// classify implements the §4.4 gap state machine. TolerableGap and
// IntolerableGap require the gap to persist at roughly the same value for
// MaxMismatchCount consecutive cycles ("persisted for ... consecutive
// identical observations"); until that streak completes, a nonzero gap
// reports UndeterminedGap — which also covers the case the spec calls out
// explicitly ("neither confirmed nor refuted after max_fail_query_count
// consecutive queries"), since both are "a gap exists but isn't yet
// resolved" and the spec never distinguishes their external effect.
func (r *Recon) classify(gap float64) enum.ReconStatus {
	if gap < r.cfg.TickSize {
		r.mismatchStreak = 0
		r.inconsistentCount = 0
		r.lastGap = 0
		return enum.ReconStatusNoGap
	}

	if math.Abs(gap-r.lastGap) < r.cfg.TickSize/2 {
		r.mismatchStreak++
	} else {
		r.mismatchStreak = 1
		r.lastGap = gap
	}
	r.inconsistentCount++

	if r.mismatchStreak >= r.cfg.MaxMismatchCount {
		r.mismatchStreak = 0
		r.inconsistentCount = 0
		r.lastGap = 0
		if gap >= r.cfg.TolerableThreshold {
			return enum.ReconStatusIntolerableGap
		}
		return enum.ReconStatusTolerableGap
	}

	if r.inconsistentCount >= r.cfg.MaxFailQueryCount {
		r.mismatchStreak = 0
		r.inconsistentCount = 0
		r.lastGap = 0
	}
	return enum.ReconStatusUndeterminedGap
}
