package obs

import (
	"sync/atomic"
	"time"

	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
)

const (
	maxEventKind     = int(model.EventWebSocketDisconnected)
	maxRejectReason  = int(enum.RejectReasonUnknownError)
	maxReconStatus   = int(enum.ReconStatusFailedQuery)
)

// Metrics collects lightweight counters and latency stats for the strategy's
// event loop, order rejects, and reconciliation cycles.
type Metrics struct {
	eventCounts      [maxEventKind + 1]uint64
	rejectCounts     [maxRejectReason + 1]uint64
	reconCounts      [maxReconStatus + 1]uint64
	queueDrops       uint64
	handlerErrors    uint64

	eventLatency   LatencyStats
	fillLatency    LatencyStats
	reconLatency   LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	EventCounts   map[model.EventKind]uint64
	RejectCounts  map[enum.RejectReason]uint64
	ReconCounts   map[enum.ReconStatus]uint64
	QueueDrops    uint64
	HandlerErrors uint64
	EventLatency  LatencySnapshot
	FillLatency   LatencySnapshot
	ReconLatency  LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveEvent increments the per-kind counter and, when both timestamps are
// present, the dispatcher-observed latency (§4.1 TsEvent/TsRecv).
func (m *Metrics) ObserveEvent(e model.Event) {
	if m == nil {
		return
	}
	idx := int(e.Kind)
	if idx >= 0 && idx < len(m.eventCounts) {
		atomic.AddUint64(&m.eventCounts[idx], 1)
	}
	if e.TsEvent > 0 && e.TsRecv > 0 {
		delta := e.TsRecv - e.TsEvent
		if delta >= 0 {
			m.eventLatency.Observe(time.Duration(delta))
		}
	}
}

// IncRejectReason increments the reject-reason counter (§4.3's reject taxonomy).
func (m *Metrics) IncRejectReason(reason enum.RejectReason) {
	if m == nil {
		return
	}
	idx := int(reason)
	if idx >= 0 && idx < len(m.rejectCounts) {
		atomic.AddUint64(&m.rejectCounts[idx], 1)
	}
}

// IncReconStatus increments the reconciliation-status counter (§4.4).
func (m *Metrics) IncReconStatus(status enum.ReconStatus) {
	if m == nil {
		return
	}
	idx := int(status)
	if idx >= 0 && idx < len(m.reconCounts) {
		atomic.AddUint64(&m.reconCounts[idx], 1)
	}
}

// IncQueueDrop records a dropped/suppressed event-loop submission.
func (m *Metrics) IncQueueDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.queueDrops, 1)
}

// IncHandlerError records a caught handler panic (§4.1 "handler_error").
func (m *Metrics) IncHandlerError() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.handlerErrors, 1)
}

// ObserveFill measures fill-to-hedge or fill-observation latency.
func (m *Metrics) ObserveFill(d time.Duration) {
	if m == nil {
		return
	}
	m.fillLatency.Observe(d)
}

// ObserveRecon measures one reconciliation query's round-trip latency.
func (m *Metrics) ObserveRecon(d time.Duration) {
	if m == nil {
		return
	}
	m.reconLatency.Observe(d)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	eventCounts := make(map[model.EventKind]uint64)
	for i := range m.eventCounts {
		if v := atomic.LoadUint64(&m.eventCounts[i]); v > 0 {
			eventCounts[model.EventKind(i)] = v
		}
	}
	rejectCounts := make(map[enum.RejectReason]uint64)
	for i := range m.rejectCounts {
		if v := atomic.LoadUint64(&m.rejectCounts[i]); v > 0 {
			rejectCounts[enum.RejectReason(i)] = v
		}
	}
	reconCounts := make(map[enum.ReconStatus]uint64)
	for i := range m.reconCounts {
		if v := atomic.LoadUint64(&m.reconCounts[i]); v > 0 {
			reconCounts[enum.ReconStatus(i)] = v
		}
	}
	return Snapshot{
		EventCounts:   eventCounts,
		RejectCounts:  rejectCounts,
		ReconCounts:   reconCounts,
		QueueDrops:    atomic.LoadUint64(&m.queueDrops),
		HandlerErrors: atomic.LoadUint64(&m.handlerErrors),
		EventLatency:  m.eventLatency.Snapshot(),
		FillLatency:   m.fillLatency.Snapshot(),
		ReconLatency:  m.reconLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
