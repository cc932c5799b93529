package support

import "time"

// PendingTracker records submit-time by client-order-id for one operation
// kind (submission, modification, or cancellation) and reports ids whose
// wait has exceeded a threshold (§4.7: "Pending-op trackers").
type PendingTracker struct {
	submitted map[int64]time.Time
}

// NewPendingTracker builds an empty tracker.
func NewPendingTracker() *PendingTracker {
	return &PendingTracker{submitted: make(map[int64]time.Time)}
}

// Track records that clOrdID's operation was submitted at now.
func (t *PendingTracker) Track(clOrdID int64, now time.Time) {
	t.submitted[clOrdID] = now
}

// Resolve removes clOrdID once its ack/reject has arrived.
func (t *PendingTracker) Resolve(clOrdID int64) {
	delete(t.submitted, clOrdID)
}

// Overdue returns every client-order-id whose pending wait, measured from
// now, exceeds threshold.
func (t *PendingTracker) Overdue(now time.Time, threshold time.Duration) []int64 {
	var overdue []int64
	for id, submitTime := range t.submitted {
		if now.Sub(submitTime) > threshold {
			overdue = append(overdue, id)
		}
	}
	return overdue
}

// Len returns the number of in-flight operations tracked.
func (t *PendingTracker) Len() int { return len(t.submitted) }

// PendingOps bundles the three trackers the order path needs: submission,
// modification, and cancellation.
type PendingOps struct {
	Submission   *PendingTracker
	Modification *PendingTracker
	Cancellation *PendingTracker
}

// NewPendingOps builds all three trackers.
func NewPendingOps() *PendingOps {
	return &PendingOps{
		Submission:   NewPendingTracker(),
		Modification: NewPendingTracker(),
		Cancellation: NewPendingTracker(),
	}
}
