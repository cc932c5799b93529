package hedge

import (
	"time"

	"github.com/ayanmadaan/trading-engine/internal/book"
)

// HealthCheck gates hedging on the hedge venue's market-data and connection
// quality (§4.6: "Precondition for hedging").
type HealthCheck struct {
	HedgeBook        *book.Book
	MaxSpread        float64
	StaleThresholdNs int64
	WSReady          func() bool
}

// Check returns (true, "") if hedging is permitted, or (false, reason)
// naming the first failed precondition.
func (h *HealthCheck) Check() (bool, string) {
	if h == nil || h.HedgeBook == nil {
		return false, "no hedge book configured"
	}
	spread, ok := h.HedgeBook.Spread()
	if !ok {
		return false, "hedge book has no two-sided touch"
	}
	if spread > h.MaxSpread {
		return false, "hedge book spread exceeds max_spread"
	}
	age := time.Now().UnixNano() - h.HedgeBook.TsLastUpdated
	if age > h.StaleThresholdNs {
		return false, "hedge book is stale"
	}
	if h.WSReady != nil && !h.WSReady() {
		return false, "hedge venue websocket not ready"
	}
	return true, ""
}
