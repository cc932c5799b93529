package support

import "time"

// TokenBucket is the rate limiter of §4.7: max_tokens tokens refilled over
// time_window, with a cooldown entered on exhaustion during which every
// consume fails even though time has passed.
type TokenBucket struct {
	maxTokens   float64
	refillRate  float64 // tokens per nanosecond
	cooldown    time.Duration
	tokens      float64
	lastRefill  time.Time
	cooldownEnd time.Time
}

// NewTokenBucket builds a limiter allowing maxTokens consumes per window,
// entering cooldownDuration once the bucket runs dry.
func NewTokenBucket(maxTokens float64, window, cooldownDuration time.Duration) *TokenBucket {
	if window <= 0 {
		window = time.Second
	}
	return &TokenBucket{
		maxTokens:  maxTokens,
		refillRate: maxTokens / float64(window),
		cooldown:   cooldownDuration,
		tokens:     maxTokens,
		lastRefill: time.Time{},
	}
}

// TryConsume refills the bucket for elapsed time since the last call, then
// deducts one token if available. Returns false during cooldown or if the
// bucket is empty (which starts the cooldown).
func (b *TokenBucket) TryConsume(now time.Time) bool {
	if !b.cooldownEnd.IsZero() && now.Before(b.cooldownEnd) {
		return false
	}

	if !b.lastRefill.IsZero() {
		elapsed := now.Sub(b.lastRefill)
		if elapsed > 0 {
			b.tokens += float64(elapsed) * b.refillRate
			if b.tokens > b.maxTokens {
				b.tokens = b.maxTokens
			}
		}
	}
	b.lastRefill = now

	if b.tokens < 1 {
		b.cooldownEnd = now.Add(b.cooldown)
		return false
	}

	b.tokens--
	return true
}
