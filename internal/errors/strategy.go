package errors

import "errors"

// Strategy wiring and lifecycle errors (§4.2, §5).
var (
	ErrStrategyReadyTimeout = errors.New("strategy: not ready within strategy_ready_timeout_seconds")
)
