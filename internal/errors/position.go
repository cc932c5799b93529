package errors

import "errors"

// Position manager and reconciliation errors (§4.4).
var (
	ErrPositionNotWarmedUp  = errors.New("position: not warmed up")
	ErrPositionQueryFailed  = errors.New("position: exchange query failed")
	ErrPositionReconRunning = errors.New("position: reconciliation loop already running")
)
