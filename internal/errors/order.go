package errors

import "errors"

// Order manager errors (§4.3).
var (
	ErrOrderRoutingNotReady = errors.New("order: routing websocket not ready")
	ErrOrderNotFound        = errors.New("order: not found in this run")
	ErrOrderAlreadyExists   = errors.New("order: client-order-id already exists")
	ErrOrderSendFailed      = errors.New("order: connector send failed")
	ErrOrderInvalidCancel   = errors.New("order: cancel on unknown client-order-id")
	ErrOrderInvalidModify   = errors.New("order: modify on unknown client-order-id")
	ErrOrderMonotonicFilled = errors.New("order: cumulative filled would decrease")
)
