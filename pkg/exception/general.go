package exception

import "errors"

// General low-level errors shared across pkg/ helpers.
var (
	ErrNilInstance     = errors.New("nil instance")
	ErrInvalidArgument = errors.New("invalid argument")
)
