package exception

import "errors"

// Order book errors (§3).
var (
	ErrBookCapacityExceeded = errors.New("book: level capacity exceeded")
	ErrBookLevelNotFound    = errors.New("book: level not found")
	ErrBookInvalidQuantity  = errors.New("book: quantity must be positive, zero erases the level")
)
