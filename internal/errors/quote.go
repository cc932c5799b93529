package errors

import "errors"

var (
	ErrQuoteEmptyReferenceBook = errors.New("quote: reference book has no mid")
	ErrQuoteEmptyQuoteBook     = errors.New("quote: quote book has no touch price")
	ErrHedgeUnhealthy          = errors.New("hedge: preconditions not met")
	ErrHedgeBelowMinSize       = errors.New("hedge: unhedged exposure below minimum size")
)
