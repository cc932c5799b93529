package model

import "github.com/ayanmadaan/trading-engine/internal/model/enum"

// PriceLevel is a (price, quantity) pair as it exists in an order book or a
// ladder (§3). Quantity is strictly positive by invariant; a caller observing
// zero quantity must erase the level rather than store it.
type PriceLevel struct {
	Price    Price
	Quantity Quantity
}

// TargetOrder is one entry of the quote generator's target-order ladder (§3,
// §4.5): the desired quoting posture at one price.
type TargetOrder struct {
	Price Price
	Size  Quantity
	Side  enum.Side
}
