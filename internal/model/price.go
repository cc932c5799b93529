// Package model holds the data types shared across the event loop, venue
// connectors, order manager, position manager, quote generator and hedger.
package model

import (
	"github.com/yanun0323/decimal"
)

// PriceEpsilon is the fixed epsilon used to compare prices that arrived as
// strings and round identically (§3).
const PriceEpsilon = 1e-9

// Price is a rational decimal, stored the way the teacher's market-data
// connectors decode venue-reported numeric fields: as decimal.Decimal, not a
// bare float64, so string round-trips through a venue's JSON never lose a
// digit the way a naive strconv.ParseFloat conversion can.
type Price decimal.Decimal

// Quantity is a rational decimal with the same representation as Price.
type Quantity decimal.Decimal

// Float64 returns the underlying 64-bit float value (§3: "rational decimal
// stored as 64-bit float").
func (p Price) Float64() float64 { f, _ := decimal.Decimal(p).Float64(); return f }

// Float64 returns the underlying 64-bit float value.
func (q Quantity) Float64() float64 { f, _ := decimal.Decimal(q).Float64(); return f }

// NewPrice builds a Price from a float64.
func NewPrice(v float64) Price { return Price(decimal.NewFromFloat(v)) }

// NewQuantity builds a Quantity from a float64.
func NewQuantity(v float64) Quantity { return Quantity(decimal.NewFromFloat(v)) }

// ParsePrice parses a venue-reported price string into a Price.
func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price(""), err
	}
	return Price(d), nil
}

// ParseQuantity parses a venue-reported quantity string into a Quantity.
func ParseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity(""), err
	}
	return Quantity(d), nil
}

// EqualEpsilon reports whether two prices are equal within PriceEpsilon (§3).
func EqualEpsilon(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < PriceEpsilon
}

func (p Price) String() string    { return decimal.Decimal(p).String() }
func (q Quantity) String() string { return decimal.Decimal(q).String() }

// Add returns p+o as a Price.
func (p Price) Add(o Price) Price { return NewPrice(p.Float64() + o.Float64()) }

// Sub returns p-o as a Price.
func (p Price) Sub(o Price) Price { return NewPrice(p.Float64() - o.Float64()) }

// Mul returns p*factor as a Price.
func (p Price) Mul(factor float64) Price { return NewPrice(p.Float64() * factor) }

// Add returns q+o as a Quantity.
func (q Quantity) Add(o Quantity) Quantity { return NewQuantity(q.Float64() + o.Float64()) }

// Sub returns q-o as a Quantity.
func (q Quantity) Sub(o Quantity) Quantity { return NewQuantity(q.Float64() - o.Float64()) }
