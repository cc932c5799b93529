// Package book implements the per-venue order book: top-of-book plus two
// sorted, capacity-bounded price-level arrays (§3). It is grounded on the
// teacher's internal/adapter.Depth — a fixed-capacity array of DepthRow per
// side — generalized from a [128]DepthRow wire-format struct into a
// dynamically-maintained, invariant-checked book that the market-data
// handler mutates in place.
package book

import (
	"sort"

	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/pkg/exception"
)

// DefaultMaxLevels is the default per-side level capacity (§3: "e.g., 1000 levels").
const DefaultMaxLevels = 1000

// Book is the order book for one instrument on one venue. It is written only
// by the owning connector's market-data parser and read by dispatcher
// handlers (§5) — no internal locking; callers on the dispatcher thread are
// already serialized, and any cross-thread read must go through the
// connector's documented field-level atomicity contract.
type Book struct {
	Instrument    string
	MaxLevels     int
	TsLastUpdated int64

	bids []model.PriceLevel // descending
	asks []model.PriceLevel // ascending
}

// New creates an empty book bounded to maxLevels per side.
func New(instrument string, maxLevels int) *Book {
	if maxLevels <= 0 {
		maxLevels = DefaultMaxLevels
	}
	return &Book{
		Instrument: instrument,
		MaxLevels:  maxLevels,
		bids:       make([]model.PriceLevel, 0, maxLevels),
		asks:       make([]model.PriceLevel, 0, maxLevels),
	}
}

// BestBid returns the highest bid level, or the zero level and false if the
// book has no bids.
func (b *Book) BestBid() (model.PriceLevel, bool) {
	if b == nil || len(b.bids) == 0 {
		return model.PriceLevel{}, false
	}
	return b.bids[0], true
}

// BestAsk returns the lowest ask level, or the zero level and false if the
// book has no asks.
func (b *Book) BestAsk() (model.PriceLevel, bool) {
	if b == nil || len(b.asks) == 0 {
		return model.PriceLevel{}, false
	}
	return b.asks[0], true
}

// Mid returns (bestBid+bestAsk)/2, or false if either side is empty.
func (b *Book) Mid() (float64, bool) {
	bid, ok := b.BestBid()
	if !ok {
		return 0, false
	}
	ask, ok := b.BestAsk()
	if !ok {
		return 0, false
	}
	return (bid.Price.Float64() + ask.Price.Float64()) / 2, true
}

// Spread returns bestAsk-bestBid, or false if either side is empty.
func (b *Book) Spread() (float64, bool) {
	bid, ok := b.BestBid()
	if !ok {
		return 0, false
	}
	ask, ok := b.BestAsk()
	if !ok {
		return 0, false
	}
	return ask.Price.Float64() - bid.Price.Float64(), true
}

// Bids returns the bid side levels, strictly descending (§3, §8.5).
func (b *Book) Bids() []model.PriceLevel { return b.bids }

// Asks returns the ask side levels, strictly ascending (§3, §8.5).
func (b *Book) Asks() []model.PriceLevel { return b.asks }

// ApplyBidLevel upserts a bid level by price; a zero or negative quantity
// erases the level (§3 invariant: "zero quantity means erase"). Maintains
// strict descending order and the MaxLevels capacity.
func (b *Book) ApplyBidLevel(price model.Price, qty model.Quantity) error {
	return b.applyLevel(&b.bids, price, qty, true)
}

// ApplyAskLevel upserts an ask level by price; a zero or negative quantity
// erases the level. Maintains strict ascending order and the MaxLevels
// capacity.
func (b *Book) ApplyAskLevel(price model.Price, qty model.Quantity) error {
	return b.applyLevel(&b.asks, price, qty, false)
}

// applyLevel performs the upsert/erase on one side. descending selects the
// bid-side comparator (strictly descending) vs the ask-side comparator
// (strictly ascending).
func (b *Book) applyLevel(side *[]model.PriceLevel, price model.Price, qty model.Quantity, descending bool) error {
	levels := *side
	p := price.Float64()

	idx := sort.Search(len(levels), func(i int) bool {
		if descending {
			return levels[i].Price.Float64() <= p+model.PriceEpsilon
		}
		return levels[i].Price.Float64() >= p-model.PriceEpsilon
	})

	found := idx < len(levels) && model.EqualEpsilon(levels[idx].Price.Float64(), p)

	if qty.Float64() <= 0 {
		if found {
			*side = append(levels[:idx], levels[idx+1:]...)
		}
		return nil
	}

	if found {
		levels[idx].Quantity = qty
		return nil
	}

	if len(levels) >= b.MaxLevels {
		// Capacity reached: drop updates to levels beyond the worst retained
		// level rather than growing unbounded (§3 invariant: size within capacity).
		if descending {
			if p <= levels[len(levels)-1].Price.Float64() {
				return exception.ErrBookCapacityExceeded
			}
		} else {
			if p >= levels[len(levels)-1].Price.Float64() {
				return exception.ErrBookCapacityExceeded
			}
		}
		levels = levels[:len(levels)-1]
	}

	levels = append(levels, model.PriceLevel{})
	copy(levels[idx+1:], levels[idx:])
	levels[idx] = model.PriceLevel{Price: price, Quantity: qty}
	*side = levels
	return nil
}

// TopLevels returns up to n levels of side, starting from the touch, as a
// defensive copy.
func (b *Book) TopLevels(side []model.PriceLevel, n int) []model.PriceLevel {
	if n > len(side) {
		n = len(side)
	}
	out := make([]model.PriceLevel, n)
	copy(out, side[:n])
	return out
}
