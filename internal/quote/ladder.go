// Package quote computes the target-order ladder the strategy wants resting
// on the quote venue (§4.5). It is grounded on book.Book's single-dispatcher,
// no-internal-locking design (§5): a Generator is only ever touched from the
// dispatcher thread, so its dirty flags are atomics purely to let an
// unrelated observer (metrics, tests) peek without racing the writer, not
// because two writers exist.
package quote

import (
	"sync"
	"sync/atomic"

	"github.com/ayanmadaan/trading-engine/internal/book"
	"github.com/ayanmadaan/trading-engine/internal/errors"
	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
)

// OffsetSizePair is one configured ladder rung: how far from the base price
// and how large (§4.5 inputs, §6 ladder configuration).
type OffsetSizePair struct {
	Offset float64
	Size   float64
}

// SideConfig is the per-side ladder configuration.
type SideConfig struct {
	Pairs          []OffsetSizePair
	PriceRoundMode enum.PriceRoundMode
	SizeRoundMode  enum.SizeRoundMode
}

// Config parameterizes one instrument's ladder generator (§4.5 inputs, §6).
type Config struct {
	TickSizePrice float64
	TickSizeQty   float64
	OffsetBase    enum.OffsetBase

	EnableTouchShift    bool
	TicksFromTouch      float64
	EnablePostableShift bool
	TicksFromPostable   float64

	Bid SideConfig
	Ask SideConfig
}

// Generator computes the target-order ladder for one instrument, reading a
// (typically faster) reference book and the quote-side book it will rest
// orders on (§4.5).
type Generator struct {
	cfg           Config
	mid           QuoteMidService
	referenceBook *book.Book
	quoteBook     *book.Book

	mu      sync.Mutex
	current [2][]model.TargetOrder // indexed by sideIndex
	dirty   [2]atomic.Bool
}

// New builds a ladder generator bound to the given reference/quote books.
func New(cfg Config, mid QuoteMidService, referenceBook, quoteBook *book.Book) *Generator {
	g := &Generator{cfg: cfg, mid: mid, referenceBook: referenceBook, quoteBook: quoteBook}
	g.dirty[0].Store(true)
	g.dirty[1].Store(true)
	return g
}

func sideIndex(s enum.Side) int {
	return SideIndex(s)
}

// SideIndex maps a side to the 0/1 slot used throughout this package's
// per-side arrays: callers outside the package (the strategy's own
// parallel live-order tracking) index the same way so the two stay aligned.
func SideIndex(s enum.Side) int {
	if s == enum.SideAsk {
		return 1
	}
	return 0
}

// MarkDirty flags both sides' target orders as stale (§4.5: "marked dirty
// whenever the event loop handles a reference-market update or a position
// change"). Both sides are affected because quote_mid derives from the
// shared reference mid and, through the position-proportional skew, from the
// shared position.
func (g *Generator) MarkDirty() {
	g.dirty[0].Store(true)
	g.dirty[1].Store(true)
}

// IsDirty reports whether side needs a Refresh.
func (g *Generator) IsDirty(side enum.Side) bool {
	return g.dirty[sideIndex(side)].Load()
}

// Current returns the last computed ladder for side without recomputing.
func (g *Generator) Current(side enum.Side) []model.TargetOrder {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]model.TargetOrder(nil), g.current[sideIndex(side)]...)
}

// Refresh recomputes side's target orders if dirty; a clean side is a no-op
// returning the cached ladder (§4.5 dirty/clean protocol).
func (g *Generator) Refresh(side enum.Side) ([]model.TargetOrder, error) {
	idx := sideIndex(side)
	if !g.dirty[idx].CompareAndSwap(true, false) {
		return g.Current(side), nil
	}

	orders, err := g.compute(side)
	if err != nil {
		g.dirty[idx].Store(true)
		return nil, err
	}

	g.mu.Lock()
	g.current[idx] = orders
	g.mu.Unlock()
	return append([]model.TargetOrder(nil), orders...), nil
}

func (g *Generator) compute(side enum.Side) ([]model.TargetOrder, error) {
	sc := g.cfg.Bid
	if side == enum.SideAsk {
		sc = g.cfg.Ask
	}
	if len(sc.Pairs) == 0 {
		return nil, nil
	}

	referenceMid, ok := g.referenceBook.Mid()
	if !ok {
		return nil, errors.ErrQuoteEmptyReferenceBook
	}
	quoteMid := g.mid.QuoteMid(referenceMid)

	var base float64
	if g.cfg.OffsetBase == enum.OffsetBaseMid {
		base = quoteMid
	} else {
		level, ok := touchForSide(g.referenceBook, side)
		if !ok {
			return nil, errors.ErrQuoteEmptyReferenceBook
		}
		base = level
	}

	prices := make([]float64, len(sc.Pairs))
	for i, pair := range sc.Pairs {
		raw := base * (1 + side.Sign()*pair.Offset)
		prices[i] = RoundPrice(side, sc.PriceRoundMode, raw, g.cfg.TickSizePrice)
	}

	if g.cfg.EnableTouchShift {
		touch, ok := touchForSide(g.quoteBook, side)
		if ok {
			applyMonotonicShift(side, prices, touch, g.cfg.TicksFromTouch, g.cfg.TickSizePrice)
		}
	}

	if g.cfg.EnablePostableShift {
		opposite, ok := touchForSide(g.quoteBook, side.Opposite())
		if ok {
			applyMonotonicShift(side, prices, opposite, g.cfg.TicksFromPostable, g.cfg.TickSizePrice)
		}
	}

	orders := make([]model.TargetOrder, len(sc.Pairs))
	for i, pair := range sc.Pairs {
		size := RoundSize(sc.SizeRoundMode, pair.Size, g.cfg.TickSizeQty)
		orders[i] = model.TargetOrder{
			Price: model.NewPrice(prices[i]),
			Size:  model.NewQuantity(size),
			Side:  side,
		}
	}
	return orders, nil
}

// applyMonotonicShift is §4.5 steps 3-4: push the first rung away from an
// anchor (the local touch, or the opposite side's touch for a postable fix)
// if it rests inner to that anchor, then cascade the rest so each rung stays
// at least one tick away from its inner neighbor.
func applyMonotonicShift(side enum.Side, prices []float64, anchor, ticksFromAnchor, tick float64) {
	if len(prices) == 0 {
		return
	}
	if side.IsInner(prices[0], anchor) {
		prices[0] = side.AddAway(anchor, ticksFromAnchor*tick)
	}
	for i := 1; i < len(prices); i++ {
		if !side.IsInner(prices[i-1], prices[i]) {
			prices[i] = side.AddAway(prices[i-1], tick)
		}
	}
}

func touchForSide(b *book.Book, side enum.Side) (float64, bool) {
	if side == enum.SideAsk {
		level, ok := b.BestAsk()
		if !ok {
			return 0, false
		}
		return level.Price.Float64(), true
	}
	level, ok := b.BestBid()
	if !ok {
		return 0, false
	}
	return level.Price.Float64(), true
}
