package support

import (
	"math"

	"github.com/ayanmadaan/trading-engine/internal/book"
	"github.com/ayanmadaan/trading-engine/internal/errors"
	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
)

// MidShifter is the subset of quote.QuoteMidService the health checker needs.
type MidShifter interface {
	QuoteMid(referenceMid float64) float64
}

// OrderHealthCheck detects a stale or mispriced quote by comparing the
// innermost target order against the reference venue's shifted touch (§4.7:
// "Order health checker").
type OrderHealthCheck struct {
	ReferenceBook   *book.Book
	Mid             MidShifter
	MinimumDistance float64
}

// IsHealthy reports whether ladder's innermost entry on side sits at least
// MinimumDistance (as a fraction of the shifted touch) inner to the
// reference venue's touch on that side. An empty ladder or a one-sided
// reference book cannot be evaluated and is reported unhealthy.
func (c *OrderHealthCheck) IsHealthy(ladder []model.TargetOrder, side enum.Side) (bool, error) {
	if len(ladder) == 0 {
		return false, errors.ErrQuoteEmptyQuoteBook
	}

	var touch float64
	var ok bool
	if side == enum.SideAsk {
		level, o := c.ReferenceBook.BestAsk()
		touch, ok = level.Price.Float64(), o
	} else {
		level, o := c.ReferenceBook.BestBid()
		touch, ok = level.Price.Float64(), o
	}
	if !ok {
		return false, errors.ErrQuoteEmptyReferenceBook
	}

	shiftedTouch := c.Mid.QuoteMid(touch)
	if shiftedTouch == 0 {
		return false, nil
	}

	best := innermost(ladder, side)
	if !side.IsInner(best, shiftedTouch) {
		return false, nil
	}

	distance := math.Abs(best-shiftedTouch) / math.Abs(shiftedTouch)
	return distance >= c.MinimumDistance, nil
}

// innermost returns the ladder entry closest to mid on side.
func innermost(ladder []model.TargetOrder, side enum.Side) float64 {
	best := ladder[0].Price.Float64()
	for _, entry := range ladder[1:] {
		p := entry.Price.Float64()
		if side.IsInner(p, best) {
			best = p
		}
	}
	return best
}
