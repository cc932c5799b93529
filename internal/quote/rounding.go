package quote

import (
	"math"

	"github.com/ayanmadaan/trading-engine/internal/model/enum"
)

// RoundPrice applies the side-aware price rounder (§4.5 step 2, §6's
// inner/away/nearest modes). "Inner" rounds toward mid, "away" rounds away
// from mid, and the direction is resolved through the side's sign so one
// implementation serves both bid and ask ladders.
func RoundPrice(side enum.Side, mode enum.PriceRoundMode, raw, tick float64) float64 {
	if tick <= 0 {
		return raw
	}
	ratio := raw / tick
	switch mode {
	case enum.PriceRoundNearest:
		return math.Round(ratio) * tick
	case enum.PriceRoundAway:
		if side == enum.SideAsk {
			return math.Ceil(ratio) * tick
		}
		return math.Floor(ratio) * tick
	case enum.PriceRoundInner:
		if side == enum.SideAsk {
			return math.Floor(ratio) * tick
		}
		return math.Ceil(ratio) * tick
	default:
		return raw
	}
}

// RoundSize applies the configured size rounder (§6's ceil/floor/nearest
// modes). Unlike price rounding, size has no mid-relative direction.
func RoundSize(mode enum.SizeRoundMode, raw, tick float64) float64 {
	if tick <= 0 {
		return raw
	}
	ratio := raw / tick
	switch mode {
	case enum.SizeRoundCeil:
		return math.Ceil(ratio) * tick
	case enum.SizeRoundFloor:
		return math.Floor(ratio) * tick
	case enum.SizeRoundNearest:
		return math.Round(ratio) * tick
	default:
		return raw
	}
}
