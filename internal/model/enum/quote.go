package enum

// OffsetBase selects what a ladder offset is measured from (§4.5, §6).
type OffsetBase uint8

const (
	_offset_base_beg OffsetBase = iota
	OffsetBaseMid
	OffsetBaseTouch
	_offset_base_end
)

func (b OffsetBase) IsAvailable() bool {
	return b > _offset_base_beg && b < _offset_base_end
}

// PriceRoundMode is the rounding discipline applied to a ladder price (§6).
type PriceRoundMode uint8

const (
	_price_round_beg PriceRoundMode = iota
	PriceRoundInner
	PriceRoundAway
	PriceRoundNearest
	_price_round_end
)

func (m PriceRoundMode) IsAvailable() bool {
	return m > _price_round_beg && m < _price_round_end
}

// SizeRoundMode is the rounding discipline applied to a ladder size (§6).
type SizeRoundMode uint8

const (
	_size_round_beg SizeRoundMode = iota
	SizeRoundCeil
	SizeRoundFloor
	SizeRoundNearest
	_size_round_end
)

func (m SizeRoundMode) IsAvailable() bool {
	return m > _size_round_beg && m < _size_round_end
}

// Venue is a lightweight tag distinguishing the quote, hedge, and reference venues
// so that handlers keyed by venue (§4.1, §4.2) can dispatch without string comparisons.
type Venue uint8

const (
	_venue_beg Venue = iota
	VenueQuote
	VenueHedge
	VenueReference
	_venue_end
)

func (v Venue) IsAvailable() bool {
	return v > _venue_beg && v < _venue_end
}

func (v Venue) String() string {
	switch v {
	case VenueQuote:
		return "quote"
	case VenueHedge:
		return "hedge"
	case VenueReference:
		return "reference"
	default:
		return "unknown"
	}
}
