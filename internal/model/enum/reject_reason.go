package enum

// RejectReason is the venue-independent reject taxonomy that every venue's reject
// codes are mapped into (§4.3). ORDER_SIZE_NOT_MULTIPLE_OF_LOT_SIZE is a member of
// the "invalid size" family referenced by S2 in spec.md §8.
type RejectReason uint8

const (
	_reject_reason_beg RejectReason = iota
	RejectReasonNone
	RejectReasonThrottled
	RejectReasonInvalidSize
	RejectReasonSizeNotMultipleOfLotSize
	RejectReasonInvalidPrice
	RejectReasonPostOnlyWouldCross
	RejectReasonInsufficientFunds
	RejectReasonOrderNotFound
	RejectReasonOrderAlreadyClosed
	RejectReasonInstrumentBlocked
	RejectReasonServiceUnavailable
	RejectReasonAuthError
	RejectReasonWSFailure
	RejectReasonUnknownError
	_reject_reason_end
)

func (r RejectReason) IsAvailable() bool {
	return r > _reject_reason_beg && r < _reject_reason_end
}

func (r RejectReason) String() string {
	switch r {
	case RejectReasonNone:
		return "none"
	case RejectReasonThrottled:
		return "throttled"
	case RejectReasonInvalidSize:
		return "invalid_size"
	case RejectReasonSizeNotMultipleOfLotSize:
		return "order_size_not_multiple_of_lot_size"
	case RejectReasonInvalidPrice:
		return "invalid_price"
	case RejectReasonPostOnlyWouldCross:
		return "post_only_would_cross"
	case RejectReasonInsufficientFunds:
		return "insufficient_funds"
	case RejectReasonOrderNotFound:
		return "order_not_found"
	case RejectReasonOrderAlreadyClosed:
		return "order_already_closed"
	case RejectReasonInstrumentBlocked:
		return "instrument_blocked"
	case RejectReasonServiceUnavailable:
		return "service_unavailable"
	case RejectReasonAuthError:
		return "auth_error"
	case RejectReasonWSFailure:
		return "ws_failure"
	case RejectReasonUnknownError:
		return "unknown_error"
	default:
		return "unknown"
	}
}
