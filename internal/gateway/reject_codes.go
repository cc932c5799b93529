package gateway

import (
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
	"github.com/ayanmadaan/trading-engine/internal/ordermgr"
)

// BybitRejectCodes is the fixed venue-code-to-taxonomy table for a
// bybit-style numeric retCode (§4.3, §8 S2: retCode=10001 -> qty invalid).
func BybitRejectCodes() ordermgr.RejectCodeMap {
	return ordermgr.RejectCodeMap{
		"0":     enum.RejectReasonNone,
		"10001": enum.RejectReasonSizeNotMultipleOfLotSize,
		"10002": enum.RejectReasonInvalidPrice,
		"10003": enum.RejectReasonInsufficientFunds,
		"10004": enum.RejectReasonOrderNotFound,
		"10005": enum.RejectReasonOrderAlreadyClosed,
		"10006": enum.RejectReasonThrottled,
		"10007": enum.RejectReasonPostOnlyWouldCross,
		"10016": enum.RejectReasonServiceUnavailable,
		"10017": enum.RejectReasonAuthError,
	}
}

// OkxRejectCodes is the fixed venue-code-to-taxonomy table for an
// okx-style alphanumeric retCode.
func OkxRejectCodes() ordermgr.RejectCodeMap {
	return ordermgr.RejectCodeMap{
		"0":     enum.RejectReasonNone,
		"51000": enum.RejectReasonInvalidSize,
		"51004": enum.RejectReasonOrderNotFound,
		"51006": enum.RejectReasonInvalidPrice,
		"51008": enum.RejectReasonInsufficientFunds,
		"51023": enum.RejectReasonInstrumentBlocked,
		"51094": enum.RejectReasonPostOnlyWouldCross,
		"50011": enum.RejectReasonThrottled,
		"50013": enum.RejectReasonServiceUnavailable,
		"50114": enum.RejectReasonAuthError,
	}
}
