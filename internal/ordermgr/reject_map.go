package ordermgr

import "github.com/ayanmadaan/trading-engine/internal/model/enum"

// RejectCodeMap translates venue-specific reject codes into the universal
// taxonomy (§4.3: "fixed mapping table from venue-specific code to the
// universal taxonomy"). Codes are matched as raw strings so both numeric
// (bybit) and alphanumeric (okx) venue codes fit the same table without a
// second type parameter.
type RejectCodeMap map[string]enum.RejectReason

// Translate returns the mapped reason, or RejectReasonUnknownError for any
// code absent from the table (§4.3: "a catchall UNKNOWN_ERROR").
func (m RejectCodeMap) Translate(code string) enum.RejectReason {
	if m == nil {
		return enum.RejectReasonUnknownError
	}
	if reason, ok := m[code]; ok {
		return reason
	}
	return enum.RejectReasonUnknownError
}
