package gateway

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ayanmadaan/trading-engine/internal/model/enum"
)

func TestBybitRejectCodes_QtyInvalid(t *testing.T) {
	require.Equal(t, enum.RejectReasonSizeNotMultipleOfLotSize, BybitRejectCodes().Translate("10001"))
}

func TestOkxRejectCodes_UnknownCodeFallsBack(t *testing.T) {
	require.Equal(t, enum.RejectReasonUnknownError, OkxRejectCodes().Translate("99999"))
}
