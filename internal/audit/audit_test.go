package audit

import (
	"testing"

	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
)

// A nil or zero-value Store must silently drop writes: a broken or
// unconfigured audit sink is never allowed to panic the trading path.
func TestStore_NilStoreRecordOrderDoesNotPanic(t *testing.T) {
	var s *Store
	s.RecordOrder(model.Order{ClientOrderID: 1, SubmitPrice: model.NewPrice(100), SubmitQty: model.NewQuantity(1)})
}

func TestStore_NilStoreRecordReconDoesNotPanic(t *testing.T) {
	var s *Store
	s.RecordRecon(enum.VenueHedge, "BTC-USD", enum.ReconStatusNoGap, 0)
}

func TestStore_ZeroValueStoreRecordOrderDoesNotPanic(t *testing.T) {
	s := &Store{}
	s.RecordOrder(model.Order{ClientOrderID: 1})
}
