package gateway

import (
	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
	"github.com/ayanmadaan/trading-engine/internal/venue"
	"github.com/ayanmadaan/trading-engine/pkg/scanner"
)

var (
	keyOp    = []byte(`"op"`)
	keySide  = []byte(`"side"`)
	keyPrice = []byte(`"price"`)
	keyQty   = []byte(`"qty"`)
)

// MarketDataCodec implements venue.MarketDataParser against this package's
// generic one-level-per-frame book update shape:
// {"op":"book","side":"bid","price":"100.10","qty":"2.5"}. Frames with a
// different op (heartbeats, acks on a shared channel) are ignored.
type MarketDataCodec struct{}

func (MarketDataCodec) Parse(payload []byte) ([]venue.Level, bool) {
	opVal, ok := scanner.ScanStringField(payload, keyOp)
	if !ok || string(opVal) != "book" {
		return nil, false
	}

	sideVal, ok := scanner.ScanStringField(payload, keySide)
	if !ok {
		return nil, false
	}
	price, ok := scanner.ScanFloatField(payload, keyPrice)
	if !ok {
		return nil, false
	}
	qty, ok := scanner.ScanFloatField(payload, keyQty)
	if !ok {
		return nil, false
	}

	side := enum.SideBid
	if string(sideVal) == "ask" {
		side = enum.SideAsk
	}

	return []venue.Level{{
		Side:     side,
		Price:    model.NewPrice(price),
		Quantity: model.NewQuantity(qty),
	}}, true
}
