package venue

import (
	"sync/atomic"
	"time"

	"github.com/ayanmadaan/trading-engine/internal/book"
	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
)

// Level is one parsed price/quantity update for one book side.
type Level struct {
	Side     enum.Side
	Price    model.Price
	Quantity model.Quantity
}

// MarketDataParser turns one raw inbound frame into zero or more level
// updates (§4.2: "Each connector defines a per-venue parser that populates
// the associated order book"). ok is false for frames the connector should
// ignore entirely (heartbeats, acks, frames for a different instrument).
type MarketDataParser interface {
	Parse(payload []byte) (levels []Level, ok bool)
}

// DefaultWarmupFrames is the typical per-venue warmup depth (§4.2: "N
// venue-specific, typically 1-2").
const DefaultWarmupFrames = 2

// MarketDataConnector owns one venue's market-data channel: it applies
// parsed levels to Book and emits a coalesced EventMarketUpdate only when
// the top of book actually moved, after the warmup frames are consumed.
type MarketDataConnector struct {
	*Connector

	Book *book.Book

	venue        enum.Venue
	parser       MarketDataParser
	warmupFrames int
	framesSeen   atomic.Int64
	warmedUp     atomic.Bool
	submit       func(model.Event)
	traceSeq     atomic.Uint64
}

// NewMarketDataConnector wires parser and submit into a Connector built from
// cfg. cfg.OnMessage is overwritten; callers should leave it nil.
func NewMarketDataConnector(cfg Config, instrument string, maxLevels int, warmupFrames int, parser MarketDataParser, submit func(model.Event)) *MarketDataConnector {
	if warmupFrames <= 0 {
		warmupFrames = DefaultWarmupFrames
	}
	m := &MarketDataConnector{
		Book:         book.New(instrument, maxLevels),
		venue:        cfg.Venue,
		parser:       parser,
		warmupFrames: warmupFrames,
		submit:       submit,
	}
	cfg.OnMessage = m.onMessage
	m.Connector = New(cfg)
	return m
}

// IsWarmedUp reports the bookWarmedUp flag the strategy's is_trading_ready
// predicate reads across all connectors (§4.2).
func (m *MarketDataConnector) IsWarmedUp() bool {
	return m.warmedUp.Load()
}

func (m *MarketDataConnector) onMessage(payload []byte) {
	levels, ok := m.parser.Parse(payload)
	if !ok {
		return
	}

	if !m.warmedUp.Load() {
		m.applyLevels(levels)
		if m.framesSeen.Add(1) >= int64(m.warmupFrames) {
			m.warmedUp.Store(true)
		}
		return
	}

	bidBefore, bidOKBefore := m.Book.BestBid()
	askBefore, askOKBefore := m.Book.BestAsk()

	m.applyLevels(levels)
	m.Book.TsLastUpdated = time.Now().UnixNano()

	bidAfter, bidOKAfter := m.Book.BestBid()
	askAfter, askOKAfter := m.Book.BestAsk()

	changed := bidOKBefore != bidOKAfter || askOKBefore != askOKAfter
	if !changed && bidOKAfter {
		changed = !model.EqualEpsilon(bidBefore.Price.Float64(), bidAfter.Price.Float64())
	}
	if !changed && askOKAfter {
		changed = !model.EqualEpsilon(askBefore.Price.Float64(), askAfter.Price.Float64())
	}
	if !changed {
		return
	}

	if m.submit == nil {
		return
	}
	m.submit(model.Event{
		Kind:    model.EventMarketUpdate,
		Venue:   m.venue,
		TraceID: m.traceSeq.Add(1),
		TsEvent: m.Book.TsLastUpdated,
		TsRecv:  time.Now().UnixNano(),
	})
}

func (m *MarketDataConnector) applyLevels(levels []Level) {
	for _, l := range levels {
		switch l.Side {
		case enum.SideBid:
			_ = m.Book.ApplyBidLevel(l.Price, l.Quantity)
		case enum.SideAsk:
			_ = m.Book.ApplyAskLevel(l.Price, l.Quantity)
		}
	}
}
