package config

import (
	"time"

	"github.com/ayanmadaan/trading-engine/internal/errors"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
	"github.com/ayanmadaan/trading-engine/internal/position"
	"github.com/ayanmadaan/trading-engine/internal/quote"
)

// MarketSpec is one venue's resolved market identity and credentials (§6:
// markets.quote / markets.hedge).
type MarketSpec struct {
	Name                  string
	TickSizePrice         float64
	TickSizeQty           float64
	NumberOfOrdersToTrack uint
	APIKey                string
	APISecret             string
	APIPassphrase         string
}

// Endpoint is one channel's dial address (websocket) or base URL (REST).
type Endpoint struct {
	Host string
	Port string
	Path string
}

// URL renders Endpoint as an https REST base URL for PositionQuery.
func (e Endpoint) URL() string {
	if e.Host == "" {
		return ""
	}
	host := e.Host
	if e.Port != "" && e.Port != "443" {
		host = e.Host + ":" + e.Port
	}
	return "https://" + host + e.Path
}

// VenueConnectivity groups one venue's three endpoints: the two websocket
// channels and the REST position query.
type VenueConnectivity struct {
	MarketData    Endpoint
	OrderRoute    Endpoint
	PositionQuery Endpoint
}

// PositionSpec is one venue's resolved position bounds (§6: bybit_position /
// okx_position). The Querier is supplied at wiring time by the strategy, not
// by the config document.
type PositionSpec struct {
	MaxPosition  float64
	BasePosition float64
}

// Loaded is the fully resolved, typed configuration the strategy wires up
// against, mirroring the teacher's ops.Loaded shape.
type Loaded struct {
	LiveTradingEnabled   bool
	StrategyReadyTimeout time.Duration

	Quote MarketSpec
	Hedge MarketSpec

	QuoteConnectivity VenueConnectivity
	HedgeConnectivity VenueConnectivity

	WSReconnectionRetryLimit uint
	WebsocketHeartbeat       time.Duration

	BybitPosition PositionSpec
	OkxPosition   PositionSpec

	BybitRecon position.ReconConfig
	OkxRecon   position.ReconConfig

	QuotingReferencePriceSource string

	Ladder quote.Config

	PyroscopeServerAddress string
	AuditDSN                string

	HedgeExposure HedgeExposureSpec
	OrderHealthMinimumDistance float64
	RateLimiter RateLimiterSpec
}

// HedgeExposureSpec configures §4.6's exposure-flattening threshold and the
// hedge-venue health precondition.
type HedgeExposureSpec struct {
	MinHedgeSize   float64
	MaxSpread      float64
	StaleThreshold time.Duration
}

// RateLimiterSpec configures §4.7's token-bucket order-submission limiter.
type RateLimiterSpec struct {
	MaxTokens float64
	Window    time.Duration
	Cooldown  time.Duration
}

func resolve(raw rawDocument) (Loaded, error) {
	if raw.Markets.Quote.Name == "" || raw.Markets.Hedge.Name == "" {
		return Loaded{}, errors.ErrConfigMissingMarket
	}

	ladder, err := resolveLadder(raw.Ladder, raw.Markets.Quote.TickSizes)
	if err != nil {
		return Loaded{}, err
	}

	bybitRecon, err := resolveRecon(raw.BybitRecon, raw.Markets.Hedge.TickSizes.Price)
	if err != nil {
		return Loaded{}, err
	}
	okxRecon, err := resolveRecon(raw.OkxRecon, raw.Markets.Hedge.TickSizes.Price)
	if err != nil {
		return Loaded{}, err
	}

	readyTimeout := time.Duration(raw.TradingControl.StrategyReadyTimeoutSeconds) * time.Second
	if readyTimeout <= 0 {
		readyTimeout = 30 * time.Second
	}

	return Loaded{
		LiveTradingEnabled:       raw.TradingControl.LiveTradingEnabled,
		StrategyReadyTimeout:     readyTimeout,
		Quote:                    resolveMarket(raw.Markets.Quote),
		Hedge:                    resolveMarket(raw.Markets.Hedge),
		QuoteConnectivity:        resolveConnectivity(raw.Connectivity.Quote),
		HedgeConnectivity:        resolveConnectivity(raw.Connectivity.Hedge),
		WSReconnectionRetryLimit: raw.ExchangeStability.WSReconnectionRetryLimit,
		WebsocketHeartbeat:       time.Duration(raw.ExchangeStability.WebsocketHeartbeatMs) * time.Millisecond,
		BybitPosition:            resolvePosition(raw.BybitPosition),
		OkxPosition:              resolvePosition(raw.OkxPosition),
		BybitRecon:               bybitRecon,
		OkxRecon:                 okxRecon,
		QuotingReferencePriceSource: raw.QuotingReferencePrice.Source,
		Ladder:                   ladder,
		PyroscopeServerAddress:   raw.Observability.PyroscopeServerAddress,
		AuditDSN:                 raw.Audit.DSN,
		HedgeExposure:            resolveHedgeExposure(raw.Hedge),
		OrderHealthMinimumDistance: resolveOrderHealthMinimumDistance(raw.OrderHealth),
		RateLimiter:              resolveRateLimiter(raw.RateLimiter),
	}, nil
}

func resolveHedgeExposure(h hedgeRaw) HedgeExposureSpec {
	spec := HedgeExposureSpec{
		MinHedgeSize:   h.MinHedgeSize,
		MaxSpread:      h.MaxSpread,
		StaleThreshold: time.Duration(h.StaleThresholdMs) * time.Millisecond,
	}
	if spec.MaxSpread <= 0 {
		spec.MaxSpread = 0.05
	}
	if spec.StaleThreshold <= 0 {
		spec.StaleThreshold = 5 * time.Second
	}
	return spec
}

func resolveOrderHealthMinimumDistance(o orderHealthRaw) float64 {
	if o.MinimumDistance <= 0 {
		return 0.0005
	}
	return o.MinimumDistance
}

func resolveRateLimiter(r rateLimiterRaw) RateLimiterSpec {
	spec := RateLimiterSpec{
		MaxTokens: r.MaxTokens,
		Window:    time.Duration(r.WindowMs) * time.Millisecond,
		Cooldown:  time.Duration(r.CooldownMs) * time.Millisecond,
	}
	if spec.MaxTokens <= 0 {
		spec.MaxTokens = 10
	}
	if spec.Window <= 0 {
		spec.Window = time.Second
	}
	if spec.Cooldown <= 0 {
		spec.Cooldown = 2 * time.Second
	}
	return spec
}

func resolveMarket(m marketRaw) MarketSpec {
	return MarketSpec{
		Name:                  m.Name,
		TickSizePrice:         m.TickSizes.Price,
		TickSizeQty:           m.TickSizes.Quantity,
		NumberOfOrdersToTrack: m.NumberOfOrdersToTrack,
		APIKey:                m.ExchangeKeys.APIKey,
		APISecret:             m.ExchangeKeys.APISecret,
		APIPassphrase:         m.ExchangeKeys.APIPassphrase,
	}
}

func resolveConnectivity(v venueConnectivityRaw) VenueConnectivity {
	return VenueConnectivity{
		MarketData:    resolveEndpoint(v.MarketData),
		OrderRoute:    resolveEndpoint(v.OrderRoute),
		PositionQuery: resolveEndpoint(v.PositionQuery),
	}
}

func resolveEndpoint(e endpointRaw) Endpoint {
	return Endpoint{Host: e.Host, Port: e.Port, Path: e.Path}
}

func resolvePosition(p positionRaw) PositionSpec {
	return PositionSpec{MaxPosition: p.MaxPosition, BasePosition: p.BasePosition}
}

func resolveRecon(r reconRaw, tickSize float64) (position.ReconConfig, error) {
	if r.TolerableThreshold < 0 {
		return position.ReconConfig{}, errors.ErrConfigInvalidThreshold
	}
	return position.ReconConfig{
		TickSize:                tickSize,
		TolerableThreshold:      r.TolerableThreshold,
		MaxMismatchCount:        r.MaxMismatchCnt,
		MaxFailQueryCount:       r.MaxFailureQueryCnt,
		NormalReconInterval:     time.Duration(r.NormalReconIntervalMs) * time.Millisecond,
		RetryIntervalOnFailure:  time.Duration(r.RetryIntervalOnFailureMs) * time.Millisecond,
		RetryIntervalOnMismatch: time.Duration(r.RetryIntervalOnMismatchMs) * time.Millisecond,
	}, nil
}

func resolveLadder(l ladderRaw, tick tickSizesRaw) (quote.Config, error) {
	offsetBase, err := parseOffsetBase(l.OffsetBase)
	if err != nil {
		return quote.Config{}, err
	}

	bid, err := resolveSideLadder(l.Bid)
	if err != nil {
		return quote.Config{}, err
	}
	ask, err := resolveSideLadder(l.Ask)
	if err != nil {
		return quote.Config{}, err
	}

	return quote.Config{
		TickSizePrice:       tick.Price,
		TickSizeQty:         tick.Quantity,
		OffsetBase:          offsetBase,
		EnableTouchShift:    l.EnableTouchPrice,
		TicksFromTouch:      l.TicksFromTouch,
		EnablePostableShift: l.EnablePostablePrice,
		TicksFromPostable:   l.TicksFromPostable,
		Bid:                 bid,
		Ask:                 ask,
	}, nil
}

func resolveSideLadder(s sideLadderRaw) (quote.SideConfig, error) {
	priceMode, err := parsePriceRoundMode(s.PriceRoundMode)
	if err != nil {
		return quote.SideConfig{}, err
	}
	sizeMode, err := parseSizeRoundMode(s.SizeRoundMode)
	if err != nil {
		return quote.SideConfig{}, err
	}

	pairs := make([]quote.OffsetSizePair, 0, len(s.Pairs))
	for _, p := range s.Pairs {
		if p.Offset <= 0 || p.Size <= 0 {
			return quote.SideConfig{}, errors.ErrConfigInvalidLadder
		}
		pairs = append(pairs, quote.OffsetSizePair{Offset: p.Offset, Size: p.Size})
	}

	return quote.SideConfig{Pairs: pairs, PriceRoundMode: priceMode, SizeRoundMode: sizeMode}, nil
}

func parseOffsetBase(s string) (enum.OffsetBase, error) {
	switch s {
	case "mid", "":
		return enum.OffsetBaseMid, nil
	case "touch":
		return enum.OffsetBaseTouch, nil
	default:
		return 0, errors.ErrConfigInvalidLadder
	}
}

func parsePriceRoundMode(s string) (enum.PriceRoundMode, error) {
	switch s {
	case "inner":
		return enum.PriceRoundInner, nil
	case "away", "":
		return enum.PriceRoundAway, nil
	case "nearest":
		return enum.PriceRoundNearest, nil
	default:
		return 0, errors.ErrConfigInvalidLadder
	}
}

func parseSizeRoundMode(s string) (enum.SizeRoundMode, error) {
	switch s {
	case "ceil", "":
		return enum.SizeRoundCeil, nil
	case "floor":
		return enum.SizeRoundFloor, nil
	case "nearest":
		return enum.SizeRoundNearest, nil
	default:
		return 0, errors.ErrConfigInvalidLadder
	}
}
