// Package config loads and resolves the strategy's YAML configuration
// document (§6). It follows the load/validate/resolve shape the teacher uses
// in its own JSON config loader: an unmarshal pass into a raw document,
// followed by a build/resolve pass that validates cross-references and fills
// defaults, producing a Loaded struct of resolved, typed values.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ayanmadaan/trading-engine/internal/errors"
)

// rawDocument mirrors the YAML layout of §6 field-for-field.
type rawDocument struct {
	TradingControl        tradingControlRaw `yaml:"trading_control"`
	Markets                marketsRaw        `yaml:"markets"`
	Connectivity          connectivityRaw   `yaml:"connectivity"`
	ExchangeStability      exchangeStabilityRaw `yaml:"exchange_stability"`
	BybitPosition          positionRaw       `yaml:"bybit_position"`
	OkxPosition            positionRaw       `yaml:"okx_position"`
	BybitRecon             reconRaw          `yaml:"bybit_recon"`
	OkxRecon               reconRaw          `yaml:"okx_recon"`
	QuotingReferencePrice  referencePriceRaw `yaml:"quoting_reference_price"`
	Ladder                 ladderRaw         `yaml:"ladder"`
	Observability          observabilityRaw  `yaml:"observability"`
	Audit                  auditRaw          `yaml:"audit"`
	Hedge                  hedgeRaw          `yaml:"hedge"`
	OrderHealth            orderHealthRaw    `yaml:"order_health"`
	RateLimiter            rateLimiterRaw    `yaml:"rate_limiter"`
}

// hedgeRaw configures §4.6's exposure-flattening thresholds and the hedge
// venue's precondition-gating health check (§4.6 "Precondition for hedging").
type hedgeRaw struct {
	MinHedgeSize     float64 `yaml:"min_hedge_size"`
	MaxSpread        float64 `yaml:"max_spread"`
	StaleThresholdMs int64   `yaml:"stale_threshold_ms"`
}

// orderHealthRaw configures §4.7's order health checker.
type orderHealthRaw struct {
	MinimumDistance float64 `yaml:"minimum_distance"`
}

// rateLimiterRaw configures §4.7's token-bucket order-submission limiter.
type rateLimiterRaw struct {
	MaxTokens  float64 `yaml:"max_tokens"`
	WindowMs   int     `yaml:"window_ms"`
	CooldownMs int     `yaml:"cooldown_ms"`
}

// observabilityRaw names the optional continuous-profiling sink. Left empty,
// cmd/trader never starts the profiler.
type observabilityRaw struct {
	PyroscopeServerAddress string `yaml:"pyroscope_server_address"`
}

// auditRaw names the Postgres connection the audit store writes through.
// Left empty, cmd/trader runs with a nil (no-op) audit.Store.
type auditRaw struct {
	DSN string `yaml:"dsn"`
}

type tradingControlRaw struct {
	LiveTradingEnabled          bool `yaml:"live_trading_enabled"`
	StrategyReadyTimeoutSeconds int  `yaml:"strategy_ready_timeout_seconds"`
}

type marketsRaw struct {
	Quote marketRaw `yaml:"quote"`
	Hedge marketRaw `yaml:"hedge"`
}

type marketRaw struct {
	Name                  string        `yaml:"name"`
	TickSizes             tickSizesRaw  `yaml:"tick_sizes"`
	NumberOfOrdersToTrack uint          `yaml:"number_of_orders_to_track"`
	ExchangeKeys          exchangeKeysRaw `yaml:"exchange_keys"`
}

type tickSizesRaw struct {
	Price    float64 `yaml:"price"`
	Quantity float64 `yaml:"quantity"`
}

type exchangeKeysRaw struct {
	APIKey        string `yaml:"api_key"`
	APISecret     string `yaml:"api_secret"`
	APIPassphrase string `yaml:"api_passphrase"`
}

// connectivityRaw names the per-venue websocket endpoints main.go dials.
// Wire framing itself is out of scope (§1 Non-goals); this is only the
// address the configured Dialer connects to.
type connectivityRaw struct {
	Quote venueConnectivityRaw `yaml:"quote"`
	Hedge venueConnectivityRaw `yaml:"hedge"`
}

type venueConnectivityRaw struct {
	MarketData    endpointRaw `yaml:"market_data"`
	OrderRoute    endpointRaw `yaml:"order_route"`
	PositionQuery endpointRaw `yaml:"position_query"`
}

type endpointRaw struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Path string `yaml:"path"`
}

type exchangeStabilityRaw struct {
	WSReconnectionRetryLimit uint `yaml:"ws_reconnection_retry_limit"`
	WebsocketHeartbeatMs     uint `yaml:"websocket_heartbeat_ms"`
}

type positionRaw struct {
	MaxPosition  float64 `yaml:"max_position"`
	BasePosition float64 `yaml:"base_position"`
}

type reconRaw struct {
	TolerableThreshold        float64 `yaml:"tolerable_threshold"`
	MaxMismatchCnt            int     `yaml:"max_mismatch_cnt"`
	MaxFailureQueryCnt        int     `yaml:"max_failure_query_cnt"`
	RetryIntervalOnFailureMs  int     `yaml:"retry_interval_on_failure_ms"`
	NormalReconIntervalMs     int     `yaml:"normal_recon_interval_ms"`
	RetryIntervalOnMismatchMs int     `yaml:"retry_interval_on_mismatch_ms"`
}

type referencePriceRaw struct {
	Source string `yaml:"source"`
}

type offsetSizeRaw struct {
	Offset float64 `yaml:"offset"`
	Size   float64 `yaml:"size"`
}

type sideLadderRaw struct {
	Pairs          []offsetSizeRaw `yaml:"pairs"`
	PriceRoundMode string          `yaml:"price_round_mode"`
	SizeRoundMode  string          `yaml:"size_round_mode"`
}

type ladderRaw struct {
	OffsetBase          string        `yaml:"offset_base"`
	EnableTouchPrice     bool          `yaml:"enable_touch_price"`
	EnablePostablePrice  bool          `yaml:"enable_postable_price"`
	TicksFromTouch       float64       `yaml:"ticks_from_touch"`
	TicksFromPostable    float64       `yaml:"ticks_from_postable"`
	Bid                  sideLadderRaw `yaml:"bid"`
	Ask                  sideLadderRaw `yaml:"ask"`
}

// Load reads path, parses it as YAML, and resolves it into a Loaded config.
func Load(path string) (Loaded, error) {
	if path == "" {
		return Loaded{}, errors.ErrConfigMissingPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "config: read file")
	}

	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Loaded{}, errors.Wrap(err, errors.ErrConfigInvalidYAML.Error())
	}

	return resolve(raw)
}
