// cmd/trader is the process entrypoint (§6 "CLI surface"). It takes exactly
// one positional argument, a bootstrap JSON file naming the strategy's YAML
// config and log directory, wires every component the strategy needs, then
// blocks until SIGINT/SIGTERM/SIGABRT requests a graceful shutdown.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	pyroscope "github.com/grafana/pyroscope-go"
	wraperrors "github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"github.com/ayanmadaan/trading-engine/internal/audit"
	"github.com/ayanmadaan/trading-engine/internal/book"
	"github.com/ayanmadaan/trading-engine/internal/config"
	"github.com/ayanmadaan/trading-engine/internal/errors"
	"github.com/ayanmadaan/trading-engine/internal/gateway"
	"github.com/ayanmadaan/trading-engine/internal/hedge"
	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
	"github.com/ayanmadaan/trading-engine/internal/obs"
	"github.com/ayanmadaan/trading-engine/internal/ordermgr"
	"github.com/ayanmadaan/trading-engine/internal/position"
	"github.com/ayanmadaan/trading-engine/internal/quote"
	"github.com/ayanmadaan/trading-engine/internal/strategy"
	"github.com/ayanmadaan/trading-engine/internal/support"
	"github.com/ayanmadaan/trading-engine/internal/venue"
	"github.com/ayanmadaan/trading-engine/pkg/conn"
	"github.com/ayanmadaan/trading-engine/pkg/websocket"
)

// bootstrap is the tiny document named by the one positional argument (§6):
// it only says where the real strategy config and the log directory live.
type bootstrap struct {
	StrategyConfigPath string `json:"strategy_config_path"`
	StrategyLogDir     string `json:"strategy_log_dir"`
}

func loadBootstrap(path string) (bootstrap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return bootstrap{}, errors.Wrap(err, errors.ErrCLIInvalidBootstrapJSON.Error())
	}

	var b bootstrap
	if err := sonic.Unmarshal(data, &b); err != nil {
		return bootstrap{}, fmt.Errorf("%w: %v", errors.ErrCLIInvalidBootstrapJSON, err)
	}
	if b.StrategyConfigPath == "" {
		return bootstrap{}, errors.ErrCLIMissingConfigPath
	}
	if b.StrategyLogDir == "" {
		return bootstrap{}, errors.ErrCLIMissingLogDir
	}
	return b, nil
}

// logFileName builds "{YYYYMMDD_HHMMSS_mmm}_{config_name}.log" (§6).
func logFileName(now time.Time, configPath string) string {
	configName := strings.TrimSuffix(filepath.Base(configPath), filepath.Ext(configPath))
	return fmt.Sprintf("%s_%03d_%s.log", now.Format("20060102_150405"), now.Nanosecond()/1_000_000, configName)
}

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, errors.ErrCLIMissingBootstrapArg)
		return 1
	}

	boot, err := loadBootstrap(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logFile, err := openLogFile(boot)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logFile.Close()
	// The core packages never open files themselves; redirecting the
	// process's own stdout here is the one place the log stream is wired to
	// a destination.
	os.Stdout = logFile

	loaded, err := config.Load(boot.StrategyConfigPath)
	if err != nil {
		logs.Errorf("trader: config load failed: %+v", err)
		return 1
	}

	stopProfiler := startProfiler(loaded, boot.StrategyConfigPath)
	defer stopProfiler()

	auditStore, closeAudit, err := openAudit(loaded)
	if err != nil {
		logs.Errorf("trader: audit store init failed: %+v", err)
		return 1
	}
	defer closeAudit()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := buildStrategy(ctx, loaded, auditStore)

	go watchConfig(ctx, boot.StrategyConfigPath)

	if err := s.Start(ctx); err != nil {
		logs.Warnf("trader: strategy not ready within timeout: %+v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGABRT)
	<-sigCh

	logs.Infof("trader: shutdown signal received")
	s.Stop()

	snapshot := s.MetricsSnapshot()
	logs.Infof("trader: final metrics events=%v rejects=%v recon=%v queue_drops=%d handler_errors=%d",
		snapshot.EventCounts, snapshot.RejectCounts, snapshot.ReconCounts, snapshot.QueueDrops, snapshot.HandlerErrors)

	return 0
}

func openLogFile(boot bootstrap) (*os.File, error) {
	if err := os.MkdirAll(boot.StrategyLogDir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLogDirUnwritable.Error())
	}
	path := filepath.Join(boot.StrategyLogDir, logFileName(time.Now(), boot.StrategyConfigPath))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, wraperrors.Wrapf(errors.ErrConfigLogDirUnwritable, "open log file %s", path)
	}
	return f, nil
}

// startProfiler wires grafana/pyroscope-go continuous profiling when
// observability.pyroscope_server_address is set, following the same
// pyroscope.Config shape the teacher's pkg/websocket example uses.
func startProfiler(loaded config.Loaded, configPath string) func() {
	if loaded.PyroscopeServerAddress == "" {
		return func() {}
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: "trading-engine",
		ServerAddress:   loaded.PyroscopeServerAddress,
		Tags:            map[string]string{"config": filepath.Base(configPath)},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		logs.Warnf("trader: pyroscope start failed: %+v", err)
		return func() {}
	}
	return func() { _ = profiler.Stop() }
}

func openAudit(loaded config.Loaded) (*audit.Store, func(), error) {
	if loaded.AuditDSN == "" {
		return nil, func() {}, nil
	}

	client, err := conn.New(conn.Option{ConnString: loaded.AuditDSN})
	if err != nil {
		return nil, func() {}, wraperrors.Wrapf(err, "trader: connect audit db")
	}

	store, err := audit.New(client.DB())
	if err != nil {
		_ = client.Close()
		return nil, func() {}, wraperrors.Wrapf(err, "trader: migrate audit store")
	}
	return store, func() { _ = client.Close() }, nil
}

// buildStrategy wires every per-venue connector, position tracker, and
// support component, and assembles them into one strategy.Strategy, in the
// same construct-then-wire order the teacher's cmd/trader/main.go follows
// for its own WAL/risk components.
func buildStrategy(ctx context.Context, loaded config.Loaded, auditStore *audit.Store) *strategy.Strategy {
	metrics := obs.NewMetrics()
	trace := obs.NewTraceGenerator(0)

	quoteBinding, hedgeBinding := buildVenueBindings(ctx, loaded)

	referenceBook := resolveReferenceBook(loaded, quoteBinding.MarketData.Book, hedgeBinding.MarketData.Book)

	// PositionFn is replaced below, once the strategy exists, by one that
	// returns the quote venue's configured base position, not its live net
	// position; PositionSkewCoeff is left at zero, so the quote mid carries
	// no position skew.
	midShifter := &quote.MidShifter{
		PositionFn: func() float64 { return 0 },
	}

	cfg := strategy.Config{
		LiveTradingEnabled:         loaded.LiveTradingEnabled,
		ReadyTimeout:               loaded.StrategyReadyTimeout,
		OrderType:                  "limit",
		TdMode:                     "cross",
		Quote:                      quoteBinding,
		Hedge:                      hedgeBinding,
		ReferenceBook:              referenceBook,
		Ladder:                     loaded.Ladder,
		MidShifter:                 midShifter,
		OrderHealthMinimumDistance: loaded.OrderHealthMinimumDistance,
		RateLimiter: support.NewTokenBucket(
			loaded.RateLimiter.MaxTokens,
			loaded.RateLimiter.Window,
			loaded.RateLimiter.Cooldown,
		),
		Cooldown: &support.Cooldown{},
		Pending:  support.NewPendingOps(),
		HedgeHealth: hedge.HealthCheck{
			MaxSpread:        loaded.HedgeExposure.MaxSpread,
			StaleThresholdNs: loaded.HedgeExposure.StaleThreshold.Nanoseconds(),
			WSReady:          func() bool { return hedgeBinding.OrderRoute.State() == venue.StateOpen },
		},
		MinHedgeSize: loaded.HedgeExposure.MinHedgeSize,
		Audit:        auditStore,
		Metrics:      metrics,
		Trace:        trace,
	}

	s := strategy.New(cfg)

	midShifter.PositionFn = func() float64 { return quoteBinding.PositionCfg.BasePosition }

	return s
}

// resolveReferenceBook picks the book the ladder prices against.
// quoting_reference_price.source (§6) names which of the two configured
// markets the reference price is read from.
func resolveReferenceBook(loaded config.Loaded, quoteBook, hedgeBook *book.Book) *book.Book {
	if strings.EqualFold(loaded.QuotingReferencePriceSource, loaded.Hedge.Name) {
		return hedgeBook
	}
	return quoteBook
}

func nopSubmit(model.Event) {}

func buildVenueBindings(ctx context.Context, loaded config.Loaded) (strategy.VenueBinding, strategy.VenueBinding) {
	httpClient := &http.Client{Timeout: 20 * time.Second}

	quoteMarketData := venue.NewMarketDataConnector(
		venue.Config{
			Venue:             enum.VenueQuote,
			Dialer:            websocket.NewDialer(ctx, loaded.QuoteConnectivity.MarketData.Host, loaded.QuoteConnectivity.MarketData.Port, loaded.QuoteConnectivity.MarketData.Path),
			RetryLimit:        int(loaded.WSReconnectionRetryLimit),
			HeartbeatInterval: loaded.WebsocketHeartbeat,
		},
		loaded.Quote.Name,
		int(loaded.Quote.NumberOfOrdersToTrack),
		venue.DefaultWarmupFrames,
		gateway.MarketDataCodec{},
		nopSubmit,
	)
	quoteOrderRoute := venue.NewOrderRouteConnector(
		venue.Config{
			Venue:             enum.VenueQuote,
			Dialer:            websocket.NewDialer(ctx, loaded.QuoteConnectivity.OrderRoute.Host, loaded.QuoteConnectivity.OrderRoute.Port, loaded.QuoteConnectivity.OrderRoute.Path),
			RequiresAuth:      true,
			RetryLimit:        int(loaded.WSReconnectionRetryLimit),
			HeartbeatInterval: loaded.WebsocketHeartbeat,
		},
		gateway.OrderCodec{},
		gateway.OrderCodec{},
		nopSubmit,
	)

	hedgeMarketData := venue.NewMarketDataConnector(
		venue.Config{
			Venue:             enum.VenueHedge,
			Dialer:            websocket.NewDialer(ctx, loaded.HedgeConnectivity.MarketData.Host, loaded.HedgeConnectivity.MarketData.Port, loaded.HedgeConnectivity.MarketData.Path),
			RetryLimit:        int(loaded.WSReconnectionRetryLimit),
			HeartbeatInterval: loaded.WebsocketHeartbeat,
		},
		loaded.Hedge.Name,
		int(loaded.Hedge.NumberOfOrdersToTrack),
		venue.DefaultWarmupFrames,
		gateway.MarketDataCodec{},
		nopSubmit,
	)
	hedgeOrderRoute := venue.NewOrderRouteConnector(
		venue.Config{
			Venue:             enum.VenueHedge,
			Dialer:            websocket.NewDialer(ctx, loaded.HedgeConnectivity.OrderRoute.Host, loaded.HedgeConnectivity.OrderRoute.Port, loaded.HedgeConnectivity.OrderRoute.Path),
			RequiresAuth:      true,
			RetryLimit:        int(loaded.WSReconnectionRetryLimit),
			HeartbeatInterval: loaded.WebsocketHeartbeat,
		},
		gateway.OrderCodec{},
		gateway.OrderCodec{},
		nopSubmit,
	)

	quoteBinding := strategy.VenueBinding{
		Venue:      enum.VenueQuote,
		Instrument: loaded.Quote.Name,
		MarketData: quoteMarketData,
		OrderRoute: quoteOrderRoute,
		RejectMap:  rejectMapFor(loaded.Quote.Name),
		PositionCfg: position.Config{
			Venue:        enum.VenueQuote,
			Instrument:   loaded.Quote.Name,
			BasePosition: loaded.BybitPosition.BasePosition,
			Querier: &gateway.PositionQuerier{
				Client:     httpClient,
				URL:        loaded.QuoteConnectivity.PositionQuery.URL(),
				Instrument: loaded.Quote.Name,
			},
		},
		ReconCfg: loaded.BybitRecon,
	}
	hedgeBinding := strategy.VenueBinding{
		Venue:      enum.VenueHedge,
		Instrument: loaded.Hedge.Name,
		MarketData: hedgeMarketData,
		OrderRoute: hedgeOrderRoute,
		RejectMap:  rejectMapFor(loaded.Hedge.Name),
		PositionCfg: position.Config{
			Venue:        enum.VenueHedge,
			Instrument:   loaded.Hedge.Name,
			BasePosition: loaded.OkxPosition.BasePosition,
			Querier: &gateway.PositionQuerier{
				Client:     httpClient,
				URL:        loaded.HedgeConnectivity.PositionQuery.URL(),
				Instrument: loaded.Hedge.Name,
			},
		},
		ReconCfg: loaded.OkxRecon,
	}

	return quoteBinding, hedgeBinding
}

// rejectMapFor picks the reject-code taxonomy table by matching the
// configured market name. A name matching neither falls back to the bybit
// table, whose Translate already maps unrecognized codes to
// RejectReasonUnknownError.
func rejectMapFor(marketName string) ordermgr.RejectCodeMap {
	if strings.Contains(strings.ToLower(marketName), "okx") {
		return gateway.OkxRejectCodes()
	}
	return gateway.BybitRejectCodes()
}

// watchConfig polls the strategy config file for changes and logs when it
// sees one, the way the teacher's own cmd/trader/main.go watchConfig polls
// its JSON config for a live reload signal. Reloading the running strategy's
// wired connectors is out of scope for this process lifetime; an operator
// restarts the process to pick up ladder or threshold changes.
func watchConfig(ctx context.Context, path string) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	lastModTime := modTime(path)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mt := modTime(path)
			if !mt.IsZero() && mt.After(lastModTime) {
				lastModTime = mt
				logs.Infof("trader: config file changed on disk path=%s (restart to apply)", path)
			}
		}
	}
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
