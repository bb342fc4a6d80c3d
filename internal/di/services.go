package di

import (
	"fmt"

	"github.com/aristath/fundnav/internal/cache"
	"github.com/aristath/fundnav/internal/clients/eastmoney"
	"github.com/aristath/fundnav/internal/clients/fundgz"
	"github.com/aristath/fundnav/internal/clients/gemini"
	"github.com/aristath/fundnav/internal/clients/transport"
	"github.com/aristath/fundnav/internal/config"
	"github.com/aristath/fundnav/internal/metrics"
	"github.com/aristath/fundnav/internal/modules/directory"
	"github.com/aristath/fundnav/internal/modules/estimation"
	"github.com/aristath/fundnav/internal/modules/history"
	"github.com/aristath/fundnav/internal/modules/holdings"
	"github.com/aristath/fundnav/internal/modules/market"
	"github.com/aristath/fundnav/internal/modules/market_hours"
	"github.com/aristath/fundnav/internal/modules/proxy"
	"github.com/aristath/fundnav/internal/modules/quotes"
	"github.com/rs/zerolog"
)

// InitializeServices creates clients and services and stores them in the container
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	// Infrastructure
	container.Metrics = metrics.New()
	container.Cache = cache.NewStore(cache.WithObserver(container.Metrics.ObserveCache))
	container.Session = transport.NewSession(transport.Config{
		RequestsPerSecond: cfg.UpstreamRPS,
		Observer:          container.Metrics.ObserveUpstream,
	}, log)

	// Clients
	container.FundGZClient = fundgz.NewClient(container.Session, container.Cache, cfg.OfficialTimeout, log)
	container.EastMoneyClient = eastmoney.NewClient(container.Session, log)
	container.GeminiClient = gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, 0, log)

	// Market clock
	clock, err := market_hours.NewMarketClock(market_hours.XSHG, cfg.MarketHolidays...)
	if err != nil {
		return fmt.Errorf("failed to create market clock: %w", err)
	}
	container.Clock = clock

	// Proxy table
	table, err := loadProxyTable(cfg.ProxyTablePath)
	if err != nil {
		return err
	}
	container.ProxyResolver = proxy.NewResolver(table)
	log.Info().Int("entries", len(table)).Msg("Proxy table loaded")

	// Lookup services
	container.HistoryService = history.NewService(container.EastMoneyClient, container.Cache, cfg.HistoryTimeout, log)
	container.HoldingsService = holdings.NewService(
		container.EastMoneyClient,
		container.ClientDataRepo,
		container.Cache,
		cfg.HoldingsTimeout,
		clock.Location(),
		log,
	)
	container.DirectoryService = directory.NewService(container.EastMoneyClient, container.ClientDataRepo, container.Cache, 0, log)
	container.QuoteBatcher = quotes.NewBatcher(container.EastMoneyClient, container.Cache, quotes.Config{
		ChunkSize: cfg.QuoteChunkSize,
		Timeout:   cfg.QuoteTimeout,
	}, log)
	container.MarketService = market.NewService(container.QuoteBatcher)

	// Estimation
	container.Extrapolator = holdings.NewExtrapolator(cfg.HoldingsDamping, cfg.HoldingsMinCoverage)
	container.Orchestrator = estimation.NewOrchestrator(estimation.Dependencies{
		Clock:        clock,
		Official:     container.FundGZClient,
		History:      container.HistoryService,
		Holdings:     container.HoldingsService,
		Quotes:       container.QuoteBatcher,
		Resolver:     container.ProxyResolver,
		Extrapolator: container.Extrapolator,
		Names:        container.DirectoryService,
		Recorder:     container.Metrics,
	}, cfg.OfficialEpsilon, log)
	container.BatchScheduler = estimation.NewBatchScheduler(
		container.Orchestrator,
		cfg.BatchConcurrency,
		cfg.BatchTimeout,
		container.Metrics,
		log,
	)

	log.Info().Msg("Services initialized")
	return nil
}

func loadProxyTable(path string) (proxy.Table, error) {
	table, err := proxy.LoadTable(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load proxy table %q: %w", path, err)
	}
	return table, nil
}
