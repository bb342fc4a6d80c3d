/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the server and CLI for access to services.
 */
package di

import (
	"github.com/aristath/fundnav/internal/cache"
	"github.com/aristath/fundnav/internal/clientdata"
	"github.com/aristath/fundnav/internal/clients/eastmoney"
	"github.com/aristath/fundnav/internal/clients/fundgz"
	"github.com/aristath/fundnav/internal/clients/gemini"
	"github.com/aristath/fundnav/internal/clients/transport"
	"github.com/aristath/fundnav/internal/database"
	"github.com/aristath/fundnav/internal/metrics"
	"github.com/aristath/fundnav/internal/modules/directory"
	"github.com/aristath/fundnav/internal/modules/estimation"
	"github.com/aristath/fundnav/internal/modules/history"
	"github.com/aristath/fundnav/internal/modules/holdings"
	"github.com/aristath/fundnav/internal/modules/market"
	"github.com/aristath/fundnav/internal/modules/market_hours"
	"github.com/aristath/fundnav/internal/modules/proxy"
	"github.com/aristath/fundnav/internal/modules/quotes"
	"github.com/aristath/fundnav/internal/scheduler"
)

/**
 * Container holds all dependencies for the application.
 *
 * Architecture:
 * - Databases: client_data.db (holdings and directory L2 cache)
 * - Infrastructure: in-memory freshness cache, metrics, shared HTTP session
 * - Clients: fundgz official feed, eastmoney (quotes, history, holdings, directory), gemini
 * - Services: estimation tiers and the supplemented lookup services
 */
type Container struct {
	// Databases
	ClientDataDB *database.DB

	// Repositories
	ClientDataRepo *clientdata.Repository

	// Infrastructure
	Cache     *cache.Store
	Metrics   *metrics.Metrics
	Session   *transport.Session
	Scheduler *scheduler.Scheduler

	// Clients
	FundGZClient    *fundgz.Client
	EastMoneyClient *eastmoney.Client
	GeminiClient    *gemini.Client

	// Services
	Clock            *market_hours.MarketClock
	ProxyResolver    *proxy.Resolver
	Extrapolator     *holdings.Extrapolator
	HistoryService   *history.Service
	HoldingsService  *holdings.Service
	DirectoryService *directory.Service
	QuoteBatcher     *quotes.Batcher
	MarketService    *market.Service
	Orchestrator     *estimation.Orchestrator
	BatchScheduler   *estimation.BatchScheduler
}

// JobInstances holds the registered background jobs
type JobInstances struct {
	CacheSweep        scheduler.Job
	ClientDataCleanup scheduler.Job
	Maintenance       scheduler.Job
	DirectoryRefresh  scheduler.Job
}

// All returns the registered jobs in registration order
func (j *JobInstances) All() []scheduler.Job {
	return []scheduler.Job{j.CacheSweep, j.ClientDataCleanup, j.Maintenance, j.DirectoryRefresh}
}

// Close releases the container's databases
func (c *Container) Close() error {
	if c.ClientDataDB != nil {
		return c.ClientDataDB.Close()
	}
	return nil
}
