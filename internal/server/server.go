// Package server provides the HTTP server and routing for fundnav.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aristath/fundnav/internal/config"
	"github.com/aristath/fundnav/internal/di"
	directoryhandlers "github.com/aristath/fundnav/internal/modules/directory/handlers"
	estimationhandlers "github.com/aristath/fundnav/internal/modules/estimation/handlers"
	historyhandlers "github.com/aristath/fundnav/internal/modules/history/handlers"
	holdingshandlers "github.com/aristath/fundnav/internal/modules/holdings/handlers"
	markethandlers "github.com/aristath/fundnav/internal/modules/market/handlers"
	markethourshandlers "github.com/aristath/fundnav/internal/modules/market_hours/handlers"
	"github.com/aristath/fundnav/internal/scheduler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Container *di.Container
	Jobs      *di.JobInstances
	Port      int
	DevMode   bool
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            Config
	container      *di.Container
	systemHandlers *SystemHandlers
	analyzeHandler *AnalyzeHandler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg,
		container: cfg.Container,
	}

	var jobs []scheduler.Job
	if cfg.Jobs != nil {
		jobs = cfg.Jobs.All()
	}
	s.systemHandlers = NewSystemHandlers(
		cfg.Container.Clock,
		cfg.Container.Cache,
		cfg.Container.ClientDataDB,
		cfg.Container.Scheduler,
		jobs,
		cfg.Log,
	)
	s.analyzeHandler = NewAnalyzeHandler(cfg.Container.GeminiClient, cfg.Log)

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: config.HTTPWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.container.Metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		// System monitoring and operations
		r.Get("/status", s.systemHandlers.HandleSystemStatus)
		r.Get("/jobs", s.systemHandlers.HandleJobsStatus)
		r.Post("/jobs/{name}", s.systemHandlers.HandleTriggerJob)

		// Estimates
		estimationHandler := estimationhandlers.NewHandler(s.container.Orchestrator, s.container.BatchScheduler, s.log)
		estimationHandler.RegisterRoutes(r)

		// Lookups
		directoryhandlers.NewHandler(s.container.DirectoryService, s.log).RegisterRoutes(r)
		holdingshandlers.NewHandler(s.container.HoldingsService, s.log).RegisterRoutes(r)
		historyhandlers.NewHandler(s.container.HistoryService, s.log).RegisterRoutes(r)
		markethandlers.NewHandler(s.container.MarketService, s.log).RegisterRoutes(r)
		markethourshandlers.NewHandler(s.container.Clock, s.log).RegisterRoutes(r)

		// Commentary
		r.Post("/analyze", s.analyzeHandler.HandleAnalyze)
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
