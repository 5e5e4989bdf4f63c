// Package server exposes the dashboard flows over a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"axinsight/internal/analysis"
	"axinsight/internal/config"
	"axinsight/internal/logger"
	"axinsight/internal/searchindex"
	"axinsight/internal/session"
)

// IndexerAdmin is the indexer control surface exposed under /api/indexer.
type IndexerAdmin interface {
	Status(ctx context.Context) (*searchindex.IndexerStatus, error)
	Run(ctx context.Context) error
	DetectFieldMap(ctx context.Context) (*searchindex.FieldMap, error)
	HasIndexer() bool
}

// Server represents the HTTP server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	svc        *analysis.Service
	sessions   *session.Manager
	indexer    IndexerAdmin // may be nil
	config     config.Server
	log        *slog.Logger
}

// New creates a new HTTP server instance. indexer may be nil when no
// search index is configured; its routes then report a configuration
// error.
func New(svc *analysis.Service, indexer IndexerAdmin, cfg config.Server) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		svc:      svc,
		sessions: session.NewManager(),
		indexer:  indexer,
		config:   cfg,
		log:      logger.Get(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	// Completion calls dominate request latency; the write timeout is the
	// real ceiling, this just bounds fully stuck requests.
	s.router.Use(middleware.Timeout(120 * time.Second))

	if s.config.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-Session-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/news", func(r chi.Router) {
			r.Post("/search", s.handleNewsSearch)
			r.Get("/", s.handleNewsList)
		})

		r.Route("/analysis", func(r chi.Router) {
			r.Post("/pest-swot", s.handleAnalyzePestSwot)
			r.Get("/pest-swot", s.handlePestSwotView)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/upload", s.handleDocumentUpload)
			r.Post("/search", s.handleDocumentSearch)
			r.Get("/summary", s.handleDocumentSummary)
		})

		r.Route("/indexer", func(r chi.Router) {
			r.Get("/status", s.handleIndexerStatus)
			r.Get("/fields", s.handleIndexerFields)
			r.Post("/run", s.handleIndexerRun)
			r.Post("/reindex", s.handleIndexerReindex)
		})

		r.Route("/insight", func(r chi.Router) {
			r.Post("/combined", s.handleCombinedInsight)
			r.Get("/combined", s.handleCombinedView)
		})

		r.Post("/session/reset", s.handleSessionReset)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.config.ReadTimeout,
		"write_timeout", s.config.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
