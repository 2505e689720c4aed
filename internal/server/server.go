// Package server exposes statement analysis over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/luminsql/lumin/internal/audit"
	"github.com/luminsql/lumin/pkg/analysis"
	"github.com/luminsql/lumin/pkg/catalog"
	"golang.org/x/sync/errgroup"
)

// Server is the analysis API server.
type Server struct {
	catalog catalog.Catalog
	store   *audit.Store
	dialect string
	authz   analysis.AuthzConfig
	port    int
	logger  *slog.Logger
}

// Config holds configuration for the API server.
type Config struct {
	Catalog catalog.Catalog
	Store   *audit.Store // nil disables audit persistence
	Dialect string       // default dialect for requests that name none
	Authz   analysis.AuthzConfig
	Port    int
	Logger  *slog.Logger
}

// New creates an API server instance.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		catalog: cfg.Catalog,
		store:   cfg.Store,
		dialect: cfg.Dialect,
		authz:   cfg.Authz,
		port:    cfg.Port,
		logger:  logger,
	}
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Get("/healthz", s.handleHealth)
	r.Get("/v1/dialects", s.handleDialects)
	r.Post("/v1/analyze", s.handleAnalyze)
	r.Get("/v1/analyses", s.handleListAnalyses)
	r.Get("/v1/analyses/{id}", s.handleGetAnalysis)

	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting analysis server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down analysis server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
