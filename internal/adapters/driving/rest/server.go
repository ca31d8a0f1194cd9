// Package rest exposes the fetch services over HTTP for dashboards and
// scripted pipelines. It is a thin adapter: request decoding, error-to-status
// mapping and JSON encoding, with all semantics in the core services.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driven"
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driving"
)

// Server serves the HTTP API.
type Server struct {
	fetcher   driving.Fetcher
	catalog   driving.SiteCatalog
	analytics driving.Analytics
	cache     driven.ResultCache
}

// NewServer creates the HTTP server adapter. Analytics and cache are
// optional; their routes answer 503 when absent.
func NewServer(fetcher driving.Fetcher, catalog driving.SiteCatalog, analytics driving.Analytics, cache driven.ResultCache) *Server {
	return &Server{
		fetcher:   fetcher,
		catalog:   catalog,
		analytics: analytics,
		cache:     cache,
	}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	// Fetch runs span many API calls; generous ceiling.
	r.Use(middleware.Timeout(15 * time.Minute))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/gsc/query", s.handleQuery)
		r.Get("/gsc/domains", s.handleDomains)
		r.Post("/ga4/query", s.handleReport)
		r.Get("/ga4/properties", s.handleProperties)
		r.Get("/cache/stats", s.handleCacheStats)
		r.Delete("/cache", s.handleCacheClear)
	})
	r.Get("/healthz", s.handleHealth)

	return r
}

// ListenAndServe runs the HTTP server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
