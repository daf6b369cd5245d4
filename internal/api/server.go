package api

import (
	"context"
	"net/http"
	"time"

	"github.com/pharmacycle/pharma-cycle/internal/config"
	"github.com/pharmacycle/pharma-cycle/internal/metrics"
)

// Server represents the API server
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server
}

// NewServer creates a new API server. hc and reg may be nil.
func NewServer(cfg config.ServerConfig, h *Handlers, hc *HealthChecker, reg *metrics.Registry) *Server {
	return &Server{
		config:  cfg,
		handler: SetupRoutes(h, hc, reg, cfg.AllowedOrigins),
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// Summary requests wait on the narrator, so writes get more room than reads.
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
