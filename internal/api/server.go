// Package api exposes the local preview and position editing service over
// HTTP. The interactive front end drives placement tuning through it while
// batch rendering stays on the CLI.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"easel/internal/aspect"
	"easel/internal/assets"
	"easel/internal/logging"
	"easel/internal/positions"
	"easel/internal/preview"
)

// ServerConfig carries the services the HTTP layer fronts.
type ServerConfig struct {
	Bind      string
	Library   *assets.Library
	Registry  *aspect.Registry
	Store     positions.Store
	Previews  *preview.Generator
	Frames    preview.FrameSampler
	Logger    *slog.Logger
	StartTime time.Time
	Version   string
}

// Server wraps the HTTP listener with sane timeouts.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds the preview service bound to cfg.Bind.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Bind,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("starting preview service", logging.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down preview service")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured bind address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
