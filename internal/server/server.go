// Package server exposes validation over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/antoniopresto/wasm-validator/internal/config"
	"github.com/antoniopresto/wasm-validator/internal/diagnostics"
	"github.com/antoniopresto/wasm-validator/internal/metrics"
	"github.com/antoniopresto/wasm-validator/internal/registry"
)

const (
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server serves the validation API.
type Server struct {
	cfg     config.ServerConfig
	opts    []diagnostics.Option
	schemas *registry.Registry
	metrics *metrics.Metrics
	logger  *slog.Logger
	handler http.Handler
}

// New creates a Server from the configuration. Schemas are compiled with the
// configuration's diagnostics options.
func New(cfg *config.Config, logger *slog.Logger) *Server {
	opts := cfg.DiagnosticsOptions()
	s := &Server{
		cfg:     cfg.Server,
		opts:    opts,
		schemas: registry.New(cfg.Server.CacheSize, opts...),
		logger:  logger,
	}
	s.metrics = metrics.New(s.schemas.Len)
	s.schemas.OnCompile(s.metrics.ObserveCompile)
	s.handler = s.routes()
	return s
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Metrics returns the server's metrics.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return &ListenError{Addr: s.cfg.Addr, Wrapped: err}
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  idleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
