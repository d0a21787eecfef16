// Package server exposes the detection cascade over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andresv-qr/lumqr/internal/cascade"
	"github.com/andresv-qr/lumqr/internal/config"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	config    config.ServerConfig
	modelsDir string
	cascade   *cascade.Cascade
	router    *mux.Router
	httpSrv   *http.Server
}

// New creates a Server serving the given cascade.
func New(cfg *config.Config, casc *cascade.Cascade) *Server {
	s := &Server{
		config:    cfg.Server,
		modelsDir: cfg.ModelsDir,
		cascade:   casc,
		router:    mux.NewRouter(),
	}
	s.routes()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	// mux only produces 405 for routes registered without .Methods(); with
	// method matchers a mismatch falls through to NotFound unless this
	// handler is set.
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Error: "method not allowed",
		})
	})

	s.router.Use(requestIDMiddleware)
	s.router.Use(loggingMiddleware)
	s.router.Use(rateLimitMiddleware(s.config.RateLimitRPS, s.config.RateLimitBurst))

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.MethodNotAllowedHandler = s.router.MethodNotAllowedHandler
	api.HandleFunc("/detect", s.handleDetect).Methods(http.MethodPost)
	api.HandleFunc("/models", s.handleModels).Methods(http.MethodGet)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler { return s.router }

// Start runs the server until the context is canceled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := time.Duration(s.config.ShutdownTimeoutMS) * time.Millisecond
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	slog.Info("Shutting down HTTP server", "timeout_ms", s.config.ShutdownTimeoutMS)
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
