// Package server exposes the orchestrator over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"codeberg.org/snonux/lingochain/internal"
	"codeberg.org/snonux/lingochain/internal/analytics"
	"codeberg.org/snonux/lingochain/internal/config"
	"codeberg.org/snonux/lingochain/internal/locale"
	"codeberg.org/snonux/lingochain/internal/translator"
)

// Server is the lingochain HTTP API
type Server struct {
	cfg      config.ServerConfig
	orch     *translator.Orchestrator
	detector *locale.Detector
	registry *prometheus.Registry
	logger   *zap.Logger
	router   *mux.Router
}

// New creates the server and registers its routes
func New(cfg config.ServerConfig, orch *translator.Orchestrator, detector *locale.Detector, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		analytics.NewCollector(orch.Recorder()),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		cfg:      cfg,
		orch:     orch,
		detector: detector,
		registry: registry,
		logger:   logger,
		router:   mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "version": internal.Version})
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// Full paths on the root router so a wrong method answers 405
	r.Handle("/api/translate", s.api(s.handleTranslate)).Methods(http.MethodPost)
	r.Handle("/api/translate/batch", s.api(s.handleTranslateBatch)).Methods(http.MethodPost)
	r.Handle("/api/translate/tree", s.api(s.handleTranslateTree)).Methods(http.MethodPost)
	r.Handle("/api/detect", s.api(s.handleDetect)).Methods(http.MethodPost)
	r.Handle("/api/cache", s.api(s.handleClearCache)).Methods(http.MethodDelete)
	r.Handle("/api/analytics", s.api(s.handleAnalytics)).Methods(http.MethodGet)
	r.Handle("/api/services", s.api(s.handleServices)).Methods(http.MethodGet)

	r.Use(s.recoveryMiddleware)
	r.Use(s.loggingMiddleware)
}

// api wraps an /api handler in the locale middleware
func (s *Server) api(h http.HandlerFunc) http.Handler {
	if s.detector == nil {
		return h
	}
	return s.detector.Middleware(h)
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Registry returns the prometheus registry served on /metrics
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Run serves until ctx is cancelled and then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Info("HTTP API stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.logger.Error("panic while serving request", zap.Any("panic", v), zap.String("path", r.URL.Path))
				respondError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
