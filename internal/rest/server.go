// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-interactions.
//
// go-interactions is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeremyhahn/go-interactions/pkg/adapters/logger"
	"github.com/jeremyhahn/go-interactions/pkg/interaction"
	"github.com/jeremyhahn/go-interactions/pkg/metrics"
	"github.com/jeremyhahn/go-interactions/pkg/ratelimit"
	"github.com/jeremyhahn/go-interactions/pkg/signature"
)

// Server is the webhook gateway HTTP server.
type Server struct {
	server   *http.Server
	handlers *HandlerContext
	verifier *signature.Verifier
	limiter  *ratelimit.Limiter
	logger   logger.Logger
	host     string
	port     int
}

// Config holds the server configuration.
type Config struct {
	// Host is the address to bind (default: all interfaces).
	Host string

	// Port is the HTTP port to listen on (default: 3000).
	Port int

	// Verifier authenticates inbound webhook requests. Required.
	Verifier *signature.Verifier

	// Dispatcher routes verified interactions. Required.
	Dispatcher *interaction.Dispatcher

	// Logger is the logging adapter (optional, defaults to slog).
	Logger logger.Logger

	// RateLimiter limits requests per client (optional).
	RateLimiter *ratelimit.Limiter

	// MetricsEnabled exposes the Prometheus endpoint at MetricsPath.
	MetricsEnabled bool

	// MetricsPath is the metrics endpoint path (default: /metrics).
	MetricsPath string

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration
}

// NewServer creates a new gateway server.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Verifier == nil {
		return nil, fmt.Errorf("signature verifier is required")
	}
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}

	// Set defaults
	if cfg.Port == 0 {
		cfg.Port = 3000
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewSlogAdapter(&logger.SlogConfig{
			Level: logger.LevelInfo,
		})
	}

	handlers := NewHandlerContext(cfg.Dispatcher, log)

	server := &Server{
		handlers: handlers,
		verifier: cfg.Verifier,
		limiter:  cfg.RateLimiter,
		logger:   log,
		host:     cfg.Host,
		port:     cfg.Port,
	}

	router := server.setupRouter(cfg)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	server.server = httpServer

	return server, nil
}

// setupRouter configures the chi router with all routes and middleware.
func (s *Server) setupRouter(cfg *Config) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(s.RecoveryMiddleware())
	r.Use(s.CorrelationMiddleware()) // Add correlation ID before logging
	r.Use(s.LoggingMiddleware())
	r.Use(metrics.HTTPMiddleware)
	if s.limiter != nil {
		r.Use(s.limiter.HTTPMiddleware)
	}

	// Health probes (unsigned, the platform never calls these)
	r.Get("/health", s.handlers.HealthHandler)
	r.Head("/health", s.handlers.HealthHandler)
	r.Get("/health/live", s.handlers.LivenessHandler)
	r.Get("/health/ready", s.handlers.ReadinessHandler)
	r.Get("/health/startup", s.handlers.StartupHandler)

	if cfg.MetricsEnabled {
		r.Handle(cfg.MetricsPath, promhttp.Handler())
	}

	// The webhook endpoint. The signature gate runs strictly before the
	// handler decodes anything.
	r.Route("/interactions", func(r chi.Router) {
		r.Use(s.SignatureMiddleware())
		r.Post("/", s.handlers.InteractionsHandler)
	})

	return r
}

// Start starts the gateway server.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		logger.Int("port", s.port))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the gateway server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shutdown server", logger.Error(err))
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server stopped")
	return nil
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// Handler returns the configured router (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// SetHealthChecker sets the health checker for the server.
func (s *Server) SetHealthChecker(checker HealthChecker) {
	s.handlers.SetHealthChecker(checker)
}
