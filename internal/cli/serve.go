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

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-interactions/internal/config"
	"github.com/jeremyhahn/go-interactions/internal/rest"
	"github.com/jeremyhahn/go-interactions/pkg/adapters/logger"
	"github.com/jeremyhahn/go-interactions/pkg/challenge"
	"github.com/jeremyhahn/go-interactions/pkg/health"
	"github.com/jeremyhahn/go-interactions/pkg/interaction"
	"github.com/jeremyhahn/go-interactions/pkg/metrics"
	"github.com/jeremyhahn/go-interactions/pkg/ratelimit"
	"github.com/jeremyhahn/go-interactions/pkg/signature"
)

// serveCmd starts the webhook gateway.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interactions gateway",
	Long: `Start the HTTP gateway that receives signed interaction webhooks,
verifies their Ed25519 signatures, and dispatches them to the registered
command and component handlers.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(); err != nil {
			handleError(err)
		}
	},
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger(&cfg.Logging)

	verifier, err := signature.NewVerifier(cfg.Discord.PublicKey)
	if err != nil {
		return fmt.Errorf("failed to create signature verifier: %w", err)
	}

	store, closeStore, err := newStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to create challenge store: %w", err)
	}
	defer closeStore()

	dispatcher, err := interaction.NewDispatcher(&interaction.DispatcherConfig{
		Store:            store,
		Logger:           log,
		RejectSelfAccept: cfg.Challenge.RejectSelfAccept,
	})
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.Enable()
	}

	limiter := ratelimit.New(&ratelimit.Config{
		Enabled:           cfg.RateLimit.Enabled,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMin,
	})
	defer limiter.Stop()

	server, err := rest.NewServer(&rest.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Verifier:       verifier,
		Dispatcher:     dispatcher,
		Logger:         log,
		RateLimiter:    limiter,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
		ReadTimeout:    cfg.Server.ReadTimeout.Std(),
		WriteTimeout:   cfg.Server.WriteTimeout.Std(),
		IdleTimeout:    cfg.Server.IdleTimeout.Std(),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	checker := health.NewChecker()
	registerStoreCheck(checker, store)
	server.SetHealthChecker(checker)

	shutdownCtx := setupSignalHandler(log)

	if cfg.Metrics.Enabled {
		go updateGauges(shutdownCtx, store)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	checker.MarkStarted()
	log.Info("Gateway started",
		logger.Int("port", cfg.Server.Port),
		logger.String("store", cfg.Challenge.Store))

	select {
	case <-shutdownCtx.Done():
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error", logger.Error(err))
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(stopCtx); err != nil {
		return err
	}

	log.Info("Gateway stopped")
	return nil
}

// newLogger builds the logging adapter from configuration.
func newLogger(cfg *config.LoggingConfig) logger.Logger {
	level := logger.ParseLevel(cfg.Level)

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slogLevel(level),
		})
	}

	return logger.NewSlogAdapter(&logger.SlogConfig{
		Level:   level,
		Handler: handler,
	})
}

// slogLevel maps the adapter level onto slog's scale.
func slogLevel(level logger.Level) slog.Level {
	switch level {
	case logger.LevelDebug:
		return slog.LevelDebug
	case logger.LevelWarn:
		return slog.LevelWarn
	case logger.LevelError, logger.LevelFatal:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newStore builds the challenge store selected by configuration. The
// returned closer starts as a no-op and picks up whatever the store
// needs torn down (cleanup routine or client connection).
func newStore(cfg *config.Config) (challenge.Store, func(), error) {
	switch cfg.Challenge.Store {
	case config.StoreRedis:
		store, err := challenge.NewRedisStore(&challenge.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Challenge.TTL.Std(),
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	default:
		store := challenge.NewMemoryStoreWithTTL(cfg.Challenge.TTL.Std())
		cancel := store.StartCleanupRoutine(context.Background(), cfg.Challenge.CleanupInterval.Std())
		return store, func() { cancel() }, nil
	}
}

// registerStoreCheck wires a readiness check for the challenge store.
// The memory store is always ready; the Redis store is ready when the
// server answers a ping.
func registerStoreCheck(checker *health.Checker, store challenge.Store) {
	type pinger interface {
		Ping(ctx context.Context) error
	}

	if p, ok := store.(pinger); ok {
		checker.RegisterCheck("challenge_store", func(ctx context.Context) health.CheckResult {
			if err := p.Ping(ctx); err != nil {
				return health.CheckResult{
					Name:   "challenge_store",
					Status: health.StatusUnhealthy,
					Error:  err.Error(),
				}
			}
			return health.CheckResult{
				Name:    "challenge_store",
				Status:  health.StatusHealthy,
				Message: "Store is reachable",
			}
		})
		return
	}

	checker.RegisterCheck("challenge_store", func(ctx context.Context) health.CheckResult {
		return health.CheckResult{
			Name:    "challenge_store",
			Status:  health.StatusHealthy,
			Message: "In-memory store",
		}
	})
}

// updateGauges periodically refreshes the uptime and active challenge
// gauges until ctx is cancelled.
func updateGauges(ctx context.Context, store challenge.Store) {
	start := time.Now()
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.ServerUptime.Set(time.Since(start).Seconds())
			if ms, ok := store.(*challenge.MemoryStore); ok {
				metrics.SetChallengesActive(float64(ms.Count()))
			}
		}
	}
}

// setupSignalHandler sets up signal handling for graceful shutdown
func setupSignalHandler(log logger.Logger) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signalCh
		log.Info("Received shutdown signal")
		cancel()
	}()

	return ctx
}
