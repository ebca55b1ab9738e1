// Command server runs the contact gateway: a single-purpose edge
// service that accepts contact-form submissions, validates and
// rate-limits them, deduplicates retries by requestId, and forwards
// accepted messages to the upstream messaging API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"contact-gateway-server/internal/handlers"
	"contact-gateway-server/pkg/config"
	"contact-gateway-server/pkg/deadletter"
	"contact-gateway-server/pkg/logger"
	custommiddleware "contact-gateway-server/pkg/middleware"
	"contact-gateway-server/pkg/store"
	gatewaytls "contact-gateway-server/pkg/tls"
	"contact-gateway-server/pkg/upstream"
)

func main() {
	appLogger, err := logger.CreateLoggerFromEnv()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync() //nolint:errcheck

	appLogger.Info("Starting Contact Gateway Server")

	cfg := config.Load()
	cfg.DisplayConfiguration()

	if err := cfg.Validate(); err != nil {
		// Not fatal: keep the health endpoint reachable, but nothing
		// will be forwarded until the configuration is fixed.
		appLogger.Warn("Configuration incomplete", zap.Error(err))
	}

	// Dead-letter sink for undeliverable payloads
	sink := buildSink(cfg, appLogger)
	defer sink.Close() //nolint:errcheck

	// Shared gateway state
	idempotency := store.NewIdempotencyStore(cfg.IdempotencyMaxEntries, cfg.IdempotencyTTL)
	limiter := custommiddleware.NewFixedWindowLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	limiter.StartSweep(cfg.RateSweepInterval)
	defer limiter.Stop()

	guard := custommiddleware.NewOriginGuard(cfg.AllowedOrigins, cfg.EnableSecurityLogging, appLogger)
	dispatcher := upstream.NewDispatcher(cfg, sink, appLogger)

	contactHandler := handlers.NewContactHandler(cfg, appLogger, idempotency, dispatcher)
	healthHandler := handlers.NewHealthHandler(appLogger, limiter, idempotency)

	e := handlers.NewRouter(cfg, contactHandler, healthHandler, guard, limiter, appLogger)
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	startServer(e, cfg, appLogger)
}

// buildSink selects the dead-letter backend: a durable Badger database
// when enabled, otherwise an in-memory sink whose contents vanish with
// the process.
func buildSink(cfg *config.Config, appLogger *zap.Logger) deadletter.Sink {
	if !cfg.EnableDeadLetter {
		return deadletter.NewMemorySink()
	}

	if err := os.MkdirAll(cfg.DeadLetterDir, 0o755); err != nil {
		appLogger.Warn("Failed to create dead-letter directory, falling back to memory sink",
			zap.String("dir", cfg.DeadLetterDir), zap.Error(err))
		return deadletter.NewMemorySink()
	}

	sink, err := deadletter.NewBadgerSink(cfg.DeadLetterDir, cfg.DeadLetterTTL, appLogger)
	if err != nil {
		appLogger.Warn("Failed to open dead-letter database, falling back to memory sink",
			zap.Error(err))
		return deadletter.NewMemorySink()
	}

	appLogger.Info("Dead-letter sink enabled", zap.String("dir", cfg.DeadLetterDir))
	return sink
}

// startServer runs the HTTP (or AutoTLS HTTPS) server until SIGINT or
// SIGTERM, then drains in-flight requests within the shutdown timeout.
func startServer(e *echo.Echo, cfg *config.Config, appLogger *zap.Logger) {
	go func() {
		var err error
		if cfg.EnableTLS {
			gatewaytls.SetupAutoTLS(e, cfg, appLogger)
			appLogger.Info("Starting HTTPS server with AutoTLS", zap.String("port", cfg.TLSPort))
			err = e.StartAutoTLS(":" + cfg.TLSPort)
		} else {
			address := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
			appLogger.Info("Starting HTTP server", zap.String("address", address))
			err = e.Start(address)
		}
		if err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	appLogger.Info("Shutdown signal received", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		appLogger.Error("Graceful shutdown failed", zap.Error(err))
		return
	}
	appLogger.Info("Server stopped")
}
