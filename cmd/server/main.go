package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/hexsyn/intake/internal/app"
	"github.com/hexsyn/intake/internal/config"
	"github.com/hexsyn/intake/internal/database"
	"github.com/hexsyn/intake/internal/handler"
	"github.com/hexsyn/intake/internal/logger"
	"github.com/hexsyn/intake/internal/metrics"
	"github.com/hexsyn/intake/internal/middleware"
	"github.com/hexsyn/intake/internal/ratelimit"
	"github.com/hexsyn/intake/internal/router"
	"github.com/hexsyn/intake/internal/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().
		Str("version", handler.Version).
		Str("environment", cfg.App.Environment).
		Str("dispatch_mode", cfg.Dispatch.Mode).
		Msg("starting intake server")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Tracing
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	// Rate limiter store
	var (
		limiter ratelimit.Limiter
		deps    []handler.Dependency
	)
	if cfg.Redis.Enabled {
		rdb, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Str("addr", cfg.Redis.Addr()).Msg("connected to Redis")

		limiter = ratelimit.NewRedisLimiter(rdb)
		deps = append(deps, rdb)
	} else {
		mem := ratelimit.NewMemoryLimiter()
		go mem.Run(ctx, time.Minute, longestWindow(cfg.Security.RateLimiting))
		limiter = mem
		log.Info().Msg("using in-memory rate limiter")
	}

	// External collaborators
	services, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize services")
	}

	recorder := metrics.NewDefault()
	intake, err := services.Pipeline(cfg, recorder, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize pipeline")
	}

	// HTTP layer
	h := handler.New(intake, services.Transport, log, cfg, deps...)
	mw := middleware.New(limiter, log, cfg, recorder)

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = recorder.Handler()
	}
	r := router.New(h, mw, cfg, metricsHandler)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// SIGHUP rebuilds the mail transport; SIGINT and SIGTERM shut down.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for running := true; running; {
		select {
		case <-hup:
			if err := services.Transport.Reset(ctx); err != nil {
				log.Error().Err(err).Msg("mail transport reset failed")
			}
		case <-quit:
			running = false
		}
	}

	log.Info().Msg("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := intake.Wait(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("background tasks did not finish")
	}
	stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to flush traces")
	}

	log.Info().Msg("server stopped")
}

func longestWindow(cfg config.RateLimitingConfig) time.Duration {
	longest := time.Minute
	for _, r := range []config.RateLimitRule{cfg.Application, cfg.Career, cfg.Contact, cfg.Subscription, cfg.Email} {
		longest = max(longest, r.Window)
	}
	return longest
}
