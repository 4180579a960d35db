package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/p-blackswan/designstore/internal/api"
	"github.com/p-blackswan/designstore/internal/cleanup"
	"github.com/p-blackswan/designstore/internal/config"
	"github.com/p-blackswan/designstore/internal/health"
	"github.com/p-blackswan/designstore/internal/metrics"
	"github.com/p-blackswan/designstore/internal/project"
	"github.com/p-blackswan/designstore/internal/retry"
	"github.com/p-blackswan/designstore/internal/store"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}

	baseDir, err := cfg.BaseDir()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve data directory")
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("data_dir", baseDir).
		Str("listen_addr", cfg.ListenAddr).
		Int("cache_size", cfg.CacheSize).
		Bool("auth_enabled", cfg.AuthEnabled()).
		Msg("starting design store")

	// Context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	docs, err := store.New(store.Config{BaseDir: baseDir, CacheSize: cfg.CacheSize}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open document store")
	}
	// Wait for the data directory to become writable.
	if err := retry.Do(ctx, retry.DefaultConfig(), func(ctx context.Context) error {
		return docs.Probe()
	}); err != nil {
		logger.Fatal().Err(err).Str("data_dir", baseDir).Msg("data directory is not writable")
	}

	m := metrics.New()
	designs := project.NewStore(docs, logger, project.WithMetrics(m))

	checker := health.NewChecker(logger)
	checker.Add("storage", health.FromFunc(docs.Probe))
	if !checker.Check(ctx).Ready() {
		logger.Warn().Msg("storage check failed after startup probe")
	}

	server := api.NewServer(api.ServerConfig{
		ListenAddr: cfg.ListenAddr,
		AuthConfig: api.AuthConfig{
			Mode:   cfg.AuthMode,
			APIKey: cfg.APIKey,
		},
		CORSOrigins:      cfg.CORSOrigins,
		DefaultProjectID: cfg.DefaultProjectID,
	}, designs, checker, m, logger)

	sweeper := cleanup.NewSweeper(cleanup.Config{
		MaxAge:        cfg.TempMaxAge,
		CheckInterval: cfg.CleanupInterval,
	}, baseDir, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("api server error")
		}
	}()

	// Wait for shutdown signal
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")

	// Cancel context to signal all goroutines
	cancel()

	if err := server.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("api server shutdown error")
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info().Msg("all goroutines stopped")
	case <-time.After(15 * time.Second):
		logger.Warn().Msg("forced shutdown after timeout")
	}

	logger.Info().Msg("design store stopped")
}
