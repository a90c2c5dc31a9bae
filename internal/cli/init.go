// Package cli holds the start-up steps shared by cmd/vacstat,
// cmd/vacstat-worker and cmd/process-data.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"vacstat/internal/analytics"
	"vacstat/internal/backend"
	"vacstat/internal/charts"
	"vacstat/internal/config"
	"vacstat/internal/core"
	"vacstat/internal/log"
	"vacstat/internal/services"
	"vacstat/internal/storage"
)

// SetupLogger builds the component-tagged logger from LOG_LEVEL and installs
// it as the slog default. An unknown level falls back to info.
func SetupLogger(component string) *log.Logger {
	level, err := log.ParseLevel(os.Getenv("LOG_LEVEL"))
	cfg := log.DefaultConfig()
	cfg.Level = level
	cfg.Component = component

	logger := log.New(cfg)
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Invalid LOG_LEVEL, using info", log.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration or exits the process.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the repository (running migrations) or exits the process.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// LoadRates returns the configured rate table, or the built-in one when no
// file is set.
func LoadRates(cfg *config.Config) (core.RateTable, error) {
	if cfg.RatesFile == "" {
		return core.DefaultRates(), nil
	}
	rates, err := core.LoadRateTable(cfg.RatesFile)
	if err != nil {
		return core.RateTable{}, fmt.Errorf("load rates: %w", err)
	}
	return rates, nil
}

// ProcessorConfig maps application config onto the processor's settings.
func ProcessorConfig(cfg *config.Config) services.ProcessorConfig {
	return services.ProcessorConfig{
		MediaRoot: cfg.MediaRoot,
		Delimiter: cfg.Delimiter(),
		Aggregation: analytics.Options{
			OutlierCeiling: cfg.OutlierCeiling,
			MinCityShare:   cfg.MinCityShare,
			SkillLimit:     cfg.SkillLimit,
			SkillsByYear:   cfg.SkillsByYear,
		},
		Style:         charts.DefaultStyle(),
		ExportBackend: cfg.ExportBackend,
	}
}

// NewProcessor wires rates, the report exporter and the store into a
// processor. The returned cleanup is never nil.
func NewProcessor(ctx context.Context, cfg *config.Config, store services.ReportStore, logger *log.Logger) (*services.Processor, backend.CleanupFunc, error) {
	noop := func() error { return nil }

	rates, err := LoadRates(cfg)
	if err != nil {
		return nil, noop, err
	}

	exportCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, noop, err
	}
	exporter, err := backend.NewFactory(logger.WithComponent(log.ComponentExport).Slog()).CreateExporter(ctx, exportCfg)
	if err != nil {
		return nil, noop, fmt.Errorf("create exporter: %w", err)
	}
	cleanup := exporter.Cleanup
	if cleanup == nil {
		cleanup = noop
	}

	proc := services.NewProcessor(store, rates, exporter.Publisher, ProcessorConfig(cfg),
		logger.WithComponent(log.ComponentPipeline).Slog())
	return proc, cleanup, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. cleanup
// runs once the signal arrives, bounded by timeout; done closes after it.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		<-ctx.Done()
		stop()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
