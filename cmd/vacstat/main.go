package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"vacstat/internal/amqp"
	"vacstat/internal/cache"
	"vacstat/internal/cli"
	"vacstat/internal/hh"
	apphttp "vacstat/internal/http"
	"vacstat/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	proc, cleanupExporter, err := cli.NewProcessor(context.Background(), cfg, repo, logger)
	if err != nil {
		logger.Error("Failed to initialize processor", log.FieldError, err)
		os.Exit(1)
	}
	defer cleanupExporter()

	opts := apphttp.Options{
		Reports:   repo,
		Processor: proc,
		MediaRoot: cfg.MediaRoot,
		DataDir:   cfg.DataDir,
		HHQuery:   cfg.HHQuery,
		Logger:    logger,
	}

	// With a broker configured, uploads are handed to vacstat-worker.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		opts.Publisher = amqpClient
		logger.Info("AMQP publisher ready", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	caches := cache.NewManager()
	if cfg.HHAPIURL != "" {
		hhClient := hh.NewClient(cfg.HHAPIURL, cfg.HHCacheTTL, &http.Client{Timeout: 10 * time.Second})
		caches.Register(hhClient.Cache())
		opts.Latest = hhClient
	}
	caches.StartCleanup(10 * time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, opts)
	srv.ReadTimeout = 10 * time.Second
	// Synchronous processing runs inside the request.
	srv.WriteTimeout = 5 * time.Minute
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
	})

	logger.Info("Starting vacstat server", log.FieldOperation, log.OpStartup, "port", cfg.Port, "export_backend", cfg.ExportBackend, "queue", opts.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
