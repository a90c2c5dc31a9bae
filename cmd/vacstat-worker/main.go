package main

import (
	"context"
	"errors"
	"os"
	"time"

	"vacstat/internal/amqp"
	"vacstat/internal/cli"
	"vacstat/internal/log"
	"vacstat/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting vacstat-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	proc, cleanupExporter, err := cli.NewProcessor(context.Background(), cfg, repo, logger)
	if err != nil {
		logger.Error("Failed to initialize processor", log.FieldError, err)
		os.Exit(1)
	}
	defer cleanupExporter()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	w := worker.NewProcessWorker(proc)
	logger.Info("Consuming process requests", "queue", cfg.AMQPQueue)
	if err := amqpClient.ConsumeProcessFile(ctx, w.Handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
