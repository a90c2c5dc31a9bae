// Command process-data rebuilds the vacancy statistics and charts from a CSV
// export:
//
//	process-data [-delimiter ;] vacancies.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"vacstat/internal/cli"
	"vacstat/internal/config"
	"vacstat/internal/log"
	"vacstat/internal/storage"
)

func main() {
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("process-data", flag.ContinueOnError)
	fs.SetOutput(stderr)
	delimiter := fs.String("delimiter", "", "CSV delimiter (overrides CSV_DELIMITER)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: process-data [-delimiter c] <csv_file>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	csvPath := fs.Arg(0)

	cfg := config.Load()
	if *delimiter != "" {
		cfg.CSVDelimiter = *delimiter
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	level, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{Level: level, Component: log.ComponentPipeline, Output: stderr})

	if _, err := os.Stat(csvPath); err != nil {
		fmt.Fprintf(stdout, "File not found: %s\n", csvPath)
		return 1
	}
	fmt.Fprintf(stdout, "Starting data processing from %s\n", csvPath)

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		fmt.Fprintf(stdout, "Error processing: %v\n", err)
		return 1
	}
	defer repo.Close()

	proc, cleanup, err := cli.NewProcessor(ctx, cfg, repo, logger)
	defer func() {
		if err := cleanup(); err != nil {
			logger.Warn("Exporter cleanup failed", log.FieldError, err)
		}
	}()
	if err != nil {
		fmt.Fprintf(stdout, "Error processing: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "Processing data...")
	summary, err := proc.Process(ctx, csvPath)
	if runs, lerr := repo.LatestRuns(ctx, 1); lerr == nil && len(runs) == 1 {
		log.NewStructuredLogger(logger).LogRun(ctx, runs[0])
	}
	if err != nil {
		fmt.Fprintf(stdout, "Error processing: %v\n", err)
		return 1
	}

	totals, err := repo.Counts(ctx)
	if err != nil {
		fmt.Fprintf(stdout, "Error processing: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "Successfully processed vacancy data")
	fmt.Fprintf(stdout, "Vacancy records read: %d\n", summary.Records)
	fmt.Fprintf(stdout, "Total statistics records: %d\n", totals.Yearly)
	fmt.Fprintf(stdout, "Total geography records: %d\n", totals.Cities)
	fmt.Fprintf(stdout, "Total skills records: %d\n", totals.Skills)
	fmt.Fprintf(stdout, "Total graphs: %d\n", totals.Charts)
	return 0
}
