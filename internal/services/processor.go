package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"vacstat/internal/analytics"
	"vacstat/internal/charts"
	"vacstat/internal/core"
	"vacstat/internal/ingest"
	"vacstat/internal/metrics"
	"vacstat/internal/sheets"
)

// ReportStore is the persistence the processor writes to.
type ReportStore interface {
	ReplaceReport(ctx context.Context, report core.Report) error
	CreateRun(ctx context.Context, run core.ProcessingRun) error
	FinishRun(ctx context.Context, run core.ProcessingRun) error
}

// ProcessorConfig holds configuration for the processor
type ProcessorConfig struct {
	MediaRoot   string
	Delimiter   rune
	Aggregation analytics.Options
	Style       charts.Style

	// ExportBackend labels export failures in metrics.
	ExportBackend string
}

// DefaultProcessorConfig returns sensible defaults
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		MediaRoot:     "media",
		Delimiter:     ',',
		Aggregation:   analytics.DefaultOptions(),
		Style:         charts.DefaultStyle(),
		ExportBackend: "none",
	}
}

// Processor turns one vacancy file into stored statistics and chart images.
// Runs are serialized.
type Processor struct {
	store      ReportStore
	publisher  sheets.ReportPublisher
	aggregator *analytics.Aggregator
	config     ProcessorConfig
	logger     *slog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewProcessor creates a new processor. publisher may be nil.
func NewProcessor(
	store ReportStore,
	rates core.RateTable,
	publisher sheets.ReportPublisher,
	config ProcessorConfig,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		store:      store,
		publisher:  publisher,
		aggregator: analytics.NewAggregator(rates, config.Aggregation, logger),
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// Process runs the whole pipeline for the file at path and records the
// outcome in the run log. Nothing is written when the file cannot be read,
// and a failed run leaves the previous report in place.
func (p *Processor) Process(ctx context.Context, path string) (core.Summary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	run := core.ProcessingRun{
		ID:        uuid.NewString(),
		Source:    path,
		StartedAt: p.now().UTC(),
		Status:    core.RunRunning,
	}
	if err := p.store.CreateRun(ctx, run); err != nil {
		return core.Summary{}, fmt.Errorf("create processing run: %w", err)
	}

	logger := p.logger.With("run_id", run.ID, "source", path)
	logger.InfoContext(ctx, "Processing started")

	summary, err := p.process(ctx, run.ID, path, logger)

	run.FinishedAt = p.now().UTC()
	run.Summary = summary
	run.Status = core.RunSucceeded
	if err != nil {
		run.Status = core.RunFailed
		run.Error = err.Error()
	}
	// The outcome is recorded even when ctx was canceled mid-run.
	if ferr := p.store.FinishRun(context.WithoutCancel(ctx), run); ferr != nil {
		logger.ErrorContext(ctx, "Failed to record run outcome", "error", ferr)
	}

	duration := run.FinishedAt.Sub(run.StartedAt)
	metrics.RecordRun(duration, err)
	if err != nil {
		logger.ErrorContext(ctx, "Processing failed", "error", err, "duration", duration)
		return summary, err
	}

	metrics.SetReportRows(summary.Yearly, summary.Cities, summary.Skills, summary.Charts)
	logger.InfoContext(ctx, "Processing finished",
		"records", summary.Records,
		"yearly", summary.Yearly,
		"cities", summary.Cities,
		"skills", summary.Skills,
		"charts", summary.Charts,
		"duration", duration)
	return summary, nil
}

func (p *Processor) process(ctx context.Context, runID, path string, logger *slog.Logger) (core.Summary, error) {
	records, err := ingest.ReadFile(path, ingest.Options{Delimiter: p.config.Delimiter, Logger: logger})
	if err != nil {
		return core.Summary{}, err
	}
	metrics.RecordsParsed.Add(float64(len(records)))

	results := p.aggregator.Aggregate(records)

	staging := filepath.Join(p.config.MediaRoot, ".staging-"+runID)
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			logger.WarnContext(ctx, "Failed to remove staging directory", "path", staging, "error", err)
		}
	}()

	report, err := p.renderReport(ctx, staging, results)
	if err != nil {
		return core.Summary{}, err
	}

	if err := p.store.ReplaceReport(ctx, report); err != nil {
		return core.Summary{}, fmt.Errorf("store report: %w", err)
	}

	summary := report.Summarize()
	summary.Records = len(records)

	// The rows are committed; stable chart names keep them valid even if a
	// rename below fails and the previous image stays in place.
	if err := promoteCharts(staging, p.config.MediaRoot, report); err != nil {
		return summary, fmt.Errorf("promote charts: %w", err)
	}

	p.export(ctx, report, logger)
	return summary, nil
}

// renderReport draws every chart of both segments into staging. The segments
// render concurrently; each goroutine owns its slot of the result.
func (p *Processor) renderReport(ctx context.Context, staging string, results []analytics.SegmentResult) (core.Report, error) {
	renderer := charts.NewRenderer(staging, p.config.Style)
	segments := make([]core.SegmentReport, len(results))

	g, gctx := errgroup.WithContext(ctx)
	for i, res := range results {
		i, res := i, res
		g.Go(func() error {
			sr := core.SegmentReport{
				Segment: res.Segment,
				Yearly:  res.Yearly,
				Cities:  res.Cities,
				Skills:  res.Skills,
			}
			for _, entry := range chartPlan {
				if err := gctx.Err(); err != nil {
					return err
				}
				title := entry.Title(res.Segment)
				rel, err := renderer.Render(entry.series(res), title, ChartName(entry.topic, res.Segment), entry.kind)
				if err != nil {
					return err
				}
				sr.Charts = append(sr.Charts, core.ChartArtifact{
					Title:   title,
					Path:    rel,
					Kind:    entry.kind,
					Topic:   entry.topic,
					Segment: res.Segment,
				})
			}
			segments[i] = sr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.Report{}, fmt.Errorf("render charts: %w", err)
	}
	return core.Report{Segments: segments}, nil
}

func promoteCharts(staging, mediaRoot string, report core.Report) error {
	if err := os.MkdirAll(filepath.Join(mediaRoot, charts.GraphsDir), 0o755); err != nil {
		return err
	}
	var errs []error
	for _, sr := range report.Segments {
		for _, c := range sr.Charts {
			rel := filepath.FromSlash(c.Path)
			if err := os.Rename(filepath.Join(staging, rel), filepath.Join(mediaRoot, rel)); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (p *Processor) export(ctx context.Context, report core.Report, logger *slog.Logger) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishReport(ctx, report); err != nil {
		metrics.ExportErrors.WithLabelValues(p.config.ExportBackend).Inc()
		logger.WarnContext(ctx, "Report export failed", "backend", p.config.ExportBackend, "error", err)
	}
}
