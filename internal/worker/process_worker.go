package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"vacstat/internal/amqp"
	"vacstat/internal/core"
	"vacstat/internal/ingest"
)

// Pipeline runs one processing pass over a file.
type Pipeline interface {
	Process(ctx context.Context, path string) (core.Summary, error)
}

// ProcessWorker handles process file messages from AMQP
type ProcessWorker struct {
	pipeline Pipeline
	validate *validator.Validate
}

func NewProcessWorker(pipeline Pipeline) *ProcessWorker {
	return &ProcessWorker{
		pipeline: pipeline,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Handle validates msg and runs the pipeline. Invalid messages and unreadable
// input files are reported as permanent failures.
func (w *ProcessWorker) Handle(ctx context.Context, msg *amqp.ProcessFileMessage) error {
	if msg == nil {
		return fmt.Errorf("nil message: %w", amqp.ErrPermanent)
	}
	if err := w.validate.Struct(msg); err != nil {
		return fmt.Errorf("invalid message: %w: %w", amqp.ErrPermanent, err)
	}

	slog.InfoContext(ctx, "Processing file", "id", msg.ID, "path", msg.Path, "requested_at", msg.RequestedAt)

	summary, err := w.pipeline.Process(ctx, msg.Path)
	if errors.Is(err, ingest.ErrFatalInput) {
		return fmt.Errorf("process %s: %w: %w", msg.Path, amqp.ErrPermanent, err)
	}
	if err != nil {
		return fmt.Errorf("process %s: %w", msg.Path, err)
	}

	slog.InfoContext(ctx, "File processed",
		"id", msg.ID,
		"records", summary.Records,
		"rows", summary.Total())
	return nil
}
