package sheets

import (
	"context"

	"vacstat/internal/core"
)

// Ports for outbound adapters.
type (
	// ReportPublisher copies a finished report to an external destination.
	ReportPublisher interface {
		PublishReport(ctx context.Context, report core.Report) error
	}
)
