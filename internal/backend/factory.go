package backend

import (
	"context"
	"fmt"
	"log/slog"

	"vacstat/internal/sheets"
	gsheet "vacstat/internal/sheets/google"
	"vacstat/internal/sheets/memory"
	"vacstat/internal/sheets/xlsx"
)

var _ Factory = (*DefaultFactory)(nil)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger

	// newSheets is swapped in tests.
	newSheets func(ctx context.Context, spreadsheetID string) (sheets.ReportPublisher, error)
}

// NewFactory creates a new exporter factory
func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger:    logger,
		newSheets: newSheetsClient,
	}
}

// CreateExporter implements Factory.CreateExporter
func (f *DefaultFactory) CreateExporter(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case NoneExporter:
		f.logger.Info("Report export disabled")
		return &Result{}, nil
	case MemoryExporter:
		f.logger.Info("Initialized memory exporter")
		return &Result{Publisher: memory.New()}, nil
	case XLSXExporter:
		f.logger.Info("Initialized XLSX exporter", "path", config.XLSXPath)
		return &Result{Publisher: xlsx.New(config.XLSXPath)}, nil
	case SheetsExporter:
		cli, err := f.newSheets(ctx, config.GoogleSpreadsheetID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Initialized Google Sheets exporter", "spreadsheet_id", config.GoogleSpreadsheetID)
		return &Result{Publisher: cli}, nil
	default:
		return nil, fmt.Errorf("unsupported export backend: %s", config.Type)
	}
}

func newSheetsClient(ctx context.Context, spreadsheetID string) (sheets.ReportPublisher, error) {
	return gsheet.NewForSpreadsheet(ctx, spreadsheetID)
}
