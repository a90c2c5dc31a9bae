package backend

import (
	"context"

	"vacstat/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the exporter instance and optional cleanup function.
// Publisher is nil for the "none" exporter.
type Result struct {
	Publisher sheets.ReportPublisher
	Cleanup   CleanupFunc
}

// Factory creates report exporters based on configuration
type Factory interface {
	CreateExporter(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for exporter creation
type Config struct {
	Type ExporterType

	// XLSX specific
	XLSXPath string

	// Google Sheets specific
	GoogleSpreadsheetID string
}

// ExporterType represents the type of report exporter
type ExporterType string

const (
	NoneExporter   ExporterType = "none"
	MemoryExporter ExporterType = "memory"
	XLSXExporter   ExporterType = "xlsx"
	SheetsExporter ExporterType = "sheets"
)

// String implements fmt.Stringer
func (et ExporterType) String() string {
	return string(et)
}

// IsValid returns true if the exporter type is valid
func (et ExporterType) IsValid() bool {
	switch et {
	case NoneExporter, MemoryExporter, XLSXExporter, SheetsExporter:
		return true
	default:
		return false
	}
}
