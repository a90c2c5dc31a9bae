package backend

import (
	"fmt"

	"vacstat/internal/config"
)

// FromAppConfig converts the application config to exporter config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	exporterType := ExporterType(appConfig.ExportBackend)
	if exporterType == "" {
		exporterType = NoneExporter
	}
	if !exporterType.IsValid() {
		return Config{}, fmt.Errorf("invalid export backend in config: %s", appConfig.ExportBackend)
	}

	return Config{
		Type:                exporterType,
		XLSXPath:            appConfig.ExportXLSXPath,
		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
	}, nil
}

// Validate validates the exporter configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid export backend: %s", c.Type)
	}

	switch c.Type {
	case XLSXExporter:
		if c.XLSXPath == "" {
			return fmt.Errorf("XLSX path is required for xlsx exporter")
		}
	case SheetsExporter:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets exporter")
		}
	}

	return nil
}

// GetExporterTypes returns all valid exporter types
func GetExporterTypes() []ExporterType {
	return []ExporterType{NoneExporter, MemoryExporter, XLSXExporter, SheetsExporter}
}

// GetExporterTypeStrings returns all valid exporter type strings
func GetExporterTypeStrings() []string {
	types := GetExporterTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
