package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacstat/internal/config"
	"vacstat/internal/core"
	"vacstat/internal/sheets"
	"vacstat/internal/sheets/memory"
	"vacstat/internal/sheets/xlsx"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{ExportBackend: "xlsx", ExportXLSXPath: "r.xlsx", GoogleSpreadsheetID: "sid"})
	require.NoError(t, err)
	assert.Equal(t, Config{Type: XLSXExporter, XLSXPath: "r.xlsx", GoogleSpreadsheetID: "sid"}, cfg)

	cfg, err = FromAppConfig(&config.Config{})
	require.NoError(t, err)
	assert.Equal(t, NoneExporter, cfg.Type)

	_, err = FromAppConfig(&config.Config{ExportBackend: "csv"})
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"none", Config{Type: NoneExporter}, false},
		{"memory", Config{Type: MemoryExporter}, false},
		{"xlsx", Config{Type: XLSXExporter, XLSXPath: "r.xlsx"}, false},
		{"xlsx without path", Config{Type: XLSXExporter}, true},
		{"sheets", Config{Type: SheetsExporter, GoogleSpreadsheetID: "sid"}, false},
		{"sheets without id", Config{Type: SheetsExporter}, true},
		{"unknown", Config{Type: "ftp"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExporterTypeStrings(t *testing.T) {
	assert.Equal(t, []string{"none", "memory", "xlsx", "sheets"}, GetExporterTypeStrings())
}

func TestCreateExporter(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	res, err := f.CreateExporter(ctx, Config{Type: NoneExporter})
	require.NoError(t, err)
	assert.Nil(t, res.Publisher)

	res, err = f.CreateExporter(ctx, Config{Type: MemoryExporter})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, res.Publisher)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	res, err = f.CreateExporter(ctx, Config{Type: XLSXExporter, XLSXPath: path})
	require.NoError(t, err)
	require.IsType(t, &xlsx.Writer{}, res.Publisher)
	require.NoError(t, res.Publisher.PublishReport(ctx, core.Report{}))
	assert.FileExists(t, path)

	_, err = f.CreateExporter(ctx, Config{Type: XLSXExporter})
	assert.Error(t, err)
}

func TestCreateSheetsExporter(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	var gotID string
	fake := memory.New()
	f.newSheets = func(_ context.Context, id string) (sheets.ReportPublisher, error) {
		gotID = id
		return fake, nil
	}
	res, err := f.CreateExporter(ctx, Config{Type: SheetsExporter, GoogleSpreadsheetID: "sid"})
	require.NoError(t, err)
	assert.Same(t, fake, res.Publisher)
	assert.Equal(t, "sid", gotID)

	f.newSheets = func(context.Context, string) (sheets.ReportPublisher, error) {
		return nil, errors.New("no credentials")
	}
	_, err = f.CreateExporter(ctx, Config{Type: SheetsExporter, GoogleSpreadsheetID: "sid"})
	assert.ErrorContains(t, err, "no credentials")
}
