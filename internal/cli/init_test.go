package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacstat/internal/config"
	"vacstat/internal/core"
	"vacstat/internal/log"
	"vacstat/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Port:           "8081",
		SQLiteDBPath:   filepath.Join(dir, "vacstat.db"),
		MediaRoot:      filepath.Join(dir, "media"),
		DataDir:        dir,
		CSVDelimiter:   ";",
		OutlierCeiling: 5_000_000,
		MinCityShare:   2,
		SkillLimit:     10,
		SkillsByYear:   true,
		ExportBackend:  "memory",
		LogLevel:       "info",
	}
}

func TestProcessorConfig(t *testing.T) {
	cfg := testConfig(t)
	pc := ProcessorConfig(cfg)

	assert.Equal(t, cfg.MediaRoot, pc.MediaRoot)
	assert.Equal(t, ';', pc.Delimiter)
	assert.Equal(t, 5_000_000.0, pc.Aggregation.OutlierCeiling)
	assert.Equal(t, 2.0, pc.Aggregation.MinCityShare)
	assert.Equal(t, 10, pc.Aggregation.SkillLimit)
	assert.True(t, pc.Aggregation.SkillsByYear)
	assert.Equal(t, "memory", pc.ExportBackend)
}

func TestLoadRates(t *testing.T) {
	cfg := testConfig(t)

	rates, err := LoadRates(cfg)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultRates(), rates)

	cfg.RatesFile = filepath.Join(t.TempDir(), "rates.yaml")
	require.NoError(t, os.WriteFile(cfg.RatesFile, []byte("default_year: 2023\nrates:\n  2023: {USD: 85, RUR: 1}\n"), 0o644))
	rates, err = LoadRates(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2023, rates.DefaultYear)
	assert.Equal(t, 85.0, rates.Rates[2023]["USD"])

	cfg.RatesFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = LoadRates(cfg)
	assert.Error(t, err)
}

func TestNewProcessor(t *testing.T) {
	cfg := testConfig(t)
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	proc, cleanup, err := NewProcessor(context.Background(), cfg, repo, log.New(log.Config{Output: os.Stderr}))
	require.NoError(t, err)
	require.NotNil(t, proc)
	require.NotNil(t, cleanup)
	assert.NoError(t, cleanup())

	csv := filepath.Join(cfg.DataDir, "vacancies.csv")
	require.NoError(t, os.WriteFile(csv, []byte("PHP developer;\"PHP\nSQL\";100000;150000;RUR;Москва;2024-05-01T10:00:00+0300\n"), 0o644))
	summary, err := proc.Process(context.Background(), csv)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Records)
	assert.Equal(t, 8, summary.Charts)
}

func TestNewProcessorRejectsBadExporter(t *testing.T) {
	cfg := testConfig(t)
	cfg.ExportBackend = "ftp"

	_, cleanup, err := NewProcessor(context.Background(), cfg, nil, log.New(log.DefaultConfig()))
	assert.Error(t, err)
	assert.NotNil(t, cleanup)
}

func TestSetupLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	logger := SetupLogger(log.ComponentWorker)
	assert.Equal(t, log.ComponentWorker, logger.Component())
	assert.True(t, logger.Enabled(context.Background(), -4))

	t.Setenv("LOG_LEVEL", "shout")
	logger = SetupLogger(log.ComponentApp)
	assert.False(t, logger.Enabled(context.Background(), -4))
}
