package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacstat/internal/core"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "vacstat.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func sampleReport() core.Report {
	return core.Report{Segments: []core.SegmentReport{
		{
			Segment: core.SegmentAll,
			Yearly: []core.YearlyStat{
				{Year: 2023, AverageSalary: 90000, VacancyCount: 4, SalarySamples: 3},
				{Year: 2024, AverageSalary: 162500, VacancyCount: 2, SalarySamples: 2},
			},
			Cities: []core.CityStat{
				{City: "Moscow", AverageSalary: 150000, VacancyShare: 66.67, VacancyCount: 4, SalarySamples: 4},
				{City: "Kazan", AverageSalary: 80000, VacancyShare: 33.33, VacancyCount: 2, SalarySamples: 1},
			},
			Skills: []core.SkillCount{{Name: "SQL", Count: 3}, {Name: "PHP", Count: 1}},
			Charts: []core.ChartArtifact{
				{Title: "Salary", Path: "graphs/salary_all.png", Kind: core.ChartLine, Topic: core.TopicSalary, Segment: core.SegmentAll},
				{Title: "Cities", Path: "graphs/geography_all.png", Kind: core.ChartPie, Topic: core.TopicGeography, Segment: core.SegmentAll},
			},
		},
		{
			Segment: core.SegmentPHP,
			Yearly:  []core.YearlyStat{{Year: 2024, AverageSalary: 125000, VacancyCount: 1, SalarySamples: 1}},
			Skills:  []core.SkillCount{{Name: "PHP", Count: 1, Year: 2024}},
			Charts: []core.ChartArtifact{
				{Title: "Skills", Path: "graphs/skills_php.png", Kind: core.ChartBar, Topic: core.TopicSkills, Segment: core.SegmentPHP},
			},
		},
	}}
}

func TestMigrations(t *testing.T) {
	_, path := newTestRepo(t)

	v, dirty, err := SchemaVersion(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.False(t, dirty)

	// Applying again is a no-op.
	require.NoError(t, RunMigrations(path))
}

func TestReplaceReportRoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	report := sampleReport()

	require.NoError(t, repo.ReplaceReport(ctx, report))

	yearly, err := repo.YearlyStats(ctx, core.SegmentAll)
	require.NoError(t, err)
	assert.Equal(t, report.Segments[0].Yearly, yearly)

	cities, err := repo.CityStats(ctx, core.SegmentAll)
	require.NoError(t, err)
	assert.Equal(t, report.Segments[0].Cities, cities)

	skills, err := repo.Skills(ctx, core.SegmentPHP)
	require.NoError(t, err)
	assert.Equal(t, report.Segments[1].Skills, skills)

	charts, err := repo.Charts(ctx, core.SegmentAll)
	require.NoError(t, err)
	assert.Equal(t, report.Segments[0].Charts, charts)

	phpCities, err := repo.CityStats(ctx, core.SegmentPHP)
	require.NoError(t, err)
	assert.Empty(t, phpCities)

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.Summary{Yearly: 3, Cities: 2, Skills: 3, Charts: 3}, counts)
}

func TestReplaceReportReplacesEverything(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.ReplaceReport(ctx, sampleReport()))

	next := core.Report{Segments: []core.SegmentReport{{
		Segment: core.SegmentAll,
		Yearly:  []core.YearlyStat{{Year: 2025, AverageSalary: 1, VacancyCount: 1, SalarySamples: 1}},
	}}}
	require.NoError(t, repo.ReplaceReport(ctx, next))

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.Summary{Yearly: 1}, counts)

	yearly, err := repo.YearlyStats(ctx, core.SegmentAll)
	require.NoError(t, err)
	assert.Equal(t, next.Segments[0].Yearly, yearly)
}

func TestReplaceReportInvalidKeepsPreviousRows(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.ReplaceReport(ctx, sampleReport()))

	bad := core.Report{Segments: []core.SegmentReport{{
		Segment: core.SegmentAll,
		Charts:  []core.ChartArtifact{{Title: "x", Path: "graphs/x.png", Kind: "scatter", Segment: core.SegmentAll}},
	}}}
	err := repo.ReplaceReport(ctx, bad)
	assert.ErrorIs(t, err, core.ErrInvalidChartKind)

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, counts.Yearly)
}

func TestReplaceReportRollsBackOnInsertFailure(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.ReplaceReport(ctx, sampleReport()))

	// graph_type is constrained by the schema; core validation does not check topics.
	bad := core.Report{Segments: []core.SegmentReport{{
		Segment: core.SegmentAll,
		Yearly:  []core.YearlyStat{{Year: 2030, VacancyCount: 1}},
		Charts:  []core.ChartArtifact{{Title: "x", Path: "graphs/x.png", Kind: core.ChartLine, Topic: "weather", Segment: core.SegmentAll}},
	}}}
	require.Error(t, repo.ReplaceReport(ctx, bad))

	yearly, err := repo.YearlyStats(ctx, core.SegmentAll)
	require.NoError(t, err)
	assert.Equal(t, sampleReport().Segments[0].Yearly, yearly)
}

func TestProcessingRuns(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	first := core.ProcessingRun{ID: "run-1", Source: "a.csv", StartedAt: started, Status: core.RunRunning}
	second := core.ProcessingRun{ID: "run-2", Source: "b.csv", StartedAt: started.Add(time.Hour), Status: core.RunRunning}
	require.NoError(t, repo.CreateRun(ctx, first))
	require.NoError(t, repo.CreateRun(ctx, second))

	first.Status = core.RunSucceeded
	first.FinishedAt = started.Add(time.Minute)
	first.Summary = core.Summary{Records: 10, Yearly: 2, Cities: 3, Skills: 4, Charts: 8}
	require.NoError(t, repo.FinishRun(ctx, first))

	runs, err := repo.LatestRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, core.RunRunning, runs[0].Status)
	assert.True(t, runs[0].FinishedAt.IsZero())

	got := runs[1]
	assert.Equal(t, core.RunSucceeded, got.Status)
	assert.Equal(t, first.Summary, got.Summary)
	assert.True(t, got.StartedAt.Equal(started))
	assert.True(t, got.FinishedAt.Equal(first.FinishedAt))

	limited, err := repo.LatestRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	err = repo.FinishRun(ctx, core.ProcessingRun{ID: "missing", Status: core.RunFailed})
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestPing(t *testing.T) {
	repo, _ := newTestRepo(t)
	assert.NoError(t, repo.Ping(context.Background()))
}
