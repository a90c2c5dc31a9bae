package xlsx

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"vacstat/internal/core"
)

func TestPublishReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.xlsx")
	w := New(path)

	report := core.Report{Segments: []core.SegmentReport{
		{
			Segment: core.SegmentAll,
			Yearly:  []core.YearlyStat{{Year: 2024, AverageSalary: 162500, VacancyCount: 2, SalarySamples: 2}},
			Cities:  []core.CityStat{{City: "Москва", AverageSalary: 150000, VacancyShare: 66.67, VacancyCount: 4}},
		},
		{
			Segment: core.SegmentPHP,
			Skills:  []core.SkillCount{{Name: "PHP", Count: 5}},
		},
	}}
	require.NoError(t, w.PublishReport(context.Background(), report))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Yearly", "Cities", "Skills", "Charts"}, f.GetSheetList())

	rows, err := f.GetRows("Yearly")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"segment", "year", "average_salary", "vacancy_count", "salary_samples"}, rows[0])
	assert.Equal(t, []string{"all", "2024", "162500", "2", "2"}, rows[1])

	city, err := f.GetCellValue("Cities", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Москва", city)

	skills, err := f.GetRows("Skills")
	require.NoError(t, err)
	require.Len(t, skills, 2)
	assert.Equal(t, "php", skills[1][0])

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestPublishReportOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	w := New(path)

	first := core.Report{Segments: []core.SegmentReport{{
		Segment: core.SegmentAll,
		Yearly:  []core.YearlyStat{{Year: 2023}, {Year: 2024}},
	}}}
	require.NoError(t, w.PublishReport(context.Background(), first))
	require.NoError(t, w.PublishReport(context.Background(), core.Report{}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Yearly")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestPublishReportUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	w := New(filepath.Join(blocker, "report.xlsx"))
	assert.Error(t, w.PublishReport(context.Background(), core.Report{}))
}
