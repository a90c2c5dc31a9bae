package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacstat/internal/core"
)

func f(v float64) *float64 { return &v }

var jan2024 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func rec(name, skills string, from, to *float64, cur, area string, at time.Time) core.VacancyRecord {
	return core.VacancyRecord{
		Name:        name,
		KeySkills:   skills,
		SalaryFrom:  from,
		SalaryTo:    to,
		Currency:    cur,
		Area:        area,
		PublishedAt: at,
	}
}

func aggregator() *Aggregator {
	return NewAggregator(core.DefaultRates(), DefaultOptions(), nil)
}

func TestScenarioYearlyBySegment(t *testing.T) {
	records := []core.VacancyRecord{
		rec("Backend PHP dev", "PHP\nMySQL", f(100000), f(150000), "RUB", "Moscow", jan2024),
		rec("Java dev", "Java", f(200000), nil, "RUB", "Moscow", jan2024),
	}

	results := aggregator().Aggregate(records)
	require.Len(t, results, 2)

	all, php := results[0], results[1]
	assert.Equal(t, core.SegmentAll, all.Segment)
	assert.Equal(t, []core.YearlyStat{{Year: 2024, AverageSalary: 162500, VacancyCount: 2, SalarySamples: 2}}, all.Yearly)

	assert.Equal(t, core.SegmentPHP, php.Segment)
	assert.Equal(t, []core.YearlyStat{{Year: 2024, AverageSalary: 125000, VacancyCount: 1, SalarySamples: 1}}, php.Yearly)
}

func TestScenarioUnknownCurrency(t *testing.T) {
	records := []core.VacancyRecord{
		rec("Go dev", "", f(100000), f(200000), "XYZ", "Kazan", jan2024),
		rec("Java dev", "", f(100000), nil, "RUB", "Moscow", jan2024),
	}
	rows := Normalize(records, core.DefaultRates())
	assert.False(t, rows[0].Known)
	assert.True(t, rows[1].Known)

	res := aggregator().AggregateSegment(core.SegmentAll, records)
	require.Len(t, res.Cities, 2)
	kazan := res.Cities[0]
	if kazan.City != "Kazan" {
		kazan = res.Cities[1]
	}
	assert.Equal(t, "Kazan", kazan.City)
	assert.Equal(t, 50.0, kazan.VacancyShare)
	assert.Equal(t, 0, kazan.SalarySamples)
	assert.Equal(t, 0.0, kazan.AverageSalary)

	require.Len(t, res.Yearly, 1)
	assert.Equal(t, 100000.0, res.Yearly[0].AverageSalary)
	assert.Equal(t, 2, res.Yearly[0].VacancyCount)
}

func TestScenarioUnparsableDate(t *testing.T) {
	records := []core.VacancyRecord{
		rec("PHP dev", "PHP", f(100000), nil, "RUB", "Moscow", time.Time{}),
		rec("PHP lead", "PHP\nLaravel", f(300000), nil, "RUB", "Moscow", jan2024),
	}
	res := aggregator().AggregateSegment(core.SegmentPHP, records)

	require.Len(t, res.Yearly, 1)
	assert.Equal(t, 1, res.Yearly[0].VacancyCount)
	assert.Equal(t, 300000.0, res.Yearly[0].AverageSalary)

	require.Len(t, res.Cities, 1)
	assert.Equal(t, 2, res.Cities[0].VacancyCount)
	assert.Equal(t, 200000.0, res.Cities[0].AverageSalary)

	require.NotEmpty(t, res.Skills)
	assert.Equal(t, core.SkillCount{Name: "PHP", Count: 2}, res.Skills[0])
}

func TestSegment(t *testing.T) {
	records := []core.VacancyRecord{
		{Name: "Senior PHP Developer"},
		{Name: "Java developer"},
		{Name: "Программист ПХП"},
		{Name: "РНР разработчик"},
		{Name: "php-fpm admin"},
		{Name: "Python dev"},
	}
	all, php := Segment(records)
	assert.Len(t, all, len(records))
	require.Len(t, php, 4)
	for _, r := range php {
		assert.Contains(t, all, r)
	}
	assert.Equal(t, "Программист ПХП", php[1].Name)
}

func TestIsPHPIgnoresCase(t *testing.T) {
	for _, title := range []string{"php", "PHP", "Php", "пХп", "рНр"} {
		assert.True(t, IsPHP(title), title)
	}
	assert.False(t, IsPHP("Go developer"))
}

func TestFilterOutliers(t *testing.T) {
	rows := []Row{
		{Salary: 9_999_999.99, Known: true},
		{Salary: 10_000_000, Known: true},
		{Salary: 50_000_000, Known: true},
		{Known: false},
	}
	kept := FilterOutliers(rows, DefaultOutlierCeiling)
	require.Len(t, kept, 2)
	for _, r := range kept {
		assert.False(t, r.Known && r.Salary >= DefaultOutlierCeiling)
	}
	assert.Len(t, FilterOutliers(rows, 0), 4)
}

func TestOutliersNeverReachMeans(t *testing.T) {
	records := []core.VacancyRecord{
		rec("a", "", f(100000), nil, "RUB", "Moscow", jan2024),
		rec("b", "", f(20_000_000), nil, "RUB", "Moscow", jan2024),
		rec("c", "", f(200_000), nil, "USD", "Moscow", jan2024), // 18M roubles
	}
	res := aggregator().AggregateSegment(core.SegmentAll, records)
	require.Len(t, res.Yearly, 1)
	assert.Equal(t, 100000.0, res.Yearly[0].AverageSalary)
	assert.Equal(t, 1, res.Yearly[0].VacancyCount)
	require.Len(t, res.Cities, 1)
	assert.Equal(t, 100000.0, res.Cities[0].AverageSalary)
	assert.Equal(t, 1, res.Records)
}

func TestYearlyStatsOrdered(t *testing.T) {
	records := []core.VacancyRecord{
		rec("a", "", f(100), nil, "RUB", "", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		rec("b", "", f(1000), nil, "USD", "", time.Date(2005, 3, 1, 0, 0, 0, 0, time.UTC)),
		rec("c", "", nil, nil, "RUB", "", time.Date(2006, 3, 1, 0, 0, 0, 0, time.UTC)),
	}
	stats := YearlyStats(Normalize(records, core.DefaultRates()))
	require.Len(t, stats, 3)
	assert.Equal(t, []int{2005, 2006, 2024}, []int{stats[0].Year, stats[1].Year, stats[2].Year})
	assert.Equal(t, 28500.0, stats[0].AverageSalary)
	assert.Equal(t, 0, stats[1].SalarySamples)
	assert.Equal(t, 1, stats[1].VacancyCount)
}

func TestCityStatsThresholdAndOrder(t *testing.T) {
	var records []core.VacancyRecord
	add := func(city string, n int) {
		for i := 0; i < n; i++ {
			records = append(records, rec("x", "", f(1000), nil, "RUB", city, jan2024))
		}
	}
	add("Kazan", 78)
	add("Moscow", 120)
	add("Tver", 1)
	add("Omsk", 1)

	stats := CityStats(Normalize(records, core.DefaultRates()), DefaultMinCityShare)
	require.Len(t, stats, 2)
	assert.Equal(t, "Moscow", stats[0].City)
	assert.Equal(t, 60.0, stats[0].VacancyShare)
	assert.Equal(t, "Kazan", stats[1].City)
	assert.Equal(t, 39.0, stats[1].VacancyShare)
	assert.Equal(t, 1000.0, stats[1].AverageSalary)
}

func TestCityStatsExactThresholdKept(t *testing.T) {
	var records []core.VacancyRecord
	for i := 0; i < 99; i++ {
		records = append(records, rec("x", "", nil, nil, "", "Moscow", jan2024))
	}
	records = append(records, rec("x", "", nil, nil, "", "Tver", jan2024))

	stats := CityStats(Normalize(records, core.DefaultRates()), DefaultMinCityShare)
	require.Len(t, stats, 2)
	assert.Equal(t, 99.0, stats[0].VacancyShare)
	assert.Equal(t, core.CityStat{City: "Tver", VacancyShare: 1, VacancyCount: 1}, stats[1])
}

func TestCityStatsSharesSumToAtMostHundred(t *testing.T) {
	cities := []string{"Moscow", "Kazan", "Tver", "Omsk", "Perm", "Sochi", "Ufa"}
	var records []core.VacancyRecord
	for i := 0; i < 301; i++ {
		records = append(records, rec("x", "", f(float64(i)), nil, "RUB", cities[i%len(cities)], jan2024))
	}
	stats := CityStats(Normalize(records, core.DefaultRates()), DefaultMinCityShare)
	var sum float64
	for _, s := range stats {
		sum += s.VacancyShare
	}
	// Each share is rounded on its own, so the total may drift by half a cent per city.
	assert.LessOrEqual(t, sum, 100+0.005*float64(len(stats)))
}

func TestTopSkillsStableAndLimited(t *testing.T) {
	var records []core.VacancyRecord
	for i := 0; i < 25; i++ {
		records = append(records, rec("x", fmt.Sprintf("skill%02d", i), nil, nil, "", "", jan2024))
	}
	records = append(records, rec("x", " Git \n\nskill24\n", nil, nil, "", "", jan2024))
	records = append(records, rec("x", "Git", nil, nil, "", "", jan2024))

	rows := Normalize(records, core.DefaultRates())
	top := TopSkills(rows, DefaultSkillLimit)
	require.Len(t, top, DefaultSkillLimit)
	assert.Equal(t, core.SkillCount{Name: "skill24", Count: 2}, top[0])
	assert.Equal(t, core.SkillCount{Name: "Git", Count: 2}, top[1])
	assert.Equal(t, "skill00", top[2].Name)
	assert.Equal(t, "skill17", top[19].Name)

	assert.Equal(t, top, TopSkills(rows, DefaultSkillLimit))
	assert.Len(t, TopSkills(rows, 0), 26)
}

func TestTopSkillsByYear(t *testing.T) {
	records := []core.VacancyRecord{
		rec("x", "Go\nSQL", nil, nil, "", "", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		rec("x", "SQL", nil, nil, "", "", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
		rec("x", "SQL", nil, nil, "", "", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
		rec("x", "Rust", nil, nil, "", "", time.Time{}),
	}
	got := TopSkillsByYear(Normalize(records, core.DefaultRates()), 20)
	assert.Equal(t, []core.SkillCount{
		{Name: "SQL", Count: 1, Year: 2023},
		{Name: "SQL", Count: 2, Year: 2024},
		{Name: "Go", Count: 1, Year: 2024},
	}, got)

	opts := DefaultOptions()
	opts.SkillsByYear = true
	res := NewAggregator(core.DefaultRates(), opts, nil).AggregateSegment(core.SegmentAll, records)
	assert.Equal(t, got, res.Skills)
}

func TestEmptySegment(t *testing.T) {
	res := aggregator().AggregateSegment(core.SegmentPHP, nil)
	assert.Empty(t, res.Yearly)
	assert.Empty(t, res.Cities)
	assert.Empty(t, res.Skills)
	assert.NotNil(t, res.Cities)
	assert.NotNil(t, res.Skills)
	assert.NotNil(t, TopSkillsByYear(nil, 20))

	results := aggregator().Aggregate([]core.VacancyRecord{rec("Java dev", "Java", f(1), nil, "RUB", "Moscow", jan2024)})
	assert.Empty(t, results[1].Yearly)
}
