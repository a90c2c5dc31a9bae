package sheets

import (
	"vacstat/internal/core"
)

// Table names shared by the exporters.
const (
	TableYearly = "Yearly"
	TableCities = "Cities"
	TableSkills = "Skills"
	TableCharts = "Charts"
)

// Table is one exported sheet: a header row followed by data rows.
type Table struct {
	Name   string
	Header []any
	Rows   [][]any
}

// Tables flattens a report into the sheets every exporter writes. Both
// segments share a sheet and are told apart by the first column.
func Tables(report core.Report) []Table {
	yearly := Table{
		Name:   TableYearly,
		Header: []any{"segment", "year", "average_salary", "vacancy_count", "salary_samples"},
	}
	cities := Table{
		Name:   TableCities,
		Header: []any{"segment", "city", "average_salary", "vacancy_share", "vacancy_count"},
	}
	skills := Table{
		Name:   TableSkills,
		Header: []any{"segment", "skill", "count", "year"},
	}
	charts := Table{
		Name:   TableCharts,
		Header: []any{"segment", "topic", "kind", "title", "path"},
	}

	for _, sr := range report.Segments {
		seg := string(sr.Segment)
		for _, y := range sr.Yearly {
			yearly.Rows = append(yearly.Rows, []any{seg, y.Year, y.AverageSalary, y.VacancyCount, y.SalarySamples})
		}
		for _, c := range sr.Cities {
			cities.Rows = append(cities.Rows, []any{seg, c.City, c.AverageSalary, c.VacancyShare, c.VacancyCount})
		}
		for _, s := range sr.Skills {
			var year any = ""
			if s.Year != 0 {
				year = s.Year
			}
			skills.Rows = append(skills.Rows, []any{seg, s.Name, s.Count, year})
		}
		for _, c := range sr.Charts {
			charts.Rows = append(charts.Rows, []any{seg, string(c.Topic), string(c.Kind), c.Title, c.Path})
		}
	}

	return []Table{yearly, cities, skills, charts}
}

// Values returns the header and rows as one grid.
func (t Table) Values() [][]any {
	out := make([][]any, 0, len(t.Rows)+1)
	out = append(out, t.Header)
	out = append(out, t.Rows...)
	return out
}
