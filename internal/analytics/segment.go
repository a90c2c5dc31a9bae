// Package analytics turns parsed vacancy records into the yearly, city and
// skill aggregates of each segment.
package analytics

import (
	"strings"

	"vacstat/internal/core"
)

// Title fragments that put a vacancy into the PHP segment. The last two are
// Cyrillic spellings found in real postings.
var phpPatterns = []string{"php", "пхп", "рнр"}

// IsPHP reports whether title mentions PHP, ignoring case.
func IsPHP(title string) bool {
	t := strings.ToLower(title)
	for _, p := range phpPatterns {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

// Segment returns the overlapping views over records: all of them, and the
// PHP subset in input order.
func Segment(records []core.VacancyRecord) (all, php []core.VacancyRecord) {
	all = records
	for _, r := range records {
		if IsPHP(r.Name) {
			php = append(php, r)
		}
	}
	return all, php
}

// Row is a record with its normalized salary attached for the duration of a run.
type Row struct {
	Record core.VacancyRecord
	Salary float64
	Known  bool
}

// Normalize converts every record's salary to roubles.
func Normalize(records []core.VacancyRecord, rates core.RateTable) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		salary, ok := rates.NormalizeRecord(r)
		rows[i] = Row{Record: r, Salary: salary, Known: ok}
	}
	return rows
}

// FilterOutliers drops rows whose known salary is at or above ceiling.
// Rows with an unknown salary are kept. A ceiling <= 0 disables the filter.
func FilterOutliers(rows []Row, ceiling float64) []Row {
	if ceiling <= 0 {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Known && r.Salary >= ceiling {
			continue
		}
		out = append(out, r)
	}
	return out
}
