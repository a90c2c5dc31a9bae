package analytics

import (
	"cmp"
	"slices"
	"strings"

	"vacstat/internal/core"
)

const (
	DefaultOutlierCeiling = 10_000_000
	DefaultMinCityShare   = 1.0
	DefaultSkillLimit     = 20
)

// meanAcc accumulates a group's size and the salaries known within it.
type meanAcc struct {
	count   int
	samples int
	sum     float64
}

func (a *meanAcc) add(r Row) {
	a.count++
	if r.Known {
		a.samples++
		a.sum += r.Salary
	}
}

func (a *meanAcc) mean() float64 {
	if a.samples == 0 {
		return 0
	}
	return core.Round2(a.sum / float64(a.samples))
}

// YearlyStats groups rows by publication year. Rows without a year are left
// out. The result is ordered by year.
func YearlyStats(rows []Row) []core.YearlyStat {
	groups := make(map[int]*meanAcc)
	for _, r := range rows {
		year, ok := r.Record.Year()
		if !ok {
			continue
		}
		acc, found := groups[year]
		if !found {
			acc = &meanAcc{}
			groups[year] = acc
		}
		acc.add(r)
	}

	stats := make([]core.YearlyStat, 0, len(groups))
	for year, acc := range groups {
		stats = append(stats, core.YearlyStat{
			Year:          year,
			AverageSalary: acc.mean(),
			VacancyCount:  acc.count,
			SalarySamples: acc.samples,
		})
	}
	slices.SortFunc(stats, func(a, b core.YearlyStat) int { return cmp.Compare(a.Year, b.Year) })
	return stats
}

// CityStats groups rows by area. The share is taken over every row passed in,
// including rows with an unknown salary or no area, and cities below minShare
// percent are dropped. Ordered by share descending, ties in first-seen order.
func CityStats(rows []Row, minShare float64) []core.CityStat {
	stats := []core.CityStat{}
	if len(rows) == 0 {
		return stats
	}

	var order []string
	groups := make(map[string]*meanAcc)
	for _, r := range rows {
		city := strings.TrimSpace(r.Record.Area)
		if city == "" {
			continue
		}
		acc, found := groups[city]
		if !found {
			acc = &meanAcc{}
			groups[city] = acc
			order = append(order, city)
		}
		acc.add(r)
	}

	total := float64(len(rows))
	for _, city := range order {
		acc := groups[city]
		share := core.Round2(float64(acc.count) / total * 100)
		if share < minShare {
			continue
		}
		stats = append(stats, core.CityStat{
			City:          city,
			AverageSalary: acc.mean(),
			VacancyShare:  share,
			VacancyCount:  acc.count,
			SalarySamples: acc.samples,
		})
	}
	slices.SortStableFunc(stats, func(a, b core.CityStat) int { return cmp.Compare(b.VacancyShare, a.VacancyShare) })
	return stats
}

// TopSkills counts skill mentions across rows and keeps the limit most
// frequent. Ties keep the order in which skills were first seen. A limit
// <= 0 keeps every skill.
func TopSkills(rows []Row, limit int) []core.SkillCount {
	return countSkills(rows, 0, limit)
}

// TopSkillsByYear is TopSkills computed per publication year. Rows without a
// year are left out. Buckets are ordered by year.
func TopSkillsByYear(rows []Row, limit int) []core.SkillCount {
	var years []int
	buckets := make(map[int][]Row)
	for _, r := range rows {
		year, ok := r.Record.Year()
		if !ok {
			continue
		}
		if _, found := buckets[year]; !found {
			years = append(years, year)
		}
		buckets[year] = append(buckets[year], r)
	}
	slices.Sort(years)

	out := []core.SkillCount{}
	for _, year := range years {
		out = append(out, countSkills(buckets[year], year, limit)...)
	}
	return out
}

func countSkills(rows []Row, year, limit int) []core.SkillCount {
	var order []string
	counts := make(map[string]int)
	for _, r := range rows {
		for _, skill := range r.Record.Skills() {
			if _, found := counts[skill]; !found {
				order = append(order, skill)
			}
			counts[skill]++
		}
	}

	out := make([]core.SkillCount, 0, len(order))
	for _, skill := range order {
		out = append(out, core.SkillCount{Name: skill, Count: counts[skill], Year: year})
	}
	slices.SortStableFunc(out, func(a, b core.SkillCount) int { return cmp.Compare(b.Count, a.Count) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
