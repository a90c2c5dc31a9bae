package charts

import (
	"math"
	"strconv"

	"vacstat/internal/core"
)

// SalarySeries plots the mean salary per year. Years without a known salary
// are gaps.
func SalarySeries(stats []core.YearlyStat) Series {
	s := Series{XLabel: "Год", YLabel: "Средняя зарплата (руб.)"}
	for _, st := range stats {
		y := st.AverageSalary
		if st.SalarySamples == 0 {
			y = math.NaN()
		}
		s.Points = append(s.Points, Point{Label: strconv.Itoa(st.Year), X: float64(st.Year), Y: y})
	}
	return s
}

// CountSeries plots the number of vacancies per year.
func CountSeries(stats []core.YearlyStat) Series {
	s := Series{XLabel: "Год", YLabel: "Количество вакансий"}
	for _, st := range stats {
		s.Points = append(s.Points, Point{Label: strconv.Itoa(st.Year), X: float64(st.Year), Y: float64(st.VacancyCount)})
	}
	return s
}

// GeographySeries plots each city's vacancy share.
func GeographySeries(stats []core.CityStat) Series {
	var s Series
	for i, st := range stats {
		s.Points = append(s.Points, Point{Label: st.City, X: float64(i), Y: st.VacancyShare})
	}
	return s
}

// SkillSeries plots skill mention counts.
func SkillSeries(skills []core.SkillCount) Series {
	s := Series{XLabel: "Навык", YLabel: "Упоминания"}
	for i, sk := range skills {
		label := sk.Name
		if sk.Year != 0 {
			label = sk.Name + " (" + strconv.Itoa(sk.Year) + ")"
		}
		s.Points = append(s.Points, Point{Label: label, X: float64(i), Y: float64(sk.Count)})
	}
	return s
}
