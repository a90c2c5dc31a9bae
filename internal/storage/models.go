package storage

import (
	"database/sql"
	"time"
)

type SalaryStatistic struct {
	ID            int64
	Year          int64
	AverageSalary float64
	VacancyCount  int64
	SalarySamples int64
	IsGeneral     bool
	CreatedAt     time.Time
}

type GeographyDatum struct {
	ID            int64
	City          string
	AverageSalary float64
	VacancyShare  float64
	VacancyCount  int64
	SalarySamples int64
	Position      int64
	IsGeneral     bool
	CreatedAt     time.Time
}

type Skill struct {
	ID        int64
	Name      string
	Count     int64
	Year      int64
	Position  int64
	IsGeneral bool
	CreatedAt time.Time
}

type Graph struct {
	ID        int64
	Title     string
	Image     string
	GraphType string
	ChartKind string
	Position  int64
	IsGeneral bool
	CreatedAt time.Time
}

type ProcessingRun struct {
	ID         string
	Source     string
	Status     string
	Error      string
	Records    int64
	YearlyRows int64
	CityRows   int64
	SkillRows  int64
	ChartRows  int64
	StartedAt  time.Time
	FinishedAt sql.NullTime
}
