package storage

import (
	"context"
	"database/sql"
	"time"
)

const deleteSalaryStatistics = `DELETE FROM salary_statistics`

func (q *Queries) DeleteSalaryStatistics(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteSalaryStatistics)
	return err
}

const deleteGeographyData = `DELETE FROM geography_data`

func (q *Queries) DeleteGeographyData(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteGeographyData)
	return err
}

const deleteSkills = `DELETE FROM skills`

func (q *Queries) DeleteSkills(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteSkills)
	return err
}

const deleteGraphs = `DELETE FROM graphs`

func (q *Queries) DeleteGraphs(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteGraphs)
	return err
}

const createSalaryStatistic = `
INSERT INTO salary_statistics (year, average_salary, vacancy_count, salary_samples, is_general)
VALUES (?, ?, ?, ?, ?)
`

type CreateSalaryStatisticParams struct {
	Year          int64
	AverageSalary float64
	VacancyCount  int64
	SalarySamples int64
	IsGeneral     bool
}

func (q *Queries) CreateSalaryStatistic(ctx context.Context, arg CreateSalaryStatisticParams) error {
	_, err := q.db.ExecContext(ctx, createSalaryStatistic,
		arg.Year,
		arg.AverageSalary,
		arg.VacancyCount,
		arg.SalarySamples,
		arg.IsGeneral,
	)
	return err
}

const createGeographyDatum = `
INSERT INTO geography_data (city, average_salary, vacancy_share, vacancy_count, salary_samples, position, is_general)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type CreateGeographyDatumParams struct {
	City          string
	AverageSalary float64
	VacancyShare  float64
	VacancyCount  int64
	SalarySamples int64
	Position      int64
	IsGeneral     bool
}

func (q *Queries) CreateGeographyDatum(ctx context.Context, arg CreateGeographyDatumParams) error {
	_, err := q.db.ExecContext(ctx, createGeographyDatum,
		arg.City,
		arg.AverageSalary,
		arg.VacancyShare,
		arg.VacancyCount,
		arg.SalarySamples,
		arg.Position,
		arg.IsGeneral,
	)
	return err
}

const createSkill = `
INSERT INTO skills (name, count, year, position, is_general)
VALUES (?, ?, ?, ?, ?)
`

type CreateSkillParams struct {
	Name      string
	Count     int64
	Year      int64
	Position  int64
	IsGeneral bool
}

func (q *Queries) CreateSkill(ctx context.Context, arg CreateSkillParams) error {
	_, err := q.db.ExecContext(ctx, createSkill,
		arg.Name,
		arg.Count,
		arg.Year,
		arg.Position,
		arg.IsGeneral,
	)
	return err
}

const createGraph = `
INSERT INTO graphs (title, image, graph_type, chart_kind, position, is_general)
VALUES (?, ?, ?, ?, ?, ?)
`

type CreateGraphParams struct {
	Title     string
	Image     string
	GraphType string
	ChartKind string
	Position  int64
	IsGeneral bool
}

func (q *Queries) CreateGraph(ctx context.Context, arg CreateGraphParams) error {
	_, err := q.db.ExecContext(ctx, createGraph,
		arg.Title,
		arg.Image,
		arg.GraphType,
		arg.ChartKind,
		arg.Position,
		arg.IsGeneral,
	)
	return err
}

const listSalaryStatistics = `
SELECT id, year, average_salary, vacancy_count, salary_samples, is_general, created_at
FROM salary_statistics
WHERE is_general = ?
ORDER BY year
`

func (q *Queries) ListSalaryStatistics(ctx context.Context, isGeneral bool) ([]SalaryStatistic, error) {
	rows, err := q.db.QueryContext(ctx, listSalaryStatistics, isGeneral)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SalaryStatistic
	for rows.Next() {
		var i SalaryStatistic
		if err := rows.Scan(
			&i.ID,
			&i.Year,
			&i.AverageSalary,
			&i.VacancyCount,
			&i.SalarySamples,
			&i.IsGeneral,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listGeographyData = `
SELECT id, city, average_salary, vacancy_share, vacancy_count, salary_samples, position, is_general, created_at
FROM geography_data
WHERE is_general = ?
ORDER BY position
`

func (q *Queries) ListGeographyData(ctx context.Context, isGeneral bool) ([]GeographyDatum, error) {
	rows, err := q.db.QueryContext(ctx, listGeographyData, isGeneral)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GeographyDatum
	for rows.Next() {
		var i GeographyDatum
		if err := rows.Scan(
			&i.ID,
			&i.City,
			&i.AverageSalary,
			&i.VacancyShare,
			&i.VacancyCount,
			&i.SalarySamples,
			&i.Position,
			&i.IsGeneral,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listSkills = `
SELECT id, name, count, year, position, is_general, created_at
FROM skills
WHERE is_general = ?
ORDER BY position
`

func (q *Queries) ListSkills(ctx context.Context, isGeneral bool) ([]Skill, error) {
	rows, err := q.db.QueryContext(ctx, listSkills, isGeneral)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Skill
	for rows.Next() {
		var i Skill
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Count,
			&i.Year,
			&i.Position,
			&i.IsGeneral,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listGraphs = `
SELECT id, title, image, graph_type, chart_kind, position, is_general, created_at
FROM graphs
WHERE is_general = ?
ORDER BY position
`

func (q *Queries) ListGraphs(ctx context.Context, isGeneral bool) ([]Graph, error) {
	rows, err := q.db.QueryContext(ctx, listGraphs, isGeneral)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Graph
	for rows.Next() {
		var i Graph
		if err := rows.Scan(
			&i.ID,
			&i.Title,
			&i.Image,
			&i.GraphType,
			&i.ChartKind,
			&i.Position,
			&i.IsGeneral,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createProcessingRun = `
INSERT INTO processing_runs (id, source, status, started_at)
VALUES (?, ?, 'running', ?)
`

type CreateProcessingRunParams struct {
	ID        string
	Source    string
	StartedAt time.Time
}

func (q *Queries) CreateProcessingRun(ctx context.Context, arg CreateProcessingRunParams) error {
	_, err := q.db.ExecContext(ctx, createProcessingRun, arg.ID, arg.Source, arg.StartedAt)
	return err
}

const finishProcessingRun = `
UPDATE processing_runs
SET status = ?, error = ?, records = ?, yearly_rows = ?, city_rows = ?, skill_rows = ?, chart_rows = ?, finished_at = ?
WHERE id = ?
`

type FinishProcessingRunParams struct {
	Status     string
	Error      string
	Records    int64
	YearlyRows int64
	CityRows   int64
	SkillRows  int64
	ChartRows  int64
	FinishedAt sql.NullTime
	ID         string
}

func (q *Queries) FinishProcessingRun(ctx context.Context, arg FinishProcessingRunParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, finishProcessingRun,
		arg.Status,
		arg.Error,
		arg.Records,
		arg.YearlyRows,
		arg.CityRows,
		arg.SkillRows,
		arg.ChartRows,
		arg.FinishedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listProcessingRuns = `
SELECT id, source, status, error, records, yearly_rows, city_rows, skill_rows, chart_rows, started_at, finished_at
FROM processing_runs
ORDER BY started_at DESC
LIMIT ?
`

func (q *Queries) ListProcessingRuns(ctx context.Context, limit int64) ([]ProcessingRun, error) {
	rows, err := q.db.QueryContext(ctx, listProcessingRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ProcessingRun
	for rows.Next() {
		var i ProcessingRun
		if err := rows.Scan(
			&i.ID,
			&i.Source,
			&i.Status,
			&i.Error,
			&i.Records,
			&i.YearlyRows,
			&i.CityRows,
			&i.SkillRows,
			&i.ChartRows,
			&i.StartedAt,
			&i.FinishedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countRows = `
SELECT
    (SELECT COUNT(*) FROM salary_statistics) AS yearly_rows,
    (SELECT COUNT(*) FROM geography_data) AS city_rows,
    (SELECT COUNT(*) FROM skills) AS skill_rows,
    (SELECT COUNT(*) FROM graphs) AS chart_rows
`

type CountRowsRow struct {
	YearlyRows int64
	CityRows   int64
	SkillRows  int64
	ChartRows  int64
}

func (q *Queries) CountRows(ctx context.Context) (CountRowsRow, error) {
	row := q.db.QueryRowContext(ctx, countRows)
	var i CountRowsRow
	err := row.Scan(
		&i.YearlyRows,
		&i.CityRows,
		&i.SkillRows,
		&i.ChartRows,
	)
	return i, err
}
