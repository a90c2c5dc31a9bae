package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"vacstat/internal/core"

	_ "modernc.org/sqlite"
)

var ErrRunNotFound = errors.New("processing run not found")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable. Used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ReplaceReport swaps every aggregate and chart row for the rows of report.
// Deletes and inserts share one transaction, so readers see either the old
// result set or the new one.
func (r *SQLiteRepository) ReplaceReport(ctx context.Context, report core.Report) error {
	for _, sr := range report.Segments {
		if err := sr.Segment.Validate(); err != nil {
			return fmt.Errorf("replace report: %w", err)
		}
		for _, c := range sr.Charts {
			if err := c.Validate(); err != nil {
				return fmt.Errorf("replace report: chart %q: %w", c.Path, err)
			}
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := deleteAll(ctx, q); err != nil {
		return err
	}
	for _, sr := range report.Segments {
		if err := insertSegment(ctx, q, sr); err != nil {
			return fmt.Errorf("insert %s segment: %w", sr.Segment, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit report: %w", err)
	}

	s := report.Summarize()
	slog.InfoContext(ctx, "Report replaced",
		"yearly", s.Yearly,
		"cities", s.Cities,
		"skills", s.Skills,
		"charts", s.Charts)
	return nil
}

func deleteAll(ctx context.Context, q *Queries) error {
	if err := q.DeleteSalaryStatistics(ctx); err != nil {
		return fmt.Errorf("delete salary statistics: %w", err)
	}
	if err := q.DeleteGeographyData(ctx); err != nil {
		return fmt.Errorf("delete geography data: %w", err)
	}
	if err := q.DeleteSkills(ctx); err != nil {
		return fmt.Errorf("delete skills: %w", err)
	}
	if err := q.DeleteGraphs(ctx); err != nil {
		return fmt.Errorf("delete graphs: %w", err)
	}
	return nil
}

func insertSegment(ctx context.Context, q *Queries, sr core.SegmentReport) error {
	general := sr.Segment.IsGeneral()
	for _, y := range sr.Yearly {
		if err := q.CreateSalaryStatistic(ctx, CreateSalaryStatisticParams{
			Year:          int64(y.Year),
			AverageSalary: y.AverageSalary,
			VacancyCount:  int64(y.VacancyCount),
			SalarySamples: int64(y.SalarySamples),
			IsGeneral:     general,
		}); err != nil {
			return fmt.Errorf("create salary statistic %d: %w", y.Year, err)
		}
	}
	for i, c := range sr.Cities {
		if err := q.CreateGeographyDatum(ctx, CreateGeographyDatumParams{
			City:          c.City,
			AverageSalary: c.AverageSalary,
			VacancyShare:  c.VacancyShare,
			VacancyCount:  int64(c.VacancyCount),
			SalarySamples: int64(c.SalarySamples),
			Position:      int64(i),
			IsGeneral:     general,
		}); err != nil {
			return fmt.Errorf("create geography data %s: %w", c.City, err)
		}
	}
	for i, s := range sr.Skills {
		if err := q.CreateSkill(ctx, CreateSkillParams{
			Name:      s.Name,
			Count:     int64(s.Count),
			Year:      int64(s.Year),
			Position:  int64(i),
			IsGeneral: general,
		}); err != nil {
			return fmt.Errorf("create skill %s: %w", s.Name, err)
		}
	}
	for i, c := range sr.Charts {
		if err := q.CreateGraph(ctx, CreateGraphParams{
			Title:     c.Title,
			Image:     c.Path,
			GraphType: string(c.Topic),
			ChartKind: string(c.Kind),
			Position:  int64(i),
			IsGeneral: general,
		}); err != nil {
			return fmt.Errorf("create graph %s: %w", c.Path, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) YearlyStats(ctx context.Context, seg core.Segment) ([]core.YearlyStat, error) {
	rows, err := r.queries.ListSalaryStatistics(ctx, seg.IsGeneral())
	if err != nil {
		return nil, fmt.Errorf("list salary statistics: %w", err)
	}
	out := make([]core.YearlyStat, len(rows))
	for i, row := range rows {
		out[i] = core.YearlyStat{
			Year:          int(row.Year),
			AverageSalary: row.AverageSalary,
			VacancyCount:  int(row.VacancyCount),
			SalarySamples: int(row.SalarySamples),
		}
	}
	return out, nil
}

func (r *SQLiteRepository) CityStats(ctx context.Context, seg core.Segment) ([]core.CityStat, error) {
	rows, err := r.queries.ListGeographyData(ctx, seg.IsGeneral())
	if err != nil {
		return nil, fmt.Errorf("list geography data: %w", err)
	}
	out := make([]core.CityStat, len(rows))
	for i, row := range rows {
		out[i] = core.CityStat{
			City:          row.City,
			AverageSalary: row.AverageSalary,
			VacancyShare:  row.VacancyShare,
			VacancyCount:  int(row.VacancyCount),
			SalarySamples: int(row.SalarySamples),
		}
	}
	return out, nil
}

func (r *SQLiteRepository) Skills(ctx context.Context, seg core.Segment) ([]core.SkillCount, error) {
	rows, err := r.queries.ListSkills(ctx, seg.IsGeneral())
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	out := make([]core.SkillCount, len(rows))
	for i, row := range rows {
		out[i] = core.SkillCount{Name: row.Name, Count: int(row.Count), Year: int(row.Year)}
	}
	return out, nil
}

func (r *SQLiteRepository) Charts(ctx context.Context, seg core.Segment) ([]core.ChartArtifact, error) {
	rows, err := r.queries.ListGraphs(ctx, seg.IsGeneral())
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	out := make([]core.ChartArtifact, len(rows))
	for i, row := range rows {
		out[i] = core.ChartArtifact{
			Title:   row.Title,
			Path:    row.Image,
			Kind:    core.ChartKind(row.ChartKind),
			Topic:   core.ChartTopic(row.GraphType),
			Segment: core.SegmentFromGeneral(row.IsGeneral),
		}
	}
	return out, nil
}

// Counts returns the number of persisted rows per entity kind.
func (r *SQLiteRepository) Counts(ctx context.Context) (core.Summary, error) {
	c, err := r.queries.CountRows(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("count rows: %w", err)
	}
	return core.Summary{
		Yearly: int(c.YearlyRows),
		Cities: int(c.CityRows),
		Skills: int(c.SkillRows),
		Charts: int(c.ChartRows),
	}, nil
}

// CreateRun records the start of a processing run.
func (r *SQLiteRepository) CreateRun(ctx context.Context, run core.ProcessingRun) error {
	if err := r.queries.CreateProcessingRun(ctx, CreateProcessingRunParams{
		ID:        run.ID,
		Source:    run.Source,
		StartedAt: run.StartedAt.UTC(),
	}); err != nil {
		return fmt.Errorf("create processing run: %w", err)
	}
	return nil
}

// FinishRun stores the outcome of a run created with CreateRun.
func (r *SQLiteRepository) FinishRun(ctx context.Context, run core.ProcessingRun) error {
	n, err := r.queries.FinishProcessingRun(ctx, FinishProcessingRunParams{
		Status:     string(run.Status),
		Error:      run.Error,
		Records:    int64(run.Summary.Records),
		YearlyRows: int64(run.Summary.Yearly),
		CityRows:   int64(run.Summary.Cities),
		SkillRows:  int64(run.Summary.Skills),
		ChartRows:  int64(run.Summary.Charts),
		FinishedAt: sql.NullTime{Time: run.FinishedAt.UTC(), Valid: !run.FinishedAt.IsZero()},
		ID:         run.ID,
	})
	if err != nil {
		return fmt.Errorf("finish processing run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish processing run %s: %w", run.ID, ErrRunNotFound)
	}
	return nil
}

// LatestRuns returns up to limit runs, newest first.
func (r *SQLiteRepository) LatestRuns(ctx context.Context, limit int) ([]core.ProcessingRun, error) {
	rows, err := r.queries.ListProcessingRuns(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list processing runs: %w", err)
	}
	out := make([]core.ProcessingRun, len(rows))
	for i, row := range rows {
		run := core.ProcessingRun{
			ID:        row.ID,
			Source:    row.Source,
			StartedAt: row.StartedAt,
			Status:    core.RunStatus(row.Status),
			Error:     row.Error,
			Summary: core.Summary{
				Records: int(row.Records),
				Yearly:  int(row.YearlyRows),
				Cities:  int(row.CityRows),
				Skills:  int(row.SkillRows),
				Charts:  int(row.ChartRows),
			},
		}
		if row.FinishedAt.Valid {
			run.FinishedAt = row.FinishedAt.Time
		}
		out[i] = run
	}
	return out, nil
}
