package http

import (
	"context"

	"vacstat/internal/amqp"
	"vacstat/internal/core"
)

// ReportReader is the read side of the persisted report.
type ReportReader interface {
	YearlyStats(ctx context.Context, seg core.Segment) ([]core.YearlyStat, error)
	CityStats(ctx context.Context, seg core.Segment) ([]core.CityStat, error)
	Skills(ctx context.Context, seg core.Segment) ([]core.SkillCount, error)
	Charts(ctx context.Context, seg core.Segment) ([]core.ChartArtifact, error)
	LatestRuns(ctx context.Context, limit int) ([]core.ProcessingRun, error)
	Ping(ctx context.Context) error
}

// LatestSource lists recently published vacancies.
type LatestSource interface {
	Latest(ctx context.Context, query string, limit int) ([]core.LatestVacancy, error)
}

// FileProcessor runs the pipeline in-process.
type FileProcessor interface {
	Process(ctx context.Context, path string) (core.Summary, error)
}

// JobPublisher enqueues a file for the worker.
type JobPublisher interface {
	PublishProcessFile(ctx context.Context, path string) (*amqp.ProcessFileMessage, error)
}
