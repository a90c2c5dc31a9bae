package core

import "time"

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

type RunStatus string

// SegmentReport holds every aggregate computed for one segment.
type SegmentReport struct {
	Segment Segment
	Yearly  []YearlyStat
	Cities  []CityStat
	Skills  []SkillCount
	Charts  []ChartArtifact
}

// Report is the full result of one processing run.
type Report struct {
	Segments []SegmentReport
}

// Summary counts produced rows per entity kind.
type Summary struct {
	Records int
	Yearly  int
	Cities  int
	Skills  int
	Charts  int
}

// ProcessingRun is one entry of the run log.
type ProcessingRun struct {
	ID         string
	Source     string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     RunStatus
	Error      string
	Summary    Summary
}

// LatestVacancy is a recent posting shown on the latest vacancies page.
type LatestVacancy struct {
	ID          string
	Title       string
	Company     string
	Region      string
	Salary      string
	PublishedAt time.Time
	URL         string
}

// Segment returns the report for s, or an empty report.
func (r Report) Segment(s Segment) SegmentReport {
	for _, sr := range r.Segments {
		if sr.Segment == s {
			return sr
		}
	}
	return SegmentReport{Segment: s}
}

// Summarize counts rows across all segments. Records is left to the caller.
func (r Report) Summarize() Summary {
	var s Summary
	for _, sr := range r.Segments {
		s.Yearly += len(sr.Yearly)
		s.Cities += len(sr.Cities)
		s.Skills += len(sr.Skills)
		s.Charts += len(sr.Charts)
	}
	return s
}

// Total is the number of produced rows of any kind.
func (s Summary) Total() int {
	return s.Yearly + s.Cities + s.Skills + s.Charts
}
