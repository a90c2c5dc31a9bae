package memory

import (
	"context"
	"sync"

	"vacstat/internal/core"
	ports "vacstat/internal/sheets"
)

var _ ports.ReportPublisher = (*Store)(nil)

// Store keeps published reports in memory.
type Store struct {
	mu      sync.Mutex
	reports []core.Report
	tables  []ports.Table
}

func New() *Store {
	return &Store{}
}

// PublishReport stores the report and its flattened tables.
func (s *Store) PublishReport(ctx context.Context, report core.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	s.tables = ports.Tables(report)
	return nil
}

// Last returns the most recently published report.
func (s *Store) Last() (core.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.reports) == 0 {
		return core.Report{}, false
	}
	return s.reports[len(s.reports)-1], true
}

// Tables returns the tables of the last report.
func (s *Store) Tables() []ports.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.Table(nil), s.tables...)
}

// Count is the number of reports published so far.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}
