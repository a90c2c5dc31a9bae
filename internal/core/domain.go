package core

import (
	"errors"
	"strings"
	"time"
)

const (
	SegmentAll Segment = "all"
	SegmentPHP Segment = "php"
)

const (
	ChartLine ChartKind = "line"
	ChartBar  ChartKind = "bar"
	ChartPie  ChartKind = "pie"
)

const (
	TopicSalary    ChartTopic = "salary"
	TopicCounts    ChartTopic = "counts"
	TopicSkills    ChartTopic = "skills"
	TopicGeography ChartTopic = "geography"
)

type (
	// Segment names one of the two overlapping views over a record set.
	Segment string

	ChartKind string

	// ChartTopic is what a chart shows (salary, counts, ...), independent of its kind.
	ChartTopic string

	// VacancyRecord is one row of the input file after field-level parsing.
	// Empty strings and nil pointers mean the field was absent or unparsable.
	VacancyRecord struct {
		Name        string
		KeySkills   string // newline-delimited
		SalaryFrom  *float64
		SalaryTo    *float64
		Currency    string
		Area        string
		PublishedAt time.Time // zero when unparsable
	}

	YearlyStat struct {
		Year          int
		AverageSalary float64
		VacancyCount  int
		SalarySamples int // rows with a known salary behind AverageSalary
	}

	CityStat struct {
		City          string
		AverageSalary float64
		VacancyShare  float64 // percent of the segment's rows
		VacancyCount  int
		SalarySamples int
	}

	SkillCount struct {
		Name  string
		Count int
		Year  int // 0 when counted across the whole segment
	}

	ChartArtifact struct {
		Title   string
		Path    string // relative to the media root
		Kind    ChartKind
		Topic   ChartTopic
		Segment Segment
	}
)

var (
	ErrInvalidSegment   = errors.New("invalid segment")
	ErrInvalidChartKind = errors.New("invalid chart kind")
	ErrEmptyChartPath   = errors.New("empty chart path")
)

// Year derives the publication year. It is the only source of a record's year.
func (r VacancyRecord) Year() (int, bool) {
	if r.PublishedAt.IsZero() {
		return 0, false
	}
	return r.PublishedAt.Year(), true
}

// HasSkills reports whether the record carries a skill list.
func (r VacancyRecord) HasSkills() bool {
	return strings.TrimSpace(r.KeySkills) != ""
}

// Skills splits the raw skill list on newlines and trims every entry.
// Empty entries are dropped.
func (r VacancyRecord) Skills() []string {
	if !r.HasSkills() {
		return nil
	}
	parts := strings.Split(r.KeySkills, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s Segment) Validate() error {
	switch s {
	case SegmentAll, SegmentPHP:
		return nil
	default:
		return ErrInvalidSegment
	}
}

// IsGeneral reports whether the segment is the "all vacancies" view.
func (s Segment) IsGeneral() bool {
	return s == SegmentAll
}

// SegmentFromGeneral maps the persisted is_general flag back to a segment.
func SegmentFromGeneral(general bool) Segment {
	if general {
		return SegmentAll
	}
	return SegmentPHP
}

func (k ChartKind) Validate() error {
	switch k {
	case ChartLine, ChartBar, ChartPie:
		return nil
	default:
		return ErrInvalidChartKind
	}
}

func (c ChartArtifact) Validate() error {
	if err := c.Kind.Validate(); err != nil {
		return err
	}
	if err := c.Segment.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Path) == "" {
		return ErrEmptyChartPath
	}
	return nil
}
