package analytics

import (
	"log/slog"

	"vacstat/internal/core"
)

// Options tunes the aggregation passes.
type Options struct {
	OutlierCeiling float64 // <= 0 disables the filter
	MinCityShare   float64 // percent
	SkillLimit     int
	SkillsByYear   bool
}

func DefaultOptions() Options {
	return Options{
		OutlierCeiling: DefaultOutlierCeiling,
		MinCityShare:   DefaultMinCityShare,
		SkillLimit:     DefaultSkillLimit,
	}
}

// SegmentResult holds the aggregates of one segment.
type SegmentResult struct {
	Segment core.Segment
	Records int // rows that survived the outlier filter
	Yearly  []core.YearlyStat
	Cities  []core.CityStat
	Skills  []core.SkillCount
}

type Aggregator struct {
	rates  core.RateTable
	opts   Options
	logger *slog.Logger
}

func NewAggregator(rates core.RateTable, opts Options, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{rates: rates, opts: opts, logger: logger}
}

// Aggregate segments records and aggregates both views, "all" first.
func (a *Aggregator) Aggregate(records []core.VacancyRecord) []SegmentResult {
	all, php := Segment(records)
	return []SegmentResult{
		a.AggregateSegment(core.SegmentAll, all),
		a.AggregateSegment(core.SegmentPHP, php),
	}
}

// AggregateSegment normalizes, filters and aggregates one record sequence.
func (a *Aggregator) AggregateSegment(seg core.Segment, records []core.VacancyRecord) SegmentResult {
	rows := Normalize(records, a.rates)
	kept := FilterOutliers(rows, a.opts.OutlierCeiling)

	res := SegmentResult{
		Segment: seg,
		Records: len(kept),
		Yearly:  YearlyStats(kept),
		Cities:  CityStats(kept, a.opts.MinCityShare),
	}
	if a.opts.SkillsByYear {
		res.Skills = TopSkillsByYear(kept, a.opts.SkillLimit)
	} else {
		res.Skills = TopSkills(kept, a.opts.SkillLimit)
	}

	a.logger.Info("Aggregated segment",
		"segment", seg,
		"records", len(records),
		"outliers", len(rows)-len(kept),
		"years", len(res.Yearly),
		"cities", len(res.Cities),
		"skills", len(res.Skills),
	)
	return res
}
