package services

import (
	"fmt"

	"vacstat/internal/analytics"
	"vacstat/internal/charts"
	"vacstat/internal/core"
)

type chartSpec struct {
	topic  core.ChartTopic
	kind   core.ChartKind
	title  string
	series func(analytics.SegmentResult) charts.Series
}

// chartPlan lists the charts drawn for every segment.
var chartPlan = []chartSpec{
	{
		topic:  core.TopicSalary,
		kind:   core.ChartLine,
		title:  "Динамика уровня зарплат по годам",
		series: func(r analytics.SegmentResult) charts.Series { return charts.SalarySeries(r.Yearly) },
	},
	{
		topic:  core.TopicCounts,
		kind:   core.ChartLine,
		title:  "Динамика количества вакансий по годам",
		series: func(r analytics.SegmentResult) charts.Series { return charts.CountSeries(r.Yearly) },
	},
	{
		topic:  core.TopicGeography,
		kind:   core.ChartPie,
		title:  "Доля вакансий по городам",
		series: func(r analytics.SegmentResult) charts.Series { return charts.GeographySeries(r.Cities) },
	},
	{
		topic:  core.TopicSkills,
		kind:   core.ChartBar,
		title:  "Топ навыков",
		series: func(r analytics.SegmentResult) charts.Series { return charts.SkillSeries(r.Skills) },
	},
}

func (s chartSpec) Title(seg core.Segment) string {
	if seg == core.SegmentPHP {
		return s.title + " для PHP-программиста"
	}
	return s.title
}

// ChartName is the stable file name of a chart, e.g. "salary_php".
func ChartName(topic core.ChartTopic, seg core.Segment) string {
	return fmt.Sprintf("%s_%s", topic, seg)
}
