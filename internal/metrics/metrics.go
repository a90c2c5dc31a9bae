// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

var (
	// Processing runs
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacstat_processing_runs_total",
			Help: "Total number of processing runs by outcome",
		},
		[]string{"status"}, // "succeeded", "failed"
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vacstat_processing_run_duration_seconds",
			Help:    "Duration of processing runs in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	RecordsParsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vacstat_records_parsed_total",
			Help: "Total number of vacancy records read from input files",
		},
	)

	ReportRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vacstat_report_rows",
			Help: "Rows produced by the last successful run per entity kind",
		},
		[]string{"kind"}, // "yearly", "cities", "skills", "charts"
	)

	LastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vacstat_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful run",
		},
	)

	ExportErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacstat_report_export_errors_total",
			Help: "Report exports that failed by backend",
		},
		[]string{"backend"},
	)

	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacstat_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vacstat_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"method", "endpoint"},
	)

	// Queue
	QueueMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacstat_queue_messages_total",
			Help: "Queue messages by direction and outcome",
		},
		[]string{"direction", "outcome"}, // direction: "publish", "consume"
	)

	// Cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacstat_cache_hits_total",
			Help: "Cache hits by cache",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacstat_cache_misses_total",
			Help: "Cache misses by cache",
		},
		[]string{"cache"},
	)

	// Circuit breakers
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vacstat_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacstat_circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordRun records the outcome of one processing run.
func RecordRun(duration time.Duration, err error) {
	RunDuration.Observe(duration.Seconds())
	if err != nil {
		RunsTotal.WithLabelValues("failed").Inc()
		return
	}
	RunsTotal.WithLabelValues("succeeded").Inc()
	LastSuccess.Set(float64(time.Now().Unix()))
}

// SetReportRows publishes the row counts of the last successful run.
func SetReportRows(yearly, cities, skills, charts int) {
	ReportRows.WithLabelValues("yearly").Set(float64(yearly))
	ReportRows.WithLabelValues("cities").Set(float64(cities))
	ReportRows.WithLabelValues("skills").Set(float64(skills))
	ReportRows.WithLabelValues("charts").Set(float64(charts))
}

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func RecordQueueMessage(direction, outcome string) {
	QueueMessages.WithLabelValues(direction, outcome).Inc()
}

func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordBreakerTransition is meant for gobreaker's OnStateChange hook.
func RecordBreakerTransition(name string, from, to gobreaker.State) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(to))
	CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
}
