// Package breaker builds the circuit breakers guarding outbound calls.
package breaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"vacstat/internal/metrics"
)

// Config configures a breaker.
type Config struct {
	Name             string
	FailureThreshold uint32        // consecutive failures that open the breaker
	Timeout          time.Duration // open -> half-open
	MaxRequests      uint32        // probes allowed while half-open
}

func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
	}
}

// New creates a breaker that reports its state changes to the log and metrics.
func New[T any](cfg Config) *gobreaker.CircuitBreaker[T] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			metrics.RecordBreakerTransition(name, from, to)
		},
	}
	cb := gobreaker.NewCircuitBreaker[T](settings)
	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(float64(gobreaker.StateClosed))
	return cb
}
