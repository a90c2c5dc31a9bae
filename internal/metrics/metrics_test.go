package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"
)

func TestRecordRun(t *testing.T) {
	okBefore := testutil.ToFloat64(RunsTotal.WithLabelValues("succeeded"))
	failBefore := testutil.ToFloat64(RunsTotal.WithLabelValues("failed"))

	RecordRun(time.Second, nil)
	RecordRun(time.Second, errors.New("boom"))

	if got := testutil.ToFloat64(RunsTotal.WithLabelValues("succeeded")) - okBefore; got != 1 {
		t.Fatalf("expected 1 succeeded run, got %v", got)
	}
	if got := testutil.ToFloat64(RunsTotal.WithLabelValues("failed")) - failBefore; got != 1 {
		t.Fatalf("expected 1 failed run, got %v", got)
	}
	if testutil.ToFloat64(LastSuccess) == 0 {
		t.Fatalf("expected last success timestamp to be set")
	}
}

func TestSetReportRows(t *testing.T) {
	SetReportRows(2, 3, 40, 8)
	want := map[string]float64{"yearly": 2, "cities": 3, "skills": 40, "charts": 8}
	for kind, v := range want {
		if got := testutil.ToFloat64(ReportRows.WithLabelValues(kind)); got != v {
			t.Fatalf("%s: expected %v, got %v", kind, v, got)
		}
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("test"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("test"))

	RecordCacheLookup("test", true)
	RecordCacheLookup("test", false)
	RecordCacheLookup("test", false)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("test")) - hits; got != 1 {
		t.Fatalf("expected 1 hit, got %v", got)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("test")) - misses; got != 2 {
		t.Fatalf("expected 2 misses, got %v", got)
	}
}

func TestRecordBreakerTransition(t *testing.T) {
	RecordBreakerTransition("test", gobreaker.StateClosed, gobreaker.StateOpen)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("test")); got != float64(gobreaker.StateOpen) {
		t.Fatalf("expected open state, got %v", got)
	}
	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("test", "closed", "open")); got < 1 {
		t.Fatalf("expected a recorded transition, got %v", got)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/statistics", "200"))
	RecordHTTPRequest("GET", "/statistics", "200", 10*time.Millisecond)
	if got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/statistics", "200")) - before; got != 1 {
		t.Fatalf("expected 1 request, got %v", got)
	}
}
