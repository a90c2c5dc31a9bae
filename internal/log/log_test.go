package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vacstat/internal/core"
)

func newBufferLogger(level slog.Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{Level: level, Component: ComponentPipeline, Output: &buf}), &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestLoggerComponent(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)
	l.Info("hello", "records", 3)
	l.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "component=pipeline") || !strings.Contains(out, "records=3") {
		t.Errorf("unexpected output: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record should be filtered: %s", out)
	}

	buf.Reset()
	l.WithComponent(ComponentHTTP).With("k", "v").Warn("warned")
	out = buf.String()
	if !strings.Contains(out, "component=http") || !strings.Contains(out, "k=v") {
		t.Errorf("unexpected output: %s", out)
	}
	if strings.Count(out, "component=") != 1 {
		t.Errorf("component should appear once: %s", out)
	}
}

func TestFieldsToSliceIsSorted(t *testing.T) {
	got := NewFields().WithOperation(OpProcess).WithComponent(ComponentApp).WithError(nil).ToSlice()
	want := []any{FieldComponent, ComponentApp, FieldOperation, OpProcess}
	if len(got) != len(want) {
		t.Fatalf("ToSlice() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ToSlice() = %v, want %v", got, want)
		}
	}
}

func TestMiddlewareAndFromContext(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)

	var inner *Logger
	h := Middleware(l)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inner = FromContext(r.Context())
			inner.Info("handled")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if inner == nil || !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("request id missing: %s", buf.String())
	}

	if FromContext(context.Background()).Component() != "unknown" {
		t.Error("FromContext without logger should return the default")
	}
}

func TestStructuredLogger(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)
	sl := NewStructuredLogger(l)

	r := httptest.NewRequest(http.MethodGet, "/statistics?x=1", nil)
	sl.LogHTTPEnd(context.Background(), r, http.StatusInternalServerError, 12, "10.0.0.1")
	if out := buf.String(); !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "status_code=500") {
		t.Errorf("unexpected output: %s", out)
	}

	buf.Reset()
	sl.LogRun(context.Background(), core.ProcessingRun{ID: "r1", Source: "a.csv", Status: core.RunFailed, Error: "boom"})
	if out := buf.String(); !strings.Contains(out, "run_id=r1") || !strings.Contains(out, "error=boom") {
		t.Errorf("unexpected output: %s", out)
	}

	buf.Reset()
	sl.LogError(context.Background(), "failed", errors.New("bad"), ComponentStorage, OpList, nil)
	if out := buf.String(); !strings.Contains(out, "component=storage") || !strings.Contains(out, "operation=list") {
		t.Errorf("unexpected output: %s", out)
	}
}
