package core

import (
	"os"
	"path/filepath"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestNormalize(t *testing.T) {
	rt := DefaultRates()
	cases := []struct {
		name     string
		from, to *float64
		currency string
		year     int
		hasYear  bool
		want     float64
		ok       bool
	}{
		{"both bounds", f(100000), f(150000), "RUB", 2024, true, 125000, true},
		{"only from", f(200000), nil, "RUB", 2024, true, 200000, true},
		{"only to halves", nil, f(100000), "RUR", 2024, true, 50000, true},
		{"to zero uses from", f(1000), f(0), "USD", 2024, true, 90000, true},
		{"year specific rate", f(1000), f(1000), "USD", 2005, true, 28500, true},
		{"unknown year falls back", f(1000), nil, "EUR", 2015, true, 98000, true},
		{"missing year falls back", f(1000), nil, "USD", 0, false, 90000, true},
		{"both nil", nil, nil, "RUB", 2024, true, 0, false},
		{"both zero", f(0), f(0), "RUB", 2024, true, 0, false},
		{"from zero to nil", f(0), nil, "RUB", 2024, true, 0, false},
		{"unknown currency", f(100), f(200), "XYZ", 2024, true, 0, false},
		{"empty currency", f(100), f(200), "", 2024, true, 0, false},
	}
	for _, tc := range cases {
		got, ok := rt.Normalize(tc.from, tc.to, tc.currency, tc.year, tc.hasYear)
		if ok != tc.ok {
			t.Fatalf("%s: expected ok=%v, got %v", tc.name, tc.ok, ok)
		}
		if ok && got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	rt := DefaultRates()
	a, _ := rt.Normalize(f(123.45), f(678.9), "EUR", 2006, true)
	for i := 0; i < 100; i++ {
		b, _ := rt.Normalize(f(123.45), f(678.9), "EUR", 2006, true)
		if a != b {
			t.Fatalf("expected identical results, got %v and %v", a, b)
		}
	}
}

func TestLoadRateTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rates.yaml")
	body := "default_year: 2023\nrates:\n  2023:\n    USD: 85\n    RUB: 1\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rt, err := LoadRateTable(path)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	got, ok := rt.Normalize(f(10), nil, "USD", 1999, true)
	if !ok || got != 850 {
		t.Fatalf("expected 850, got %v (ok=%v)", got, ok)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("default_year: 2020\nrates:\n  2024:\n    USD: 90\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadRateTable(bad); err == nil {
		t.Fatalf("expected error for missing default year")
	}
	if _, err := LoadRateTable(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		1.005:     1.0, // binary representation is below 1.005
		162500:    162500,
		33.333333: 33.33,
		66.666666: 66.67,
	}
	for in, want := range cases {
		if got := Round2(in); got != want {
			t.Fatalf("Round2(%v) expected %v, got %v", in, want, got)
		}
	}
}
