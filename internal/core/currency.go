// Package core provides the vacancy domain types and salary normalization.
//
// This file contains the currency rate table used to express every salary
// in roubles, and the loader for rate table overrides.
package core

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// DefaultRateYear is the table used when a record's year is unknown or missing from the table.
const DefaultRateYear = 2024

var ErrEmptyRateTable = errors.New("rate table has no rates")

// RateTable maps year -> currency code -> rouble rate.
type RateTable struct {
	DefaultYear int                        `yaml:"default_year"`
	Rates       map[int]map[string]float64 `yaml:"rates"`
}

// DefaultRates returns the built-in rouble rates.
func DefaultRates() RateTable {
	return RateTable{
		DefaultYear: DefaultRateYear,
		Rates: map[int]map[string]float64{
			2005: {"USD": 28.5, "EUR": 34.2, "RUR": 1, "RUB": 1},
			2006: {"USD": 26.3, "EUR": 34.7, "RUR": 1, "RUB": 1},
			2024: {"USD": 90, "EUR": 98, "RUR": 1, "RUB": 1},
		},
	}
}

// LoadRateTable reads a YAML rate table such as:
//
//	default_year: 2024
//	rates:
//	  2024: {USD: 90, EUR: 98, RUR: 1, RUB: 1}
func LoadRateTable(path string) (RateTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RateTable{}, fmt.Errorf("read rate table: %w", err)
	}
	var rt RateTable
	if err := yaml.Unmarshal(data, &rt); err != nil {
		return RateTable{}, fmt.Errorf("parse rate table: %w", err)
	}
	if err := rt.Validate(); err != nil {
		return RateTable{}, err
	}
	return rt, nil
}

func (rt RateTable) Validate() error {
	if len(rt.Rates) == 0 {
		return ErrEmptyRateTable
	}
	if _, ok := rt.Rates[rt.DefaultYear]; !ok {
		return fmt.Errorf("default year %d missing from rate table", rt.DefaultYear)
	}
	for year, rates := range rt.Rates {
		for code, rate := range rates {
			if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
				return fmt.Errorf("invalid rate %v for %s in %d", rate, code, year)
			}
		}
	}
	return nil
}

// Rate returns the rouble rate for a currency, falling back to the default
// year when the year is unknown or not in the table.
func (rt RateTable) Rate(currency string, year int, hasYear bool) (float64, bool) {
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return 0, false
	}
	rates, ok := rt.Rates[year]
	if !hasYear || !ok {
		rates = rt.Rates[rt.DefaultYear]
	}
	rate, ok := rates[currency]
	return rate, ok
}

// Normalize converts a salary range to a single rouble figure.
// The second result is false when the salary is unknown: both bounds absent,
// both zero, or the currency has no rate. The value is not rounded.
func (rt RateTable) Normalize(from, to *float64, currency string, year int, hasYear bool) (float64, bool) {
	if from == nil && to == nil {
		return 0, false
	}

	var lo, hi float64
	if from != nil {
		lo = *from
	}
	if to != nil {
		hi = *to
	} else {
		hi = lo
	}
	if lo == 0 && hi == 0 {
		return 0, false
	}

	avg := lo
	if hi != 0 {
		avg = (lo + hi) / 2
	}

	rate, ok := rt.Rate(currency, year, hasYear)
	if !ok {
		return 0, false
	}
	return avg * rate, true
}

// NormalizeRecord is Normalize applied to a record's own fields.
func (rt RateTable) NormalizeRecord(r VacancyRecord) (float64, bool) {
	year, ok := r.Year()
	return rt.Normalize(r.SalaryFrom, r.SalaryTo, r.Currency, year, ok)
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
