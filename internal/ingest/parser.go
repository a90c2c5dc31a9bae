// Package ingest loads vacancy records from delimiter-separated files.
//
// Parsing is lenient at the field level: an unparsable salary or date
// becomes an absent value and the record is kept. Only a missing or
// unreadable file is an error.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"vacstat/internal/core"
)

// Column positions of the input file. There is no header row.
const (
	colName = iota
	colKeySkills
	colSalaryFrom
	colSalaryTo
	colCurrency
	colArea
	colPublishedAt
	columnCount
)

// ErrFatalInput marks failures that abort a run before anything is written.
var ErrFatalInput = errors.New("input file unavailable")

// Layouts tried in order after the UTC offset suffix has been stripped.
var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Options configures the reader.
type Options struct {
	Delimiter rune
	Logger    *slog.Logger
}

// DefaultOptions returns comma-separated parsing with the default logger.
func DefaultOptions() Options {
	return Options{Delimiter: ','}
}

// ReadFile opens path and parses every row into a record.
func ReadFile(path string, opts Options) ([]core.VacancyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFatalInput, err)
	}
	defer f.Close()

	records, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrFatalInput, path, err)
	}
	return records, nil
}

// Read parses rows from r. Rows the CSV tokenizer rejects are skipped with a
// warning; every other row yields a record.
func Read(r io.Reader, opts Options) ([]core.VacancyRecord, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var (
		records []core.VacancyRecord
		skipped int
		padded  int
		row     int
	)
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				logger.Warn("Skipping malformed row", "row", row, "line", perr.Line, "error", perr.Err)
				continue
			}
			return nil, err
		}
		if !Complete(fields) {
			padded++
		}
		records = append(records, ParseRow(fields))
	}

	logger.Info("Parsed vacancy records", "records", len(records), "skipped", skipped, "short_rows", padded)
	return records, nil
}

// ParseRow converts positional fields into a record. Short rows are padded.
func ParseRow(fields []string) core.VacancyRecord {
	get := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	return core.VacancyRecord{
		Name:        strings.TrimSpace(get(colName)),
		KeySkills:   get(colKeySkills),
		SalaryFrom:  ParseSalary(get(colSalaryFrom)),
		SalaryTo:    ParseSalary(get(colSalaryTo)),
		Currency:    strings.TrimSpace(get(colCurrency)),
		Area:        strings.TrimSpace(get(colArea)),
		PublishedAt: ParsePublishedAt(get(colPublishedAt)),
	}
}

// ParseSalary returns nil for empty, non-numeric and NaN values.
func ParseSalary(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

// ParsePublishedAt drops everything from the first '+' (the UTC offset) and
// parses the rest as a naive timestamp. It returns the zero time on failure.
func ParsePublishedAt(s string) time.Time {
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "Z")
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Complete reports whether a row carried all seven columns.
func Complete(fields []string) bool {
	return len(fields) >= columnCount
}
