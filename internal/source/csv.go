package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/theirongolddev/pbudget/internal/expense"
)

// ErrMissingColumn is returned when the CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing csv column")

// CSVColumns are the required CSV header names, in canonical order.
var CSVColumns = []string{"date", "name", "category", "amount"}

// CSVResult holds the drafts read from a CSV file and the rejected lines.
type CSVResult struct {
	Drafts  []expense.Draft
	Skipped []SkippedRecord
}

// ReadCSV reads expense drafts from CSV with a header row naming the
// columns date, name, category, amount and optionally attachment, in any
// order. Each line is validated; invalid lines are reported by line number.
func ReadCSV(r io.Reader) (CSVResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return CSVResult{}, fmt.Errorf("reading csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, want := range CSVColumns {
		if _, ok := cols[want]; !ok {
			return CSVResult{}, fmt.Errorf("%w: %s", ErrMissingColumn, want)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var result CSVResult
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				result.Skipped = append(result.Skipped, SkippedRecord{Index: pe.Line, Err: err})
				continue
			}
			return result, fmt.Errorf("reading csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if isBlank(rec) {
			continue
		}

		d := expense.Draft{
			Date:          field(rec, "date"),
			Name:          field(rec, "name"),
			Category:      field(rec, "category"),
			Amount:        field(rec, "amount"),
			AttachmentRef: field(rec, "attachment"),
		}
		if _, err := d.Validate(); err != nil {
			result.Skipped = append(result.Skipped, SkippedRecord{
				Index: line,
				Err:   fmt.Errorf("line %d: %w", line, err),
			})
			continue
		}
		result.Drafts = append(result.Drafts, d)
	}

	return result, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
