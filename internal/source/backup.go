// Package source reads and writes pbudget backups and imports expenses
// from CSV files.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/pbudget/internal/expense"
	"github.com/theirongolddev/pbudget/internal/model"
)

// ErrInvalidBackup is returned for documents that are not a backup at all.
var ErrInvalidBackup = errors.New("not a pbudget backup")

// ImportResult holds the restorable snapshot and the records left out.
type ImportResult struct {
	Snapshot model.Snapshot
	Skipped  []SkippedRecord
}

// WriteBackup writes snap as an indented JSON backup document.
func WriteBackup(w io.Writer, snap model.Snapshot, exportedAt time.Time) error {
	doc := RawBackup{
		Version:         BackupVersion,
		Expenses:        make([]RawExpense, 0, len(snap.Expenses)),
		Budget:          quote(strconv.FormatFloat(snap.Budget.MonthlyPayment, 'f', -1, 64)),
		ProjectDuration: quote(strconv.Itoa(snap.Budget.DurationMonths)),
	}
	if !exportedAt.IsZero() {
		doc.ExportedAt = exportedAt.UTC().Format(time.RFC3339)
	}

	for _, e := range snap.Expenses {
		file := json.RawMessage("null")
		if e.HasAttachment() {
			file = quote(e.AttachmentRef)
		}
		doc.Expenses = append(doc.Expenses, RawExpense{
			ID:       quote(e.ID),
			Name:     e.Name,
			Category: string(e.Category),
			Amount:   json.RawMessage(strconv.FormatFloat(e.Amount, 'f', -1, 64)),
			Date:     e.DateString(),
			File:     file,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}

// ReadBackup decodes a backup document. Records failing validation are
// skipped and listed in the result; unreadable settings fall back to the
// defaults.
func ReadBackup(r io.Reader) (ImportResult, error) {
	var doc RawBackup
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if doc.Expenses == nil && doc.Budget == nil && doc.ProjectDuration == nil {
		return ImportResult{}, ErrInvalidBackup
	}

	var result ImportResult
	result.Snapshot.Budget = model.DefaultBudgetSettings()
	seen := make(map[string]bool, len(doc.Expenses))

	for i, raw := range doc.Expenses {
		id := scalarText(raw.ID)
		e, err := decodeExpense(raw, id)
		if err == nil && seen[id] {
			err = fmt.Errorf("duplicate id %s", id)
		}
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedRecord{Index: i, ID: id, Err: err})
			continue
		}
		seen[id] = true
		result.Snapshot.Expenses = append(result.Snapshot.Expenses, e)
	}

	if v, ok := parseBudget(scalarText(doc.Budget)); ok {
		result.Snapshot.Budget.MonthlyPayment = v
	}
	if n, ok := leadingInt(scalarText(doc.ProjectDuration)); ok && n >= 1 && n <= expense.MaxDurationMonths {
		result.Snapshot.Budget.DurationMonths = n
	}

	return result, nil
}

func decodeExpense(raw RawExpense, id string) (model.Expense, error) {
	if id == "" {
		return model.Expense{}, errors.New("missing id")
	}
	f, err := expense.Draft{
		Name:          raw.Name,
		Category:      raw.Category,
		Amount:        scalarText(raw.Amount),
		Date:          raw.Date,
		AttachmentRef: attachmentRef(raw.File),
	}.Validate()
	if err != nil {
		return model.Expense{}, err
	}
	return model.Expense{
		ID:            id,
		Name:          f.Name,
		Category:      f.Category,
		Amount:        f.Amount,
		Date:          f.Date,
		AttachmentRef: f.AttachmentRef,
	}, nil
}

// attachmentRef maps the file field to a reference. Browser exports
// serialize file handles as objects, usually empty ones.
func attachmentRef(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '{':
		var f rawFile
		if err := json.Unmarshal(raw, &f); err == nil && f.Name != "" {
			return f.Name
		}
		return "attachment"
	case 'f': // false
		return ""
	default:
		return "attachment"
	}
}

// scalarText returns a JSON string or number as text.
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	return n.String()
}

func parseBudget(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := expense.ParsePayment(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// leadingInt parses the leading decimal digits of s, so "3.5" yields 3.
func leadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func quote(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
