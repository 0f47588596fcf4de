// Package report renders a budget report payload into printable and
// machine-readable documents.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/theirongolddev/pbudget/internal/cli"
	"github.com/theirongolddev/pbudget/internal/model"
)

// DefaultTitle is used when Options.Title is empty.
const DefaultTitle = "Creative Project Budget Summary"

// ErrUnknownFormat is returned for a format not listed in Formats.
var ErrUnknownFormat = errors.New("unknown report format")

// Formats lists the supported output formats.
var Formats = []string{"text", "html", "csv", "json", "yaml", "xlsx"}

// Options controls document headers.
type Options struct {
	Title       string
	Currency    string
	GeneratedAt time.Time
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Currency == "" {
		o.Currency = cli.DefaultCurrency
	}
	return o
}

func (o Options) money(v float64) string {
	return cli.FormatMoney(o.Currency, v)
}

// Render writes r to w in the given format.
func Render(w io.Writer, format string, r model.Report, opts Options) error {
	opts = opts.withDefaults()
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = opts.GeneratedAt
	}

	var err error
	switch strings.ToLower(format) {
	case "text":
		err = renderText(w, r, opts)
	case "html":
		err = renderHTML(w, r, opts)
	case "csv":
		err = renderCSV(w, r, opts)
	case "json":
		err = renderJSON(w, r, opts)
	case "yaml":
		err = renderYAML(w, r, opts)
	case "xlsx":
		err = renderXLSX(w, r, opts)
	default:
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats, ", "))
	}
	if err != nil {
		return fmt.Errorf("rendering %s report: %w", format, err)
	}
	return nil
}

// Extension returns the file extension for a format.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case "text":
		return ".txt"
	case "yaml":
		return ".yaml"
	default:
		return "." + strings.ToLower(format)
	}
}

// ContentType returns the MIME type for a format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "html":
		return "text/html; charset=utf-8"
	case "csv":
		return "text/csv; charset=utf-8"
	case "json":
		return "application/json"
	case "yaml":
		return "application/yaml"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain; charset=utf-8"
	}
}

// line is one label/value entry of the overview or financial section.
type line struct {
	Label  string
	Value  string
	Amount float64
	Signed bool
}

func overviewLines(r model.Report, opts Options) []line {
	s := r.Settings
	return []line{
		{Label: "Monthly Client Payment", Value: opts.money(s.MonthlyPayment), Amount: s.MonthlyPayment},
		{Label: "Project Duration", Value: cli.FormatMonths(s.DurationMonths), Amount: float64(s.DurationMonths)},
		{Label: "Total Client Payment", Value: opts.money(s.TotalRevenue), Amount: s.TotalRevenue},
	}
}

func financialLines(r model.Report, opts Options) []line {
	f := r.Financial
	return []line{
		{Label: "Monthly Expenses", Value: opts.money(f.MonthlyExpenses), Amount: f.MonthlyExpenses},
		{Label: "Monthly Variance", Value: opts.money(f.MonthlyVariance), Amount: f.MonthlyVariance, Signed: true},
		{Label: "Budget Usage", Value: cli.FormatPercent(f.UsagePercent), Amount: f.UsagePercent},
		{Label: "Total Project Expenses", Value: opts.money(f.TotalProjectExpenses), Amount: f.TotalProjectExpenses},
		{Label: "Total Project Profit", Value: opts.money(f.TotalProjectProfit), Amount: f.TotalProjectProfit, Signed: true},
	}
}

func generatedLabel(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
