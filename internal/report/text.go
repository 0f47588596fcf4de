package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/theirongolddev/pbudget/internal/cli"
	"github.com/theirongolddev/pbudget/internal/model"
)

func renderText(w io.Writer, r model.Report, opts Options) error {
	var b strings.Builder

	b.WriteString(cli.RenderTitle(opts.Title))
	b.WriteString("\n")
	if g := generatedLabel(r.GeneratedAt); g != "" {
		b.WriteString(cli.RenderMuted("  Generated " + g))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(cli.RenderTable(linesTable("Project Overview", overviewLines(r, opts))))
	b.WriteString("\n")
	b.WriteString(cli.RenderTable(linesTable("Financial Summary", financialLines(r, opts))))
	b.WriteString("\n")

	if len(r.Rows) > 0 {
		rows := make([][]string, 0, len(r.Rows)+2)
		for _, row := range r.Rows {
			rows = append(rows, []string{row.Date, row.Name, row.Category, opts.money(row.Amount)})
		}
		rows = append(rows, cli.Separator, []string{"Total", "", "", opts.money(r.Financial.MonthlyExpenses)})
		b.WriteString(cli.RenderTable(cli.Table{
			Title:     "Expenses",
			Headers:   []string{"Date", "Expense Name", "Category", "Amount"},
			Rows:      rows,
			LeftAlign: map[int]bool{1: true, 2: true},
		}))
		b.WriteString("\n")
	}

	if len(r.Categories) > 0 {
		rows := make([][]string, 0, len(r.Categories))
		for _, ct := range r.Categories {
			rows = append(rows, []string{string(ct.Category), opts.money(ct.Total), cli.FormatShare(ct.Share)})
		}
		b.WriteString(cli.RenderTable(cli.Table{
			Title:   "By Category",
			Headers: []string{"Category", "Amount", "Share"},
			Rows:    rows,
		}))
		b.WriteString("\n")
	}

	if len(r.Months) > 0 {
		rows := make([][]string, 0, len(r.Months))
		for _, m := range r.Months {
			rows = append(rows, []string{m.Label, opts.money(m.Total)})
		}
		b.WriteString(cli.RenderTable(cli.Table{
			Title:   "By Month",
			Headers: []string{"Month", "Amount"},
			Rows:    rows,
		}))
	}

	_, err := fmt.Fprint(w, b.String())
	return err
}

func linesTable(title string, lines []line) cli.Table {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{l.Label, l.Value})
	}
	return cli.Table{Title: title, Rows: rows}
}
