package report

import (
	"embed"
	"html/template"
	"io"

	"github.com/theirongolddev/pbudget/internal/cli"
	"github.com/theirongolddev/pbudget/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type htmlPage struct {
	Title      string
	Generated  string
	Overview   []line
	Financial  []line
	Rows       []model.ReportRow
	Total      float64
	Categories []model.CategoryTotal
	Months     []model.ReportMonth
}

func renderHTML(w io.Writer, r model.Report, opts Options) error {
	tmpl, err := template.New("report.html.tmpl").Funcs(template.FuncMap{
		"money":     opts.money,
		"share":     cli.FormatShare,
		"signClass": signClass,
	}).ParseFS(templateFS, "templates/report.html.tmpl")
	if err != nil {
		return err
	}

	return tmpl.Execute(w, htmlPage{
		Title:      opts.Title,
		Generated:  generatedLabel(r.GeneratedAt),
		Overview:   overviewLines(r, opts),
		Financial:  financialLines(r, opts),
		Rows:       r.Rows,
		Total:      r.Financial.MonthlyExpenses,
		Categories: r.Categories,
		Months:     r.Months,
	})
}

func signClass(v float64) string {
	if v < 0 {
		return "negative"
	}
	return "positive"
}
