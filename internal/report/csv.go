package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/theirongolddev/pbudget/internal/cli"
	"github.com/theirongolddev/pbudget/internal/model"
)

// renderCSV writes the summary as label/value pairs followed by a blank
// line and the expense table. Amounts are plain numbers.
func renderCSV(w io.Writer, r model.Report, opts Options) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		{"section", "item", "value"},
		{"overview", "Title", opts.Title},
		{"overview", "Currency", opts.Currency},
	}
	if g := generatedLabel(r.GeneratedAt); g != "" {
		records = append(records, []string{"overview", "Generated", g})
	}
	for _, l := range overviewLines(r, opts) {
		v := cli.FormatPlain(l.Amount)
		if l.Label == "Project Duration" {
			v = strconv.Itoa(r.Settings.DurationMonths)
		}
		records = append(records, []string{"overview", l.Label, v})
	}
	for _, l := range financialLines(r, opts) {
		records = append(records, []string{"financial", l.Label, cli.FormatPlain(l.Amount)})
	}

	records = append(records, nil, []string{"date", "name", "category", "amount", "attachment"})
	for _, row := range r.Rows {
		records = append(records, []string{
			row.Date, row.Name, row.Category, cli.FormatPlain(row.Amount), strconv.FormatBool(row.HasAttachment),
		})
	}

	for _, rec := range records {
		if rec == nil {
			rec = []string{""}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
