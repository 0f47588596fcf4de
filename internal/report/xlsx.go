package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/pbudget/internal/model"
)

const (
	summarySheet  = "Summary"
	expensesSheet = "Expenses"
)

func renderXLSX(w io.Writer, r model.Report, opts Options) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(expensesSheet); err != nil {
		return err
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"3AA99F"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	moneyFmt := fmt.Sprintf(`"%s"#,##0.00;"%s"-#,##0.00`, opts.Currency, opts.Currency)
	moneyStyle, _ := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	negativeStyle, _ := f.NewStyle(&excelize.Style{
		CustomNumFmt: &moneyFmt,
		Font:         &excelize.Font{Color: "AF3029"},
	})
	totalStyle, _ := f.NewStyle(&excelize.Style{
		CustomNumFmt: &moneyFmt,
		Font:         &excelize.Font{Bold: true},
	})

	// Summary sheet
	_ = f.SetColWidth(summarySheet, "A", "A", 28)
	_ = f.SetColWidth(summarySheet, "B", "B", 20)
	_ = f.SetCellValue(summarySheet, "A1", opts.Title)
	_ = f.SetCellStyle(summarySheet, "A1", "A1", titleStyle)
	if g := generatedLabel(r.GeneratedAt); g != "" {
		_ = f.SetCellValue(summarySheet, "A2", "Generated "+g)
	}

	row := 4
	writeSection := func(title string, lines []line) {
		cell := fmt.Sprintf("A%d", row)
		_ = f.SetCellValue(summarySheet, cell, title)
		_ = f.SetCellStyle(summarySheet, cell, fmt.Sprintf("B%d", row), headerStyle)
		row++
		for _, l := range lines {
			_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), l.Label)
			valueCell := fmt.Sprintf("B%d", row)
			switch l.Label {
			case "Project Duration":
				_ = f.SetCellValue(summarySheet, valueCell, r.Settings.DurationMonths)
			case "Budget Usage":
				_ = f.SetCellValue(summarySheet, valueCell, l.Value)
			default:
				_ = f.SetCellValue(summarySheet, valueCell, l.Amount)
				style := moneyStyle
				if l.Signed && l.Amount < 0 {
					style = negativeStyle
				}
				_ = f.SetCellStyle(summarySheet, valueCell, valueCell, style)
			}
			row++
		}
		row++
	}
	writeSection("Project Overview", overviewLines(r, opts))
	writeSection("Financial Summary", financialLines(r, opts))

	// Expenses sheet
	_ = f.SetColWidth(expensesSheet, "A", "A", 12)
	_ = f.SetColWidth(expensesSheet, "B", "B", 32)
	_ = f.SetColWidth(expensesSheet, "C", "C", 26)
	_ = f.SetColWidth(expensesSheet, "D", "D", 14)
	_ = f.SetColWidth(expensesSheet, "E", "E", 12)

	headers := []string{"Date", "Expense Name", "Category", "Amount", "Attachment"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(expensesSheet, cell, h)
		_ = f.SetCellStyle(expensesSheet, cell, cell, headerStyle)
	}

	for i, er := range r.Rows {
		n := i + 2
		_ = f.SetCellValue(expensesSheet, fmt.Sprintf("A%d", n), er.Date)
		_ = f.SetCellValue(expensesSheet, fmt.Sprintf("B%d", n), er.Name)
		_ = f.SetCellValue(expensesSheet, fmt.Sprintf("C%d", n), er.Category)
		_ = f.SetCellValue(expensesSheet, fmt.Sprintf("D%d", n), er.Amount)
		_ = f.SetCellStyle(expensesSheet, fmt.Sprintf("D%d", n), fmt.Sprintf("D%d", n), moneyStyle)
		if er.HasAttachment {
			_ = f.SetCellValue(expensesSheet, fmt.Sprintf("E%d", n), "yes")
		}
	}

	totalRow := len(r.Rows) + 2
	_ = f.SetCellValue(expensesSheet, fmt.Sprintf("A%d", totalRow), "Total")
	_ = f.SetCellValue(expensesSheet, fmt.Sprintf("D%d", totalRow), r.Financial.MonthlyExpenses)
	_ = f.SetCellStyle(expensesSheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("D%d", totalRow), totalStyle)

	f.SetActiveSheet(0)
	return f.Write(w)
}
