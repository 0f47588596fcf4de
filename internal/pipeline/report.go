package pipeline

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/pbudget/internal/model"
)

// BuildReport assembles the report payload. Rows keep store order and every
// figure is rounded to two decimals. GeneratedAt is left for the caller.
func BuildReport(expenses []model.Expense, budget model.BudgetSettings, durationMonths int) model.Report {
	totals := ComputeTotals(expenses, budget)
	project := ComputeProjectTotals(totals, durationMonths)

	r := model.Report{
		Settings: model.ReportSettings{
			MonthlyPayment: round2(budget.MonthlyPayment),
			DurationMonths: durationMonths,
			TotalRevenue:   round2(project.TotalProjectRevenue),
		},
		Financial: model.ReportFinancial{
			MonthlyExpenses:      round2(totals.TotalExpenses),
			MonthlyVariance:      round2(totals.Variance),
			UsagePercent:         round2(totals.UsagePercent),
			TotalProjectExpenses: round2(project.TotalProjectExpenses),
			TotalProjectProfit:   round2(project.TotalProfit),
		},
		Rows:       make([]model.ReportRow, 0, len(expenses)),
		Categories: make([]model.CategoryTotal, 0, len(model.Categories)),
		Months:     make([]model.ReportMonth, 0),
	}

	for _, e := range expenses {
		r.Rows = append(r.Rows, model.ReportRow{
			ID:            e.ID,
			Date:          e.DateString(),
			Name:          e.Name,
			Category:      string(e.Category),
			Amount:        round2(e.Amount),
			HasAttachment: e.HasAttachment(),
		})
	}

	for _, ct := range GroupByCategory(expenses, model.Categories) {
		ct.Total = round2(ct.Total)
		ct.Share = roundTo(ct.Share, 4)
		r.Categories = append(r.Categories, ct)
	}

	for _, mt := range GroupByMonth(expenses) {
		r.Months = append(r.Months, model.ReportMonth{
			Label: mt.Label,
			Total: round2(mt.Total),
		})
	}

	return r
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return roundTo(v, 2)
}

// roundTo returns non-finite values unchanged.
func roundTo(v float64, places int32) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
