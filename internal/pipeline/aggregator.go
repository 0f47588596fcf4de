// Package pipeline derives totals, breakdowns and report payloads from an
// expense snapshot.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/pbudget/internal/model"
)

// MonthLabelLayout formats the month bucket labels, e.g. "Jan 2025".
const MonthLabelLayout = "Jan 2006"

// ComputeTotals sums the expenses and derives variance and usage against
// the monthly payment.
func ComputeTotals(expenses []model.Expense, budget model.BudgetSettings) model.Totals {
	totals := model.Totals{MonthlyPayment: budget.MonthlyPayment}

	for _, e := range expenses {
		totals.TotalExpenses += e.Amount
	}

	totals.Variance = totals.MonthlyPayment - totals.TotalExpenses

	// Usage is undefined without a payment; report 0 rather than Inf/NaN
	if totals.MonthlyPayment > 0 {
		totals.UsagePercent = totals.TotalExpenses / totals.MonthlyPayment * 100
	}

	return totals
}

// ComputeProjectTotals scales the monthly totals by the project duration.
// The duration is used as given.
func ComputeProjectTotals(totals model.Totals, durationMonths int) model.ProjectTotals {
	months := float64(durationMonths)
	pt := model.ProjectTotals{
		DurationMonths:       durationMonths,
		TotalProjectExpenses: totals.TotalExpenses * months,
		TotalProjectRevenue:  totals.MonthlyPayment * months,
	}
	pt.TotalProfit = pt.TotalProjectRevenue - pt.TotalProjectExpenses
	return pt
}

// GroupByCategory sums amounts per category, in the order of categories.
// Categories whose sum is exactly zero are omitted, as are expenses whose
// category is not in the list.
func GroupByCategory(expenses []model.Expense, categories []model.Category) []model.CategoryTotal {
	sums := make(map[model.Category]float64, len(categories))
	for _, e := range expenses {
		sums[e.Category] += e.Amount
	}

	result := make([]model.CategoryTotal, 0, len(categories))
	var grand float64
	for _, c := range categories {
		total, ok := sums[c]
		if !ok || total == 0 {
			continue
		}
		result = append(result, model.CategoryTotal{Category: c, Total: total})
		grand += total
	}

	if grand != 0 {
		for i := range result {
			result[i].Share = result[i].Total / grand
		}
	}

	return result
}

// GroupByMonth buckets expenses by calendar month of their date, sorted
// from oldest to newest. Expenses without a date are skipped.
func GroupByMonth(expenses []model.Expense) []model.MonthTotal {
	monthMap := make(map[string]*model.MonthTotal)
	var order []string

	for _, e := range expenses {
		if e.Date.IsZero() {
			continue
		}
		label := e.Date.Format(MonthLabelLayout)
		mt, ok := monthMap[label]
		if !ok {
			mt = &model.MonthTotal{
				Label: label,
				Month: time.Date(e.Date.Year(), e.Date.Month(), 1, 0, 0, 0, 0, time.UTC),
			}
			monthMap[label] = mt
			order = append(order, label)
		}
		mt.Total += e.Amount
		mt.Count++
	}

	months := make([]model.MonthTotal, 0, len(order))
	for _, label := range order {
		months = append(months, *monthMap[label])
	}
	sort.SliceStable(months, func(i, j int) bool {
		return months[i].Month.Before(months[j].Month)
	})

	return months
}

// Summarize computes every derived figure for the snapshot.
func Summarize(snap model.Snapshot) model.Summary {
	totals := ComputeTotals(snap.Expenses, snap.Budget)
	return model.Summary{
		ExpenseCount: len(snap.Expenses),
		Totals:       totals,
		Project:      ComputeProjectTotals(totals, snap.Budget.DurationMonths),
		ByCategory:   GroupByCategory(snap.Expenses, model.Categories),
		ByMonth:      GroupByMonth(snap.Expenses),
	}
}

// FilterByCategory returns expenses in the given category.
func FilterByCategory(expenses []model.Expense, category model.Category) []model.Expense {
	if category == "" {
		return expenses
	}
	var result []model.Expense
	for _, e := range expenses {
		if e.Category == category {
			result = append(result, e)
		}
	}
	return result
}

// FilterByName returns expenses whose name contains the substring.
func FilterByName(expenses []model.Expense, name string) []model.Expense {
	if name == "" {
		return expenses
	}
	var result []model.Expense
	for _, e := range expenses {
		if containsIgnoreCase(e.Name, name) {
			result = append(result, e)
		}
	}
	return result
}

// FilterByMonth returns expenses dated within the month of the given time.
func FilterByMonth(expenses []model.Expense, month time.Time) []model.Expense {
	if month.IsZero() {
		return expenses
	}
	var result []model.Expense
	for _, e := range expenses {
		if e.Date.IsZero() {
			continue
		}
		if e.Date.Year() == month.Year() && e.Date.Month() == month.Month() {
			result = append(result, e)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
