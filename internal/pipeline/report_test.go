package pipeline

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/pbudget/internal/model"
)

func TestBuildReport_Scenario(t *testing.T) {
	budget := model.BudgetSettings{MonthlyPayment: 200, DurationMonths: 3}
	r := BuildReport(scenarioExpenses(), budget, budget.DurationMonths)

	assert.True(t, r.GeneratedAt.IsZero())
	assert.Equal(t, 200.0, r.Settings.MonthlyPayment)
	assert.Equal(t, 3, r.Settings.DurationMonths)
	assert.Equal(t, 600.0, r.Settings.TotalRevenue)
	assert.Equal(t, 150.0, r.Financial.MonthlyExpenses)
	assert.Equal(t, 50.0, r.Financial.MonthlyVariance)
	assert.Equal(t, 75.0, r.Financial.UsagePercent)
	assert.Equal(t, 450.0, r.Financial.TotalProjectExpenses)
	assert.Equal(t, 150.0, r.Financial.TotalProjectProfit)

	require.Len(t, r.Rows, 2)
	assert.Equal(t, "2025-01-05", r.Rows[0].Date)
	assert.Equal(t, "Camera", r.Rows[0].Name)
	assert.Equal(t, "Equipment Rental", r.Rows[0].Category)
	assert.Equal(t, 100.0, r.Rows[0].Amount)

	assert.Equal(t, "2025-02-10", r.Rows[1].Date)
	assert.Equal(t, 50.0, r.Rows[1].Amount)

	assert.Equal(t, []model.ReportMonth{
		{Label: "Jan 2025", Total: 100},
		{Label: "Feb 2025", Total: 50},
	}, r.Months)
	assert.Equal(t, []model.CategoryTotal{
		{Category: model.CategoryEquipmentRental, Total: 150, Share: 1},
	}, r.Categories)
}

func TestBuildReport_KeepsStoreOrder(t *testing.T) {
	expenses := []model.Expense{
		exp("z", "Late", model.CategoryOther, 1, "2025-12-01"),
		exp("a", "Early", model.CategoryOther, 2, "2024-01-01"),
	}
	r := BuildReport(expenses, model.DefaultBudgetSettings(), 1)
	require.Len(t, r.Rows, 2)
	assert.Equal(t, "z", r.Rows[0].ID)
	assert.Equal(t, "a", r.Rows[1].ID)
}

func TestBuildReport_RoundsToCents(t *testing.T) {
	expenses := []model.Expense{
		exp("1", "Thirds", model.CategoryOther, 10.0/3.0, "2025-01-01"),
		exp("2", "Half", model.CategoryOther, 0.125, "2025-01-02"),
	}
	budget := model.BudgetSettings{MonthlyPayment: 7, DurationMonths: 3}
	r := BuildReport(expenses, budget, 3)

	assert.Equal(t, 3.33, r.Rows[0].Amount)
	assert.Equal(t, 0.13, r.Rows[1].Amount)
	assert.Equal(t, 3.46, r.Financial.MonthlyExpenses)
	assert.Equal(t, 3.54, r.Financial.MonthlyVariance)
	assert.Equal(t, 49.4, r.Financial.UsagePercent)
}

func TestBuildReport_NegativeProfitKeepsSign(t *testing.T) {
	budget := model.BudgetSettings{MonthlyPayment: 100, DurationMonths: 2}
	r := BuildReport(scenarioExpenses(), budget, 2)
	assert.Equal(t, -50.0, r.Financial.MonthlyVariance)
	assert.Equal(t, -100.0, r.Financial.TotalProjectProfit)
}

func TestBuildReport_Empty(t *testing.T) {
	r := BuildReport(nil, model.DefaultBudgetSettings(), 1)
	assert.Empty(t, r.Rows)
	assert.Empty(t, r.Categories)
	assert.Empty(t, r.Months)
	assert.Zero(t, r.Financial.UsagePercent)
	assert.Equal(t, 1, r.Settings.DurationMonths)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rows":[]`)
	assert.Contains(t, string(data), `"categories":[]`)
	assert.Contains(t, string(data), `"months":[]`)
}

func TestBuildReport_OverflowingTotalsDoNotPanic(t *testing.T) {
	expenses := []model.Expense{
		exp("1", "Huge", model.CategoryOther, 1e308, "2025-01-01"),
		exp("2", "Huge again", model.CategoryOther, 1e308, "2025-01-02"),
	}
	budget := model.BudgetSettings{MonthlyPayment: 200, DurationMonths: 3}

	var r model.Report
	require.NotPanics(t, func() { r = BuildReport(expenses, budget, 3) })
	assert.True(t, math.IsInf(r.Financial.MonthlyExpenses, 1))
	assert.Equal(t, 1e308, r.Rows[0].Amount)
}
