package model

import "time"

// Totals holds the monthly aggregate over all expenses.
type Totals struct {
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalExpenses  float64 `json:"total_expenses"`
	Variance       float64 `json:"variance"`
	UsagePercent   float64 `json:"usage_percent"`
}

// ProjectTotals holds the monthly totals scaled by project duration.
type ProjectTotals struct {
	DurationMonths       int     `json:"duration_months"`
	TotalProjectExpenses float64 `json:"total_project_expenses"`
	TotalProjectRevenue  float64 `json:"total_project_revenue"`
	TotalProfit          float64 `json:"total_profit"`
}

// CategoryTotal holds the summed amount for one category.
type CategoryTotal struct {
	Category Category `json:"category" yaml:"category"`
	Total    float64  `json:"total" yaml:"total"`
	Share    float64  `json:"share" yaml:"share"` // 0-1 of the breakdown total
}

// MonthTotal holds the summed amount for one calendar month.
type MonthTotal struct {
	Label string    `json:"label"` // e.g. "Jan 2025"
	Month time.Time `json:"month"` // first day of the month, UTC
	Total float64   `json:"total"`
	Count int       `json:"count"`
}

// Summary bundles every derived figure for one snapshot.
type Summary struct {
	ExpenseCount int             `json:"expense_count"`
	Totals       Totals          `json:"totals"`
	Project      ProjectTotals   `json:"project"`
	ByCategory   []CategoryTotal `json:"by_category"`
	ByMonth      []MonthTotal    `json:"by_month"`
}
