package model

import "time"

// Report is the structured payload handed to document renderers.
// Numeric fields are rounded to two decimals.
type Report struct {
	GeneratedAt time.Time       `json:"generated_at" yaml:"generated_at"`
	Settings    ReportSettings  `json:"settings" yaml:"settings"`
	Financial   ReportFinancial `json:"financial" yaml:"financial"`
	Rows        []ReportRow     `json:"rows" yaml:"rows"`
	Categories  []CategoryTotal `json:"categories" yaml:"categories"`
	Months      []ReportMonth   `json:"months" yaml:"months"`
}

// ReportSettings is the project overview section.
type ReportSettings struct {
	MonthlyPayment float64 `json:"monthly_payment" yaml:"monthly_payment"`
	DurationMonths int     `json:"duration_months" yaml:"duration_months"`
	TotalRevenue   float64 `json:"total_revenue" yaml:"total_revenue"`
}

// ReportFinancial is the financial summary section.
type ReportFinancial struct {
	MonthlyExpenses      float64 `json:"monthly_expenses" yaml:"monthly_expenses"`
	MonthlyVariance      float64 `json:"monthly_variance" yaml:"monthly_variance"`
	UsagePercent         float64 `json:"usage_percent" yaml:"usage_percent"`
	TotalProjectExpenses float64 `json:"total_project_expenses" yaml:"total_project_expenses"`
	TotalProjectProfit   float64 `json:"total_project_profit" yaml:"total_project_profit"`
}

// ReportRow is one expense line of the report, in store order.
type ReportRow struct {
	ID            string  `json:"id" yaml:"id"`
	Date          string  `json:"date" yaml:"date"`
	Name          string  `json:"name" yaml:"name"`
	Category      string  `json:"category" yaml:"category"`
	Amount        float64 `json:"amount" yaml:"amount"`
	HasAttachment bool    `json:"has_attachment" yaml:"has_attachment"`
}

// ReportMonth is one month line of the report.
type ReportMonth struct {
	Label string  `json:"label" yaml:"label"`
	Total float64 `json:"total" yaml:"total"`
}
