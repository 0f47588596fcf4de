// Package model defines domain types for pbudget expenses and summaries.
package model

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the storage and wire format of expense dates.
const DateLayout = "2006-01-02"

// Expense is one recorded project expense.
type Expense struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      Category  `json:"category"`
	Amount        float64   `json:"amount"`
	Date          time.Time `json:"date"`
	AttachmentRef string    `json:"attachment_ref,omitempty"`
}

// HasAttachment reports whether the expense references an attachment.
func (e Expense) HasAttachment() bool {
	return strings.TrimSpace(e.AttachmentRef) != ""
}

// DateString returns the expense date in DateLayout.
func (e Expense) DateString() string {
	if e.Date.IsZero() {
		return ""
	}
	return e.Date.Format(DateLayout)
}

// BudgetSettings holds the recurring client payment and project length.
type BudgetSettings struct {
	MonthlyPayment float64 `json:"monthly_payment"`
	DurationMonths int     `json:"duration_months"`
}

// DefaultBudgetSettings returns the settings of an empty store.
func DefaultBudgetSettings() BudgetSettings {
	return BudgetSettings{
		MonthlyPayment: 0,
		DurationMonths: 1,
	}
}

// Snapshot is the store state handed to the aggregation functions.
// Expenses are in store order.
type Snapshot struct {
	Expenses []Expense
	Budget   BudgetSettings
}

// ParseDate parses a civil date in DateLayout as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// ErrExpenseNotFound is shared by the store and the expense service so
// callers can match it with errors.Is regardless of the layer.
var ErrExpenseNotFound = errors.New("expense not found")
