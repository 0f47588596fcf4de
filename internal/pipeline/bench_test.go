package pipeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/theirongolddev/pbudget/internal/model"
)

func benchSnapshot(n int) model.Snapshot {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	expenses := make([]model.Expense, n)
	for i := range expenses {
		expenses[i] = model.Expense{
			ID:       fmt.Sprintf("e%d", i),
			Name:     fmt.Sprintf("expense %d", i),
			Category: model.Categories[i%len(model.Categories)],
			Amount:   float64(i%500) + 0.99,
			Date:     start.AddDate(0, 0, i%730),
		}
	}
	return model.Snapshot{
		Expenses: expenses,
		Budget:   model.BudgetSettings{MonthlyPayment: 50000, DurationMonths: 12},
	}
}

func BenchmarkSummarize(b *testing.B) {
	snap := benchSnapshot(10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Summarize(snap)
	}
}

func BenchmarkBuildReport(b *testing.B) {
	snap := benchSnapshot(10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = BuildReport(snap.Expenses, snap.Budget, snap.Budget.DurationMonths)
	}
}

func BenchmarkGroupByMonth(b *testing.B) {
	snap := benchSnapshot(10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GroupByMonth(snap.Expenses)
	}
}
