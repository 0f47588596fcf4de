package expense

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/pbudget/internal/logging"
	"github.com/theirongolddev/pbudget/internal/model"
	"github.com/theirongolddev/pbudget/internal/pipeline"
	"github.com/theirongolddev/pbudget/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "budget.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	n := 0
	return NewService(st,
		WithLogger(logging.Discard()),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%04d", n)
		}),
	)
}

func draft(name, amount, date string) Draft {
	return Draft{Name: name, Category: string(model.CategoryVideoProduction), Amount: amount, Date: date}
}

func TestService_AddRejectsInvalid(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, draft("", "10", "2025-01-01"))
	assert.ErrorIs(t, err, ErrEmptyName)

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Expenses)
}

func TestService_UpdateReplacesInPlace(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	x, err := svc.Add(ctx, draft("Shoot day", "100", "2025-01-15"))
	require.NoError(t, err)
	_, err = svc.Add(ctx, draft("Edit", "50", "2025-02-03"))
	require.NoError(t, err)

	d := FromExpense(x)
	d.Amount = "300"
	updated, err := svc.Update(ctx, x.ID, d)
	require.NoError(t, err)
	assert.Equal(t, x.ID, updated.ID)

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Expenses, 2)
	assert.Equal(t, x.ID, snap.Expenses[0].ID)
	assert.Equal(t, 300.0, snap.Expenses[0].Amount)

	totals := pipeline.ComputeTotals(snap.Expenses, snap.Budget)
	assert.InDelta(t, 350.0, totals.TotalExpenses, 1e-9)
}

func TestService_UpdateValidatesLikeAdd(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	x, err := svc.Add(ctx, draft("Shoot day", "100", "2025-01-15"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, x.ID, draft("Shoot day", "-3", "2025-01-15"))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	got, err := svc.Resolve(ctx, x.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Amount)
}

func TestService_UpdateMissing(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Update(context.Background(), "ghost", draft("A", "1", "2025-01-01"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	x, err := svc.Add(ctx, draft("A", "1", "2025-01-01"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, x.ID))
	assert.ErrorIs(t, svc.Delete(ctx, x.ID), ErrNotFound)
}

func TestService_Settings(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	v, err := svc.SetMonthlyPayment(ctx, "200")
	require.NoError(t, err)
	assert.Equal(t, 200.0, v)

	_, err = svc.SetMonthlyPayment(ctx, "0")
	assert.ErrorIs(t, err, ErrInvalidPayment)

	n, err := svc.SetDuration(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = svc.SetDuration(ctx, "0")
	assert.ErrorIs(t, err, ErrInvalidDuration)

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.BudgetSettings{MonthlyPayment: 200, DurationMonths: 3}, snap.Budget)
}

func TestService_Resolve(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := svc.Add(ctx, draft(fmt.Sprintf("E%d", i), "1", "2025-01-01"))
		require.NoError(t, err)
	}

	got, err := svc.Resolve(ctx, "id-0012")
	require.NoError(t, err)
	assert.Equal(t, "E11", got.Name)

	got, err = svc.Resolve(ctx, "id-0009")
	require.NoError(t, err)
	assert.Equal(t, "E8", got.Name)

	_, err = svc.Resolve(ctx, "id-001")
	assert.ErrorIs(t, err, ErrAmbiguousID)

	_, err = svc.Resolve(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Restore(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	d, _ := model.ParseDate("2025-03-03")
	snap := model.Snapshot{
		Expenses: []model.Expense{{ID: "r1", Name: "Restored", Category: model.CategoryOther, Amount: 9, Date: d}},
		Budget:   model.BudgetSettings{MonthlyPayment: 10, DurationMonths: 2},
	}
	require.NoError(t, svc.Restore(ctx, snap))

	got, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	assert.ErrorIs(t, svc.Restore(ctx, model.Snapshot{}), ErrInvalidDuration)

	huge := snap
	huge.Expenses = []model.Expense{{ID: "h1", Name: "Huge", Category: model.CategoryOther, Amount: math.Inf(1), Date: d}}
	assert.ErrorIs(t, svc.Restore(ctx, huge), ErrInvalidAmount)

	got, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, got, "rejected restore must leave the store untouched")
}
