package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/pbudget/internal/logging"
	"github.com/theirongolddev/pbudget/internal/model"
)

// Repository is the persistence the service needs. *store.Store implements it.
type Repository interface {
	ListExpenses(ctx context.Context) ([]model.Expense, error)
	GetExpense(ctx context.Context, id string) (model.Expense, error)
	InsertExpense(ctx context.Context, e model.Expense) error
	ReplaceExpense(ctx context.Context, e model.Expense) error
	DeleteExpense(ctx context.Context, id string) error
	SetMonthlyPayment(ctx context.Context, amount float64) error
	SetDurationMonths(ctx context.Context, months int) error
	Snapshot(ctx context.Context) (model.Snapshot, error)
	ReplaceAll(ctx context.Context, snap model.Snapshot) error
}

// Service applies validated mutations to a Repository.
type Service struct {
	repo  Repository
	log   *slog.Logger
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithLogger replaces the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService returns a service backed by repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		log:   logging.For(logging.ComponentExpense),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add validates the draft and stores it as a new expense.
func (s *Service) Add(ctx context.Context, d Draft) (model.Expense, error) {
	f, err := d.Validate()
	if err != nil {
		return model.Expense{}, err
	}

	e := newExpense(s.newID(), f)
	if err := s.repo.InsertExpense(ctx, e); err != nil {
		return model.Expense{}, fmt.Errorf("adding expense: %w", err)
	}

	s.log.Info("expense added",
		logging.FieldOperation, logging.OpCreate,
		logging.FieldExpenseID, e.ID,
		"category", string(e.Category),
		"amount", e.Amount)
	return e, nil
}

// Update validates the draft and replaces every field of the expense with
// the given id. The id and store position are kept.
func (s *Service) Update(ctx context.Context, id string, d Draft) (model.Expense, error) {
	f, err := d.Validate()
	if err != nil {
		return model.Expense{}, err
	}

	e := newExpense(id, f)
	if err := s.repo.ReplaceExpense(ctx, e); err != nil {
		return model.Expense{}, fmt.Errorf("updating expense: %w", err)
	}

	s.log.Info("expense updated",
		logging.FieldOperation, logging.OpUpdate,
		logging.FieldExpenseID, e.ID,
		"amount", e.Amount)
	return e, nil
}

// Delete removes the expense with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}
	s.log.Info("expense deleted", logging.FieldOperation, logging.OpDelete, logging.FieldExpenseID, id)
	return nil
}

// SetMonthlyPayment parses and stores the monthly client payment.
func (s *Service) SetMonthlyPayment(ctx context.Context, input string) (float64, error) {
	v, err := ParsePayment(input)
	if err != nil {
		return 0, err
	}
	if err := s.repo.SetMonthlyPayment(ctx, v); err != nil {
		return 0, fmt.Errorf("saving payment: %w", err)
	}
	s.log.Info("monthly payment set", logging.FieldOperation, logging.OpSetting, "amount", v)
	return v, nil
}

// SetDuration parses and stores the project duration in months.
func (s *Service) SetDuration(ctx context.Context, input string) (int, error) {
	n, err := ParseDuration(input)
	if err != nil {
		return 0, err
	}
	if err := s.repo.SetDurationMonths(ctx, n); err != nil {
		return 0, fmt.Errorf("saving duration: %w", err)
	}
	s.log.Info("project duration set", logging.FieldOperation, logging.OpSetting, "months", n)
	return n, nil
}

// Snapshot returns the current store state.
func (s *Service) Snapshot(ctx context.Context) (model.Snapshot, error) {
	return s.repo.Snapshot(ctx)
}

// Restore replaces the store content with snap.
func (s *Service) Restore(ctx context.Context, snap model.Snapshot) error {
	if snap.Budget.DurationMonths < 1 || snap.Budget.DurationMonths > MaxDurationMonths {
		return ErrInvalidDuration
	}
	if p := snap.Budget.MonthlyPayment; p < 0 || p > MaxAmount || math.IsNaN(p) {
		return ErrInvalidPayment
	}
	for _, e := range snap.Expenses {
		if !(e.Amount > 0 && e.Amount <= MaxAmount) {
			return fmt.Errorf("%w: expense %s", ErrInvalidAmount, e.ID)
		}
	}
	if err := s.repo.ReplaceAll(ctx, snap); err != nil {
		return fmt.Errorf("restoring: %w", err)
	}
	return nil
}

// Resolve finds the expense whose id equals or starts with prefix.
func (s *Service) Resolve(ctx context.Context, prefix string) (model.Expense, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return model.Expense{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	e, err := s.repo.GetExpense(ctx, prefix)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return model.Expense{}, err
	}

	expenses, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return model.Expense{}, err
	}

	var matches []model.Expense
	for _, e := range expenses {
		if strings.HasPrefix(e.ID, prefix) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return model.Expense{}, fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		return model.Expense{}, fmt.Errorf("%w: %s (%d matches)", ErrAmbiguousID, prefix, len(matches))
	}
}

// ShortID returns the display form of an id.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func newExpense(id string, f Fields) model.Expense {
	return model.Expense{
		ID:            id,
		Name:          f.Name,
		Category:      f.Category,
		Amount:        f.Amount,
		Date:          f.Date,
		AttachmentRef: f.AttachmentRef,
	}
}

// Today returns the current local date in YYYY-MM-DD form, the default for
// new expense forms.
func Today(now time.Time) string {
	return now.Format(model.DateLayout)
}
