// Package store persists expenses and budget settings in a local SQLite
// database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/theirongolddev/pbudget/internal/logging"
	"github.com/theirongolddev/pbudget/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Settings keys, kept compatible with the browser storage of the first
// version of the app.
const (
	KeyBudget          = "budget"
	KeyProjectDuration = "projectDuration"
)

var (
	// ErrNotFound is returned when no expense has the requested id.
	ErrNotFound = model.ErrExpenseNotFound
	// ErrDuplicateID is returned when inserting an id that already exists.
	ErrDuplicateID = errors.New("duplicate expense id")
)

// Store is the SQLite-backed expense store. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
	log  *slog.Logger
	now  func() time.Time
}

// Open opens or creates the database at the given path and applies
// pending migrations.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening budget db: %w", err)
	}

	return &Store{
		db:   db,
		path: dbPath,
		log:  logging.For(logging.ComponentStore),
		now:  time.Now,
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ListExpenses returns every expense in store order.
func (s *Store) ListExpenses(ctx context.Context) ([]model.Expense, error) {
	return s.listExpenses(ctx, s.db)
}

func (s *Store) listExpenses(ctx context.Context, q querier) ([]model.Expense, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, category, amount, date, attachment_ref
		FROM expenses ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []model.Expense
	for rows.Next() {
		e, err := s.scanExpense(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanExpense(sc scanner) (model.Expense, error) {
	var e model.Expense
	var category, date string
	if err := sc.Scan(&e.ID, &e.Name, &category, &e.Amount, &date, &e.AttachmentRef); err != nil {
		return e, err
	}
	e.Category = model.Category(category)
	if date != "" {
		d, err := model.ParseDate(date)
		if err != nil {
			s.log.Warn("unparseable expense date", logging.FieldExpenseID, e.ID, "date", date)
		} else {
			e.Date = d
		}
	}
	return e, nil
}

// GetExpense returns the expense with the given id.
func (s *Store) GetExpense(ctx context.Context, id string) (model.Expense, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, category, amount, date, attachment_ref
		FROM expenses WHERE id = ?`, id)
	e, err := s.scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Expense{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return model.Expense{}, fmt.Errorf("getting expense: %w", err)
	}
	return e, nil
}

// InsertExpense appends an expense at the end of store order.
func (s *Store) InsertExpense(ctx context.Context, e model.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM expenses WHERE id = ?", e.ID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}

	now := s.stamp()
	if err := insertExpense(ctx, tx, e, now); err != nil {
		return err
	}
	if err := bumpRevision(ctx, tx, now); err != nil {
		return err
	}
	return tx.Commit()
}

func insertExpense(ctx context.Context, tx *sql.Tx, e model.Expense, now string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO expenses
		(id, seq, name, category, amount, date, attachment_ref, created_at, updated_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM expenses), ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, string(e.Category), e.Amount, e.DateString(), e.AttachmentRef, now, now,
	)
	if err != nil {
		return fmt.Errorf("inserting expense: %w", err)
	}
	return nil
}

// ReplaceExpense overwrites every field of an existing expense. The record
// keeps its position in store order.
func (s *Store) ReplaceExpense(ctx context.Context, e model.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := s.stamp()
	res, err := tx.ExecContext(ctx, `UPDATE expenses
		SET name = ?, category = ?, amount = ?, date = ?, attachment_ref = ?, updated_at = ?
		WHERE id = ?`,
		e.Name, string(e.Category), e.Amount, e.DateString(), e.AttachmentRef, now, e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, e.ID)
	}
	if err := bumpRevision(ctx, tx, now); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteExpense removes the expense with the given id.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := bumpRevision(ctx, tx, s.stamp()); err != nil {
		return err
	}
	return tx.Commit()
}

// BudgetSettings returns the stored payment and duration. Missing or
// unparseable values fall back to the defaults.
func (s *Store) BudgetSettings(ctx context.Context) (model.BudgetSettings, error) {
	return s.budgetSettings(ctx, s.db)
}

func (s *Store) budgetSettings(ctx context.Context, q querier) (model.BudgetSettings, error) {
	settings := model.DefaultBudgetSettings()

	rows, err := q.QueryContext(ctx, "SELECT key, value FROM settings WHERE key IN (?, ?)",
		KeyBudget, KeyProjectDuration)
	if err != nil {
		return settings, fmt.Errorf("reading settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, err
		}
		switch key {
		case KeyBudget:
			v, err := strconv.ParseFloat(value, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				s.log.Warn("ignoring stored budget", "value", value)
				continue
			}
			settings.MonthlyPayment = v
		case KeyProjectDuration:
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				s.log.Warn("ignoring stored project duration", "value", value)
				continue
			}
			settings.DurationMonths = n
		}
	}
	return settings, rows.Err()
}

// SetMonthlyPayment stores the monthly client payment.
func (s *Store) SetMonthlyPayment(ctx context.Context, amount float64) error {
	return s.setSetting(ctx, KeyBudget, strconv.FormatFloat(amount, 'f', -1, 64))
}

// SetDurationMonths stores the project duration.
func (s *Store) SetDurationMonths(ctx context.Context, months int) error {
	return s.setSetting(ctx, KeyProjectDuration, strconv.Itoa(months))
}

func (s *Store) setSetting(ctx context.Context, key, value string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := s.stamp()
	if err := putSetting(ctx, tx, key, value, now); err != nil {
		return err
	}
	if err := bumpRevision(ctx, tx, now); err != nil {
		return err
	}
	return tx.Commit()
}

func putSetting(ctx context.Context, tx *sql.Tx, key, value, now string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	if err != nil {
		return fmt.Errorf("saving setting %s: %w", key, err)
	}
	return nil
}

// Snapshot reads expenses and settings in one transaction.
func (s *Store) Snapshot(ctx context.Context) (model.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Snapshot{}, err
	}
	defer func() { _ = tx.Rollback() }()

	expenses, err := s.listExpenses(ctx, tx)
	if err != nil {
		return model.Snapshot{}, err
	}
	budget, err := s.budgetSettings(ctx, tx)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{Expenses: expenses, Budget: budget}, nil
}

// ReplaceAll replaces the whole store content with the snapshot, keeping
// the snapshot's expense order.
func (s *Store) ReplaceAll(ctx context.Context, snap model.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses"); err != nil {
		return fmt.Errorf("clearing expenses: %w", err)
	}

	now := s.stamp()
	for _, e := range snap.Expenses {
		if err := insertExpense(ctx, tx, e, now); err != nil {
			return fmt.Errorf("restoring %s: %w", e.ID, err)
		}
	}

	if err := putSetting(ctx, tx, KeyBudget, strconv.FormatFloat(snap.Budget.MonthlyPayment, 'f', -1, 64), now); err != nil {
		return err
	}
	if err := putSetting(ctx, tx, KeyProjectDuration, strconv.Itoa(snap.Budget.DurationMonths), now); err != nil {
		return err
	}
	if err := bumpRevision(ctx, tx, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Info("store replaced", logging.FieldOperation, logging.OpRestore, "expenses", len(snap.Expenses))
	return nil
}

// Revision returns a counter incremented by every mutation.
func (s *Store) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := s.db.QueryRowContext(ctx, "SELECT revision FROM store_state WHERE id = 1").Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("reading revision: %w", err)
	}
	return rev, nil
}

// LastModified returns the time of the last mutation, or the zero time for
// a store that was never written.
func (s *Store) LastModified(ctx context.Context) (time.Time, error) {
	var stamp string
	err := s.db.QueryRowContext(ctx, "SELECT modified_at FROM store_state WHERE id = 1").Scan(&stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("reading modification time: %w", err)
	}
	if stamp == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, stamp)
}

func bumpRevision(ctx context.Context, tx *sql.Tx, now string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE store_state SET revision = revision + 1, modified_at = ? WHERE id = 1", now)
	if err != nil {
		return fmt.Errorf("bumping revision: %w", err)
	}
	return nil
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}
