// Package expense validates form input and applies mutations to the store.
package expense

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/pbudget/internal/model"
)

// Upper bounds for a single amount and for the project duration. Inside
// them every sum and every project total stays a finite float64.
const (
	MaxAmount         = 1_000_000_000_000
	MaxDurationMonths = 1200
)

var maxAmount = decimal.NewFromInt(MaxAmount)

var (
	ErrEmptyName       = errors.New("expense name is required")
	ErrInvalidCategory = errors.New("unknown category")
	ErrInvalidAmount   = errors.New("amount must be a number greater than zero and at most 1,000,000,000,000")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
	ErrInvalidPayment  = errors.New("monthly payment must be a number greater than zero and at most 1,000,000,000,000")
	ErrInvalidDuration = errors.New("duration must be a whole number of months, from 1 to 1200")
	ErrNotFound        = model.ErrExpenseNotFound
	ErrAmbiguousID     = errors.New("id prefix matches more than one expense")
)

// Draft is raw form input for one expense.
type Draft struct {
	Name          string
	Category      string
	Amount        string
	Date          string
	AttachmentRef string
}

// FromExpense fills a draft with the current values of e, for editing.
func FromExpense(e model.Expense) Draft {
	return Draft{
		Name:          e.Name,
		Category:      string(e.Category),
		Amount:        strconv.FormatFloat(e.Amount, 'f', -1, 64),
		Date:          e.DateString(),
		AttachmentRef: e.AttachmentRef,
	}
}

// Fields are the validated values of a draft.
type Fields struct {
	Name          string
	Category      model.Category
	Amount        float64
	Date          time.Time
	AttachmentRef string
}

// Validate checks every field and returns all failures joined.
func (d Draft) Validate() (Fields, error) {
	var f Fields
	var errs []error

	f.Name = strings.TrimSpace(d.Name)
	if f.Name == "" {
		errs = append(errs, ErrEmptyName)
	}

	if c, ok := model.ParseCategory(d.Category); ok {
		f.Category = c
	} else {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidCategory, d.Category))
	}

	if v, err := ParseAmount(d.Amount); err != nil {
		errs = append(errs, err)
	} else {
		f.Amount = v
	}

	if t, err := ParseDate(d.Date); err != nil {
		errs = append(errs, err)
	} else {
		f.Date = t
	}

	f.AttachmentRef = strings.TrimSpace(d.AttachmentRef)

	return f, errors.Join(errs...)
}

// ParseAmount parses a positive monetary amount. Both "12.34" and "12,34"
// are accepted.
func ParseAmount(s string) (float64, error) {
	v, ok := parsePositive(s)
	if !ok {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// ParsePayment parses the monthly client payment with the amount rules.
func ParsePayment(s string) (float64, error) {
	v, ok := parsePositive(s)
	if !ok {
		return 0, ErrInvalidPayment
	}
	return v, nil
}

// ParseDate parses a civil date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	t, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, strings.TrimSpace(s))
	}
	return t, nil
}

// ParseDuration parses a project duration in whole months, from 1 to
// MaxDurationMonths.
func ParseDuration(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > MaxDurationMonths {
		return 0, ErrInvalidDuration
	}
	return n, nil
}

func parsePositive(s string) (float64, bool) {
	s = normalizeDecimal(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() || d.GreaterThan(maxAmount) {
		return 0, false
	}
	v := d.InexactFloat64()
	if v <= 0 || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// normalizeDecimal trims the input and maps a decimal comma to a dot.
// With both separators present, commas are taken as thousands separators.
func normalizeDecimal(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ".") {
		return strings.ReplaceAll(s, ",", "")
	}
	return strings.Replace(s, ",", ".", 1)
}

// Field checkers for interactive forms. Each reports the same error the
// corresponding Draft field would produce on Validate.

// CheckName rejects a blank name.
func CheckName(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyName
	}
	return nil
}

// CheckCategory rejects anything model.ParseCategory does not accept.
func CheckCategory(s string) error {
	if _, ok := model.ParseCategory(s); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return nil
}

// CheckAmount rejects amounts ParseAmount refuses.
func CheckAmount(s string) error {
	_, err := ParseAmount(s)
	return err
}

// CheckDate rejects dates ParseDate refuses.
func CheckDate(s string) error {
	_, err := ParseDate(s)
	return err
}

// CheckPayment rejects payments ParsePayment refuses.
func CheckPayment(s string) error {
	_, err := ParsePayment(s)
	return err
}

// CheckDuration rejects durations ParseDuration refuses.
func CheckDuration(s string) error {
	_, err := ParseDuration(s)
	return err
}
