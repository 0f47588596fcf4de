package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/pbudget/internal/cli"
	"github.com/theirongolddev/pbudget/internal/expense"
	"github.com/theirongolddev/pbudget/internal/model"
	"github.com/theirongolddev/pbudget/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

var errCurrencyEmpty = errors.New("currency must not be empty")

// formKind identifies what the active modal form submits.
type formKind int

const (
	formNone formKind = iota
	formAdd
	formEdit
	formDelete
	formSetup
)

// formValues holds the fields bound to the active huh form. It is kept
// behind a pointer so the bindings survive App being copied in Update.
type formValues struct {
	targetID string

	name       string
	category   string
	amount     string
	date       string
	attachment string

	confirm bool

	currency string
	theme    string
	payment  string
	duration string
}

func (v *formValues) draft() expense.Draft {
	return expense.Draft{
		Name:          v.name,
		Category:      v.category,
		Amount:        v.amount,
		Date:          v.date,
		AttachmentRef: v.attachment,
	}
}

// formTheme picks the huh theme closest to the active dashboard theme.
func formTheme() *huh.Theme {
	switch theme.Active.Name {
	case theme.CatppuccinMocha.Name:
		return huh.ThemeCatppuccin()
	case theme.Terminal.Name:
		return huh.ThemeBase16()
	default:
		return huh.ThemeCharm()
	}
}

func categoryOptions() []huh.Option[string] {
	return huh.NewOptions(model.CategoryNames()...)
}

// newExpenseForm builds the add/edit form. Validation uses the same
// checkers as the expense service, so a submitted form always validates.
func newExpenseForm(title string, vals *formValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Color grading, day 2").
				Value(&vals.name).
				Validate(expense.CheckName),
			huh.NewSelect[string]().
				Title("Category").
				Options(categoryOptions()...).
				Height(8).
				Value(&vals.category),
			huh.NewInput().
				Title("Amount").
				Placeholder("1250.00").
				Value(&vals.amount).
				Validate(expense.CheckAmount),
			huh.NewInput().
				Title("Date").
				Placeholder(model.DateLayout).
				Value(&vals.date).
				Validate(expense.CheckDate),
			huh.NewInput().
				Title("Attachment").
				Description("Optional receipt or invoice reference").
				Value(&vals.attachment),
		).Title(title),
	).WithTheme(formTheme()).WithShowHelp(true)
}

func newDeleteForm(e model.Expense, currency string, vals *formValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", e.Name)).
				Description(fmt.Sprintf("%s · %s · %s",
					e.DateString(), e.Category, cli.FormatMoney(currency, e.Amount))).
				Affirmative("Delete").
				Negative("Keep").
				Value(&vals.confirm),
		),
	).WithTheme(formTheme())
}

// newSetupForm builds the first-run wizard. Payment may be left blank.
func newSetupForm(dbPath string, vals *formValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to pbudget").
				Description("Expenses are stored in "+dbPath+".\nThese settings can be changed later in the Settings tab."),
			huh.NewInput().
				Title("Currency symbol").
				Value(&vals.currency).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errCurrencyEmpty
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.theme),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Monthly client payment").
				Description("Leave blank to set it later").
				Value(&vals.payment).
				Validate(optional(expense.CheckPayment)),
			huh.NewInput().
				Title("Project duration (months)").
				Value(&vals.duration).
				Validate(expense.CheckDuration),
		),
	).WithTheme(formTheme()).WithShowHelp(true)
}

func optional(check func(string) error) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return check(s)
	}
}

func setupValuesFrom(currency, themeName string, budget model.BudgetSettings) *formValues {
	v := &formValues{
		currency: currency,
		theme:    themeName,
		duration: strconv.Itoa(budget.DurationMonths),
	}
	if budget.MonthlyPayment > 0 {
		v.payment = strconv.FormatFloat(budget.MonthlyPayment, 'f', -1, 64)
	}
	return v
}
