package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/pbudget/internal/cli"
	"github.com/theirongolddev/pbudget/internal/expense"
	"github.com/theirongolddev/pbudget/internal/model"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var errCancelled = errors.New("cancelled")

var (
	flagExpName       string
	flagExpCategory   string
	flagExpAmount     string
	flagExpDate       string
	flagExpAttachment string
	flagExpNoPrompt   bool
	flagExpForm       bool
	flagDeleteYes     bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an expense (prompts for missing fields)",
	Example: `  pbudget add --name "Camera rental" --category "Equipment Rental" --amount 450
  pbudget add`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an expense; unset flags keep the current values",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete an expense",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().StringVar(&flagExpName, "name", "", "Expense name")
		c.Flags().StringVar(&flagExpCategory, "category", "", "Category (case-insensitive, unique prefix allowed)")
		c.Flags().StringVar(&flagExpAmount, "amount", "", "Amount, greater than zero")
		c.Flags().StringVar(&flagExpDate, "date", "", "Date as YYYY-MM-DD")
		c.Flags().StringVar(&flagExpAttachment, "attachment", "", "Receipt or invoice reference")
	}
	addCmd.Flags().BoolVar(&flagExpNoPrompt, "no-prompt", false, "Fail instead of prompting for missing fields")
	editCmd.Flags().BoolVarP(&flagExpForm, "interactive", "i", false, "Edit in a form")
	deleteCmd.Flags().BoolVarP(&flagDeleteYes, "yes", "y", false, "Skip confirmation")

	rootCmd.AddCommand(addCmd, editCmd, deleteCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
	d := expense.Draft{
		Name:          flagExpName,
		Category:      flagExpCategory,
		Amount:        flagExpAmount,
		Date:          flagExpDate,
		AttachmentRef: flagExpAttachment,
	}
	if d.Date == "" {
		d.Date = expense.Today(time.Now())
	}

	if _, err := d.Validate(); err != nil {
		if flagExpNoPrompt {
			return err
		}
		if err := promptDraft("New expense", &d); err != nil {
			return err
		}
	}

	return withEnv(func(env *appEnv) error {
		e, err := env.svc.Add(cmd.Context(), d)
		if err != nil {
			return err
		}
		fmt.Printf("  Added %s  %s  %s\n", expense.ShortID(e.ID), e.Name, cli.FormatMoney(env.currency(), e.Amount))
		return nil
	})
}

func runEdit(cmd *cobra.Command, args []string) error {
	return withEnv(func(env *appEnv) error {
		ctx := cmd.Context()
		cur, err := env.svc.Resolve(ctx, args[0])
		if err != nil {
			return err
		}

		d := expense.FromExpense(cur)
		flags := cmd.Flags()
		edited := false
		for _, name := range []string{"name", "category", "amount", "date", "attachment"} {
			edited = edited || flags.Changed(name)
		}
		if flags.Changed("name") {
			d.Name = flagExpName
		}
		if flags.Changed("category") {
			d.Category = flagExpCategory
		}
		if flags.Changed("amount") {
			d.Amount = flagExpAmount
		}
		if flags.Changed("date") {
			d.Date = flagExpDate
		}
		if flags.Changed("attachment") {
			d.AttachmentRef = flagExpAttachment
		}

		if flagExpForm || !edited {
			if err := promptDraft("Edit expense", &d); err != nil {
				return err
			}
		}

		e, err := env.svc.Update(ctx, cur.ID, d)
		if err != nil {
			return err
		}
		fmt.Printf("  Updated %s  %s  %s\n", expense.ShortID(e.ID), e.Name, cli.FormatMoney(env.currency(), e.Amount))
		return nil
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withEnv(func(env *appEnv) error {
		ctx := cmd.Context()
		e, err := env.svc.Resolve(ctx, args[0])
		if err != nil {
			return err
		}

		if !flagDeleteYes {
			ok, err := confirm(fmt.Sprintf("Delete %q (%s, %s)?", e.Name, e.DateString(), cli.FormatMoney(env.currency(), e.Amount)))
			if err != nil {
				return err
			}
			if !ok {
				return errCancelled
			}
		}

		if err := env.svc.Delete(ctx, e.ID); err != nil {
			return err
		}
		fmt.Printf("  Deleted %s  %s\n", expense.ShortID(e.ID), e.Name)
		return nil
	})
}

// promptDraft opens a form prefilled with d. Field validation is the same
// the service applies, so a completed form always saves.
func promptDraft(title string, d *expense.Draft) error {
	if c, ok := model.ParseCategory(d.Category); ok {
		d.Category = string(c)
	} else {
		d.Category = string(model.Categories[0])
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&d.Name).
				Validate(expense.CheckName),
			huh.NewSelect[string]().
				Title("Category").
				Options(huh.NewOptions(model.CategoryNames()...)...).
				Height(8).
				Value(&d.Category),
			huh.NewInput().
				Title("Amount").
				Placeholder("1250.00").
				Value(&d.Amount).
				Validate(expense.CheckAmount),
			huh.NewInput().
				Title("Date").
				Placeholder(model.DateLayout).
				Value(&d.Date).
				Validate(expense.CheckDate),
			huh.NewInput().
				Title("Attachment").
				Description("Optional receipt or invoice reference").
				Value(&d.AttachmentRef),
		).Title(title),
	)
	return runForm(form)
}

func confirm(question string) (bool, error) {
	var ok bool
	err := runForm(huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(question).Affirmative("Yes").Negative("No").Value(&ok),
	)))
	return ok, err
}

func runForm(form *huh.Form) error {
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errCancelled
		}
		return fmt.Errorf("form: %w", err)
	}
	return nil
}

// shortCategory trims long category labels for narrow tables.
func shortCategory(c model.Category) string {
	return cli.Truncate(strings.TrimSpace(string(c)), 22)
}
