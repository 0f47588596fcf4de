package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/pbudget/internal/config"
	"github.com/theirongolddev/pbudget/internal/expense"
	"github.com/theirongolddev/pbudget/internal/report"
	"github.com/theirongolddev/pbudget/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

type setupAnswers struct {
	currency string
	theme    string
	format   string
	dbPath   string
	payment  string
	duration string
}

func runSetup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	env, err := openEnv()
	if err != nil {
		return err
	}
	budget, err := env.store.BudgetSettings(cmd.Context())
	env.Close()
	if err != nil {
		return err
	}

	ans := setupAnswers{
		currency: cfg.General.Currency,
		theme:    cfg.Appearance.Theme,
		format:   cfg.Report.DefaultFormat,
		dbPath:   cfg.General.DBPath,
		duration: strconv.Itoa(budget.DurationMonths),
	}
	if budget.MonthlyPayment > 0 {
		ans.payment = strconv.FormatFloat(budget.MonthlyPayment, 'f', -1, 64)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to pbudget").
				Description("Track project expenses against the monthly client payment.\n"+
					"Settings are saved to "+config.ConfigPath()),
			huh.NewInput().
				Title("Currency symbol").
				Value(&ans.currency).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("currency must not be empty")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&ans.theme),
			huh.NewSelect[string]().
				Title("Default report format").
				Options(huh.NewOptions(report.Formats...)...).
				Value(&ans.format),
			huh.NewInput().
				Title("Database path").
				Placeholder(config.DefaultDBPath()).
				Value(&ans.dbPath),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Monthly client payment").
				Description("Leave empty to set it later").
				Value(&ans.payment).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					return expense.CheckPayment(s)
				}),
			huh.NewInput().
				Title("Project duration (months)").
				Value(&ans.duration).
				Validate(expense.CheckDuration),
		).Title("Budget"),
	)
	if err := runForm(form); err != nil {
		return err
	}

	cfg.General.Currency = strings.TrimSpace(ans.currency)
	cfg.General.DBPath = strings.TrimSpace(ans.dbPath)
	cfg.Appearance.Theme = ans.theme
	cfg.Report.DefaultFormat = ans.format
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	// The database path may have changed, so reopen through the new config.
	err = withEnv(func(env *appEnv) error {
		ctx := cmd.Context()
		if strings.TrimSpace(ans.payment) != "" {
			if _, err := env.svc.SetMonthlyPayment(ctx, ans.payment); err != nil {
				return err
			}
		}
		_, err := env.svc.SetDuration(ctx, ans.duration)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `pbudget setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
