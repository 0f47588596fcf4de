package cmd

import (
	"fmt"

	"github.com/theirongolddev/pbudget/internal/cli"

	"github.com/spf13/cobra"
)

var paymentCmd = &cobra.Command{
	Use:   "payment [amount]",
	Short: "Show or set the monthly client payment",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPayment,
}

var durationCmd = &cobra.Command{
	Use:   "duration [months]",
	Short: "Show or set the project duration in months",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDuration,
}

func init() {
	rootCmd.AddCommand(paymentCmd, durationCmd)
}

func runPayment(cmd *cobra.Command, args []string) error {
	return withEnv(func(env *appEnv) error {
		ctx := cmd.Context()
		if len(args) == 0 {
			budget, err := env.store.BudgetSettings(ctx)
			if err != nil {
				return err
			}
			if budget.MonthlyPayment <= 0 {
				fmt.Println("  Monthly payment: not set")
				return nil
			}
			fmt.Printf("  Monthly payment: %s\n", cli.FormatMoney(env.currency(), budget.MonthlyPayment))
			return nil
		}

		v, err := env.svc.SetMonthlyPayment(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("  Monthly payment set to %s\n", cli.FormatMoney(env.currency(), v))
		return nil
	})
}

func runDuration(cmd *cobra.Command, args []string) error {
	return withEnv(func(env *appEnv) error {
		ctx := cmd.Context()
		if len(args) == 0 {
			budget, err := env.store.BudgetSettings(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("  Project duration: %s\n", cli.FormatMonths(budget.DurationMonths))
			return nil
		}

		n, err := env.svc.SetDuration(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("  Project duration set to %s\n", cli.FormatMonths(n))
		return nil
	})
}
