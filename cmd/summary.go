package cmd

import (
	"fmt"

	"github.com/theirongolddev/pbudget/internal/cli"
	"github.com/theirongolddev/pbudget/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Budget summary: payment, expenses, profit/loss and usage",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	return withEnv(func(env *appEnv) error {
		snap, err := env.svc.Snapshot(cmd.Context())
		if err != nil {
			return err
		}
		sum := pipeline.Summarize(snap)
		cur := env.currency()
		totals, project := sum.Totals, sum.Project

		fmt.Println()
		fmt.Println(cli.RenderTitle(env.cfg.Report.Title))
		fmt.Println()

		payment := cli.RenderMuted("not set")
		usage := cli.RenderMuted("n/a")
		if totals.MonthlyPayment > 0 {
			payment = cli.FormatMoney(cur, totals.MonthlyPayment)
			usage = cli.RenderUsageBar(totals.UsagePercent, 24)
		}

		rows := [][]string{
			{"Monthly Payment", payment},
			{"Project Duration", cli.FormatMonths(project.DurationMonths)},
			{"Total Revenue", cli.FormatMoney(cur, project.TotalProjectRevenue)},
			cli.Separator,
			{"Expenses", cli.FormatNumber(int64(sum.ExpenseCount))},
			{"Monthly Expenses", cli.FormatMoney(cur, totals.TotalExpenses)},
			{"Monthly Profit/Loss", cli.RenderSigned(cur, totals.Variance)},
			{"Budget Usage", usage},
			cli.Separator,
			{"Total Project Expenses", cli.FormatMoney(cur, project.TotalProjectExpenses)},
			{"Total Project Profit", cli.RenderSigned(cur, project.TotalProfit)},
		}

		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Metric", "Value"},
			Rows:    rows,
		}))

		switch {
		case sum.ExpenseCount == 0:
			fmt.Println()
			fmt.Println("  No expenses yet. Add one with `pbudget add`.")
		case totals.MonthlyPayment == 0:
			fmt.Println()
			fmt.Println(cli.RenderWarning("  Set the monthly payment with `pbudget payment <amount>` to see usage."))
		case totals.Variance < 0:
			fmt.Println()
			fmt.Println(cli.RenderWarning(fmt.Sprintf("  Over budget by %s this month.", cli.FormatMoney(cur, -totals.Variance))))
		}
		return nil
	})
}
