package cmd

import (
	"fmt"

	"github.com/theirongolddev/pbudget/internal/cli"
	"github.com/theirongolddev/pbudget/internal/model"
	"github.com/theirongolddev/pbudget/internal/pipeline"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Expenses by category",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Expenses by calendar month",
	Args:  cobra.NoArgs,
	RunE:  runMonthly,
}

func init() {
	rootCmd.AddCommand(categoriesCmd, monthlyCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	return withEnv(func(env *appEnv) error {
		snap, err := env.svc.Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		cats := pipeline.GroupByCategory(snap.Expenses, model.Categories)
		if len(cats) == 0 {
			fmt.Println("\n  No expenses recorded.")
			return nil
		}

		top := 0.0
		for _, c := range cats {
			top = max(top, c.Total)
		}

		cur := env.currency()
		rows := make([][]string, 0, len(cats))
		for _, c := range cats {
			color := cli.CategoryColor(model.CategoryIndex(c.Category))
			rows = append(rows, []string{
				string(c.Category),
				cli.FormatMoney(cur, c.Total),
				cli.FormatShare(c.Share),
				cli.RenderHorizontalBar(c.Total, top, 24, color),
			})
		}

		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:     "BY CATEGORY",
			Headers:   []string{"Category", "Amount", "Share", ""},
			Rows:      rows,
			LeftAlign: map[int]bool{3: true},
		}))
		return nil
	})
}

func runMonthly(cmd *cobra.Command, _ []string) error {
	return withEnv(func(env *appEnv) error {
		snap, err := env.svc.Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		months := pipeline.GroupByMonth(snap.Expenses)
		if len(months) == 0 {
			fmt.Println("\n  No dated expenses.")
			return nil
		}

		cur := env.currency()
		values := make([]float64, len(months))
		rows := make([][]string, 0, len(months)+2)
		var total float64
		var count int
		for i, m := range months {
			values[i] = m.Total
			total += m.Total
			count += m.Count
			rows = append(rows, []string{
				m.Label,
				cli.FormatNumber(int64(m.Count)),
				cli.FormatMoney(cur, m.Total),
			})
		}
		rows = append(rows, cli.Separator)
		rows = append(rows, []string{"Total", cli.FormatNumber(int64(count)), cli.FormatMoney(cur, total)})

		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "BY MONTH",
			Headers: []string{"Month", "Items", "Total"},
			Rows:    rows,
		}))
		if len(values) > 1 {
			fmt.Printf("\n  Trend  %s\n", cli.RenderSparkline(values))
		}
		return nil
	})
}
