package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/pbudget/internal/cli"
	"github.com/theirongolddev/pbudget/internal/expense"
	"github.com/theirongolddev/pbudget/internal/model"
	"github.com/theirongolddev/pbudget/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagListCategory string
	flagListSearch   string
	flagListMonth    string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List expenses in entry order",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringVar(&flagListCategory, "category", "", "Only this category")
	listCmd.Flags().StringVarP(&flagListSearch, "search", "s", "", "Name contains (case-insensitive)")
	listCmd.Flags().StringVar(&flagListMonth, "month", "", "Only this month, YYYY-MM")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	var month time.Time
	if flagListMonth != "" {
		m, err := time.Parse("2006-01", flagListMonth)
		if err != nil {
			return fmt.Errorf("--month must be YYYY-MM: %w", err)
		}
		month = m
	}

	var category model.Category
	if flagListCategory != "" {
		c, ok := model.ParseCategory(flagListCategory)
		if !ok {
			return fmt.Errorf("%w: %s", expense.ErrInvalidCategory, flagListCategory)
		}
		category = c
	}

	return withEnv(func(env *appEnv) error {
		snap, err := env.svc.Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		expenses := snap.Expenses
		if category != "" {
			expenses = pipeline.FilterByCategory(expenses, category)
		}
		if flagListSearch != "" {
			expenses = pipeline.FilterByName(expenses, flagListSearch)
		}
		expenses = pipeline.FilterByMonth(expenses, month)

		if len(expenses) == 0 {
			fmt.Println("\n  No expenses found.")
			return nil
		}

		cur := env.currency()
		rows := make([][]string, 0, len(expenses)+2)
		var total float64
		for _, e := range expenses {
			total += e.Amount
			attach := ""
			if e.HasAttachment() {
				attach = "yes"
			}
			rows = append(rows, []string{
				expense.ShortID(e.ID),
				e.DateString(),
				cli.Truncate(e.Name, 32),
				shortCategory(e.Category),
				cli.FormatMoney(cur, e.Amount),
				attach,
			})
		}
		rows = append(rows, cli.Separator)
		rows = append(rows, []string{"", "", fmt.Sprintf("%d expenses", len(expenses)), "", cli.FormatMoney(cur, total), ""})

		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:     "EXPENSES",
			Headers:   []string{"ID", "Date", "Name", "Category", "Amount", "Attachment"},
			Rows:      rows,
			LeftAlign: map[int]bool{1: true, 2: true, 3: true, 5: true},
		}))
		return nil
	})
}
