package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/theirongolddev/pbudget/internal/cli"
	"github.com/theirongolddev/pbudget/internal/logging"
	"github.com/theirongolddev/pbudget/internal/source"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	flagBackupOut  string
	flagRestoreYes bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write every expense and setting to a JSON backup",
	Args:  cobra.NoArgs,
	RunE:  runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Replace all data with the content of a JSON backup",
	Long: "Replace all data with the content of a JSON backup. Backups exported\n" +
		"by the browser version of the budget tool are accepted too.",
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Append expenses from a CSV file",
	Long: "Append expenses from a CSV file with a header row naming the columns\n" +
		"date, name, category, amount and optionally attachment, in any order.\n" +
		"Invalid lines are reported and skipped.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	backupCmd.Flags().StringVarP(&flagBackupOut, "out", "o", "", "Output file, - for stdout (default pbudget-backup-<date>.json)")
	restoreCmd.Flags().BoolVarP(&flagRestoreYes, "yes", "y", false, "Skip confirmation")
	rootCmd.AddCommand(backupCmd, restoreCmd, importCmd)
}

func runBackup(cmd *cobra.Command, _ []string) error {
	return withEnv(func(env *appEnv) error {
		snap, err := env.svc.Snapshot(cmd.Context())
		if err != nil {
			return err
		}
		now := time.Now()

		if flagBackupOut == "-" {
			return source.WriteBackup(os.Stdout, snap, now)
		}

		out := flagBackupOut
		if out == "" {
			out = fmt.Sprintf("pbudget-backup-%s.json", now.Format("2006-01-02"))
		}
		n, err := writeFile(out, func(w io.Writer) error {
			return source.WriteBackup(w, snap, now)
		})
		if err != nil {
			return err
		}
		fmt.Printf("  Backed up %d expenses to %s (%s)\n", len(snap.Expenses), out, humanize.Bytes(uint64(n)))
		return nil
	})
}

func runRestore(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	res, err := source.ReadBackup(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	printSkipped(res.Skipped)

	return withEnv(func(env *appEnv) error {
		ctx := cmd.Context()
		if !flagRestoreYes {
			current, err := env.svc.Snapshot(ctx)
			if err != nil {
				return err
			}
			ok, err := confirm(fmt.Sprintf("Replace %d stored expenses with %d from the backup?",
				len(current.Expenses), len(res.Snapshot.Expenses)))
			if err != nil {
				return err
			}
			if !ok {
				return errCancelled
			}
		}

		if err := env.svc.Restore(ctx, res.Snapshot); err != nil {
			return err
		}
		logging.For(logging.ComponentApp).Info("restored backup",
			logging.FieldOperation, logging.OpRestore,
			logging.FieldPath, args[0],
			"expenses", len(res.Snapshot.Expenses))

		budget := res.Snapshot.Budget
		fmt.Printf("  Restored %d expenses, payment %s, duration %s\n",
			len(res.Snapshot.Expenses),
			cli.FormatMoney(env.currency(), budget.MonthlyPayment),
			cli.FormatMonths(budget.DurationMonths))
		return nil
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	res, err := source.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	printSkipped(res.Skipped)

	return withEnv(func(env *appEnv) error {
		ctx := cmd.Context()
		var total float64
		for i, d := range res.Drafts {
			e, err := env.svc.Add(ctx, d)
			if err != nil {
				return fmt.Errorf("importing record %d of %d: %w", i+1, len(res.Drafts), err)
			}
			total += e.Amount
		}
		logging.For(logging.ComponentApp).Info("imported csv",
			logging.FieldOperation, logging.OpImport,
			logging.FieldPath, args[0],
			"expenses", len(res.Drafts))

		fmt.Printf("  Imported %d expenses totaling %s\n", len(res.Drafts), cli.FormatMoney(env.currency(), total))
		return nil
	})
}

func printSkipped(skipped []source.SkippedRecord) {
	if len(skipped) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "  Skipped %d invalid records:\n", len(skipped))
	for _, s := range skipped {
		fmt.Fprintf(os.Stderr, "    %s\n", cli.RenderWarning(s.Error()))
	}
}
