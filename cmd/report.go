package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/pbudget/internal/pipeline"
	"github.com/theirongolddev/pbudget/internal/report"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	flagReportFormat string
	flagReportOut    string
	flagReportTitle  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the budget report",
	Long: "Render the budget report as " + strings.Join(report.Formats, ", ") + ".\n" +
		"Without --format the format follows the --out extension, then the config default.",
	Example: `  pbudget report
  pbudget report --out summary.html
  pbudget report --format xlsx --out budget.xlsx`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&flagReportFormat, "format", "f", "", "Output format: "+strings.Join(report.Formats, ", "))
	reportCmd.Flags().StringVarP(&flagReportOut, "out", "o", "", "Output file (default stdout)")
	reportCmd.Flags().StringVar(&flagReportTitle, "title", "", "Report title (default from config)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	return withEnv(func(env *appEnv) error {
		format := reportFormat(flagReportFormat, flagReportOut, env.cfg.Report.DefaultFormat)
		if format == "xlsx" && flagReportOut == "" {
			return errors.New("xlsx output needs --out")
		}

		snap, err := env.svc.Snapshot(cmd.Context())
		if err != nil {
			return err
		}
		rep := pipeline.BuildReport(snap.Expenses, snap.Budget, snap.Budget.DurationMonths)

		title := flagReportTitle
		if title == "" {
			title = env.cfg.Report.Title
		}
		opts := report.Options{
			Title:       title,
			Currency:    env.currency(),
			GeneratedAt: time.Now(),
		}

		if flagReportOut == "" || flagReportOut == "-" {
			return report.Render(os.Stdout, format, rep, opts)
		}

		n, err := writeFile(flagReportOut, func(w io.Writer) error {
			return report.Render(w, format, rep, opts)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "  Wrote %s report to %s (%s)\n", format, flagReportOut, humanize.Bytes(uint64(n)))
		return nil
	})
}

// reportFormat picks the explicit format, else one matching the output
// file extension, else the fallback.
func reportFormat(explicit, out, fallback string) string {
	if explicit != "" {
		return strings.ToLower(explicit)
	}
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), "."); ext != "" {
		for _, f := range report.Formats {
			if report.Extension(f) == "."+ext {
				return f
			}
		}
		switch ext {
		case "htm":
			return "html"
		case "yml":
			return "yaml"
		}
	}
	return fallback
}

// countingWriter counts bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// writeFile creates path, runs fn against it and returns the bytes written.
// A failed write removes the partial file.
func writeFile(path string, fn func(io.Writer) error) (int64, error) {
	f, err := os.Create(path) //nolint:gosec // output path is chosen by the local user
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}

	cw := &countingWriter{w: f}
	if err := fn(cw); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("closing %s: %w", path, err)
	}
	return cw.n, nil
}
