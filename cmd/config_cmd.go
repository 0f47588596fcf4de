// Package cmd implements the pbudget CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/pbudget/internal/config"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Currency: %s\n", cfg.General.Currency)
	fmt.Printf("    Database: %s\n", cfg.DBPath())
	if v := os.Getenv(config.EnvDB); v != "" {
		fmt.Printf("              (from %s)\n", config.EnvDB)
	}
	fmt.Println()

	fmt.Println("  [Report]")
	fmt.Printf("    Title:          %s\n", cfg.Report.Title)
	fmt.Printf("    Default format: %s\n", cfg.Report.DefaultFormat)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Serve]")
	fmt.Printf("    Address:  %s\n", cfg.Serve.Addr)
	fmt.Printf("    Interval: %ds\n", cfg.Serve.IntervalSec)
	fmt.Println()

	if _, err := os.Stat(cfg.DBPath()); err == nil {
		err := withEnv(func(env *appEnv) error {
			ctx := cmd.Context()
			snap, err := env.store.Snapshot(ctx)
			if err != nil {
				return err
			}
			fmt.Println("  [Data]")
			fmt.Printf("    Expenses:    %d\n", len(snap.Expenses))
			if at, err := env.store.LastModified(ctx); err == nil && !at.IsZero() {
				fmt.Printf("    Last change: %s\n", humanize.Time(at))
			}
			fmt.Println()
			return nil
		})
		if err != nil {
			return err
		}
	}

	fmt.Println("  Run `pbudget setup` to reconfigure.")
	return nil
}
