package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/theirongolddev/pbudget/internal/config"
	"github.com/theirongolddev/pbudget/internal/expense"
	"github.com/theirongolddev/pbudget/internal/logging"
	"github.com/theirongolddev/pbudget/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDB       string
	flagCurrency string
	flagQuiet    bool
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "pbudget",
	Short: "Creative project budget tracker",
	Long: "Track the expenses of a creative project against the monthly client payment:\n" +
		"totals, profit/loss, category and monthly breakdowns, and printable reports.",
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Budget database path (default from config)")
	rootCmd.PersistentFlags().StringVarP(&flagCurrency, "currency", "c", "", "Currency symbol for amounts")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log errors")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// preRun runs before every command: log level first, then .env so the
// config layer sees its variables.
func preRun(_ *cobra.Command, _ []string) error {
	switch {
	case flagVerbose:
		logging.SetLevel(slog.LevelDebug)
	case flagQuiet:
		logging.SetLevel(slog.LevelError)
	default:
		logging.SetLevel(slog.LevelWarn)
	}
	return config.LoadEnv()
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagDB != "" {
		cfg.General.DBPath = flagDB
	}
	if flagCurrency != "" {
		cfg.General.Currency = flagCurrency
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", config.ConfigPath(), err)
	}
	return cfg, nil
}

// appEnv is the shared state of commands that touch the store.
type appEnv struct {
	cfg   config.Config
	store *store.Store
	svc   *expense.Service
}

// openEnv loads the config and opens the store it points at.
func openEnv() (*appEnv, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return nil, err
	}
	logging.For(logging.ComponentApp).Debug("store opened", logging.FieldPath, cfg.DBPath())

	return &appEnv{
		cfg:   cfg,
		store: st,
		svc:   expense.NewService(st),
	}, nil
}

func (e *appEnv) Close() {
	if err := e.store.Close(); err != nil {
		logging.For(logging.ComponentApp).Warn("closing store", logging.Err(err))
	}
}

func (e *appEnv) currency() string {
	return e.cfg.General.Currency
}

// withEnv opens the store for the duration of fn.
func withEnv(fn func(env *appEnv) error) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(env)
}
