// Package config loads and saves pbudget settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const appName = "pbudget"

// Environment variables that override the config file.
const (
	EnvDB       = "PBUDGET_DB"
	EnvCurrency = "PBUDGET_CURRENCY"
	EnvAddr     = "PBUDGET_ADDR"
)

// Report formats accepted by DefaultFormat. Kept here so config validation
// does not depend on the renderers.
var reportFormats = []string{"text", "html", "csv", "json", "yaml", "xlsx"}

// Config holds all pbudget configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Report     ReportConfig     `toml:"report"`
	Appearance AppearanceConfig `toml:"appearance"`
	Serve      ServeConfig      `toml:"serve"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Currency string `toml:"currency"`
	DBPath   string `toml:"db_path,omitempty"`
}

// ReportConfig holds report defaults.
type ReportConfig struct {
	Title         string `toml:"title"`
	DefaultFormat string `toml:"default_format"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ServeConfig holds settings of the local API.
type ServeConfig struct {
	Addr        string `toml:"addr"`
	IntervalSec int    `toml:"interval_sec"`

	// AllowedOrigins are browser origins allowed to read the API (CORS).
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Currency: "₪",
		},
		Report: ReportConfig{
			Title:         "Creative Project Budget Summary",
			DefaultFormat: "text",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Serve: ServeConfig{
			Addr:        "127.0.0.1:8787",
			IntervalSec: 10,
		},
	}
}

// Validate checks values that would otherwise fail later at use.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.General.Currency) == "" {
		errs = append(errs, errors.New("general.currency must not be empty"))
	}
	if !validFormat(c.Report.DefaultFormat) {
		errs = append(errs, fmt.Errorf("report.default_format %q is not one of %s",
			c.Report.DefaultFormat, strings.Join(reportFormats, ", ")))
	}
	if c.Serve.IntervalSec < 1 {
		errs = append(errs, errors.New("serve.interval_sec must be at least 1"))
	}
	return errors.Join(errs...)
}

func validFormat(f string) bool {
	for _, v := range reportFormats {
		if v == f {
			return true
		}
	}
	return false
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// DefaultDBPath returns the database path used when none is configured.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "budget.db")
}

// LoadEnv loads a .env file from the working directory when present.
// Variables already set in the environment win.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied on top.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvDB); v != "" {
		cfg.General.DBPath = v
	}
	if v := os.Getenv(EnvCurrency); v != "" {
		cfg.General.Currency = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Serve.Addr = v
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// DBPath returns the configured database path, or the default.
func (c Config) DBPath() string {
	if c.General.DBPath != "" {
		return expandHome(c.General.DBPath)
	}
	return DefaultDBPath()
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
