package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv(EnvDB, "")
	t.Setenv(EnvCurrency, "")
	t.Setenv(EnvAddr, "")
	return dir
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.False(t, Exists())
	assert.Equal(t, filepath.Join(dir, "data", "pbudget", "budget.db"), cfg.DBPath())
	require.NoError(t, cfg.Validate())
}

func TestSaveAndLoad(t *testing.T) {
	isolate(t)

	cfg := DefaultConfig()
	cfg.General.Currency = "€"
	cfg.Report.Title = "Spring campaign"
	cfg.Appearance.Theme = "tokyo-night"
	require.NoError(t, Save(cfg))
	assert.True(t, Exists())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	isolate(t)

	require.NoError(t, os.MkdirAll(ConfigDir(), 0o755))
	require.NoError(t, os.WriteFile(ConfigPath(), []byte("[general]\ncurrency = \"$\"\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "$", cfg.General.Currency)
	assert.Equal(t, "Creative Project Budget Summary", cfg.Report.Title)
	assert.Equal(t, 10, cfg.Serve.IntervalSec)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvDB, "/tmp/other.db")
	t.Setenv(EnvCurrency, "£")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.DBPath())
	assert.Equal(t, "£", cfg.General.Currency)
}

func TestLoad_BadToml(t *testing.T) {
	isolate(t)
	require.NoError(t, os.MkdirAll(ConfigDir(), 0o755))
	require.NoError(t, os.WriteFile(ConfigPath(), []byte("[general\n"), 0o600))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.Currency = " "
	cfg.Report.DefaultFormat = "pdf"
	cfg.Serve.IntervalSec = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "currency")
	assert.Contains(t, err.Error(), "pdf")
	assert.Contains(t, err.Error(), "interval_sec")
}

func TestLoadEnv_MissingFileIsFine(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	assert.NoError(t, LoadEnv())
}
