package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWithDefaults(t *testing.T) {
	opts := Options{}.WithDefaults()
	require.Equal(t, 333*time.Millisecond, opts.MomentDuration)
	require.Equal(t, "USD", opts.DefaultCurrency)
	require.Equal(t, 16, opts.HealingDepth)
	require.Zero(t, opts.MomentBudget)
}

func TestLoadOptionsMissingFileUsesDefaults(t *testing.T) {
	opts, err := LoadOptions(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, "USD", opts.DefaultCurrency)
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mbl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
moment_duration_ms: 100
default_currency: EUR
healing_depth: 4
moment_budget_ms: 50
log_level: debug
`), 0o644))

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	require.Equal(t, 100*time.Millisecond, opts.MomentDuration)
	require.Equal(t, "EUR", opts.DefaultCurrency)
	require.Equal(t, 4, opts.HealingDepth)
	require.Equal(t, 50*time.Millisecond, opts.MomentBudget)
	require.Equal(t, "debug", opts.LogLevel)
}

func TestLoadOptionsRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mbl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("moment_duration_ms: [broken"), 0o644))
	_, err := LoadOptions(path)
	require.Error(t, err)
}
