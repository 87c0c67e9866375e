package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Options configures a runtime instance. The zero value means "use
// the defaults"; WithDefaults fills the gaps.
type Options struct {
	MomentDuration  time.Duration
	DefaultCurrency string
	HealingDepth    int

	// MomentBudget limits trigger processing per moment; zero means
	// no budget.
	MomentBudget time.Duration

	// AuditPath enables the SQLite observability sink when set.
	AuditPath string

	LogLevel string
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.MomentDuration <= 0 {
		o.MomentDuration = DefaultMomentDuration
	}
	if o.DefaultCurrency == "" {
		o.DefaultCurrency = DefaultCurrency
	}
	if o.HealingDepth <= 0 {
		o.HealingDepth = DefaultHealingDepth
	}
	if o.LogLevel == "" {
		o.LogLevel = "info"
	}
	return o
}

// optionsFile is the YAML shape of an options file.
type optionsFile struct {
	MomentDurationMS int    `yaml:"moment_duration_ms"`
	DefaultCurrency  string `yaml:"default_currency"`
	HealingDepth     int    `yaml:"healing_depth"`
	MomentBudgetMS   int    `yaml:"moment_budget_ms"`
	AuditPath        string `yaml:"audit_path"`
	LogLevel         string `yaml:"log_level"`
}

// LoadOptions reads an options file. A missing file is not an error:
// it yields the defaults, so the driver can always try the
// conventional path.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Options{}.WithDefaults(), nil
	}
	if err != nil {
		return Options{}, fmt.Errorf("read options: %w", err)
	}

	var file optionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Options{}, fmt.Errorf("parse options %s: %w", path, err)
	}

	opts := Options{
		MomentDuration:  time.Duration(file.MomentDurationMS) * time.Millisecond,
		DefaultCurrency: file.DefaultCurrency,
		HealingDepth:    file.HealingDepth,
		MomentBudget:    time.Duration(file.MomentBudgetMS) * time.Millisecond,
		AuditPath:       file.AuditPath,
		LogLevel:        file.LogLevel,
	}
	return opts.WithDefaults(), nil
}
