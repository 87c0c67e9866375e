package config

import "time"

const SourceFileExt = ".mbl"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".mbl", ".bl"}

// Runtime defaults.
const (
	// DefaultMomentDuration is the wall-clock length of one moment.
	DefaultMomentDuration = 333 * time.Millisecond

	// DefaultCurrency applies to money literals and number-to-money
	// conversion when no currency is given.
	DefaultCurrency = "USD"

	// DefaultHealingDepth bounds recursive healing before the engine
	// fails with HealingOverflow.
	DefaultHealingDepth = 16
)

// OptionsFileName is looked up in the working directory when no
// explicit options file is given.
const OptionsFileName = "mbl.yaml"

// Driver exit codes.
const (
	ExitOK               = 0
	ExitParseFailure     = 1
	ExitRuntimeFailure   = 2
	ExitStartupViolation = 3
)
