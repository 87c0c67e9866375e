package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/solifugus/mbl/internal/config"
	"github.com/solifugus/mbl/pkg/cli"
)

var (
	flagOptionsFile string
	flagMomentMS    int
	flagCurrency    string
	flagHealDepth   int
	flagBudgetMS    int
	flagAuditPath   string
	flagLogLevel    string
)

func loadOptions() (config.Options, error) {
	path := flagOptionsFile
	if path == "" {
		path = config.OptionsFileName
	}
	opts, err := config.LoadOptions(path)
	if err != nil {
		return config.Options{}, err
	}

	// Flags override file values.
	if flagMomentMS > 0 {
		opts.MomentDuration = time.Duration(flagMomentMS) * time.Millisecond
	}
	if flagCurrency != "" {
		opts.DefaultCurrency = flagCurrency
	}
	if flagHealDepth > 0 {
		opts.HealingDepth = flagHealDepth
	}
	if flagBudgetMS > 0 {
		opts.MomentBudget = time.Duration(flagBudgetMS) * time.Millisecond
	}
	if flagAuditPath != "" {
		opts.AuditPath = flagAuditPath
	}
	if flagLogLevel != "" {
		opts.LogLevel = flagLogLevel
	}
	return opts, nil
}

func main() {
	root := &cobra.Command{
		Use:           "mbl",
		Short:         "MBL is a reactive interpreter for a business expression language",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagOptionsFile, "options", "", "options file (default mbl.yaml if present)")
	root.PersistentFlags().IntVar(&flagMomentMS, "moment", 0, "moment duration in milliseconds")
	root.PersistentFlags().StringVar(&flagCurrency, "currency", "", "default currency for money values")
	root.PersistentFlags().IntVar(&flagHealDepth, "heal-depth", 0, "maximum recursive healing depth")
	root.PersistentFlags().IntVar(&flagBudgetMS, "budget", 0, "per-moment trigger budget in milliseconds")
	root.PersistentFlags().StringVar(&flagAuditPath, "audit", "", "record observability events to this SQLite file")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Execute a program; reactive programs keep running until interrupted",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			opts, err := loadOptions()
			if err != nil {
				cmd.PrintErrln(err)
				os.Exit(config.ExitRuntimeFailure)
			}
			os.Exit(cli.NewDriver(opts).Run(args[0]))
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Parse a program and report errors without executing",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			opts, err := loadOptions()
			if err != nil {
				cmd.PrintErrln(err)
				os.Exit(config.ExitRuntimeFailure)
			}
			os.Exit(cli.NewDriver(opts).Check(args[0]))
		},
	}

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive session with the moment loop running",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			opts, err := loadOptions()
			if err != nil {
				cmd.PrintErrln(err)
				os.Exit(config.ExitRuntimeFailure)
			}
			os.Exit(cli.NewDriver(opts).REPL(os.Stdin))
		},
	}

	root.AddCommand(runCmd, checkCmd, replCmd)

	if err := root.Execute(); err != nil {
		os.Exit(config.ExitRuntimeFailure)
	}
}
