// Package cli is the driver pipeline: it loads source, runs the
// lexer and parser, and executes the resulting AST against a runtime
// instance. The runtime core knows nothing about files or terminals.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/solifugus/mbl/internal/audit"
	"github.com/solifugus/mbl/internal/config"
	"github.com/solifugus/mbl/internal/lexer"
	"github.com/solifugus/mbl/internal/parser"
	"github.com/solifugus/mbl/internal/runtime"
	"github.com/solifugus/mbl/pkg/logging"
)

// Driver wires a runtime to the outside world.
type Driver struct {
	Opts   config.Options
	Out    io.Writer
	ErrOut io.Writer
	Log    *slog.Logger
}

func NewDriver(opts config.Options) *Driver {
	return &Driver{
		Opts:   opts.WithDefaults(),
		Out:    os.Stdout,
		ErrOut: os.Stderr,
		Log:    logging.New(logging.Config{Level: opts.LogLevel, Service: "mbl"}),
	}
}

// Check parses a file and reports errors without executing. Exit
// codes: 0 on success, 1 on lex/parse failure.
func (d *Driver) Check(path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(d.ErrOut, err)
		return config.ExitParseFailure
	}
	p := parser.New(lexer.New(string(source)))
	p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		for _, perr := range errs {
			fmt.Fprintf(d.ErrOut, "%s: %s\n", path, perr)
		}
		return config.ExitParseFailure
	}
	return config.ExitOK
}

// Run executes a source file. Exit codes: 0 normal, 1 lex/parse
// failure, 2 runtime failure, 3 constraint violation at startup. When
// the program registered any triggers, the moment loop starts and the
// driver blocks until interrupted.
func (d *Driver) Run(path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(d.ErrOut, err)
		return config.ExitParseFailure
	}

	p := parser.New(lexer.New(string(source)))
	program := p.ParseProgram()
	program.File = path
	if errs := p.Errors(); len(errs) > 0 {
		for _, perr := range errs {
			fmt.Fprintf(d.ErrOut, "%s: %s\n", path, perr)
		}
		return config.ExitParseFailure
	}

	rt := runtime.New(d.Opts)
	rt.SetOutput(d.Out)
	rt.OnEvent(d.logHook())

	recorder, code := d.attachAudit(rt)
	if code != config.ExitOK {
		return code
	}
	if recorder != nil {
		defer recorder.Close()
	}

	if _, err := rt.Execute(program); err != nil {
		fmt.Fprintln(d.ErrOut, err)
		if runtime.KindOf(err) == runtime.ConstraintViolation {
			return config.ExitStartupViolation
		}
		return config.ExitRuntimeFailure
	}

	if !rt.HasTriggers() {
		return config.ExitOK
	}

	// Reactive program: run the moment loop until interrupted.
	rt.Start()
	defer rt.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	d.Log.Info("interrupted, stopping moment loop", "moments", rt.MomentIndex())
	return config.ExitOK
}

func (d *Driver) attachAudit(rt *runtime.Runtime) (*audit.Recorder, int) {
	if d.Opts.AuditPath == "" {
		return nil, config.ExitOK
	}
	recorder, err := audit.Open(d.Opts.AuditPath)
	if err != nil {
		fmt.Fprintln(d.ErrOut, err)
		return nil, config.ExitRuntimeFailure
	}
	rt.OnEvent(recorder.Hook())
	d.Log.Info("audit enabled", "path", d.Opts.AuditPath, "session", recorder.SessionID())
	return recorder, config.ExitOK
}

// logHook forwards observability events to the structured logger.
func (d *Driver) logHook() runtime.Hook {
	return func(ev runtime.Event) {
		switch ev.Kind {
		case runtime.EventTriggerError, runtime.EventHealingFailed, runtime.EventConstraintViolation:
			d.Log.Warn(string(ev.Kind), "moment", ev.MomentIndex, "subject", ev.Subject, "payload", ev.Payload)
		default:
			d.Log.Debug(string(ev.Kind), "moment", ev.MomentIndex, "subject", ev.Subject, "payload", ev.Payload)
		}
	}
}

// IsSourceFile checks if a file has a recognized source extension.
func IsSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
