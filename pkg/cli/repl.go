package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/solifugus/mbl/internal/lexer"
	"github.com/solifugus/mbl/internal/parser"
	"github.com/solifugus/mbl/internal/runtime"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	eventStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Faint(true)
)

const replPrompt = "mbl> "

// REPL runs a line-oriented session over a persistent runtime with
// the moment loop running. Errors print without terminating; :quit
// exits.
func (d *Driver) REPL(in io.Reader) int {
	styled := false
	if f, ok := d.Out.(*os.File); ok {
		styled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	rt := runtime.New(d.Opts)
	rt.SetOutput(d.Out)
	rt.OnEvent(d.replHook(styled))

	recorder, code := d.attachAudit(rt)
	if code != 0 {
		return code
	}
	if recorder != nil {
		defer recorder.Close()
	}

	rt.Start()
	defer rt.Stop()

	fmt.Fprintf(d.Out, "mbl %s — moment every %s, :quit to exit\n", rt.ID, d.Opts.MomentDuration)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(d.Out, d.style(styled, promptStyle, replPrompt))
		if !scanner.Scan() {
			return 0
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ":quit" || line == ":q" {
			return 0
		}

		p := parser.New(lexer.New(line))
		program := p.ParseProgram()
		if errs := p.Errors(); len(errs) > 0 {
			for _, perr := range errs {
				fmt.Fprintln(d.Out, d.style(styled, errorStyle, perr.Error()))
			}
			continue
		}

		h, err := rt.Execute(program)
		if err != nil {
			fmt.Fprintln(d.Out, d.style(styled, errorStyle, err.Error()))
			continue
		}
		fmt.Fprintln(d.Out, d.style(styled, resultStyle, rt.InspectHandle(h)))
	}
}

// replHook surfaces scheduler events inline so reactive behavior is
// visible between prompts.
func (d *Driver) replHook(styled bool) runtime.Hook {
	return func(ev runtime.Event) {
		line := fmt.Sprintf("[moment %d] %s %s", ev.MomentIndex, ev.Kind, ev.Subject)
		if ev.Payload != "" {
			line += ": " + ev.Payload
		}
		fmt.Fprintln(d.Out, d.style(styled, eventStyle, line))
	}
}

func (d *Driver) style(enabled bool, s lipgloss.Style, text string) string {
	if !enabled {
		return text
	}
	return s.Render(text)
}
