package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solifugus/mbl/internal/config"
)

func writeSource(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.mbl")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func newTestDriver() (*Driver, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	d := NewDriver(config.Options{LogLevel: "error"})
	d.Out = &out
	d.ErrOut = &errOut
	return d, &out, &errOut
}

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   int
	}{
		{"normal", `print("ok")`, config.ExitOK},
		{"parse failure", "var = 5", config.ExitParseFailure},
		{"runtime failure", "missing + 1", config.ExitRuntimeFailure},
		{"startup violation", "var x = 50; constraint cap: x < 20", config.ExitStartupViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, _ := newTestDriver()
			require.Equal(t, tt.code, d.Run(writeSource(t, tt.source)))
		})
	}
}

func TestRunExecutesProgram(t *testing.T) {
	d, out, _ := newTestDriver()
	code := d.Run(writeSource(t, `
var subtotal = @"$123.45"
var total = subtotal + @"$10.00"
print(total)`))
	require.Equal(t, config.ExitOK, code)
	require.Contains(t, out.String(), `@"$133.45" USD`)
}

func TestCheckReportsPositionedErrors(t *testing.T) {
	d, _, errOut := newTestDriver()
	code := d.Check(writeSource(t, "var = 5"))
	require.Equal(t, config.ExitParseFailure, code)
	require.Contains(t, errOut.String(), "1:5")
}

func TestMissingFileFailsParsePhase(t *testing.T) {
	d, _, _ := newTestDriver()
	require.Equal(t, config.ExitParseFailure, d.Run(filepath.Join(t.TempDir(), "absent.mbl")))
}

func TestIsSourceFile(t *testing.T) {
	require.True(t, IsSourceFile("ledger.mbl"))
	require.True(t, IsSourceFile("ledger.bl"))
	require.False(t, IsSourceFile("ledger.txt"))
}
