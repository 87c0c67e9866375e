package runtime

import (
	"io"
	"testing"
	"time"

	"github.com/solifugus/mbl/internal/ast"
	"github.com/solifugus/mbl/internal/config"
	"github.com/solifugus/mbl/internal/lexer"
	"github.com/solifugus/mbl/internal/parser"
)

// Test helpers shared by the runtime test files: programs are written
// in surface syntax and parsed, so the tests exercise the same ASTs
// the driver produces.

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(src))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors in %q: %v", src, errs)
	}
	return program
}

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt := New(config.Options{})
	rt.SetOutput(io.Discard)
	return rt
}

func exec(t *testing.T, rt *Runtime, src string) Handle {
	t.Helper()
	h, err := rt.Execute(mustParse(t, src))
	if err != nil {
		t.Fatalf("execute %q: %v", src, err)
	}
	return h
}

func execErr(t *testing.T, rt *Runtime, src string) error {
	t.Helper()
	_, err := rt.Execute(mustParse(t, src))
	if err == nil {
		t.Fatalf("execute %q: expected error", src)
	}
	return err
}

func wantNumber(t *testing.T, rt *Runtime, h Handle, want float64) {
	t.Helper()
	if rt.store.Kind(h) != KindNumber {
		t.Fatalf("expected number, got %s", rt.store.Kind(h))
	}
	if got := rt.store.Number(h); got != want {
		t.Fatalf("number = %v, want %v", got, want)
	}
}

// advanceMoment drives the scheduler one moment boundary without the
// timer goroutine, keeping tests deterministic.
func advanceMoment(rt *Runtime) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.processMoment(rt.now())
	rt.momentIndex++
}

func TestRuntimeDefaults(t *testing.T) {
	rt := newTestRuntime(t)
	opts := rt.Options()
	if opts.MomentDuration != 333*time.Millisecond {
		t.Errorf("moment duration = %v", opts.MomentDuration)
	}
	if opts.DefaultCurrency != "USD" {
		t.Errorf("default currency = %q", opts.DefaultCurrency)
	}
	if opts.HealingDepth != 16 {
		t.Errorf("healing depth = %d", opts.HealingDepth)
	}
}

func TestExecuteReturnsLastValue(t *testing.T) {
	rt := newTestRuntime(t)
	h := exec(t, rt, "var x = 2; x + 3")
	wantNumber(t, rt, h, 5)
}

func TestAssignAPICreatesAndEnforces(t *testing.T) {
	rt := newTestRuntime(t)

	five, _ := rt.NewNumber(5)
	if err := rt.Assign("x", five); err != nil {
		t.Fatalf("assign: %v", err)
	}
	h, ok := rt.Lookup("x")
	if !ok {
		t.Fatal("x not bound")
	}
	wantNumber(t, rt, h, 5)

	exec(t, rt, "constraint cap: x < 20")

	thirty, _ := rt.NewNumber(30)
	err := rt.Assign("x", thirty)
	if KindOf(err) != ConstraintViolation {
		t.Fatalf("expected ConstraintViolation, got %v", err)
	}
	h, _ = rt.Lookup("x")
	wantNumber(t, rt, h, 5)
}

func TestRegisterTriggerRejectsNonTrigger(t *testing.T) {
	rt := newTestRuntime(t)
	n, _ := rt.NewNumber(1)
	if err := rt.RegisterTrigger(n); KindOf(err) != InvalidValue {
		t.Fatalf("expected InvalidValue, got %v", err)
	}
}

func TestUnregisterTrigger(t *testing.T) {
	rt := newTestRuntime(t)
	exec(t, rt, "var x = 1; on change watcher: x > 0 do { x = x }")
	if !rt.UnregisterTrigger("watcher") {
		t.Fatal("expected watcher to be present")
	}
	if rt.UnregisterTrigger("watcher") {
		t.Fatal("second unregister should report absence")
	}
}

func TestHistoryRecordsPriorValues(t *testing.T) {
	rt := newTestRuntime(t)
	exec(t, rt, "var x = 1; x = 2; x = 3")

	entries := rt.History("x")
	if len(entries) != 3 {
		t.Fatalf("history length = %d, want 3", len(entries))
	}
	// Newest first: the write of 3 replaced 2.
	if entries[0].Value == NoHandle {
		t.Fatal("latest entry has no prior value")
	}
	wantNumber(t, rt, entries[0].Value, 2)
	// The var declaration created the binding.
	if entries[2].Value != NoHandle {
		t.Fatal("oldest entry should record creation")
	}
}
