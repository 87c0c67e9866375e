package runtime

import (
	"strings"
	"testing"
)

func TestLiteralEvaluation(t *testing.T) {
	rt := newTestRuntime(t)

	tests := []struct {
		input string
		want  string // Inspect form
	}{
		{"5", "5"},
		{"3.25", "3.25"},
		{`"hi"`, "hi"},
		{"true", "true"},
		{"nil", "nil"},
		{"unknown", "unknown"},
		{`@"2024-03-30"`, `@"2024-03-30"`},
		{`@"09:30:00"`, `@"09:30:00"`},
		{`@"$123.45"`, `@"$123.45" USD`},
		{"7.5%", "7.5%"},
		{"[1, 2, 3]", "[1, 2, 3]"},
	}
	for _, tt := range tests {
		h := exec(t, rt, tt.input)
		if got := rt.store.Inspect(h); got != tt.want {
			t.Errorf("%q => %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMoneyLiteralUsesDefaultCurrency(t *testing.T) {
	rt := newTestRuntime(t)
	h := exec(t, rt, `@"$10.00"`)
	amount, currency := rt.store.Money(h)
	if amount != 100000 || currency != "USD" {
		t.Fatalf("money = %d %s", amount, currency)
	}
}

func TestArithmeticExpressions(t *testing.T) {
	rt := newTestRuntime(t)
	tests := []struct {
		input string
		want  float64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 / 4", 2.5},
		{"-5 + 3", -2},
	}
	for _, tt := range tests {
		wantNumber(t, rt, exec(t, rt, tt.input), tt.want)
	}
}

func TestLeftToRightEvaluation(t *testing.T) {
	rt := newTestRuntime(t)
	// Each operand assignment is observable; the final value of x
	// proves order.
	h := exec(t, rt, "var x = 0; (x = 1) + (x = x + 10)")
	wantNumber(t, rt, h, 12)
	got, _ := rt.Lookup("x")
	wantNumber(t, rt, got, 11)
}

func TestBlocksAndScoping(t *testing.T) {
	rt := newTestRuntime(t)

	// A block evaluates to its last statement's value, or nil when
	// empty.
	wantNumber(t, rt, exec(t, rt, "{ 1; 2; 3 }"), 3)
	h := exec(t, rt, "{ }")
	if rt.store.Kind(h) != KindNil {
		t.Fatalf("empty block = %s", rt.store.Kind(h))
	}

	// Inner declarations do not leak; assignment writes the frame
	// that defines the name.
	exec(t, rt, "var a = 1; { var a = 2 }")
	got, _ := rt.Lookup("a")
	wantNumber(t, rt, got, 1)

	exec(t, rt, "var b = 1; { b = 2 }")
	got, _ = rt.Lookup("b")
	wantNumber(t, rt, got, 2)
}

func TestControlFlowEvaluation(t *testing.T) {
	rt := newTestRuntime(t)

	wantNumber(t, rt, exec(t, rt, "var x = 5; if x > 3 { 10 } else { 20 }"), 10)
	wantNumber(t, rt, exec(t, rt, "var n = 0; while n < 5 { n = n + 1 }; n"), 5)
	wantNumber(t, rt, exec(t, rt, "var sum = 0; for var i = 1; i <= 4; i = i + 1 { sum = sum + i }; sum"), 10)
	wantNumber(t, rt, exec(t, rt, "var total = 0; for v in [1, 2, 3] { total = total + v }; total"), 6)
}

func TestNonBooleanConditionFails(t *testing.T) {
	rt := newTestRuntime(t)
	for _, src := range []string{
		"if 1 { 2 }",
		"while 1 { }",
		`var i = 0; for ; "x"; { }`,
	} {
		if err := execErr(t, rt, src); KindOf(err) != TypeMismatch {
			t.Errorf("%q: %v", src, err)
		}
	}
}

func TestFunctions(t *testing.T) {
	rt := newTestRuntime(t)

	wantNumber(t, rt, exec(t, rt, "function add(a, b) { return a + b }; add(2, 3)"), 5)

	// Closures capture their defining environment.
	wantNumber(t, rt, exec(t, rt, `
var base = 100
function offset(n) { return base + n }
offset(1)`), 101)

	// Implicit return of the last statement's value.
	wantNumber(t, rt, exec(t, rt, "function last(n) { n * 2 }; last(4)"), 8)

	// Early return unwinds nested control flow.
	wantNumber(t, rt, exec(t, rt, `
function firstOver(limit) {
	for v in [1, 5, 9] {
		if v > limit { return v }
	}
	return -1
}
firstOver(4)`), 5)
}

func TestCallErrors(t *testing.T) {
	rt := newTestRuntime(t)

	if err := execErr(t, rt, "function f(a) { a }; f(1, 2)"); KindOf(err) != ArgumentMismatch {
		t.Errorf("arity: %v", err)
	}
	if err := execErr(t, rt, "var x = 3; x(1)"); KindOf(err) != InvalidCallTarget {
		t.Errorf("call target: %v", err)
	}
	if err := execErr(t, rt, "return 5"); KindOf(err) != ReturnOutsideFunction {
		t.Errorf("top-level return: %v", err)
	}
	if err := execErr(t, rt, "missing + 1"); KindOf(err) != UndefinedName {
		t.Errorf("undefined: %v", err)
	}
}

func TestIndexing(t *testing.T) {
	rt := newTestRuntime(t)

	wantNumber(t, rt, exec(t, rt, "var xs = [10, 20, 30]; xs[1]"), 20)

	h := exec(t, rt, `"hello"[1]`)
	if rt.store.Text(h) != "e" {
		t.Fatalf("text index = %q", rt.store.Text(h))
	}

	if err := execErr(t, rt, "var ys = [1]; ys[5]"); KindOf(err) != IndexOutOfRange {
		t.Errorf("list oob: %v", err)
	}
	if err := execErr(t, rt, `"ab"[9]`); KindOf(err) != IndexOutOfRange {
		t.Errorf("text oob: %v", err)
	}
	if err := execErr(t, rt, `var zs = [1]; zs["a"]`); KindOf(err) != TypeMismatch {
		t.Errorf("non-number index: %v", err)
	}
}

func TestRecordsAndInheritance(t *testing.T) {
	rt := newTestRuntime(t)

	// Member access follows the parent chain; writes stay local.
	exec(t, rt, `
var person = { name: "Generic Person" }
var employee = { parent: person, job: "Engineer" }`)

	h := exec(t, rt, "employee.name")
	if rt.store.Text(h) != "Generic Person" {
		t.Fatalf("inherited = %q", rt.store.Text(h))
	}

	exec(t, rt, `employee.name = "Ada"`)
	h = exec(t, rt, "person.name")
	if rt.store.Text(h) != "Generic Person" {
		t.Fatal("write leaked into parent")
	}

	if err := execErr(t, rt, "employee.salary"); KindOf(err) != UndefinedName {
		t.Errorf("missing field: %v", err)
	}
}

func TestRecordDeepCopyScenario(t *testing.T) {
	rt := newTestRuntime(t)

	// Deep-copy E to E'; mutate P; E sees the change, E' does not.
	exec(t, rt, `
var p = { name: "Generic Person" }
var e = { parent: p, job: "Engineer" }
var e2 = copy(e)
p.name = "Changed"`)

	h := exec(t, rt, "e.name")
	if rt.store.Text(h) != "Changed" {
		t.Fatalf("e.name = %q", rt.store.Text(h))
	}
	h = exec(t, rt, "e2.name")
	if rt.store.Text(h) != "Generic Person" {
		t.Fatalf("e2.name = %q", rt.store.Text(h))
	}
}

func TestBuiltins(t *testing.T) {
	rt := newTestRuntime(t)

	h := exec(t, rt, `type(@"$1.00")`)
	if rt.store.Text(h) != "money" {
		t.Errorf("type = %q", rt.store.Text(h))
	}
	wantNumber(t, rt, exec(t, rt, "len([1, 2, 3])"), 3)
	wantNumber(t, rt, exec(t, rt, `len("abcd")`), 4)
	wantNumber(t, rt, exec(t, rt, `number(@"$2.50")`), 2.5)

	h = exec(t, rt, `addDays(@"2024-02-28", 1)`)
	if rt.store.DateOf(h) != (Date{2024, 2, 29}) {
		t.Errorf("addDays = %+v", rt.store.DateOf(h))
	}

	h = exec(t, rt, `slice("business", 0, 3)`)
	if rt.store.Text(h) != "busi" {
		t.Errorf("slice = %q", rt.store.Text(h))
	}
	h = exec(t, rt, `splice("business", 0, 4, "dark")`)
	if rt.store.Text(h) != "darkness" {
		t.Errorf("splice = %q", rt.store.Text(h))
	}
	if err := execErr(t, rt, `slice("ab", 0, 5)`); KindOf(err) != IndexOutOfRange {
		t.Errorf("slice oob: %v", err)
	}
}

func TestPrintWritesToOutput(t *testing.T) {
	rt := newTestRuntime(t)
	var sb strings.Builder
	rt.SetOutput(&sb)
	exec(t, rt, `print("total", 42)`)
	if sb.String() != "total 42\n" {
		t.Fatalf("print output = %q", sb.String())
	}
}

func TestErrorsCarryPositions(t *testing.T) {
	rt := newTestRuntime(t)
	err := execErr(t, rt, "var x = 1\nmissing + x")
	rerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error type %T", err)
	}
	if rerr.Line != 2 {
		t.Errorf("line = %d, want 2", rerr.Line)
	}
}
