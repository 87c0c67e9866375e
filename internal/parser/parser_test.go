package parser

import (
	"testing"

	"github.com/solifugus/mbl/internal/ast"
	"github.com/solifugus/mbl/internal/lexer"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(lexer.New(input))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parser errors for %q: %v", input, errs)
	}
	return program
}

func parseExpression(t *testing.T, input string) ast.Expression {
	t.Helper()
	program := parseProgram(t, input)
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}
	stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected expression statement, got %T", program.Statements[0])
	}
	return stmt.Expression
}

func TestVarStatement(t *testing.T) {
	program := parseProgram(t, "var x = 5; var y")
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
	vs := program.Statements[0].(*ast.VarStatement)
	if vs.Name.Value != "x" {
		t.Errorf("wrong name: %q", vs.Name.Value)
	}
	if _, ok := vs.Value.(*ast.NumberLiteral); !ok {
		t.Errorf("wrong initializer: %T", vs.Value)
	}
	vs2 := program.Statements[1].(*ast.VarStatement)
	if vs2.Value != nil {
		t.Errorf("expected no initializer, got %T", vs2.Value)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input string
		root  string // expected operator at the root
	}{
		{"1 + 2 * 3", "+"},
		{"1 * 2 + 3", "+"},
		{"a < b and c > d", "and"},
		{"a and b or c", "or"},
		{"1 + 2 == 3", "=="},
	}
	for _, tt := range tests {
		expr := parseExpression(t, tt.input)
		infix, ok := expr.(*ast.InfixExpression)
		if !ok {
			t.Fatalf("%q: expected infix, got %T", tt.input, expr)
		}
		if infix.Operator != tt.root {
			t.Errorf("%q: root operator %q, want %q", tt.input, infix.Operator, tt.root)
		}
	}
}

func TestAssignTargets(t *testing.T) {
	tests := []struct {
		input  string
		target interface{}
	}{
		{"x = 1", &ast.Identifier{}},
		{"rec.field = 1", &ast.MemberExpression{}},
		{"items[0] = 1", &ast.IndexExpression{}},
	}
	for _, tt := range tests {
		expr := parseExpression(t, tt.input)
		assign, ok := expr.(*ast.AssignExpression)
		if !ok {
			t.Fatalf("%q: expected assignment, got %T", tt.input, expr)
		}
		switch tt.target.(type) {
		case *ast.Identifier:
			if _, ok := assign.Target.(*ast.Identifier); !ok {
				t.Errorf("%q: target %T", tt.input, assign.Target)
			}
		case *ast.MemberExpression:
			if _, ok := assign.Target.(*ast.MemberExpression); !ok {
				t.Errorf("%q: target %T", tt.input, assign.Target)
			}
		case *ast.IndexExpression:
			if _, ok := assign.Target.(*ast.IndexExpression); !ok {
				t.Errorf("%q: target %T", tt.input, assign.Target)
			}
		}
	}
}

func TestAssignIsRightAssociative(t *testing.T) {
	expr := parseExpression(t, "a = b = 1")
	outer := expr.(*ast.AssignExpression)
	if _, ok := outer.Value.(*ast.AssignExpression); !ok {
		t.Fatalf("expected nested assignment on the right, got %T", outer.Value)
	}
}

func TestTaggedLiterals(t *testing.T) {
	date := parseExpression(t, `@"2024-03-30"`).(*ast.DateLiteral)
	if date.Year != 2024 || date.Month != 3 || date.Day != 30 {
		t.Errorf("date = %d-%d-%d", date.Year, date.Month, date.Day)
	}

	clock := parseExpression(t, `@"09:30:15.250"`).(*ast.TimeLiteral)
	if clock.Hour != 9 || clock.Minute != 30 || clock.Second != 15 || clock.Milli != 250 {
		t.Errorf("time = %+v", clock)
	}

	dt := parseExpression(t, `@"2024-03-30T09:30:15"`).(*ast.DateTimeLiteral)
	if dt.Year != 2024 || dt.Hour != 9 {
		t.Errorf("date_time = %+v", dt)
	}

	money := parseExpression(t, `@"$123.45"`).(*ast.MoneyLiteral)
	if money.Amount != 1234500 {
		t.Errorf("money amount = %d, want 1234500", money.Amount)
	}

	negative := parseExpression(t, `@"$-12.30"`).(*ast.MoneyLiteral)
	if negative.Amount != -123000 {
		t.Errorf("negative amount = %d, want -123000", negative.Amount)
	}

	// Fractional digits beyond two truncate toward zero.
	truncated := parseExpression(t, `@"$1.999"`).(*ast.MoneyLiteral)
	if truncated.Amount != 19900 {
		t.Errorf("truncated amount = %d, want 19900", truncated.Amount)
	}
}

func TestInvalidTaggedLiterals(t *testing.T) {
	for _, input := range []string{
		`@"2024-13-01"`,
		`@"2023-02-29"`,
		`@"25:00:00"`,
		`@"$1.2.3"`,
	} {
		p := New(lexer.New(input))
		p.ParseProgram()
		if len(p.Errors()) == 0 {
			t.Errorf("%q: expected a parse error", input)
		}
	}
}

func TestPercentageLiteral(t *testing.T) {
	pct := parseExpression(t, "7.5%").(*ast.PercentageLiteral)
	if pct.Value != 7.5 {
		t.Errorf("percentage = %v", pct.Value)
	}
}

func TestTriggerStatement(t *testing.T) {
	program := parseProgram(t, `on change alarm: temperature > limit do { print("hot") }`)
	ts := program.Statements[0].(*ast.TriggerStatement)
	if ts.Event != "change" || ts.Name.Value != "alarm" {
		t.Fatalf("trigger = %s %s", ts.Event, ts.Name.Value)
	}
	if _, ok := ts.Condition.(*ast.InfixExpression); !ok {
		t.Errorf("condition %T", ts.Condition)
	}
	if len(ts.Action.Statements) != 1 {
		t.Errorf("action statements = %d", len(ts.Action.Statements))
	}
}

func TestConstraintStatement(t *testing.T) {
	program := parseProgram(t, "constraint cap: x < 20 heal { x = 19 }")
	cs := program.Statements[0].(*ast.ConstraintStatement)
	if cs.Name.Value != "cap" {
		t.Fatalf("name = %q", cs.Name.Value)
	}
	if cs.Heal == nil {
		t.Fatal("expected heal block")
	}

	program = parseProgram(t, "constraint floor: x > 0")
	cs = program.Statements[0].(*ast.ConstraintStatement)
	if cs.Heal != nil {
		t.Fatal("expected no heal block")
	}
}

func TestControlFlow(t *testing.T) {
	program := parseProgram(t, `
if x > 1 { print(x) } else if x < 0 { print(0) } else { print(1) }
while x < 10 { x = x + 1 }
for var i = 0; i < 3; i = i + 1 { print(i) }
for item in items { print(item) }
function add(a, b) { return a + b }
`)
	if len(program.Statements) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(program.Statements))
	}
	ifStmt := program.Statements[0].(*ast.IfStatement)
	if _, ok := ifStmt.Alternative.(*ast.IfStatement); !ok {
		t.Errorf("expected else-if chain, got %T", ifStmt.Alternative)
	}
	forStmt := program.Statements[2].(*ast.ForStatement)
	if forStmt.Init == nil || forStmt.Condition == nil || forStmt.Update == nil {
		t.Error("for clauses missing")
	}
	forIn := program.Statements[3].(*ast.ForInStatement)
	if forIn.Name.Value != "item" {
		t.Errorf("for-in name %q", forIn.Name.Value)
	}
	fn := program.Statements[4].(*ast.FunctionStatement)
	if len(fn.Parameters) != 2 {
		t.Errorf("parameters = %d", len(fn.Parameters))
	}
}

func TestDuplicateParameters(t *testing.T) {
	p := New(lexer.New("function f(a, a) { return a }"))
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected duplicate parameter error")
	}
}

func TestRecordLiteral(t *testing.T) {
	expr := parseExpression(t, `{ name: "Ada", age: 36, parent: base }`)
	rec := expr.(*ast.RecordLiteral)
	if len(rec.Fields) != 3 {
		t.Fatalf("fields = %d", len(rec.Fields))
	}
	if rec.Fields[0].Key != "name" || rec.Fields[1].Key != "age" || rec.Fields[2].Key != "parent" {
		t.Errorf("key order not preserved: %+v", rec.Fields)
	}
}

func TestParseErrorsCarryPositions(t *testing.T) {
	p := New(lexer.New("var = 5"))
	p.ParseProgram()
	errs := p.Errors()
	if len(errs) == 0 {
		t.Fatal("expected errors")
	}
	if errs[0].Line != 1 {
		t.Errorf("error line = %d", errs[0].Line)
	}
}
