package lexer

import (
	"testing"

	"github.com/solifugus/mbl/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `var total = @"$123.45"
constraint cap: total < 20 heal { total = 19 }
on change watcher: x >= y do { print("fired") }
items[2] = 7.5%
// comment is skipped
rate != 3.14 and ok or !done`

	tests := []struct {
		expectedType   token.TokenType
		expectedLexeme string
	}{
		{token.VAR, "var"},
		{token.IDENT, "total"},
		{token.ASSIGN, "="},
		{token.TAGGED, `@"$123.45"`},
		{token.CONSTRAINT, "constraint"},
		{token.IDENT, "cap"},
		{token.COLON, ":"},
		{token.IDENT, "total"},
		{token.LT, "<"},
		{token.NUMBER, "20"},
		{token.HEAL, "heal"},
		{token.LBRACE, "{"},
		{token.IDENT, "total"},
		{token.ASSIGN, "="},
		{token.NUMBER, "19"},
		{token.RBRACE, "}"},
		{token.ON, "on"},
		{token.IDENT, "change"},
		{token.IDENT, "watcher"},
		{token.COLON, ":"},
		{token.IDENT, "x"},
		{token.GT_EQ, ">="},
		{token.IDENT, "y"},
		{token.DO, "do"},
		{token.LBRACE, "{"},
		{token.IDENT, "print"},
		{token.LPAREN, "("},
		{token.STRING, "fired"},
		{token.RPAREN, ")"},
		{token.RBRACE, "}"},
		{token.IDENT, "items"},
		{token.LBRACKET, "["},
		{token.NUMBER, "2"},
		{token.RBRACKET, "]"},
		{token.ASSIGN, "="},
		{token.NUMBER, "7.5"},
		{token.PERCENT, "%"},
		{token.IDENT, "rate"},
		{token.NOT_EQ, "!="},
		{token.NUMBER, "3.14"},
		{token.AND, "and"},
		{token.IDENT, "ok"},
		{token.OR, "or"},
		{token.BANG, "!"},
		{token.IDENT, "done"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - wrong type. expected=%q, got=%q (%q)", i, tt.expectedType, tok.Type, tok.Lexeme)
		}
		if tok.Type == token.STRING || tok.Type == token.EOF {
			if tok.Literal != tt.expectedLexeme {
				t.Fatalf("tests[%d] - wrong literal. expected=%q, got=%q", i, tt.expectedLexeme, tok.Literal)
			}
			continue
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - wrong lexeme. expected=%q, got=%q", i, tt.expectedLexeme, tok.Lexeme)
		}
	}
}

func TestPositions(t *testing.T) {
	input := "var x\n  x = 2"
	l := New(input)

	expected := []struct {
		lexeme string
		line   int
		column int
	}{
		{"var", 1, 1},
		{"x", 1, 5},
		{"x", 2, 3},
		{"=", 2, 5},
		{"2", 2, 7},
	}
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Lexeme != want.lexeme || tok.Line != want.line || tok.Column != want.column {
			t.Fatalf("token[%d]: got %q at %d:%d, want %q at %d:%d",
				i, tok.Lexeme, tok.Line, tok.Column, want.lexeme, want.line, want.column)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	l := New(`"a\nb\"c\\d"`)
	tok := l.NextToken()
	if tok.Type != token.STRING {
		t.Fatalf("expected STRING, got %q", tok.Type)
	}
	if tok.Literal != "a\nb\"c\\d" {
		t.Fatalf("wrong unescape: %q", tok.Literal)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"abc`)
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL for unterminated string, got %q", tok.Type)
	}
}
