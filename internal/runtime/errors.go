package runtime

import (
	"fmt"

	"github.com/solifugus/mbl/internal/token"
)

// ErrorKind identifies the failure class carried by a runtime error.
type ErrorKind string

const (
	// Value algebra
	TypeMismatch     ErrorKind = "TypeMismatch"
	InvalidOperator  ErrorKind = "InvalidOperator"
	DivisionByZero   ErrorKind = "DivisionByZero"
	CurrencyMismatch ErrorKind = "CurrencyMismatch"

	// Evaluator
	UndefinedName           ErrorKind = "UndefinedName"
	ArgumentMismatch        ErrorKind = "ArgumentMismatch"
	InvalidCallTarget       ErrorKind = "InvalidCallTarget"
	InvalidAssignmentTarget ErrorKind = "InvalidAssignmentTarget"
	IndexOutOfRange         ErrorKind = "IndexOutOfRange"
	ReturnOutsideFunction   ErrorKind = "ReturnOutsideFunction"

	// Constraint engine
	ConstraintViolation ErrorKind = "ConstraintViolation"
	HealingOverflow     ErrorKind = "HealingOverflow"

	// Registration APIs
	InvalidValue ErrorKind = "InvalidValue"

	// Value store
	ResourceExhausted ErrorKind = "ResourceExhausted"
)

// Error is a runtime failure with its kind and, when known, the
// offending 1-based source position.
type Error struct {
	Kind    ErrorKind
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

func newErrorAt(kind ErrorKind, tok token.Token, format string, a ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, a...),
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

// KindOf extracts the error kind, or "" for a non-runtime error.
func KindOf(err error) ErrorKind {
	if rerr, ok := err.(*Error); ok {
		return rerr.Kind
	}
	return ""
}

// returnSignal unwinds a return statement to the enclosing call. It
// travels as an error so every evaluation path propagates it; the
// call boundary consumes it, and the top level converts it to
// ReturnOutsideFunction.
type returnSignal struct {
	value Handle
}

func (r *returnSignal) Error() string { return "return outside function" }
