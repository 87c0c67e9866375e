package runtime

import (
	"github.com/solifugus/mbl/internal/ast"
	"github.com/solifugus/mbl/internal/token"
)

// Kind tags a value's variant.
type Kind uint8

const (
	KindNumber Kind = iota
	KindText
	KindMoney
	KindTime
	KindDate
	KindDateTime
	KindPercentage
	KindRatio
	KindBoolean
	KindUnknown
	KindNil
	KindList
	KindRecord
	KindFunction
	KindBuiltin
	KindTrigger
	KindConstraint
)

var kindNames = map[Kind]string{
	KindNumber:     "number",
	KindText:       "text",
	KindMoney:      "money",
	KindTime:       "time",
	KindDate:       "date",
	KindDateTime:   "date_time",
	KindPercentage: "percentage",
	KindRatio:      "ratio",
	KindBoolean:    "boolean",
	KindUnknown:    "unknown",
	KindNil:        "nil",
	KindList:       "list",
	KindRecord:     "record",
	KindFunction:   "function",
	KindBuiltin:    "builtin",
	KindTrigger:    "trigger",
	KindConstraint: "constraint",
}

func (k Kind) String() string { return kindNames[k] }

// Handle is an opaque index into a Store's arena. Handles stay valid
// for the lifetime of the runtime instance.
type Handle int32

// NoHandle marks an absent handle (e.g. a record without a parent).
const NoHandle Handle = -1

// MoneyScale is the fixed number of sub-units per whole unit,
// regardless of currency. Display precision is independent.
const MoneyScale = 10000

// Date is a calendar date. Day always satisfies
// day <= daysInMonth(year, month).
type Date struct {
	Year  int
	Month int
	Day   int
}

// Time is a clock time with millisecond precision.
type Time struct {
	Hour   int
	Minute int
	Second int
	Milli  int
}

// TriggerEvent selects when a trigger is invoked by the scheduler.
type TriggerEvent string

const (
	EventDataChanged TriggerEvent = "data_changed"
	EventTimer       TriggerEvent = "timer"
	EventStartup     TriggerEvent = "startup"
	EventShutdown    TriggerEvent = "shutdown"
	EventCustom      TriggerEvent = "custom"
)

// Function is a first-class function value: named or anonymous, with
// its body AST and the environment captured at definition.
type Function struct {
	Name       string
	Parameters []string
	Body       ast.Node
	Env        *Environment
}

// BuiltinFunc is a native function exposed to programs.
type BuiltinFunc func(rt *Runtime, tok token.Token, args []Handle) (Handle, error)

// Builtin is a native function value.
type Builtin struct {
	Name string
	Fn   BuiltinFunc
}

// Trigger pairs a boolean-returning condition AST with an action AST.
// Data-changed triggers fire batched at moment boundaries when any
// referenced name changed.
type Trigger struct {
	Name      string
	Event     TriggerEvent
	Condition ast.Node
	Action    ast.Node
}

// Constraint pairs a boolean-returning condition AST with an optional
// healing action, evaluated synchronously on every assignment to any
// referenced name.
type Constraint struct {
	Name      string
	Condition ast.Node
	Heal      ast.Node // nil when the constraint has no healing action
}

// cell is one arena slot. Only the fields for its kind are meaningful.
type cell struct {
	kind Kind

	num      float64 // number, percentage; ratio numerator
	den      float64 // ratio denominator
	amount   int64   // money sub-units
	currency string
	text     string
	boolean  bool
	date     Date
	time     Time

	list   []Handle
	fields map[string]Handle
	parent Handle // record parent, or NoHandle

	fn         *Function
	builtin    *Builtin
	trigger    *Trigger
	constraint *Constraint
}
