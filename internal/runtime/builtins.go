package runtime

import (
	"fmt"
	"math"
	"strings"

	"github.com/solifugus/mbl/internal/token"
)

// Builtins beyond literal printing: value helpers, the date
// arithmetic used by business programs, and the text slice/splice
// operations.

func registerBuiltins(rt *Runtime) {
	for _, b := range []*Builtin{
		{Name: "print", Fn: builtinPrint},
		{Name: "type", Fn: builtinType},
		{Name: "len", Fn: builtinLen},
		{Name: "copy", Fn: builtinCopy},
		{Name: "number", Fn: builtinNumber},
		{Name: "money", Fn: builtinMoney},
		{Name: "percent", Fn: builtinPercent},
		{Name: "ratio", Fn: builtinRatio},
		{Name: "addDays", Fn: builtinAddDays},
		{Name: "nextDay", Fn: builtinNextDay},
		{Name: "previousDay", Fn: builtinPreviousDay},
		{Name: "today", Fn: builtinToday},
		{Name: "now", Fn: builtinNow},
		{Name: "slice", Fn: builtinSlice},
		{Name: "splice", Fn: builtinSplice},
		{Name: "history", Fn: builtinHistory},
	} {
		h, err := rt.store.NewBuiltin(b)
		if err != nil {
			panic(err) // arena cannot be full at construction
		}
		rt.global.Define(b.Name, h)
	}
}

func wantArgs(tok token.Token, name string, args []Handle, n int) error {
	if len(args) != n {
		return newErrorAt(ArgumentMismatch, tok, "%s expects %d arguments, got %d", name, n, len(args))
	}
	return nil
}

func builtinPrint(rt *Runtime, tok token.Token, args []Handle) (Handle, error) {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = rt.store.Inspect(arg)
	}
	fmt.Fprintln(rt.out, strings.Join(parts, " "))
	return rt.store.Nil(), nil
}

func builtinType(rt *Runtime, tok token.Token, args []Handle) (Handle, error) {
	if err := wantArgs(tok, "type", args, 1); err != nil {
		return NoHandle, err
	}
	return rt.store.NewText(rt.store.Kind(args[0]).String())
}

func builtinLen(rt *Runtime, tok token.Token, args []Handle) (Handle, error) {
	if err := wantArgs(tok, "len", args, 1); err != nil {
		return NoHandle, err
	}
	switch rt.store.Kind(args[0]) {
	case KindList:
		return rt.store.NewNumber(float64(len(rt.store.List(args[0]))))
	case KindText:
		return rt.store.NewNumber(float64(len(rt.store.Text(args[0]))))
	case KindRecord:
		return rt.store.NewNumber(float64(len(rt.store.flattenRecord(args[0]))))
	}
	return NoHandle, newErrorAt(TypeMismatch, tok, "len does not apply to %s", rt.store.Kind(args[0]))
}

func builtinCopy(rt *Runtime, tok token.Token, args []Handle) (Handle, error) {
	if err := wantArgs(tok, "copy", args, 1); err != nil {
		return NoHandle, err
	}
	return rt.store.DeepCopy(args[0])
}

func builtinNumber(rt *Runtime, tok token.Token, args []Handle) (Handle, error) {
	if err := wantArgs(tok, "number", args, 1); err != nil {
		return NoHandle, err
	}
	return rt.store.ToNumber(args[0])
}

func builtinMoney(rt *Runtime, tok token.Token, args []Handle) (Handle, error) {
	switch len(args) {
	case 1:
		return rt.store.ToMoney(args[0], rt.opts.DefaultCurrency)
	case 2:
		if rt.store.Kind(args[1]) != KindText {
			return NoHandle, newErrorAt(TypeMismatch, tok, "money currency must be text")
		}
		return rt.store.ToMoney(args[0], rt.store.Text(args[1]))
	}
	return NoHandle, newErrorAt(ArgumentMismatch, tok, "money expects 1 or 2 arguments, got %d", len(args))
}

func builtinPercent(rt *Runtime, tok token.Token, args []Handle) (Handle, error) {
	if err := wantArgs(tok, "percent", args, 1); err != nil {
		return NoHandle, err
	}
	return rt.store.ToPercentage(args[0])
}

func builtinRatio(rt *Runtime, tok token.Token, args []Handle) (Handle, error) {
	if err := wantArgs(tok, "ratio", args, 2); err != nil {
		return NoHandle, err
	}
	if rt.store.Kind(args[0]) != KindNumber || rt.store.Kind(args[1]) != KindNumber {
		return NoHandle, newErrorAt(TypeMismatch, tok, "ratio expects number arguments")
	}
	if rt.store.Number(args[1]) == 0 {
		return NoHandle, newErrorAt(DivisionByZero, tok, "ratio denominator must be nonzero")
	}
	return rt.store.NewRatio(rt.store.Number(args[0]), rt.store.Number(args[1]))
}

func builtinAddDays(rt *Runtime, tok token.Token, args []Handle) (Handle, error) {
	if err := wantArgs(tok, "addDays", args, 2); err != nil {
		return NoHandle, err
	}
	if rt.store.Kind(args[0]) != KindDate {
		return NoHandle, newErrorAt(TypeMismatch, tok, "addDays expects a date, got %s", rt.store.Kind(args[0]))
	}
	if rt.store.Kind(args[1]) != KindNumber {
		return NoHandle, newErrorAt(TypeMismatch, tok, "addDays expects a number of days")
	}
	n := rt.store.Number(args[1])
	if n != math.Trunc(n) {
		return NoHandle, newErrorAt(TypeMismatch, tok, "addDays expects a whole number of days")
	}
	return rt.store.NewDate(AddDays(rt.store.DateOf(args[0]), int(n)))
}

func builtinNextDay(rt *Runtime, tok token.Token, args []Handle) (Handle, error) {
	if err := wantArgs(tok, "nextDay", args, 1); err != nil {
		return NoHandle, err
	}
	if rt.store.Kind(args[0]) != KindDate {
		return NoHandle, newErrorAt(TypeMismatch, tok, "nextDay expects a date, got %s", rt.store.Kind(args[0]))
	}
	return rt.store.NewDate(NextDay(rt.store.DateOf(args[0])))
}

func builtinPreviousDay(rt *Runtime, tok token.Token, args []Handle) (Handle, error) {
	if err := wantArgs(tok, "previousDay", args, 1); err != nil {
		return NoHandle, err
	}
	if rt.store.Kind(args[0]) != KindDate {
		return NoHandle, newErrorAt(TypeMismatch, tok, "previousDay expects a date, got %s", rt.store.Kind(args[0]))
	}
	return rt.store.NewDate(PreviousDay(rt.store.DateOf(args[0])))
}

func builtinToday(rt *Runtime, tok token.Token, args []Handle) (Handle, error) {
	if err := wantArgs(tok, "today", args, 0); err != nil {
		return NoHandle, err
	}
	y, m, d := rt.now().Date()
	return rt.store.NewDate(Date{Year: y, Month: int(m), Day: d})
}

func builtinNow(rt *Runtime, tok token.Token, args []Handle) (Handle, error) {
	if err := wantArgs(tok, "now", args, 0); err != nil {
		return NoHandle, err
	}
	t := rt.now()
	y, m, d := t.Date()
	return rt.store.NewDateTime(
		Date{Year: y, Month: int(m), Day: d},
		Time{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Milli: t.Nanosecond() / 1e6},
	)
}

// builtinSlice copies text[start..end] inclusive into a new text
// value.
func builtinSlice(rt *Runtime, tok token.Token, args []Handle) (Handle, error) {
	if err := wantArgs(tok, "slice", args, 3); err != nil {
		return NoHandle, err
	}
	if rt.store.Kind(args[0]) != KindText {
		return NoHandle, newErrorAt(TypeMismatch, tok, "slice expects text, got %s", rt.store.Kind(args[0]))
	}
	start, err := intArg(rt, tok, args[1], "slice start")
	if err != nil {
		return NoHandle, err
	}
	end, err := intArg(rt, tok, args[2], "slice end")
	if err != nil {
		return NoHandle, err
	}
	text := rt.store.Text(args[0])
	if start < 0 || end < start || end >= len(text) {
		return NoHandle, newErrorAt(IndexOutOfRange, tok, "slice bounds [%d, %d] out of range for text of %d", start, end, len(text))
	}
	return rt.store.NewText(text[start : end+1])
}

// builtinSplice replaces deleteCount bytes of text at index with
// insertText, returning a new text value.
func builtinSplice(rt *Runtime, tok token.Token, args []Handle) (Handle, error) {
	if err := wantArgs(tok, "splice", args, 4); err != nil {
		return NoHandle, err
	}
	if rt.store.Kind(args[0]) != KindText || rt.store.Kind(args[3]) != KindText {
		return NoHandle, newErrorAt(TypeMismatch, tok, "splice expects text operands")
	}
	index, err := intArg(rt, tok, args[1], "splice index")
	if err != nil {
		return NoHandle, err
	}
	deleteCount, err := intArg(rt, tok, args[2], "splice delete count")
	if err != nil {
		return NoHandle, err
	}
	text := rt.store.Text(args[0])
	if index < 0 || index > len(text) || deleteCount < 0 || index+deleteCount > len(text) {
		return NoHandle, newErrorAt(IndexOutOfRange, tok, "splice bounds out of range for text of %d", len(text))
	}
	return rt.store.NewText(text[:index] + rt.store.Text(args[3]) + text[index+deleteCount:])
}

// builtinHistory returns the committed-write history for a name,
// newest first, as records {value, asof}.
func builtinHistory(rt *Runtime, tok token.Token, args []Handle) (Handle, error) {
	if err := wantArgs(tok, "history", args, 1); err != nil {
		return NoHandle, err
	}
	if rt.store.Kind(args[0]) != KindText {
		return NoHandle, newErrorAt(TypeMismatch, tok, "history expects a name as text")
	}

	chain := rt.history[rt.store.Text(args[0])]
	entries := make([]Handle, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		value := chain[i].Value
		if value == NoHandle {
			value = rt.store.Unknown()
		}
		asof, err := rt.store.NewText(chain[i].AsOf.Format("2006-01-02 15:04:05.000"))
		if err != nil {
			return NoHandle, err
		}
		entry, err := rt.store.NewRecord(map[string]Handle{"value": value, "asof": asof}, NoHandle)
		if err != nil {
			return NoHandle, err
		}
		entries = append(entries, entry)
	}
	return rt.store.NewList(entries)
}

func intArg(rt *Runtime, tok token.Token, h Handle, what string) (int, error) {
	if rt.store.Kind(h) != KindNumber {
		return 0, newErrorAt(TypeMismatch, tok, "%s must be a number, got %s", what, rt.store.Kind(h))
	}
	v := rt.store.Number(h)
	if v != math.Trunc(v) {
		return 0, newErrorAt(TypeMismatch, tok, "%s must be an integer", what)
	}
	return int(v), nil
}
