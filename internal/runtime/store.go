package runtime

// maxStoreCells bounds arena growth; allocation past it fails with
// ResourceExhausted.
const maxStoreCells = 1 << 24

// Store is the arena owning every live value. It hands out stable
// handles; cells are never reclaimed during a program (arena
// semantics) and are released en bloc when the runtime is dropped.
type Store struct {
	cells []cell

	// Shared immutable singletons, allocated at construction.
	nilHandle     Handle
	unknownHandle Handle
	trueHandle    Handle
	falseHandle   Handle
}

func NewStore() *Store {
	s := &Store{cells: make([]cell, 0, 256)}
	s.nilHandle, _ = s.alloc(cell{kind: KindNil})
	s.unknownHandle, _ = s.alloc(cell{kind: KindUnknown})
	s.trueHandle, _ = s.alloc(cell{kind: KindBoolean, boolean: true})
	s.falseHandle, _ = s.alloc(cell{kind: KindBoolean, boolean: false})
	return s
}

func (s *Store) alloc(c cell) (Handle, error) {
	if len(s.cells) >= maxStoreCells {
		return NoHandle, newError(ResourceExhausted, "value store is full (%d values)", len(s.cells))
	}
	s.cells = append(s.cells, c)
	return Handle(len(s.cells) - 1), nil
}

// Kind reports the variant tag of the value behind h.
func (s *Store) Kind(h Handle) Kind { return s.cells[h].kind }

// Len reports how many values the arena holds.
func (s *Store) Len() int { return len(s.cells) }

// Constructors. Each produces a fully-initialized value or fails with
// ResourceExhausted (InvalidValue for payloads that violate the data
// model). String payloads are copied into store-owned storage.

func (s *Store) NewNumber(v float64) (Handle, error) {
	return s.alloc(cell{kind: KindNumber, num: v})
}

func (s *Store) NewText(v string) (Handle, error) {
	return s.alloc(cell{kind: KindText, text: ownString(v)})
}

func (s *Store) NewMoney(amount int64, currency string) (Handle, error) {
	if currency == "" {
		return NoHandle, newError(InvalidValue, "money requires a currency")
	}
	return s.alloc(cell{kind: KindMoney, amount: amount, currency: ownString(currency)})
}

func (s *Store) NewTime(t Time) (Handle, error) {
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 ||
		t.Second < 0 || t.Second > 59 || t.Milli < 0 || t.Milli > 999 {
		return NoHandle, newError(InvalidValue, "invalid clock time %02d:%02d:%02d.%03d", t.Hour, t.Minute, t.Second, t.Milli)
	}
	return s.alloc(cell{kind: KindTime, time: t})
}

func (s *Store) NewDate(d Date) (Handle, error) {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > daysInMonth(d.Year, d.Month) {
		return NoHandle, newError(InvalidValue, "invalid calendar date %04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
	return s.alloc(cell{kind: KindDate, date: d})
}

func (s *Store) NewDateTime(d Date, t Time) (Handle, error) {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > daysInMonth(d.Year, d.Month) {
		return NoHandle, newError(InvalidValue, "invalid calendar date %04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 ||
		t.Second < 0 || t.Second > 59 || t.Milli < 0 || t.Milli > 999 {
		return NoHandle, newError(InvalidValue, "invalid clock time %02d:%02d:%02d.%03d", t.Hour, t.Minute, t.Second, t.Milli)
	}
	return s.alloc(cell{kind: KindDateTime, date: d, time: t})
}

func (s *Store) NewPercentage(v float64) (Handle, error) {
	return s.alloc(cell{kind: KindPercentage, num: v})
}

func (s *Store) NewRatio(numerator, denominator float64) (Handle, error) {
	if denominator == 0 {
		return NoHandle, newError(InvalidValue, "ratio denominator must be nonzero")
	}
	return s.alloc(cell{kind: KindRatio, num: numerator, den: denominator})
}

// Boolean returns the shared singleton for v.
func (s *Store) Boolean(v bool) Handle {
	if v {
		return s.trueHandle
	}
	return s.falseHandle
}

// Nil returns the shared nil singleton (explicit absence).
func (s *Store) Nil() Handle { return s.nilHandle }

// Unknown returns the shared unknown singleton (no value observed).
func (s *Store) Unknown() Handle { return s.unknownHandle }

func (s *Store) NewList(elements []Handle) (Handle, error) {
	list := make([]Handle, len(elements))
	copy(list, elements)
	return s.alloc(cell{kind: KindList, list: list})
}

// NewRecord allocates a record with the given fields and optional
// parent (NoHandle for none). Field keys are copied into store-owned
// storage.
func (s *Store) NewRecord(fields map[string]Handle, parent Handle) (Handle, error) {
	if parent != NoHandle && s.Kind(parent) != KindRecord {
		return NoHandle, newError(InvalidValue, "record parent must be a record, got %s", s.Kind(parent))
	}
	owned := make(map[string]Handle, len(fields))
	for k, v := range fields {
		owned[ownString(k)] = v
	}
	return s.alloc(cell{kind: KindRecord, fields: owned, parent: parent})
}

func (s *Store) NewFunction(fn *Function) (Handle, error) {
	return s.alloc(cell{kind: KindFunction, fn: fn})
}

func (s *Store) NewBuiltin(b *Builtin) (Handle, error) {
	return s.alloc(cell{kind: KindBuiltin, builtin: b})
}

func (s *Store) NewTrigger(t *Trigger) (Handle, error) {
	if t.Condition == nil || t.Action == nil {
		return NoHandle, newError(InvalidValue, "trigger requires a condition and an action")
	}
	return s.alloc(cell{kind: KindTrigger, trigger: t})
}

func (s *Store) NewConstraint(c *Constraint) (Handle, error) {
	if c.Condition == nil {
		return NoHandle, newError(InvalidValue, "constraint requires a condition")
	}
	return s.alloc(cell{kind: KindConstraint, constraint: c})
}

// Typed accessors. Callers check Kind first; accessing the wrong kind
// returns the zero value of the payload.

func (s *Store) Number(h Handle) float64 { return s.cells[h].num }
func (s *Store) Text(h Handle) string    { return s.cells[h].text }
func (s *Store) Money(h Handle) (amount int64, currency string) {
	c := &s.cells[h]
	return c.amount, c.currency
}
func (s *Store) TimeOf(h Handle) Time        { return s.cells[h].time }
func (s *Store) DateOf(h Handle) Date        { return s.cells[h].date }
func (s *Store) Percentage(h Handle) float64 { return s.cells[h].num }
func (s *Store) Ratio(h Handle) (numerator, denominator float64) {
	c := &s.cells[h]
	return c.num, c.den
}
func (s *Store) Bool(h Handle) bool                { return s.cells[h].boolean }
func (s *Store) List(h Handle) []Handle            { return s.cells[h].list }
func (s *Store) Function(h Handle) *Function       { return s.cells[h].fn }
func (s *Store) BuiltinOf(h Handle) *Builtin       { return s.cells[h].builtin }
func (s *Store) TriggerOf(h Handle) *Trigger       { return s.cells[h].trigger }
func (s *Store) ConstraintOf(h Handle) *Constraint { return s.cells[h].constraint }

// RecordParent returns a record's parent handle, or NoHandle.
func (s *Store) RecordParent(h Handle) Handle { return s.cells[h].parent }

// RecordFields returns the record's own fields (no parent chain).
// The returned map is the store's own, not a copy: a change to it
// changes the record (assignment rollback deletes a field through it).
func (s *Store) RecordFields(h Handle) map[string]Handle { return s.cells[h].fields }

// RecordLookup resolves a field by walking the parent chain. Writes
// never walk the chain; see RecordSet.
func (s *Store) RecordLookup(h Handle, name string) (Handle, bool) {
	for h != NoHandle {
		c := &s.cells[h]
		if v, ok := c.fields[name]; ok {
			return v, true
		}
		h = c.parent
	}
	return NoHandle, false
}

// RecordSet writes a field locally, shadowing any parent binding.
func (s *Store) RecordSet(h Handle, name string, v Handle) {
	s.cells[h].fields[ownString(name)] = v
}

// ListSet replaces a list element in place.
func (s *Store) ListSet(h Handle, i int, v Handle) {
	s.cells[h].list[i] = v
}

// DeepCopy recursively copies a value. The copy of a record is a
// structurally independent tree: its parent chain is deep-copied too,
// so later mutation of the original parent does not leak into the
// copy. Functions, builtins, triggers, and constraints share their
// immutable payloads.
func (s *Store) DeepCopy(h Handle) (Handle, error) {
	c := s.cells[h]
	switch c.kind {
	case KindBoolean, KindNil, KindUnknown:
		return h, nil
	case KindList:
		elements := make([]Handle, len(c.list))
		for i, el := range c.list {
			cp, err := s.DeepCopy(el)
			if err != nil {
				return NoHandle, err
			}
			elements[i] = cp
		}
		return s.alloc(cell{kind: KindList, list: elements})
	case KindRecord:
		parent := NoHandle
		if c.parent != NoHandle {
			cp, err := s.DeepCopy(c.parent)
			if err != nil {
				return NoHandle, err
			}
			parent = cp
		}
		fields := make(map[string]Handle, len(c.fields))
		for k, v := range c.fields {
			cp, err := s.DeepCopy(v)
			if err != nil {
				return NoHandle, err
			}
			fields[k] = cp
		}
		return s.alloc(cell{kind: KindRecord, fields: fields, parent: parent})
	default:
		// Scalars copy their cell wholesale; string payloads are
		// already store-owned and immutable.
		return s.alloc(c)
	}
}

// ownString copies string bytes into storage owned by the store, so a
// caller keeping a large backing buffer alive does not pin it.
func ownString(v string) string {
	return string(append([]byte(nil), v...))
}
