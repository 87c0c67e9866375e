package runtime

// Compare returns -1, 0, or +1. The comparable pairs are those of the
// value algebra: numeric kinds lifted to the real line, money against
// money of the same currency, dates/times/date-times component-wise,
// text by byte order, booleans with true > false.
func (s *Store) Compare(left, right Handle) (int, error) {
	lk, rk := s.Kind(left), s.Kind(right)

	if isNumeric(lk) && isNumeric(rk) {
		if lk == KindMoney && rk == KindMoney {
			_, lc := s.Money(left)
			_, rc := s.Money(right)
			if lc != rc {
				return 0, newError(CurrencyMismatch, "cannot compare %s with %s", lc, rc)
			}
		}
		return sign(s.lift(left) - s.lift(right)), nil
	}

	switch {
	case lk == KindText && rk == KindText:
		lt, rt := s.Text(left), s.Text(right)
		switch {
		case lt < rt:
			return -1, nil
		case lt > rt:
			return 1, nil
		}
		return 0, nil
	case lk == KindDate && rk == KindDate:
		return compareDates(s.DateOf(left), s.DateOf(right)), nil
	case lk == KindTime && rk == KindTime:
		return compareTimes(s.TimeOf(left), s.TimeOf(right)), nil
	case lk == KindDateTime && rk == KindDateTime:
		if c := compareDates(s.DateOf(left), s.DateOf(right)); c != 0 {
			return c, nil
		}
		return compareTimes(s.TimeOf(left), s.TimeOf(right)), nil
	case lk == KindBoolean && rk == KindBoolean:
		return sign(boolToFloat(s.Bool(left)) - boolToFloat(s.Bool(right))), nil
	}
	return 0, newError(TypeMismatch, "cannot compare %s with %s", lk, rk)
}

// Equal reports strict equality: comparison == 0, with mismatches
// (including CurrencyMismatch) propagated as errors. Compound values
// compare structurally; nil and unknown are each equal only to
// themselves.
func (s *Store) Equal(left, right Handle) (bool, error) {
	lk, rk := s.Kind(left), s.Kind(right)

	switch {
	case lk == KindNil && rk == KindNil,
		lk == KindUnknown && rk == KindUnknown:
		return true, nil
	case lk == KindList && rk == KindList:
		ll, rl := s.List(left), s.List(right)
		if len(ll) != len(rl) {
			return false, nil
		}
		for i := range ll {
			eq, err := s.Equal(ll[i], rl[i])
			if err != nil {
				return false, err
			}
			if !eq {
				return false, nil
			}
		}
		return true, nil
	case lk == KindRecord && rk == KindRecord:
		return s.recordsEqual(left, right, true)
	case lk == KindNil || rk == KindNil || lk == KindUnknown || rk == KindUnknown:
		// Absence never equals a present value.
		return false, nil
	}
	c, err := s.Compare(left, right)
	if err != nil {
		return false, err
	}
	return c == 0, nil
}

// LooseEqual is equality for callers that explicitly ask for the
// loose form: a CurrencyMismatch becomes false instead of an error.
func (s *Store) LooseEqual(left, right Handle) (bool, error) {
	eq, err := s.Equal(left, right)
	if err != nil && KindOf(err) == CurrencyMismatch {
		return false, nil
	}
	return eq, err
}

// StructuralEqual is the non-erroring equality used by the assignment
// protocol's no-change check: values of different kinds are simply
// unequal, as are money values in different currencies.
func (s *Store) StructuralEqual(left, right Handle) bool {
	if left == right {
		return true
	}
	lk, rk := s.Kind(left), s.Kind(right)
	if lk != rk {
		return false
	}
	switch lk {
	case KindList:
		ll, rl := s.List(left), s.List(right)
		if len(ll) != len(rl) {
			return false
		}
		for i := range ll {
			if !s.StructuralEqual(ll[i], rl[i]) {
				return false
			}
		}
		return true
	case KindRecord:
		eq, _ := s.recordsEqual(left, right, false)
		return eq
	case KindNil, KindUnknown:
		return true
	case KindMoney:
		la, lc := s.Money(left)
		ra, rc := s.Money(right)
		return lc == rc && la == ra
	case KindRatio:
		ln, ld := s.Ratio(left)
		rn, rd := s.Ratio(right)
		return ln == rn && ld == rd
	case KindFunction, KindBuiltin, KindTrigger, KindConstraint:
		return false
	}
	c, err := s.Compare(left, right)
	return err == nil && c == 0
}

// recordsEqual compares records field-by-field including parent
// chains; strict mode propagates comparison errors from field values.
func (s *Store) recordsEqual(left, right Handle, strict bool) (bool, error) {
	lf := s.flattenRecord(left)
	rf := s.flattenRecord(right)
	if len(lf) != len(rf) {
		return false, nil
	}
	for k, lv := range lf {
		rv, ok := rf[k]
		if !ok {
			return false, nil
		}
		if strict {
			eq, err := s.Equal(lv, rv)
			if err != nil {
				return false, err
			}
			if !eq {
				return false, nil
			}
		} else if !s.StructuralEqual(lv, rv) {
			return false, nil
		}
	}
	return true, nil
}

// flattenRecord resolves the visible fields of a record: own fields
// shadow inherited ones.
func (s *Store) flattenRecord(h Handle) map[string]Handle {
	flat := map[string]Handle{}
	var chain []Handle
	for h != NoHandle {
		chain = append(chain, h)
		h = s.RecordParent(h)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range s.RecordFields(chain[i]) {
			flat[k] = v
		}
	}
	return flat
}

// lift maps a numeric value onto the real line: money divides by the
// sub-unit scale; numbers and percentages are their stored doubles.
func (s *Store) lift(h Handle) float64 {
	switch s.Kind(h) {
	case KindMoney:
		amount, _ := s.Money(h)
		return float64(amount) / MoneyScale
	default:
		return s.cells[h].num
	}
}

func isNumeric(k Kind) bool {
	return k == KindNumber || k == KindMoney || k == KindPercentage
}

func compareDates(l, r Date) int {
	if c := sign(float64(l.Year - r.Year)); c != 0 {
		return c
	}
	if c := sign(float64(l.Month - r.Month)); c != 0 {
		return c
	}
	return sign(float64(l.Day - r.Day))
}

func compareTimes(l, r Time) int {
	if c := sign(float64(l.Hour - r.Hour)); c != 0 {
		return c
	}
	if c := sign(float64(l.Minute - r.Minute)); c != 0 {
		return c
	}
	if c := sign(float64(l.Second - r.Second)); c != 0 {
		return c
	}
	return sign(float64(l.Milli - r.Milli))
}

func sign(v float64) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
