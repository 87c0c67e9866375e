package runtime

import "math"

// Value algebra: pure functions over handles. Every operation fails
// with TypeMismatch when the operands do not fit the rules, and never
// mutates its operands.

// Add implements +.
func (s *Store) Add(left, right Handle) (Handle, error) {
	lk, rk := s.Kind(left), s.Kind(right)
	switch {
	case lk == KindNumber && rk == KindNumber:
		return s.NewNumber(s.Number(left) + s.Number(right))
	case lk == KindNumber && rk == KindMoney:
		amount, currency := s.Money(right)
		return s.NewMoney(amount+scaleToSubUnits(s.Number(left)), currency)
	case lk == KindMoney && rk == KindNumber:
		amount, currency := s.Money(left)
		return s.NewMoney(amount+scaleToSubUnits(s.Number(right)), currency)
	case lk == KindMoney && rk == KindMoney:
		la, lc := s.Money(left)
		ra, rc := s.Money(right)
		if lc != rc {
			return NoHandle, newError(CurrencyMismatch, "cannot add %s to %s", rc, lc)
		}
		return s.NewMoney(la+ra, lc)
	case lk == KindPercentage && rk == KindPercentage:
		return s.NewPercentage(s.Percentage(left) + s.Percentage(right))
	}
	return NoHandle, newError(TypeMismatch, "unsupported operand types for +: %s and %s", lk, rk)
}

// Sub implements -.
func (s *Store) Sub(left, right Handle) (Handle, error) {
	lk, rk := s.Kind(left), s.Kind(right)
	switch {
	case lk == KindNumber && rk == KindNumber:
		return s.NewNumber(s.Number(left) - s.Number(right))
	case lk == KindNumber && rk == KindMoney:
		amount, currency := s.Money(right)
		return s.NewMoney(scaleToSubUnits(s.Number(left))-amount, currency)
	case lk == KindMoney && rk == KindNumber:
		amount, currency := s.Money(left)
		return s.NewMoney(amount-scaleToSubUnits(s.Number(right)), currency)
	case lk == KindMoney && rk == KindMoney:
		la, lc := s.Money(left)
		ra, rc := s.Money(right)
		if lc != rc {
			return NoHandle, newError(CurrencyMismatch, "cannot subtract %s from %s", rc, lc)
		}
		return s.NewMoney(la-ra, lc)
	case lk == KindPercentage && rk == KindPercentage:
		return s.NewPercentage(s.Percentage(left) - s.Percentage(right))
	}
	return NoHandle, newError(TypeMismatch, "unsupported operand types for -: %s and %s", lk, rk)
}

// Mul implements *.
func (s *Store) Mul(left, right Handle) (Handle, error) {
	lk, rk := s.Kind(left), s.Kind(right)
	switch {
	case lk == KindNumber && rk == KindNumber:
		return s.NewNumber(s.Number(left) * s.Number(right))
	case lk == KindMoney && rk == KindNumber:
		return s.scaleMoney(left, s.Number(right))
	case lk == KindNumber && rk == KindMoney:
		return s.scaleMoney(right, s.Number(left))
	case lk == KindPercentage && rk == KindMoney:
		return s.scaleMoney(right, s.Percentage(left)/100)
	case lk == KindMoney && rk == KindPercentage:
		return s.scaleMoney(left, s.Percentage(right)/100)
	case lk == KindPercentage && rk == KindPercentage:
		return s.NewPercentage(s.Percentage(left) * s.Percentage(right) / 100)
	case lk == KindPercentage && rk == KindNumber:
		return s.NewNumber(s.Number(right) * s.Percentage(left) / 100)
	case lk == KindNumber && rk == KindPercentage:
		return s.NewNumber(s.Number(left) * s.Percentage(right) / 100)
	case lk == KindRatio && rk == KindRatio:
		ln, ld := s.Ratio(left)
		rn, rd := s.Ratio(right)
		return s.NewRatio(ln*rn, ld*rd)
	}
	return NoHandle, newError(TypeMismatch, "unsupported operand types for *: %s and %s", lk, rk)
}

// Div implements /.
func (s *Store) Div(left, right Handle) (Handle, error) {
	lk, rk := s.Kind(left), s.Kind(right)
	switch {
	case lk == KindNumber && rk == KindNumber:
		if s.Number(right) == 0 {
			return NoHandle, newError(DivisionByZero, "division by zero")
		}
		return s.NewNumber(s.Number(left) / s.Number(right))
	case lk == KindMoney && rk == KindNumber:
		if s.Number(right) == 0 {
			return NoHandle, newError(DivisionByZero, "division by zero")
		}
		return s.scaleMoney(left, 1/s.Number(right))
	case lk == KindMoney && rk == KindMoney:
		la, lc := s.Money(left)
		ra, rc := s.Money(right)
		if lc != rc {
			return NoHandle, newError(CurrencyMismatch, "cannot divide %s by %s", lc, rc)
		}
		if ra == 0 {
			return NoHandle, newError(DivisionByZero, "division by zero")
		}
		// Matching currencies cancel into a unitless number ratio.
		return s.NewNumber(float64(la) / float64(ra))
	case lk == KindRatio && rk == KindRatio:
		ln, ld := s.Ratio(left)
		rn, rd := s.Ratio(right)
		if rn == 0 {
			return NoHandle, newError(DivisionByZero, "division by a zero ratio")
		}
		return s.NewRatio(ln*rd, ld*rn)
	}
	return NoHandle, newError(TypeMismatch, "unsupported operand types for /: %s and %s", lk, rk)
}

// Negate implements unary minus.
func (s *Store) Negate(h Handle) (Handle, error) {
	switch s.Kind(h) {
	case KindNumber:
		return s.NewNumber(-s.Number(h))
	case KindMoney:
		amount, currency := s.Money(h)
		return s.NewMoney(-amount, currency)
	case KindPercentage:
		return s.NewPercentage(-s.Percentage(h))
	case KindRatio:
		n, d := s.Ratio(h)
		return s.NewRatio(-n, d)
	}
	return NoHandle, newError(TypeMismatch, "unsupported operand type for unary -: %s", s.Kind(h))
}

// Not implements unary !.
func (s *Store) Not(h Handle) (Handle, error) {
	if s.Kind(h) != KindBoolean {
		return NoHandle, newError(TypeMismatch, "unsupported operand type for !: %s", s.Kind(h))
	}
	return s.Boolean(!s.Bool(h)), nil
}

func (s *Store) scaleMoney(h Handle, factor float64) (Handle, error) {
	amount, currency := s.Money(h)
	return s.NewMoney(int64(math.Round(float64(amount)*factor)), currency)
}

// scaleToSubUnits lifts a number onto money's fixed sub-unit scale.
func scaleToSubUnits(v float64) int64 {
	return int64(math.Round(v * MoneyScale))
}
