package runtime

// Type conversions of the value algebra.

// ToNumber converts money (amount / 10,000), percentage (identity on
// the stored double), ratio (numerator / denominator), or number.
func (s *Store) ToNumber(h Handle) (Handle, error) {
	switch s.Kind(h) {
	case KindNumber:
		return s.NewNumber(s.Number(h))
	case KindMoney:
		amount, _ := s.Money(h)
		return s.NewNumber(float64(amount) / MoneyScale)
	case KindPercentage:
		return s.NewNumber(s.Percentage(h))
	case KindRatio:
		n, d := s.Ratio(h)
		return s.NewNumber(n / d)
	}
	return NoHandle, newError(TypeMismatch, "cannot convert %s to number", s.Kind(h))
}

// ToMoney converts a number using the supplied default currency, or
// re-denominates nothing for money (a plain copy).
func (s *Store) ToMoney(h Handle, defaultCurrency string) (Handle, error) {
	switch s.Kind(h) {
	case KindMoney:
		amount, currency := s.Money(h)
		return s.NewMoney(amount, currency)
	case KindNumber:
		return s.NewMoney(scaleToSubUnits(s.Number(h)), defaultCurrency)
	}
	return NoHandle, newError(TypeMismatch, "cannot convert %s to money", s.Kind(h))
}

// ToPercentage converts a number (identity on the stored double) or
// percentage.
func (s *Store) ToPercentage(h Handle) (Handle, error) {
	switch s.Kind(h) {
	case KindPercentage:
		return s.NewPercentage(s.Percentage(h))
	case KindNumber:
		return s.NewPercentage(s.Number(h))
	}
	return NoHandle, newError(TypeMismatch, "cannot convert %s to percentage", s.Kind(h))
}

// DateToDateTime fills midnight.
func (s *Store) DateToDateTime(h Handle) (Handle, error) {
	if s.Kind(h) != KindDate {
		return NoHandle, newError(TypeMismatch, "cannot convert %s to date_time", s.Kind(h))
	}
	return s.NewDateTime(s.DateOf(h), Time{})
}

// DateTimeToDate projects the date component.
func (s *Store) DateTimeToDate(h Handle) (Handle, error) {
	if s.Kind(h) != KindDateTime {
		return NoHandle, newError(TypeMismatch, "cannot convert %s to date", s.Kind(h))
	}
	return s.NewDate(s.DateOf(h))
}

// DateTimeToTime projects the time component.
func (s *Store) DateTimeToTime(h Handle) (Handle, error) {
	if s.Kind(h) != KindDateTime {
		return NoHandle, newError(TypeMismatch, "cannot convert %s to time", s.Kind(h))
	}
	return s.NewTime(s.TimeOf(h))
}
