package runtime

// Locked allocation wrappers for external callers (drivers, tests)
// that may race the moment loop. Code already running on the
// runtime's thread uses the Store directly.

func (rt *Runtime) NewNumber(v float64) (Handle, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.store.NewNumber(v)
}

func (rt *Runtime) NewText(v string) (Handle, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.store.NewText(v)
}

func (rt *Runtime) NewMoney(amount int64, currency string) (Handle, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if currency == "" {
		currency = rt.opts.DefaultCurrency
	}
	return rt.store.NewMoney(amount, currency)
}

func (rt *Runtime) NewDate(d Date) (Handle, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.store.NewDate(d)
}

func (rt *Runtime) NewTime(t Time) (Handle, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.store.NewTime(t)
}

func (rt *Runtime) NewDateTime(d Date, t Time) (Handle, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.store.NewDateTime(d, t)
}

func (rt *Runtime) NewPercentage(v float64) (Handle, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.store.NewPercentage(v)
}

func (rt *Runtime) NewRatio(numerator, denominator float64) (Handle, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.store.NewRatio(numerator, denominator)
}

func (rt *Runtime) NewBoolean(v bool) Handle {
	return rt.store.Boolean(v) // singletons, no allocation
}

func (rt *Runtime) NewList(elements []Handle) (Handle, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.store.NewList(elements)
}

func (rt *Runtime) NewRecord(fields map[string]Handle, parent Handle) (Handle, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.store.NewRecord(fields, parent)
}

func (rt *Runtime) NewTrigger(t *Trigger) (Handle, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.store.NewTrigger(t)
}

func (rt *Runtime) NewConstraint(c *Constraint) (Handle, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.store.NewConstraint(c)
}

// InspectHandle renders a value for display under the runtime lock.
func (rt *Runtime) InspectHandle(h Handle) string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.store.Inspect(h)
}
