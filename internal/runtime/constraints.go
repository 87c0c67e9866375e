package runtime

// Constraint engine: enforces every constraint that references a name
// whose binding is about to change. Synchronous and single-threaded
// relative to the evaluator.

// applyWrite runs the assignment protocol for a prepared write:
//
//  1. If the new value is structurally equal to the current binding,
//     skip the engine entirely (no observable change).
//  2. Commit the write tentatively.
//  3. Evaluate each constraint referencing the name; heal and
//     re-check where a healing action exists.
//  4. On failure, restore the prior binding and fail with
//     ConstraintViolation; the name is not marked in the change log.
//  5. On success, mark the name and record history.
func (rt *Runtime) applyWrite(op writeOp) error {
	if op.equal {
		return nil
	}

	op.commit()

	if err := rt.enforceConstraints(op); err != nil {
		op.rollback()
		return err
	}

	logName := op.name
	if logName == "" {
		logName = wildcardName
	}
	rt.changeLog.Mark(logName)
	rt.recordHistory(op)
	return nil
}

func (rt *Runtime) enforceConstraints(op writeOp) error {
	for _, h := range rt.constraintsFor(op.name) {
		if err := rt.enforceConstraint(h, op); err != nil {
			return err
		}
	}
	return nil
}

// constraintsFor selects constraint watchers for the affected name;
// an unextractable name pessimistically selects every constraint.
func (rt *Runtime) constraintsFor(name string) []Handle {
	var candidates []Handle
	if name == "" {
		candidates = rt.deps.AllWatchers()
	} else {
		candidates = rt.deps.Watchers(name)
	}
	var constraints []Handle
	for _, h := range candidates {
		if rt.store.Kind(h) == KindConstraint {
			constraints = append(constraints, h)
		}
	}
	return constraints
}

func (rt *Runtime) enforceConstraint(h Handle, op writeOp) error {
	c := rt.store.ConstraintOf(h)

	ok, err := rt.constraintHolds(c, op.env)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	if c.Heal != nil {
		rt.emit(EventHealingInvoked, c.Name, op.name)
		if err := rt.runHealing(c, op.env); err != nil {
			return err
		}
		ok, err = rt.constraintHolds(c, op.env)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		rt.emit(EventHealingFailed, c.Name, op.name)
	}

	rt.emit(EventConstraintViolation, c.Name, op.name)
	return newErrorAt(ConstraintViolation, op.tok,
		"assignment to %q violates constraint %q", op.name, c.Name)
}

// constraintHolds evaluates the condition in the assignment's
// environment; only a boolean true satisfies the constraint.
func (rt *Runtime) constraintHolds(c *Constraint, env *Environment) (bool, error) {
	h, err := rt.eval.Eval(c.Condition, env)
	if err != nil {
		return false, err
	}
	return rt.store.Kind(h) == KindBoolean && rt.store.Bool(h), nil
}

// runHealing evaluates the healing action. Healing actions may
// themselves perform assignments, which recursively invoke the
// engine; the recursion depth is bounded.
func (rt *Runtime) runHealing(c *Constraint, env *Environment) error {
	rt.healDepth++
	defer func() { rt.healDepth-- }()
	if rt.healDepth > rt.opts.HealingDepth {
		return newError(HealingOverflow,
			"healing for constraint %q exceeded depth %d", c.Name, rt.opts.HealingDepth)
	}
	_, err := rt.eval.Eval(c.Heal, env)
	return err
}
