package runtime

// Environment is a chain of frames mapping names to value handles.
// Insertion adds to the innermost frame; lookup walks outward. The
// runtime is single-threaded (spec'd cooperative scheduling), so no
// locking is needed.
type Environment struct {
	store map[string]Handle
	outer *Environment
}

func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Handle)}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Define binds a name in the innermost frame, shadowing any outer
// binding.
func (e *Environment) Define(name string, h Handle) {
	e.store[name] = h
}

// Lookup walks outward until the name is found.
func (e *Environment) Lookup(name string) (Handle, bool) {
	h, ok := e.store[name]
	if !ok && e.outer != nil {
		return e.outer.Lookup(name)
	}
	return h, ok
}

// Assign writes to the frame that already defines the name. It
// reports false when no frame does; the caller decides whether that
// is UndefinedName or an implicit definition.
func (e *Environment) Assign(name string, h Handle) bool {
	if _, ok := e.store[name]; ok {
		e.store[name] = h
		return true
	}
	if e.outer != nil {
		return e.outer.Assign(name, h)
	}
	return false
}

// definingFrame returns the frame holding name, or nil.
func (e *Environment) definingFrame(name string) *Environment {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			return env
		}
	}
	return nil
}

// remove deletes name from the frame that defines it. Used by the
// constraint engine to roll back an assignment that created the
// binding.
func (e *Environment) remove(name string) {
	if frame := e.definingFrame(name); frame != nil {
		delete(frame.store, name)
	}
}
