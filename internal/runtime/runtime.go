package runtime

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/solifugus/mbl/internal/ast"
	"github.com/solifugus/mbl/internal/config"
	"github.com/solifugus/mbl/internal/token"
)

// Runtime owns every component: the value store, global environment,
// evaluator, dependency index, change log, and moment scheduler.
// Cross-references between components flow through this owner. All
// state is accessed under mu; evaluation and moment processing never
// interleave.
type Runtime struct {
	ID uuid.UUID

	mu     sync.Mutex
	opts   config.Options
	out    io.Writer
	store  *Store
	global *Environment
	eval   *Evaluator

	deps      *DepIndex
	changeLog *ChangeLog

	// Scheduler state
	running      bool
	stopCh       chan struct{}
	wg           sync.WaitGroup
	now          func() time.Time
	lastMoment   time.Time
	momentIndex  uint64
	startupFired bool
	deferred     []Handle

	// Triggers in registration order, with the moment each was
	// registered in (-1 before the scheduler started).
	triggerOrder []Handle
	regMoment    map[Handle]int64

	constraintOrder []Handle

	healDepth int

	hooks   []Hook
	history map[string][]HistoryEntry
}

// New creates a runtime with the given options; zero fields fall back
// to the defaults (moment 333ms, currency USD, healing depth 16).
func New(opts config.Options) *Runtime {
	opts = opts.WithDefaults()
	rt := &Runtime{
		ID:        uuid.New(),
		opts:      opts,
		out:       os.Stdout,
		store:     NewStore(),
		global:    NewEnvironment(),
		deps:      newDepIndex(),
		changeLog: newChangeLog(),
		now:       time.Now,
		regMoment: make(map[Handle]int64),
		history:   make(map[string][]HistoryEntry),
	}
	rt.eval = newEvaluator(rt)
	registerBuiltins(rt)
	return rt
}

// SetOutput redirects print output (the REPL and tests use this).
func (rt *Runtime) SetOutput(w io.Writer) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.out = w
}

// Store exposes the value arena for allocation and inspection.
// Callers running concurrently with the scheduler must go through the
// locked wrappers in values.go instead.
func (rt *Runtime) Store() *Store { return rt.store }

// Options returns the runtime's effective options.
func (rt *Runtime) Options() config.Options { return rt.opts }

// Execute evaluates an AST root in the global environment and returns
// the top-level value. The runtime takes ownership of the AST.
func (rt *Runtime) Execute(program ast.Node) (Handle, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.eval.Eval(program, rt.global)
}

// Assign writes a name through the assignment protocol: constraints
// referencing the name run synchronously, the change is logged, and
// on violation the prior binding is restored. An undeclared name is
// created in the global frame.
func (rt *Runtime) Assign(name string, value Handle) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	prior, hadPrior := rt.global.Lookup(name)
	frame := rt.global.definingFrame(name)
	op := writeOp{
		name:     name,
		env:      rt.global,
		tok:      token.Token{},
		equal:    hadPrior && rt.store.StructuralEqual(prior, value),
		prior:    prior,
		hadPrior: hadPrior,
	}
	if frame != nil {
		op.commit = func() { frame.store[name] = value }
		op.rollback = func() { frame.store[name] = prior }
	} else {
		op.commit = func() { rt.global.Define(name, value) }
		op.rollback = func() { rt.global.remove(name) }
	}
	return rt.applyWrite(op)
}

// Lookup resolves a global name.
func (rt *Runtime) Lookup(name string) (Handle, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.global.Lookup(name)
}

// RegisterTrigger adds a trigger value to the dependency index. The
// trigger participates starting from the next moment.
func (rt *Runtime) RegisterTrigger(h Handle) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.registerTrigger(h)
}

func (rt *Runtime) registerTrigger(h Handle) error {
	if rt.store.Kind(h) != KindTrigger {
		return newError(InvalidValue, "register_trigger requires a trigger value, got %s", rt.store.Kind(h))
	}
	t := rt.store.TriggerOf(h)
	if t.Name == "" {
		t.Name = "trigger-" + uuid.NewString()[:8]
	}
	for _, existing := range rt.triggerOrder {
		if existing == h {
			return nil
		}
	}
	rt.deps.Register(h, ExtractNames(t.Condition))
	rt.triggerOrder = append(rt.triggerOrder, h)
	if rt.running {
		rt.regMoment[h] = int64(rt.momentIndex)
	} else {
		rt.regMoment[h] = -1
	}
	return nil
}

// UnregisterTrigger removes the named trigger; reports whether it was
// present.
func (rt *Runtime) UnregisterTrigger(name string) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	for i, h := range rt.triggerOrder {
		if rt.store.TriggerOf(h).Name == name {
			rt.triggerOrder = append(rt.triggerOrder[:i], rt.triggerOrder[i+1:]...)
			rt.deps.Deregister(h)
			delete(rt.regMoment, h)
			return true
		}
	}
	return false
}

// RegisterConstraint adds a constraint value. Registration fails with
// ConstraintViolation when the constraint is not satisfied by the
// current state; a condition referencing a still-undefined name is
// accepted and enforced from the first write.
func (rt *Runtime) RegisterConstraint(h Handle) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.registerConstraint(h, rt.global)
}

func (rt *Runtime) registerConstraint(h Handle, env *Environment) error {
	if rt.store.Kind(h) != KindConstraint {
		return newError(InvalidValue, "register_constraint requires a constraint value, got %s", rt.store.Kind(h))
	}
	c := rt.store.ConstraintOf(h)
	if c.Name == "" {
		c.Name = "constraint-" + uuid.NewString()[:8]
	}

	cond, err := rt.eval.Eval(c.Condition, env)
	switch {
	case err != nil && KindOf(err) == UndefinedName:
		// Not yet bound; enforced on the first write.
	case err != nil:
		return err
	case rt.store.Kind(cond) != KindBoolean || !rt.store.Bool(cond):
		rt.emit(EventConstraintViolation, c.Name, "unsatisfied at registration")
		return newError(ConstraintViolation, "constraint %q is not satisfied by current state", c.Name)
	}

	for _, existing := range rt.constraintOrder {
		if existing == h {
			return nil
		}
	}
	names := ExtractNames(c.Condition)
	if c.Heal != nil {
		names = append(names, ExtractNames(c.Heal)...)
	}
	rt.deps.Register(h, names)
	rt.constraintOrder = append(rt.constraintOrder, h)
	return nil
}

// UnregisterConstraint removes the named constraint; reports whether
// it was present.
func (rt *Runtime) UnregisterConstraint(name string) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	for i, h := range rt.constraintOrder {
		if rt.store.ConstraintOf(h).Name == name {
			rt.constraintOrder = append(rt.constraintOrder[:i], rt.constraintOrder[i+1:]...)
			rt.deps.Deregister(h)
			return true
		}
	}
	return false
}

// OnEvent registers an observability hook. Hooks are called on the
// runtime's thread and have no semantic effect on execution.
func (rt *Runtime) OnEvent(hook Hook) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.hooks = append(rt.hooks, hook)
}

// Start launches the moment loop. Idempotent.
func (rt *Runtime) Start() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.running {
		return
	}
	rt.running = true
	rt.stopCh = make(chan struct{})
	rt.lastMoment = rt.now()
	rt.wg.Add(1)
	go rt.loop()
}

// Stop halts the moment loop between ticks (it does not abort a
// trigger or statement in progress) and fires shutdown triggers.
func (rt *Runtime) Stop() {
	rt.mu.Lock()
	if !rt.running {
		rt.mu.Unlock()
		return
	}
	rt.running = false
	close(rt.stopCh)
	rt.mu.Unlock()

	rt.wg.Wait()

	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.fireLifecycle(EventShutdown, "")
}

// FireCustom invokes custom-event triggers with the given name.
func (rt *Runtime) FireCustom(name string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.fireLifecycle(EventCustom, name)
}

// HasTriggers reports whether any trigger is registered.
func (rt *Runtime) HasTriggers() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.triggerOrder) > 0
}

// MomentIndex reports how many moments have completed.
func (rt *Runtime) MomentIndex() uint64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.momentIndex
}
