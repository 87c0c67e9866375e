package runtime

import (
	"time"
)

// Trigger scheduler: drives moments. A moment is a fixed wall-clock
// interval; at each boundary the triggers affected by the moment's
// change log fire exactly once each, in registration order.

func (rt *Runtime) loop() {
	defer rt.wg.Done()

	poll := rt.opts.MomentDuration / 4
	if poll < time.Millisecond {
		poll = time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-rt.stopCh:
			return
		case <-ticker.C:
			rt.tick(rt.now())
		}
	}
}

func (rt *Runtime) tick(now time.Time) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if now.Sub(rt.lastMoment) < rt.opts.MomentDuration {
		return
	}
	rt.processMoment(now)
	// Advance by the moment duration, not to now, to avoid drift.
	rt.lastMoment = rt.lastMoment.Add(rt.opts.MomentDuration)
	rt.momentIndex++
}

// processMoment runs one moment boundary under the runtime lock.
func (rt *Runtime) processMoment(started time.Time) {
	changed := rt.changeLog.Drain()

	eligible := make(map[Handle]bool)

	// Triggers deferred from the previous moment are eligible again;
	// they fire in registration order with the rest.
	for _, h := range rt.deferred {
		eligible[h] = true
	}
	rt.deferred = nil

	// The affected set is the union over each changed name of the
	// triggers referencing that name in the dependency index.
	// Constraints are not fired here; they already ran synchronously.
	wildcard := false
	for _, name := range changed {
		if name == wildcardName {
			wildcard = true
			break
		}
	}
	if wildcard {
		for _, h := range rt.deps.AllWatchers() {
			if rt.store.Kind(h) == KindTrigger && rt.store.TriggerOf(h).Event == EventDataChanged {
				eligible[h] = true
			}
		}
	} else {
		for _, name := range changed {
			for _, h := range rt.deps.Watchers(name) {
				if rt.store.Kind(h) == KindTrigger && rt.store.TriggerOf(h).Event == EventDataChanged {
					eligible[h] = true
				}
			}
		}
	}

	for _, h := range rt.triggerOrder {
		switch rt.store.TriggerOf(h).Event {
		case EventTimer:
			eligible[h] = true
		case EventStartup:
			if !rt.startupFired {
				eligible[h] = true
			}
		}
	}
	rt.startupFired = true

	for i, h := range rt.triggerOrder {
		if !eligible[h] {
			continue
		}
		// A trigger registered during this moment participates
		// starting from the next one.
		if rt.regMoment[h] == int64(rt.momentIndex) {
			continue
		}
		if rt.opts.MomentBudget > 0 && rt.now().Sub(started) > rt.opts.MomentBudget {
			// Defer the rest of this moment's triggers.
			for _, rest := range rt.triggerOrder[i:] {
				if eligible[rest] && rt.regMoment[rest] != int64(rt.momentIndex) {
					rt.deferred = append(rt.deferred, rest)
				}
			}
			rt.emit(EventMomentDeferred, rt.store.TriggerOf(h).Name, "moment budget exceeded")
			break
		}
		rt.fireTrigger(h)
	}
}

// fireTrigger evaluates a trigger's condition exactly once and runs
// the action when it holds. Errors do not abort the moment; they are
// reported through the observability hook and the remaining triggers
// continue.
func (rt *Runtime) fireTrigger(h Handle) {
	t := rt.store.TriggerOf(h)

	cond, err := rt.eval.Eval(t.Condition, rt.global)
	if err != nil {
		rt.emit(EventTriggerError, t.Name, err.Error())
		return
	}
	if rt.store.Kind(cond) != KindBoolean {
		rt.emit(EventTriggerError, t.Name, "trigger condition is not boolean")
		return
	}
	if !rt.store.Bool(cond) {
		return
	}

	if _, err := rt.eval.Eval(t.Action, rt.global); err != nil {
		rt.emit(EventTriggerError, t.Name, err.Error())
		return
	}
	rt.emit(EventTriggerFired, t.Name, "")
}

// fireLifecycle runs every trigger of the given event kind, used for
// shutdown and custom events.
func (rt *Runtime) fireLifecycle(event TriggerEvent, name string) {
	for _, h := range rt.triggerOrder {
		t := rt.store.TriggerOf(h)
		if t.Event != event {
			continue
		}
		if name != "" && t.Name != name {
			continue
		}
		rt.fireTrigger(h)
	}
}
