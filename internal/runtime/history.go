package runtime

import "time"

// maxHistoryDepth caps the per-name history chain so arena growth
// stays bounded.
const maxHistoryDepth = 64

// HistoryEntry records one committed write to a name: the
// value that was replaced and when the replacement happened.
type HistoryEntry struct {
	Value Handle // prior binding; NoHandle when the write created the name
	AsOf  time.Time
}

// recordHistory appends to the name's previous-value chain after a
// write commits. Pessimistic writes (no static name) keep no history.
func (rt *Runtime) recordHistory(op writeOp) {
	if op.name == "" {
		return
	}
	entry := HistoryEntry{Value: NoHandle, AsOf: rt.now()}
	if op.hadPrior {
		entry.Value = op.prior
	}
	chain := append(rt.history[op.name], entry)
	if len(chain) > maxHistoryDepth {
		chain = chain[len(chain)-maxHistoryDepth:]
	}
	rt.history[op.name] = chain
}

// History returns the name's committed-write history, newest first.
func (rt *Runtime) History(name string) []HistoryEntry {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	chain := rt.history[name]
	out := make([]HistoryEntry, len(chain))
	for i, entry := range chain {
		out[len(chain)-1-i] = entry
	}
	return out
}
