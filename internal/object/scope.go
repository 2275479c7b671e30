package object

import "log/slog"

// Scope is a lexical environment node in a parent-linked tree. The root scope
// is created once per runtime; children are created per function call via
// Extend and discarded when the call returns, so parent links are pure lookup
// relations, never ownership.
//
// Scopes are single-threaded by design: version, batch depth, and the dirty
// flag are plain mutable state. Callers coordinating multiple goroutines must
// serialize access themselves.
type Scope struct {
	vars  map[string]Object
	outer *Scope
	sink  *changeSink
}

func NewScope() *Scope {
	return &Scope{
		vars: make(map[string]Object),
		sink: newChangeSink(),
	}
}

// Extend returns a child scope sharing this scope's notification sink. It is
// used only for function-parameter binding.
func (s *Scope) Extend() *Scope {
	slog.Debug("extending scope", slog.Int("own-vars", len(s.vars)))
	return &Scope{
		vars:  make(map[string]Object),
		outer: s,
		sink:  s.sink,
	}
}

// Root returns the top of the parent chain: the scope that owns the state
// variables. Function call frames extend the root, not the calling frame,
// which is what makes self- and mutual recursion legal under the shadowing
// rule.
func (s *Scope) Root() *Scope {
	root := s
	for root.outer != nil {
		root = root.outer
	}
	return root
}

// Get walks the parent chain.
func (s *Scope) Get(name string) (Object, bool) {
	if value, ok := s.vars[name]; ok {
		return value, true
	}
	if s.outer != nil {
		return s.outer.Get(name)
	}
	return nil, false
}

// Has reports whether name resolves anywhere in the chain.
func (s *Scope) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Set updates name in place at the owning scope when it resolves anywhere in
// the chain (returns true), otherwise creates it in the current scope
// (returns false). Assigning a value equal to the current one is a no-op: no
// version bump, no notification.
func (s *Scope) Set(name string, value Object) bool {
	for owner := s; owner != nil; owner = owner.outer {
		if current, ok := owner.vars[name]; ok {
			if Equals(current, value) {
				return true
			}
			owner.vars[name] = value
			s.sink.markChanged()
			return true
		}
	}

	s.vars[name] = value
	s.sink.markChanged()
	return false
}

// Define creates or overwrites a binding in this scope without touching the
// sink. Parameter binding uses this: a child scope is discarded when its call
// returns, so its bindings are never an externally visible change.
func (s *Scope) Define(name string, value Object) {
	s.vars[name] = value
}

// Version counts externally visible changes, coalesced across a batch.
func (s *Scope) Version() uint64 {
	return s.sink.version
}

// Batch defers notification until fn completes. Batches nest; the outermost
// exit notifies once iff at least one real change occurred inside.
func (s *Scope) Batch(fn func()) {
	s.sink.batch(fn)
}

// OnChange registers a subscriber and returns its unsubscribe function.
func (s *Scope) OnChange(cb func()) func() {
	return s.sink.subscribe(cb)
}

// Close permanently silences the sink. Later mutations still apply to the
// variable map but fire no notifications.
func (s *Scope) Close() {
	s.sink.close()
}

// Snapshot returns a flat copy of this scope's own bindings as plain
// literals. It does not walk the parent chain.
func (s *Scope) Snapshot() map[string]any {
	snapshot := make(map[string]any, len(s.vars))
	for name, value := range s.vars {
		snapshot[name] = ToLiteral(value)
	}
	return snapshot
}

// RestoreSnapshot updates bindings already present in this scope, silently
// ignoring unknown keys. Updates coalesce into a single notification.
func (s *Scope) RestoreSnapshot(snapshot map[string]any) error {
	var restoreErr error
	s.Batch(func() {
		for name, raw := range snapshot {
			if _, ok := s.vars[name]; !ok {
				continue
			}
			value, err := FromLiteral(raw)
			if err != nil {
				restoreErr = err
				return
			}
			s.Set(name, value)
		}
	})
	return restoreErr
}
