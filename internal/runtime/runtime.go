// Package runtime ties a parsed program to a live scope chain: it owns the
// root scope, the program's initial values, and the lifecycle from
// construction through Destroy.
package runtime

import (
	"fmt"
	"log/slog"

	"github.com/bryanhoulton/giast/internal/ast"
	"github.com/bryanhoulton/giast/internal/evaluator"
	"github.com/bryanhoulton/giast/internal/object"
)

// Runtime executes one program instance. It is single-threaded like the scope
// chain underneath it; callers driving it from several goroutines must
// serialize access themselves.
type Runtime struct {
	program     *ast.Program
	eval        *evaluator.Evaluator
	scope       *object.Scope
	initialVars map[string]object.Object
	stateNames  map[string]bool
	hasRun      bool
	destroyed   bool
}

// New builds a runtime from a program and an optional hydration map. The
// program is deep-copied, so later mutation of the argument cannot leak into
// the running instance.
//
// State initializers are evaluated in a closed environment: they may use
// literals, operators, and builtins, but any variable reference fails
// construction. Hydration values in initialState override the computed
// initials for the first run only; keys that do not name a state variable are
// ignored.
func New(program *ast.Program, initialState map[string]any) (*Runtime, error) {
	if program == nil {
		return nil, fmt.Errorf("runtime: nil program")
	}
	program = program.Clone()

	stateNames := make(map[string]bool, len(program.State))
	for _, sv := range program.State {
		if stateNames[sv.Name] {
			return nil, evaluator.NewError(evaluator.StateInitError,
				"duplicate state variable %q", sv.Name)
		}
		stateNames[sv.Name] = true
	}
	funcNames := make(map[string]bool, len(program.Logic))
	for _, fn := range program.Logic {
		if funcNames[fn.Name] {
			return nil, evaluator.NewError(evaluator.StateInitError,
				"duplicate function %q", fn.Name)
		}
		funcNames[fn.Name] = true
	}

	eval := evaluator.New(program.Logic)

	initialVars := make(map[string]object.Object, len(program.State))
	for _, sv := range program.State {
		value, err := eval.EvalExpr(sv.Init, nil)
		if err != nil {
			return nil, evaluator.NewError(evaluator.StateInitError,
				"initializer of %q: %v", sv.Name, err)
		}
		initialVars[sv.Name] = value
	}

	scope := object.NewScope()
	for _, sv := range program.State {
		scope.Define(sv.Name, initialVars[sv.Name])
	}
	for name, raw := range initialState {
		if !stateNames[name] {
			continue
		}
		value, err := object.FromLiteral(raw)
		if err != nil {
			return nil, evaluator.NewError(evaluator.StateInitError,
				"hydration value for %q: %v", name, err)
		}
		scope.Define(name, value)
	}

	slog.Debug("runtime created",
		slog.Int("state-vars", len(program.State)),
		slog.Int("functions", len(program.Logic)))

	return &Runtime{
		program:     program,
		eval:        eval,
		scope:       scope,
		initialVars: initialVars,
		stateNames:  stateNames,
	}, nil
}

// Run executes the init block. It is idempotent: only the first call after
// construction or ResetState executes anything. Mutations made before a
// failing statement are kept.
func (r *Runtime) Run() error {
	if r.destroyed {
		return destroyedErr("run")
	}
	if r.hasRun {
		return nil
	}
	r.hasRun = true

	var runErr error
	r.scope.Batch(func() {
		for _, stmt := range r.program.Init {
			if err := r.eval.EvalStmt(stmt, r.scope); err != nil {
				runErr = err
				return
			}
		}
	})
	return runErr
}

// EvaluateStmt executes one statement against the root scope. All mutations
// it causes coalesce into a single change notification.
func (r *Runtime) EvaluateStmt(stmt ast.Statement) error {
	if r.destroyed {
		return destroyedErr("evaluateStmt")
	}
	var evalErr error
	r.scope.Batch(func() {
		evalErr = r.eval.EvalStmt(stmt, r.scope)
	})
	return evalErr
}

// ResetState restores every state variable to its computed initial value,
// discarding hydration overrides, and re-arms Run.
func (r *Runtime) ResetState() error {
	if r.destroyed {
		return destroyedErr("resetState")
	}
	r.scope.Batch(func() {
		for _, sv := range r.program.State {
			r.scope.Set(sv.Name, r.initialVars[sv.Name])
		}
	})
	r.hasRun = false
	return nil
}

// GetState returns a flat copy of the declared state variables as plain
// literals. Bindings the init block created on top of the declared set are
// not part of the serialized state.
func (r *Runtime) GetState() map[string]any {
	state := make(map[string]any, len(r.program.State))
	for _, sv := range r.program.State {
		if value, ok := r.scope.Get(sv.Name); ok {
			state[sv.Name] = object.ToLiteral(value)
		}
	}
	return state
}

// SetState hydrates declared state variables from a flat literal map. Unknown
// keys are ignored; all updates coalesce into a single notification.
func (r *Runtime) SetState(state map[string]any) error {
	if r.destroyed {
		return destroyedErr("setState")
	}
	filtered := make(map[string]any, len(state))
	for name, raw := range state {
		if r.stateNames[name] {
			filtered[name] = raw
		}
	}
	return r.scope.RestoreSnapshot(filtered)
}

// StateVersion counts externally visible state changes.
func (r *Runtime) StateVersion() uint64 {
	return r.scope.Version()
}

// Batch groups mutations made inside fn into one notification.
func (r *Runtime) Batch(fn func()) {
	r.scope.Batch(fn)
}

// OnChange registers a subscriber and returns its unsubscribe function.
func (r *Runtime) OnChange(cb func()) func() {
	return r.scope.OnChange(cb)
}

// Destroy makes the runtime terminal: further Run/EvaluateStmt/ResetState/
// SetState calls fail, and no subscriber fires again. Destroy itself is
// idempotent.
func (r *Runtime) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	r.scope.Close()
	slog.Debug("runtime destroyed")
}

// Destroyed reports whether Destroy has been called.
func (r *Runtime) Destroyed() bool {
	return r.destroyed
}

func destroyedErr(op string) error {
	return evaluator.NewError(evaluator.DestroyedRuntime,
		"%s called on destroyed runtime", op)
}
