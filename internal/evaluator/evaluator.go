package evaluator

import (
	"github.com/bryanhoulton/giast/internal/ast"
	"github.com/bryanhoulton/giast/internal/object"
)

// Evaluator walks an already parsed AST against a scope chain. It holds the
// program's function table and nothing else; all mutable state lives in the
// scopes it is handed.
type Evaluator struct {
	funcs map[string]*ast.Func
}

func New(funcs []*ast.Func) *Evaluator {
	e := &Evaluator{funcs: make(map[string]*ast.Func, len(funcs))}
	for _, fn := range funcs {
		e.funcs[fn.Name] = fn
	}
	return e
}

// EvalExpr evaluates an expression. A nil scope is the empty environment used
// for state initializers: any variable reference fails there.
func (e *Evaluator) EvalExpr(expr ast.Expression, scope *object.Scope) (object.Object, error) {
	switch expr := expr.(type) {
	case *ast.Literal:
		value, err := object.FromLiteral(expr.Value)
		if err != nil {
			return nil, newError(TypeError, "%v", err)
		}
		return value, nil

	case *ast.Var:
		if scope == nil {
			return nil, newError(UnknownVariable, "identifier not found: %s", expr.Name)
		}
		value, ok := scope.Get(expr.Name)
		if !ok {
			return nil, newError(UnknownVariable, "identifier not found: %s", expr.Name)
		}
		return value, nil

	case *ast.Binary:
		left, err := e.EvalExpr(expr.Left, scope)
		if err != nil {
			return nil, err
		}
		right, err := e.EvalExpr(expr.Right, scope)
		if err != nil {
			return nil, err
		}
		return evalBinary(expr.Op, left, right)

	case *ast.CallExpr:
		builtin, ok := builtins[expr.Func]
		if !ok {
			return nil, newError(UnknownFunction, "unknown builtin function: %s", expr.Func)
		}
		var args []object.Object
		for _, arg := range expr.Args {
			value, err := e.EvalExpr(arg, scope)
			if err != nil {
				return nil, err
			}
			args = append(args, value)
		}
		return builtin.Fn(args...)

	default:
		return nil, newError(TypeError, "unknown expression node %T", expr)
	}
}

// EvalStmt executes a statement. Mutations already performed are not rolled
// back when a later statement in the same list fails.
func (e *Evaluator) EvalStmt(stmt ast.Statement, scope *object.Scope) error {
	switch stmt := stmt.(type) {
	case *ast.Assign:
		value, err := e.EvalExpr(stmt.Expr, scope)
		if err != nil {
			return err
		}
		scope.Set(stmt.Target, value)
		return nil

	case *ast.CallStmt:
		return e.evalCall(stmt, scope)

	case *ast.If:
		cond, err := e.EvalExpr(stmt.Cond, scope)
		if err != nil {
			return err
		}
		// Both branches run in the scope of the if itself.
		branch := stmt.Then
		if !isTruthy(cond) {
			branch = stmt.Else
		}
		for _, s := range branch {
			if err := e.EvalStmt(s, scope); err != nil {
				return err
			}
		}
		return nil

	default:
		return newError(TypeError, "unknown statement node %T", stmt)
	}
}

// evalCall invokes a user-defined function: arity check, arguments evaluated
// in the caller's scope, shadowing check, then the body against a fresh child
// scope that is discarded on return.
//
// Functions are declared at the top level, so the call frame extends the root
// scope (their defining environment) rather than the calling frame. A
// parameter therefore only shadows root bindings, which keeps recursive calls
// legal while still rejecting collisions with state variables.
func (e *Evaluator) evalCall(stmt *ast.CallStmt, scope *object.Scope) error {
	fn, ok := e.funcs[stmt.Func]
	if !ok {
		return newError(UnknownFunction, "unknown function: %s", stmt.Func)
	}

	if len(stmt.Args) != len(fn.Params) {
		return newError(UnknownFunction,
			"wrong number of arguments to %s. got=%d, want=%d",
			stmt.Func, len(stmt.Args), len(fn.Params))
	}

	args := make([]object.Object, len(stmt.Args))
	for i, arg := range stmt.Args {
		value, err := e.EvalExpr(arg, scope)
		if err != nil {
			return err
		}
		args[i] = value
	}

	root := scope.Root()
	for _, param := range fn.Params {
		if root.Has(param) {
			return newError(ShadowingViolation,
				"parameter %q of %s shadows an existing binding", param, stmt.Func)
		}
	}

	child := root.Extend()
	for i, param := range fn.Params {
		child.Define(param, args[i])
	}

	for _, s := range fn.Body {
		if err := e.EvalStmt(s, child); err != nil {
			return err
		}
	}
	return nil
}

func evalBinary(op string, left, right object.Object) (object.Object, error) {
	switch op {
	case "+", "-", "*", "/", "<", "<=", ">", ">=":
		l, lok := left.(*object.Number)
		r, rok := right.(*object.Number)
		if !lok || !rok {
			return nil, newError(TypeError, "type mismatch: %s %s %s", left.Type(), op, right.Type())
		}
		return evalNumberBinary(op, l.Value, r.Value)

	case "==":
		return &object.Boolean{Value: object.Equals(left, right)}, nil
	case "!=":
		return &object.Boolean{Value: !object.Equals(left, right)}, nil

	case "&&", "||":
		l, lok := left.(*object.Boolean)
		r, rok := right.(*object.Boolean)
		if !lok || !rok {
			return nil, newError(TypeError, "type mismatch: %s %s %s", left.Type(), op, right.Type())
		}
		if op == "&&" {
			return &object.Boolean{Value: l.Value && r.Value}, nil
		}
		return &object.Boolean{Value: l.Value || r.Value}, nil

	default:
		return nil, newError(TypeError, "unknown operator: %s", op)
	}
}

func evalNumberBinary(op string, left, right float64) (object.Object, error) {
	switch op {
	case "+":
		return &object.Number{Value: left + right}, nil
	case "-":
		return &object.Number{Value: left - right}, nil
	case "*":
		return &object.Number{Value: left * right}, nil
	case "/":
		if right == 0 {
			return nil, newError(DivideByZero, "division by zero")
		}
		return &object.Number{Value: left / right}, nil
	case "<":
		return &object.Boolean{Value: left < right}, nil
	case "<=":
		return &object.Boolean{Value: left <= right}, nil
	case ">":
		return &object.Boolean{Value: left > right}, nil
	case ">=":
		return &object.Boolean{Value: left >= right}, nil
	}
	return nil, newError(TypeError, "unknown operator: %s", op)
}

// isTruthy: boolean false is falsy, everything else is truthy.
func isTruthy(obj object.Object) bool {
	if b, ok := obj.(*object.Boolean); ok {
		return b.Value
	}
	return true
}
