package evaluator

import (
	"testing"

	"github.com/bryanhoulton/giast/internal/ast"
	"github.com/bryanhoulton/giast/internal/object"
)

func evalExpr(t *testing.T, expr ast.Expression, scope *object.Scope) object.Object {
	t.Helper()
	value, err := New(nil).EvalExpr(expr, scope)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	return value
}

func num(v float64) *ast.Literal { return &ast.Literal{Value: v} }
func str(v string) *ast.Literal  { return &ast.Literal{Value: v} }
func boolean(v bool) *ast.Literal {
	return &ast.Literal{Value: v}
}

func TestEvalBinaryExpressions(t *testing.T) {
	tests := []struct {
		expr     ast.Expression
		expected any
	}{
		{&ast.Binary{Op: "+", Left: num(2), Right: num(3)}, float64(5)},
		{&ast.Binary{Op: "-", Left: num(2), Right: num(3)}, float64(-1)},
		{&ast.Binary{Op: "*", Left: num(2.5), Right: num(4)}, float64(10)},
		{&ast.Binary{Op: "/", Left: num(10), Right: num(4)}, float64(2.5)},
		{&ast.Binary{Op: "==", Left: num(1), Right: num(1)}, true},
		{&ast.Binary{Op: "==", Left: str("a"), Right: str("a")}, true},
		{&ast.Binary{Op: "==", Left: num(1), Right: str("1")}, false},
		{&ast.Binary{Op: "!=", Left: num(1), Right: str("1")}, true},
		{&ast.Binary{Op: "!=", Left: boolean(true), Right: boolean(true)}, false},
		{&ast.Binary{Op: "&&", Left: boolean(true), Right: boolean(false)}, false},
		{&ast.Binary{Op: "||", Left: boolean(false), Right: boolean(true)}, true},
		// Relational operators are reachable only from directly constructed ASTs.
		{&ast.Binary{Op: "<", Left: num(1), Right: num(2)}, true},
		{&ast.Binary{Op: "<=", Left: num(2), Right: num(2)}, true},
		{&ast.Binary{Op: ">", Left: num(1), Right: num(2)}, false},
		{&ast.Binary{Op: ">=", Left: num(1), Right: num(2)}, false},
	}

	for _, tt := range tests {
		value := evalExpr(t, tt.expr, nil)
		switch expected := tt.expected.(type) {
		case float64:
			if value.(*object.Number).Value != expected {
				t.Errorf("%s = %s, expected %v", tt.expr.String(), value.Inspect(), expected)
			}
		case bool:
			if value.(*object.Boolean).Value != expected {
				t.Errorf("%s = %s, expected %v", tt.expr.String(), value.Inspect(), expected)
			}
		}
	}
}

func TestEvalErrors(t *testing.T) {
	scope := object.NewScope()
	scope.Set("s", &object.String{Value: "text"})

	tests := []struct {
		expr ast.Expression
		kind ErrorKind
	}{
		{&ast.Binary{Op: "/", Left: num(10), Right: num(0)}, DivideByZero},
		{&ast.Binary{Op: "+", Left: num(1), Right: str("x")}, TypeError},
		{&ast.Binary{Op: "-", Left: boolean(true), Right: num(1)}, TypeError},
		{&ast.Binary{Op: "&&", Left: num(1), Right: boolean(true)}, TypeError},
		{&ast.Binary{Op: "<", Left: str("a"), Right: str("b")}, TypeError},
		{&ast.Binary{Op: "%", Left: num(1), Right: num(2)}, TypeError},
		{&ast.Var{Name: "missing"}, UnknownVariable},
		{&ast.CallExpr{Func: "nope", Args: nil}, UnknownFunction},
	}

	for _, tt := range tests {
		_, err := New(nil).EvalExpr(tt.expr, scope)
		if err == nil {
			t.Errorf("%s: expected %s, got no error", tt.expr.String(), tt.kind)
			continue
		}
		if !IsKind(err, tt.kind) {
			t.Errorf("%s: expected kind %s, got %v", tt.expr.String(), tt.kind, err)
		}
	}
}

func TestDivideByZeroNeverReturnsInfinity(t *testing.T) {
	expr := &ast.Binary{Op: "/", Left: num(10), Right: num(0)}

	value, err := New(nil).EvalExpr(expr, nil)
	if err == nil {
		t.Fatalf("expected DivideByZero, got value %s", value.Inspect())
	}
	if !IsKind(err, DivideByZero) {
		t.Errorf("expected DivideByZero, got %v", err)
	}
}

func TestVarLookupWalksChain(t *testing.T) {
	root := object.NewScope()
	root.Set("count", &object.Number{Value: 7})
	child := root.Extend()

	value := evalExpr(t, &ast.Var{Name: "count"}, child)
	if value.(*object.Number).Value != 7 {
		t.Errorf("count = %s, expected 7", value.Inspect())
	}
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		expr     *ast.CallExpr
		expected float64
	}{
		{&ast.CallExpr{Func: "min", Args: []ast.Expression{num(3), num(1), num(2)}}, 1},
		{&ast.CallExpr{Func: "max", Args: []ast.Expression{num(3), num(1), num(2)}}, 3},
		{&ast.CallExpr{Func: "abs", Args: []ast.Expression{num(-4.5)}}, 4.5},
		{&ast.CallExpr{Func: "floor", Args: []ast.Expression{num(2.9)}}, 2},
		{&ast.CallExpr{Func: "ceil", Args: []ast.Expression{num(2.1)}}, 3},
		{&ast.CallExpr{Func: "round", Args: []ast.Expression{num(2.5)}}, 3},
		{&ast.CallExpr{Func: "len", Args: []ast.Expression{str("héllo")}}, 5},
	}

	for _, tt := range tests {
		value := evalExpr(t, tt.expr, nil)
		if got := value.(*object.Number).Value; got != tt.expected {
			t.Errorf("%s = %v, expected %v", tt.expr.String(), got, tt.expected)
		}
	}
}

func TestBuiltinRandomRanges(t *testing.T) {
	for i := 0; i < 50; i++ {
		value := evalExpr(t, &ast.CallExpr{Func: "randInt", Args: []ast.Expression{num(6)}}, nil)
		n := value.(*object.Number).Value
		if n != float64(int(n)) || n < 0 || n > 5 {
			t.Fatalf("randInt(6) = %v, expected whole number in [0,6)", n)
		}

		value = evalExpr(t, &ast.CallExpr{Func: "rand", Args: nil}, nil)
		f := value.(*object.Number).Value
		if f < 0 || f >= 1 {
			t.Fatalf("rand() = %v, expected [0,1)", f)
		}
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		expr *ast.CallExpr
		kind ErrorKind
	}{
		{&ast.CallExpr{Func: "abs", Args: nil}, UnknownFunction},
		{&ast.CallExpr{Func: "abs", Args: []ast.Expression{str("x")}}, TypeError},
		{&ast.CallExpr{Func: "min", Args: []ast.Expression{num(1)}}, UnknownFunction},
		{&ast.CallExpr{Func: "len", Args: []ast.Expression{num(1)}}, TypeError},
		{&ast.CallExpr{Func: "rand", Args: []ast.Expression{num(1)}}, UnknownFunction},
		{&ast.CallExpr{Func: "randInt", Args: []ast.Expression{num(0)}}, TypeError},
	}

	for _, tt := range tests {
		_, err := New(nil).EvalExpr(tt.expr, nil)
		if err == nil || !IsKind(err, tt.kind) {
			t.Errorf("%s: expected kind %s, got %v", tt.expr.String(), tt.kind, err)
		}
	}
}

func incFunc() *ast.Func {
	return &ast.Func{
		Name:   "incBy",
		Params: []string{"amount"},
		Body: []ast.Statement{
			&ast.Assign{
				Target: "count",
				Expr:   &ast.Binary{Op: "+", Left: &ast.Var{Name: "count"}, Right: &ast.Var{Name: "amount"}},
			},
		},
	}
}

func TestCallStatement(t *testing.T) {
	e := New([]*ast.Func{incFunc()})
	scope := object.NewScope()
	scope.Set("count", &object.Number{Value: 0})

	call := &ast.CallStmt{Func: "incBy", Args: []ast.Expression{num(5)}}
	if err := e.EvalStmt(call, scope); err != nil {
		t.Fatalf("call failed: %v", err)
	}

	if value, _ := scope.Get("count"); value.(*object.Number).Value != 5 {
		t.Errorf("count = %s, expected 5", value.Inspect())
	}
}

func TestCallParametersNeverLeak(t *testing.T) {
	e := New([]*ast.Func{incFunc()})
	scope := object.NewScope()
	scope.Set("count", &object.Number{Value: 0})

	call := &ast.CallStmt{Func: "incBy", Args: []ast.Expression{num(1)}}
	if err := e.EvalStmt(call, scope); err != nil {
		t.Fatalf("call failed: %v", err)
	}

	if scope.Has("amount") {
		t.Error("parameter `amount` leaked into the calling scope")
	}
}

func TestCallArityMismatchDetectedBeforeBody(t *testing.T) {
	e := New([]*ast.Func{incFunc()})
	scope := object.NewScope()
	scope.Set("count", &object.Number{Value: 0})

	call := &ast.CallStmt{Func: "incBy", Args: []ast.Expression{num(1), num(2)}}
	err := e.EvalStmt(call, scope)
	if err == nil {
		t.Fatal("expected arity error")
	}
	if !IsKind(err, UnknownFunction) {
		t.Errorf("expected UnknownFunction kind, got %v", err)
	}

	if value, _ := scope.Get("count"); value.(*object.Number).Value != 0 {
		t.Error("function body ran despite arity mismatch")
	}
}

func TestCallUnknownFunction(t *testing.T) {
	err := New(nil).EvalStmt(&ast.CallStmt{Func: "ghost"}, object.NewScope())
	if !IsKind(err, UnknownFunction) {
		t.Errorf("expected UnknownFunction, got %v", err)
	}
}

func TestShadowingViolation(t *testing.T) {
	fn := &ast.Func{Name: "f", Params: []string{"count"}, Body: []ast.Statement{
		&ast.Assign{Target: "count", Expr: num(99)},
	}}
	e := New([]*ast.Func{fn})

	scope := object.NewScope()
	scope.Set("count", &object.Number{Value: 1})

	err := e.EvalStmt(&ast.CallStmt{Func: "f", Args: []ast.Expression{num(5)}}, scope)
	if err == nil {
		t.Fatal("expected ShadowingViolation")
	}
	if !IsKind(err, ShadowingViolation) {
		t.Errorf("expected ShadowingViolation, got %v", err)
	}

	// Raised before the body runs.
	if value, _ := scope.Get("count"); value.(*object.Number).Value != 1 {
		t.Error("body ran despite shadowing violation")
	}
}

func TestIfRunsInSameScope(t *testing.T) {
	e := New(nil)
	scope := object.NewScope()
	scope.Set("isOn", &object.Boolean{Value: false})

	stmt := &ast.If{
		Cond: &ast.Var{Name: "isOn"},
		Then: []ast.Statement{&ast.Assign{Target: "isOn", Expr: boolean(false)}},
		Else: []ast.Statement{&ast.Assign{Target: "isOn", Expr: boolean(true)}},
	}

	if err := e.EvalStmt(stmt, scope); err != nil {
		t.Fatalf("if failed: %v", err)
	}
	if value, _ := scope.Get("isOn"); !value.(*object.Boolean).Value {
		t.Error("else branch did not update the enclosing scope")
	}
}

func TestIfTruthiness(t *testing.T) {
	tests := []struct {
		cond     ast.Expression
		expected bool // whether the then-branch runs
	}{
		{boolean(true), true},
		{boolean(false), false},
		{num(0), true}, // only boolean false is falsy
		{str(""), true},
	}

	for _, tt := range tests {
		e := New(nil)
		scope := object.NewScope()
		scope.Set("ran", &object.Boolean{Value: false})

		stmt := &ast.If{
			Cond: tt.cond,
			Then: []ast.Statement{&ast.Assign{Target: "ran", Expr: boolean(true)}},
		}
		if err := e.EvalStmt(stmt, scope); err != nil {
			t.Fatalf("if failed: %v", err)
		}

		value, _ := scope.Get("ran")
		if value.(*object.Boolean).Value != tt.expected {
			t.Errorf("cond %s: then-branch ran=%t, expected %t",
				tt.cond.String(), value.(*object.Boolean).Value, tt.expected)
		}
	}
}

func TestRecursiveCallTerminates(t *testing.T) {
	// countdown(n): if n > 0 { left = n; countdown(n - 1); }
	countdown := &ast.Func{
		Name:   "countdown",
		Params: []string{"n"},
		Body: []ast.Statement{
			&ast.If{
				Cond: &ast.Binary{Op: ">", Left: &ast.Var{Name: "n"}, Right: num(0)},
				Then: []ast.Statement{
					&ast.Assign{Target: "left", Expr: &ast.Var{Name: "n"}},
					&ast.CallStmt{Func: "countdown", Args: []ast.Expression{
						&ast.Binary{Op: "-", Left: &ast.Var{Name: "n"}, Right: num(1)},
					}},
				},
			},
		},
	}
	e := New([]*ast.Func{countdown})
	scope := object.NewScope()
	scope.Set("left", &object.Number{Value: -1})

	err := e.EvalStmt(&ast.CallStmt{Func: "countdown", Args: []ast.Expression{num(5)}}, scope)
	if err != nil {
		t.Fatalf("recursion failed: %v", err)
	}
	if value, _ := scope.Get("left"); value.(*object.Number).Value != 1 {
		t.Errorf("left = %s, expected 1", value.Inspect())
	}
}
