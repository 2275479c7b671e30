package ast

// Clone returns a deep copy of the program. A runtime clones the program it
// is given so later mutation of the caller's AST cannot alias into a live
// evaluation.
func (p *Program) Clone() *Program {
	clone := &Program{}
	for _, sv := range p.State {
		clone.State = append(clone.State, &StateVar{Name: sv.Name, Init: cloneExpr(sv.Init)})
	}
	for _, fn := range p.Logic {
		clone.Logic = append(clone.Logic, fn.clone())
	}
	for _, s := range p.Init {
		clone.Init = append(clone.Init, cloneStmt(s))
	}
	return clone
}

func (f *Func) clone() *Func {
	clone := &Func{Name: f.Name}
	if f.Params != nil {
		clone.Params = append([]string{}, f.Params...)
	}
	for _, s := range f.Body {
		clone.Body = append(clone.Body, cloneStmt(s))
	}
	return clone
}

func cloneExpr(expr Expression) Expression {
	switch expr := expr.(type) {
	case *Literal:
		return &Literal{Value: expr.Value}
	case *Var:
		return &Var{Name: expr.Name}
	case *Binary:
		return &Binary{Op: expr.Op, Left: cloneExpr(expr.Left), Right: cloneExpr(expr.Right)}
	case *CallExpr:
		clone := &CallExpr{Func: expr.Func}
		for _, a := range expr.Args {
			clone.Args = append(clone.Args, cloneExpr(a))
		}
		return clone
	default:
		return nil
	}
}

func cloneStmt(stmt Statement) Statement {
	switch stmt := stmt.(type) {
	case *Assign:
		return &Assign{Target: stmt.Target, Expr: cloneExpr(stmt.Expr)}
	case *CallStmt:
		clone := &CallStmt{Func: stmt.Func}
		for _, a := range stmt.Args {
			clone.Args = append(clone.Args, cloneExpr(a))
		}
		return clone
	case *If:
		clone := &If{Cond: cloneExpr(stmt.Cond)}
		for _, s := range stmt.Then {
			clone.Then = append(clone.Then, cloneStmt(s))
		}
		for _, s := range stmt.Else {
			clone.Else = append(clone.Else, cloneStmt(s))
		}
		return clone
	default:
		return nil
	}
}
