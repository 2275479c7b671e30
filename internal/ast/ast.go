package ast

import (
	"bytes"
	"fmt"
	"strings"
)

// The base Node interface
type Node interface {
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Program is the root artifact of compilation: the declared state variables,
// the user-defined functions, and the init statement list.
type Program struct {
	State []*StateVar `json:"state"`
	Logic []*Func     `json:"logic"`
	Init  []Statement `json:"init"`
}

func (p *Program) String() string {
	var out bytes.Buffer

	out.WriteString("state {")
	for _, sv := range p.State {
		out.WriteString(sv.String())
	}
	out.WriteString("} logic {")
	for _, fn := range p.Logic {
		out.WriteString(fn.String())
	}
	out.WriteString("} init {")
	for _, s := range p.Init {
		out.WriteString(s.String())
	}
	out.WriteString("}")

	return out.String()
}

// StateVar declares a reactively tracked variable. Init must be a closed
// expression: it is evaluated before any scope exists.
type StateVar struct {
	Name string     `json:"name"`
	Init Expression `json:"init"`
}

func (sv *StateVar) String() string {
	return sv.Name + " = " + sv.Init.String() + ";"
}

// Func is a named, side-effecting statement sequence. Bodies have no return
// values; functions are invoked only through call statements.
type Func struct {
	Name   string      `json:"name"`
	Params []string    `json:"params"`
	Body   []Statement `json:"body"`
}

func (f *Func) String() string {
	var out bytes.Buffer

	out.WriteString("function ")
	out.WriteString(f.Name)
	out.WriteString("(")
	out.WriteString(strings.Join(f.Params, ", "))
	out.WriteString(") {")
	for _, s := range f.Body {
		out.WriteString(s.String())
	}
	out.WriteString("}")

	return out.String()
}

// Expressions

// Literal holds a number (float64), string, or boolean constant.
type Literal struct {
	Value any
}

func (l *Literal) expressionNode() {}
func (l *Literal) String() string {
	if s, ok := l.Value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", l.Value)
}

type Var struct {
	Name string
}

func (v *Var) expressionNode() {}
func (v *Var) String() string  { return v.Name }

type Binary struct {
	Op    string
	Left  Expression
	Right Expression
}

func (b *Binary) expressionNode() {}
func (b *Binary) String() string {
	return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")"
}

// CallExpr invokes a builtin function inside an expression. User-defined
// functions are not callable here; they only appear in call statements.
type CallExpr struct {
	Func string
	Args []Expression
}

func (c *CallExpr) expressionNode() {}
func (c *CallExpr) String() string {
	args := []string{}
	for _, a := range c.Args {
		args = append(args, a.String())
	}
	return c.Func + "(" + strings.Join(args, ", ") + ")"
}

// Statements

type Assign struct {
	Target string
	Expr   Expression
}

func (a *Assign) statementNode() {}
func (a *Assign) String() string {
	return a.Target + " = " + a.Expr.String() + ";"
}

// CallStmt invokes a user-defined function by name.
type CallStmt struct {
	Func string
	Args []Expression
}

func (c *CallStmt) statementNode() {}
func (c *CallStmt) String() string {
	args := []string{}
	for _, a := range c.Args {
		args = append(args, a.String())
	}
	return c.Func + "(" + strings.Join(args, ", ") + ");"
}

type If struct {
	Cond Expression
	Then []Statement
	Else []Statement
}

func (i *If) statementNode() {}
func (i *If) String() string {
	var out bytes.Buffer

	out.WriteString("if ")
	out.WriteString(i.Cond.String())
	out.WriteString(" {")
	for _, s := range i.Then {
		out.WriteString(s.String())
	}
	out.WriteString("}")
	if i.Else != nil {
		out.WriteString(" else {")
		for _, s := range i.Else {
			out.WriteString(s.String())
		}
		out.WriteString("}")
	}

	return out.String()
}
