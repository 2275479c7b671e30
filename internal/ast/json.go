package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind-tagged JSON encoding. Programs serialize to a stable shape that any
// external generator can produce directly, and decode back into the same
// structures (round-trip property).
//
// On decode, a bare number/string/boolean is accepted wherever an expression
// is expected, as shorthand for {"kind":"literal","value":...}. Encoding
// always emits the tagged form.

func (l *Literal) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string `json:"kind"`
		Value any    `json:"value"`
	}{"literal", l.Value})
}

func (v *Var) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		Name string `json:"name"`
	}{"var", v.Name})
}

func (b *Binary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string     `json:"kind"`
		Op    string     `json:"op"`
		Left  Expression `json:"left"`
		Right Expression `json:"right"`
	}{"binary", b.Op, b.Left, b.Right})
}

func (c *CallExpr) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string       `json:"kind"`
		Func string       `json:"func"`
		Args []Expression `json:"args"`
	}{"call", c.Func, c.Args})
}

func (a *Assign) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind   string     `json:"kind"`
		Target string     `json:"target"`
		Expr   Expression `json:"expr"`
	}{"assign", a.Target, a.Expr})
}

func (c *CallStmt) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string       `json:"kind"`
		Func string       `json:"func"`
		Args []Expression `json:"args"`
	}{"call", c.Func, c.Args})
}

func (i *If) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string      `json:"kind"`
		Cond Expression  `json:"cond"`
		Then []Statement `json:"then"`
		Else []Statement `json:"else,omitempty"`
	}{"if", i.Cond, i.Then, i.Else})
}

// DecodeProgram parses a JSON-encoded Program, the second way (next to the
// textual syntax) of producing one.
func DecodeProgram(data []byte) (*Program, error) {
	program := &Program{}
	if err := json.Unmarshal(data, program); err != nil {
		return nil, err
	}
	return program, nil
}

func (p *Program) UnmarshalJSON(data []byte) error {
	var aux struct {
		State []*StateVar       `json:"state"`
		Logic []*Func           `json:"logic"`
		Init  []json.RawMessage `json:"init"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.State = aux.State
	p.Logic = aux.Logic
	p.Init = nil
	for _, raw := range aux.Init {
		stmt, err := DecodeStmt(raw)
		if err != nil {
			return err
		}
		p.Init = append(p.Init, stmt)
	}
	return nil
}

func (sv *StateVar) UnmarshalJSON(data []byte) error {
	var aux struct {
		Name string          `json:"name"`
		Init json.RawMessage `json:"init"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	init, err := DecodeExpr(aux.Init)
	if err != nil {
		return fmt.Errorf("state var %q: %w", aux.Name, err)
	}
	sv.Name = aux.Name
	sv.Init = init
	return nil
}

func (f *Func) UnmarshalJSON(data []byte) error {
	var aux struct {
		Name   string            `json:"name"`
		Params []string          `json:"params"`
		Body   []json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	f.Name = aux.Name
	f.Params = aux.Params
	f.Body = nil
	for _, raw := range aux.Body {
		stmt, err := DecodeStmt(raw)
		if err != nil {
			return fmt.Errorf("function %q: %w", aux.Name, err)
		}
		f.Body = append(f.Body, stmt)
	}
	return nil
}

// DecodeExpr decodes a single expression node. Bare literals are accepted as
// shorthand for the tagged form.
func DecodeExpr(raw json.RawMessage) (Expression, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing expression")
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		var value any
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return nil, err
		}
		return literalOf(value)
	}

	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(trimmed, &head); err != nil {
		return nil, err
	}

	switch head.Kind {
	case "literal":
		var aux struct {
			Value any `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &aux); err != nil {
			return nil, err
		}
		return literalOf(aux.Value)

	case "var":
		var aux struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(trimmed, &aux); err != nil {
			return nil, err
		}
		if aux.Name == "" {
			return nil, fmt.Errorf("var expression is missing a name")
		}
		return &Var{Name: aux.Name}, nil

	case "binary":
		var aux struct {
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(trimmed, &aux); err != nil {
			return nil, err
		}
		left, err := DecodeExpr(aux.Left)
		if err != nil {
			return nil, err
		}
		right, err := DecodeExpr(aux.Right)
		if err != nil {
			return nil, err
		}
		return &Binary{Op: aux.Op, Left: left, Right: right}, nil

	case "call":
		aux, err := decodeCall(trimmed)
		if err != nil {
			return nil, err
		}
		return &CallExpr{Func: aux.fn, Args: aux.args}, nil

	default:
		return nil, fmt.Errorf("unknown expression kind %q", head.Kind)
	}
}

// DecodeStmt decodes a single statement node.
func DecodeStmt(raw json.RawMessage) (Statement, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	switch head.Kind {
	case "assign":
		var aux struct {
			Target string          `json:"target"`
			Expr   json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(raw, &aux); err != nil {
			return nil, err
		}
		if aux.Target == "" {
			return nil, fmt.Errorf("assign statement is missing a target")
		}
		expr, err := DecodeExpr(aux.Expr)
		if err != nil {
			return nil, err
		}
		return &Assign{Target: aux.Target, Expr: expr}, nil

	case "call":
		aux, err := decodeCall(raw)
		if err != nil {
			return nil, err
		}
		return &CallStmt{Func: aux.fn, Args: aux.args}, nil

	case "if":
		var aux struct {
			Cond json.RawMessage   `json:"cond"`
			Then []json.RawMessage `json:"then"`
			Else []json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(raw, &aux); err != nil {
			return nil, err
		}
		cond, err := DecodeExpr(aux.Cond)
		if err != nil {
			return nil, err
		}
		stmt := &If{Cond: cond}
		for _, r := range aux.Then {
			s, err := DecodeStmt(r)
			if err != nil {
				return nil, err
			}
			stmt.Then = append(stmt.Then, s)
		}
		for _, r := range aux.Else {
			s, err := DecodeStmt(r)
			if err != nil {
				return nil, err
			}
			stmt.Else = append(stmt.Else, s)
		}
		return stmt, nil

	default:
		return nil, fmt.Errorf("unknown statement kind %q", head.Kind)
	}
}

type callParts struct {
	fn   string
	args []Expression
}

func decodeCall(raw json.RawMessage) (callParts, error) {
	var aux struct {
		Func string            `json:"func"`
		Args []json.RawMessage `json:"args"`
	}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return callParts{}, err
	}
	if aux.Func == "" {
		return callParts{}, fmt.Errorf("call is missing a function name")
	}

	parts := callParts{fn: aux.Func}
	for _, r := range aux.Args {
		arg, err := DecodeExpr(r)
		if err != nil {
			return callParts{}, err
		}
		parts.args = append(parts.args, arg)
	}
	return parts, nil
}

func literalOf(value any) (*Literal, error) {
	switch value.(type) {
	case float64, string, bool:
		return &Literal{Value: value}, nil
	default:
		return nil, fmt.Errorf("literal value must be a number, string, or boolean, got %T", value)
	}
}
