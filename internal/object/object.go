package object

import (
	"fmt"
	"strconv"
)

type ObjectType string

const (
	NUMBER_OBJ  = "NUMBER"
	STRING_OBJ  = "STRING"
	BOOLEAN_OBJ = "BOOLEAN"
)

// Object is a runtime value. The language only has three literal types.
type Object interface {
	Type() ObjectType
	Inspect() string
}

type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return strconv.FormatFloat(n.Value, 'f', -1, 64) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

// Equals compares by value with no type restriction; values of different
// types are simply unequal.
func Equals(a, b Object) bool {
	switch a := a.(type) {
	case *Number:
		if b, ok := b.(*Number); ok {
			return a.Value == b.Value
		}
	case *String:
		if b, ok := b.(*String); ok {
			return a.Value == b.Value
		}
	case *Boolean:
		if b, ok := b.(*Boolean); ok {
			return a.Value == b.Value
		}
	}
	return false
}

// FromLiteral converts a plain Go literal (as produced by AST literals,
// JSON decoding, or snapshot maps) into a runtime value.
func FromLiteral(value any) (Object, error) {
	switch value := value.(type) {
	case float64:
		return &Number{Value: value}, nil
	case int:
		return &Number{Value: float64(value)}, nil
	case int64:
		return &Number{Value: float64(value)}, nil
	case string:
		return &String{Value: value}, nil
	case bool:
		return &Boolean{Value: value}, nil
	default:
		return nil, fmt.Errorf("unsupported literal type %T", value)
	}
}

// ToLiteral is the inverse of FromLiteral, used for flat serialization.
func ToLiteral(obj Object) any {
	switch obj := obj.(type) {
	case *Number:
		return obj.Value
	case *String:
		return obj.Value
	case *Boolean:
		return obj.Value
	default:
		return nil
	}
}
