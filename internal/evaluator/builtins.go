package evaluator

import (
	"math"
	"math/rand"
	"unicode/utf8"

	"github.com/bryanhoulton/giast/internal/object"
)

// Builtin is a fixed, non-extensible expression-level function. User code
// cannot register new ones.
type Builtin struct {
	Fn func(args ...object.Object) (object.Object, error)
}

var builtins = map[string]*Builtin{
	"randInt": funcRandInt(),
	"rand":    funcRand(),
	"min":     funcMin(),
	"max":     funcMax(),
	"abs":     funcUnaryMath("abs", math.Abs),
	"floor":   funcUnaryMath("floor", math.Floor),
	"ceil":    funcUnaryMath("ceil", math.Ceil),
	"round":   funcUnaryMath("round", math.Round),
	"len":     funcLen(),
}

// funcRandInt returns a whole number in [0, n) for a positive n.
func funcRandInt() *Builtin {
	return &Builtin{
		Fn: func(args ...object.Object) (object.Object, error) {
			if len(args) != 1 {
				return nil, newError(UnknownFunction,
					"wrong number of arguments to `randInt`. got=%d, want=1", len(args))
			}
			n, ok := args[0].(*object.Number)
			if !ok {
				return nil, newError(TypeError,
					"argument to `randInt` must be NUMBER, got %s", args[0].Type())
			}
			if n.Value < 1 {
				return nil, newError(TypeError,
					"argument to `randInt` must be a positive number, got %s", n.Inspect())
			}
			return &object.Number{Value: float64(rand.Intn(int(n.Value)))}, nil
		},
	}
}

func funcRand() *Builtin {
	return &Builtin{
		Fn: func(args ...object.Object) (object.Object, error) {
			if len(args) != 0 {
				return nil, newError(UnknownFunction,
					"wrong number of arguments to `rand`. got=%d, want=0", len(args))
			}
			return &object.Number{Value: rand.Float64()}, nil
		},
	}
}

func funcMin() *Builtin {
	return &Builtin{
		Fn: func(args ...object.Object) (object.Object, error) {
			values, err := numberArgs("min", args)
			if err != nil {
				return nil, err
			}
			result := values[0]
			for _, v := range values[1:] {
				result = math.Min(result, v)
			}
			return &object.Number{Value: result}, nil
		},
	}
}

func funcMax() *Builtin {
	return &Builtin{
		Fn: func(args ...object.Object) (object.Object, error) {
			values, err := numberArgs("max", args)
			if err != nil {
				return nil, err
			}
			result := values[0]
			for _, v := range values[1:] {
				result = math.Max(result, v)
			}
			return &object.Number{Value: result}, nil
		},
	}
}

func funcUnaryMath(name string, fn func(float64) float64) *Builtin {
	return &Builtin{
		Fn: func(args ...object.Object) (object.Object, error) {
			if len(args) != 1 {
				return nil, newError(UnknownFunction,
					"wrong number of arguments to `%s`. got=%d, want=1", name, len(args))
			}
			n, ok := args[0].(*object.Number)
			if !ok {
				return nil, newError(TypeError,
					"argument to `%s` must be NUMBER, got %s", name, args[0].Type())
			}
			return &object.Number{Value: fn(n.Value)}, nil
		},
	}
}

// funcLen counts runes, not bytes.
func funcLen() *Builtin {
	return &Builtin{
		Fn: func(args ...object.Object) (object.Object, error) {
			if len(args) != 1 {
				return nil, newError(UnknownFunction,
					"wrong number of arguments to `len`. got=%d, want=1", len(args))
			}
			s, ok := args[0].(*object.String)
			if !ok {
				return nil, newError(TypeError,
					"argument to `len` must be STRING, got %s", args[0].Type())
			}
			return &object.Number{Value: float64(utf8.RuneCountInString(s.Value))}, nil
		},
	}
}

func numberArgs(name string, args []object.Object) ([]float64, error) {
	if len(args) < 2 {
		return nil, newError(UnknownFunction,
			"wrong number of arguments to `%s`. got=%d, want=2+", name, len(args))
	}
	values := make([]float64, len(args))
	for i, arg := range args {
		n, ok := arg.(*object.Number)
		if !ok {
			return nil, newError(TypeError,
				"argument to `%s` must be NUMBER, got %s", name, arg.Type())
		}
		values[i] = n.Value
	}
	return values, nil
}
