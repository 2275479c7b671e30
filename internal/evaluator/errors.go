package evaluator

import (
	"errors"
	"fmt"
)

// ErrorKind tags every evaluation failure. Lex and parse errors carry
// positions instead; these kinds only arise while walking an already parsed
// AST.
type ErrorKind string

const (
	TypeError          ErrorKind = "TypeError"
	DivideByZero       ErrorKind = "DivideByZero"
	UnknownVariable    ErrorKind = "UnknownVariable"
	UnknownFunction    ErrorKind = "UnknownFunction"
	ShadowingViolation ErrorKind = "ShadowingViolation"
	StateInitError     ErrorKind = "StateInitError"
	DestroyedRuntime   ErrorKind = "DestroyedRuntimeUse"
)

type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Msg
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NewError builds a tagged evaluation error. The runtime layer uses it for
// failures that happen outside expression walking, such as construction and
// use-after-destroy.
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return newError(kind, format, args...)
}

// IsKind reports whether err is an evaluation error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var evalErr *Error
	return errors.As(err, &evalErr) && evalErr.Kind == kind
}
