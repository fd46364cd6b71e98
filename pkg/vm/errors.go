package vm

import (
	"errors"
	"fmt"

	"github.com/agenthands/pyint/pkg/compiler/lexer"
)

var (
	ErrUndefinedName  = errors.New("vm: undefined name")
	ErrTypeMismatch   = errors.New("vm: type mismatch")
	ErrArity          = errors.New("vm: wrong number of arguments")
	ErrNotCallable    = errors.New("vm: object is not callable")
	ErrRedefinition   = errors.New("vm: function redefinition")
	ErrContext        = errors.New("vm: statement outside its context")
	ErrDivisionByZero = errors.New("vm: division by zero")
	ErrOverflow       = errors.New("vm: integer overflow")
	ErrRecursion      = errors.New("vm: maximum recursion depth exceeded")
	ErrInterrupted    = errors.New("vm: interrupted")
)

// RuntimeError is a fatal evaluation error located at the token of the
// construct that failed. Err holds one of the sentinels above, or the
// underlying I/O error when output fails.
type RuntimeError struct {
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Position returns the location the error refers to.
func (e *RuntimeError) Position() (int, int) {
	return e.Line, e.Column
}

func errorf(tok lexer.Token, sentinel error, format string, args ...any) error {
	return &RuntimeError{
		Line:   tok.Line,
		Column: tok.Column,
		Msg:    fmt.Sprintf(format, args...),
		Err:    sentinel,
	}
}
