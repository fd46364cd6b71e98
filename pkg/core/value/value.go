package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/agenthands/pyint/pkg/compiler/ast"
	"github.com/agenthands/pyint/pkg/compiler/lexer"
)

// Type represents the tag in the Value tagged union.
type Type uint8

const (
	TypeNone Type = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeString
	TypeFunction
)

var typeNames = [...]string{
	TypeNone:     "NoneType",
	TypeInt:      "int",
	TypeFloat:    "float",
	TypeBool:     "bool",
	TypeString:   "str",
	TypeFunction: "function",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// Value is a tagged union. Ints, floats and bools live in Data; strings and
// functions live in Opaque.
type Value struct {
	Type   Type
	Data   uint64
	Opaque any
}

// Function is a user-defined function record.
type Function struct {
	Name   string
	Params []string
	Body   []ast.Statement
	Def    lexer.Token
}

func None() Value { return Value{Type: TypeNone} }

func Int(i int64) Value { return Value{Type: TypeInt, Data: uint64(i)} }

func Float(f float64) Value { return Value{Type: TypeFloat, Data: math.Float64bits(f)} }

func Str(s string) Value { return Value{Type: TypeString, Opaque: s} }

func Func(f *Function) Value { return Value{Type: TypeFunction, Opaque: f} }

func Bool(b bool) Value {
	v := Value{Type: TypeBool}
	if b {
		v.Data = 1
	}
	return v
}

// Int returns the value as int64.
func (v Value) Int() int64 {
	return int64(v.Data)
}

// Float returns the value as float64, converting ints.
func (v Value) Float() float64 {
	if v.Type == TypeFloat {
		return math.Float64frombits(v.Data)
	}
	return float64(int64(v.Data))
}

func (v Value) Bool() bool {
	return v.Data != 0
}

func (v Value) Str() string {
	s, _ := v.Opaque.(string)
	return s
}

func (v Value) Function() *Function {
	f, _ := v.Opaque.(*Function)
	return f
}

// IsNumeric reports whether v is an int or a float. Bools are not numeric.
func (v Value) IsNumeric() bool {
	return v.Type == TypeInt || v.Type == TypeFloat
}

// TypeName returns the language-level name of v's type.
func (v Value) TypeName() string {
	return v.Type.String()
}

// Truthy reports whether v counts as true in a condition.
func (v Value) Truthy() bool {
	switch v.Type {
	case TypeNone:
		return false
	case TypeInt, TypeBool:
		return v.Data != 0
	case TypeFloat:
		return v.Float() != 0
	case TypeString:
		return v.Str() != ""
	}
	return true
}

// Format returns the value as print renders it.
func (v Value) Format() string {
	switch v.Type {
	case TypeNone:
		return "None"
	case TypeInt:
		return strconv.FormatInt(v.Int(), 10)
	case TypeFloat:
		return formatFloat(v.Float())
	case TypeBool:
		if v.Bool() {
			return "True"
		}
		return "False"
	case TypeString:
		return v.Str()
	case TypeFunction:
		if f := v.Function(); f != nil {
			return fmt.Sprintf("<function %s>", f.Name)
		}
		return "<function>"
	}
	return fmt.Sprintf("%v", v.Data)
}

func (v Value) String() string {
	return v.Format()
}

// formatFloat renders f the way Python's repr does: fixed notation with a
// trailing ".0" for integral values, exponent notation outside [1e-4, 1e16).
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
