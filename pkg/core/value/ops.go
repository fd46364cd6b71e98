package value

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/agenthands/pyint/pkg/compiler/lexer"
)

var (
	ErrUnsupported    = errors.New("unsupported operand types")
	ErrDivisionByZero = errors.New("division by zero")
	ErrOverflow       = errors.New("integer overflow")
)

// maxRepeat bounds the length of a string built by repetition.
const maxRepeat = 1 << 30

func unsupported(op lexer.Kind, a, b Value) error {
	return fmt.Errorf("%w for %s: '%s' and '%s'", ErrUnsupported, op.Symbol(), a.TypeName(), b.TypeName())
}

// Arith applies a binary arithmetic operator. '+' accepts numeric pairs and
// string pairs; '-', '*' and '/' accept numeric pairs; '%' accepts ints only.
// int op int stays int except for '/', which always yields a float; an int
// result outside int64 fails with ErrOverflow.
func Arith(op lexer.Kind, a, b Value) (Value, error) {
	switch op {
	case lexer.KindPlus:
		if a.Type == TypeString && b.Type == TypeString {
			return Str(a.Str() + b.Str()), nil
		}
	case lexer.KindModulo:
		if a.Type != TypeInt || b.Type != TypeInt {
			return Value{}, unsupported(op, a, b)
		}
		if b.Int() == 0 {
			return Value{}, fmt.Errorf("%w: integer modulo by zero", ErrDivisionByZero)
		}
		r := a.Int() % b.Int()
		if r != 0 && (r < 0) != (b.Int() < 0) {
			r += b.Int()
		}
		return Int(r), nil
	case lexer.KindMinus, lexer.KindTimes, lexer.KindDivide:
	default:
		return Value{}, fmt.Errorf("%w: unknown operator %v", ErrUnsupported, op)
	}

	if !a.IsNumeric() || !b.IsNumeric() {
		return Value{}, unsupported(op, a, b)
	}

	if op == lexer.KindDivide {
		if b.Float() == 0 {
			return Value{}, fmt.Errorf("%w: %s division by zero", ErrDivisionByZero, b.TypeName())
		}
		return Float(a.Float() / b.Float()), nil
	}

	if a.Type == TypeInt && b.Type == TypeInt {
		x, y := a.Int(), b.Int()
		var r int64
		var ok bool
		switch op {
		case lexer.KindPlus:
			r, ok = addInt(x, y)
		case lexer.KindMinus:
			r, ok = subInt(x, y)
		default:
			r, ok = mulInt(x, y)
		}
		if !ok {
			return Value{}, fmt.Errorf("%w: %d %s %d", ErrOverflow, x, op.Symbol(), y)
		}
		return Int(r), nil
	}

	x, y := a.Float(), b.Float()
	switch op {
	case lexer.KindPlus:
		return Float(x + y), nil
	case lexer.KindMinus:
		return Float(x - y), nil
	default:
		return Float(x * y), nil
	}
}

var compoundOps = map[lexer.Kind]lexer.Kind{
	lexer.KindAddAssign: lexer.KindPlus,
	lexer.KindSubAssign: lexer.KindMinus,
	lexer.KindMulAssign: lexer.KindTimes,
	lexer.KindDivAssign: lexer.KindDivide,
}

// Compound applies a compound assignment operator to the current value of a
// variable. It follows Arith, except that '*=' also repeats a string by an
// int count.
func Compound(op lexer.Kind, cur, v Value) (Value, error) {
	base, ok := compoundOps[op]
	if !ok {
		return Value{}, fmt.Errorf("%w: unknown operator %v", ErrUnsupported, op)
	}
	if op == lexer.KindMulAssign && cur.Type == TypeString && v.Type == TypeInt {
		s, n := cur.Str(), v.Int()
		if n <= 0 || s == "" {
			return Str(""), nil
		}
		if n > int64(maxRepeat/len(s)) {
			return Value{}, fmt.Errorf("%w for %s: repeated string is too long", ErrUnsupported, op.Symbol())
		}
		return Str(strings.Repeat(s, int(n))), nil
	}

	res, err := Arith(base, cur, v)
	if errors.Is(err, ErrUnsupported) {
		return Value{}, unsupported(op, cur, v)
	}
	return res, err
}

// Equal reports whether a and b are equal. It never fails: values of
// unrelated types are simply unequal.
func Equal(a, b Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		if a.Type == TypeInt && b.Type == TypeInt {
			return a.Int() == b.Int()
		}
		return a.Float() == b.Float()
	}
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeNone:
		return true
	case TypeBool:
		return a.Bool() == b.Bool()
	case TypeString:
		return a.Str() == b.Str()
	case TypeFunction:
		return a.Function() == b.Function()
	}
	return false
}

// Compare applies a comparison operator and returns a bool value. '==' and
// '!=' are total; the ordering operators accept numeric pairs and string
// pairs only.
func Compare(op lexer.Kind, a, b Value) (Value, error) {
	switch op {
	case lexer.KindEqual:
		return Bool(Equal(a, b)), nil
	case lexer.KindNotEqual:
		return Bool(!Equal(a, b)), nil
	}

	var c int
	switch {
	case a.Type == TypeInt && b.Type == TypeInt:
		c = cmp.Compare(a.Int(), b.Int())
	case a.IsNumeric() && b.IsNumeric():
		x, y := a.Float(), b.Float()
		if math.IsNaN(x) || math.IsNaN(y) {
			return Bool(false), nil
		}
		c = cmp.Compare(x, y)
	case a.Type == TypeString && b.Type == TypeString:
		c = strings.Compare(a.Str(), b.Str())
	default:
		return Value{}, unsupported(op, a, b)
	}

	switch op {
	case lexer.KindLess:
		return Bool(c < 0), nil
	case lexer.KindLessEqual:
		return Bool(c <= 0), nil
	case lexer.KindGreater:
		return Bool(c > 0), nil
	case lexer.KindGreaterEqual:
		return Bool(c >= 0), nil
	}
	return Value{}, fmt.Errorf("%w: unknown operator %v", ErrUnsupported, op)
}

// Negate applies unary minus to an int or float.
func Negate(v Value) (Value, error) {
	switch v.Type {
	case TypeInt:
		if v.Int() == math.MinInt64 {
			return Value{}, fmt.Errorf("%w: -(%d)", ErrOverflow, v.Int())
		}
		return Int(-v.Int()), nil
	case TypeFloat:
		return Float(-v.Float()), nil
	}
	return Value{}, fmt.Errorf("%w for unary -: '%s'", ErrUnsupported, v.TypeName())
}

// addInt, subInt and mulInt report ok=false when the result does not fit in
// an int64.
func addInt(x, y int64) (int64, bool) {
	r := x + y
	return r, (x >= 0) != (y >= 0) || (r >= 0) == (x >= 0)
}

func subInt(x, y int64) (int64, bool) {
	r := x - y
	return r, (x >= 0) == (y >= 0) || (r >= 0) == (x >= 0)
}

func mulInt(x, y int64) (int64, bool) {
	if x == 0 || y == 0 {
		return 0, true
	}
	if (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
		return 0, false
	}
	r := x * y
	return r, r/y == x
}
