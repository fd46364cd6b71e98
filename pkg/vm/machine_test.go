package vm_test

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/agenthands/pyint/pkg/compiler/ast"
	"github.com/agenthands/pyint/pkg/compiler/lexer"
	"github.com/agenthands/pyint/pkg/compiler/parser"
	"github.com/agenthands/pyint/pkg/core/value"
	"github.com/agenthands/pyint/pkg/vm"
)

func compile(t testing.TB, src string) *ast.Program {
	t.Helper()
	tokens, err := lexer.Tokenize([]byte(src))
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	prog, err := parser.Parse(lexer.StripComments(tokens))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return prog
}

func run(t *testing.T, src string) (string, *vm.Machine, error) {
	t.Helper()
	var out bytes.Buffer
	m := vm.NewMachine(&out)
	err := m.Run(compile(t, src))
	return out.String(), m, err
}

func TestMachineRun(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"Print", "print(1, 'a', 2.5, True, None)\n", "1 a 2.5 True None\n"},
		{"EmptyPrint", "print()\n", "\n"},
		{"Arithmetic", "print(1 + 2 * 3, (1 + 2) * 3, 7 / 2, 7 % 3, -7 % 3)\n", "7 9 3.5 1 2\n"},
		{"Negation", "x = 4\nprint(-x, --x, -(x - 6))\n", "-4 4 2\n"},
		{"CompoundAssign", "x = 1\nx += 2\nx *= 3\nx -= 1\nx /= 4\nprint(x)\n", "2.0\n"},
		{"StringOps", "s = 'ab'\ns += 'c'\ns *= 2\nprint(s + '!')\n", "abcabc!\n"},
		{"Chain", "print(3 > 2 > 1, 1 > 2 > 3, 5 == 5 != 4, 1 < 3 < 2)\n", "True False True False\n"},
		{"BareRelExpr", "x = 1 + 1\nprint(x)\n", "2\n"},
		{"Equality", "print(1 == '1', 1 == 1.0, None == None, True != 1)\n", "False True True True\n"},
		{"IfElifElse", "x = 2\nif x == 1:\n    print('one')\nelif x == 2:\n    print('two')\nelse:\n    print('many')\n", "two\n"},
		{"Else", "if 0:\n    print('no')\nelse:\n    print('yes')\n", "yes\n"},
		{"Truthiness", "if '' :\n    print(1)\nelif None:\n    print(2)\nelif 0.0:\n    print(3)\nelse:\n    print(4)\n", "4\n"},
		{"While", "i = 0\nwhile i < 3:\n    print(i)\n    i += 1\n", "0\n1\n2\n"},
		{
			"BreakInNestedIf",
			"i = 0\nwhile True:\n    if i == 2:\n        break\n    i += 1\nprint(i)\n",
			"2\n",
		},
		{
			"BreakInnerLoopOnly",
			"i = 0\nwhile i < 2:\n    j = 0\n    while True:\n        j += 1\n        if j > 1:\n            break\n    print(i, j)\n    i += 1\n",
			"0 2\n1 2\n",
		},
		{"Call", "def f(a, b):\n    return a + b\nprint(f(2, 3))\n", "5\n"},
		{"BareReturn", "def f():\n    return\nprint(f())\n", "None\n"},
		{"NoReturn", "def f():\n    x = 1\nprint(f())\n", "None\n"},
		{
			"ReturnFromLoop",
			"def find(n):\n    i = 0\n    while True:\n        if i * i >= n:\n            return i\n        i += 1\nprint(find(10))\n",
			"4\n",
		},
		{
			"Recursion",
			"def fact(n):\n    if n <= 1:\n        return 1\n    return n * fact(n - 1)\nprint(fact(10))\n",
			"3628800\n",
		},
		{"CallStatement", "def hi():\n    print('hi')\nhi()\n", "hi\n"},
		{"FunctionValue", "def f():\n    pass\nprint(f)\n", "<function f>\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, tt.src)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if out != tt.want {
				t.Errorf("output:\n got  %q\n want %q", out, tt.want)
			}
		})
	}
}

func TestMachineScoping(t *testing.T) {
	src := `x = 1
y = 10
def f(x):
    x += 100
    y = 5
    return x + y
def g():
    global y
    y += 1
    z = y
print(f(2))
g()
print(x, y)
`
	out, m, err := run(t, src)
	if err != nil {
		t.Fatal(err)
	}
	if out != "107\n1 11\n" {
		t.Errorf("got %q", out)
	}
	if _, ok := m.Global("z"); ok {
		t.Error("local z leaked into globals")
	}
	if v, _ := m.Global("y"); v.Int() != 11 {
		t.Errorf("global y: got %s", v)
	}
	if m.Depth() != 0 {
		t.Errorf("depth after run: %d", m.Depth())
	}
}

func TestMachineNestedGlobalDeclarations(t *testing.T) {
	src := `y = 1
def g():
    y = 50
    return y
def f():
    global y
    r = g()
    y += 1
    return r
print(f(), y)
`
	out, m, err := run(t, src)
	if err != nil {
		t.Fatal(err)
	}
	if out != "50 2\n" {
		t.Errorf("got %q", out)
	}
	if v, _ := m.Global("y"); v.Int() != 2 {
		t.Errorf("global y: got %s", v)
	}
}

func TestMachineGlobalsVisibleInFunctions(t *testing.T) {
	out, _, err := run(t, "n = 3\ndef show():\n    print(n)\nshow()\n")
	if err != nil {
		t.Fatal(err)
	}
	if out != "3\n" {
		t.Errorf("got %q", out)
	}
}

func TestMachineErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		err    error
		line   int
		column int
		msg    string
	}{
		{"UndefinedName", "print(x)\n", vm.ErrUndefinedName, 1, 7, "name 'x' is not defined"},
		{"UndefinedCompound", "x += 1\n", vm.ErrUndefinedName, 1, 1, "name 'x' is not defined"},
		{"LocalCompoundNeedsLocal", "x = 1\ndef f():\n    x += 1\nf()\n", vm.ErrUndefinedName, 3, 5, "name 'x' is not defined"},
		{"StringMinus", "print('a' - 'b')\n", vm.ErrTypeMismatch, 1, 11, "for -: 'str' and 'str'"},
		{"OrderingMixed", "print(1 < 'a')\n", vm.ErrTypeMismatch, 1, 9, "for <: 'int' and 'str'"},
		{"ChainChecksEveryLink", "print(2 < 1 < 'a')\n", vm.ErrTypeMismatch, 1, 13, "'int' and 'str'"},
		{"NegateString", "s = 'a'\nprint(-s)\n", vm.ErrTypeMismatch, 2, 7, "unary -"},
		{"NegateBool", "print(-True)\n", vm.ErrTypeMismatch, 1, 7, "'bool'"},
		{"DivisionByZero", "print(1 / 0)\n", vm.ErrDivisionByZero, 1, 9, "division by zero"},
		{"ModuloByZero", "x = 5\nx = x % 0\n", vm.ErrDivisionByZero, 2, 7, "division by zero"},
		{"CompoundDivZero", "x = 5\nx /= 0\n", vm.ErrDivisionByZero, 2, 3, "division by zero"},
		{"Arity", "def f(a):\n    pass\nf(1, 2)\n", vm.ErrArity, 3, 1, "f() takes 1 arguments but 2 were given"},
		{"UndefinedFunction", "g()\n", vm.ErrUndefinedName, 1, 1, "function 'g' is not defined"},
		{"NotCallable", "g = 1\ng()\n", vm.ErrNotCallable, 2, 1, "'int' object is not callable"},
		{"BreakOutsideLoop", "break\n", vm.ErrContext, 1, 1, "'break' outside loop"},
		{"BreakInFunctionInLoop", "def f():\n    break\nwhile True:\n    f()\n", vm.ErrContext, 2, 5, "'break' outside loop"},
		{"ReturnOutsideFunction", "return 1\n", vm.ErrContext, 1, 1, "'return' outside function"},
		{"GlobalAtTopLevel", "x = 1\nglobal x\n", vm.ErrContext, 2, 1, "'global' declaration outside function"},
		{"GlobalUnknown", "def f():\n    global q\nf()\n", vm.ErrUndefinedName, 2, 12, "global name 'q' is not defined"},
		{"Recursion", "def f(n):\n    return f(n + 1)\nf(0)\n", vm.ErrRecursion, 2, 12, "maximum recursion depth exceeded"},
		{
			"FactorialOverflow",
			"def fact(n):\n    if n <= 1:\n        return 1\n    return n * fact(n - 1)\nprint(fact(21))\n",
			vm.ErrOverflow, 4, 14, "integer overflow",
		},
		{"CompoundOverflow", "x = 9223372036854775807\nx += 1\n", vm.ErrOverflow, 2, 3, "9223372036854775807 + 1"},
		{"NegateOverflow", "x = -9223372036854775808\nprint(-x)\n", vm.ErrOverflow, 2, 7, "integer overflow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, m, err := run(t, tt.src)
			if !errors.Is(err, tt.err) {
				t.Fatalf("got %v, want %v", err, tt.err)
			}
			var rerr *vm.RuntimeError
			if !errors.As(err, &rerr) {
				t.Fatalf("expected *vm.RuntimeError, got %T", err)
			}
			if rerr.Line != tt.line || rerr.Column != tt.column {
				t.Errorf("position: got %d:%d, want %d:%d", rerr.Line, rerr.Column, tt.line, tt.column)
			}
			if !strings.Contains(rerr.Msg, tt.msg) {
				t.Errorf("message %q does not contain %q", rerr.Msg, tt.msg)
			}
			if m.Depth() != 0 {
				t.Errorf("frames not unwound: depth %d", m.Depth())
			}
		})
	}
}

func TestMachineSideEffectsBeforeError(t *testing.T) {
	out, m, err := run(t, "x = 1\nprint('before')\ny = x + 'a'\nz = 2\n")
	if !errors.Is(err, vm.ErrTypeMismatch) {
		t.Fatalf("got %v", err)
	}
	if out != "before\n" {
		t.Errorf("got %q", out)
	}
	if _, ok := m.Global("z"); ok {
		t.Error("statement after the error was executed")
	}
}

func TestMachineGlobalsPersistAcrossRuns(t *testing.T) {
	var out bytes.Buffer
	m := vm.NewMachine(&out)
	if err := m.Run(compile(t, "def inc(n):\n    return n + 1\nx = 1\n")); err != nil {
		t.Fatal(err)
	}
	if err := m.Run(compile(t, "x = inc(x)\nprint(x)\n")); err != nil {
		t.Fatal(err)
	}
	if out.String() != "2\n" {
		t.Errorf("got %q", out.String())
	}

	m.Reset()
	if _, ok := m.Global("x"); ok {
		t.Error("Reset kept globals")
	}
}

func TestMachineRedefinition(t *testing.T) {
	var out bytes.Buffer
	m := vm.NewMachine(&out)
	if err := m.Run(compile(t, "def f():\n    pass\n")); err != nil {
		t.Fatal(err)
	}
	err := m.Run(compile(t, "\ndef f(a):\n    pass\n"))
	if !errors.Is(err, vm.ErrRedefinition) {
		t.Fatalf("got %v, want ErrRedefinition", err)
	}
	if line, col := err.(*vm.RuntimeError).Position(); line != 2 || col != 5 {
		t.Errorf("position: got %d:%d", line, col)
	}

	// Rebinding the name to a non-function value frees it for a new def.
	if err := m.Run(compile(t, "f = 0\ndef f(a):\n    return a\nprint(f(3))\n")); err != nil {
		t.Fatal(err)
	}
	if out.String() != "3\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestMachineMaxDepth(t *testing.T) {
	src := "def down(n):\n    if n == 0:\n        return 0\n    return down(n - 1)\nprint(down(50))\n"

	var out bytes.Buffer
	m := vm.NewMachine(&out)
	m.MaxDepth = 10
	if err := m.Run(compile(t, src)); !errors.Is(err, vm.ErrRecursion) {
		t.Fatalf("MaxDepth=10: got %v, want ErrRecursion", err)
	}

	out.Reset()
	m.Reset()
	m.MaxDepth = 0
	if err := m.Run(compile(t, src)); err != nil {
		t.Fatalf("MaxDepth=0: %v", err)
	}
	if out.String() != "0\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestMachineInterrupt(t *testing.T) {
	var out bytes.Buffer
	m := vm.NewMachine(&out)
	m.Interrupt()
	// A pending interrupt is discarded when a new run starts.
	if err := m.Run(compile(t, "x = 1\n")); err != nil {
		t.Fatalf("stale interrupt aborted run: %v", err)
	}

	loop := compile(t, "while True:\n    pass\n")
	done := make(chan error, 1)
	go func() {
		done <- m.Run(loop)
	}()
	for {
		m.Interrupt()
		select {
		case err := <-done:
			if !errors.Is(err, vm.ErrInterrupted) {
				t.Fatalf("got %v, want ErrInterrupted", err)
			}
			return
		default:
		}
	}
}

func TestMachineTrace(t *testing.T) {
	var out, trace bytes.Buffer
	m := vm.NewMachine(&out)
	m.Trace = log.New(&trace, "", 0)
	src := "def f(x):\n    while True:\n        break\n    return x\nf(7)\n"
	if err := m.Run(compile(t, src)); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"def f(1 params)", "call f depth=1", "break at line 3", "return f -> 7 to line 5"} {
		if !strings.Contains(trace.String(), want) {
			t.Errorf("trace missing %q:\n%s", want, trace.String())
		}
	}
}

func TestSignalKindString(t *testing.T) {
	if vm.SignalReturn.String() != "return" || vm.SignalBreak.String() != "break" || vm.SignalNormal.String() != "normal" {
		t.Error("unexpected signal names")
	}
	s := vm.Signal{Kind: vm.SignalReturn, Value: value.Int(1)}
	if s.Value.Int() != 1 {
		t.Error("signal payload lost")
	}
}
