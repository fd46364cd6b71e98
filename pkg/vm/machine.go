package vm

import (
	"io"
	"log"
	"os"

	"github.com/ahrtr/gocontainer/set"
	"github.com/edwingeng/deque"
	"github.com/tevino/abool/v2"

	"github.com/agenthands/pyint/pkg/compiler/ast"
	"github.com/agenthands/pyint/pkg/compiler/lexer"
	"github.com/agenthands/pyint/pkg/core/value"
)

// DefaultMaxDepth is the call depth limit used by NewMachine.
const DefaultMaxDepth = 1000

// Frame saves the caller's activation while a function body runs. Call is
// the call-site token control returns to.
type Frame struct {
	Locals    map[string]value.Value
	Declared  set.Interface
	LoopDepth int
	Call      lexer.Token
}

// Machine is a tree-walking evaluator. Globals persist across Run calls, so
// one Machine can serve a whole interactive session.
type Machine struct {
	// Out receives print output.
	Out io.Writer
	// MaxDepth bounds the call depth; 0 disables the check.
	MaxDepth int
	// Trace, when set, logs calls, returns and breaks.
	Trace *log.Logger

	globals   map[string]value.Value
	locals    map[string]value.Value // nil at top level
	declared  set.Interface          // names declared global in this activation
	loopDepth int                    // enclosing while loops in this activation
	frames    deque.Deque

	interrupted *abool.AtomicBool
}

// NewMachine returns a machine writing print output to out (os.Stdout when
// nil).
func NewMachine(out io.Writer) *Machine {
	if out == nil {
		out = os.Stdout
	}
	m := &Machine{
		Out:         out,
		MaxDepth:    DefaultMaxDepth,
		interrupted: abool.NewBool(false),
	}
	m.Reset()
	return m
}

// Reset clears all interpreter state, including globals.
func (m *Machine) Reset() {
	m.globals = make(map[string]value.Value)
	m.locals = nil
	m.declared = nil
	m.loopDepth = 0
	m.frames = deque.NewDeque()
	m.interrupted.UnSet()
}

// Interrupt asks the running program to stop at the next statement. It is
// safe to call from another goroutine.
func (m *Machine) Interrupt() {
	m.interrupted.Set()
}

// Global returns the value bound to name in the global table.
func (m *Machine) Global(name string) (value.Value, bool) {
	v, ok := m.globals[name]
	return v, ok
}

// Depth returns the current call depth; 0 is top level.
func (m *Machine) Depth() int {
	return m.frames.Len()
}

// Run executes a program at top level. A pending interrupt from a previous
// run is discarded first.
func (m *Machine) Run(prog *ast.Program) error {
	m.interrupted.UnSet()
	_, err := m.execBlock(prog.Statements)
	return err
}

func (m *Machine) tracef(format string, args ...any) {
	if m.Trace != nil {
		m.Trace.Printf(format, args...)
	}
}

// call runs a user function: arguments are evaluated in the caller's scope,
// then the body runs with fresh locals bound to the parameters.
func (m *Machine) call(c *ast.CallExpr) (value.Value, error) {
	name := c.Token.Lexeme
	fv, ok := m.globals[name]
	if !ok {
		return value.Value{}, errorf(c.Token, ErrUndefinedName, "function '%s' is not defined", name)
	}
	if fv.Type != value.TypeFunction {
		return value.Value{}, errorf(c.Token, ErrNotCallable, "'%s' object is not callable", fv.TypeName())
	}
	fn := fv.Function()

	args := make([]value.Value, len(c.Args))
	for i, arg := range c.Args {
		v, err := m.eval(arg)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}
	if len(args) != len(fn.Params) {
		return value.Value{}, errorf(c.Token, ErrArity, "%s() takes %d arguments but %d were given", name, len(fn.Params), len(args))
	}
	if m.MaxDepth > 0 && m.Depth() >= m.MaxDepth {
		return value.Value{}, errorf(c.Token, ErrRecursion, "maximum recursion depth exceeded in %s()", name)
	}

	locals := make(map[string]value.Value, len(fn.Params))
	for i, param := range fn.Params {
		locals[param] = args[i]
	}

	m.frames.PushBack(&Frame{Locals: m.locals, Declared: m.declared, LoopDepth: m.loopDepth, Call: c.Token})
	m.locals, m.declared, m.loopDepth = locals, set.New(), 0
	m.tracef("call %s depth=%d", name, m.Depth())

	sig, err := m.execBlock(fn.Body)

	frame := m.frames.PopBack().(*Frame)
	m.locals, m.declared, m.loopDepth = frame.Locals, frame.Declared, frame.LoopDepth
	if err != nil {
		return value.Value{}, err
	}

	result := value.None()
	if sig.Kind == SignalReturn {
		result = sig.Value
	}
	m.tracef("return %s -> %s to line %d", name, result.Format(), frame.Call.Line)
	return result, nil
}
