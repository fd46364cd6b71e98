// Package session wires the interpreter pipeline together: tokenize, dump,
// strip comments, parse and evaluate. Globals live as long as the Session,
// which is what the REPL needs.
package session

import (
	"io"
	"log"
	"strings"

	"github.com/agenthands/pyint/pkg/compiler/ast"
	"github.com/agenthands/pyint/pkg/compiler/lexer"
	"github.com/agenthands/pyint/pkg/compiler/parser"
	"github.com/agenthands/pyint/pkg/tracedump"
	"github.com/agenthands/pyint/pkg/vm"
)

// Options configures a Session.
type Options struct {
	// Out receives print output; os.Stdout when nil.
	Out io.Writer
	// MaxDepth bounds the call depth; 0 means unlimited.
	MaxDepth int
	// Trace, when set, logs evaluator events.
	Trace *log.Logger
	// Sinks receive the raw token sequence of every source passed to Exec
	// or Tokenize.
	Sinks []tracedump.Sink
}

// Session runs sources against one evaluator whose globals persist between
// calls.
type Session struct {
	machine *vm.Machine
	sinks   []tracedump.Sink
}

// New returns a session configured by opts.
func New(opts Options) *Session {
	m := vm.NewMachine(opts.Out)
	m.MaxDepth = opts.MaxDepth
	m.Trace = opts.Trace
	return &Session{machine: m, sinks: opts.Sinks}
}

// Machine exposes the evaluator, e.g. to inspect globals.
func (s *Session) Machine() *vm.Machine {
	return s.machine
}

// Interrupt stops the running Exec at its next statement.
func (s *Session) Interrupt() {
	s.machine.Interrupt()
}

// Tokenize scans src and hands the tokens to every sink.
func (s *Session) Tokenize(src []byte) ([]lexer.Token, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	for _, sink := range s.sinks {
		if err := sink.Write(tokens); err != nil {
			return nil, err
		}
	}
	return tokens, nil
}

// Parse tokenizes and parses src without running it.
func (s *Session) Parse(src []byte) (*ast.Program, error) {
	tokens, err := s.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return parser.Parse(lexer.StripComments(tokens))
}

// Exec runs src against the session's globals. Nothing runs if src fails to
// lex or parse; a runtime error keeps the effects of earlier statements.
func (s *Session) Exec(src []byte) error {
	prog, err := s.Parse(src)
	if err != nil {
		return err
	}
	return s.machine.Run(prog)
}

// Complete reports whether an interactive entry can run. An entry that opens
// a block (a line ending in ':') is complete only once it ends with an empty
// line.
func Complete(entry string) bool {
	lines := strings.Split(strings.TrimRight(entry, "\n"), "\n")
	opensBlock := false
	for _, line := range lines {
		if strings.HasSuffix(strings.TrimSpace(stripComment(line)), ":") {
			opensBlock = true
			break
		}
	}
	if !opensBlock {
		return true
	}
	return strings.HasSuffix(entry, "\n\n")
}

// stripComment drops a '#' comment that is not inside a string literal.
func stripComment(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '\\' && inString:
			i++
		case c == '\'':
			inString = !inString
		case c == '#' && !inString:
			return line[:i]
		}
	}
	return line
}
