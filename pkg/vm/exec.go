package vm

import (
	"github.com/agenthands/pyint/pkg/compiler/ast"
	"github.com/agenthands/pyint/pkg/compiler/lexer"
	"github.com/agenthands/pyint/pkg/core/value"
	"github.com/agenthands/pyint/pkg/stdlib"
)

// execBlock runs statements in order and stops at the first non-normal
// signal, which it returns to the enclosing construct.
func (m *Machine) execBlock(stmts []ast.Statement) (Signal, error) {
	for _, stmt := range stmts {
		sig, err := m.exec(stmt)
		if err != nil || sig.Kind != SignalNormal {
			return sig, err
		}
	}
	return normal, nil
}

func (m *Machine) exec(stmt ast.Statement) (Signal, error) {
	if m.interrupted.IsSet() {
		return normal, errorf(stmt.Pos(), ErrInterrupted, "interrupted")
	}

	switch s := stmt.(type) {
	case *ast.PrintStmt:
		args := make([]value.Value, len(s.Args))
		for i, arg := range s.Args {
			v, err := m.eval(arg)
			if err != nil {
				return normal, err
			}
			args[i] = v
		}
		if err := stdlib.Print(m.Out, args); err != nil {
			return normal, &RuntimeError{Line: s.Token.Line, Column: s.Token.Column, Msg: err.Error(), Err: err}
		}
		return normal, nil

	case *ast.AssignStmt:
		return normal, m.assign(s)

	case *ast.PassStmt:
		return normal, nil

	case *ast.BreakStmt:
		if m.loopDepth == 0 {
			return normal, errorf(s.Token, ErrContext, "'break' outside loop")
		}
		m.tracef("break at line %d", s.Token.Line)
		return breakSignal(), nil

	case *ast.GlobalStmt:
		return normal, m.declareGlobals(s)

	case *ast.ReturnStmt:
		if m.Depth() == 0 {
			return normal, errorf(s.Token, ErrContext, "'return' outside function")
		}
		if s.Value == nil {
			return returnSignal(value.None()), nil
		}
		v, err := m.eval(s.Value)
		if err != nil {
			return normal, err
		}
		return returnSignal(v), nil

	case *ast.CallStmt:
		_, err := m.call(s.Call)
		return normal, err

	case *ast.IfStmt:
		for _, branch := range s.Branches {
			cond, err := m.eval(branch.Condition)
			if err != nil {
				return normal, err
			}
			if cond.Truthy() {
				return m.execBlock(branch.Body)
			}
		}
		return m.execBlock(s.Else)

	case *ast.WhileStmt:
		return m.execWhile(s)

	case *ast.DefStmt:
		return normal, m.define(s)
	}
	return normal, errorf(stmt.Pos(), ErrContext, "unknown statement %T", stmt)
}

// execWhile absorbs break and propagates return.
func (m *Machine) execWhile(s *ast.WhileStmt) (Signal, error) {
	m.loopDepth++
	defer func() { m.loopDepth-- }()

	for {
		if m.interrupted.IsSet() {
			return normal, errorf(s.Token, ErrInterrupted, "interrupted")
		}
		cond, err := m.eval(s.Condition)
		if err != nil {
			return normal, err
		}
		if !cond.Truthy() {
			return normal, nil
		}

		sig, err := m.execBlock(s.Body)
		if err != nil {
			return normal, err
		}
		switch sig.Kind {
		case SignalBreak:
			return normal, nil
		case SignalReturn:
			return sig, nil
		}
	}
}

// table returns the symbol table an assignment to name writes to.
func (m *Machine) table(name string) map[string]value.Value {
	if m.locals == nil || (m.declared != nil && m.declared.Contains(name)) {
		return m.globals
	}
	return m.locals
}

func (m *Machine) assign(s *ast.AssignStmt) error {
	name := s.Target.Lexeme
	table := m.table(name)

	if s.Op.Kind == lexer.KindAssign {
		v, err := m.eval(s.Value)
		if err != nil {
			return err
		}
		table[name] = v
		return nil
	}

	cur, ok := table[name]
	if !ok {
		return errorf(s.Target, ErrUndefinedName, "name '%s' is not defined", name)
	}
	v, err := m.eval(s.Value)
	if err != nil {
		return err
	}
	res, err := value.Compound(s.Op.Kind, cur, v)
	if err != nil {
		return opError(s.Op, err)
	}
	table[name] = res
	return nil
}

func (m *Machine) declareGlobals(s *ast.GlobalStmt) error {
	if m.Depth() == 0 {
		return errorf(s.Token, ErrContext, "'global' declaration outside function")
	}
	for _, name := range s.Names {
		if _, ok := m.globals[name.Lexeme]; !ok {
			return errorf(name, ErrUndefinedName, "global name '%s' is not defined", name.Lexeme)
		}
		m.declared.Add(name.Lexeme)
	}
	return nil
}

func (m *Machine) define(s *ast.DefStmt) error {
	name := s.Name.Lexeme
	if prev, ok := m.globals[name]; ok && prev.Type == value.TypeFunction {
		return errorf(s.Name, ErrRedefinition, "function '%s' already defined at line %d", name, prev.Function().Def.Line)
	}

	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.Lexeme
	}
	m.globals[name] = value.Func(&value.Function{
		Name:   name,
		Params: params,
		Body:   s.Body,
		Def:    s.Token,
	})
	m.tracef("def %s(%d params)", name, len(params))
	return nil
}
