package vm

import (
	"errors"

	"github.com/agenthands/pyint/pkg/compiler/ast"
	"github.com/agenthands/pyint/pkg/compiler/lexer"
	"github.com/agenthands/pyint/pkg/core/value"
)

func (m *Machine) eval(e ast.Expr) (value.Value, error) {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return value.Int(n.Value), nil
	case *ast.FloatLiteral:
		return value.Float(n.Value), nil
	case *ast.StringLiteral:
		return value.Str(n.Token.Lexeme), nil
	case *ast.BoolLiteral:
		return value.Bool(n.Value), nil
	case *ast.NoneLiteral:
		return value.None(), nil
	case *ast.Identifier:
		return m.lookup(n.Token)

	case *ast.Negate:
		v, err := m.eval(n.Operand)
		if err != nil {
			return value.Value{}, err
		}
		res, err := value.Negate(v)
		if err != nil {
			return value.Value{}, opError(n.Token, err)
		}
		return res, nil

	case *ast.BinaryExpr:
		left, err := m.eval(n.Left)
		if err != nil {
			return value.Value{}, err
		}
		right, err := m.eval(n.Right)
		if err != nil {
			return value.Value{}, err
		}
		res, err := value.Arith(n.Op.Kind, left, right)
		if err != nil {
			return value.Value{}, opError(n.Op, err)
		}
		return res, nil

	case *ast.CompareChain:
		return m.evalChain(n)

	case *ast.CallExpr:
		return m.call(n)
	}
	return value.Value{}, errorf(e.Pos(), ErrTypeMismatch, "unknown expression %T", e)
}

// evalChain evaluates every operand once, left to right, and compares each
// adjacent pair. Every link is checked even after one is false.
func (m *Machine) evalChain(n *ast.CompareChain) (value.Value, error) {
	left, err := m.eval(n.Operands[0])
	if err != nil {
		return value.Value{}, err
	}
	result := true
	for i, op := range n.Ops {
		right, err := m.eval(n.Operands[i+1])
		if err != nil {
			return value.Value{}, err
		}
		c, err := value.Compare(op.Kind, left, right)
		if err != nil {
			return value.Value{}, opError(op, err)
		}
		if !c.Bool() {
			result = false
		}
		left = right
	}
	return value.Bool(result), nil
}

// lookup resolves a name: declared globals first, then locals, then globals.
func (m *Machine) lookup(tok lexer.Token) (value.Value, error) {
	name := tok.Lexeme
	if m.declared != nil && m.declared.Contains(name) {
		if v, ok := m.globals[name]; ok {
			return v, nil
		}
		return value.Value{}, errorf(tok, ErrUndefinedName, "global name '%s' is not defined", name)
	}
	if v, ok := m.locals[name]; ok {
		return v, nil
	}
	if v, ok := m.globals[name]; ok {
		return v, nil
	}
	return value.Value{}, errorf(tok, ErrUndefinedName, "name '%s' is not defined", name)
}

// opError maps an operand error from the value package onto a runtime error
// at the operator token.
func opError(tok lexer.Token, err error) error {
	if errors.Is(err, value.ErrDivisionByZero) {
		return errorf(tok, ErrDivisionByZero, "division by zero")
	}
	if errors.Is(err, value.ErrOverflow) {
		return errorf(tok, ErrOverflow, "%s", err.Error())
	}
	return errorf(tok, ErrTypeMismatch, "%s", err.Error())
}
