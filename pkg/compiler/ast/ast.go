package ast

import "github.com/agenthands/pyint/pkg/compiler/lexer"

// Node represents any node in the Abstract Syntax Tree.
type Node interface {
	Pos() lexer.Token
}

// Expr represents an expression that yields a value.
type Expr interface {
	Node
	exprNode()
}

// Statement represents a standalone unit of execution.
type Statement interface {
	Node
	stmtNode()
}

// Program is the root node.
type Program struct {
	Statements []Statement
}

// PrintStmt: print(ARGS)
type PrintStmt struct {
	Token lexer.Token
	Args  []Expr
}

func (p *PrintStmt) Pos() lexer.Token { return p.Token }
func (p *PrintStmt) stmtNode()        {}

// AssignStmt: NAME OP VALUE, where OP is '=' or a compound assignment.
type AssignStmt struct {
	Target lexer.Token
	Op     lexer.Token
	Value  Expr
}

func (a *AssignStmt) Pos() lexer.Token { return a.Target }
func (a *AssignStmt) stmtNode()        {}

type PassStmt struct {
	Token lexer.Token
}

func (p *PassStmt) Pos() lexer.Token { return p.Token }
func (p *PassStmt) stmtNode()        {}

type BreakStmt struct {
	Token lexer.Token
}

func (b *BreakStmt) Pos() lexer.Token { return b.Token }
func (b *BreakStmt) stmtNode()        {}

// GlobalStmt: global NAME, NAME ...
type GlobalStmt struct {
	Token lexer.Token
	Names []lexer.Token
}

func (g *GlobalStmt) Pos() lexer.Token { return g.Token }
func (g *GlobalStmt) stmtNode()        {}

// ReturnStmt: return [VALUE]. Value is nil for a bare return.
type ReturnStmt struct {
	Token lexer.Token
	Value Expr
}

func (r *ReturnStmt) Pos() lexer.Token { return r.Token }
func (r *ReturnStmt) stmtNode()        {}

// CallStmt is a function call evaluated for its side effects.
type CallStmt struct {
	Call *CallExpr
}

func (c *CallStmt) Pos() lexer.Token { return c.Call.Token }
func (c *CallStmt) stmtNode()        {}

// Branch is one 'if' or 'elif' arm.
type Branch struct {
	Token     lexer.Token
	Condition Expr
	Body      []Statement
}

// IfStmt: if/elif arms in source order plus an optional else block.
type IfStmt struct {
	Token    lexer.Token
	Branches []*Branch
	Else     []Statement
}

func (i *IfStmt) Pos() lexer.Token { return i.Token }
func (i *IfStmt) stmtNode()        {}

type WhileStmt struct {
	Token     lexer.Token
	Condition Expr
	Body      []Statement
}

func (w *WhileStmt) Pos() lexer.Token { return w.Token }
func (w *WhileStmt) stmtNode()        {}

// DefStmt: def NAME(PARAMS): BODY
type DefStmt struct {
	Token  lexer.Token
	Name   lexer.Token
	Params []lexer.Token
	Body   []Statement
}

func (d *DefStmt) Pos() lexer.Token { return d.Token }
func (d *DefStmt) stmtNode()        {}

// Literal values

type IntegerLiteral struct {
	Token lexer.Token
	Value int64
}

func (n *IntegerLiteral) Pos() lexer.Token { return n.Token }
func (n *IntegerLiteral) exprNode()        {}

type FloatLiteral struct {
	Token lexer.Token
	Value float64
}

func (f *FloatLiteral) Pos() lexer.Token { return f.Token }
func (f *FloatLiteral) exprNode()        {}

type StringLiteral struct {
	Token lexer.Token
}

func (s *StringLiteral) Pos() lexer.Token { return s.Token }
func (s *StringLiteral) exprNode()        {}

type BoolLiteral struct {
	Token lexer.Token
	Value bool
}

func (b *BoolLiteral) Pos() lexer.Token { return b.Token }
func (b *BoolLiteral) exprNode()        {}

type NoneLiteral struct {
	Token lexer.Token
}

func (n *NoneLiteral) Pos() lexer.Token { return n.Token }
func (n *NoneLiteral) exprNode()        {}

type Identifier struct {
	Token lexer.Token
}

func (i *Identifier) Pos() lexer.Token { return i.Token }
func (i *Identifier) exprNode()        {}

// Negate flips the sign of a non-literal operand. Repeated unary signs are
// folded by the parser, so a Negate never wraps another Negate.
type Negate struct {
	Token   lexer.Token
	Operand Expr
}

func (n *Negate) Pos() lexer.Token { return n.Token }
func (n *Negate) exprNode()        {}

// BinaryExpr is an arithmetic operation; Op holds the operator token.
type BinaryExpr struct {
	Op    lexer.Token
	Left  Expr
	Right Expr
}

func (b *BinaryExpr) Pos() lexer.Token { return b.Op }
func (b *BinaryExpr) exprNode()        {}

// CompareChain: OPERAND (CMPOP OPERAND)+, with len(Ops) == len(Operands)-1.
type CompareChain struct {
	Operands []Expr
	Ops      []lexer.Token
}

func (c *CompareChain) Pos() lexer.Token { return c.Ops[0] }
func (c *CompareChain) exprNode()        {}

// CallExpr: NAME(ARGS)
type CallExpr struct {
	Token lexer.Token
	Args  []Expr
}

func (c *CallExpr) Pos() lexer.Token { return c.Token }
func (c *CallExpr) exprNode()        {}
