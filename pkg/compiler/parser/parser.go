package parser

import (
	"fmt"
	"strconv"

	"github.com/agenthands/pyint/pkg/compiler/ast"
	"github.com/agenthands/pyint/pkg/compiler/lexer"
)

// Error is a syntax error. Line and Column are 1-based.
type Error struct {
	Line   int
	Column int
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// Position returns the location the error refers to.
func (e *Error) Position() (int, int) {
	return e.Line, e.Column
}

// Parser builds an AST from a comment-free token sequence using recursive
// descent with one token of lookahead.
type Parser struct {
	tokens  []lexer.Token
	next    int
	curTok  lexer.Token
	peekTok lexer.Token

	functions map[string]lexer.Token // name -> def token, per program
}

// NewParser creates a parser over tokens, which must end in EOF.
func NewParser(tokens []lexer.Token) *Parser {
	p := &Parser{
		tokens:    tokens,
		functions: make(map[string]lexer.Token),
	}
	// Read two tokens, so curTok and peekTok are both set
	p.nextToken()
	p.nextToken()
	return p
}

// Parse is a shorthand for NewParser(tokens).Parse().
func Parse(tokens []lexer.Token) (*ast.Program, error) {
	return NewParser(tokens).Parse()
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	if p.next < len(p.tokens) {
		p.peekTok = p.tokens[p.next]
		p.next++
		return
	}
	// Past the end: keep yielding EOF at the last known position.
	eof := lexer.Token{Kind: lexer.KindEOF, Line: p.curTok.Line, Column: p.curTok.Column}
	if n := len(p.tokens); n > 0 {
		eof.Line, eof.Column = p.tokens[n-1].Line, p.tokens[n-1].Column
	}
	p.peekTok = eof
}

func (p *Parser) errorf(tok lexer.Token, format string, args ...any) error {
	return &Error{Line: tok.Line, Column: tok.Column, Msg: fmt.Sprintf(format, args...)}
}

// consume checks that the current token has the given kind and advances.
func (p *Parser) consume(kind lexer.Kind) (lexer.Token, error) {
	tok := p.curTok
	if tok.Kind != kind {
		return tok, p.errorf(tok, "expecting %v but got %v", kind, tok.Kind)
	}
	p.nextToken()
	return tok, nil
}

func (p *Parser) skipNewlines() {
	for p.curTok.Kind == lexer.KindNewline {
		p.nextToken()
	}
}

// Parse consumes the whole token sequence.
func (p *Parser) Parse() (*ast.Program, error) {
	program := &ast.Program{}

	p.skipNewlines()
	for p.curTok.Kind != lexer.KindEOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, stmt)
	}

	return program, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.curTok.Kind {
	case lexer.KindIf:
		return p.compound(p.parseIfStmt())
	case lexer.KindWhile:
		return p.compound(p.parseWhileStmt())
	case lexer.KindDef:
		return p.compound(p.parseDefStmt())
	}

	stmt, err := p.parseSimpleStatement()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.KindNewline); err != nil {
		return nil, err
	}
	p.skipNewlines()
	return stmt, nil
}

// compound lets a compound statement be followed by stray NEWLINEs.
func (p *Parser) compound(stmt ast.Statement, err error) (ast.Statement, error) {
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	return stmt, nil
}

func (p *Parser) parseSimpleStatement() (ast.Statement, error) {
	tok := p.curTok
	switch tok.Kind {
	case lexer.KindPrint:
		return p.parsePrintStmt()
	case lexer.KindPass:
		p.nextToken()
		return &ast.PassStmt{Token: tok}, nil
	case lexer.KindBreak:
		p.nextToken()
		return &ast.BreakStmt{Token: tok}, nil
	case lexer.KindGlobal:
		return p.parseGlobalStmt()
	case lexer.KindReturn:
		p.nextToken()
		stmt := &ast.ReturnStmt{Token: tok}
		if p.curTok.Kind != lexer.KindNewline {
			value, err := p.parseRelExpr()
			if err != nil {
				return nil, err
			}
			stmt.Value = value
		}
		return stmt, nil
	case lexer.KindName:
		if p.peekTok.Kind == lexer.KindLParen {
			call, err := p.parseCall()
			if err != nil {
				return nil, err
			}
			return &ast.CallStmt{Call: call}, nil
		}
		if !p.peekTok.Kind.IsAssignment() {
			return nil, p.errorf(p.peekTok, "expecting an assignment operator or '(' after %q but got %v", tok.Lexeme, p.peekTok.Kind)
		}
		p.nextToken()
		op := p.curTok
		p.nextToken()
		value, err := p.parseRelExpr()
		if err != nil {
			return nil, err
		}
		return &ast.AssignStmt{Target: tok, Op: op, Value: value}, nil
	}
	return nil, p.errorf(tok, "expecting a statement but got %v", tok.Kind)
}

func (p *Parser) parsePrintStmt() (ast.Statement, error) {
	stmt := &ast.PrintStmt{Token: p.curTok}
	p.nextToken()
	if _, err := p.consume(lexer.KindLParen); err != nil {
		return nil, err
	}
	for p.curTok.Kind != lexer.KindRParen {
		arg, err := p.parseRelExpr()
		if err != nil {
			return nil, err
		}
		stmt.Args = append(stmt.Args, arg)
		if p.curTok.Kind != lexer.KindComma {
			break
		}
		p.nextToken()
	}
	if _, err := p.consume(lexer.KindRParen); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseGlobalStmt() (ast.Statement, error) {
	stmt := &ast.GlobalStmt{Token: p.curTok}
	p.nextToken()
	for {
		name, err := p.consume(lexer.KindName)
		if err != nil {
			return nil, err
		}
		stmt.Names = append(stmt.Names, name)
		if p.curTok.Kind != lexer.KindComma {
			return stmt, nil
		}
		p.nextToken()
	}
}

// parseBlock parses ':' NEWLINE INDENT stmt+ DEDENT.
func (p *Parser) parseBlock() ([]ast.Statement, error) {
	for _, kind := range []lexer.Kind{lexer.KindColon, lexer.KindNewline, lexer.KindIndent} {
		if _, err := p.consume(kind); err != nil {
			return nil, err
		}
	}
	if p.curTok.Kind == lexer.KindDedent {
		return nil, p.errorf(p.curTok, "expecting a statement but got %v", p.curTok.Kind)
	}

	var body []ast.Statement
	for p.curTok.Kind != lexer.KindDedent {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.nextToken() // skip DEDENT
	return body, nil
}

func (p *Parser) parseIfStmt() (ast.Statement, error) {
	stmt := &ast.IfStmt{Token: p.curTok}
	for {
		branch := &ast.Branch{Token: p.curTok}
		p.nextToken() // skip IF / ELIF
		cond, err := p.parseRelExpr()
		if err != nil {
			return nil, err
		}
		branch.Condition = cond
		if branch.Body, err = p.parseBlock(); err != nil {
			return nil, err
		}
		stmt.Branches = append(stmt.Branches, branch)
		if p.curTok.Kind != lexer.KindElif {
			break
		}
	}

	if p.curTok.Kind == lexer.KindElse {
		p.nextToken()
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = body
	}
	return stmt, nil
}

func (p *Parser) parseWhileStmt() (ast.Statement, error) {
	stmt := &ast.WhileStmt{Token: p.curTok}
	p.nextToken()
	cond, err := p.parseRelExpr()
	if err != nil {
		return nil, err
	}
	stmt.Condition = cond
	if stmt.Body, err = p.parseBlock(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseDefStmt() (ast.Statement, error) {
	stmt := &ast.DefStmt{Token: p.curTok}
	p.nextToken()

	name, err := p.consume(lexer.KindName)
	if err != nil {
		return nil, err
	}
	if prev, ok := p.functions[name.Lexeme]; ok {
		return nil, p.errorf(name, "function %s already defined at line %d", name.Lexeme, prev.Line)
	}
	p.functions[name.Lexeme] = stmt.Token
	stmt.Name = name

	if _, err := p.consume(lexer.KindLParen); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for p.curTok.Kind != lexer.KindRParen {
		param, err := p.consume(lexer.KindName)
		if err != nil {
			return nil, err
		}
		if seen[param.Lexeme] {
			return nil, p.errorf(param, "duplicate parameter %s in function %s", param.Lexeme, name.Lexeme)
		}
		seen[param.Lexeme] = true
		stmt.Params = append(stmt.Params, param)
		if p.curTok.Kind != lexer.KindComma {
			break
		}
		p.nextToken()
		if p.curTok.Kind == lexer.KindRParen {
			return nil, p.errorf(p.curTok, "expecting %v but got %v", lexer.KindName, p.curTok.Kind)
		}
	}
	if _, err := p.consume(lexer.KindRParen); err != nil {
		return nil, err
	}

	if stmt.Body, err = p.parseBlock(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseCall parses NAME '(' [relexpr (',' relexpr)*] ')'.
func (p *Parser) parseCall() (*ast.CallExpr, error) {
	call := &ast.CallExpr{Token: p.curTok}
	p.nextToken()
	if _, err := p.consume(lexer.KindLParen); err != nil {
		return nil, err
	}
	if p.curTok.Kind != lexer.KindRParen {
		for {
			arg, err := p.parseRelExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if p.curTok.Kind != lexer.KindComma {
				break
			}
			p.nextToken()
		}
	}
	if _, err := p.consume(lexer.KindRParen); err != nil {
		return nil, err
	}
	return call, nil
}

// Expressions

func (p *Parser) parseRelExpr() (ast.Expr, error) {
	left, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.curTok.Kind.IsComparison() {
		return left, nil
	}

	chain := &ast.CompareChain{Operands: []ast.Expr{left}}
	for p.curTok.Kind.IsComparison() {
		chain.Ops = append(chain.Ops, p.curTok)
		p.nextToken()
		right, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		chain.Operands = append(chain.Operands, right)
	}
	return chain, nil
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseBinary(p.parseTerm, lexer.KindPlus, lexer.KindMinus)
}

func (p *Parser) parseTerm() (ast.Expr, error) {
	return p.parseBinary(p.parseFactor, lexer.KindTimes, lexer.KindDivide, lexer.KindModulo)
}

// parseBinary parses a left-associative chain of operands joined by ops.
func (p *Parser) parseBinary(operand func() (ast.Expr, error), ops ...lexer.Kind) (ast.Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for isOneOf(p.curTok.Kind, ops) {
		op := p.curTok
		p.nextToken()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func isOneOf(kind lexer.Kind, kinds []lexer.Kind) bool {
	for _, k := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// parseFactor folds any run of unary signs into a single multiplier applied
// once to the operand that follows.
func (p *Parser) parseFactor() (ast.Expr, error) {
	var signTok lexer.Token
	negative := false
	for p.curTok.Kind == lexer.KindPlus || p.curTok.Kind == lexer.KindMinus {
		if p.curTok.Kind == lexer.KindMinus {
			if !negative {
				signTok = p.curTok
			}
			negative = !negative
		}
		p.nextToken()
	}

	switch p.curTok.Kind {
	case lexer.KindInteger:
		return p.parseInteger(negative)
	case lexer.KindFloat:
		return p.parseFloat(negative)
	}

	operand, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if !negative {
		return operand, nil
	}
	return &ast.Negate{Token: signTok, Operand: operand}, nil
}

func (p *Parser) parseInteger(negative bool) (ast.Expr, error) {
	tok := p.curTok
	p.nextToken()
	lexeme := tok.Lexeme
	if negative {
		// The sign is part of the literal so the most negative int64 fits.
		lexeme = "-" + lexeme
	}
	v, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return nil, p.errorf(tok, "integer literal %s out of range", tok.Lexeme)
	}
	return &ast.IntegerLiteral{Token: tok, Value: v}, nil
}

func (p *Parser) parseFloat(negative bool) (ast.Expr, error) {
	tok := p.curTok
	p.nextToken()
	v, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		return nil, p.errorf(tok, "float literal %s out of range", tok.Lexeme)
	}
	if negative {
		v = -v
	}
	return &ast.FloatLiteral{Token: tok, Value: v}, nil
}

func (p *Parser) parseOperand() (ast.Expr, error) {
	tok := p.curTok
	switch tok.Kind {
	case lexer.KindName:
		if p.peekTok.Kind == lexer.KindLParen {
			return p.parseCall()
		}
		p.nextToken()
		return &ast.Identifier{Token: tok}, nil

	case lexer.KindString:
		p.nextToken()
		return &ast.StringLiteral{Token: tok}, nil

	case lexer.KindTrue, lexer.KindFalse:
		p.nextToken()
		return &ast.BoolLiteral{Token: tok, Value: tok.Kind == lexer.KindTrue}, nil

	case lexer.KindNone:
		p.nextToken()
		return &ast.NoneLiteral{Token: tok}, nil

	case lexer.KindLParen:
		p.nextToken()
		inner, err := p.parseRelExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.KindRParen); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, p.errorf(tok, "expecting an expression but got %v", tok.Kind)
}
