package lexer

import (
	"fmt"
	"strings"
)

// eof is returned by the character reader once the source is exhausted.
const eof = -1

// Error is a lexical error. Line and Column are 1-based.
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

// Scanner performs lexical analysis on source text, producing the whole token
// sequence in one pass and synthesizing INDENT/DEDENT tokens from column
// changes at the start of each logical line.
type Scanner struct {
	source []byte
	cursor int
	line   int
	column int

	ch        int  // current character, or eof
	prevChar  int  // last character read; '\n' marks the start of a new line
	blankLine bool // no non-space character seen on the current line yet

	indents []int
	tokens  []Token
}

// NewScanner creates a new scanner for the given source. A trailing newline
// is appended when the source does not end with one.
func NewScanner(source []byte) *Scanner {
	s := &Scanner{}
	s.Reset(source)
	return s
}

// Reset re-initializes the scanner with new source.
func (s *Scanner) Reset(source []byte) {
	if len(source) == 0 || source[len(source)-1] != '\n' {
		buf := make([]byte, len(source), len(source)+1)
		copy(buf, source)
		source = append(buf, '\n')
	}
	s.source = source
	s.cursor = 0
	s.line = 0
	s.column = 0
	s.ch = ' '
	s.prevChar = '\n'
	s.blankLine = true
	s.indents = append(s.indents[:0], 1)
	s.tokens = nil
}

// Tokenize scans src and returns the complete token sequence, ending in EOF.
func Tokenize(src []byte) ([]Token, error) {
	return NewScanner(src).Run()
}

// Indents returns a copy of the indentation stack.
func (s *Scanner) Indents() []int {
	out := make([]int, len(s.indents))
	copy(out, s.indents)
	return out
}

// Run scans the whole source. It stops at the first malformed token.
func (s *Scanner) Run() ([]Token, error) {
	for {
		for s.ch != '\n' && isSpace(s.ch) {
			s.advance()
		}

		tok, err := s.scanToken()
		if err != nil {
			return nil, err
		}

		if len(s.tokens) == 0 || s.tokens[len(s.tokens)-1].Kind == KindNewline {
			if err := s.handleIndentation(tok); err != nil {
				return nil, err
			}
		}
		s.tokens = append(s.tokens, tok)

		if tok.Kind == KindEOF {
			return s.tokens, nil
		}
	}
}

// advance reads the next character. Columns restart at every new line, and
// the newline ending a whitespace-only line is reported as a space so blank
// lines never produce NEWLINE tokens.
func (s *Scanner) advance() {
	if s.prevChar == '\n' {
		s.line++
		s.column = 0
		s.blankLine = true
	}

	if s.cursor >= len(s.source) {
		s.column = 1
		s.prevChar = eof
		s.ch = eof
		return
	}

	c := int(s.source[s.cursor])
	s.cursor++
	s.column++
	if !isSpace(c) {
		s.blankLine = false
	}
	s.prevChar = c

	if c == '\n' && s.blankLine {
		s.ch = ' '
		return
	}
	s.ch = c
}

func (s *Scanner) peek() int {
	if s.cursor >= len(s.source) {
		return eof
	}
	return int(s.source[s.cursor])
}

func (s *Scanner) errorf(tok Token, format string, args ...any) error {
	return &Error{Line: tok.Line, Column: tok.Column, Msg: fmt.Sprintf(format, args...)}
}

func (s *Scanner) scanToken() (Token, error) {
	tok := Token{Line: s.line, Column: s.column}
	start := s.cursor - 1
	ch := s.ch

	switch {
	case ch == eof:
		tok.Kind = KindEOF
		return tok, nil

	case isDigit(ch) || ch == '.':
		return s.scanNumber(tok, start)

	case isAlpha(ch) || ch == '_':
		for isAlpha(s.ch) || isDigit(s.ch) || s.ch == '_' {
			s.advance()
		}
		tok.Lexeme = string(s.source[start : s.cursor-1])
		tok.Kind = KindName
		if kw, ok := keywords[tok.Lexeme]; ok {
			tok.Kind = kw
		}
		return tok, nil

	case ch == '#':
		for s.ch != '\n' && s.ch != eof {
			s.advance()
		}
		tok.Kind = KindCommentSingle
		tok.Lexeme = strings.TrimRight(string(s.source[start:s.cursor-1]), "\r")
		return tok, nil

	case ch == '\'':
		return s.scanString(tok)

	case ch == '\n':
		s.advance()
		tok.Kind = KindNewline
		tok.Lexeme = "\n"
		return tok, nil

	case ch == '!':
		if s.peek() != '=' {
			return tok, s.errorf(tok, "expecting '=' after '!'")
		}
		s.advance()
		s.advance()
		tok.Kind = KindNotEqual
		tok.Lexeme = "!="
		return tok, nil

	case ch == '/' && s.peek() == '*':
		return s.scanMultiComment(tok, start)
	}

	if kind, ok := withAssign[byte(ch)]; ok && s.peek() == '=' {
		s.advance()
		s.advance()
		tok.Kind = kind
		tok.Lexeme = string([]byte{byte(ch), '='})
		return tok, nil
	}
	if kind, ok := single[byte(ch)]; ok {
		s.advance()
		tok.Kind = kind
		tok.Lexeme = string(byte(ch))
		return tok, nil
	}

	return tok, s.errorf(tok, "invalid character %q", rune(ch))
}

// withAssign maps a character to the kind it forms when followed by '='.
var withAssign = map[byte]Kind{
	'=': KindEqual,
	'<': KindLessEqual,
	'>': KindGreaterEqual,
	'+': KindAddAssign,
	'-': KindSubAssign,
	'*': KindMulAssign,
	'/': KindDivAssign,
}

var single = map[byte]Kind{
	'=': KindAssign,
	'<': KindLess,
	'>': KindGreater,
	'+': KindPlus,
	'-': KindMinus,
	'*': KindTimes,
	'/': KindDivide,
	'%': KindModulo,
	'(': KindLParen,
	')': KindRParen,
	',': KindComma,
	':': KindColon,
}

func (s *Scanner) scanNumber(tok Token, start int) (Token, error) {
	float := false
	for {
		if s.ch == '.' {
			if float {
				return tok, s.errorf(tok, "a numerical value cannot have two decimal points")
			}
			float = true
		} else if !isDigit(s.ch) {
			break
		}
		s.advance()
	}

	tok.Lexeme = string(s.source[start : s.cursor-1])
	if tok.Lexeme == "." {
		return tok, s.errorf(tok, "invalid numerical value '.'")
	}
	tok.Kind = KindInteger
	if float {
		tok.Kind = KindFloat
	}
	return tok, nil
}

func (s *Scanner) scanString(tok Token) (Token, error) {
	var b strings.Builder
	s.advance() // opening quote
	for {
		switch s.ch {
		case eof, '\n':
			return tok, s.errorf(tok, "unterminated string literal")
		case '\'':
			s.advance()
			tok.Kind = KindString
			tok.Lexeme = b.String()
			return tok, nil
		case '\\':
			s.advance()
			switch s.ch {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\':
				b.WriteByte('\\')
			case 'b':
				b.WriteByte('\b')
			case '\'':
				b.WriteByte('\'')
			case eof:
				return tok, s.errorf(tok, "unterminated string literal")
			default:
				return tok, s.errorf(tok, "invalid escape sequence '\\%c', only \\n, \\t, \\\\, \\b and \\' are allowed", rune(s.ch))
			}
			s.advance()
		default:
			b.WriteByte(byte(s.ch))
			s.advance()
		}
	}
}

// scanMultiComment consumes a /* ... */ comment. The closing '*' must be a
// fresh one, so "/*/" does not terminate the comment.
func (s *Scanner) scanMultiComment(tok Token, start int) (Token, error) {
	s.advance() // '/'
	s.advance() // '*'
	prev := 0
	for {
		if s.ch == eof {
			return tok, s.errorf(tok, "unterminated multi-line comment")
		}
		if s.ch == '/' && prev == '*' {
			s.advance()
			break
		}
		prev = s.ch
		s.advance()
	}
	end := s.cursor - 1
	if s.ch == eof {
		end = len(s.source)
	}
	tok.Kind = KindCommentMulti
	tok.Lexeme = string(s.source[start:end])
	return tok, nil
}

// handleIndentation compares the first token of a logical line against the
// indentation stack and emits the INDENT or DEDENT tokens that precede it.
func (s *Scanner) handleIndentation(tok Token) error {
	top := s.indents[len(s.indents)-1]
	if tok.Column > top {
		s.tokens = append(s.tokens, Token{Line: tok.Line, Column: top, Kind: KindIndent})
		s.indents = append(s.indents, tok.Column)
		return nil
	}
	// Popping keeps the backing array, so s.indents[:depth] is the stack as
	// it was on entry.
	depth := len(s.indents)
	for {
		top = s.indents[len(s.indents)-1]
		if top == tok.Column {
			return nil
		}
		if top < tok.Column {
			return s.errorf(tok, "inconsistent dedent: column %d matches no enclosing indentation level %v", tok.Column, s.indents[:depth])
		}
		s.indents = s.indents[:len(s.indents)-1]
		s.tokens = append(s.tokens, Token{Line: tok.Line, Column: s.indents[len(s.indents)-1], Kind: KindDedent})
	}
}

func isSpace(ch int) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isDigit(ch int) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch int) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
