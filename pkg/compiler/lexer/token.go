package lexer

// Kind represents the type of token identified by the scanner.
type Kind uint8

const (
	KindEOF Kind = iota
	KindName
	KindInteger
	KindFloat
	KindString

	// Keywords
	KindPrint
	KindPass
	KindIf
	KindElif
	KindElse
	KindWhile
	KindTrue
	KindFalse
	KindNone
	KindBreak
	KindDef
	KindGlobal
	KindReturn

	// Operators and punctuation
	KindAssign       // =
	KindEqual        // ==
	KindNotEqual     // !=
	KindLess         // <
	KindLessEqual    // <=
	KindGreater      // >
	KindGreaterEqual // >=
	KindPlus         // +
	KindMinus        // -
	KindTimes        // *
	KindDivide       // /
	KindModulo       // %
	KindAddAssign    // +=
	KindSubAssign    // -=
	KindMulAssign    // *=
	KindDivAssign    // /=
	KindLParen       // (
	KindRParen       // )
	KindComma        // ,
	KindColon        // :

	KindNewline
	KindCommentSingle
	KindCommentMulti

	// Synthetic structural tokens, never present in the source text.
	KindIndent
	KindDedent
)

var kindNames = [...]string{
	KindEOF:           "EOF",
	KindName:          "NAME",
	KindInteger:       "INTEGER",
	KindFloat:         "FLOAT",
	KindString:        "STRING",
	KindPrint:         "PRINT",
	KindPass:          "PASS",
	KindIf:            "IF",
	KindElif:          "ELIF",
	KindElse:          "ELSE",
	KindWhile:         "WHILE",
	KindTrue:          "TRUE",
	KindFalse:         "FALSE",
	KindNone:          "NONE",
	KindBreak:         "BREAK",
	KindDef:           "DEF",
	KindGlobal:        "GLOBAL",
	KindReturn:        "RETURN",
	KindAssign:        "ASSIGNOP",
	KindEqual:         "EQUAL",
	KindNotEqual:      "NOTEQUAL",
	KindLess:          "LESSTHAN",
	KindLessEqual:     "LESSEQUAL",
	KindGreater:       "GREATERTHAN",
	KindGreaterEqual:  "GREATEREQUAL",
	KindPlus:          "PLUS",
	KindMinus:         "MINUS",
	KindTimes:         "TIMES",
	KindDivide:        "DIVISION",
	KindModulo:        "MODULO",
	KindAddAssign:     "ADDASSIGN",
	KindSubAssign:     "SUBASSIGN",
	KindMulAssign:     "MULASSIGN",
	KindDivAssign:     "DIVASSIGN",
	KindLParen:        "LEFTPAREN",
	KindRParen:        "RIGHTPAREN",
	KindComma:         "COMMA",
	KindColon:         "COLON",
	KindNewline:       "NEWLINE",
	KindCommentSingle: "COMMENT_SINGLE",
	KindCommentMulti:  "COMMENT_MULTIPLE",
	KindIndent:        "INDENT",
	KindDedent:        "DEDENT",
}

// String returns the display name used in diagnostics and token dumps.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// IsComparison reports whether k is one of the six comparison operators.
func (k Kind) IsComparison() bool {
	return k >= KindEqual && k <= KindGreaterEqual
}

// IsAssignment reports whether k is '=' or a compound assignment operator.
func (k Kind) IsAssignment() bool {
	return k == KindAssign || (k >= KindAddAssign && k <= KindDivAssign)
}

// Symbol returns the source spelling of an operator kind, or its name.
func (k Kind) Symbol() string {
	if s, ok := symbols[k]; ok {
		return s
	}
	return k.String()
}

var symbols = map[Kind]string{
	KindAssign:       "=",
	KindEqual:        "==",
	KindNotEqual:     "!=",
	KindLess:         "<",
	KindLessEqual:    "<=",
	KindGreater:      ">",
	KindGreaterEqual: ">=",
	KindPlus:         "+",
	KindMinus:        "-",
	KindTimes:        "*",
	KindDivide:       "/",
	KindModulo:       "%",
	KindAddAssign:    "+=",
	KindSubAssign:    "-=",
	KindMulAssign:    "*=",
	KindDivAssign:    "/=",
	KindLParen:       "(",
	KindRParen:       ")",
	KindComma:        ",",
	KindColon:        ":",
}

var keywords = map[string]Kind{
	"print":  KindPrint,
	"pass":   KindPass,
	"if":     KindIf,
	"elif":   KindElif,
	"else":   KindElse,
	"while":  KindWhile,
	"True":   KindTrue,
	"False":  KindFalse,
	"None":   KindNone,
	"break":  KindBreak,
	"def":    KindDef,
	"global": KindGlobal,
	"return": KindReturn,
}

// Token is one lexical unit. Line and Column are 1-based.
type Token struct {
	Line   int
	Column int
	Kind   Kind
	Lexeme string
}

// Position returns the token's line and column.
func (t Token) Position() (int, int) {
	return t.Line, t.Column
}
