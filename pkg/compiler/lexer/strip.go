package lexer

import "strings"

// StripComments returns a copy of tokens without comment tokens. When a
// comment is the only thing on its logical line, the NEWLINE tokens that
// follow it are dropped as well; otherwise a comment-only line inside a block
// would leave a stray NEWLINE between INDENT and the block's first statement.
func StripComments(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Kind != KindCommentSingle && tok.Kind != KindCommentMulti {
			out = append(out, tok)
			continue
		}
		if !startsLine(out) {
			continue
		}
		for i+1 < len(tokens) && tokens[i+1].Kind == KindNewline {
			i++
		}
	}
	return out
}

func startsLine(out []Token) bool {
	if len(out) == 0 {
		return true
	}
	switch out[len(out)-1].Kind {
	case KindNewline, KindIndent, KindDedent:
		return true
	}
	return false
}

// Lexemes concatenates the source spelling of every significant token,
// skipping synthetic, comment and EOF tokens. String literals are re-quoted.
func Lexemes(tokens []Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		switch tok.Kind {
		case KindIndent, KindDedent, KindCommentSingle, KindCommentMulti, KindEOF:
			continue
		case KindString:
			b.WriteByte('\'')
			b.WriteString(escape(tok.Lexeme))
			b.WriteByte('\'')
		default:
			b.WriteString(tok.Lexeme)
		}
	}
	return b.String()
}

var escaper = strings.NewReplacer(
	"\\", "\\\\",
	"\n", "\\n",
	"\t", "\\t",
	"\b", "\\b",
	"'", "\\'",
)

func escape(s string) string {
	return escaper.Replace(s)
}
