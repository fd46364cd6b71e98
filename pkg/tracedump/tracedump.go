// Package tracedump persists the token table of a run, either as a plain
// text table or as rows in a SQLite database.
package tracedump

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agenthands/pyint/pkg/compiler/lexer"
)

// Sink receives the token table of one run.
type Sink interface {
	Write(tokens []lexer.Token) error
	Close() error
}

// Open picks a sink from the file extension: .db and .sqlite select SQLite,
// anything else a text table.
func Open(path string) (Sink, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(path)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("tracedump: create %s: %w", path, err)
	}
	return &TextSink{w: f, closer: f}, nil
}

// TextSink writes a fixed-width table.
type TextSink struct {
	w      io.Writer
	closer io.Closer
}

// NewTextSink returns a sink writing to w. Closing it does not close w.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

func (s *TextSink) Write(tokens []lexer.Token) error {
	return WriteTable(s.w, tokens)
}

func (s *TextSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// WriteTable writes one row per token: line, column, category and lexeme.
func WriteTable(w io.Writer, tokens []lexer.Token) error {
	if _, err := fmt.Fprintf(w, "%-6s%-6s%-18s%s\n", "Line", "Col", "Category", "Lexeme"); err != nil {
		return err
	}
	for _, tok := range tokens {
		if _, err := fmt.Fprintf(w, "%-6d%-6d%-18s%s\n", tok.Line, tok.Column, tok.Kind, displayLexeme(tok.Lexeme)); err != nil {
			return err
		}
	}
	return nil
}

var newlines = strings.NewReplacer("\r", `\r`, "\n", `\n`)

func displayLexeme(s string) string {
	return newlines.Replace(s)
}
