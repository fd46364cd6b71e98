// Package diag renders interpreter errors as a header plus a source snippet
// with a caret under the failing column.
package diag

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/agenthands/pyint/pkg/compiler/lexer"
	"github.com/agenthands/pyint/pkg/compiler/parser"
	"github.com/agenthands/pyint/pkg/vm"
)

// Color modes accepted by ColorEnabled.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Details extracts the category, message and position of an interpreter
// error. ok is false for errors that carry no source position.
func Details(err error) (header, msg string, line, col int, ok bool) {
	var lexErr *lexer.Error
	var parseErr *parser.Error
	var runErr *vm.RuntimeError
	switch {
	case errors.As(err, &lexErr):
		return "syntax error", lexErr.Msg, lexErr.Line, lexErr.Column, true
	case errors.As(err, &parseErr):
		return "syntax error", parseErr.Msg, parseErr.Line, parseErr.Column, true
	case errors.As(err, &runErr):
		return "runtime error", runErr.Msg, runErr.Line, runErr.Column, true
	}
	return "error", err.Error(), 0, 0, false
}

// Render formats err against src without color. name labels the source in
// the location line and may be empty.
func Render(err error, src []byte, name string) string {
	return render(err, src, name, fmt.Sprint)
}

// Fprint writes the rendered error to w, coloring the header when colored is
// set.
func Fprint(w io.Writer, err error, src []byte, name string, colored bool) error {
	c := color.New(color.FgRed, color.Bold)
	if colored {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	_, werr := io.WriteString(w, render(err, src, name, c.Sprint))
	return werr
}

// ColorEnabled resolves a color mode for output going to f.
func ColorEnabled(mode string, f *os.File) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func render(err error, src []byte, name string, paint func(...any) string) string {
	header, msg, line, col, ok := Details(err)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", paint(header+":"), msg)
	if !ok {
		return b.String()
	}

	if name == "" {
		name = "<input>"
	}
	fmt.Fprintf(&b, "  --> %s:%d:%d\n", name, line, col)

	lines := strings.Split(strings.TrimSuffix(string(src), "\n"), "\n")
	if line < 1 || line > len(lines) {
		// EOF errors point one past the last line.
		return b.String()
	}
	if col < 1 {
		col = 1
	}
	lineTxt := lines[line-1]

	b.WriteString("     |\n")
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	fmt.Fprintf(&b, "     | %s^\n", caretPad(lineTxt, col))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}

// caretPad returns the padding that puts a caret under column col, keeping
// tabs so the caret lines up with the source line.
func caretPad(lineTxt string, col int) string {
	n := col - 1
	if n > len(lineTxt) {
		return strings.Repeat(" ", n)
	}
	pad := []byte(lineTxt[:n])
	for i, c := range pad {
		if c != '\t' {
			pad[i] = ' '
		}
	}
	return string(pad)
}
