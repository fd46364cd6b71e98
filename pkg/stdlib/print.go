package stdlib

import (
	"bufio"
	"fmt"
	"io"

	"github.com/agenthands/pyint/pkg/core/value"
)

// Print writes args to w separated by single spaces and followed by a
// newline. With no args it writes an empty line.
func Print(w io.Writer, args []value.Value) error {
	bw := bufio.NewWriter(w)
	for i, arg := range args {
		if i > 0 {
			bw.WriteByte(' ')
		}
		bw.WriteString(arg.Format())
	}
	bw.WriteByte('\n')
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("print: %w", err)
	}
	return nil
}
