package stdlib

import (
	"bytes"
	"errors"
	"testing"

	"github.com/agenthands/pyint/pkg/core/value"
)

func TestPrint(t *testing.T) {
	tests := []struct {
		name string
		args []value.Value
		want string
	}{
		{"Empty", nil, "\n"},
		{"Single", []value.Value{value.Int(5)}, "5\n"},
		{"Mixed", []value.Value{value.Str("x ="), value.Float(2), value.Bool(true), value.None()}, "x = 2.0 True None\n"},
		{"EmptyString", []value.Value{value.Str(""), value.Str("")}, " \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Print(&buf, tt.args); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

type failingWriter struct{}

var errClosed = errors.New("closed")

func (failingWriter) Write([]byte) (int, error) { return 0, errClosed }

func TestPrintWriteError(t *testing.T) {
	err := Print(failingWriter{}, []value.Value{value.Int(1)})
	if !errors.Is(err, errClosed) {
		t.Errorf("expected wrapped write error, got %v", err)
	}
}
