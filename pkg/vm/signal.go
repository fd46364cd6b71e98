package vm

import "github.com/agenthands/pyint/pkg/core/value"

// SignalKind tells the enclosing construct how a statement list completed.
type SignalKind uint8

const (
	SignalNormal SignalKind = iota
	SignalBreak
	SignalReturn
)

func (k SignalKind) String() string {
	switch k {
	case SignalBreak:
		return "break"
	case SignalReturn:
		return "return"
	}
	return "normal"
}

// Signal is the completion of a statement. Value is only meaningful for
// SignalReturn.
type Signal struct {
	Kind  SignalKind
	Value value.Value
}

var normal = Signal{}

func breakSignal() Signal { return Signal{Kind: SignalBreak} }

func returnSignal(v value.Value) Signal { return Signal{Kind: SignalReturn, Value: v} }
