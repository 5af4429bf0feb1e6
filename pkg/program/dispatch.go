package program

import (
	"aquaswap/pkg/swap"
)

// Instruction opcodes. The leading byte of the instruction data selects the
// handler; anything else is a decode failure.
const (
	OpOpen  = 0
	OpSwap  = 1
	OpClose = 2
)

// Engine processes the swap program's instructions against a Runtime.
type Engine struct {
	deriver *swap.Deriver
	rt      Runtime
}

// NewEngine builds an engine. The deriver carries the program identity; it
// is injected here rather than read from global state.
func NewEngine(deriver *swap.Deriver, rt Runtime) *Engine {
	return &Engine{deriver: deriver, rt: rt}
}

// Deriver exposes the engine's address deriver.
func (e *Engine) Deriver() *swap.Deriver {
	return e.deriver
}

// Process routes one instruction to its handler. A failure is terminal for
// the instruction; the runtime guarantees no partial state survives.
func (e *Engine) Process(accounts []*Account, data []byte) error {
	if len(data) == 0 {
		return swap.ErrInvalidInstructionData
	}
	opcode, payload := data[0], data[1:]

	switch opcode {
	case OpOpen:
		return e.Open(accounts, payload)
	case OpSwap:
		return e.Swap(accounts, payload)
	case OpClose:
		return e.Close(accounts, payload)
	default:
		return swap.ErrInvalidInstructionData
	}
}
