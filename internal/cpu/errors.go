package cpu

import "fmt"

// RuntimeError is a fatal error encountered while retiring an
// instruction: an out-of-range memory access, an unrecognized opcode or
// funct value. It always identifies the PC and the offending
// instruction word, per spec.md §7.
type RuntimeError struct {
	PC      uint32
	Word    uint32
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at pc=0x%08x (instruction 0x%08x): %s", e.PC, e.Word, e.Message)
}

func newRuntimeError(pc, word uint32, message string) *RuntimeError {
	return &RuntimeError{PC: pc, Word: word, Message: message}
}
