// Package trace provides an opt-in, purely observational execution
// trace and per-opcode statistics for the simulator. Attaching a
// *Recorder to a cpu.Processor (via cpu.WithSink) never changes
// architectural behavior — it only records what already happened.
package trace

import (
	"fmt"
	"io"

	"riscv-sim/internal/cpu"
)

// Entry is one retired instruction as seen by the trace.
type Entry struct {
	Sequence uint64
	PC       uint32
	Word     uint32
	Opcode   cpu.Opcode
}

// Recorder implements cpu.Sink, logging each retired instruction to an
// io.Writer (if one is configured) and accumulating per-opcode and
// per-ALUOp counts for a post-run summary.
type Recorder struct {
	Writer io.Writer

	sequence   uint64
	opcodeHits map[cpu.Opcode]uint64
	aluHits    map[cpu.ALUOp]uint64
	entries    []Entry
}

// NewRecorder returns a Recorder that writes a line per retired
// instruction to w if w is non-nil, and always accumulates statistics.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{
		Writer:     w,
		opcodeHits: make(map[cpu.Opcode]uint64),
		aluHits:    make(map[cpu.ALUOp]uint64),
	}
}

// Observe implements cpu.Sink.
func (r *Recorder) Observe(pc uint32, word uint32, d cpu.Decoded) {
	r.sequence++
	r.opcodeHits[d.Opcode]++
	if d.Opcode == cpu.OpALUReg || d.Opcode == cpu.OpALUImm {
		r.aluHits[cpu.ALUOp(d.Funct)]++
	}

	entry := Entry{Sequence: r.sequence, PC: pc, Word: word, Opcode: d.Opcode}
	r.entries = append(r.entries, entry)

	if r.Writer != nil {
		fmt.Fprintf(r.Writer, "%06d pc=0x%08x word=0x%08x op=%s\n", entry.Sequence, pc, word, d.Opcode)
	}
}

// Entries returns every recorded entry, in retirement order.
func (r *Recorder) Entries() []Entry {
	return r.entries
}

// OpcodeCounts returns the number of retired instructions per opcode.
func (r *Recorder) OpcodeCounts() map[cpu.Opcode]uint64 {
	out := make(map[cpu.Opcode]uint64, len(r.opcodeHits))
	for k, v := range r.opcodeHits {
		out[k] = v
	}
	return out
}

// ALUCounts returns the number of retired ALU operations per ALUOp,
// counting both register-register and register-immediate forms.
func (r *Recorder) ALUCounts() map[cpu.ALUOp]uint64 {
	out := make(map[cpu.ALUOp]uint64, len(r.aluHits))
	for k, v := range r.aluHits {
		out[k] = v
	}
	return out
}
