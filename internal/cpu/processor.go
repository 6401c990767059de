// Package cpu implements the decoder and single-cycle datapath of
// spec.md §4.2: fetch, decode, execute, memory, write-back, and the
// control unit, driven one retired instruction per Step call.
package cpu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
)

// haltSentinel is the value of x31 that, at the top of an iteration,
// stops the main loop (spec.md §4.2, §9).
const haltSentinel = 0xDEADBEEF

// Sink observes retired instructions for diagnostic purposes (tracing,
// statistics). It never influences architectural state; a nil Sink
// costs nothing. See internal/trace.
type Sink interface {
	Observe(pc uint32, word uint32, d Decoded)
}

// Processor models the architectural state of spec.md §3: a 32-slot
// register file (x0 wired to zero), a byte-offset program counter, IMEM,
// DMEM, the touched-address set, and the retired-instruction clock. It
// owns all of this state exclusively for the lifetime of a run.
type Processor struct {
	registers [32]uint32
	pc        uint32
	clock     uint64

	imem    *memory
	dmem    *memory
	touched map[uint32]struct{}

	maxCycles uint64 // 0 means unlimited
	sink      Sink
}

// Option configures a new Processor.
type Option func(*Processor)

// WithMemorySize overrides the IMEM/DMEM capacity (both default to
// DefaultMemorySize per spec.md §6.5, but may be configured
// independently).
func WithMemorySize(imemSize, dmemSize int) Option {
	return func(p *Processor) {
		p.imem = newMemory(imemSize)
		p.dmem = newMemory(dmemSize)
	}
}

// WithMaxCycles bounds the number of instructions Run will retire before
// giving up with an error, guarding against a program that never hits a
// halt condition. Zero (the default) means unlimited.
func WithMaxCycles(n uint64) Option {
	return func(p *Processor) { p.maxCycles = n }
}

// WithSink attaches a diagnostic observer invoked once per retired
// instruction.
func WithSink(s Sink) Option {
	return func(p *Processor) { p.sink = s }
}

// New returns a freshly reset Processor.
func New(opts ...Option) *Processor {
	p := &Processor{
		imem:    newMemory(DefaultMemorySize),
		dmem:    newMemory(DefaultMemorySize),
		touched: make(map[uint32]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Reset restores the processor to its power-on state: zeroed registers,
// PC at 0, clock at 0, and an empty touched set. IMEM/DMEM contents and
// configured options are left untouched.
func (p *Processor) Reset() {
	p.registers = [32]uint32{}
	p.pc = 0
	p.clock = 0
	p.touched = make(map[uint32]struct{})
}

// LoadProgram reads the binary-text object format (spec.md §6.2) from r,
// one instruction word per non-empty 32-character line, and writes it
// into IMEM starting at address 0, 4 bytes per line, big-endian.
func (p *Processor) LoadProgram(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	addr := uint32(0)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		if len(line) != 32 {
			return fmt.Errorf("object line %d: expected 32-character binary word, got %d characters", lineNo, len(line))
		}

		var word uint32
		for _, c := range line {
			word <<= 1
			switch c {
			case '0':
			case '1':
				word |= 1
			default:
				return fmt.Errorf("object line %d: invalid character %q, expected '0' or '1'", lineNo, c)
			}
		}

		if !p.imem.writeWord(addr, word) {
			return fmt.Errorf("object line %d: program exceeds IMEM capacity (%d bytes)", lineNo, p.imem.size())
		}
		addr += 4
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading object file: %w", err)
	}
	return nil
}

// Step fetches, decodes, and executes exactly one instruction, retiring
// it (Clock += 1) unless a soft halt is encountered. It returns
// (true, nil) if the processor should keep running, (false, nil) on a
// soft halt (zero-word fetch), and (false, err) on a fatal runtime
// error.
func (p *Processor) Step() (bool, error) {
	word, ok := p.imem.readWord(p.pc)
	if !ok {
		return false, newRuntimeError(p.pc, 0, "instruction fetch out of IMEM range")
	}
	if word == 0 {
		return false, nil // soft halt
	}

	decoded, err := Decode(word, p.registers)
	if err != nil {
		if rerr, ok := err.(*RuntimeError); ok {
			rerr.PC = p.pc
		}
		return false, err
	}

	aluA := p.pc
	if !decoded.ASel {
		aluA = decoded.RS1Value
	}
	aluB := uint32(decoded.Imm)
	if !decoded.BSel {
		aluB = decoded.RS2Value
	}

	var (
		pcSel          bool
		aluResultValue uint32
	)
	if decoded.Opcode == OpBranch {
		// Branches compute their target address directly and never run
		// the funct-selected ALU: funct3 here is a comparison selector,
		// not an ALUOp.
		pcSel = branchTaken(decoded.Funct, decoded.RS1Value, decoded.RS2Value, decoded.BrUn)
		aluResultValue = aluA + aluB
	} else if decoded.Opcode == OpLoad || decoded.Opcode == OpStore {
		// Loads and stores always add base and offset: funct3 here is the
		// access width (lw/sw), not an ALUOp.
		pcSel = decoded.PCSel
		aluResultValue = aluA + aluB
	} else {
		pcSel = decoded.PCSel
		var err error
		aluResultValue, err = aluResult(decoded.Funct, aluA, aluB, p.pc, word)
		if err != nil {
			return false, err
		}
	}

	var memValue uint32
	switch decoded.Opcode {
	case OpLoad:
		v, ok := p.dmem.readWord(aluResultValue)
		if !ok {
			return false, newRuntimeError(p.pc, word, fmt.Sprintf("load address 0x%08x out of DMEM range", aluResultValue))
		}
		memValue = v
	case OpStore:
		if !p.dmem.writeWord(aluResultValue, decoded.RS2Value) {
			return false, newRuntimeError(p.pc, word, fmt.Sprintf("store address 0x%08x out of DMEM range", aluResultValue))
		}
		for i := uint32(0); i < 4; i++ {
			p.touched[aluResultValue+i] = struct{}{}
		}
	}

	if decoded.RDNumber != 0 {
		switch decoded.WBSel {
		case WBALU:
			p.registers[decoded.RDNumber] = aluResultValue
		case WBMemory:
			p.registers[decoded.RDNumber] = memValue
		case WBPCPlus4:
			p.registers[decoded.RDNumber] = p.pc + 4
		}
	}

	firedPC := p.pc
	if pcSel {
		p.pc = aluResultValue
	} else {
		p.pc += 4
	}

	p.clock++

	if p.sink != nil {
		p.sink.Observe(firedPC, word, decoded)
	}

	return true, nil
}

// Run drives Step in a loop until termination: either register x31
// equals 0xDEADBEEF at the top of an iteration, or a soft halt occurs.
// ctx is checked once per retired instruction so a caller-supplied
// deadline can interrupt a runaway program; this never changes
// architectural semantics. If a MaxCycles bound is configured and
// exceeded, Run returns an error.
func (p *Processor) Run(ctx context.Context) error {
	for {
		if p.registers[31] == haltSentinel {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if p.maxCycles != 0 && p.clock >= p.maxCycles {
			return fmt.Errorf("exceeded max-cycles limit (%d) without halting", p.maxCycles)
		}

		keepRunning, err := p.Step()
		if err != nil {
			return err
		}
		if !keepRunning {
			return nil
		}
	}
}

// Register returns the current value of register n (0..31). Reading
// x0 always yields 0.
func (p *Processor) Register(n int) uint32 {
	if n == 0 {
		return 0
	}
	return p.registers[n]
}

// PC returns the current program counter.
func (p *Processor) PC() uint32 {
	return p.pc
}

// Clock returns the number of instructions retired so far.
func (p *Processor) Clock() uint64 {
	return p.clock
}

// TouchedAddresses returns the set of DMEM byte addresses that have ever
// been the target of a store, in ascending order.
func (p *Processor) TouchedAddresses() []uint32 {
	addrs := make([]uint32, 0, len(p.touched))
	for a := range p.touched {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// DataByte returns the byte at the given DMEM address.
func (p *Processor) DataByte(addr uint32) byte {
	return p.dmem.readByte(addr)
}
