package cpu

import "encoding/binary"

// DefaultMemorySize is the capacity, in bytes, of both IMEM and DMEM
// when a Processor is constructed without an explicit override
// (spec.md §3, §6.5): 32 KiB.
const DefaultMemorySize = 32 * 1024

// memory is a fixed-capacity, big-endian-addressed byte buffer backing
// either IMEM or DMEM. Big-endian storage is a deliberate simulator
// choice (spec.md §9) that must match the assembler's object-file
// encoding bit for bit.
type memory struct {
	bytes []byte
}

func newMemory(size int) *memory {
	return &memory{bytes: make([]byte, size)}
}

func (m *memory) size() int {
	return len(m.bytes)
}

// readWord reads 4 bytes at addr..addr+3, big-endian, MSB at the lowest
// address.
func (m *memory) readWord(addr uint32) (uint32, bool) {
	if !m.inRange(addr) {
		return 0, false
	}
	return binary.BigEndian.Uint32(m.bytes[addr : addr+4]), true
}

// writeWord writes value as 4 big-endian bytes at addr..addr+3.
func (m *memory) writeWord(addr uint32, value uint32) bool {
	if !m.inRange(addr) {
		return false
	}
	binary.BigEndian.PutUint32(m.bytes[addr:addr+4], value)
	return true
}

func (m *memory) readByte(addr uint32) byte {
	return m.bytes[addr]
}

func (m *memory) inRange(addr uint32) bool {
	return uint64(addr)+4 <= uint64(len(m.bytes))
}
