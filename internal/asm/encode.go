package asm

// Format names the six instruction encodings this assembler
// recognizes (R/I/S/B/U/J per the RV32I base ISA).
type Format int

const (
	FormatR Format = iota
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
)

// opcodes, as 7-bit fields.
const (
	opALUReg = 0b0110011
	opALUImm = 0b0010011
	opLoad   = 0b0000011
	opJALR   = 0b1100111
	opStore  = 0b0100011
	opBranch = 0b1100011
	opJAL    = 0b1101111
	opLUI    = 0b0110111
	opAUIPC  = 0b0010111
)

// mnemonicInfo describes how to encode one mnemonic.
type mnemonicInfo struct {
	format  Format
	opcode  uint32
	funct3  uint32
	funct7  uint32
	hasF3F7 bool // true for R-type and shift-immediate mnemonics
}

var mnemonics = map[string]mnemonicInfo{
	// R-type
	"add": {FormatR, opALUReg, 0b000, 0b0000000, true},
	"sub": {FormatR, opALUReg, 0b000, 0b0100000, true},
	"mul": {FormatR, opALUReg, 0b000, 0b0000001, true},
	"div": {FormatR, opALUReg, 0b100, 0b0000001, true},
	"rem": {FormatR, opALUReg, 0b110, 0b0000001, true},
	"or":  {FormatR, opALUReg, 0b110, 0b0000000, true},
	"xor": {FormatR, opALUReg, 0b100, 0b0000000, true},
	"and": {FormatR, opALUReg, 0b111, 0b0000000, true},
	"sll": {FormatR, opALUReg, 0b001, 0b0000000, true},
	"srl": {FormatR, opALUReg, 0b101, 0b0000000, true},

	// I-type (arithmetic-immediate and shift-immediate)
	"addi": {FormatI, opALUImm, 0b000, 0, false},
	"slli": {FormatI, opALUImm, 0b001, 0b0000000, true},
	"srli": {FormatI, opALUImm, 0b101, 0b0000000, true},
	"xori": {FormatI, opALUImm, 0b100, 0, false},
	"ori":  {FormatI, opALUImm, 0b110, 0, false},
	"andi": {FormatI, opALUImm, 0b111, 0, false},

	// I-type (load, jalr)
	"lw":   {FormatI, opLoad, 0b010, 0, false},
	"jalr": {FormatI, opJALR, 0b000, 0, false},

	// S-type
	"sw": {FormatS, opStore, 0b010, 0, false},

	// B-type
	"beq":  {FormatB, opBranch, 0b000, 0, false},
	"bne":  {FormatB, opBranch, 0b001, 0, false},
	"blt":  {FormatB, opBranch, 0b100, 0, false},
	"bge":  {FormatB, opBranch, 0b101, 0, false},
	"bltu": {FormatB, opBranch, 0b110, 0, false},
	"bgeu": {FormatB, opBranch, 0b111, 0, false},

	// U-type
	"lui":   {FormatU, opLUI, 0, 0, false},
	"auipc": {FormatU, opAUIPC, 0, 0, false},

	// J-type
	"jal": {FormatJ, opJAL, 0, 0, false},
}

// shiftAmountMnemonics use the low 5 bits of the immediate as a shift
// amount encoded into the same field positions as an R-type funct7/rs2.
var shiftAmountMnemonics = map[string]bool{"slli": true, "srli": true}

func encodeR(opcode, funct7, rs2, rs1, funct3, rd uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeIArith(opcode uint32, imm uint32, rs1, funct3, rd uint32) uint32 {
	return (imm&0xfff)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeIShift(opcode, funct7, shamt, rs1, funct3, rd uint32) uint32 {
	return funct7<<25 | (shamt&0x1f)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeS(opcode uint32, imm uint32, rs2, rs1, funct3 uint32) uint32 {
	imm11_5 := (imm >> 5) & 0x7f
	imm4_0 := imm & 0x1f
	return imm11_5<<25 | rs2<<20 | rs1<<15 | funct3<<12 | imm4_0<<7 | opcode
}

func encodeB(opcode uint32, imm13 uint32, rs2, rs1, funct3 uint32) uint32 {
	bit12 := (imm13 >> 12) & 0x1
	bits10_5 := (imm13 >> 5) & 0x3f
	bits4_1 := (imm13 >> 1) & 0xf
	bit11 := (imm13 >> 11) & 0x1
	return bit12<<31 | bits10_5<<25 | rs2<<20 | rs1<<15 | funct3<<12 | bits4_1<<8 | bit11<<7 | opcode
}

func encodeU(opcode uint32, imm uint32, rd uint32) uint32 {
	return (imm&0xfffff)<<12 | rd<<7 | opcode
}

func encodeJ(opcode uint32, imm21 uint32, rd uint32) uint32 {
	bit20 := (imm21 >> 20) & 0x1
	bits10_1 := (imm21 >> 1) & 0x3ff
	bit11 := (imm21 >> 11) & 0x1
	bits19_12 := (imm21 >> 12) & 0xff
	return bit20<<31 | bits10_1<<21 | bit11<<20 | bits19_12<<12 | rd<<7 | opcode
}

// toBinaryString renders a 32-bit word as a 32-character MSB-first
// binary-text line, per the object file format (spec.md §6.2).
func toBinaryString(word uint32) string {
	buf := make([]byte, 32)
	for i := 0; i < 32; i++ {
		bit := (word >> (31 - i)) & 1
		if bit == 1 {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}
