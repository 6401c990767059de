package asm

import (
	"math"
	"strconv"
	"strings"
)

// stripLabel removes a leading "name:" prefix from a line, returning the
// label (empty if none) and the remainder of the line.
func stripLabel(line string) (label, rest string) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", line
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:])
}

// rewriteMemoryOperand turns "rd, imm(xRs1)" into "rd, rs1, imm" for
// loads, jalr, and "rs2, imm(xRs1)" into "rs2, rs1, imm" for stores. Both
// shapes tokenize identically once rewritten: register, register, imm.
func rewriteMemoryOperand(line string) string {
	open := strings.Index(line, "(")
	shut := strings.Index(line, ")")
	if open < 0 || shut < 0 || shut < open {
		return line
	}

	comma := strings.Index(line, ",")
	if comma < 0 {
		return line
	}

	firstOperand := strings.TrimSpace(line[:comma])
	mnemonic := firstOperand
	if sp := strings.IndexByte(firstOperand, ' '); sp >= 0 {
		mnemonic = firstOperand[:sp]
		firstOperand = strings.TrimSpace(firstOperand[sp+1:])
	}

	immAndReg := strings.TrimSpace(line[comma+1 : open])
	rs1 := strings.TrimSpace(line[open+1 : shut])

	return mnemonic + " " + firstOperand + ", " + rs1 + ", " + immAndReg
}

// tokenizeLine splits an instruction line into the mnemonic and its
// operand fields, after stripping any label prefix and rewriting
// memory-operand syntax. Fields are split on commas, spaces and tabs.
func tokenizeLine(line string) []string {
	_, rest := stripLabel(line)
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil
	}

	if strings.Contains(rest, "(") {
		rest = rewriteMemoryOperand(rest)
	}

	fields := make([]string, 0, 4)
	for _, chunk := range strings.FieldsFunc(rest, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}) {
		chunk = strings.TrimSpace(chunk)
		if chunk != "" {
			fields = append(fields, chunk)
		}
	}
	return fields
}

// parseRegister parses an "xN" operand, N in 0..31.
func parseRegister(tok string, line int) (int, error) {
	if len(tok) < 2 || tok[0] != 'x' {
		return 0, NewError(line, ErrUnknownRegister, tok)
	}
	n, err := strconv.Atoi(tok[1:])
	if err != nil || n < 0 || n > 31 {
		return 0, NewError(line, ErrUnknownRegister, tok)
	}
	return n, nil
}

// parseImmediate parses a decimal (optionally signed) integer operand.
func parseImmediate(tok string, line int) (int32, error) {
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, WrapError(line, ErrMalformedImmediate, err)
	}
	if n < math.MinInt32 || n > math.MaxUint32 {
		return 0, NewError(line, ErrImmediateRange, tok)
	}
	return int32(uint32(n)), nil
}
