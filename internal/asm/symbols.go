package asm

// SymbolTable maps a label name to the instruction index (0-based) it
// designates. Labels are collected in pass 1 and consumed in pass 2.
//
// Instruction index, not raw source line, is the resolution unit: a
// label-only or blank line does not itself emit an instruction word, so
// displacement arithmetic must not count it. See DESIGN.md for why this
// departs from the literal source behavior.
type SymbolTable struct {
	index map[string]int
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{index: make(map[string]int)}
}

// Define registers name at the given instruction index. Returns a
// *Error with Kind ErrDuplicateLabel if name was already defined.
func (t *SymbolTable) Define(name string, line, instrIndex int) error {
	if _, ok := t.index[name]; ok {
		return NewError(line, ErrDuplicateLabel, name)
	}
	t.index[name] = instrIndex
	return nil
}

// Lookup returns the instruction index for name, or an *Error with Kind
// ErrUndefinedLabel if it was never defined.
func (t *SymbolTable) Lookup(name string, line int) (int, error) {
	idx, ok := t.index[name]
	if !ok {
		return 0, NewError(line, ErrUndefinedLabel, name)
	}
	return idx, nil
}
