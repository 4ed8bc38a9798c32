package cil

import (
	"fmt"
	"strings"
	"sync"
)

// Table maps normalized mnemonics to opcode descriptors. It is immutable once
// built and safe for concurrent readers.
type Table struct {
	byName  map[string]*OpCode
	byValue map[uint16]*OpCode
	ordered []*OpCode
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the shared table built from the ECMA-335 catalog.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = NewTable(catalog)
	})
	return defaultTable
}

// Lookup resolves a mnemonic against the default table.
func Lookup(mnemonic string) (*OpCode, bool) {
	return Default().Lookup(mnemonic)
}

// MustLookup is Lookup for mnemonics known to be in the catalog.
func MustLookup(mnemonic string) *OpCode {
	op, ok := Lookup(mnemonic)
	if !ok {
		panic(fmt.Sprintf("cil: unknown opcode %q", mnemonic))
	}
	return op
}

// Normalize strips every '.' and folds case, so "ldc.i4", "LDC.I4" and
// "ldci4" share one key.
func Normalize(mnemonic string) string {
	return strings.ToLower(strings.ReplaceAll(mnemonic, ".", ""))
}

// NewTable builds a table from a catalog. Two entries that normalize to the
// same key make the catalog malformed and NewTable panics.
func NewTable(entries []OpCode) *Table {
	t := &Table{
		byName:  make(map[string]*OpCode, len(entries)),
		byValue: make(map[uint16]*OpCode, len(entries)),
		ordered: make([]*OpCode, 0, len(entries)),
	}
	for i := range entries {
		op := &entries[i]
		key := Normalize(op.Name)
		if prev, dup := t.byName[key]; dup {
			panic(fmt.Sprintf("cil: opcodes %q and %q normalize to %q", prev.Name, op.Name, key))
		}
		t.byName[key] = op
		t.byValue[op.Value] = op
		t.ordered = append(t.ordered, op)
	}
	return t
}

// Lookup finds the descriptor for a mnemonic in any dot placement or case.
func (t *Table) Lookup(mnemonic string) (*OpCode, bool) {
	op, ok := t.byName[Normalize(mnemonic)]
	return op, ok
}

// ByValue finds the descriptor for an encoded opcode value.
func (t *Table) ByValue(v uint16) (*OpCode, bool) {
	op, ok := t.byValue[v]
	return op, ok
}

// Len returns the number of opcodes in the table.
func (t *Table) Len() int {
	return len(t.ordered)
}

// All returns the descriptors in catalog order.
func (t *Table) All() []*OpCode {
	out := make([]*OpCode, len(t.ordered))
	copy(out, t.ordered)
	return out
}
