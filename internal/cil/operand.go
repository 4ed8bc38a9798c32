package cil

import (
	"fmt"
	"strconv"
	"strings"
)

// Operand is the closed set of values an instruction can carry. A nil
// Operand means the instruction has none.
type Operand interface {
	isOperand()
}

type (
	Int32   int32
	Int64   int64
	Float32 float32
	Float64 float64
	String  string
	// Label is an unlinked "IL_xxxx" branch target.
	Label string
	// Labels is an unlinked switch table in source order.
	Labels []Label
	// Index is a resolved local or argument index.
	Index int
	// Raw is operand text kept verbatim: an unresolved variable name or a
	// call-site signature.
	Raw string
	// Handle wraps a resolved or synthetic symbol.
	Handle struct{ Symbol Symbol }
	// Target is a linked branch target. It follows the instruction by
	// identity, whatever its offset becomes.
	Target struct{ Instruction *Instruction }
	// Targets is a linked switch table.
	Targets []*Instruction
)

func (Int32) isOperand()   {}
func (Int64) isOperand()   {}
func (Float32) isOperand() {}
func (Float64) isOperand() {}
func (String) isOperand()  {}
func (Label) isOperand()   {}
func (Labels) isOperand()  {}
func (Index) isOperand()   {}
func (Raw) isOperand()     {}
func (Handle) isOperand()  {}
func (Target) isOperand()  {}
func (Targets) isOperand() {}

// LabelPrefix starts every branch label.
const LabelPrefix = "IL_"

// ParseLabel validates "IL_" followed by hex digits and returns the offset.
// The prefix is matched case-insensitively.
func ParseLabel(s string) (uint32, error) {
	if len(s) <= len(LabelPrefix) || !strings.EqualFold(s[:len(LabelPrefix)], LabelPrefix) {
		return 0, fmt.Errorf("label %q: want %s followed by hex digits", s, LabelPrefix)
	}
	v, err := strconv.ParseUint(s[len(LabelPrefix):], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("label %q: %w", s, err)
	}
	return uint32(v), nil
}

// FormatLabel renders an offset as "IL_0010".
func FormatLabel(offset uint32) string {
	return fmt.Sprintf("%s%04X", LabelPrefix, offset)
}

// Offset returns the byte offset the label names.
func (l Label) Offset() (uint32, error) {
	return ParseLabel(string(l))
}

// Accepts reports whether op's variant matches the kind. A nil operand is
// accepted; Validate reports missing operands.
func (k OperandKind) Accepts(op Operand) bool {
	if op == nil {
		return true
	}
	switch k {
	case OperandNone:
		return false
	case OperandInt8, OperandInt32:
		_, ok := op.(Int32)
		return ok
	case OperandInt64:
		_, ok := op.(Int64)
		return ok
	case OperandFloat32:
		_, ok := op.(Float32)
		return ok
	case OperandFloat64:
		_, ok := op.(Float64)
		return ok
	case OperandString:
		_, ok := op.(String)
		return ok
	case OperandShortBranchTarget, OperandBranchTarget:
		switch op.(type) {
		case Label, Target:
			return true
		}
	case OperandSwitchTargets:
		switch op.(type) {
		case Labels, Targets:
			return true
		}
	case OperandShortVariableIndex, OperandVariableIndex:
		switch op.(type) {
		case Index, Raw:
			return true
		}
	case OperandTypeRef:
		return handleOf(op, TypeSymbol)
	case OperandMethodRef:
		return handleOf(op, MethodSymbol)
	case OperandFieldRef:
		return handleOf(op, FieldSymbol)
	case OperandTokenRef:
		h, ok := op.(Handle)
		return ok && h.Symbol != nil
	case OperandSignature:
		_, ok := op.(Raw)
		return ok
	}
	return false
}

func handleOf(op Operand, kind SymbolKind) bool {
	h, ok := op.(Handle)
	return ok && h.Symbol != nil && h.Symbol.SymbolKind() == kind
}
