package analysis

import (
	"ilreverse/internal/cil"
	"ilreverse/internal/metadata"
)

// FindingKind tells what an instruction operand refers to.
type FindingKind int

const (
	KindCall FindingKind = iota
	KindField
	KindType
	KindString
)

func (k FindingKind) String() string {
	switch k {
	case KindCall:
		return "call"
	case KindField:
		return "field"
	case KindType:
		return "type"
	case KindString:
		return "string"
	}
	return "unknown"
}

// CallFinding is one instruction that refers to a method, field, type or
// string literal.
type CallFinding struct {
	Method   *metadata.MethodDef
	Offset   uint32
	OpCode   string
	Kind     FindingKind
	Target   string         // full name of the symbol, or the literal itself
	Token    metadata.Token // 0 for literals
	Symbol   cil.Symbol     // nil for literals
	Comment  string         // set by detectors
	Metadata map[string]any // detector-specific data
}

// Location renders the offset as a label: "IL_001E".
func (f CallFinding) Location() string {
	return cil.FormatLabel(f.Offset)
}
