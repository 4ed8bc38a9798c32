// Package cil describes the CIL instruction set: the static opcode table,
// operand kinds, the closed operand union and method bodies as offset-indexed
// instruction streams.
package cil

import "fmt"

// OperandKind is the category of value an opcode's operand must have.
type OperandKind uint8

const (
	OperandNone OperandKind = iota
	OperandInt8             // ShortInlineI
	OperandInt32            // InlineI
	OperandInt64            // InlineI8
	OperandFloat32          // ShortInlineR
	OperandFloat64          // InlineR
	OperandString           // InlineString
	OperandShortBranchTarget
	OperandBranchTarget
	OperandSwitchTargets
	OperandShortVariableIndex
	OperandVariableIndex
	OperandTypeRef
	OperandMethodRef
	OperandFieldRef
	OperandTokenRef
	OperandSignature // InlineSig, passed through as raw text
)

var operandKindNames = [...]string{
	OperandNone:               "None",
	OperandInt8:               "Int8",
	OperandInt32:              "Int32",
	OperandInt64:              "Int64",
	OperandFloat32:            "Float32",
	OperandFloat64:            "Float64",
	OperandString:             "String",
	OperandShortBranchTarget:  "ShortBranchTarget",
	OperandBranchTarget:       "BranchTarget",
	OperandSwitchTargets:      "SwitchTargets",
	OperandShortVariableIndex: "ShortVariableIndex",
	OperandVariableIndex:      "VariableIndex",
	OperandTypeRef:            "TypeRef",
	OperandMethodRef:          "MethodRef",
	OperandFieldRef:           "FieldRef",
	OperandTokenRef:           "TokenRef",
	OperandSignature:          "Signature",
}

func (k OperandKind) String() string {
	if int(k) < len(operandKindNames) {
		return operandKindNames[k]
	}
	return fmt.Sprintf("OperandKind(%d)", k)
}

// IsBranch reports whether the kind holds a single branch target.
func (k OperandKind) IsBranch() bool {
	return k == OperandShortBranchTarget || k == OperandBranchTarget
}

// IsSymbol reports whether the kind holds a metadata token.
func (k OperandKind) IsSymbol() bool {
	switch k {
	case OperandTypeRef, OperandMethodRef, OperandFieldRef, OperandTokenRef:
		return true
	}
	return false
}

// FlowControl classifies how an instruction affects control flow.
type FlowControl uint8

const (
	FlowSequential FlowControl = iota
	FlowBranch
	FlowConditionalBranch
	FlowCall
	FlowReturn
	FlowThrow
	FlowBreak
	FlowMeta // prefix opcodes
)

var flowNames = [...]string{
	FlowSequential:        "Sequential",
	FlowBranch:            "Branch",
	FlowConditionalBranch: "ConditionalBranch",
	FlowCall:              "Call",
	FlowReturn:            "Return",
	FlowThrow:             "Throw",
	FlowBreak:             "Break",
	FlowMeta:              "Meta",
}

func (f FlowControl) String() string {
	if int(f) < len(flowNames) {
		return flowNames[f]
	}
	return fmt.Sprintf("FlowControl(%d)", f)
}

// OpCode describes one instruction of the catalog.
type OpCode struct {
	Name    string // canonical mnemonic, e.g. "ldc.i4.s"
	Value   uint16 // 0x00-0xE0 for one-byte opcodes, 0xFE00-0xFE1E for two-byte ones
	Operand OperandKind
	Flow    FlowControl
}

// Size returns the number of bytes used to encode the opcode itself.
func (op *OpCode) Size() int {
	if op.Value>>8 == 0xFE {
		return 2
	}
	return 1
}

func (op *OpCode) String() string {
	return op.Name
}
