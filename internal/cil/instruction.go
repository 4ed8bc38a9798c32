package cil

import (
	"errors"
	"fmt"
)

// Instruction is one opcode with its operand. Identity is the pointer: linked
// branch operands refer to instructions, not to offsets.
type Instruction struct {
	OpCode  *OpCode
	Operand Operand
	Offset  uint32
	// Line is the 1-based source line the instruction was parsed from, or 0.
	Line int
}

// NewInstruction returns an instruction for a catalog opcode.
func NewInstruction(op *OpCode, operand Operand) *Instruction {
	return &Instruction{OpCode: op, Operand: operand}
}

// Nop returns a fresh no-op instruction.
func Nop() *Instruction {
	return NewInstruction(MustLookup("nop"), nil)
}

// Validate checks the operand against the opcode's declared kind.
func (in *Instruction) Validate() error {
	if in.OpCode == nil {
		return errors.New("instruction has no opcode")
	}
	kind := in.OpCode.Operand
	if in.Operand == nil {
		if kind != OperandNone {
			return fmt.Errorf("%s: missing %s operand", in.OpCode.Name, kind)
		}
		return nil
	}
	if !kind.Accepts(in.Operand) {
		return fmt.Errorf("%s: operand %T does not match kind %s", in.OpCode.Name, in.Operand, kind)
	}
	return nil
}

// EncodedLength is the number of bytes the instruction occupies in a method
// body: the opcode plus its operand.
func EncodedLength(in *Instruction) int {
	n := in.OpCode.Size()
	switch in.OpCode.Operand {
	case OperandNone:
	case OperandInt8, OperandShortBranchTarget, OperandShortVariableIndex:
		n++
	case OperandVariableIndex:
		n += 2
	case OperandInt64, OperandFloat64:
		n += 8
	case OperandSwitchTargets:
		n += 4 + 4*switchCount(in.Operand)
	default:
		// 32-bit immediates, branch displacements and metadata tokens.
		n += 4
	}
	return n
}

func switchCount(op Operand) int {
	switch v := op.(type) {
	case Labels:
		return len(v)
	case Targets:
		return len(v)
	}
	return 0
}

// Local is a method local variable.
type Local struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Type string `json:"type" yaml:"type"`
}

// Body is a method body: its locals and its instruction stream.
type Body struct {
	MaxStack     uint16
	InitLocals   bool
	Locals       []Local
	Instructions []*Instruction
}

// UpdateOffsets assigns contiguous offsets from 0 using length, or
// EncodedLength when length is nil.
func (b *Body) UpdateOffsets(length func(*Instruction) int) uint32 {
	return UpdateOffsets(b.Instructions, length)
}

// UpdateOffsets assigns contiguous offsets from 0 and returns the total size.
func UpdateOffsets(list []*Instruction, length func(*Instruction) int) uint32 {
	if length == nil {
		length = EncodedLength
	}
	var off uint32
	for _, in := range list {
		in.Offset = off
		off += uint32(length(in))
	}
	return off
}

// IndexOfOffset returns the index of the instruction at exactly offset.
func (b *Body) IndexOfOffset(offset uint32) (int, bool) {
	for i, in := range b.Instructions {
		if in.Offset == offset {
			return i, true
		}
	}
	return -1, false
}

// Len returns the number of instructions.
func (b *Body) Len() int {
	return len(b.Instructions)
}

// Link replaces Label and Labels operands with Target and Targets by exact
// offset match within the body. It is used after loading a body from text.
func (b *Body) Link() error {
	at := make(map[uint32]*Instruction, len(b.Instructions))
	for _, in := range b.Instructions {
		at[in.Offset] = in
	}
	find := func(l Label) (*Instruction, error) {
		off, err := l.Offset()
		if err != nil {
			return nil, err
		}
		target, ok := at[off]
		if !ok {
			return nil, fmt.Errorf("branch target %s not found", l)
		}
		return target, nil
	}
	for _, in := range b.Instructions {
		switch v := in.Operand.(type) {
		case Label:
			t, err := find(v)
			if err != nil {
				return fmt.Errorf("%s at %s: %w", in.OpCode.Name, FormatLabel(in.Offset), err)
			}
			in.Operand = Target{Instruction: t}
		case Labels:
			targets := make(Targets, len(v))
			for i, l := range v {
				t, err := find(l)
				if err != nil {
					return fmt.Errorf("%s at %s: %w", in.OpCode.Name, FormatLabel(in.Offset), err)
				}
				targets[i] = t
			}
			in.Operand = targets
		}
	}
	return nil
}
