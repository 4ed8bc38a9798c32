// Package disasm renders CIL instructions as assembler text. The output is
// the syntax the instruction parser accepts, so a listing can be edited and
// parsed back.
package disasm

import (
	"fmt"
	"strconv"
	"strings"

	"ilreverse/internal/cil"
)

// Inst is one rendered instruction.
type Inst struct {
	Offset  uint32 // byte offset in the method body
	Text    string // "IL_0000: ldstr "hi""
	Op      string // mnemonic in lowercase
	Operand string // rendered operand, empty when there is none
}

// Stream is a linear listing of a method body.
type Stream []Inst

// Body renders every instruction of b.
func Body(b *cil.Body) Stream {
	if b == nil {
		return nil
	}
	out := make(Stream, 0, len(b.Instructions))
	for _, in := range b.Instructions {
		out = append(out, Decode(in))
	}
	return out
}

// Decode renders a single instruction.
func Decode(in *cil.Instruction) Inst {
	operand := Operand(in)
	return Inst{
		Offset:  in.Offset,
		Text:    cil.FormatLabel(in.Offset) + ": " + join(in.OpCode.Name, operand),
		Op:      in.OpCode.Name,
		Operand: operand,
	}
}

// Format renders in without its offset label: "ldc.i4 42".
func Format(in *cil.Instruction) string {
	return join(in.OpCode.Name, Operand(in))
}

func join(op, operand string) string {
	if operand == "" {
		return op
	}
	return op + " " + operand
}

// Lines returns the text of each instruction.
func (s Stream) Lines() []string {
	out := make([]string, len(s))
	for i, in := range s {
		out[i] = in.Text
	}
	return out
}

// String joins the listing with newlines.
func (s Stream) String() string {
	return strings.Join(s.Lines(), "\n")
}

// Operand renders the operand of in in parser syntax.
func Operand(in *cil.Instruction) string {
	switch v := in.Operand.(type) {
	case nil:
		return ""
	case cil.Int32:
		return strconv.FormatInt(int64(v), 10)
	case cil.Int64:
		return strconv.FormatInt(int64(v), 10)
	case cil.Float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case cil.Float64:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case cil.String:
		return `"` + string(v) + `"`
	case cil.Label:
		return string(v)
	case cil.Labels:
		parts := make([]string, len(v))
		for i, l := range v {
			parts[i] = string(l)
		}
		return "(" + strings.Join(parts, ",") + ")"
	case cil.Target:
		return cil.FormatLabel(v.Instruction.Offset)
	case cil.Targets:
		parts := make([]string, len(v))
		for i, t := range v {
			parts[i] = cil.FormatLabel(t.Offset)
		}
		return "(" + strings.Join(parts, ",") + ")"
	case cil.Index:
		if strings.Contains(in.OpCode.Name, "arg") {
			return fmt.Sprintf("A_%d", int(v))
		}
		return fmt.Sprintf("V_%d", int(v))
	case cil.Raw:
		return string(v)
	case cil.Handle:
		if v.Symbol == nil {
			return ""
		}
		return v.Symbol.Reference().String()
	}
	return fmt.Sprintf("%v", in.Operand)
}

// StripLabel removes a leading "IL_xxxx:" from a listing line.
func StripLabel(line string) string {
	s := strings.TrimSpace(line)
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return s
	}
	if _, err := cil.ParseLabel(s[:colon]); err != nil {
		return s
	}
	return strings.TrimSpace(s[colon+1:])
}
