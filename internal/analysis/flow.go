package analysis

import (
	"fmt"
	"strings"

	"ilreverse/internal/cil"
	"ilreverse/internal/disasm"
	"ilreverse/internal/metadata"
)

// methodsContaining returns the methods whose full name contains name,
// ignoring case.
func methodsContaining(m *metadata.Module, name string) []*metadata.MethodDef {
	needle := strings.ToLower(name)
	var out []*metadata.MethodDef
	for _, md := range m.Methods() {
		if strings.Contains(strings.ToLower(md.FullName()), needle) {
			out = append(out, md)
		}
	}
	return out
}

func noBody(md *metadata.MethodDef) string {
	return fmt.Sprintf("Method %s has no body", md.FullName())
}

// ControlFlow lists the body of every method matching name with the jump
// targets of branches and switches under each one.
func ControlFlow(m *metadata.Module, name string) []string {
	var out []string
	for _, md := range methodsContaining(m, name) {
		if md.Body == nil {
			out = append(out, noBody(md))
			continue
		}
		out = append(out, fmt.Sprintf("Control flow graph for %s:", md.FullName()))
		for _, in := range md.Body.Instructions {
			out = append(out, disasm.Decode(in).Text)
			if f := in.OpCode.Flow; f != cil.FlowBranch && f != cil.FlowConditionalBranch {
				continue
			}
			for _, target := range jumpTargets(in) {
				out = append(out, "  -> Jumps to "+cil.FormatLabel(target.Offset))
			}
		}
	}
	return out
}

func jumpTargets(in *cil.Instruction) []*cil.Instruction {
	switch v := in.Operand.(type) {
	case cil.Target:
		return []*cil.Instruction{v.Instruction}
	case cil.Targets:
		return v
	}
	return nil
}

// MethodIL lists the body of every method matching name.
func MethodIL(m *metadata.Module, name string) []string {
	var out []string
	for _, md := range methodsContaining(m, name) {
		out = append(out, methodIL(md)...)
	}
	return out
}

// MethodILByRID lists the body of the method with row id rid.
func MethodILByRID(m *metadata.Module, rid uint32) ([]string, error) {
	md, ok := m.MethodByRID(rid)
	if !ok {
		return nil, fmt.Errorf("%w: RID %d", metadata.ErrMethodNotFound, rid)
	}
	return methodIL(md), nil
}

func methodIL(md *metadata.MethodDef) []string {
	if md.Body == nil {
		return []string{noBody(md)}
	}
	out := []string{fmt.Sprintf("IL code for %s:", md.FullName())}
	return append(out, disasm.Body(md.Body).Lines()...)
}

// Constructors lists the constructors of a type, each followed by its
// indented body.
func Constructors(m *metadata.Module, typeName string) ([]string, error) {
	t, ok := m.FindType(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", metadata.ErrTypeNotFound, typeName)
	}
	var out []string
	for _, md := range t.Constructors() {
		out = append(out, fmt.Sprintf("%s, IsStatic: %t, Parameters: %d", md.FullName(), md.IsStatic(), len(md.Params)))
		for _, line := range disasm.Body(md.Body).Lines() {
			out = append(out, "  "+line)
		}
	}
	return out, nil
}
