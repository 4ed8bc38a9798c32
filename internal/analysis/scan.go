package analysis

import (
	"ilreverse/internal/cil"
	"ilreverse/internal/metadata"
)

// Scan collects the findings of every method body in row order.
func Scan(m *metadata.Module) []CallFinding {
	var out []CallFinding
	for _, md := range m.Methods() {
		out = append(out, ScanMethod(md)...)
	}
	return out
}

// ScanMethod collects the instructions of md whose operand is a symbol or a
// string literal.
func ScanMethod(md *metadata.MethodDef) []CallFinding {
	if md.Body == nil {
		return nil
	}
	var out []CallFinding
	for _, in := range md.Body.Instructions {
		f := CallFinding{Method: md, Offset: in.Offset, OpCode: in.OpCode.Name}
		switch v := in.Operand.(type) {
		case cil.String:
			f.Kind = KindString
			f.Target = string(v)
		case cil.Handle:
			if v.Symbol == nil {
				continue
			}
			f.Symbol = v.Symbol
			f.Target = v.Symbol.FullName()
			f.Token = metadata.TokenOf(v.Symbol)
			switch v.Symbol.SymbolKind() {
			case cil.MethodSymbol:
				f.Kind = KindCall
			case cil.FieldSymbol:
				f.Kind = KindField
			default:
				f.Kind = KindType
			}
		default:
			continue
		}
		out = append(out, f)
	}
	return out
}
