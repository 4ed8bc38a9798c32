package ilasm

import "ilreverse/internal/cil"

// SymbolResolver answers for the names an instruction operand refers to.
type SymbolResolver interface {
	// ResolveType finds a type by fully qualified, case-sensitive name.
	// assembly is the "[Name]" qualifier, or "" when none was written.
	ResolveType(assembly, name string) (cil.Symbol, bool)
	// ResolveMember finds a method or field of typ matching ref.
	ResolveMember(typ cil.Symbol, ref cil.Reference) (cil.Symbol, bool)
	// SynthesizeUnresolved always returns a usable handle for ref.
	SynthesizeUnresolved(ref cil.Reference) cil.Symbol
}

// MethodContext exposes the names of a method's locals and parameters so
// variable operands can be written by name.
type MethodContext interface {
	LocalNames() []string
	// ParamNames is in ldarg order, so an instance method's hidden "this"
	// comes first (usually unnamed).
	ParamNames() []string
}

// detached resolves nothing; every reference becomes synthetic.
type detached struct{}

func (detached) ResolveType(string, string) (cil.Symbol, bool) { return nil, false }

func (detached) ResolveMember(cil.Symbol, cil.Reference) (cil.Symbol, bool) { return nil, false }

func (detached) SynthesizeUnresolved(ref cil.Reference) cil.Symbol {
	return &cil.Unresolved{Ref: ref}
}

// Detached returns a resolver with an empty symbol universe.
func Detached() SymbolResolver {
	return detached{}
}
