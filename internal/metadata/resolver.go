package metadata

import (
	"slices"
	"strings"

	"ilreverse/internal/cil"
)

// ResolveType finds a type by full name. Definitions in the module win;
// otherwise a name qualified with a referenced assembly, or a primitive, is
// imported as a TypeRef.
func (m *Module) ResolveType(assembly, name string) (cil.Symbol, bool) {
	if assembly == "" || assembly == m.Name {
		if t, ok := m.typeIndex[name]; ok {
			return t, true
		}
	}
	if r, ok := m.refIndex[refKey(assembly, name)]; ok && !r.Unresolved {
		return r, true
	}
	switch {
	case assembly != "" && m.referencesAssembly(assembly):
		return m.importType(assembly, name, false), true
	case assembly == "" && cil.IsPrimitive(name):
		return m.importType(m.CorLib, name, false), true
	case assembly == "":
		// An unqualified name may already be imported from some assembly.
		for _, r := range m.TypeRefs {
			if r.Name == name && !r.Unresolved {
				return r, true
			}
		}
	}
	return nil, false
}

// ResolveMember finds a method or field. Members of defined types must
// exist; members of imported types are imported as MemberRefs.
func (m *Module) ResolveMember(typ cil.Symbol, ref cil.Reference) (cil.Symbol, bool) {
	switch t := typ.(type) {
	case *TypeDef:
		if ref.Kind == cil.FieldSymbol {
			for _, f := range t.Fields {
				if f.Name == ref.Name && (ref.Signature == "" || ref.Signature == f.Type) {
					return f, true
				}
			}
			return nil, false
		}
		for _, md := range t.Methods {
			if md.Name == ref.Name &&
				slices.Equal(md.ParamTypes(), ref.Params) &&
				(ref.Signature == "" || ref.Signature == md.returnType()) {
				return md, true
			}
		}
	case *TypeRef:
		if t.Unresolved {
			return nil, false
		}
		ref.Assembly = t.Assembly
		return m.importMember(t, ref, false), true
	}
	return nil, false
}

// SynthesizeUnresolved records a reference nothing could answer for. The
// reference still gets a token so it can be saved and searched.
func (m *Module) SynthesizeUnresolved(ref cil.Reference) cil.Symbol {
	if ref.Kind == cil.TypeSymbol {
		return m.importType(ref.Assembly, ref.Type, true)
	}
	parent := m.importType(ref.Assembly, ref.Type, true)
	return m.importMember(parent, ref, true)
}

func (m *Module) referencesAssembly(name string) bool {
	if name == m.CorLib {
		return true
	}
	for _, a := range m.AssemblyRefs {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

func refKey(assembly, name string) string {
	return assembly + "|" + name
}

func memberKey(parent *TypeRef, ref cil.Reference) string {
	return ref.Kind.String() + "|" + parent.Assembly + "|" + ref.FullName()
}

// RefMark records how many references a module has imported.
type RefMark struct {
	types, members int
}

// Mark returns the current reference counts for a later Rollback.
func (m *Module) Mark() RefMark {
	return RefMark{types: len(m.TypeRefs), members: len(m.MemberRefs)}
}

// Rollback forgets every reference imported since mark was taken.
func (m *Module) Rollback(mark RefMark) {
	for _, r := range m.MemberRefs[min(mark.members, len(m.MemberRefs)):] {
		delete(m.memberRefs, memberKey(r.Parent, r.Ref))
	}
	m.MemberRefs = m.MemberRefs[:min(mark.members, len(m.MemberRefs))]
	for _, r := range m.TypeRefs[min(mark.types, len(m.TypeRefs)):] {
		delete(m.refIndex, refKey(r.Assembly, r.Name))
	}
	m.TypeRefs = m.TypeRefs[:min(mark.types, len(m.TypeRefs))]
}

func (m *Module) importType(assembly, name string, unresolved bool) *TypeRef {
	key := refKey(assembly, name)
	if r, ok := m.refIndex[key]; ok {
		return r
	}
	r := &TypeRef{
		RID:        uint32(len(m.TypeRefs) + 1),
		Assembly:   assembly,
		Name:       name,
		Unresolved: unresolved,
	}
	m.TypeRefs = append(m.TypeRefs, r)
	m.refIndex[key] = r
	return r
}

func (m *Module) importMember(parent *TypeRef, ref cil.Reference, unresolved bool) *MemberRef {
	key := memberKey(parent, ref)
	if r, ok := m.memberRefs[key]; ok {
		return r
	}
	r := &MemberRef{
		RID:        uint32(len(m.MemberRefs) + 1),
		Parent:     parent,
		Ref:        ref,
		Unresolved: unresolved,
	}
	m.MemberRefs = append(m.MemberRefs, r)
	m.memberRefs[key] = r
	return r
}
