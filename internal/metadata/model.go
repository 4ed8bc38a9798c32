// Package metadata is the object model of a loaded module: type, method,
// field, property, event and resource definitions, plus the type and member
// references instructions point at. It answers symbol lookups for the
// instruction parser and reads and writes module images.
package metadata

import (
	"strings"

	"ilreverse/internal/cil"
)

// Module is one loaded module image.
type Module struct {
	Name         string
	Path         string
	CorLib       string
	AssemblyRefs []string
	Types        []*TypeDef
	TypeRefs     []*TypeRef
	MemberRefs   []*MemberRef
	Resources    []*Resource
	Sections     []*Section
	EntryPoint   *MethodDef

	methods    []*MethodDef
	fields     []*FieldDef
	properties []*PropertyDef
	events     []*EventDef
	typeIndex  map[string]*TypeDef
	refIndex   map[string]*TypeRef
	memberRefs map[string]*MemberRef
}

// NewModule returns an empty module.
func NewModule(name string) *Module {
	return &Module{
		Name:       name,
		CorLib:     DefaultCorLib,
		typeIndex:  make(map[string]*TypeDef),
		refIndex:   make(map[string]*TypeRef),
		memberRefs: make(map[string]*MemberRef),
	}
}

// DefaultCorLib is the assembly primitive types are imported from when an
// image does not name one.
const DefaultCorLib = "System.Runtime"

// AddType appends t and assigns row ids to it and its members.
func (m *Module) AddType(t *TypeDef) {
	t.Module = m
	t.RID = uint32(len(m.Types) + 1)
	m.Types = append(m.Types, t)
	m.typeIndex[t.FullName()] = t
	for _, md := range t.Methods {
		md.DeclaringType = t
		md.RID = uint32(len(m.methods) + 1)
		m.methods = append(m.methods, md)
	}
	for _, f := range t.Fields {
		f.DeclaringType = t
		f.RID = uint32(len(m.fields) + 1)
		m.fields = append(m.fields, f)
	}
	for _, p := range t.Properties {
		p.DeclaringType = t
		p.RID = uint32(len(m.properties) + 1)
		m.properties = append(m.properties, p)
	}
	for _, e := range t.Events {
		e.DeclaringType = t
		e.RID = uint32(len(m.events) + 1)
		m.events = append(m.events, e)
	}
}

// AddResource appends r and assigns its row id.
func (m *Module) AddResource(r *Resource) {
	r.RID = uint32(len(m.Resources) + 1)
	m.Resources = append(m.Resources, r)
}

// FindType returns the type definition with the exact full name.
func (m *Module) FindType(fullName string) (*TypeDef, bool) {
	t, ok := m.typeIndex[fullName]
	return t, ok
}

// Methods returns every method definition in row order.
func (m *Module) Methods() []*MethodDef { return m.methods }

// Fields returns every field definition in row order.
func (m *Module) Fields() []*FieldDef { return m.fields }

// Properties returns every property definition in row order.
func (m *Module) Properties() []*PropertyDef { return m.properties }

// Events returns every event definition in row order.
func (m *Module) Events() []*EventDef { return m.events }

// MethodByRID returns the method with the 1-based row id.
func (m *Module) MethodByRID(rid uint32) (*MethodDef, bool) {
	if rid == 0 || int(rid) > len(m.methods) {
		return nil, false
	}
	return m.methods[rid-1], true
}

// Lookup returns the definition or reference a token names.
func (m *Module) Lookup(tok Token) (cil.Symbol, bool) {
	rid := int(tok.RID())
	if rid == 0 {
		return nil, false
	}
	pick := func(n int) bool { return rid <= n }
	switch tok.Table() {
	case TableTypeDef:
		if pick(len(m.Types)) {
			return m.Types[rid-1], true
		}
	case TableMethod:
		if pick(len(m.methods)) {
			return m.methods[rid-1], true
		}
	case TableField:
		if pick(len(m.fields)) {
			return m.fields[rid-1], true
		}
	case TableTypeRef:
		if pick(len(m.TypeRefs)) {
			return m.TypeRefs[rid-1], true
		}
	case TableMemberRef:
		if pick(len(m.MemberRefs)) {
			return m.MemberRefs[rid-1], true
		}
	}
	return nil, false
}

// TypeDef is a type defined in the module.
type TypeDef struct {
	Module     *Module
	RID        uint32
	Namespace  string
	Name       string
	BaseType   string
	Interfaces []string
	Attributes TypeAttributes
	Fields     []*FieldDef
	Methods    []*MethodDef
	Properties []*PropertyDef
	Events     []*EventDef
}

func (t *TypeDef) Token() Token               { return NewToken(TableTypeDef, t.RID) }
func (t *TypeDef) SymbolKind() cil.SymbolKind { return cil.TypeSymbol }

func (t *TypeDef) FullName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

func (t *TypeDef) Reference() cil.Reference {
	return cil.Reference{Kind: cil.TypeSymbol, Type: t.FullName()}
}

func (t *TypeDef) IsPublic() bool    { return t.Attributes&TypePublic != 0 }
func (t *TypeDef) IsSealed() bool    { return t.Attributes&TypeSealed != 0 }
func (t *TypeDef) IsAbstract() bool  { return t.Attributes&TypeAbstract != 0 }
func (t *TypeDef) IsInterface() bool { return t.Attributes&TypeInterface != 0 }

// IsValueType reports structs and enums.
func (t *TypeDef) IsValueType() bool {
	return t.BaseType == "System.ValueType" || t.BaseType == "System.Enum"
}

// Constructors returns the instance and static constructors of t.
func (t *TypeDef) Constructors() []*MethodDef {
	var out []*MethodDef
	for _, md := range t.Methods {
		if md.IsConstructor() {
			out = append(out, md)
		}
	}
	return out
}

// Param is a method parameter.
type Param struct {
	Name string
	Type string
}

// MethodDef is a method defined in the module.
type MethodDef struct {
	DeclaringType *TypeDef
	RID           uint32
	Name          string
	ReturnType    string
	Params        []Param
	Attributes    MethodAttributes
	Body          *cil.Body
}

func (md *MethodDef) Token() Token               { return NewToken(TableMethod, md.RID) }
func (md *MethodDef) SymbolKind() cil.SymbolKind { return cil.MethodSymbol }
func (md *MethodDef) IsStatic() bool             { return md.Attributes&MethodStatic != 0 }

// IsConstructor reports ".ctor" and ".cctor".
func (md *MethodDef) IsConstructor() bool {
	return md.Name == ".ctor" || md.Name == ".cctor"
}

func (md *MethodDef) returnType() string {
	if md.ReturnType == "" {
		return "System.Void"
	}
	return md.ReturnType
}

// ParamTypes returns the declared parameter types.
func (md *MethodDef) ParamTypes() []string {
	out := make([]string, len(md.Params))
	for i, p := range md.Params {
		out[i] = p.Type
	}
	return out
}

func (md *MethodDef) declaringName() string {
	if md.DeclaringType == nil {
		return ""
	}
	return md.DeclaringType.FullName()
}

// FullName reads "System.Void Demo.Program::Main(System.String[])".
func (md *MethodDef) FullName() string {
	return md.returnType() + " " + md.declaringName() + "::" + md.Name + "(" + strings.Join(md.ParamTypes(), ",") + ")"
}

func (md *MethodDef) Reference() cil.Reference {
	return cil.Reference{
		Kind:      cil.MethodSymbol,
		Instance:  !md.IsStatic(),
		Type:      md.declaringName(),
		Name:      md.Name,
		Signature: md.returnType(),
		Params:    md.ParamTypes(),
	}
}

// LocalNames lists local variable names in slot order.
func (md *MethodDef) LocalNames() []string {
	if md.Body == nil {
		return nil
	}
	out := make([]string, len(md.Body.Locals))
	for i, l := range md.Body.Locals {
		out[i] = l.Name
	}
	return out
}

// ParamNames lists argument names in ldarg order; an instance method's
// hidden this comes first with an empty name.
func (md *MethodDef) ParamNames() []string {
	var out []string
	if !md.IsStatic() {
		out = append(out, "")
	}
	for _, p := range md.Params {
		out = append(out, p.Name)
	}
	return out
}

// FieldDef is a field defined in the module.
type FieldDef struct {
	DeclaringType *TypeDef
	RID           uint32
	Name          string
	Type          string
	Attributes    FieldAttributes
}

func (f *FieldDef) Token() Token               { return NewToken(TableField, f.RID) }
func (f *FieldDef) SymbolKind() cil.SymbolKind { return cil.FieldSymbol }

func (f *FieldDef) declaringName() string {
	if f.DeclaringType == nil {
		return ""
	}
	return f.DeclaringType.FullName()
}

// FullName reads "System.Int32 Demo.Counter::count".
func (f *FieldDef) FullName() string {
	return f.Type + " " + f.declaringName() + "::" + f.Name
}

func (f *FieldDef) Reference() cil.Reference {
	return cil.Reference{
		Kind:      cil.FieldSymbol,
		Static:    f.Attributes&FieldStatic != 0,
		Type:      f.declaringName(),
		Name:      f.Name,
		Signature: f.Type,
	}
}

// PropertyDef is a property and its accessors.
type PropertyDef struct {
	DeclaringType *TypeDef
	RID           uint32
	Name          string
	Type          string
	Getter        *MethodDef
	Setter        *MethodDef
}

func (p *PropertyDef) Token() Token { return NewToken(TableProperty, p.RID) }

// FullName reads "System.String Demo.Person::Name()".
func (p *PropertyDef) FullName() string {
	return p.Type + " " + p.DeclaringType.FullName() + "::" + p.Name + "()"
}

// EventDef is an event.
type EventDef struct {
	DeclaringType *TypeDef
	RID           uint32
	Name          string
	Type          string
}

func (e *EventDef) Token() Token { return NewToken(TableEvent, e.RID) }

// FullName reads "System.EventHandler Demo.Button::Clicked".
func (e *EventDef) FullName() string {
	return e.Type + " " + e.DeclaringType.FullName() + "::" + e.Name
}

// Resource is a manifest resource.
type Resource struct {
	RID  uint32
	Name string
	Kind ResourceKind
	Data []byte
}

func (r *Resource) Token() Token { return NewToken(TableManifestResource, r.RID) }

// Section is a block of raw image data at a relative virtual address.
type Section struct {
	Name string
	RVA  uint32
	Data []byte
}

// TypeRef is a type imported from another assembly. Unresolved marks a
// reference synthesized for a name nothing could answer for.
type TypeRef struct {
	RID        uint32
	Assembly   string
	Name       string
	Unresolved bool
}

func (r *TypeRef) Token() Token               { return NewToken(TableTypeRef, r.RID) }
func (r *TypeRef) SymbolKind() cil.SymbolKind { return cil.TypeSymbol }
func (r *TypeRef) FullName() string           { return r.Name }

func (r *TypeRef) Reference() cil.Reference {
	return cil.Reference{Kind: cil.TypeSymbol, Assembly: r.Assembly, Type: r.Name}
}

// MemberRef is a method or field of a type outside the module.
type MemberRef struct {
	RID        uint32
	Parent     *TypeRef
	Ref        cil.Reference
	Unresolved bool
}

func (r *MemberRef) Token() Token               { return NewToken(TableMemberRef, r.RID) }
func (r *MemberRef) SymbolKind() cil.SymbolKind { return r.Ref.Kind }
func (r *MemberRef) FullName() string           { return r.Ref.FullName() }
func (r *MemberRef) Reference() cil.Reference   { return r.Ref }

// Tokened is implemented by every definition and reference.
type Tokened interface {
	Token() Token
}

// TokenOf returns the token of a symbol, or 0 for foreign symbols.
func TokenOf(s cil.Symbol) Token {
	if t, ok := s.(Tokened); ok {
		return t.Token()
	}
	return 0
}
