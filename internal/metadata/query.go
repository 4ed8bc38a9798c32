package metadata

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

var (
	ErrTypeNotFound   = errors.New("type not found")
	ErrMethodNotFound = errors.New("method not found")
	ErrNoEntryPoint   = errors.New("no entry point")
	ErrNoData         = errors.New("no data at address")
)

// patternTimeout bounds a single regex match; .NET patterns may backtrack.
const patternTimeout = 2 * time.Second

// CompilePattern compiles a .NET-flavoured regular expression.
func CompilePattern(pattern string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	re.MatchTimeout = patternTimeout
	return re, nil
}

func matches(re *regexp2.Regexp, s string) (bool, error) {
	ok, err := re.MatchString(s)
	if err != nil {
		return false, fmt.Errorf("matching %q: %w", s, err)
	}
	return ok, nil
}

// TypeRow is one type in a listing.
type TypeRow struct {
	Name      string `json:"Name"`
	FullName  string `json:"FullName"`
	Namespace string `json:"Namespace"`
	Token     Token  `json:"Token"`
}

func (r TypeRow) String() string {
	return fmt.Sprintf("%s  %s", r.Token, r.FullName)
}

func typeRow(t *TypeDef) TypeRow {
	return TypeRow{Name: t.Name, FullName: t.FullName(), Namespace: t.Namespace, Token: t.Token()}
}

// ListTypes lists every type definition.
func ListTypes(m *Module) []TypeRow {
	out := make([]TypeRow, 0, len(m.Types))
	for _, t := range m.Types {
		out = append(out, typeRow(t))
	}
	return out
}

// ListTypesRegex lists types whose full name matches pattern.
func ListTypesRegex(m *Module, pattern string) ([]TypeRow, error) {
	re, err := CompilePattern(pattern)
	if err != nil {
		return nil, err
	}
	var out []TypeRow
	for _, t := range m.Types {
		ok, err := matches(re, t.FullName())
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, typeRow(t))
		}
	}
	return out, nil
}

// SearchTypes lists types whose full name contains substr, ignoring case.
func SearchTypes(m *Module, substr string) []TypeRow {
	needle := strings.ToLower(substr)
	var out []TypeRow
	for _, t := range m.Types {
		if strings.Contains(strings.ToLower(t.FullName()), needle) {
			out = append(out, typeRow(t))
		}
	}
	return out
}

// MethodRow is one method in a listing.
type MethodRow struct {
	Name       string   `json:"Name"`
	FullName   string   `json:"FullName"`
	Token      Token    `json:"Token"`
	RID        uint32   `json:"RID"`
	Parameters []string `json:"Parameters"`
}

func (r MethodRow) String() string {
	return fmt.Sprintf("%s  %s", r.Token, r.FullName)
}

func methodRow(md *MethodDef) MethodRow {
	return MethodRow{
		Name:       md.Name,
		FullName:   md.FullName(),
		Token:      md.Token(),
		RID:        md.RID,
		Parameters: md.ParamTypes(),
	}
}

// ListMethods lists the methods of the type with the exact full name.
func ListMethods(m *Module, typeName string) ([]MethodRow, error) {
	t, ok := m.FindType(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotFound, typeName)
	}
	out := make([]MethodRow, 0, len(t.Methods))
	for _, md := range t.Methods {
		out = append(out, methodRow(md))
	}
	return out, nil
}

// FindMethodsRegex lists methods whose simple name matches pattern.
func FindMethodsRegex(m *Module, pattern string) ([]MethodRow, error) {
	re, err := CompilePattern(pattern)
	if err != nil {
		return nil, err
	}
	var out []MethodRow
	for _, md := range m.methods {
		ok, err := matches(re, md.Name)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, methodRow(md))
		}
	}
	return out, nil
}

// EntryPoint describes the module entry point.
func EntryPoint(m *Module) (MethodRow, error) {
	if m.EntryPoint == nil {
		return MethodRow{}, ErrNoEntryPoint
	}
	return methodRow(m.EntryPoint), nil
}

// MemberRow is one field, property or event in a listing.
type MemberRow struct {
	Name     string `json:"Name"`
	FullName string `json:"FullName"`
	Token    Token  `json:"Token"`
}

func (r MemberRow) String() string {
	return fmt.Sprintf("%s  %s", r.Token, r.FullName)
}

// ListFields lists every field definition.
func ListFields(m *Module) []MemberRow {
	out := make([]MemberRow, 0, len(m.fields))
	for _, f := range m.fields {
		out = append(out, MemberRow{Name: f.Name, FullName: f.FullName(), Token: f.Token()})
	}
	return out
}

// ListProperties lists every property definition.
func ListProperties(m *Module) []MemberRow {
	out := make([]MemberRow, 0, len(m.properties))
	for _, p := range m.properties {
		out = append(out, MemberRow{Name: p.Name, FullName: p.FullName(), Token: p.Token()})
	}
	return out
}

// ListEvents lists every event definition.
func ListEvents(m *Module) []MemberRow {
	out := make([]MemberRow, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, MemberRow{Name: e.Name, FullName: e.FullName(), Token: e.Token()})
	}
	return out
}

// ResourceRow is one manifest resource.
type ResourceRow struct {
	Name         string `json:"Name"`
	ResourceType string `json:"ResourceType"`
	Token        Token  `json:"Token"`
	Size         int    `json:"Size"`
}

func (r ResourceRow) String() string {
	return fmt.Sprintf("%s  %s (%s, %d bytes)", r.Token, r.Name, r.ResourceType, r.Size)
}

// ListResources lists every manifest resource.
func ListResources(m *Module) []ResourceRow {
	out := make([]ResourceRow, 0, len(m.Resources))
	for _, r := range m.Resources {
		out = append(out, ResourceRow{Name: r.Name, ResourceType: r.Kind.String(), Token: r.Token(), Size: len(r.Data)})
	}
	return out
}

// TypeInfo is the detail view of one type.
type TypeInfo struct {
	Name        string `json:"Name"`
	Namespace   string `json:"Namespace"`
	BaseType    string `json:"BaseType"`
	Attributes  string `json:"Attributes"`
	IsPublic    bool   `json:"IsPublic"`
	IsSealed    bool   `json:"IsSealed"`
	IsAbstract  bool   `json:"IsAbstract"`
	IsInterface bool   `json:"IsInterface"`
	IsValueType bool   `json:"IsValueType"`
}

func (i TypeInfo) String() string {
	return fmt.Sprintf("Name: %s\nNamespace: %s\nBase Type: %s\nAttributes: %s\n"+
		"Is Public: %t\nIs Sealed: %t\nIs Abstract: %t\nIs Interface: %t\nIs ValueType: %t",
		i.Name, i.Namespace, i.BaseType, i.Attributes,
		i.IsPublic, i.IsSealed, i.IsAbstract, i.IsInterface, i.IsValueType)
}

// GetTypeInfo describes the type with the exact full name.
func GetTypeInfo(m *Module, typeName string) (TypeInfo, error) {
	t, ok := m.FindType(typeName)
	if !ok {
		return TypeInfo{}, fmt.Errorf("%w: %s", ErrTypeNotFound, typeName)
	}
	return TypeInfo{
		Name:        t.Name,
		Namespace:   t.Namespace,
		BaseType:    t.BaseType,
		Attributes:  t.Attributes.String(),
		IsPublic:    t.IsPublic(),
		IsSealed:    t.IsSealed(),
		IsAbstract:  t.IsAbstract(),
		IsInterface: t.IsInterface(),
		IsValueType: t.IsValueType(),
	}, nil
}

// ReadData returns size bytes at rva from the section that holds them.
func ReadData(m *Module, rva, size uint32) ([]byte, error) {
	for _, s := range m.Sections {
		end := uint64(s.RVA) + uint64(len(s.Data))
		if rva >= s.RVA && uint64(rva)+uint64(size) <= end {
			off := rva - s.RVA
			return s.Data[off : off+size], nil
		}
	}
	return nil, fmt.Errorf("%w: RVA %08X size %d", ErrNoData, rva, size)
}

// FindMethods returns the methods a user-supplied name selects: a token, an
// exact full name, or every method whose full name contains the text.
func FindMethods(m *Module, name string) []*MethodDef {
	if tok, err := ParseToken(name); err == nil && tok.Table() == TableMethod {
		if md, ok := m.MethodByRID(tok.RID()); ok {
			return []*MethodDef{md}
		}
	}
	for _, md := range m.methods {
		if md.FullName() == name {
			return []*MethodDef{md}
		}
	}
	needle := strings.ToLower(name)
	var out []*MethodDef
	for _, md := range m.methods {
		if strings.Contains(strings.ToLower(md.FullName()), needle) {
			out = append(out, md)
		}
	}
	return out
}
