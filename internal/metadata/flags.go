package metadata

import (
	"fmt"
	"strings"
)

// flagNames renders a bit set the way attribute enums print: "Public, Sealed".
func flagNames[F ~uint32](f F, names []string) []string {
	var out []string
	for i, name := range names {
		if f&(1<<i) != 0 {
			out = append(out, name)
		}
	}
	return out
}

func parseFlags[F ~uint32](list []string, names []string, what string) (F, error) {
	var f F
	for _, s := range list {
		found := false
		for i, name := range names {
			if strings.EqualFold(strings.TrimSpace(s), name) {
				f |= 1 << i
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown %s attribute %q", what, s)
		}
	}
	return f, nil
}

// TypeAttributes is the subset of type flags the browser reports.
type TypeAttributes uint32

const (
	TypePublic TypeAttributes = 1 << iota
	TypeSealed
	TypeAbstract
	TypeInterface
	TypeSerializable
	TypeBeforeFieldInit
)

var typeAttrNames = []string{"Public", "Sealed", "Abstract", "Interface", "Serializable", "BeforeFieldInit"}

func (a TypeAttributes) Names() []string { return flagNames(a, typeAttrNames) }

func (a TypeAttributes) String() string {
	names := a.Names()
	if a&TypePublic == 0 {
		names = append([]string{"NotPublic"}, names...)
	}
	return strings.Join(names, ", ")
}

// ParseTypeAttributes reads the names written in a module image.
func ParseTypeAttributes(list []string) (TypeAttributes, error) {
	return parseFlags[TypeAttributes](list, typeAttrNames, "type")
}

// MethodAttributes is the subset of method flags the browser reports.
type MethodAttributes uint32

const (
	MethodPublic MethodAttributes = 1 << iota
	MethodPrivate
	MethodStatic
	MethodVirtual
	MethodAbstract
	MethodFinal
	MethodHideBySig
	MethodSpecialName
)

var methodAttrNames = []string{"Public", "Private", "Static", "Virtual", "Abstract", "Final", "HideBySig", "SpecialName"}

func (a MethodAttributes) Names() []string { return flagNames(a, methodAttrNames) }
func (a MethodAttributes) String() string  { return strings.Join(a.Names(), ", ") }

// ParseMethodAttributes reads the names written in a module image.
func ParseMethodAttributes(list []string) (MethodAttributes, error) {
	return parseFlags[MethodAttributes](list, methodAttrNames, "method")
}

// FieldAttributes is the subset of field flags the browser reports.
type FieldAttributes uint32

const (
	FieldPublic FieldAttributes = 1 << iota
	FieldPrivate
	FieldStatic
	FieldInitOnly
	FieldLiteral
)

var fieldAttrNames = []string{"Public", "Private", "Static", "InitOnly", "Literal"}

func (a FieldAttributes) Names() []string { return flagNames(a, fieldAttrNames) }
func (a FieldAttributes) String() string  { return strings.Join(a.Names(), ", ") }

// ParseFieldAttributes reads the names written in a module image.
func ParseFieldAttributes(list []string) (FieldAttributes, error) {
	return parseFlags[FieldAttributes](list, fieldAttrNames, "field")
}

// ResourceKind tells embedded resources from linked ones.
type ResourceKind uint8

const (
	ResourceEmbedded ResourceKind = iota
	ResourceLinked
	ResourceAssemblyLinked
)

var resourceKindNames = []string{"Embedded", "Linked", "AssemblyLinked"}

func (k ResourceKind) String() string {
	if int(k) < len(resourceKindNames) {
		return resourceKindNames[k]
	}
	return fmt.Sprintf("ResourceKind(%d)", int(k))
}

// ParseResourceKind reads a resource kind name; empty means Embedded.
func ParseResourceKind(s string) (ResourceKind, error) {
	if s == "" {
		return ResourceEmbedded, nil
	}
	for i, name := range resourceKindNames {
		if strings.EqualFold(s, name) {
			return ResourceKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown resource kind %q", s)
}
