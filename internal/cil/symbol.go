package cil

import "strings"

// SymbolKind tells types, methods and fields apart.
type SymbolKind uint8

const (
	TypeSymbol SymbolKind = iota
	MethodSymbol
	FieldSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case TypeSymbol:
		return "type"
	case MethodSymbol:
		return "method"
	case FieldSymbol:
		return "field"
	}
	return "unknown"
}

// Symbol is an opaque handle to a type, method or field. Handles are only
// produced by a symbol resolver.
type Symbol interface {
	SymbolKind() SymbolKind
	FullName() string
	// Reference describes the symbol in member-reference form.
	Reference() Reference
}

// Reference is a parsed member-reference descriptor such as
// "instance void [System.Runtime]System.DateTime::.ctor(int32, int32, int32)".
// Type names are stored in canonical form ("System.Int32").
type Reference struct {
	Kind     SymbolKind
	Instance bool // "instance" qualifier
	Static   bool // "static" qualifier
	Assembly string
	// Type is the declaring type of a member, or the type itself.
	Type string
	Name string
	// Signature is the return type of a method or the type of a field.
	Signature string
	Params    []string
}

// FullName renders the reference the way metadata full names read:
// "System.Void System.DateTime::.ctor(System.Int32,System.Int32,System.Int32)".
func (r Reference) FullName() string {
	switch r.Kind {
	case MethodSymbol:
		sig := r.Signature
		if sig == "" {
			sig = "System.Void"
		}
		return sig + " " + r.Type + "::" + r.Name + "(" + strings.Join(r.Params, ",") + ")"
	case FieldSymbol:
		if r.Signature == "" {
			return r.Type + "::" + r.Name
		}
		return r.Signature + " " + r.Type + "::" + r.Name
	}
	return r.Type
}

// String renders the reference in assembler syntax, which the instruction
// parser accepts back.
func (r Reference) String() string {
	var sb strings.Builder
	qualified := r.Type
	if r.Assembly != "" {
		qualified = "[" + r.Assembly + "]" + r.Type
	}
	if r.Kind == TypeSymbol {
		return qualified
	}
	if r.Instance {
		sb.WriteString("instance ")
	} else if r.Static {
		sb.WriteString("static ")
	}
	if r.Signature != "" {
		sb.WriteString(ILTypeName(r.Signature))
		sb.WriteByte(' ')
	}
	sb.WriteString(qualified)
	sb.WriteString("::")
	sb.WriteString(r.Name)
	if r.Kind == MethodSymbol {
		sb.WriteByte('(')
		for i, p := range r.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(ILTypeName(p))
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

// Unresolved is the synthetic handle used when no module can answer for a
// name. It keeps the descriptor so the reference can still be printed.
type Unresolved struct {
	Ref Reference
}

func (u *Unresolved) SymbolKind() SymbolKind { return u.Ref.Kind }
func (u *Unresolved) FullName() string       { return u.Ref.FullName() }
func (u *Unresolved) Reference() Reference   { return u.Ref }

var primitiveAliases = map[string]string{
	"void":    "System.Void",
	"bool":    "System.Boolean",
	"char":    "System.Char",
	"int8":    "System.SByte",
	"sbyte":   "System.SByte",
	"uint8":   "System.Byte",
	"byte":    "System.Byte",
	"int16":   "System.Int16",
	"short":   "System.Int16",
	"uint16":  "System.UInt16",
	"ushort":  "System.UInt16",
	"int32":   "System.Int32",
	"int":     "System.Int32",
	"uint32":  "System.UInt32",
	"uint":    "System.UInt32",
	"int64":   "System.Int64",
	"long":    "System.Int64",
	"uint64":  "System.UInt64",
	"ulong":   "System.UInt64",
	"float32": "System.Single",
	"single":  "System.Single",
	"float":   "System.Single",
	"float64": "System.Double",
	"double":  "System.Double",
	"string":  "System.String",
	"object":  "System.Object",
}

var preferredAliases = map[string]string{
	"System.Void":    "void",
	"System.Boolean": "bool",
	"System.Char":    "char",
	"System.SByte":   "int8",
	"System.Byte":    "uint8",
	"System.Int16":   "int16",
	"System.UInt16":  "uint16",
	"System.Int32":   "int32",
	"System.UInt32":  "uint32",
	"System.Int64":   "int64",
	"System.UInt64":  "uint64",
	"System.Single":  "float32",
	"System.Double":  "float64",
	"System.String":  "string",
	"System.Object":  "object",
}

// Primitive maps a primitive alias ("int32", "String", ...) to its full
// type name. The match is case-insensitive.
func Primitive(alias string) (string, bool) {
	full, ok := primitiveAliases[strings.ToLower(alias)]
	return full, ok
}

// IsPrimitive reports whether a full type name is one of the aliased types.
func IsPrimitive(full string) bool {
	_, ok := preferredAliases[full]
	return ok
}

// splitTypeSuffix separates "System.String[]&" into "System.String" and "[]&".
func splitTypeSuffix(name string) (string, string) {
	end := len(name)
	for end > 0 {
		switch {
		case strings.HasSuffix(name[:end], "[]"):
			end -= 2
		case name[end-1] == '&' || name[end-1] == '*':
			end--
		default:
			return name[:end], name[end:]
		}
	}
	return name[:end], name[end:]
}

// CanonicalTypeName expands primitive aliases, keeping array, by-ref and
// pointer suffixes: "string[]" becomes "System.String[]".
func CanonicalTypeName(name string) string {
	elem, suffix := splitTypeSuffix(strings.TrimSpace(name))
	if full, ok := Primitive(elem); ok {
		return full + suffix
	}
	return elem + suffix
}

// ILTypeName is the inverse of CanonicalTypeName: "System.Int32&" becomes
// "int32&".
func ILTypeName(full string) string {
	elem, suffix := splitTypeSuffix(full)
	if alias, ok := preferredAliases[elem]; ok {
		return alias + suffix
	}
	return full
}

// SplitTypeName splits "System.Collections.Generic.List`1" into namespace
// and name at the last dot.
func SplitTypeName(full string) (namespace, name string) {
	if i := strings.LastIndexByte(full, '.'); i > 0 {
		return full[:i], full[i+1:]
	}
	return "", full
}
