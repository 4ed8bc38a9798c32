package ilasm

import (
	"strings"
	"unicode"

	"ilreverse/internal/cil"
)

// ParseReference parses the member-reference grammar:
//
//	[instance|static] [type] [[Assembly]]Declaring.Type::member            field
//	[instance|static] [type] [[Assembly]]Declaring.Type::member(p1, p2)    method
//	[[Assembly]]Type.Name                                                  type
//
// Primitive aliases are expanded to full names. Nothing is resolved here.
func ParseReference(text string) (cil.Reference, error) {
	s := strings.TrimSpace(text)
	var ref cil.Reference
	first, rest := s, ""
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		first, rest = s[:i], strings.TrimSpace(s[i:])
	}
	switch first {
	case "instance":
		ref.Instance = true
		s = rest
	case "static":
		ref.Static = true
		s = rest
	}
	if s == "" {
		return ref, memberErr("empty reference %q", text)
	}

	sep := strings.Index(s, "::")
	if sep < 0 {
		if strings.ContainsRune(s, '(') {
			return ref, memberErr("method reference %q has no declaring type", text)
		}
		if ref.Instance || ref.Static {
			return ref, memberErr("type reference %q cannot be qualified", text)
		}
		asm, name, err := splitAssembly(s)
		if err != nil {
			return ref, err
		}
		if !validName(name) {
			return ref, memberErr("invalid type name %q", name)
		}
		ref.Kind = cil.TypeSymbol
		ref.Assembly = asm
		ref.Type = cil.CanonicalTypeName(name)
		return ref, nil
	}

	head := strings.TrimSpace(s[:sep])
	tail := strings.TrimSpace(s[sep+2:])

	declaring := head
	if i := strings.IndexFunc(head, unicode.IsSpace); i >= 0 {
		sig := head[:i]
		declaring = strings.TrimSpace(head[i:])
		_, sigName, err := splitAssembly(sig)
		if err != nil {
			return ref, err
		}
		if !validName(sigName) {
			return ref, memberErr("invalid type %q in %q", sig, text)
		}
		ref.Signature = cil.CanonicalTypeName(sigName)
	}
	asm, typeName, err := splitAssembly(declaring)
	if err != nil {
		return ref, err
	}
	if !validName(typeName) {
		return ref, memberErr("invalid declaring type %q in %q", declaring, text)
	}
	ref.Assembly = asm
	ref.Type = cil.CanonicalTypeName(typeName)

	if strings.Contains(tail, "::") {
		return ref, memberErr("too many '::' in %q", text)
	}
	paren := strings.IndexByte(tail, '(')
	if paren < 0 {
		if !validName(tail) || strings.ContainsRune(tail, ')') {
			return ref, memberErr("invalid field name %q", tail)
		}
		ref.Kind = cil.FieldSymbol
		ref.Name = tail
		return ref, nil
	}

	ref.Kind = cil.MethodSymbol
	ref.Name = strings.TrimSpace(tail[:paren])
	if !validName(ref.Name) {
		return ref, memberErr("invalid method name %q", ref.Name)
	}
	list := tail[paren+1:]
	if !strings.HasSuffix(list, ")") {
		return ref, memberErr("unterminated parameter list in %q", text)
	}
	list = list[:len(list)-1]
	if strings.ContainsAny(list, "()") {
		return ref, memberErr("nested parentheses in %q", text)
	}
	if strings.TrimSpace(list) == "" {
		return ref, nil
	}
	for _, p := range strings.Split(list, ",") {
		_, name, err := splitAssembly(strings.TrimSpace(p))
		if err != nil {
			return ref, err
		}
		if !validName(name) {
			return ref, memberErr("invalid parameter type %q in %q", p, text)
		}
		ref.Params = append(ref.Params, cil.CanonicalTypeName(name))
	}
	return ref, nil
}

// splitAssembly takes a leading "[Assembly]" off a type name.
func splitAssembly(s string) (asm, rest string, err error) {
	if !strings.HasPrefix(s, "[") {
		return "", s, nil
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return "", s, memberErr("unterminated assembly qualifier in %q", s)
	}
	asm = strings.TrimSpace(s[1:end])
	if asm == "" {
		return "", s, memberErr("empty assembly qualifier in %q", s)
	}
	return asm, s[end+1:], nil
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || r == '(' || r == ',' {
			return false
		}
	}
	return true
}

func symbolKindFor(k cil.OperandKind) (cil.SymbolKind, bool) {
	switch k {
	case cil.OperandTypeRef:
		return cil.TypeSymbol, true
	case cil.OperandMethodRef:
		return cil.MethodSymbol, true
	case cil.OperandFieldRef:
		return cil.FieldSymbol, true
	}
	// TokenRef takes any kind.
	return 0, false
}

// resolveSymbol parses a member descriptor and resolves it, falling back to
// a synthetic handle for names the resolver does not know.
func (p *Parser) resolveSymbol(kind cil.OperandKind, text string) (cil.Operand, error) {
	ref, err := ParseReference(text)
	if err != nil {
		return nil, err
	}
	if want, strict := symbolKindFor(kind); strict && ref.Kind != want {
		return nil, memberErr("%s operand %q is a %s reference", kind, text, ref.Kind)
	}
	return cil.Handle{Symbol: p.resolveReference(ref)}, nil
}

func (p *Parser) resolveReference(ref cil.Reference) cil.Symbol {
	typ, found := p.resolver.ResolveType(ref.Assembly, ref.Type)
	if ref.Kind == cil.TypeSymbol {
		if found {
			return typ
		}
		p.logger.Debug("synthesizing unresolved type", "type", ref.Type, "assembly", ref.Assembly)
		return p.resolver.SynthesizeUnresolved(ref)
	}
	if !found {
		typ = p.resolver.SynthesizeUnresolved(cil.Reference{
			Kind:     cil.TypeSymbol,
			Assembly: ref.Assembly,
			Type:     ref.Type,
		})
	}
	if member, ok := p.resolver.ResolveMember(typ, ref); ok {
		return member
	}
	p.logger.Debug("synthesizing unresolved member", "member", ref.FullName())
	return p.resolver.SynthesizeUnresolved(ref)
}
