package analysis

import (
	"fmt"
	"strings"

	"ilreverse/internal/metadata"
)

// FindMethodUsages lists the call sites of every method whose full name
// contains name, ignoring case.
func FindMethodUsages(m *metadata.Module, name string) []string {
	needle := strings.ToLower(name)
	var out []string
	for _, f := range Scan(m) {
		if f.Kind != KindCall || !strings.Contains(strings.ToLower(f.Target), needle) {
			continue
		}
		out = append(out, fmt.Sprintf("%s calls %s at %s", f.Method.FullName(), f.Target, f.Location()))
	}
	return out
}

// FindMethodReferences lists the instructions whose operand is the symbol
// with token tok.
func FindMethodReferences(m *metadata.Module, tok metadata.Token) []string {
	var out []string
	for _, f := range Scan(m) {
		if f.Token == 0 || f.Token != tok {
			continue
		}
		out = append(out, fmt.Sprintf("%s: %s %s at %s", f.Method.FullName(), f.OpCode, f.Target, f.Location()))
	}
	return out
}

// TypeDependencies lists what the type depends on: its base type, its
// interfaces and every type, method and field its method bodies refer to.
// Each row appears once, in first-seen order.
func TypeDependencies(m *metadata.Module, typeName string) ([]string, error) {
	t, ok := m.FindType(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", metadata.ErrTypeNotFound, typeName)
	}

	var out []string
	seen := make(map[string]bool)
	add := func(row string) {
		if !seen[row] {
			seen[row] = true
			out = append(out, row)
		}
	}

	if t.BaseType != "" {
		add("Inherits: " + t.BaseType)
	}
	for _, in := range t.Interfaces {
		add("Implements: " + in)
	}
	for _, md := range t.Methods {
		for _, f := range ScanMethod(md) {
			switch f.Kind {
			case KindType:
				add("References: " + f.Target)
			case KindCall:
				add("Calls: " + f.Target)
			case KindField:
				add("Uses Field: " + f.Target)
			}
		}
	}
	return out, nil
}
