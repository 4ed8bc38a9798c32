package analysis

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"ilreverse/internal/metadata"
)

// EscapeUnprintable returns a string where printable Unicode runes are preserved.
// Control and unprintable runes are escaped as \uXXXX. Invalid UTF-8 is escaped as \xXX.
func EscapeUnprintable(b []byte) string {
	var sb strings.Builder
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		switch {
		case r == utf8.RuneError && size == 1:
			fmt.Fprintf(&sb, "\\x%02X", b[0])
		case unicode.IsPrint(r):
			sb.WriteRune(r)
		default:
			fmt.Fprintf(&sb, "\\u%04X", r)
		}
		b = b[size:]
	}
	return sb.String()
}

// Preview escapes s and cuts it at MaxStringLength runes.
func Preview(s string) string {
	e := EscapeUnprintable([]byte(s))
	if utf8.RuneCountInString(e) <= MaxStringLength {
		return e
	}
	r := []rune(e)
	return string(r[:MaxStringLength]) + "..."
}

// FormatData renders raw image bytes as escaped text and as a hex dump.
func FormatData(b []byte) (text, dump string) {
	return EscapeUnprintable(b), hex.Dump(b)
}

// StringLiteral is one ldstr operand.
type StringLiteral struct {
	MethodName    string         `json:"MethodName"`
	FullName      string         `json:"FullName"`
	Token         metadata.Token `json:"Token"`
	StringLiteral string         `json:"StringLiteral"`
	InstrOffset   uint32         `json:"InstrOffset"`
}

func (s StringLiteral) String() string {
	return fmt.Sprintf("%s IL_%04X: \"%s\"", s.FullName, s.InstrOffset, Preview(s.StringLiteral))
}

// FindStringLiterals lists every string literal in the module.
func FindStringLiterals(m *metadata.Module) []StringLiteral {
	var out []StringLiteral
	for _, f := range Scan(m) {
		if f.Kind != KindString {
			continue
		}
		out = append(out, StringLiteral{
			MethodName:    f.Method.Name,
			FullName:      f.Method.FullName(),
			Token:         f.Method.Token(),
			StringLiteral: f.Target,
			InstrOffset:   f.Offset,
		})
	}
	return out
}

// FindStringReferences lists the instructions loading a literal that matches
// the .NET regular expression pattern.
func FindStringReferences(m *metadata.Module, pattern string) ([]string, error) {
	re, err := metadata.CompilePattern(pattern)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, f := range Scan(m) {
		if f.Kind != KindString {
			continue
		}
		ok, err := re.MatchString(f.Target)
		if err != nil {
			return nil, fmt.Errorf("matching %q: %w", f.Target, err)
		}
		if ok {
			out = append(out, fmt.Sprintf("%s: \"%s\" at %s", f.Method.FullName(), Preview(f.Target), f.Location()))
		}
	}
	return out, nil
}
