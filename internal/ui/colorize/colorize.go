// Package colorize highlights IL listings for the terminal.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// NoColorEnv disables highlighting when set to any non-empty value.
const NoColorEnv = "ILREVERSE_NO_COLOR"

// CIL lexes listing lines of the form "IL_0000: opcode operand". Label
// operands and the label prefix are NameLabel, assembly scopes are
// NameNamespace and the opcode is a Keyword.
var CIL = lexers.Register(chroma.MustNewLexer(
	&chroma.Config{
		Name:      "CIL",
		Aliases:   []string{"cil", "il", "msil"},
		Filenames: []string{"*.il"},
	},
	func() chroma.Rules {
		return chroma.Rules{
			"root": {
				{Pattern: `\s+`, Type: chroma.Text},
				{Pattern: `IL_[0-9A-Fa-f]{4}:`, Type: chroma.NameLabel},
				{Pattern: `[a-z][a-z0-9]*(?:\.[a-z0-9]+)*`, Type: chroma.Keyword, Mutator: chroma.Push("operand")},
				{Pattern: `.`, Type: chroma.Text},
			},
			"operand": {
				{Pattern: `\n`, Type: chroma.Text, Mutator: chroma.Pop(1)},
				{Pattern: `[ \t]+`, Type: chroma.Text},
				{Pattern: `"(?:\\.|[^"\\\n])*"`, Type: chroma.String},
				{Pattern: `IL_[0-9A-Fa-f]{4}`, Type: chroma.NameLabel},
				{Pattern: `\[[^\]\n]*\]`, Type: chroma.NameNamespace},
				{Pattern: `0x[0-9A-Fa-f]+`, Type: chroma.LiteralNumberHex},
				{Pattern: `-?[0-9]+(?:\.[0-9]+)?(?:[eE][-+]?[0-9]+)?\b`, Type: chroma.LiteralNumber},
				{Pattern: `System\.[A-Z][\w]*(?:\[\])?`, Type: chroma.NameBuiltin},
				{Pattern: `::`, Type: chroma.Operator},
				{Pattern: `[(),<>]`, Type: chroma.Punctuation},
				{Pattern: "[A-Za-z_.`'][\\w.`'<>]*(?:\\[\\])?", Type: chroma.Name},
				{Pattern: `.`, Type: chroma.Text},
			},
		}
	},
))

// Highlighter colours IL text. A disabled highlighter returns its input.
type Highlighter struct {
	enabled   bool
	style     *chroma.Style
	formatter chroma.Formatter
}

// New returns a highlighter, disabled when noColor is set or the
// ILREVERSE_NO_COLOR environment variable is non-empty.
func New(noColor bool) *Highlighter {
	h := &Highlighter{enabled: !noColor && os.Getenv(NoColorEnv) == ""}
	if !h.enabled {
		return h
	}
	h.style = styles.Get("il-dark")
	if h.style == nil {
		h.style = styles.Fallback
	}
	h.formatter = terminalFormatter()
	return h
}

func terminalFormatter() chroma.Formatter {
	for _, name := range []string{"terminal16m", "terminal256"} {
		if f := formatters.Get(name); f != nil {
			return f
		}
	}
	return formatters.Fallback
}

// Enabled reports whether output is coloured.
func (h *Highlighter) Enabled() bool { return h.enabled }

// Listing highlights a multi-line listing. On a lexer or formatter error
// the plain text is returned.
func (h *Highlighter) Listing(code string) string {
	if !h.enabled || code == "" {
		return code
	}
	it, err := CIL.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var sb strings.Builder
	if err := h.formatter.Format(&sb, h.style, it); err != nil {
		return code
	}
	return sb.String()
}

// Lines highlights each line of a listing independently.
func (h *Highlighter) Lines(lines []string) []string {
	if !h.enabled {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = h.Listing(line)
	}
	return out
}
