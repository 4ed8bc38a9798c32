// Package styles holds the terminal styles shared by the CLI and the
// interactive browser.
package styles

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/x/exp/charmtone"
)

// Dark editor palette used for text that sits next to highlighted IL.
const (
	Foreground = "#D4D4D4"
	Heading    = "#569CD6"
	InlineCode = "#EACD53"
	Comment    = "#6A9955"
	LineNumber = "#858585"
)

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }
func uintPtr(u uint) *uint       { return &u }

func heading(prefix string) ansi.StyleBlock {
	return ansi.StyleBlock{
		StylePrimitive: ansi.StylePrimitive{
			Prefix: prefix,
			Color:  stringPtr(Heading),
			Bold:   boolPtr(true),
		},
	}
}

// MarkdownStyle returns the glamour style for module summaries and type
// info pages.
func MarkdownStyle() ansi.StyleConfig {
	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: stringPtr(Foreground),
			},
		},
		BlockQuote: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color:  stringPtr(Comment),
				Italic: boolPtr(true),
			},
			Indent:      uintPtr(1),
			IndentToken: stringPtr("│ "),
		},
		List: ansi.StyleList{
			LevelIndent: 2,
		},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockSuffix: "\n",
				Color:       stringPtr(Heading),
				Bold:        boolPtr(true),
			},
		},
		H1: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix:          " ",
				Suffix:          " ",
				Color:           stringPtr(charmtone.Zest.Hex()),
				BackgroundColor: stringPtr(charmtone.Charple.Hex()),
				Bold:            boolPtr(true),
			},
		},
		H2: heading("## "),
		H3: heading("### "),
		Strong: ansi.StylePrimitive{
			Bold:  boolPtr(true),
			Color: stringPtr(Foreground),
		},
		Emph: ansi.StylePrimitive{
			Italic: boolPtr(true),
		},
		HorizontalRule: ansi.StylePrimitive{
			Color:  stringPtr(LineNumber),
			Format: "\n--------\n",
		},
		Item: ansi.StylePrimitive{
			BlockPrefix: "• ",
		},
		Enumeration: ansi.StylePrimitive{
			BlockPrefix: ". ",
		},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: stringPtr(InlineCode),
			},
		},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{
					Color: stringPtr(charmtone.Smoke.Hex()),
				},
				Margin: uintPtr(1),
			},
		},
		Table: ansi.StyleTable{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{
					Color: stringPtr(Foreground),
				},
			},
		},
		Text: ansi.StylePrimitive{
			Color: stringPtr(Foreground),
		},
	}
}

// MarkdownRenderer returns a renderer wrapping prose at width. With noColor
// it uses glamour's plain style.
func MarkdownRenderer(width int, noColor bool) (*glamour.TermRenderer, error) {
	style := glamour.WithStyles(MarkdownStyle())
	if noColor {
		style = glamour.WithStandardStyle("notty")
	}
	return glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
}

// RenderMarkdown renders md, falling back to the source text when the
// renderer fails.
func RenderMarkdown(md string, width int, noColor bool) string {
	r, err := MarkdownRenderer(width, noColor)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSuffix(out, "\n")
}
