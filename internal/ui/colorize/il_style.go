package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// ILDark is the chroma style for IL listings.
var ILDark = styles.Register(chroma.MustNewStyle("il-dark", chroma.StyleEntries{
	chroma.Text:        "#FFFFFF",
	chroma.Keyword:     "#FFFFFF",
	chroma.Name:        "#7C9C9D",
	chroma.NameLabel:   "#4F4F4F",
	chroma.NameBuiltin: "#FFD700",
	chroma.Punctuation: "#FFFFFF",
	chroma.Operator:    "#FFFFFF",

	chroma.NameNamespace: "#C586C0",

	chroma.LiteralNumber:    "#FF5F87",
	chroma.LiteralNumberHex: "#FF5F87",
	chroma.String:           "#EACD53",
}))
