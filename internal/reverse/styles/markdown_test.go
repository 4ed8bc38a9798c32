package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownStyle(t *testing.T) {
	s := MarkdownStyle()
	require.NotNil(t, s.H2.Color)
	assert.Equal(t, Heading, *s.H2.Color)
	assert.Equal(t, "### ", s.H3.Prefix)
	require.NotNil(t, s.Code.Color)
	assert.Equal(t, InlineCode, *s.Code.Color)
}

func TestRenderMarkdownPlain(t *testing.T) {
	out := RenderMarkdown("# Demo\n\n* `Demo.Greeter`\n", 80, true)
	assert.Contains(t, out, "Demo")
	assert.Contains(t, out, "Demo.Greeter")
}

func TestRenderMarkdownStyled(t *testing.T) {
	r, err := MarkdownRenderer(40, false)
	require.NoError(t, err)
	out, err := r.Render("## Types\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Types")
}
