package cmd

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ilreverse/internal/session"
	"ilreverse/internal/ui/colorize"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	s, err := session.Open(demoImage, nil)
	require.NoError(t, err)
	return newModel(s, colorize.New(true))
}

func TestModelStartsOnSummary(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, viewSummary, m.mode)
	assert.True(t, m.scanning)
	assert.NotNil(t, m.Init())
	assert.Contains(t, m.View(), "M: methods")
	assert.Len(t, m.methodsList.Items(), 7)
}

func TestModelFindings(t *testing.T) {
	m := newTestModel(t)
	msg := scanCmd(m.session.Module)()
	next, cmd := m.Update(msg)
	assert.Nil(t, cmd)

	got := next.(model)
	assert.False(t, got.scanning)
	require.Len(t, got.findings, 1)
	assert.Contains(t, got.findings[0], "GetType")
}

func TestModelShowMethod(t *testing.T) {
	m := newTestModel(t)
	m.showMethod(6)
	assert.Equal(t, viewIL, m.mode)
	assert.Contains(t, m.ilView.View(), `IL_0000: ldstr "> "`)
	assert.Contains(t, m.View(), "M: methods • S: summary")

	m.showMethod(99)
	assert.Contains(t, m.ilView.View(), "method not found")
}

func TestModelNextMode(t *testing.T) {
	m := newTestModel(t)
	for _, c := range []struct {
		from viewMode
		step int
		want viewMode
	}{
		{viewSummary, 1, viewMethods},
		{viewMethods, 1, viewDetails},
		{viewDetails, 1, viewSummary},
		{viewSummary, -1, viewDetails},
		{viewIL, 1, viewDetails},
		{viewIL, -1, viewSummary},
	} {
		m.mode = c.from
		assert.Equal(t, c.want, m.nextMode(c.step), "from %d step %d", c.from, c.step)
	}
}

func TestModelResize(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	got := next.(model)
	assert.Equal(t, 120, got.width)
	assert.Equal(t, 40, got.height)
}
