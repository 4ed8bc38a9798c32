package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"ilreverse/internal/analysis"
	"ilreverse/internal/detectors"
	"ilreverse/internal/metadata"
	"ilreverse/internal/reverse/styles"
	"ilreverse/internal/session"
	"ilreverse/internal/ui/colorize"
)

type viewMode int

const (
	viewSummary viewMode = iota
	viewMethods
	viewIL
	viewDetails
)

type methodItem struct {
	row metadata.MethodRow
}

func (i methodItem) Title() string       { return fmt.Sprintf("%s  %s", i.row.Token, i.row.FullName) }
func (i methodItem) Description() string { return "" }
func (i methodItem) FilterValue() string { return i.row.FullName }

type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(methodItem)
	if !ok {
		return
	}

	indicator := " "
	tokenStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	if index == m.Index() {
		indicator = ">"
		tokenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	}
	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(styles.Foreground))

	fmt.Fprintf(w, " %s  %s  %s", indicator, tokenStyle.Render(i.row.Token.String()), nameStyle.Render(i.row.FullName))
}

type model struct {
	viewport    viewport.Model
	methodsList list.Model
	ilView      viewport.Model
	detailsView viewport.Model
	spinner     spinner.Model
	mode        viewMode
	session     *session.Session
	hl          *colorize.Highlighter
	summaryMD   string
	findings    []string
	scanning    bool
	width       int
	height      int
}

type findingsMsg struct {
	findings []string
}

// scanCmd runs the reflection detector off the UI goroutine. The module is
// only read while the browser is open.
func scanCmd(m *metadata.Module) tea.Cmd {
	return func() tea.Msg {
		found := detectors.NewReflectionDetector().Detect(analysis.Scan(m))
		return findingsMsg{findings: detectors.Comments(found)}
	}
}

func newModel(s *session.Session, hl *colorize.Highlighter) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	rows, _ := metadata.FindMethodsRegex(s.Module, "")
	items := make([]list.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, methodItem{row: row})
	}
	methodsList := list.New(items, itemDelegate{}, 80, 24)
	methodsList.SetShowStatusBar(false)
	methodsList.SetFilteringEnabled(true)
	methodsList.Title = fmt.Sprintf("Methods (%d total)", len(rows))
	methodsList.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		MarginLeft(2)
	methodsList.SetShowHelp(true)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	ilv := viewport.New()
	ilv.SetWidth(80)
	ilv.SetHeight(24)
	dvp := viewport.New()
	dvp.SetWidth(80)
	dvp.SetHeight(24)

	m := model{
		viewport:    vp,
		methodsList: methodsList,
		ilView:      ilv,
		detailsView: dvp,
		spinner:     sp,
		mode:        viewSummary,
		session:     s,
		hl:          hl,
		summaryMD:   summaryMarkdown(s.Module),
		scanning:    true,
		width:       80,
		height:      24,
	}
	m.updateContent()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(scanCmd(m.session.Module), m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case findingsMsg:
		m.findings = msg.findings
		m.scanning = false
		m.updateContent()
		return m, nil

	case spinner.TickMsg:
		if !m.scanning {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateContent()
		return m, cmd

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			for _, vp := range []*viewport.Model{&m.viewport, &m.ilView, &m.detailsView} {
				vp.SetWidth(msg.Width)
				vp.SetHeight(msg.Height - 2)
			}
			m.methodsList.SetWidth(msg.Width)
			m.methodsList.SetHeight(msg.Height - 2)
			m.updateContent()
		}

	case tea.KeyMsg:
		if m.mode == viewMethods && m.methodsList.FilterState() == list.Filtering {
			// The list owns every key but quit while filtering.
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.mode = viewSummary
			return m, nil
		case "m":
			m.mode = viewMethods
			return m, nil
		case "d":
			m.mode = viewDetails
			return m, nil
		case "enter":
			if m.mode == viewMethods {
				if item, ok := m.methodsList.SelectedItem().(methodItem); ok {
					m.showMethod(item.row.RID)
				}
			}
			return m, nil
		case "tab":
			m.mode = m.nextMode(1)
			return m, nil
		case "shift+tab":
			m.mode = m.nextMode(-1)
			return m, nil
		}
	}

	switch m.mode {
	case viewMethods:
		m.methodsList, cmd = m.methodsList.Update(msg)
	case viewIL:
		m.ilView, cmd = m.ilView.Update(msg)
	case viewDetails:
		m.detailsView, cmd = m.detailsView.Update(msg)
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// nextMode cycles summary, methods and details. The IL view is entered from
// the method list and leaves to the details view.
func (m model) nextMode(step int) viewMode {
	cycle := []viewMode{viewSummary, viewMethods, viewDetails}
	cur := 0
	for i, v := range cycle {
		if v == m.mode {
			cur = i
		}
	}
	if m.mode == viewIL {
		cur = 1
	}
	return cycle[(cur+step+len(cycle))%len(cycle)]
}

// showMethod switches to the IL view of the method with row id rid.
func (m *model) showMethod(rid uint32) {
	lines, err := analysis.MethodILByRID(m.session.Module, rid)
	if err != nil {
		lines = []string{err.Error()}
	}
	m.ilView.SetContent(strings.Join(m.hl.Lines(lines), "\n"))
	m.ilView.GotoTop()
	m.mode = viewIL
}

func (m model) View() string {
	var content string
	switch m.mode {
	case viewMethods:
		content = m.methodsList.View()
	case viewIL:
		content = m.ilView.View()
	case viewDetails:
		content = m.detailsView.View()
	default:
		content = m.viewport.View()
	}

	var menu string
	switch m.mode {
	case viewMethods:
		menu = " Enter: view IL • S: summary • D: details • Tab: cycle • Q: quit "
	case viewIL:
		menu = " M: methods • S: summary • D: details • Q: quit "
	case viewDetails:
		menu = " S: summary • M: methods • Tab: cycle • Q: quit "
	default:
		menu = " M: methods • D: details • Tab: cycle • Q: quit "
	}

	menuStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1).
		Width(m.width)

	return content + "\n" + menuStyle.Render(menu)
}

func (m *model) updateContent() {
	width := m.width
	if width == 0 {
		width = 80
	}
	noColor := !m.hl.Enabled()
	mod := m.session.Module

	m.viewport.SetContent(styles.RenderMarkdown(m.summaryMD, width-2, noColor))

	var b strings.Builder
	b.WriteString("# Details\n\n## Reflection\n\n")
	switch {
	case m.scanning:
		fmt.Fprintf(&b, "%s Scanning method bodies...\n", m.spinner.View())
	case len(m.findings) == 0:
		b.WriteString("No reflection usage found.\n")
	default:
		for _, f := range m.findings {
			fmt.Fprintf(&b, "* %s\n", f)
		}
	}
	for _, t := range mod.Types {
		if info, err := metadata.GetTypeInfo(mod, t.FullName()); err == nil {
			b.WriteString("\n")
			b.WriteString(typeInfoMarkdown(info, t))
		}
	}
	m.detailsView.SetContent(styles.RenderMarkdown(b.String(), width-2, noColor))
}
