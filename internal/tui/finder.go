package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/egoavara/formguard/internal/i18n"
	"github.com/egoavara/formguard/internal/modules"
	"github.com/egoavara/formguard/internal/search"
)

// Action is the pending change for one integration
type Action string

const (
	ActionNone       Action = ""
	ActionActivate   Action = "activate"
	ActionDeactivate Action = "deactivate"
)

// IntegrationItem wraps an integration with its enabled state
type IntegrationItem struct {
	Integration modules.Integration
	Enabled     bool // currently enabled on the site
	Selected    bool // wanted enabled after apply
}

// Action returns what applying the selection does to this integration
func (it IntegrationItem) Action() Action {
	switch {
	case it.Enabled && !it.Selected:
		return ActionDeactivate
	case !it.Enabled && it.Selected:
		return ActionActivate
	}
	return ActionNone
}

// FinderResult holds the result of TUI selection
type FinderResult struct {
	ToActivate   []IntegrationItem
	ToDeactivate []IntegrationItem
	Cancelled    bool
}

// ViewMode represents the current view mode
type ViewMode int

const (
	ModeList ViewMode = iota
	ModeConfirm
)

// entityFilters is the ctrl+t cycle; "" shows every entity
var entityFilters = []modules.Entity{"", modules.EntityPlugin, modules.EntityTheme}

// Model is the bubbletea model for the integration finder
type Model struct {
	items   []IntegrationItem
	byKey   map[string]int // status -> index in items
	visible []int          // indices into items, in display order
	cursor  int
	entity  int // index into entityFilters
	width   int
	height  int
	query   textinput.Model
	mode    ViewMode
	done    bool
	applied bool
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	enabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))

	activateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	deactivateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// NewModel creates a new finder model
func NewModel(items []IntegrationItem) Model {
	q := textinput.New()
	q.Prompt = "> "
	q.Placeholder = "type to filter"
	q.CharLimit = 50
	q.Width = 30
	q.Focus()

	byKey := make(map[string]int, len(items))
	for i, item := range items {
		byKey[item.Integration.Status] = i
	}

	m := Model{
		items: items,
		byKey: byKey,
		query: q,
		mode:  ModeList,
	}
	m.refilter()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode == ModeConfirm {
			return m.updateConfirm(msg)
		}
		return m.updateList(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.done = true
		return m, tea.Quit

	case "esc":
		if m.query.Value() == "" {
			m.done = true
			return m, tea.Quit
		}
		m.query.SetValue("")
		m.refilter()
		return m, nil

	case "up", "ctrl+p":
		m.moveCursor(-1)
		return m, nil

	case "down", "ctrl+n":
		m.moveCursor(1)
		return m, nil

	case "pgup":
		m.moveCursor(-m.pageSize())
		return m, nil

	case "pgdown":
		m.moveCursor(m.pageSize())
		return m, nil

	case "tab", " ":
		if idx, ok := m.current(); ok {
			m.items[idx].Selected = !m.items[idx].Selected
		}
		return m, nil

	case "ctrl+t":
		m.entity = (m.entity + 1) % len(entityFilters)
		m.refilter()
		return m, nil

	case "enter":
		if m.pending() > 0 {
			m.mode = ModeConfirm
		}
		return m, nil
	}

	var cmd tea.Cmd
	before := m.query.Value()
	m.query, cmd = m.query.Update(msg)
	if m.query.Value() != before {
		m.refilter()
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.applied = true
		m.done = true
		return m, tea.Quit
	case "n", "N", "esc", "q":
		m.mode = ModeList
	}
	return m, nil
}

// refilter recomputes the visible rows from the query and the entity filter
func (m *Model) refilter() {
	entity := entityFilters[m.entity]
	m.visible = make([]int, 0, len(m.items))

	if q := m.query.Value(); q != "" {
		list := make([]modules.Integration, len(m.items))
		for i, item := range m.items {
			list[i] = item.Integration
		}
		for _, r := range search.FuzzySearch(list, q) {
			if idx := m.byKey[r.Integration.Status]; entity == "" || m.items[idx].Integration.Entity == entity {
				m.visible = append(m.visible, idx)
			}
		}
	} else {
		for i, item := range m.items {
			if entity == "" || item.Integration.Entity == entity {
				m.visible = append(m.visible, i)
			}
		}
	}

	m.cursor = min(m.cursor, max(0, len(m.visible)-1))
}

func (m *Model) moveCursor(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.visible)-1)
}

func (m Model) current() (int, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return 0, false
	}
	return m.visible[m.cursor], true
}

func (m Model) pageSize() int {
	return max(5, m.height-8)
}

func (m Model) pending() int {
	n := 0
	for _, item := range m.items {
		if item.Action() != ActionNone {
			n++
		}
	}
	return n
}

func (m Model) changes() (toActivate, toDeactivate []IntegrationItem) {
	for _, item := range m.items {
		switch item.Action() {
		case ActionActivate:
			toActivate = append(toActivate, item)
		case ActionDeactivate:
			toDeactivate = append(toDeactivate, item)
		}
	}
	return toActivate, toDeactivate
}

func (m Model) View() string {
	if m.done {
		return ""
	}
	if m.mode == ModeConfirm {
		return m.viewConfirm()
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var b strings.Builder

	title := i18n.T("TUIHeader", map[string]any{"Count": len(m.visible)})
	if entity := entityFilters[m.entity]; entity != "" {
		title += " · " + string(entity)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	const listWidth = 44
	rows := m.pageSize()
	start := max(0, m.cursor-rows+1)
	end := min(start+rows, len(m.visible))

	lines := make([]string, 0, end-start)
	for row := start; row < end; row++ {
		lines = append(lines, m.viewRow(row))
	}

	list := lipgloss.NewStyle().Width(listWidth).Render(strings.Join(lines, "\n"))
	preview := previewStyle.
		Width(max(30, m.width-listWidth-6)).
		Height(rows).
		Render(m.viewPreview())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", preview))
	b.WriteString("\n\n")

	b.WriteString(m.query.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("↑/↓ move · Tab toggle · ^T entity · Enter review (%d) · Esc clear/quit", m.pending())))

	return b.String()
}

func (m Model) viewRow(row int) string {
	item := m.items[m.visible[row]]

	mark, style := "[ ]", idleStyle
	switch item.Action() {
	case ActionActivate:
		mark, style = "[+]", activateStyle
	case ActionDeactivate:
		mark, style = "[-]", deactivateStyle
	default:
		if item.Enabled {
			mark, style = "[*]", enabledStyle
		}
	}

	if row == m.cursor {
		return cursorStyle.Render(fmt.Sprintf("▸ %s %s", mark, item.Integration.Name)) +
			" " + badgeStyle.Render(string(item.Integration.Entity))
	}
	return style.Render(fmt.Sprintf("  %s %s", mark, item.Integration.Name)) +
		" " + badgeStyle.Render(string(item.Integration.Entity))
}

func (m Model) viewPreview() string {
	idx, ok := m.current()
	if !ok {
		return i18n.T("TUIPreviewEmpty", nil)
	}
	item := m.items[idx]
	it := item.Integration

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", titleStyle.Render(it.Name))
	fmt.Fprintf(&b, "key       %s\n", it.Status)
	fmt.Fprintf(&b, "entity    %s\n", it.Entity)
	if it.Category != "" {
		fmt.Fprintf(&b, "category  %s\n", it.Category)
	}
	if item.Enabled {
		b.WriteString(enabledStyle.Render("enabled") + "\n")
	}

	if it.Theme != "" {
		fmt.Fprintf(&b, "\ntheme     %s\n", it.Theme)
	}
	if len(it.Plugins) > 0 {
		b.WriteString("\nplugins (first is installed when missing)\n")
		for _, id := range it.Plugins {
			fmt.Fprintf(&b, "  %s\n", id)
		}
	}
	if len(it.Keywords) > 0 {
		fmt.Fprintf(&b, "\n%s\n", badgeStyle.Render(strings.Join(it.Keywords, " · ")))
	}
	return b.String()
}

func (m Model) viewConfirm() string {
	toActivate, toDeactivate := m.changes()

	var b strings.Builder
	b.WriteString(i18n.T("ConfirmTitle", nil))
	b.WriteString("\n\n")

	section := func(items []IntegrationItem, header, sign string, style lipgloss.Style) {
		if len(items) == 0 {
			return
		}
		b.WriteString(style.Render(i18n.T(header, map[string]any{"Count": len(items)}, len(items))))
		b.WriteString("\n")
		for _, item := range items {
			fmt.Fprintf(&b, "  %s %s\n", sign, item.Integration.Name)
		}
		b.WriteString("\n")
	}
	section(toDeactivate, "ToDeactivate", "-", deactivateStyle)
	section(toActivate, "ToActivate", "+", activateStyle)

	b.WriteString(helpStyle.Render("[y] " + i18n.T("Confirm", nil) + "  [n] " + i18n.T("Cancel", nil)))
	return modalStyle.Render(b.String())
}

// Result returns the selection once the program has exited
func (m Model) Result() *FinderResult {
	if !m.applied {
		return &FinderResult{Cancelled: true}
	}
	toActivate, toDeactivate := m.changes()
	return &FinderResult{
		ToActivate:   toActivate,
		ToDeactivate: toDeactivate,
	}
}

// RunIntegrationFinder launches the interactive finder.
// stati marks the integrations that are currently enabled; they start selected.
func RunIntegrationFinder(integrations []modules.Integration, stati map[string]bool) (*FinderResult, error) {
	if len(integrations) == 0 {
		return nil, fmt.Errorf("%s", i18n.T("NoIntegrationsAvailable", nil))
	}

	items := make([]IntegrationItem, len(integrations))
	for i, it := range integrations {
		items[i] = IntegrationItem{
			Integration: it,
			Enabled:     stati[it.Status],
			Selected:    stati[it.Status],
		}
	}

	final, err := tea.NewProgram(NewModel(items), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	return final.(Model).Result(), nil
}
