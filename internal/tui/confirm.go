package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/egoavara/formguard/internal/i18n"
)

// ConfirmOption represents one answer of a confirmation dialog
type ConfirmOption struct {
	Value       bool
	Label       string
	Description string
}

// ConfirmModel is the bubbletea model for a yes/no confirmation
type ConfirmModel struct {
	title     string
	details   []string
	options   []ConfirmOption
	cursor    int
	selected  bool
	quitting  bool
	confirmed bool
}

var (
	confirmTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205")).
				MarginBottom(1)

	confirmOptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	confirmSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57")).
				Bold(true).
				Padding(0, 1)

	confirmDescStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginLeft(4)

	confirmDescSelectedStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("252")).
					MarginLeft(4)

	confirmDetailStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).
				Background(lipgloss.Color("236")).
				Padding(0, 1)

	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

// NewConfirmModel creates a confirmation dialog listing details under the title.
// The cursor starts on yes.
func NewConfirmModel(title string, details []string) ConfirmModel {
	return ConfirmModel{
		title:   title,
		details: details,
		options: []ConfirmOption{
			{Value: true, Label: i18n.T("Confirm", nil), Description: i18n.T("ConfirmYesDesc", nil)},
			{Value: false, Label: i18n.T("Cancel", nil), Description: i18n.T("ConfirmNoDesc", nil)},
		},
		selected: true,
	}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.selected = false
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}

		case "y":
			m.selected = true
			m.confirmed = true
			m.quitting = true
			return m, tea.Quit

		case "n", "esc":
			m.selected = false
			m.confirmed = true
			m.quitting = true
			return m, tea.Quit

		case "enter", " ":
			m.selected = m.options[m.cursor].Value
			m.confirmed = true
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m ConfirmModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(confirmTitleStyle.Render(m.title))
	b.WriteString("\n\n")

	for _, d := range m.details {
		b.WriteString("  " + confirmDetailStyle.Render(d))
		b.WriteString("\n")
	}
	if len(m.details) > 0 {
		b.WriteString("\n")
	}

	for i, opt := range m.options {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		if i == m.cursor {
			b.WriteString(confirmSelectedStyle.Render(fmt.Sprintf("%s%s", cursor, opt.Label)))
			b.WriteString("\n")
			b.WriteString(confirmDescSelectedStyle.Render(opt.Description))
		} else {
			b.WriteString(confirmOptionStyle.Render(fmt.Sprintf("%s%s", cursor, opt.Label)))
			b.WriteString("\n")
			b.WriteString(confirmDescStyle.Render(opt.Description))
		}
		b.WriteString("\n\n")
	}

	b.WriteString(helpStyle.Render("↑/↓ | Enter | [y] " + i18n.T("Confirm", nil) + "  [n] " + i18n.T("Cancel", nil)))

	return confirmBoxStyle.Render(b.String())
}

// Selected returns whether the user answered yes
func (m ConfirmModel) Selected() bool {
	return m.selected
}

// Confirmed returns whether the user answered at all
func (m ConfirmModel) Confirmed() bool {
	return m.confirmed
}

// RunConfirm launches the interactive confirmation dialog
func RunConfirm(title string, details []string) (bool, error) {
	p := tea.NewProgram(NewConfirmModel(title, details))

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m := finalModel.(ConfirmModel)
	return m.Confirmed() && m.Selected(), nil
}
