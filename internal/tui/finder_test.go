package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egoavara/formguard/internal/modules"
)

func testItems() []IntegrationItem {
	return []IntegrationItem{
		{Integration: modules.Integration{Status: "cf7_status", Name: "Contact Form 7", Entity: modules.EntityPlugin}},
		{Integration: modules.Integration{Status: "woocommerce_status", Name: "WooCommerce", Entity: modules.EntityPlugin}, Enabled: true, Selected: true},
	}
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestIntegrationItem_Action(t *testing.T) {
	assert.Equal(t, ActionActivate, IntegrationItem{Selected: true}.Action())
	assert.Equal(t, ActionDeactivate, IntegrationItem{Enabled: true}.Action())
	assert.Equal(t, ActionNone, IntegrationItem{Enabled: true, Selected: true}.Action())
	assert.Equal(t, ActionNone, IntegrationItem{}.Action())
}

func TestModel_ToggleAndConfirm(t *testing.T) {
	m := NewModel(testItems())

	m = press(t, m,
		tea.KeyMsg{Type: tea.KeyTab},  // select cf7
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyTab},  // unselect woocommerce
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	assert.Equal(t, ModeConfirm, m.mode)

	m = press(t, m, runes("y"))
	result := m.Result()
	require.False(t, result.Cancelled)
	require.Len(t, result.ToActivate, 1)
	assert.Equal(t, "cf7_status", result.ToActivate[0].Integration.Status)
	require.Len(t, result.ToDeactivate, 1)
	assert.Equal(t, "woocommerce_status", result.ToDeactivate[0].Integration.Status)
}

func TestModel_EnterWithoutChanges(t *testing.T) {
	m := press(t, NewModel(testItems()), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeList, m.mode)
}

func TestModel_Filter(t *testing.T) {
	m := press(t, NewModel(testItems()), runes("w"), runes("o"), runes("o"))
	require.Len(t, m.visible, 1)
	assert.Equal(t, "woocommerce_status", m.items[m.visible[0]].Integration.Status)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Len(t, m.visible, 2)
}

func TestModel_Cancel(t *testing.T) {
	m := press(t, NewModel(testItems()), tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.Result().Cancelled)
}

func TestModel_EntityFilter(t *testing.T) {
	items := append(testItems(), IntegrationItem{
		Integration: modules.Integration{Status: "avada_status", Name: "Avada", Entity: modules.EntityTheme},
	})
	m := NewModel(items)
	assert.Len(t, m.visible, 3)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Len(t, m.visible, 2)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	require.Len(t, m.visible, 1)
	assert.Equal(t, "avada_status", m.items[m.visible[0]].Integration.Status)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Len(t, m.visible, 3)
}

func TestModel_ConfirmCanGoBack(t *testing.T) {
	m := press(t, NewModel(testItems()), tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ModeConfirm, m.mode)

	m = press(t, m, runes("n"))
	assert.Equal(t, ModeList, m.mode)
	assert.Equal(t, 1, m.pending())
}
