package picker

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func items() []Item {
	return []Item{{Value: "public.orders"}, {Value: "public.users"}, {Value: "audit.log"}}
}

func TestChoose(t *testing.T) {
	m := New("Tables")
	m.SetItems(items())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, ChosenMsg{Value: "public.users"}, cmd())
}

func TestFilter(t *testing.T) {
	m := New("Tables")
	m.SetItems(items())

	m, _ = m.Update(runes("/"))
	require.True(t, m.Filtering())
	for _, r := range "log" {
		m, _ = m.Update(runes(string(r)))
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Filtering())

	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "audit.log", sel.Value)
	assert.Contains(t, m.View(), "/log")
}

func TestSetItems_KeepsCursorOnValue(t *testing.T) {
	m := New("Tables")
	m.SetItems(items())
	m.Select("audit.log")

	m.SetItems(append([]Item{{Value: "a.new"}}, items()...))
	sel, _ := m.Selected()
	assert.Equal(t, "audit.log", sel.Value)
}

func TestEmpty(t *testing.T) {
	m := New("Databases")
	m.SetEmptyText("No databases")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "No databases")
}
