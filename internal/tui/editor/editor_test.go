package editor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func focused() Model {
	m := New()
	m.SetSize(60, 10)
	m.SetFocused(true)
	return m
}

func ctrl(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestSubmit(t *testing.T) {
	m := focused()
	m.SetQuery("  select 1  ")

	_, cmd := m.Update(ctrl(tea.KeyCtrlE))
	require.NotNil(t, cmd)
	assert.Equal(t, SubmitMsg{SQL: "select 1"}, cmd())
}

func TestSubmit_EmptyIgnored(t *testing.T) {
	m := focused()
	_, cmd := m.Update(ctrl(tea.KeyCtrlE))
	assert.Nil(t, cmd)
}

func TestHistory(t *testing.T) {
	m := focused()
	for _, q := range []string{"select 1", "select 2"} {
		m.SetQuery(q)
		m, _ = m.Update(ctrl(tea.KeyCtrlE))
	}

	m, _ = m.Update(ctrl(tea.KeyCtrlP))
	assert.Equal(t, "select 2", m.Value())
	m, _ = m.Update(ctrl(tea.KeyCtrlP))
	assert.Equal(t, "select 1", m.Value())
	m, _ = m.Update(ctrl(tea.KeyCtrlP))
	assert.Equal(t, "select 1", m.Value(), "stops at the oldest entry")
	m, _ = m.Update(ctrl(tea.KeyCtrlN))
	m, _ = m.Update(ctrl(tea.KeyCtrlN))
	assert.Empty(t, m.Value())
}

func TestFormatShortcut(t *testing.T) {
	m := focused()
	m.SetQuery("select name from users where note = 'select me'")
	m, _ = m.Update(ctrl(tea.KeyCtrlL))
	assert.Equal(t, "SELECT name FROM users WHERE note = 'select me'", m.Value())
}

func TestTableCompletion(t *testing.T) {
	m := focused()
	m.SetTableNames([]string{"public.orders", "public.users", "public.user_roles"})
	m.SetQuery("SELECT * FROM public.us")

	m, _ = m.Update(ctrl(tea.KeyTab))
	assert.True(t, m.CompletionActive())
	assert.Equal(t, "SELECT * FROM public.users", m.Value())

	m, _ = m.Update(ctrl(tea.KeyTab))
	assert.Equal(t, "SELECT * FROM public.user_roles", m.Value())

	m, _ = m.Update(ctrl(tea.KeyEsc))
	assert.False(t, m.CompletionActive())
}

func TestUpperKeywords(t *testing.T) {
	cases := map[string]string{
		"select a from t":                       "SELECT a FROM t",
		"select 'it''s from' from t":            "SELECT 'it''s from' FROM t",
		"select \"order\" from t -- select all": "SELECT \"order\" FROM t -- select all",
		"select `from` from t":                  "SELECT `from` FROM t",
		"select selection from t":               "SELECT selection FROM t",
	}
	for in, want := range cases {
		assert.Equal(t, want, upperKeywords(in), in)
	}
}

func TestKeywordCompletion(t *testing.T) {
	m := focused()
	m.SetQuery("sel")
	m, _ = m.Update(ctrl(tea.KeyTab))
	assert.Equal(t, "SELECT", m.Value())
}
