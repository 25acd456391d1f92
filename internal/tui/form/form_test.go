package form

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joacominatel/dbnav/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(m Model, t tea.KeyType) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: t})
}

func TestFieldsAndSubmit(t *testing.T) {
	m := New()
	m.Reset(database.KindMySQL, database.Form{})

	m = typeText(m, "db.local")
	m, _ = press(m, tea.KeyTab)
	assert.Equal(t, FieldPort, m.Focused())
	m = typeText(m, "3307")
	m, _ = press(m, tea.KeyEnter)
	m = typeText(m, "app")
	m, _ = press(m, tea.KeyEnter)
	m = typeText(m, "secret")
	m, _ = press(m, tea.KeyEnter)
	m = typeText(m, "shop")
	require.Equal(t, FieldDatabase, m.Focused())

	_, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, SubmitMsg{Form: database.Form{
		Host: "db.local", Port: "3307", Username: "app", Password: "secret", Database: "shop",
	}}, cmd())
	assert.NotContains(t, m.View(), "secret")
}

func TestSQLiteHasOnlyPath(t *testing.T) {
	m := New()
	m.Reset(database.KindSQLite, database.Form{})
	m = typeText(m, "/tmp/app.db")

	_, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, SubmitMsg{Form: database.Form{Host: "/tmp/app.db"}}, cmd())
	assert.Contains(t, m.View(), "Path")
}

func TestURLMode(t *testing.T) {
	m := New()
	m.Reset(database.KindPostgres, database.Form{})

	m, _ = press(m, tea.KeyCtrlU)
	require.True(t, m.URLMode())
	m = typeText(m, "postgres://app@db/shop")

	_, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, SubmitTargetMsg{Target: "postgres://app@db/shop"}, cmd())
}

func TestNotice(t *testing.T) {
	m := New()
	m.SetNotice("invalid port: must be between 1 and 65535")
	assert.Contains(t, m.View(), "invalid port")
}
