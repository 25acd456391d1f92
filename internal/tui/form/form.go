// Package form is the connection form: one input per connection field, or a
// single connection URL.
package form

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/dbnav/internal/database"
	"github.com/joacominatel/dbnav/internal/tui/theme"
)

// Field indexes the form inputs.
type Field int

const (
	FieldHost Field = iota
	FieldPort
	FieldUser
	FieldPassword
	FieldDatabase
	fieldCount
)

// SubmitMsg carries the filled-in form.
type SubmitMsg struct {
	Form database.Form
}

// SubmitTargetMsg carries a one-line connection target such as
// postgres://user@host:5432/db.
type SubmitTargetMsg struct {
	Target string
}

// Model is the connection form component.
type Model struct {
	kind    database.Kind
	inputs  [fieldCount]textinput.Model
	target  textinput.Model
	urlMode bool
	focus   Field
	width   int
	notice  string
	profile string
}

// New creates a form for the postgres backend.
func New() Model {
	m := Model{}
	for i := range m.inputs {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 40
		ti.PromptStyle = lipgloss.NewStyle().Foreground(theme.ColorPrimary)
		m.inputs[i] = ti
	}
	m.inputs[FieldPassword].EchoMode = textinput.EchoPassword
	m.inputs[FieldPassword].EchoCharacter = '•'
	m.inputs[FieldPort].CharLimit = 5

	m.target = textinput.New()
	m.target.CharLimit = 500
	m.target.Width = 60

	m.Reset(database.KindPostgres, database.Form{})
	return m
}

// Reset prepares the form for kind and pre-fills it with f.
func (m *Model) Reset(kind database.Kind, f database.Form) {
	m.kind = kind
	m.urlMode = false
	m.profile = ""
	m.notice = ""
	m.SetForm(f)

	port := ""
	if p := kind.DefaultPort(); p > 0 {
		port = strconv.Itoa(p)
	}
	m.inputs[FieldHost].Placeholder = "localhost"
	if kind == database.KindSQLite {
		m.inputs[FieldHost].Placeholder = "/path/to/file.db"
	}
	m.inputs[FieldPort].Placeholder = port
	m.inputs[FieldUser].Placeholder = "username"
	m.inputs[FieldPassword].Placeholder = "password"
	m.inputs[FieldDatabase].Placeholder = kind.DefaultDatabase()
	m.target.Placeholder = kind.String() + "://user:password@localhost/" + kind.DefaultDatabase()
	if kind == database.KindSQLite {
		m.target.Placeholder = "/path/to/file.db"
	}
	m.setFocus(FieldHost)
}

// SetForm fills the inputs from f.
func (m *Model) SetForm(f database.Form) {
	m.inputs[FieldHost].SetValue(f.Host)
	m.inputs[FieldPort].SetValue(f.Port)
	m.inputs[FieldUser].SetValue(f.Username)
	m.inputs[FieldPassword].SetValue(f.Password)
	m.inputs[FieldDatabase].SetValue(f.Database)
}

// SetProfile shows the name of the profile the form was filled from.
func (m *Model) SetProfile(name string) {
	m.profile = name
}

// SetNotice shows a validation message under the form.
func (m *Model) SetNotice(s string) {
	m.notice = s
}

// SetWidth updates the component width.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// Value returns the current form content.
func (m Model) Value() database.Form {
	f := database.Form{Host: strings.TrimSpace(m.inputs[FieldHost].Value())}
	if m.kind == database.KindSQLite {
		return f
	}
	f.Port = strings.TrimSpace(m.inputs[FieldPort].Value())
	f.Username = strings.TrimSpace(m.inputs[FieldUser].Value())
	f.Password = m.inputs[FieldPassword].Value()
	f.Database = strings.TrimSpace(m.inputs[FieldDatabase].Value())
	return f
}

// URLMode reports whether the single-line target input is shown.
func (m Model) URLMode() bool {
	return m.urlMode
}

// Focused returns the focused field.
func (m Model) Focused() Field {
	return m.focus
}

func (m Model) fields() []Field {
	if m.kind == database.KindSQLite {
		return []Field{FieldHost}
	}
	return []Field{FieldHost, FieldPort, FieldUser, FieldPassword, FieldDatabase}
}

func (m *Model) setFocus(f Field) {
	m.focus = f
	for i := range m.inputs {
		if Field(i) == f && !m.urlMode {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	if m.urlMode {
		m.target.Focus()
	} else {
		m.target.Blur()
	}
}

func (m *Model) move(delta int) {
	fields := m.fields()
	pos := 0
	for i, f := range fields {
		if f == m.focus {
			pos = i
		}
	}
	pos = (pos + delta + len(fields)) % len(fields)
	m.setFocus(fields[pos])
}

func (m Model) last() bool {
	fields := m.fields()
	return m.focus == fields[len(fields)-1]
}

// Init returns the cursor blink command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles form keys. Enter on the last field (or ctrl+s anywhere)
// submits.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+u":
			m.urlMode = !m.urlMode
			m.notice = ""
			m.setFocus(m.focus)
			return m, nil
		case "ctrl+s":
			return m, m.submit()
		case "enter":
			if m.urlMode || m.last() {
				return m, m.submit()
			}
			m.move(1)
			return m, nil
		case "tab", "down":
			if !m.urlMode {
				m.move(1)
			}
			return m, nil
		case "shift+tab", "up":
			if !m.urlMode {
				m.move(-1)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.urlMode {
		m.target, cmd = m.target.Update(msg)
	} else {
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	}
	return m, cmd
}

func (m Model) submit() tea.Cmd {
	if m.urlMode {
		target := strings.TrimSpace(m.target.Value())
		return func() tea.Msg { return SubmitTargetMsg{Target: target} }
	}
	f := m.Value()
	return func() tea.Msg { return SubmitMsg{Form: f} }
}

var labels = [fieldCount]string{"Host", "Port", "User", "Password", "Database"}

// View renders the form.
func (m Model) View() string {
	title := "Connect to " + m.kind.Label()
	if m.profile != "" {
		title += theme.StyleMuted.Render("  profile: " + m.profile)
	}

	lines := []string{theme.StyleTitle.Render(title), ""}

	if m.urlMode {
		lines = append(lines, "  "+theme.StyleMuted.Render("Connection URL"), "  "+m.target.View())
	} else {
		for _, f := range m.fields() {
			label := labels[f]
			if f == FieldHost && m.kind == database.KindSQLite {
				label = "Path"
			}
			style := theme.StyleMuted
			if f == m.focus {
				style = lipgloss.NewStyle().Foreground(theme.ColorPrimary).Bold(true)
			}
			lines = append(lines, "  "+style.Width(10).Render(label)+m.inputs[f].View())
		}
	}

	if m.notice != "" {
		lines = append(lines, "", "  "+theme.StyleNotice.Render(m.notice))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
