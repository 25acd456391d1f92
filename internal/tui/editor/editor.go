package editor

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/dbnav/internal/tui/theme"
)

// SubmitMsg is sent when the user runs the editor content.
type SubmitMsg struct {
	SQL string
}

// Model is the SQL editor component.
type Model struct {
	textarea textarea.Model
	width    int
	height   int
	focused  bool

	// Statements run this session, oldest first
	history []string
	histPos int

	complete completer
}

// New creates a new editor model.
func New() Model {
	ta := textarea.New()
	ta.Placeholder = "SELECT * FROM ..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Prompt = "│ "
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = theme.StyleMuted
	ta.BlurredStyle.Placeholder = theme.StyleMuted
	ta.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(theme.ColorPrimary)
	ta.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(theme.ColorBorder)

	return Model{textarea: ta}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.textarea.SetWidth(max(w-2, 10))
	m.textarea.SetHeight(max(h-2, 1))
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
	if f {
		m.textarea.Focus()
	} else {
		m.textarea.Blur()
	}
}

// Value returns the current editor content.
func (m Model) Value() string {
	return m.textarea.Value()
}

// SetQuery replaces the editor content.
func (m *Model) SetQuery(query string) {
	m.textarea.SetValue(query)
	m.complete.reset()
}

// SetTableNames sets the table names offered after FROM, JOIN and friends.
func (m *Model) SetTableNames(names []string) {
	m.complete.tables = names
}

// CompletionActive reports whether Tab is cycling completion candidates.
func (m Model) CompletionActive() bool {
	return m.complete.active
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the editor.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+e", "f5":
		sql := strings.TrimSpace(m.textarea.Value())
		if sql == "" {
			return m, nil
		}
		m.complete.reset()
		m.remember(sql)
		return m, func() tea.Msg { return SubmitMsg{SQL: sql} }

	case "ctrl+p":
		m.recall(-1)
		return m, nil

	case "ctrl+n":
		m.recall(1)
		return m, nil

	case "ctrl+k":
		m.textarea.Reset()
		m.complete.reset()
		return m, nil

	case "ctrl+l":
		m.textarea.SetValue(upperKeywords(m.textarea.Value()))
		return m, nil

	case "tab":
		if m.complete.active {
			m.complete.next()
		} else if !m.complete.start(m.textarea.Value()) {
			return m, nil
		}
		m.textarea.SetValue(replaceLastWord(m.textarea.Value(), m.complete.current()))
		return m, nil

	case "esc":
		if m.complete.active {
			m.complete.reset()
		}
		return m, nil
	}

	m.complete.reset()
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *Model) remember(sql string) {
	if n := len(m.history); n == 0 || m.history[n-1] != sql {
		m.history = append(m.history, sql)
	}
	m.histPos = len(m.history)
}

// recall steps through history; stepping past the newest entry clears the
// editor.
func (m *Model) recall(delta int) {
	if len(m.history) == 0 {
		return
	}
	m.histPos = min(max(m.histPos+delta, 0), len(m.history))
	m.complete.reset()
	if m.histPos == len(m.history) {
		m.textarea.Reset()
		return
	}
	m.textarea.SetValue(m.history[m.histPos])
}

// View renders the editor.
func (m Model) View() string {
	title := theme.StyleTitle.Render("SQL") +
		theme.StyleMuted.Render("  Ctrl+E run · Ctrl+P/N history · Ctrl+L format")

	view := title + "\n" + m.textarea.View()
	if c := m.complete; c.active && len(c.candidates) > 1 {
		shown := make([]string, 0, min(len(c.candidates), 8))
		for i, cand := range c.candidates {
			if i == 8 {
				shown = append(shown, theme.StyleMuted.Render("…"))
				break
			}
			if i == c.index {
				shown = append(shown, theme.StyleSelected.Render(cand))
			} else {
				shown = append(shown, theme.StyleMuted.Render(cand))
			}
		}
		view += "\n " + theme.StyleMuted.Render("Tab: ") + strings.Join(shown, " │ ")
	}
	return view
}
