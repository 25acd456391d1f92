package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joacominatel/dbnav/internal/session"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m.submit(session.Quit{})
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	// While an operation runs only cancel and quit apply.
	if m.state.Busy() {
		if key == "esc" {
			return m.submit(session.Cancel{})
		}
		return m, nil
	}

	switch m.state.Screen {
	case session.ScreenSelectBackend, session.ScreenSelectDatabase, session.ScreenListTables:
		return m.pickerKey(msg)
	case session.ScreenInputConnection:
		return m.formKey(msg)
	case session.ScreenDescribeTable:
		return m.describeKey(msg)
	case session.ScreenQueryResult:
		return m.queryKey(msg)
	case session.ScreenError:
		switch key {
		case "enter", "esc", " ":
			return m.submit(session.Back{})
		case "ctrl+d":
			return m.submit(session.Disconnect{})
		case "q":
			return m.submit(session.Quit{})
		}
	}
	return m, nil
}

func (m Model) pickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.Filtering() {
		return m.forward(msg)
	}
	switch msg.String() {
	case "q":
		return m.submit(session.Quit{})
	case "?":
		m.showHelp = true
		return m, nil
	case "esc", "backspace":
		return m.submit(session.Back{})
	case "ctrl+d":
		return m.submit(session.Disconnect{})
	}
	if m.state.Screen == session.ScreenListTables {
		switch msg.String() {
		case "r", "ctrl+r":
			return m.submit(session.Refresh{})
		case "e", ":":
			return m.submit(session.OpenQuery{})
		}
	}
	return m.forward(msg)
}

func (m Model) formKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.submit(session.Back{})
	case "ctrl+p":
		cmd := m.nextProfile()
		return m, cmd
	}
	return m.forward(msg)
}

func (m Model) describeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.submit(session.Quit{})
	case "?":
		m.showHelp = true
		return m, nil
	case "esc", "backspace":
		return m.submit(session.Back{})
	case "e", ":":
		return m.submit(session.OpenQuery{})
	case "ctrl+d":
		return m.submit(session.Disconnect{})
	}
	return m.forward(msg)
}

func (m Model) queryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		if m.editorFocused && m.editor.CompletionActive() {
			return m.forward(msg)
		}
		if m.editorFocused && !m.results.Result().HasRows() {
			return m.forward(msg)
		}
		m.focusEditor(!m.editorFocused)
		return m, nil
	case "shift+tab":
		m.focusEditor(!m.editorFocused)
		return m, nil
	case "esc":
		if m.editorFocused && m.editor.CompletionActive() {
			return m.forward(msg)
		}
		return m.submit(session.Back{})
	case "ctrl+d":
		return m.submit(session.Disconnect{})
	}
	if !m.editorFocused {
		switch msg.String() {
		case "q":
			return m.submit(session.Quit{})
		case "?":
			m.showHelp = true
			return m, nil
		}
	}
	return m.forward(msg)
}

// forward passes msg to the component that owns the current screen.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state.Screen {
	case session.ScreenSelectBackend, session.ScreenSelectDatabase, session.ScreenListTables:
		m.picker, cmd = m.picker.Update(msg)
	case session.ScreenInputConnection:
		m.form, cmd = m.form.Update(msg)
	case session.ScreenDescribeTable:
		m.describe, cmd = m.describe.Update(msg)
	case session.ScreenQueryResult:
		if m.editorFocused {
			m.editor, cmd = m.editor.Update(msg)
		} else {
			m.results, cmd = m.results.Update(msg)
		}
	}
	return m, cmd
}

func hints(s session.State) string {
	if s.Busy() {
		return "Esc: Cancel │ Ctrl+C: Quit"
	}
	switch s.Screen {
	case session.ScreenSelectBackend:
		return "Enter: Choose │ /: Filter │ q: Quit"
	case session.ScreenInputConnection:
		return "Tab: Next field │ Enter: Connect │ Ctrl+U: URL │ Ctrl+P: Profile │ Esc: Back"
	case session.ScreenSelectDatabase:
		return "Enter: Open │ /: Filter │ Esc: Disconnect │ q: Quit"
	case session.ScreenListTables:
		return "Enter: Describe │ e: Query │ r: Refresh │ Esc: Back │ ?: Help"
	case session.ScreenDescribeTable:
		return "e: Query │ y: Copy │ Esc: Back │ ?: Help"
	case session.ScreenQueryResult:
		return "Ctrl+E: Run │ Tab: Switch pane │ Esc: Back"
	case session.ScreenError:
		return "Enter: Continue │ Ctrl+D: Disconnect │ q: Quit"
	}
	return ""
}
