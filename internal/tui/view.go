package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/dbnav/internal/session"
	"github.com/joacominatel/dbnav/internal/tui/theme"
)

// View renders the entire application.
func (m Model) View() string {
	if m.state.Done() {
		return ""
	}
	if m.showHelp {
		return m.viewHelp()
	}

	var body string
	switch m.state.Screen {
	case session.ScreenSelectBackend:
		body = m.centered(lipgloss.JoinVertical(lipgloss.Left, banner(), "", m.picker.View()))
	case session.ScreenInputConnection:
		body = m.centered(m.form.View())
	case session.ScreenConnecting:
		body = m.centered(theme.StyleMuted.Render("Connecting to " + m.state.Config.String() + " ..."))
	case session.ScreenSelectDatabase, session.ScreenListTables:
		body = m.framed(m.picker.View(), m.height-1)
	case session.ScreenDescribeTable:
		body = m.framed(m.describe.View(), m.height-1)
	case session.ScreenQueryResult:
		body = m.viewQuery()
	case session.ScreenError:
		body = m.centered(m.viewError())
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusbar.View())
}

func banner() string {
	title := lipgloss.NewStyle().Foreground(theme.ColorPrimary).Bold(true).Render("dbnav")
	return title + "  " + theme.StyleMuted.Render("browse PostgreSQL and MySQL from the terminal")
}

// centered places content in the area above the status bar.
func (m Model) centered(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) framed(content string, height int) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return theme.StyleActiveBorder.Width(m.width - 2).Height(height - 2).Render(content)
}

func (m Model) viewQuery() string {
	if m.width == 0 || m.height == 0 {
		return m.editor.View() + "\n" + m.results.View()
	}
	avail := m.height - 1
	editorHeight := max(avail*40/100, 5)

	editorBorder, resultsBorder := theme.StyleBorder, theme.StyleActiveBorder
	if m.editorFocused {
		editorBorder, resultsBorder = theme.StyleActiveBorder, theme.StyleBorder
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		editorBorder.Width(m.width-2).Height(editorHeight).Render(m.editor.View()),
		resultsBorder.Width(m.width-2).Height(avail-editorHeight-4).Render(m.results.View()),
	)
}

func (m Model) viewError() string {
	width := 60
	if m.width > 0 {
		width = min(m.width-4, 80)
	}
	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorError).
		Padding(1, 2).
		Width(width)
	return box.Render(lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleError.Bold(true).Render("Error"),
		"",
		m.state.ErrorMessage(),
		"",
		theme.StyleMuted.Render("Enter: continue"),
	))
}

func (m Model) viewHelp() string {
	sectionStyle := lipgloss.NewStyle().Foreground(theme.ColorHighlight).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(16)
	descStyle := lipgloss.NewStyle().Foreground(theme.ColorMuted)

	line := func(k, d string) string {
		return keyStyle.Render("  "+k) + descStyle.Render(d)
	}

	help := lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleTitle.Render("dbnav - Keyboard Shortcuts"),
		"",
		sectionStyle.Render("Global"),
		line("Ctrl+C", "Quit from anywhere"),
		line("Esc", "Back, or cancel a running operation"),
		line("Ctrl+D", "Disconnect"),
		line("?", "Toggle this help"),
		"",
		sectionStyle.Render("Lists"),
		line("↑/k ↓/j", "Navigate"),
		line("Enter", "Choose"),
		line("/", "Filter"),
		line("r", "Refresh tables"),
		line("e", "Open the query editor"),
		"",
		sectionStyle.Render("Connection form"),
		line("Tab / Enter", "Next field, connect on the last one"),
		line("Ctrl+U", "Switch to a connection URL"),
		line("Ctrl+P", "Fill from the next profile"),
		"",
		sectionStyle.Render("Editor"),
		line("Ctrl+E / F5", "Run statement"),
		line("Ctrl+P / Ctrl+N", "History"),
		line("Ctrl+K", "Clear"),
		line("Ctrl+L", "Uppercase keywords"),
		line("Tab", "Complete table name, or switch pane"),
		"",
		sectionStyle.Render("Results"),
		line("Arrows hjkl", "Move the cell cursor"),
		line("y / Y / T", "Copy cell, row as CSV, row as text"),
		line("f", "Filter by the cell value"),
		line("x", "Export to CSV"),
		"",
		theme.StyleMuted.Render("Press any key to close"),
	)

	return m.centered(help)
}
