package statusbar

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/dbnav/internal/tui/theme"
)

// Model is the status bar component.
type Model struct {
	width     int
	connected bool
	target    string
	screen    string
	busy      bool
	message   string
	hints     string
	spinner   spinner.Model
}

// New creates a new status bar model.
func New() Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorPrimary)
	return Model{spinner: s}
}

// SetWidth updates the component width.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// SetConnection updates the connection indicator. target never contains a
// password.
func (m *Model) SetConnection(connected bool, target string) {
	m.connected = connected
	m.target = target
}

// SetScreen updates the displayed screen name.
func (m *Model) SetScreen(name string) {
	m.screen = name
}

// SetBusy toggles the spinner.
func (m *Model) SetBusy(b bool) {
	m.busy = b
}

// SetMessage sets a temporary status message.
func (m *Model) SetMessage(msg string) {
	m.message = msg
}

// SetHints sets the key hints shown when there is no message.
func (m *Model) SetHints(h string) {
	m.hints = h
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update advances the spinner.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok {
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// View renders the status bar.
func (m Model) View() string {
	style := theme.StyleStatusBar.Width(m.width)

	var conn string
	if m.connected {
		conn = lipgloss.NewStyle().Foreground(theme.ColorSuccess).Render("●") + " " + m.target
	} else {
		conn = lipgloss.NewStyle().Foreground(theme.ColorError).Render("●") + " disconnected"
	}
	if m.screen != "" {
		conn += theme.StyleMuted.Render(" │ " + m.screen)
	}
	if m.busy {
		conn = m.spinner.View() + " " + conn
	}

	right := m.hints
	if m.message != "" {
		right = m.message
	}

	padding := m.width - lipgloss.Width(conn) - lipgloss.Width(right) - 4
	if padding < 1 {
		padding = 1
	}
	return style.Render(conn + strings.Repeat(" ", padding) + right)
}
