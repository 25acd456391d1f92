// Package picker is a scrollable single-choice list.
package picker

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/dbnav/internal/tui/theme"
)

// Item is one choice. Value is what gets submitted; Label is what is shown.
type Item struct {
	Value  string
	Label  string
	Detail string
}

// ChosenMsg is sent when the user picks the item under the cursor.
type ChosenMsg struct {
	Value string
}

// Model is the picker component.
type Model struct {
	title   string
	items   []Item
	visible []int // indexes into items after filtering
	cursor  int
	width   int
	height  int
	focused bool

	filtering bool
	filter    string
	empty     string
}

// New creates an empty picker.
func New(title string) Model {
	return Model{title: title, empty: "Nothing to show", focused: true}
}

// SetTitle replaces the heading.
func (m *Model) SetTitle(title string) {
	m.title = title
}

// SetEmptyText sets the text shown when there are no items.
func (m *Model) SetEmptyText(s string) {
	m.empty = s
}

// SetItems replaces the items. The cursor stays on the same value when it is
// still present.
func (m *Model) SetItems(items []Item) {
	current, _ := m.Selected()
	m.items = items
	m.applyFilter()
	m.cursor = 0
	for i, idx := range m.visible {
		if m.items[idx].Value == current.Value {
			m.cursor = i
			break
		}
	}
}

// Items returns the full item list.
func (m Model) Items() []Item {
	return m.items
}

// Select moves the cursor to value, if present.
func (m *Model) Select(value string) {
	for i, idx := range m.visible {
		if m.items[idx].Value == value {
			m.cursor = i
			return
		}
	}
}

// Selected returns the item under the cursor.
func (m Model) Selected() (Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return Item{}, false
	}
	return m.items[m.visible[m.cursor]], true
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// Filtering reports whether the filter prompt is open and owns the keyboard.
func (m Model) Filtering() bool {
	return m.filtering
}

func (m *Model) applyFilter() {
	m.visible = nil
	needle := strings.ToLower(m.filter)
	for i, it := range m.items {
		if needle == "" || strings.Contains(strings.ToLower(it.label()), needle) {
			m.visible = append(m.visible, i)
		}
	}
	if m.cursor >= len(m.visible) {
		m.cursor = max(0, len(m.visible)-1)
	}
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles navigation keys. Enter emits ChosenMsg.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filtering {
		return m.updateFilter(key)
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(0, len(m.visible)-1)
	case "pgup":
		m.cursor = max(0, m.cursor-m.pageSize())
	case "pgdown":
		m.cursor = min(max(0, len(m.visible)-1), m.cursor+m.pageSize())
	case "/":
		m.filtering = true
	case "enter", "right", "l":
		if it, ok := m.Selected(); ok {
			return m, func() tea.Msg { return ChosenMsg{Value: it.Value} }
		}
	}
	return m, nil
}

func (m Model) updateFilter(key tea.KeyMsg) (Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.filter = ""
	case tea.KeyEnter:
		m.filtering = false
	case tea.KeyBackspace:
		if r := []rune(m.filter); len(r) > 0 {
			m.filter = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.filter += string(key.Runes)
	default:
		return m, nil
	}
	m.applyFilter()
	return m, nil
}

func (m Model) pageSize() int {
	return max(1, m.height/2)
}

// View renders the picker.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.StyleTitle.Render(m.title))
	if m.filter != "" || m.filtering {
		b.WriteString(theme.StyleMuted.Render("  /" + m.filter))
	}
	b.WriteString("\n")

	if len(m.visible) == 0 {
		b.WriteString(theme.StyleMuted.Render("  " + m.empty))
		return b.String()
	}

	visibleHeight := m.height - 2
	if visibleHeight < 1 {
		visibleHeight = len(m.visible)
	}

	// Scroll offset to keep cursor visible
	offset := 0
	if m.cursor >= visibleHeight {
		offset = m.cursor - visibleHeight + 1
	}

	for i := offset; i < len(m.visible) && i < offset+visibleHeight; i++ {
		b.WriteString(m.renderItem(m.items[m.visible[i]], i == m.cursor))
		if i < len(m.visible)-1 && i < offset+visibleHeight-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (it Item) label() string {
	if it.Label == "" {
		return it.Value
	}
	return it.Label
}

func (m Model) renderItem(it Item, selected bool) string {
	label := it.label()

	prefix := "  "
	if selected {
		prefix = "> "
	}
	line := prefix + label
	if selected {
		line = theme.StyleSelected.Render(line)
	}
	if it.Detail != "" {
		line += " " + lipgloss.NewStyle().Foreground(theme.ColorMuted).Render(it.Detail)
	}

	// Truncate to width
	if m.width > 4 && lipgloss.Width(line) > m.width-2 {
		line = lipgloss.NewStyle().MaxWidth(m.width - 2).Render(line)
	}
	return line
}
