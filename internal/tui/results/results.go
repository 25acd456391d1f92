package results

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/dbnav/internal/database"
	"github.com/joacominatel/dbnav/internal/render"
	"github.com/joacominatel/dbnav/internal/tui/theme"
)

const maxColWidth = 40

// Model is the grid component shared by query results and table
// descriptions.
type Model struct {
	title     string
	result    *database.QueryResult
	errText   string
	source    string // table the rows came from, for generated SQL
	width     int
	height    int
	focused   bool
	cursorX   int
	cursorY   int
	scrollY   int
	colOffset int
	colWidths []int
}

// New creates an empty grid.
func New(title string) Model {
	return Model{title: title}
}

// SetTitle replaces the heading.
func (m *Model) SetTitle(title string) {
	m.title = title
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

// Focused returns whether the grid has focus.
func (m Model) Focused() bool {
	return m.focused
}

// Result returns the displayed result, if any.
func (m Model) Result() *database.QueryResult {
	return m.result
}

// SetResult shows r. The query is used to guess the source table for
// generated filter statements.
func (m *Model) SetResult(r *database.QueryResult, query string) {
	if r == m.result && m.errText == "" {
		return
	}
	m.result = r
	m.errText = ""
	m.source = extractTableName(query)
	m.cursorX, m.cursorY, m.scrollY, m.colOffset = 0, 0, 0, 0
	m.calculateColumnWidths()
}

// SetColumns shows a table description.
func (m *Model) SetColumns(cols []database.Column) {
	r := &database.QueryResult{Columns: render.ColumnHeaders}
	for _, c := range cols {
		r.Rows = append(r.Rows, render.ColumnRow(c))
	}
	m.SetResult(r, "")
}

// SetError shows a failure in place of the result.
func (m *Model) SetError(msg string) {
	m.errText = msg
	m.result = nil
	m.colWidths = nil
}

// Clear empties the grid.
func (m *Model) Clear() {
	m.result = nil
	m.errText = ""
	m.colWidths = nil
}

func (m *Model) calculateColumnWidths() {
	if !m.result.HasRows() {
		m.colWidths = nil
		return
	}

	m.colWidths = make([]int, len(m.result.Columns))

	// Display width, not byte length
	for i, col := range m.result.Columns {
		m.colWidths[i] = lipgloss.Width(col)
	}
	for _, row := range m.result.Rows {
		for i, cell := range row {
			w := lipgloss.Width(cell)
			if i < len(m.colWidths) && w > m.colWidths[i] {
				m.colWidths[i] = w
			}
		}
	}
	for i := range m.colWidths {
		m.colWidths[i] = min(max(m.colWidths[i], 1), maxColWidth)
	}
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles grid navigation and actions.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused || !m.result.HasRows() {
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	rows := len(m.result.Rows)
	switch key.String() {
	case "up", "k":
		if m.cursorY > 0 {
			m.cursorY--
		}
	case "down", "j":
		if m.cursorY < rows-1 {
			m.cursorY++
		}
	case "left", "h":
		if m.cursorX > 0 {
			m.cursorX--
		}
	case "right", "l":
		if m.cursorX < len(m.result.Columns)-1 {
			m.cursorX++
		}
	case "pgup":
		m.cursorY = max(0, m.cursorY-m.pageSize())
	case "pgdown":
		m.cursorY = min(max(0, rows-1), m.cursorY+m.pageSize())
	case "home":
		m.cursorX = 0
	case "end":
		m.cursorX = len(m.result.Columns) - 1
	case "y":
		return m, m.copyCell()
	case "Y":
		return m, m.copyRowCSV()
	case "T":
		return m, m.copyRowText()
	case "f":
		return m, m.filterByValue()
	case "x":
		return m, m.exportCSVCmd()
	}
	m.keepCursorVisible()
	return m, nil
}

func (m Model) pageSize() int {
	return max(1, m.visibleRows()/2)
}

func (m Model) visibleRows() int {
	return max(1, m.height-4)
}

func (m *Model) keepCursorVisible() {
	if m.cursorY < m.scrollY {
		m.scrollY = m.cursorY
	}
	if vis := m.visibleRows(); m.cursorY >= m.scrollY+vis {
		m.scrollY = m.cursorY - vis + 1
	}
	if m.cursorX < m.colOffset {
		m.colOffset = m.cursorX
	}
	for m.colOffset < m.cursorX && m.spanWidth(m.colOffset, m.cursorX) > m.width-4 {
		m.colOffset++
	}
}

// spanWidth is the rendered width of columns from..to inclusive.
func (m Model) spanWidth(from, to int) int {
	w := 0
	for i := from; i <= to && i < len(m.colWidths); i++ {
		w += m.colWidths[i] + 3
	}
	return w
}

// View renders the grid.
func (m Model) View() string {
	title := theme.StyleTitle.Render(m.title)

	if m.errText != "" {
		return title + "\n" + theme.StyleError.Render("  "+m.errText)
	}
	if m.result == nil {
		return title + "\n" + theme.StyleMuted.Render("  Execute a query to see results")
	}

	header := title + "  " + theme.StyleMuted.Render(render.Summary(m.result))
	if !m.result.HasRows() {
		return header + "\n" + theme.StyleSuccess.Render("  Statement executed successfully")
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.renderRow(m.result.Columns, -1))
	b.WriteString("\n")
	b.WriteString(m.renderSeparator())

	end := min(len(m.result.Rows), m.scrollY+m.visibleRows())
	for i := m.scrollY; i < end; i++ {
		b.WriteString("\n")
		b.WriteString(m.renderRow(m.result.Rows[i], i))
	}
	return b.String()
}

// renderRow renders cells from colOffset on. row is -1 for the header.
func (m Model) renderRow(cells []string, row int) string {
	var parts []string
	used := 2
	for i := m.colOffset; i < len(cells) && i < len(m.colWidths); i++ {
		width := m.colWidths[i]
		if used+width > m.width && len(parts) > 0 {
			break
		}
		used += width + 3

		display := fit(cells[i], width)
		switch {
		case row < 0:
			display = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorPrimary).Render(display)
		case m.focused && row == m.cursorY && i == m.cursorX:
			display = lipgloss.NewStyle().Reverse(true).Render(display)
		case row >= 0 && m.result.IsNull(row, i):
			display = theme.StyleMuted.Render(display)
		}
		parts = append(parts, display)
	}
	return "  " + strings.Join(parts, " │ ")
}

// fit truncates or pads s to exactly width display cells.
func fit(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", "↵")
	if lipgloss.Width(s) > width {
		runes := []rune(s)
		for len(runes) > 0 && lipgloss.Width(string(runes)) >= width {
			runes = runes[:len(runes)-1]
		}
		s = string(runes) + "…"
	}
	if pad := width - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

func (m Model) renderSeparator() string {
	var parts []string
	used := 2
	for i := m.colOffset; i < len(m.colWidths); i++ {
		if used+m.colWidths[i] > m.width && len(parts) > 0 {
			break
		}
		used += m.colWidths[i] + 3
		parts = append(parts, strings.Repeat("─", m.colWidths[i]))
	}
	return "  " + lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Join(parts, "─┼─"))
}
