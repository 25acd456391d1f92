package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joacominatel/dbnav/internal/database"
	"github.com/joacominatel/dbnav/internal/render"
)

// clipboardWrite is replaced in tests.
var clipboardWrite = clipboard.WriteAll

func notify(msg string) tea.Cmd {
	return func() tea.Msg { return StatusNotifyMsg{Message: msg} }
}

func (m Model) cellValue() (string, bool) {
	if !m.result.HasRows() || m.cursorY < 0 || m.cursorY >= len(m.result.Rows) {
		return "", false
	}
	row := m.result.Rows[m.cursorY]
	if m.cursorX < 0 || m.cursorX >= len(row) {
		return "", false
	}
	return row[m.cursorX], true
}

func (m Model) columnName() string {
	if m.result == nil || m.cursorX < 0 || m.cursorX >= len(m.result.Columns) {
		return ""
	}
	return m.result.Columns[m.cursorX]
}

func (m Model) currentRow() ([]string, bool) {
	if !m.result.HasRows() || m.cursorY < 0 || m.cursorY >= len(m.result.Rows) {
		return nil, false
	}
	return m.result.Rows[m.cursorY], true
}

// --- Copy ---

func (m Model) copyCell() tea.Cmd {
	val, ok := m.cellValue()
	if !ok {
		return notify("Nothing to copy")
	}
	if err := clipboardWrite(val); err != nil {
		return notify("Copy failed: " + err.Error())
	}
	return notify("Copied: " + truncateStatus(val, 40))
}

func (m Model) copyRowCSV() tea.Cmd {
	row, ok := m.currentRow()
	if !ok {
		return notify("No row to copy")
	}
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(m.result.Columns)
	_ = w.Write(row)
	w.Flush()
	if err := clipboardWrite(b.String()); err != nil {
		return notify("Copy failed: " + err.Error())
	}
	return notify("Copied row as CSV")
}

func (m Model) copyRowText() tea.Cmd {
	row, ok := m.currentRow()
	if !ok {
		return notify("No row to copy")
	}
	if err := clipboardWrite(strings.Join(row, "\t")); err != nil {
		return notify("Copy failed: " + err.Error())
	}
	return notify("Copied row as text")
}

// --- Filter ---

func (m Model) filterByValue() tea.Cmd {
	col := m.columnName()
	val, ok := m.cellValue()
	if col == "" || !ok || m.source == "" {
		return notify("Cannot filter: no source table")
	}

	condition := fmt.Sprintf("%s = '%s'", col, strings.ReplaceAll(val, "'", "''"))
	if m.result.IsNull(m.cursorY, m.cursorX) {
		condition = col + " IS NULL"
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s", m.source, condition)

	return func() tea.Msg {
		return SetEditorQueryMsg{Query: query}
	}
}

// --- Export ---

func (m Model) exportCSVCmd() tea.Cmd {
	result := m.result
	if !result.HasRows() {
		return notify("Nothing to export")
	}
	return func() tea.Msg {
		filename := fmt.Sprintf("dbnav_export_%s.csv", time.Now().Format("20060102_150405"))
		n, err := exportCSV(filename, result)
		if err != nil {
			return StatusNotifyMsg{Message: "Export failed: " + err.Error()}
		}
		return StatusNotifyMsg{Message: fmt.Sprintf("Exported %d rows to %s", n, filename)}
	}
}

func exportCSV(filename string, r *database.QueryResult) (int, error) {
	f, err := os.Create(filename)
	if err != nil {
		return 0, err
	}
	if err := render.CSV(f, r); err != nil {
		_ = f.Close()
		return 0, err
	}
	return len(r.Rows), f.Close()
}

// --- Helpers ---

// extractTableName returns the identifier after the first FROM, INTO or
// UPDATE, or "" when there is none.
func extractTableName(query string) string {
	tokens := strings.Fields(query)
	for i, tok := range tokens {
		switch strings.ToUpper(tok) {
		case "FROM", "INTO", "UPDATE":
			if i+1 < len(tokens) {
				name := tokens[i+1]
				if j := strings.IndexByte(name, '('); j >= 0 {
					name = name[:j]
				}
				if name = strings.TrimRight(name, ";,)"); name != "" {
					return name
				}
			}
		}
	}
	return ""
}

func truncateStatus(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
