// Package render writes query results and table descriptions as plain text
// for non-interactive output and file export.
package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joacominatel/dbnav/internal/database"
)

// Format selects an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatCSV:
		return f, nil
	case FormatMarkdown, "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table, csv or md)", s)
}

// Result writes r in the given format.
func Result(w io.Writer, r *database.QueryResult, format Format) error {
	switch format {
	case FormatCSV:
		return CSV(w, r)
	case FormatMarkdown:
		return markdown(w, r)
	default:
		return Table(w, r)
	}
}

// Table writes r as a boxed table followed by its summary line.
func Table(w io.Writer, r *database.QueryResult) error {
	if r.HasRows() {
		t := newTable(w)
		t.AppendHeader(header(r.Columns))
		for _, row := range r.Rows {
			t.AppendRow(cells(row))
		}
		t.Render()
	}
	_, err := fmt.Fprintf(w, "(%s)\n", Summary(r))
	return err
}

func markdown(w io.Writer, r *database.QueryResult) error {
	if !r.HasRows() {
		_, err := fmt.Fprintf(w, "(%s)\n", Summary(r))
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(header(r.Columns))
	for _, row := range r.Rows {
		t.AppendRow(cells(row))
	}
	t.RenderMarkdown()
	return nil
}

// CSV writes the header and every row of r. Statements without a row set
// produce no output.
func CSV(w io.Writer, r *database.QueryResult) error {
	if !r.HasRows() {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(r.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// Columns writes a table description, one line per column in ordinal order.
func Columns(w io.Writer, cols []database.Column) error {
	t := newTable(w)
	t.AppendHeader(header(ColumnHeaders))
	for _, c := range cols {
		t.AppendRow(cells(ColumnRow(c)))
	}
	t.Render()
	return nil
}

// ColumnHeaders are the headings of a table description.
var ColumnHeaders = []string{"#", "column", "type", "nullable", "default", "constraints"}

// ColumnRow renders one column of a table description. Positions are shown
// 1-based.
func ColumnRow(c database.Column) []string {
	nullable := "NO"
	if c.Nullable {
		nullable = "YES"
	}
	def := ""
	if c.HasDefault {
		def = c.Default
	}
	cons := make([]string, len(c.Constraints))
	for i, k := range c.Constraints {
		cons[i] = string(k)
	}
	return []string{
		fmt.Sprint(c.Ordinal + 1),
		c.Name,
		c.Type,
		nullable,
		def,
		strings.Join(cons, ", "),
	}
}

// Summary is a one-line description of a statement outcome, such as
// "3 rows in 4ms" or "UPDATE 2, 2 rows affected".
func Summary(r *database.QueryResult) string {
	d := r.Duration.Round(time.Millisecond)
	if d == 0 && r.Duration > 0 {
		d = r.Duration.Round(time.Microsecond)
	}
	if r.HasRows() {
		return fmt.Sprintf("%s in %s", plural(len(r.Rows), "row"), d)
	}
	tag := r.Tag
	if tag == "" {
		tag = "OK"
	}
	return fmt.Sprintf("%s, %s affected in %s", tag, plural(int(r.RowsAffected), "row"), d)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func header(cols []string) table.Row {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	return row
}

func cells(values []string) table.Row {
	row := make(table.Row, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
