package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/joacominatel/dbnav/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *database.QueryResult {
	return &database.QueryResult{
		Columns:  []string{"id", "name"},
		Rows:     [][]string{{"1", "ada"}, {"2", "NULL"}},
		Tag:      "SELECT 2",
		Duration: 3 * time.Millisecond,
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "ada")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(2 rows in 3ms)")
}

func TestTable_NoRowSet(t *testing.T) {
	var buf bytes.Buffer
	r := &database.QueryResult{RowsAffected: 1, Tag: "INSERT 0 1", Duration: time.Millisecond}
	require.NoError(t, Table(&buf, r))
	assert.Equal(t, "(INSERT 0 1, 1 row affected in 1ms)\n", buf.String())
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	r := sampleResult()
	r.Rows = append(r.Rows, []string{"3", "a,b"})
	require.NoError(t, CSV(&buf, r))
	assert.Equal(t, "id,name\n1,ada\n2,NULL\n3,\"a,b\"\n", buf.String())

	buf.Reset()
	require.NoError(t, CSV(&buf, &database.QueryResult{Tag: "DELETE 0"}))
	assert.Empty(t, buf.String())
}

func TestResult_Markdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Result(&buf, sampleResult(), FormatMarkdown))
	assert.Contains(t, buf.String(), "| 1 | ada |")
}

func TestColumnRow(t *testing.T) {
	c := database.Column{
		Name:        "id",
		Type:        "integer",
		Default:     "nextval('users_id_seq'::regclass)",
		HasDefault:  true,
		Constraints: []database.Constraint{database.ConstraintPrimaryKey, database.ConstraintUnique},
		Ordinal:     0,
	}
	assert.Equal(t,
		[]string{"1", "id", "integer", "NO", "nextval('users_id_seq'::regclass)", "PRIMARY KEY, UNIQUE"},
		ColumnRow(c))

	c = database.Column{Name: "note", Type: "text", Nullable: true, Ordinal: 1}
	assert.Equal(t, []string{"2", "note", "text", "YES", "", ""}, ColumnRow(c))
}

func TestColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Columns(&buf, []database.Column{{Name: "email", Type: "varchar(255)"}}))
	assert.Contains(t, buf.String(), "varchar(255)")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"table": FormatTable, "CSV": FormatCSV, "markdown": FormatMarkdown, "md": FormatMarkdown} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "1 row in 0s", Summary(&database.QueryResult{Columns: []string{"x"}, Rows: [][]string{{"1"}}}))
	assert.Equal(t, "OK, 0 rows affected in 0s", Summary(&database.QueryResult{}))
}
