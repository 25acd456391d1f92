// Package sqlite implements a preview database adapter for SQLite files.
// It covers the same operations as the server backends without any parity
// guarantee.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joacominatel/dbnav/internal/database"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Adapter opens SQLite database files.
type Adapter struct {
	log zerolog.Logger
}

// New creates a SQLite adapter.
func New(log zerolog.Logger) *Adapter {
	return &Adapter{log: log.With().Str("backend", "sqlite").Logger()}
}

// Kind implements database.Adapter.
func (a *Adapter) Kind() database.Kind {
	return database.KindSQLite
}

// Connect opens an existing database file. cfg.Host is the file path.
func (a *Adapter) Connect(ctx context.Context, cfg database.ConnectionConfig) (database.Conn, error) {
	if _, err := os.Stat(cfg.Host); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, database.NewConnectionError(database.ReasonUnknown, fmt.Sprintf("file %s does not exist", cfg.Host), err)
		}
		return nil, database.NewConnectionError(database.ReasonAuth, fmt.Sprintf("cannot access %s", cfg.Host), err)
	}

	db, err := sql.Open("sqlite", cfg.Host)
	if err != nil {
		return nil, mapConnectError(err)
	}
	db.SetMaxOpenConns(1)

	// Opening is lazy; reading the schema validates the file header.
	var n int
	if err := db.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master").Scan(&n); err != nil {
		_ = db.Close()
		return nil, mapConnectError(err)
	}

	name := cfg.Database
	if name == "" {
		name = database.KindSQLite.DefaultDatabase()
	}

	a.log.Info().Str("path", cfg.Host).Msg("opened")
	return &Conn{db: db, database: name, log: a.log}, nil
}

// Conn is an open SQLite database.
type Conn struct {
	db       *sql.DB
	database string
	log      zerolog.Logger
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ListDatabases returns the attached databases.
func (c *Conn) ListDatabases(ctx context.Context) ([]database.Database, error) {
	rows, err := c.db.QueryContext(ctx, "PRAGMA database_list")
	if err != nil {
		return nil, mapQueryError("list databases", err)
	}
	defer rows.Close()

	var dbs []database.Database
	for rows.Next() {
		var (
			seq  int
			name string
			file sql.NullString
		)
		if err := rows.Scan(&seq, &name, &file); err != nil {
			return nil, mapQueryError("scan database", err)
		}
		dbs = append(dbs, database.Database{Name: name})
	}
	return dbs, mapQueryError("list databases", rows.Err())
}

// ListTables returns user tables of an attached database.
func (c *Conn) ListTables(ctx context.Context, db database.Database) ([]database.Table, error) {
	name := db.Name
	if name == "" {
		name = c.database
	}

	q := fmt.Sprintf(`SELECT name FROM %s.sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%%'
		ORDER BY name`, quoteIdent(name))
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, mapQueryError("list tables", err)
	}
	defer rows.Close()

	var tables []database.Table
	for rows.Next() {
		t := database.Table{Database: name}
		if err := rows.Scan(&t.Name); err != nil {
			return nil, mapQueryError("scan table", err)
		}
		tables = append(tables, t)
	}
	return tables, mapQueryError("list tables", rows.Err())
}

// DescribeTable combines table_info, foreign_key_list and index_list.
func (c *Conn) DescribeTable(ctx context.Context, t database.Table) ([]database.Column, error) {
	schema := t.Database
	if t.Schema != "" {
		schema = t.Schema
	}
	if schema == "" {
		schema = c.database
	}
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("PRAGMA %s.table_info(%s)", quoteIdent(schema), quoteIdent(t.Name)))
	if err != nil {
		return nil, mapQueryError("describe table", err)
	}
	var columns []database.Column
	for rows.Next() {
		var (
			cid     int
			col     database.Column
			notNull int
			def     sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &def, &pk); err != nil {
			rows.Close()
			return nil, mapQueryError("scan column", err)
		}
		col.Nullable = notNull == 0 && pk == 0
		col.Default, col.HasDefault = def.String, def.Valid
		col.Ordinal = len(columns)
		if pk > 0 {
			col.Constraints = append(col.Constraints, database.ConstraintPrimaryKey)
		}
		columns = append(columns, col)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapQueryError("describe table", err)
	}
	if len(columns) == 0 {
		return nil, database.NewQueryError(fmt.Sprintf("table %s.%s does not exist", schema, t.Name), nil)
	}

	extra := make(map[string][]database.Constraint)

	fks, err := c.pragma(ctx, schema, "foreign_key_list", t.Name)
	if err != nil {
		return nil, err
	}
	for _, fk := range fks {
		name := database.FormatValue(fk["from"])
		extra[name] = append(extra[name], database.ConstraintForeignKey)
	}

	indexes, err := c.pragma(ctx, schema, "index_list", t.Name)
	if err != nil {
		return nil, err
	}
	for _, idx := range indexes {
		// origin "u" marks indexes created by a UNIQUE constraint.
		if database.FormatValue(idx["unique"]) != "1" || database.FormatValue(idx["origin"]) != "u" {
			continue
		}
		info, err := c.pragma(ctx, schema, "index_info", database.FormatValue(idx["name"]))
		if err != nil {
			return nil, err
		}
		for _, col := range info {
			name := database.FormatValue(col["name"])
			extra[name] = append(extra[name], database.ConstraintUnique)
		}
	}

	for i := range columns {
		cs := append(columns[i].Constraints, extra[columns[i].Name]...)
		columns[i].Constraints = database.NormalizeConstraints(cs)
	}
	return columns, nil
}

// pragma runs schema.pragma(arg) and returns its rows keyed by column name.
func (c *Conn) pragma(ctx context.Context, schema, pragma, arg string) ([]map[string]any, error) {
	q := fmt.Sprintf("PRAGMA %s.%s(%s)", quoteIdent(schema), pragma, quoteIdent(arg))
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, mapQueryError(pragma, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, mapQueryError(pragma, err)
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, mapQueryError(pragma, err)
		}
		row := make(map[string]any, len(names))
		for i, n := range names {
			row[n] = vals[i]
		}
		out = append(out, row)
	}
	return out, mapQueryError(pragma, rows.Err())
}

// ExecuteQuery runs the statement verbatim.
func (c *Conn) ExecuteQuery(ctx context.Context, query string) (*database.QueryResult, error) {
	start := time.Now()

	if !database.ReturnsRows(query) {
		res, err := c.db.ExecContext(ctx, query)
		if err != nil {
			return nil, mapQueryError("execute", err)
		}
		affected, _ := res.RowsAffected()
		return &database.QueryResult{
			RowsAffected: affected,
			Tag:          database.LeadingKeyword(query),
			Duration:     time.Since(start),
		}, nil
	}

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapQueryError("execute", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, mapQueryError("read columns", err)
	}

	vals := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	var (
		resultRows [][]string
		nulls      [][]bool
	)
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, mapQueryError("read row", err)
		}
		row := make([]string, len(vals))
		isNull := make([]bool, len(vals))
		for i, v := range vals {
			row[i], isNull[i] = database.FormatValue(v), v == nil
		}
		resultRows = append(resultRows, row)
		nulls = append(nulls, isNull)
	}
	if err := rows.Err(); err != nil {
		return nil, mapQueryError("execute", err)
	}

	return &database.QueryResult{
		Columns:      columns,
		Rows:         resultRows,
		Nulls:        nulls,
		RowsAffected: int64(len(resultRows)),
		Tag:          database.LeadingKeyword(query),
		Duration:     time.Since(start),
	}, nil
}

// Close closes the file. Errors are logged.
func (c *Conn) Close() {
	if err := c.db.Close(); err != nil {
		c.log.Warn().Err(err).Msg("close database")
		return
	}
	c.log.Debug().Msg("closed")
}
