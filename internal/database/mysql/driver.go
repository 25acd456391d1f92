// Package mysql implements the database adapter for MySQL and MariaDB.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/joacominatel/dbnav/internal/database"
	"github.com/rs/zerolog"
)

// Adapter opens MySQL connections.
type Adapter struct {
	log  zerolog.Logger
	open func(dsn string) (*sql.DB, error)
}

// New creates a MySQL adapter.
func New(log zerolog.Logger) *Adapter {
	return &Adapter{
		log: log.With().Str("backend", "mysql").Logger(),
		open: func(dsn string) (*sql.DB, error) {
			return sql.Open("mysql", dsn)
		},
	}
}

// Kind implements database.Adapter.
func (a *Adapter) Kind() database.Kind {
	return database.KindMySQL
}

// Connect opens a handle limited to a single server connection and pings it.
func (a *Adapter) Connect(ctx context.Context, cfg database.ConnectionConfig) (database.Conn, error) {
	db, err := a.open(buildDSN(cfg))
	if err != nil {
		return nil, database.NewConnectionError(database.ReasonUnknown, "invalid connection parameters", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, mapConnectError(ctx, err)
	}

	a.log.Info().Str("addr", cfg.Address()).Str("database", cfg.Database).Msg("connected")
	return newConn(db, cfg.Database, a.log), nil
}

// buildDSN formats the driver DSN. Values are returned as raw text, so
// parseTime stays off.
func buildDSN(cfg database.ConnectionConfig) string {
	port := cfg.Port
	if port == 0 {
		port = database.KindMySQL.DefaultPort()
	}

	mc := gomysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, port)
	mc.DBName = cfg.Database
	mc.Timeout = cfg.Timeout
	return mc.FormatDSN()
}

// Conn is a live MySQL connection.
type Conn struct {
	db       *sql.DB
	database string
	log      zerolog.Logger
}

func newConn(db *sql.DB, dbName string, log zerolog.Logger) *Conn {
	return &Conn{db: db, database: dbName, log: log}
}

// ListDatabases returns every schema visible to the user.
func (c *Conn) ListDatabases(ctx context.Context) ([]database.Database, error) {
	rows, err := c.db.QueryContext(ctx, queryListDatabases)
	if err != nil {
		return nil, mapQueryError("list databases", err)
	}
	defer rows.Close()

	var dbs []database.Database
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, mapQueryError("scan database", err)
		}
		dbs = append(dbs, database.Database{Name: name})
	}
	return dbs, mapQueryError("list databases", rows.Err())
}

// ListTables returns base tables of the given schema.
func (c *Conn) ListTables(ctx context.Context, db database.Database) ([]database.Table, error) {
	name, err := c.schemaFor(db.Name)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, queryListTables, name)
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

// DescribeTable returns column metadata in ordinal order.
func (c *Conn) DescribeTable(ctx context.Context, t database.Table) ([]database.Column, error) {
	schema := t.Database
	if t.Schema != "" {
		schema = t.Schema
	}
	schema, err := c.schemaFor(schema)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, queryDescribeTable, schema, t.Name)
	if err != nil {
		return nil, mapQueryError("describe table", err)
	}
	defer rows.Close()

	var columns []database.Column
	for rows.Next() {
		var (
			col      database.Column
			nullable string
			def      sql.NullString
			types    string
		)
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &def, &types); err != nil {
			return nil, mapQueryError("scan column", err)
		}
		col.Nullable = nullable == "YES"
		col.Default, col.HasDefault = def.String, def.Valid
		col.Ordinal = len(columns)
		col.Constraints = constraintsFromTypes(types)
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, mapQueryError("describe table", err)
	}
	if len(columns) == 0 {
		return nil, database.NewQueryError(fmt.Sprintf("table %s.%s does not exist", schema, t.Name), nil)
	}
	return columns, nil
}

func (c *Conn) schemaFor(name string) (string, error) {
	if name == "" {
		name = c.database
	}
	if name == "" {
		return "", database.NewQueryError("no database selected", nil)
	}
	return name, nil
}

// ExecuteQuery runs the statement verbatim. Statements that return rows go
// through Query, everything else through Exec.
func (c *Conn) ExecuteQuery(ctx context.Context, query string) (*database.QueryResult, error) {
	start := time.Now()

	if !database.ReturnsRows(query) {
		res, err := c.db.ExecContext(ctx, query)
		if err != nil {
			return nil, mapQueryError("execute", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			affected = 0
		}
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

	raw := make([]sql.RawBytes, len(columns))
	dest := make([]any, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}

	var (
		resultRows [][]string
		nulls      [][]bool
	)
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, mapQueryError("read row", err)
		}
		row := make([]string, len(raw))
		isNull := make([]bool, len(raw))
		for i, v := range raw {
			if v == nil {
				row[i], isNull[i] = database.NullText, true
			} else {
				row[i] = database.FormatValue([]byte(v))
			}
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

// Close closes the handle. Errors are logged.
func (c *Conn) Close() {
	if err := c.db.Close(); err != nil {
		c.log.Warn().Err(err).Msg("close connection")
		return
	}
	c.log.Debug().Str("database", c.database).Msg("disconnected")
}
