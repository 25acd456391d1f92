// Package postgres implements the database adapter for PostgreSQL on pgx.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgconn/ctxwatch"
	"github.com/joacominatel/dbnav/internal/database"
	"github.com/rs/zerolog"
)

const (
	closeTimeout = 5 * time.Second

	// cancelGrace is how long a canceled statement may take to stop on the
	// server before the socket is given up.
	cancelGrace = 5 * time.Second
)

// Adapter opens PostgreSQL connections.
type Adapter struct {
	log zerolog.Logger
}

// New creates a PostgreSQL adapter.
func New(log zerolog.Logger) *Adapter {
	return &Adapter{log: log.With().Str("backend", "postgres").Logger()}
}

// Kind implements database.Adapter.
func (a *Adapter) Kind() database.Kind {
	return database.KindPostgres
}

// Connect opens a single connection. No pool is used.
func (a *Adapter) Connect(ctx context.Context, cfg database.ConnectionConfig) (database.Conn, error) {
	connCfg, err := pgx.ParseConfig(buildDSN(cfg))
	if err != nil {
		return nil, database.NewConnectionError(database.ReasonUnknown, "invalid connection parameters", err)
	}
	if cfg.Timeout > 0 {
		connCfg.ConnectTimeout = cfg.Timeout
	}
	// Every value comes back in the server's text form.
	connCfg.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	connCfg.BuildContextWatcherHandler = func(pc *pgconn.PgConn) ctxwatch.Handler {
		return &cancelHandler{pc: pc}
	}

	conn, err := pgx.ConnectConfig(ctx, connCfg)
	if err != nil {
		return nil, mapConnectError(ctx, err)
	}

	a.log.Info().Str("addr", cfg.Address()).Str("database", connCfg.Database).Msg("connected")
	return &Conn{conn: conn, database: connCfg.Database, log: a.log}, nil
}

// cancelHandler reacts to a canceled context. Once the session is up it
// asks the server to stop the running statement, keeping the connection
// usable. During the startup handshake there is no backend to cancel, so the
// socket deadline is used as pgx does by default.
type cancelHandler struct {
	pc     *pgconn.PgConn
	active ctxwatch.Handler
}

func (h *cancelHandler) HandleCancel(ctx context.Context) {
	if h.pc.PID() == 0 {
		h.active = &pgconn.DeadlineContextWatcherHandler{Conn: h.pc.Conn()}
	} else {
		h.active = &pgconn.CancelRequestContextWatcherHandler{Conn: h.pc, DeadlineDelay: cancelGrace}
	}
	h.active.HandleCancel(ctx)
}

func (h *cancelHandler) HandleUnwatchAfterCancel() {
	h.active.HandleUnwatchAfterCancel()
}

// buildDSN builds a key=value connection string.
func buildDSN(cfg database.ConnectionConfig) string {
	port := cfg.Port
	if port == 0 {
		port = database.KindPostgres.DefaultPort()
	}
	db := cfg.Database
	if db == "" {
		db = database.KindPostgres.DefaultDatabase()
	}

	parts := []string{
		"host=" + quote(cfg.Host),
		fmt.Sprintf("port=%d", port),
		"dbname=" + quote(db),
		"sslmode=prefer",
	}
	if cfg.Username != "" {
		parts = append(parts, "user="+quote(cfg.Username))
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+quote(cfg.Password))
	}
	return strings.Join(parts, " ")
}

func quote(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// Conn is a live PostgreSQL connection.
type Conn struct {
	conn     *pgx.Conn
	database string
	log      zerolog.Logger
}

// ListDatabases returns connectable, non-template databases.
func (c *Conn) ListDatabases(ctx context.Context) ([]database.Database, error) {
	rows, err := c.conn.Query(ctx, queryListDatabases)
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

// ListTables returns base tables of every user schema. PostgreSQL cannot
// read another database's catalog, so db must be the connected database.
func (c *Conn) ListTables(ctx context.Context, db database.Database) ([]database.Table, error) {
	if db.Name != "" && db.Name != c.database {
		return nil, database.NewQueryError(
			fmt.Sprintf("cannot list tables of %q while connected to %q", db.Name, c.database), nil)
	}

	rows, err := c.conn.Query(ctx, queryListTables)
	if err != nil {
		return nil, mapQueryError("list tables", err)
	}
	defer rows.Close()

	var tables []database.Table
	for rows.Next() {
		t := database.Table{Database: c.database}
		if err := rows.Scan(&t.Schema, &t.Name); err != nil {
			return nil, mapQueryError("scan table", err)
		}
		tables = append(tables, t)
	}
	return tables, mapQueryError("list tables", rows.Err())
}

// DescribeTable returns column metadata in attribute order.
func (c *Conn) DescribeTable(ctx context.Context, t database.Table) ([]database.Column, error) {
	schema := t.Schema
	if schema == "" {
		schema = "public"
	}

	rows, err := c.conn.Query(ctx, queryDescribeTable, schema, t.Name)
	if err != nil {
		return nil, mapQueryError("describe table", err)
	}
	defer rows.Close()

	var columns []database.Column
	for rows.Next() {
		var col database.Column
		var codes string
		if err := rows.Scan(&col.Name, &col.Type, &col.Nullable, &col.Default, &col.HasDefault, &codes); err != nil {
			return nil, mapQueryError("scan column", err)
		}
		col.Ordinal = len(columns)
		col.Constraints = constraintsFromCodes(codes)
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

// constraintsFromCodes maps pg_constraint.contype letters to tags.
func constraintsFromCodes(codes string) []database.Constraint {
	var out []database.Constraint
	for _, r := range codes {
		switch r {
		case 'p':
			out = append(out, database.ConstraintPrimaryKey)
		case 'f':
			out = append(out, database.ConstraintForeignKey)
		case 'u':
			out = append(out, database.ConstraintUnique)
		case 'c':
			out = append(out, database.ConstraintCheck)
		case 'x':
			out = append(out, database.ConstraintExclusion)
		}
	}
	return database.NormalizeConstraints(out)
}

// ExecuteQuery runs the statement verbatim over the simple protocol.
func (c *Conn) ExecuteQuery(ctx context.Context, query string) (*database.QueryResult, error) {
	start := time.Now()

	rows, err := c.conn.Query(ctx, query)
	if err != nil {
		return nil, mapQueryError("execute", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var (
		resultRows [][]string
		nulls      [][]bool
	)
	for rows.Next() {
		raw := rows.RawValues()
		row := make([]string, len(raw))
		isNull := make([]bool, len(raw))
		for i, v := range raw {
			if v == nil {
				row[i], isNull[i] = database.NullText, true
			} else {
				row[i] = string(v)
			}
		}
		resultRows = append(resultRows, row)
		nulls = append(nulls, isNull)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapQueryError("execute", err)
	}

	tag := rows.CommandTag()
	result := &database.QueryResult{
		Columns:      columns,
		Rows:         resultRows,
		Nulls:        nulls,
		RowsAffected: tag.RowsAffected(),
		Tag:          tag.String(),
		Duration:     time.Since(start),
	}
	if len(columns) == 0 {
		result.Columns = nil
	}
	return result, nil
}

// IsClosed reports whether the connection is no longer usable. pgx closes
// it when a statement outlives cancelGrace after cancellation.
func (c *Conn) IsClosed() bool {
	return c.conn.IsClosed()
}

// Close terminates the connection. Errors are logged.
func (c *Conn) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := c.conn.Close(ctx); err != nil {
		c.log.Warn().Err(err).Msg("close connection")
		return
	}
	c.log.Debug().Str("database", c.database).Msg("disconnected")
}
