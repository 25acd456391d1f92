// Package dbtest provides an in-memory database adapter for tests.
package dbtest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/joacominatel/dbnav/internal/database"
)

// Catalog is the data served by a fake connection.
type Catalog struct {
	Databases []string
	// Tables maps a database name to its table names.
	Tables map[string][]string
	// Columns maps a table name to its columns.
	Columns map[string][]database.Column
	// Results maps SQL text to a canned result. Unknown SQL fails with a
	// syntax QueryError.
	Results map[string]*database.QueryResult
}

// Adapter is a fake database.Adapter.
type Adapter struct {
	AdapterKind database.Kind
	Catalog     Catalog
	// ConnectFunc, when set, runs before a connection is handed out and may
	// fail or block.
	ConnectFunc func(ctx context.Context, cfg database.ConnectionConfig) error
	// QueryFunc, when set, runs before ExecuteQuery looks up its result and
	// may fail, block or Break the connection.
	QueryFunc func(ctx context.Context, c *Conn, query string) error

	mu      sync.Mutex
	configs []database.ConnectionConfig
	conns   []*Conn
}

// New returns a fake adapter serving catalog.
func New(kind database.Kind, catalog Catalog) *Adapter {
	return &Adapter{AdapterKind: kind, Catalog: catalog}
}

// Kind implements database.Adapter.
func (a *Adapter) Kind() database.Kind {
	return a.AdapterKind
}

// Connect implements database.Adapter.
func (a *Adapter) Connect(ctx context.Context, cfg database.ConnectionConfig) (database.Conn, error) {
	a.mu.Lock()
	a.configs = append(a.configs, cfg)
	fn := a.ConnectFunc
	a.mu.Unlock()

	if fn != nil {
		if err := fn(ctx, cfg); err != nil {
			return nil, err
		}
	}

	c := &Conn{adapter: a, database: cfg.Database}
	a.mu.Lock()
	a.conns = append(a.conns, c)
	a.mu.Unlock()
	return c, nil
}

// Configs returns every config passed to Connect, in order.
func (a *Adapter) Configs() []database.ConnectionConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]database.ConnectionConfig(nil), a.configs...)
}

// OpenConns returns the number of connections not yet closed.
func (a *Adapter) OpenConns() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, c := range a.conns {
		if !c.closed {
			n++
		}
	}
	return n
}

// Conn is a fake database.Conn.
type Conn struct {
	adapter  *Adapter
	database string
	closed   bool
	broken   bool
}

// ListDatabases implements database.Conn.
func (c *Conn) ListDatabases(ctx context.Context) ([]database.Database, error) {
	if err := ctx.Err(); err != nil {
		return nil, database.Canceled(err)
	}
	dbs := make([]database.Database, 0, len(c.adapter.Catalog.Databases))
	for _, name := range c.adapter.Catalog.Databases {
		dbs = append(dbs, database.Database{Name: name})
	}
	return dbs, nil
}

// ListTables implements database.Conn.
func (c *Conn) ListTables(ctx context.Context, db database.Database) ([]database.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, database.Canceled(err)
	}
	names, ok := c.adapter.Catalog.Tables[db.Name]
	if !ok {
		return nil, database.NewQueryError(fmt.Sprintf("database %q does not exist", db.Name), nil)
	}
	tables := make([]database.Table, 0, len(names))
	for _, n := range names {
		tables = append(tables, database.Table{Database: db.Name, Name: n})
	}
	return tables, nil
}

// DescribeTable implements database.Conn.
func (c *Conn) DescribeTable(ctx context.Context, t database.Table) ([]database.Column, error) {
	if err := ctx.Err(); err != nil {
		return nil, database.Canceled(err)
	}
	cols, ok := c.adapter.Catalog.Columns[t.Name]
	if !ok {
		return nil, database.NewQueryError(fmt.Sprintf("table %s does not exist", t.Name), nil)
	}
	return cols, nil
}

// ExecuteQuery implements database.Conn.
func (c *Conn) ExecuteQuery(ctx context.Context, query string) (*database.QueryResult, error) {
	c.adapter.mu.Lock()
	fn := c.adapter.QueryFunc
	c.adapter.mu.Unlock()
	if fn != nil {
		if err := fn(ctx, c, query); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, database.Canceled(err)
	}
	if c.IsClosed() {
		return nil, database.Internal("execute", errors.New("conn closed"))
	}
	res, ok := c.adapter.Catalog.Results[query]
	if !ok {
		pos := 1
		return nil, &database.QueryError{Message: fmt.Sprintf("syntax error at or near %q", database.LeadingKeyword(query)), Position: &pos}
	}
	return res, nil
}

// Close implements database.Conn.
func (c *Conn) Close() {
	c.adapter.mu.Lock()
	defer c.adapter.mu.Unlock()
	c.closed = true
}

// Break marks the connection as closed by the driver, as pgx does when a
// canceled statement is never acknowledged.
func (c *Conn) Break() {
	c.adapter.mu.Lock()
	defer c.adapter.mu.Unlock()
	c.broken = true
}

// IsClosed implements database.ClosedReporter.
func (c *Conn) IsClosed() bool {
	c.adapter.mu.Lock()
	defer c.adapter.mu.Unlock()
	return c.closed || c.broken
}

// Database returns the database the connection was opened on.
func (c *Conn) Database() string {
	return c.database
}
