package session

import (
	"errors"

	"github.com/joacominatel/dbnav/internal/database"
)

// Effect is backend work requested by a transition.
type Effect interface {
	effect() string
}

// Connect opens a connection and lists its databases.
type Connect struct{ Config database.ConnectionConfig }

// UseDatabase reconnects to a database and lists its tables.
type UseDatabase struct{ Database database.Database }

// ListTables reloads the tables of the current database.
type ListTables struct{ Database database.Database }

// Describe loads a table's columns.
type Describe struct{ Table database.Table }

// Execute runs a SQL statement.
type Execute struct{ SQL string }

// Release closes the connection. It is applied inline by the Controller and
// never becomes a Task.
type Release struct{}

func (Connect) effect() string     { return "connect" }
func (UseDatabase) effect() string { return "use_database" }
func (ListTables) effect() string  { return "list_tables" }
func (Describe) effect() string    { return "describe" }
func (Execute) effect() string     { return "execute" }
func (Release) effect() string     { return "release" }

// Outcome is the result of running an Effect.
type Outcome struct {
	// ID matches the Pending operation the outcome belongs to.
	ID     string
	Effect Effect

	Databases []database.Database
	Tables    []database.Table
	Columns   []database.Column
	Result    *database.QueryResult
	// Connected reports whether a connection is still held after a failed
	// UseDatabase.
	Connected bool
	Err       error
}

var errUnknownEffect = errors.New("unknown effect")
