package database

import "context"

// Adapter opens connections to one kind of database engine.
type Adapter interface {
	// Kind returns the engine this adapter serves.
	Kind() Kind

	// Connect opens a live connection. Failures are *ConnectionError.
	Connect(ctx context.Context, cfg ConnectionConfig) (Conn, error)
}

// Conn is a live connection handle.
//
// Operation failures are *QueryError or *InternalError. A canceled context
// surfaces as an error wrapping ErrCanceled. Implementations are not required
// to be safe for concurrent use.
type Conn interface {
	// ListDatabases returns the databases visible to the connected user.
	ListDatabases(ctx context.Context) ([]Database, error)

	// ListTables returns the base tables of a database.
	ListTables(ctx context.Context, db Database) ([]Table, error)

	// DescribeTable returns the columns of a table in ordinal order.
	DescribeTable(ctx context.Context, t Table) ([]Column, error)

	// ExecuteQuery runs a single SQL statement verbatim.
	ExecuteQuery(ctx context.Context, query string) (*QueryResult, error)

	// Close releases the connection. Failures are logged, never returned.
	Close()
}

// ClosedReporter is implemented by connections the driver may close on its
// own after a failed operation, such as a canceled statement the server
// never acknowledged.
type ClosedReporter interface {
	IsClosed() bool
}
