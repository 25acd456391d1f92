package database

import "time"

// Kind identifies a database engine.
type Kind string

const (
	KindPostgres Kind = "postgres"
	KindMySQL    Kind = "mysql"
	KindSQLite   Kind = "sqlite"
)

// String returns the kind's identifier.
func (k Kind) String() string {
	return string(k)
}

// Label returns the display name of the engine.
func (k Kind) Label() string {
	switch k {
	case KindPostgres:
		return "PostgreSQL"
	case KindMySQL:
		return "MySQL"
	case KindSQLite:
		return "SQLite"
	default:
		return string(k)
	}
}

// DefaultPort returns the engine's well-known TCP port, or 0 when the engine
// is not network based.
func (k Kind) DefaultPort() int {
	switch k {
	case KindPostgres:
		return 5432
	case KindMySQL:
		return 3306
	default:
		return 0
	}
}

// DefaultDatabase returns the database a connection opens on when none is
// given.
func (k Kind) DefaultDatabase() string {
	switch k {
	case KindPostgres:
		return "postgres"
	case KindSQLite:
		return "main"
	default:
		return ""
	}
}

// Database is a database (or catalog) visible through a connection.
type Database struct {
	Name string
}

// Table identifies a table inside a database.
type Table struct {
	Database string
	Schema   string
	Name     string
}

// QualifiedName returns schema.name, or just the name when there is no schema.
func (t Table) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Constraint is a column-level constraint tag.
type Constraint string

const (
	ConstraintPrimaryKey Constraint = "PRIMARY KEY"
	ConstraintForeignKey Constraint = "FOREIGN KEY"
	ConstraintUnique     Constraint = "UNIQUE"
	ConstraintCheck      Constraint = "CHECK"
	ConstraintExclusion  Constraint = "EXCLUSION"
)

// Column represents a table column with its metadata.
type Column struct {
	Name string
	// Type is the engine's own type string, not normalized.
	Type        string
	Nullable    bool
	Default     string
	HasDefault  bool
	Constraints []Constraint
	// Ordinal is the 0-based position among the table's columns.
	Ordinal int
}

// Has reports whether the column carries the given constraint.
func (c Column) Has(con Constraint) bool {
	for _, x := range c.Constraints {
		if x == con {
			return true
		}
	}
	return false
}

// QueryResult holds the result of a SQL statement execution.
//
// Statements that do not return rows have no columns and report
// RowsAffected and, where the engine provides one, a command Tag.
type QueryResult struct {
	Columns []string
	Rows    [][]string
	// Nulls marks the cells of Rows that hold SQL NULL, which renders the
	// same as the text "NULL". A nil Nulls means the producer did not track
	// them.
	Nulls        [][]bool
	RowsAffected int64
	Tag          string
	Duration     time.Duration
}

// IsNull reports whether the cell holds SQL NULL. Without null tracking a
// cell reading NullText is taken as NULL.
func (r *QueryResult) IsNull(row, col int) bool {
	if r == nil || row < 0 || row >= len(r.Rows) || col < 0 || col >= len(r.Rows[row]) {
		return false
	}
	if r.Nulls == nil {
		return r.Rows[row][col] == NullText
	}
	return row < len(r.Nulls) && col < len(r.Nulls[row]) && r.Nulls[row][col]
}

// HasRows reports whether the statement produced a result set.
func (r *QueryResult) HasRows() bool {
	return r != nil && len(r.Columns) > 0
}

var constraintOrder = []Constraint{
	ConstraintPrimaryKey,
	ConstraintForeignKey,
	ConstraintUnique,
	ConstraintCheck,
	ConstraintExclusion,
}

// NormalizeConstraints removes duplicates and sorts tags into a fixed order.
func NormalizeConstraints(cs []Constraint) []Constraint {
	if len(cs) == 0 {
		return nil
	}
	seen := make(map[Constraint]bool, len(cs))
	for _, c := range cs {
		seen[c] = true
	}
	out := make([]Constraint, 0, len(seen))
	for _, c := range constraintOrder {
		if seen[c] {
			out = append(out, c)
		}
	}
	return out
}
