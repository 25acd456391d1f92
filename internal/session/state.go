package session

import (
	"github.com/joacominatel/dbnav/internal/app"
	"github.com/joacominatel/dbnav/internal/database"
)

// Pending describes an operation in flight.
type Pending struct {
	ID     string
	Effect Effect

	// prior is the state to restore on Cancel.
	prior *State
}

// State is everything needed to render the current screen.
type State struct {
	Screen Screen
	// Return is where ScreenError goes once acknowledged.
	Return  Screen
	Pending *Pending

	Kinds []database.Kind
	Kind  database.Kind
	Form  database.Form

	Config    database.ConnectionConfig
	Connected bool

	Databases []database.Database
	Database  database.Database
	Tables    []database.Table
	Table     database.Table
	Columns   []database.Column

	SQL    string
	Result *database.QueryResult
	// Err is the last failure shown on ScreenError or in place of a query
	// result.
	Err error
	// Notice is an inline validation message.
	Notice string
}

// Initial returns the state a session starts in.
func Initial(kinds []database.Kind) State {
	return State{
		Screen: ScreenSelectBackend,
		Kinds:  append([]database.Kind(nil), kinds...),
	}
}

// Busy reports whether an operation is pending.
func (s State) Busy() bool {
	return s.Pending != nil
}

// ErrorMessage returns the display text for Err.
func (s State) ErrorMessage() string {
	return app.Message(s.Err)
}

// Done reports whether the session has ended.
func (s State) Done() bool {
	return s.Screen == ScreenQuit
}

func (s State) hasKind(k database.Kind) bool {
	for _, x := range s.Kinds {
		if x == k {
			return true
		}
	}
	return false
}

func (s State) findDatabase(name string) (database.Database, bool) {
	for _, db := range s.Databases {
		if db.Name == name {
			return db, true
		}
	}
	return database.Database{}, false
}

func (s State) findTable(name string) (database.Table, bool) {
	for _, t := range s.Tables {
		if t.QualifiedName() == name || t.Name == name {
			return t, true
		}
	}
	return database.Table{}, false
}

// disconnected clears every connection-scoped field.
func (s State) disconnected() State {
	s.Connected = false
	s.Config = database.ConnectionConfig{}
	s.Databases = nil
	s.Database = database.Database{}
	s.Tables = nil
	s.Table = database.Table{}
	s.Columns = nil
	s.SQL = ""
	s.Result = nil
	s.Err = nil
	s.Notice = ""
	return s
}
