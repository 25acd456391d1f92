package session

import (
	"fmt"
	"strings"

	"github.com/joacominatel/dbnav/internal/database"
)

// SQLiteNotice is shown when the preview SQLite backend is chosen.
const SQLiteNotice = "SQLite support is a preview: enter the database file path as host"

// Transition applies an intent to s. It returns the next state and the
// effect to run, if any. An intent that does not apply to the current screen
// returns s unchanged.
func Transition(s State, in Intent) (State, Effect) {
	if _, ok := in.(Quit); ok {
		next := s.disconnected()
		next.Screen = ScreenQuit
		next.Pending = nil
		return next, Release{}
	}

	if s.Pending != nil {
		if _, ok := in.(Cancel); ok {
			return *s.Pending.prior, nil
		}
		return s, nil
	}

	if _, ok := in.(Disconnect); ok && s.holdsConnection() {
		return backToStart(s), Release{}
	}

	switch s.Screen {
	case ScreenSelectBackend:
		return onSelectBackend(s, in)
	case ScreenInputConnection:
		return onInputConnection(s, in)
	case ScreenError:
		return onError(s, in)
	case ScreenSelectDatabase:
		return onSelectDatabase(s, in)
	case ScreenListTables:
		return onListTables(s, in)
	case ScreenDescribeTable:
		return onDescribeTable(s, in)
	case ScreenQueryResult:
		return onQueryResult(s, in)
	}
	return s, nil
}

func (s State) holdsConnection() bool {
	if s.Screen == ScreenError {
		return s.Return.Connected() && s.Connected
	}
	return s.Screen.Connected()
}

func backToStart(s State) State {
	next := s.disconnected()
	next.Screen = ScreenSelectBackend
	next.Return = ScreenSelectBackend
	return next
}

// begin marks next as waiting for eff. Cancel restores prior.
func begin(prior, next State, eff Effect) (State, Effect) {
	p := prior
	next.Pending = &Pending{Effect: eff, prior: &p}
	return next, eff
}

func onSelectBackend(s State, in Intent) (State, Effect) {
	sel, ok := in.(SelectionMade)
	if !ok {
		return s, nil
	}
	kind := database.Kind(sel.Value)
	if !s.hasKind(kind) {
		s.Notice = fmt.Sprintf("unknown backend %q", sel.Value)
		return s, nil
	}

	s.Screen = ScreenInputConnection
	s.Kind = kind
	s.Form = database.Form{}
	s.Notice = ""
	if kind == database.KindSQLite {
		s.Notice = SQLiteNotice
	}
	return s, nil
}

func onInputConnection(s State, in Intent) (State, Effect) {
	var form database.Form
	switch x := in.(type) {
	case ConnectionSubmitted:
		form = x.Form
	case TextSubmitted:
		f, err := database.ParseTarget(s.Kind, x.Text)
		if err != nil {
			s.Notice = err.Error()
			return s, nil
		}
		form = f
	case Back:
		s.Screen = ScreenSelectBackend
		s.Notice = ""
		return s, nil
	default:
		return s, nil
	}

	s.Form = form
	cfg, err := database.ParseConnectionConfig(s.Kind, form)
	if err != nil {
		s.Notice = err.Error()
		return s, nil
	}

	prior := s
	prior.Notice = ""
	next := s
	next.Screen = ScreenConnecting
	next.Config = cfg
	next.Notice = ""
	next.Err = nil
	return begin(prior, next, Connect{Config: cfg})
}

func onError(s State, in Intent) (State, Effect) {
	switch in.(type) {
	case Back, SelectionMade, TextSubmitted:
		s.Screen = s.Return
		s.Err = nil
		return s, nil
	}
	return s, nil
}

func onSelectDatabase(s State, in Intent) (State, Effect) {
	switch x := in.(type) {
	case SelectionMade:
		db, ok := s.findDatabase(x.Value)
		if !ok {
			s.Notice = fmt.Sprintf("unknown database %q", x.Value)
			return s, nil
		}
		s.Notice = ""
		return begin(s, s, UseDatabase{Database: db})
	case Back:
		return backToStart(s), Release{}
	}
	return s, nil
}

func onListTables(s State, in Intent) (State, Effect) {
	switch x := in.(type) {
	case SelectionMade:
		t, ok := s.findTable(x.Value)
		if !ok {
			s.Notice = fmt.Sprintf("unknown table %q", x.Value)
			return s, nil
		}
		s.Notice = ""
		return begin(s, s, Describe{Table: t})
	case Refresh:
		return begin(s, s, ListTables{Database: s.Database})
	case OpenQuery:
		return enterQuery(s), nil
	case Back:
		s.Screen = ScreenSelectDatabase
		s.Notice = ""
		return s, nil
	}
	return s, nil
}

func onDescribeTable(s State, in Intent) (State, Effect) {
	switch in.(type) {
	case OpenQuery:
		return enterQuery(s), nil
	case Back:
		s.Screen = ScreenListTables
		s.Columns = nil
		return s, nil
	}
	return s, nil
}

func enterQuery(s State) State {
	s.Screen = ScreenQueryResult
	s.SQL = ""
	s.Result = nil
	s.Err = nil
	s.Notice = ""
	return s
}

func onQueryResult(s State, in Intent) (State, Effect) {
	switch x := in.(type) {
	case TextSubmitted:
		if strings.TrimSpace(x.Text) == "" {
			return s, nil
		}
		next := s
		next.SQL = x.Text
		return begin(s, next, Execute{SQL: x.Text})
	case Back:
		s.Screen = ScreenListTables
		s.Result = nil
		s.Err = nil
		return s, nil
	}
	return s, nil
}

// Resolve applies the outcome of the pending operation. Outcomes that do not
// match the pending operation leave s unchanged.
func Resolve(s State, o Outcome) State {
	if s.Pending == nil || s.Pending.ID != o.ID {
		return s
	}
	s.Pending = nil

	switch eff := o.Effect.(type) {
	case Connect:
		if o.Err != nil {
			s.Connected = false
			s.Config = database.ConnectionConfig{}
			return failed(s, ScreenInputConnection, o.Err)
		}
		s.Screen = ScreenSelectDatabase
		s.Config = eff.Config
		s.Connected = true
		s.Databases = o.Databases
		s.Err = nil
		s.Notice = ""

	case UseDatabase:
		if o.Err != nil {
			if !o.Connected {
				return failed(s.disconnected(), ScreenInputConnection, o.Err)
			}
			return failed(s, ScreenSelectDatabase, o.Err)
		}
		s.Screen = ScreenListTables
		s.Database = eff.Database
		s.Config = s.Config.WithDatabase(eff.Database.Name)
		s.Tables = o.Tables
		s.Table = database.Table{}
		s.Columns = nil
		s.Result = nil
		s.Err = nil

	case ListTables:
		if o.Err != nil {
			return failed(s, ScreenListTables, o.Err)
		}
		s.Tables = o.Tables
		s.Err = nil

	case Describe:
		if o.Err != nil {
			return failed(s, ScreenListTables, o.Err)
		}
		s.Screen = ScreenDescribeTable
		s.Table = eff.Table
		s.Columns = o.Columns
		s.Err = nil

	case Execute:
		// A result and an error never coexist.
		if o.Err != nil {
			s.Result = nil
			s.Err = o.Err
		} else {
			s.Result = o.Result
			s.Err = nil
		}
	}
	return s
}

func failed(s State, ret Screen, err error) State {
	s.Screen = ScreenError
	s.Return = ret
	s.Err = err
	return s
}
