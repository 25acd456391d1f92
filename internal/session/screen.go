// Package session drives the navigation between screens.
//
// Transitions are pure functions over State (see Transition and Resolve).
// The Controller applies them atomically and turns their effects into Tasks
// that run backend calls off the UI thread.
package session

// Screen tags the current step of the navigation.
type Screen int

const (
	ScreenSelectBackend Screen = iota
	ScreenInputConnection
	ScreenConnecting
	ScreenSelectDatabase
	ScreenListTables
	ScreenDescribeTable
	ScreenQueryResult
	// ScreenError shows a failure until acknowledged; State.Return says where
	// to go next.
	ScreenError
	ScreenQuit
)

var screenNames = map[Screen]string{
	ScreenSelectBackend:   "select_backend",
	ScreenInputConnection: "input_connection",
	ScreenConnecting:      "connecting",
	ScreenSelectDatabase:  "select_database",
	ScreenListTables:      "list_tables",
	ScreenDescribeTable:   "describe_table",
	ScreenQueryResult:     "query_result",
	ScreenError:           "error",
	ScreenQuit:            "quit",
}

func (s Screen) String() string {
	if name, ok := screenNames[s]; ok {
		return name
	}
	return "unknown"
}

// Connected reports whether the screen lies in the region that requires a
// live connection.
func (s Screen) Connected() bool {
	switch s {
	case ScreenSelectDatabase, ScreenListTables, ScreenDescribeTable, ScreenQueryResult:
		return true
	default:
		return false
	}
}
