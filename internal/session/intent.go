package session

import "github.com/joacominatel/dbnav/internal/database"

// Intent is a user action, already abstracted from key events.
type Intent interface {
	intent() string
}

// SelectionMade picks an item from the current list: a backend kind, a
// database name, a table name, or an acknowledgment on the error screen.
type SelectionMade struct{ Value string }

// TextSubmitted submits free text: SQL on the query screen, or a one-line
// connection target on the connection screen.
type TextSubmitted struct{ Text string }

// ConnectionSubmitted submits the connection form.
type ConnectionSubmitted struct{ Form database.Form }

// OpenQuery enters the query screen.
type OpenQuery struct{}

// Refresh reloads the table list.
type Refresh struct{}

// Disconnect releases the connection and returns to backend selection.
type Disconnect struct{}

// Back goes to the previous screen.
type Back struct{}

// Quit ends the session from any screen.
type Quit struct{}

// Cancel aborts the pending operation.
type Cancel struct{}

func (SelectionMade) intent() string       { return "selection_made" }
func (TextSubmitted) intent() string       { return "text_submitted" }
func (ConnectionSubmitted) intent() string { return "connection_submitted" }
func (OpenQuery) intent() string           { return "open_query" }
func (Refresh) intent() string             { return "refresh" }
func (Disconnect) intent() string          { return "disconnect" }
func (Back) intent() string                { return "back" }
func (Quit) intent() string                { return "quit" }
func (Cancel) intent() string              { return "cancel" }
