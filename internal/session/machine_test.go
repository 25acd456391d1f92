package session

import (
	"errors"
	"testing"

	"github.com/joacominatel/dbnav/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKinds = []database.Kind{database.KindPostgres, database.KindMySQL, database.KindSQLite}

// step applies an intent and stamps an ID on any pending operation, the way
// the Controller does.
func step(t *testing.T, s State, in Intent) (State, Effect) {
	t.Helper()
	next, eff := Transition(s, in)
	if next.Pending != nil && next.Pending.ID == "" {
		next.Pending.ID = "op-1"
	}
	return next, eff
}

func finish(t *testing.T, s State, o Outcome) State {
	t.Helper()
	require.NotNil(t, s.Pending, "no pending operation to resolve")
	o.ID = s.Pending.ID
	o.Effect = s.Pending.Effect
	return Resolve(s, o)
}

// connected drives a fresh state to SelectDatabase.
func connected(t *testing.T) State {
	t.Helper()
	s := Initial(allKinds)
	s, _ = step(t, s, SelectionMade{Value: "postgres"})
	s, _ = step(t, s, ConnectionSubmitted{Form: database.Form{Host: "localhost"}})
	return finish(t, s, Outcome{Databases: []database.Database{{Name: "postgres"}, {Name: "shop"}}})
}

// inTables drives a fresh state to ListTables on "shop".
func inTables(t *testing.T) State {
	t.Helper()
	s, _ := step(t, connected(t), SelectionMade{Value: "shop"})
	return finish(t, s, Outcome{Tables: []database.Table{
		{Database: "shop", Schema: "public", Name: "orders"},
		{Database: "shop", Schema: "public", Name: "users"},
	}})
}

func TestTransition_SelectBackend(t *testing.T) {
	s := Initial(allKinds)

	next, eff := Transition(s, SelectionMade{Value: "oracle"})
	assert.Nil(t, eff)
	assert.Equal(t, ScreenSelectBackend, next.Screen)
	assert.Contains(t, next.Notice, "oracle")

	next, _ = Transition(s, SelectionMade{Value: "mysql"})
	assert.Equal(t, ScreenInputConnection, next.Screen)
	assert.Equal(t, database.KindMySQL, next.Kind)
	assert.Empty(t, next.Notice)

	next, _ = Transition(s, SelectionMade{Value: "sqlite"})
	assert.Equal(t, SQLiteNotice, next.Notice)
}

func TestTransition_InvalidConfigStaysWithoutEffect(t *testing.T) {
	s, _ := step(t, Initial(allKinds), SelectionMade{Value: "postgres"})

	next, eff := Transition(s, ConnectionSubmitted{Form: database.Form{Host: "db", Port: "abc"}})
	assert.Nil(t, eff)
	assert.Nil(t, next.Pending)
	assert.Equal(t, ScreenInputConnection, next.Screen)
	assert.Contains(t, next.Notice, "port")
	assert.Equal(t, "abc", next.Form.Port, "form text is kept for editing")
}

func TestTransition_ValidConfigStartsConnect(t *testing.T) {
	s, _ := step(t, Initial(allKinds), SelectionMade{Value: "postgres"})

	next, eff := Transition(s, TextSubmitted{Text: "admin:pw@db.local:6543/shop"})
	require.IsType(t, Connect{}, eff)
	cfg := eff.(Connect).Config
	assert.Equal(t, "db.local", cfg.Host)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, "shop", cfg.Database)
	assert.Equal(t, ScreenConnecting, next.Screen)
	assert.True(t, next.Busy())
	assert.False(t, next.Connected)
}

func TestTransition_PendingAcceptsOnlyCancelAndQuit(t *testing.T) {
	s, _ := step(t, Initial(allKinds), SelectionMade{Value: "postgres"})
	s, _ = step(t, s, ConnectionSubmitted{Form: database.Form{Host: "db"}})

	for _, in := range []Intent{Back{}, SelectionMade{Value: "x"}, TextSubmitted{Text: "y"}, Disconnect{}, OpenQuery{}, Refresh{}} {
		next, eff := Transition(s, in)
		assert.Nil(t, eff, "%T", in)
		assert.Equal(t, s, next, "%T must be ignored while busy", in)
	}

	next, eff := Transition(s, Cancel{})
	assert.Nil(t, eff)
	assert.Equal(t, ScreenInputConnection, next.Screen)
	assert.False(t, next.Busy())
	assert.Equal(t, "db", next.Form.Host)

	next, eff = Transition(s, Quit{})
	assert.Equal(t, Release{}, eff)
	assert.Equal(t, ScreenQuit, next.Screen)
	assert.False(t, next.Busy())
}

func TestTransition_CancelWithoutPendingIsIgnored(t *testing.T) {
	s := inTables(t)

	next, eff := Transition(s, Cancel{})
	assert.Nil(t, eff)
	assert.Equal(t, s, next)
}

func TestResolve_ConnectFailureAndRetry(t *testing.T) {
	s, _ := step(t, Initial(allKinds), SelectionMade{Value: "postgres"})
	s, _ = step(t, s, ConnectionSubmitted{Form: database.Form{Host: "nowhere"}})

	netErr := database.NewConnectionError(database.ReasonNetwork, "server unreachable", nil)
	s = finish(t, s, Outcome{Err: netErr})
	assert.Equal(t, ScreenError, s.Screen)
	assert.Equal(t, ScreenInputConnection, s.Return)
	assert.False(t, s.Connected)
	reason, ok := database.ReasonOf(s.Err)
	require.True(t, ok)
	assert.Equal(t, database.ReasonNetwork, reason)
	assert.Equal(t, "Cannot reach server: server unreachable", s.ErrorMessage())

	s, eff := step(t, s, Back{})
	assert.Nil(t, eff)
	assert.Equal(t, ScreenInputConnection, s.Screen)
	assert.Nil(t, s.Err)
	assert.Equal(t, "nowhere", s.Form.Host)

	s, _ = step(t, s, ConnectionSubmitted{Form: database.Form{Host: "localhost"}})
	s = finish(t, s, Outcome{Databases: []database.Database{{Name: "postgres"}}})
	assert.Equal(t, ScreenSelectDatabase, s.Screen)
	assert.True(t, s.Connected)
	assert.Equal(t, "localhost", s.Config.Host)
}

func TestResolve_StaleOutcomeIgnored(t *testing.T) {
	s, _ := step(t, Initial(allKinds), SelectionMade{Value: "postgres"})
	s, _ = step(t, s, ConnectionSubmitted{Form: database.Form{Host: "db"}})

	next := Resolve(s, Outcome{ID: "other", Effect: s.Pending.Effect})
	assert.Equal(t, s, next)
}

func TestTransition_SelectDatabase(t *testing.T) {
	s := connected(t)

	next, eff := step(t, s, SelectionMade{Value: "missing"})
	assert.Nil(t, eff)
	assert.Contains(t, next.Notice, "missing")

	next, eff = step(t, s, SelectionMade{Value: "shop"})
	assert.Equal(t, UseDatabase{Database: database.Database{Name: "shop"}}, eff)
	assert.Equal(t, ScreenSelectDatabase, next.Screen, "screen holds until the call resolves")

	done := finish(t, next, Outcome{Tables: []database.Table{{Database: "shop", Name: "users"}}})
	assert.Equal(t, ScreenListTables, done.Screen)
	assert.Equal(t, "shop", done.Database.Name)
	assert.Equal(t, "shop", done.Config.Database)
}

func TestResolve_UseDatabaseFailure(t *testing.T) {
	s, _ := step(t, connected(t), SelectionMade{Value: "shop"})

	restored := finish(t, s, Outcome{Err: database.NewConnectionError(database.ReasonAuth, "denied", nil), Connected: true})
	assert.Equal(t, ScreenError, restored.Screen)
	assert.Equal(t, ScreenSelectDatabase, restored.Return)
	assert.True(t, restored.Connected)

	back, _ := step(t, restored, Back{})
	assert.Equal(t, ScreenSelectDatabase, back.Screen)
	assert.NotEmpty(t, back.Databases)

	lost := finish(t, s, Outcome{Err: errors.New("gone"), Connected: false})
	assert.Equal(t, ScreenError, lost.Screen)
	assert.Equal(t, ScreenInputConnection, lost.Return)
	assert.False(t, lost.Connected)
	assert.Empty(t, lost.Databases)
}

func TestTransition_BackFromSelectDatabaseReleases(t *testing.T) {
	next, eff := step(t, connected(t), Back{})
	assert.Equal(t, Release{}, eff)
	assert.Equal(t, ScreenSelectBackend, next.Screen)
	assert.False(t, next.Connected)
	assert.Empty(t, next.Databases)
}

func TestTransition_DisconnectFromConnectedScreens(t *testing.T) {
	for _, s := range []State{connected(t), inTables(t)} {
		next, eff := step(t, s, Disconnect{})
		assert.Equal(t, Release{}, eff)
		assert.Equal(t, ScreenSelectBackend, next.Screen)
		assert.False(t, next.Connected)
	}

	_, eff := Transition(Initial(allKinds), Disconnect{})
	assert.Nil(t, eff, "nothing to release before connecting")
}

func TestTransition_DescribeAndBack(t *testing.T) {
	s, eff := step(t, inTables(t), SelectionMade{Value: "public.users"})
	assert.Equal(t, Describe{Table: database.Table{Database: "shop", Schema: "public", Name: "users"}}, eff)

	s = finish(t, s, Outcome{Columns: []database.Column{{Name: "id", Ordinal: 0}}})
	assert.Equal(t, ScreenDescribeTable, s.Screen)
	assert.Equal(t, "users", s.Table.Name)
	assert.Len(t, s.Columns, 1)

	q, _ := step(t, s, OpenQuery{})
	assert.Equal(t, ScreenQueryResult, q.Screen)

	s, _ = step(t, s, Back{})
	assert.Equal(t, ScreenListTables, s.Screen)
	assert.Nil(t, s.Columns)
}

func TestResolve_DescribeFailureReturnsToTables(t *testing.T) {
	s, _ := step(t, inTables(t), SelectionMade{Value: "orders"})
	s = finish(t, s, Outcome{Err: database.NewQueryError("permission denied", nil)})

	assert.Equal(t, ScreenError, s.Screen)
	assert.Equal(t, ScreenListTables, s.Return)
	assert.Len(t, s.Tables, 2, "navigation context survives the error")
}

func TestTransition_Refresh(t *testing.T) {
	s, eff := step(t, inTables(t), Refresh{})
	assert.Equal(t, ListTables{Database: database.Database{Name: "shop"}}, eff)

	s = finish(t, s, Outcome{Tables: []database.Table{{Database: "shop", Name: "new_table"}}})
	assert.Equal(t, ScreenListTables, s.Screen)
	assert.Equal(t, []database.Table{{Database: "shop", Name: "new_table"}}, s.Tables)
}

func TestQueryResult_ErrorAndResultAreExclusive(t *testing.T) {
	s, _ := step(t, inTables(t), OpenQuery{})
	require.Equal(t, ScreenQueryResult, s.Screen)
	assert.Nil(t, s.Result)
	assert.Nil(t, s.Err)

	s, eff := step(t, s, TextSubmitted{Text: "SELECT 1"})
	assert.Equal(t, Execute{SQL: "SELECT 1"}, eff)
	s = finish(t, s, Outcome{Result: &database.QueryResult{Columns: []string{"?column?"}, Rows: [][]string{{"1"}}}})
	assert.Equal(t, ScreenQueryResult, s.Screen)
	require.NotNil(t, s.Result)
	assert.Nil(t, s.Err)

	pos := 1
	s, _ = step(t, s, TextSubmitted{Text: "SELEC 1"})
	s = finish(t, s, Outcome{Err: &database.QueryError{Message: `syntax error at or near "SELEC"`, Position: &pos}})
	assert.Equal(t, ScreenQueryResult, s.Screen)
	assert.Nil(t, s.Result, "prior result is cleared")
	require.Error(t, s.Err)
	assert.NotEmpty(t, s.ErrorMessage())
	assert.Equal(t, "SELEC 1", s.SQL)

	s, _ = step(t, s, TextSubmitted{Text: "SELECT 1"})
	s = finish(t, s, Outcome{Result: &database.QueryResult{}})
	assert.NotNil(t, s.Result)
	assert.Nil(t, s.Err, "a result supersedes the error")
}

func TestQueryResult_EmptySQLIgnored(t *testing.T) {
	s, _ := step(t, inTables(t), OpenQuery{})

	next, eff := Transition(s, TextSubmitted{Text: "  \n\t"})
	assert.Nil(t, eff)
	assert.Equal(t, s, next)
}

func TestQueryResult_Back(t *testing.T) {
	s, _ := step(t, inTables(t), OpenQuery{})
	s, _ = step(t, s, Back{})
	assert.Equal(t, ScreenListTables, s.Screen)
}

func TestTransition_QuitFromEveryScreen(t *testing.T) {
	states := []State{Initial(allKinds), connected(t), inTables(t)}
	for _, s := range states {
		next, eff := Transition(s, Quit{})
		assert.Equal(t, Release{}, eff)
		assert.True(t, next.Done())
		assert.False(t, next.Connected)
	}
}

func TestScreen_String(t *testing.T) {
	assert.Equal(t, "select_backend", ScreenSelectBackend.String())
	assert.Equal(t, "query_result", ScreenQueryResult.String())
	assert.Equal(t, "unknown", Screen(99).String())
	assert.True(t, ScreenDescribeTable.Connected())
	assert.False(t, ScreenConnecting.Connected())
}
