package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joacominatel/dbnav/internal/database"
	"github.com/joacominatel/dbnav/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const envTestDSN = "DBNAV_TEST_POSTGRES_DSN"

// connectTestDB connects to the server named by DBNAV_TEST_POSTGRES_DSN, or
// skips the test.
func connectTestDB(t *testing.T) (*Conn, database.ConnectionConfig) {
	t.Helper()

	dsn := os.Getenv(envTestDSN)
	if dsn == "" {
		t.Skipf("%s not set", envTestDSN)
	}
	pc, err := pgx.ParseConfig(dsn)
	require.NoError(t, err)

	cfg := database.ConnectionConfig{
		Kind:     database.KindPostgres,
		Host:     pc.Host,
		Port:     int(pc.Port),
		Username: pc.User,
		Password: pc.Password,
		Database: pc.Database,
		Timeout:  5 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := New(logger.Discard()).Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(conn.Close)
	return conn.(*Conn), cfg
}

func TestIntegration_SelectOne(t *testing.T) {
	conn, _ := connectTestDB(t)

	res, err := conn.ExecuteQuery(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.Len(t, res.Columns, 1)
	assert.Equal(t, [][]string{{"1"}}, res.Rows)
}

func TestIntegration_SyntaxError(t *testing.T) {
	conn, _ := connectTestDB(t)

	_, err := conn.ExecuteQuery(context.Background(), "SELEC 1")
	var qe *database.QueryError
	require.ErrorAs(t, err, &qe)
	require.NotNil(t, qe.Position)
	assert.Equal(t, 1, *qe.Position)
}

func TestIntegration_DescribeTable(t *testing.T) {
	conn, cfg := connectTestDB(t)
	ctx := context.Background()

	_, err := conn.ExecuteQuery(ctx, `
		DROP TABLE IF EXISTS dbnav_it_child;
		CREATE TABLE dbnav_it_child (
			id serial PRIMARY KEY,
			gone int,
			email varchar(120) UNIQUE NOT NULL,
			score numeric(5,2) DEFAULT 0 CHECK (score >= 0)
		);
		ALTER TABLE dbnav_it_child DROP COLUMN gone;`)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = conn.ExecuteQuery(context.Background(), "DROP TABLE IF EXISTS dbnav_it_child")
	})

	tables, err := conn.ListTables(ctx, database.Database{Name: cfg.Database})
	require.NoError(t, err)
	assert.Contains(t, tables, database.Table{Database: cfg.Database, Schema: "public", Name: "dbnav_it_child"})

	cols, err := conn.DescribeTable(ctx, database.Table{Schema: "public", Name: "dbnav_it_child"})
	require.NoError(t, err)
	require.Len(t, cols, 3)

	for i, c := range cols {
		assert.Equal(t, i, c.Ordinal)
	}
	assert.Equal(t, "id", cols[0].Name)
	assert.Equal(t, []database.Constraint{database.ConstraintPrimaryKey}, cols[0].Constraints)
	assert.Equal(t, "character varying(120)", cols[1].Type)
	assert.False(t, cols[1].Nullable)
	assert.Equal(t, []database.Constraint{database.ConstraintUnique}, cols[1].Constraints)
	assert.Equal(t, "numeric(5,2)", cols[2].Type)
	assert.True(t, cols[2].HasDefault)
	assert.Equal(t, []database.Constraint{database.ConstraintCheck}, cols[2].Constraints)
}

func TestIntegration_NonRowStatement(t *testing.T) {
	conn, _ := connectTestDB(t)

	ctx := context.Background()

	_, err := conn.ExecuteQuery(ctx, "CREATE TEMP TABLE dbnav_it_tmp (a int)")
	require.NoError(t, err)

	res, err := conn.ExecuteQuery(ctx, "INSERT INTO dbnav_it_tmp VALUES (1), (2)")
	require.NoError(t, err)
	assert.Equal(t, "INSERT 0 2", res.Tag)
	assert.False(t, res.HasRows())
	assert.Equal(t, int64(2), res.RowsAffected)
}

func TestIntegration_Unreachable(t *testing.T) {
	if os.Getenv(envTestDSN) == "" {
		t.Skipf("%s not set", envTestDSN)
	}

	_, err := New(logger.Discard()).Connect(context.Background(), database.ConnectionConfig{
		Kind:    database.KindPostgres,
		Host:    "127.0.0.1",
		Port:    1,
		Timeout: 2 * time.Second,
	})
	reason, ok := database.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, database.ReasonNetwork, reason)
}
