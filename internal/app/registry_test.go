package app

import (
	"context"
	"testing"

	"github.com/joacominatel/dbnav/internal/database"
	"github.com/joacominatel/dbnav/internal/database/dbtest"
	"github.com/joacominatel/dbnav/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(adapters ...database.Adapter) *Registry {
	return NewRegistry(database.NewBackends(adapters...), logger.Discard())
}

func pgConfig(db string) database.ConnectionConfig {
	return database.ConnectionConfig{Kind: database.KindPostgres, Host: "localhost", Port: 5432, Database: db}
}

func TestRegistry_OpenReturnsConnOrConnectionError(t *testing.T) {
	ok := dbtest.New(database.KindPostgres, dbtest.Catalog{})
	reg := newTestRegistry(ok)

	conn, err := reg.Open(context.Background(), pgConfig("postgres"))
	require.NoError(t, err)
	require.NotNil(t, conn)

	current, held := reg.Current()
	assert.True(t, held)
	assert.Same(t, conn, current)

	failing := dbtest.New(database.KindMySQL, dbtest.Catalog{})
	failing.ConnectFunc = func(context.Context, database.ConnectionConfig) error {
		return database.NewConnectionError(database.ReasonNetwork, "refused", nil)
	}
	reg = newTestRegistry(failing)

	conn, err = reg.Open(context.Background(), database.ConnectionConfig{Kind: database.KindMySQL, Host: "nowhere"})
	assert.Nil(t, conn)
	assert.True(t, database.IsConnectionError(err))
	_, held = reg.Current()
	assert.False(t, held)
}

func TestRegistry_OpenUnknownBackend(t *testing.T) {
	reg := newTestRegistry()

	_, err := reg.Open(context.Background(), pgConfig("postgres"))
	var ue *database.UnknownBackendError
	assert.ErrorAs(t, err, &ue)
}

func TestRegistry_AtMostOneConnection(t *testing.T) {
	fake := dbtest.New(database.KindPostgres, dbtest.Catalog{})
	reg := newTestRegistry(fake)
	ctx := context.Background()

	_, err := reg.Open(ctx, pgConfig("a"))
	require.NoError(t, err)
	_, err = reg.Open(ctx, pgConfig("b"))
	require.NoError(t, err)

	assert.Equal(t, 1, fake.OpenConns())
	cfg, ok := reg.Config()
	require.True(t, ok)
	assert.Equal(t, "b", cfg.Database)
}

func TestRegistry_CloseIsIdempotent(t *testing.T) {
	fake := dbtest.New(database.KindPostgres, dbtest.Catalog{})
	reg := newTestRegistry(fake)

	reg.Close()

	_, err := reg.Open(context.Background(), pgConfig("postgres"))
	require.NoError(t, err)

	reg.Close()
	reg.Close()

	assert.Equal(t, 0, fake.OpenConns())
	_, held := reg.Current()
	assert.False(t, held)
}

func TestRegistry_CanceledDuringConnectReleasesHandle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	fake := dbtest.New(database.KindPostgres, dbtest.Catalog{})
	fake.ConnectFunc = func(context.Context, database.ConnectionConfig) error {
		// The handshake completes even though the caller gave up.
		cancel()
		return nil
	}
	reg := newTestRegistry(fake)

	conn, err := reg.Open(ctx, pgConfig("postgres"))
	assert.Nil(t, conn)
	assert.ErrorIs(t, err, database.ErrCanceled)
	assert.Equal(t, 0, fake.OpenConns())
	_, held := reg.Current()
	assert.False(t, held)
}
