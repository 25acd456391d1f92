package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joacominatel/dbnav/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

const sampleConfig = `
preferences:
  default_backend: mysql
  default_connection: shop
  query_timeout: 5s
  log_level: debug
  log_file: /tmp/dbnav-test.log
connections:
  - name: local-pg
    host: localhost
    username: postgres
  - name: shop
    driver: mysql
    host: db.internal
    port: 3307
    database: shop
    username: app
    keyring: true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Preferences.DefaultBackend)
	assert.Equal(t, 5*time.Second, cfg.Preferences.QueryTimeout)
	assert.Equal(t, 10*time.Second, cfg.Preferences.ConnectTimeout, "default kept")
	assert.Equal(t, "debug", cfg.Preferences.LogLevel)
	assert.Equal(t, "/tmp/dbnav-test.log", cfg.Preferences.LogFile)
	require.Len(t, cfg.Connections, 2)

	def := cfg.DefaultConnection()
	require.NotNil(t, def)
	assert.Equal(t, "shop", def.Name)
	assert.Equal(t, database.KindMySQL, def.Kind())
	assert.Equal(t, database.KindPostgres, cfg.Connections[0].Kind())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Preferences.DefaultBackend)
	assert.Equal(t, 30*time.Second, cfg.Preferences.QueryTimeout)
	assert.True(t, filepath.IsAbs(cfg.Preferences.LogFile))
	assert.Nil(t, cfg.DefaultConnection())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DBNAV_PREFERENCES_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Preferences.LogLevel)
}

func TestConnection_FormAndDisplay(t *testing.T) {
	c := Connection{Driver: "mysql", Host: "db", Port: 3307, Username: "app", Database: "shop"}

	assert.Equal(t, database.Form{Host: "db", Port: "3307", Username: "app", Password: "pw", Database: "shop"}, c.Form("pw"))
	assert.Equal(t, "app@db:3307/shop (MySQL)", c.DisplayString())
	assert.Equal(t, "", Connection{Host: "h"}.Form("").Port)
}

func TestConnection_ResolvePassword(t *testing.T) {
	keyring.MockInit()

	c := Connection{Name: "shop", Host: "db", Port: 3307, Username: "app", Keyring: true}

	pw, err := c.ResolvePassword()
	require.NoError(t, err)
	assert.Empty(t, pw, "missing secret is not an error")

	require.NoError(t, keyring.Set(KeyringService, c.KeyringUser(), "s3cret"))
	pw, err = c.ResolvePassword()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)

	c.Keyring = false
	pw, err = c.ResolvePassword()
	require.NoError(t, err)
	assert.Empty(t, pw)
}
