package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/joacominatel/dbnav/internal/database"
)

// Config represents the application configuration.
type Config struct {
	Connections []Connection `mapstructure:"connections" yaml:"connections"`
	Preferences Preferences  `mapstructure:"preferences" yaml:"preferences"`
}

// Connection is a profile that pre-fills the connection form. Passwords are
// never read from the file; see ResolvePassword.
type Connection struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Driver   string `mapstructure:"driver" yaml:"driver"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Database string `mapstructure:"database" yaml:"database"`
	Username string `mapstructure:"username" yaml:"username"`
	Keyring  bool   `mapstructure:"keyring" yaml:"keyring"`
}

// Preferences holds user preferences.
type Preferences struct {
	DefaultBackend    string        `mapstructure:"default_backend" yaml:"default_backend"`
	DefaultConnection string        `mapstructure:"default_connection" yaml:"default_connection"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
	QueryTimeout      time.Duration `mapstructure:"query_timeout" yaml:"query_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`
	LogFile           string        `mapstructure:"log_file" yaml:"log_file"`
}

// Kind returns the profile's backend kind, defaulting to postgres.
func (c Connection) Kind() database.Kind {
	if c.Driver == "" {
		return database.KindPostgres
	}
	return database.Kind(c.Driver)
}

// Form returns the connection form text for the profile.
func (c Connection) Form(password string) database.Form {
	f := database.Form{
		Host:     c.Host,
		Username: c.Username,
		Password: password,
		Database: c.Database,
	}
	if c.Port > 0 {
		f.Port = strconv.Itoa(c.Port)
	}
	return f
}

// DisplayString returns a human-readable summary of the connection.
func (c Connection) DisplayString() string {
	s := c.Host
	if c.Port > 0 {
		s += ":" + strconv.Itoa(c.Port)
	}
	if c.Database != "" {
		s += "/" + c.Database
	}
	if c.Username != "" {
		s = c.Username + "@" + s
	}
	return fmt.Sprintf("%s (%s)", s, c.Kind().Label())
}

// Find returns the profile with the given name.
func (cfg *Config) Find(name string) (*Connection, bool) {
	for i := range cfg.Connections {
		if cfg.Connections[i].Name == name {
			return &cfg.Connections[i], true
		}
	}
	return nil, false
}

// DefaultConnection returns the configured default profile, or the first
// one, or nil when there are none.
func (cfg *Config) DefaultConnection() *Connection {
	if len(cfg.Connections) == 0 {
		return nil
	}
	if c, ok := cfg.Find(cfg.Preferences.DefaultConnection); ok {
		return c
	}
	return &cfg.Connections[0]
}
