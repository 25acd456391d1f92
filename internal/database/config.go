package database

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Form holds the raw text entered in the connection form.
type Form struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// ConnectionConfig holds validated connection parameters.
type ConnectionConfig struct {
	Kind     Kind
	Host     string
	Port     int
	Username string
	Password string
	Database string
	// Timeout bounds the dial and handshake. Zero means the driver default.
	Timeout time.Duration
}

// ParseConnectionConfig validates form text for the given engine.
// Empty port and database fields take the engine defaults.
func ParseConnectionConfig(kind Kind, f Form) (ConnectionConfig, error) {
	switch kind {
	case KindPostgres, KindMySQL, KindSQLite:
	default:
		return ConnectionConfig{}, &ConfigValidationError{Field: "backend", Reason: fmt.Sprintf("unsupported backend %q", string(kind))}
	}

	cfg := ConnectionConfig{
		Kind:     kind,
		Host:     strings.TrimSpace(f.Host),
		Username: strings.TrimSpace(f.Username),
		Password: f.Password,
		Database: strings.TrimSpace(f.Database),
	}

	if cfg.Host == "" {
		field := "host"
		if kind == KindSQLite {
			field = "path"
		}
		return ConnectionConfig{}, &ConfigValidationError{Field: field, Reason: "must not be empty"}
	}

	port := strings.TrimSpace(f.Port)
	switch {
	case kind == KindSQLite:
		if port != "" {
			return ConnectionConfig{}, &ConfigValidationError{Field: "port", Reason: "not used by sqlite"}
		}
	case port == "":
		cfg.Port = kind.DefaultPort()
	default:
		n, err := strconv.Atoi(port)
		if err != nil {
			return ConnectionConfig{}, &ConfigValidationError{Field: "port", Reason: fmt.Sprintf("%q is not a number", port)}
		}
		if n < 1 || n > 65535 {
			return ConnectionConfig{}, &ConfigValidationError{Field: "port", Reason: fmt.Sprintf("%d is out of range 1-65535", n)}
		}
		cfg.Port = n
	}

	if cfg.Database == "" {
		cfg.Database = kind.DefaultDatabase()
	}

	return cfg, nil
}

// WithDatabase returns a copy of the config targeting another database.
func (c ConnectionConfig) WithDatabase(name string) ConnectionConfig {
	c.Database = name
	return c
}

// Address returns host:port, or the file path for sqlite.
func (c ConnectionConfig) Address() string {
	if c.Kind == KindSQLite {
		return c.Host
	}
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// String returns a human-readable summary. The password is never included.
func (c ConnectionConfig) String() string {
	if c.Kind == KindSQLite {
		return "sqlite://" + c.Host
	}
	s := c.Address()
	if c.Database != "" {
		s += "/" + c.Database
	}
	if c.Username != "" {
		s = c.Username + "@" + s
	}
	return string(c.Kind) + "://" + s
}

// ParseTarget reads a one-line connection target such as
// "user:secret@db.local:5433/shop" or "postgres://user@host/db" into form
// fields. For sqlite the whole text is the file path.
func ParseTarget(kind Kind, target string) (Form, error) {
	target = strings.TrimSpace(target)
	if kind == KindSQLite {
		return Form{Host: strings.TrimPrefix(target, "sqlite://")}, nil
	}
	if !strings.Contains(target, "://") {
		target = string(kind) + "://" + target
	}

	u, err := url.Parse(target)
	if err != nil {
		return Form{}, &ConfigValidationError{Field: "target", Reason: "not a valid connection string"}
	}

	f := Form{
		Host:     u.Hostname(),
		Port:     u.Port(),
		Database: strings.TrimPrefix(u.Path, "/"),
	}
	if u.User != nil {
		f.Username = u.User.Username()
		f.Password, _ = u.User.Password()
	}
	return f, nil
}
