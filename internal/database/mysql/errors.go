package mysql

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/joacominatel/dbnav/internal/database"
)

// MySQL server error numbers relevant to connection classification.
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	errTooManyConnections = 1040
	errDBAccessDenied     = 1044
	errAccessDenied       = 1045
	errUnknownDatabase    = 1049
	errHostNotPrivileged  = 1130
	errAccessDeniedNoPass = 1698
)

// mapConnectError classifies a failure from the initial ping.
func mapConnectError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return database.Canceled(err)
	}

	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case errAccessDenied, errDBAccessDenied, errAccessDeniedNoPass, errUnknownDatabase, errHostNotPrivileged:
			return database.NewConnectionError(database.ReasonAuth, myErr.Message, err)
		case errTooManyConnections:
			return database.NewConnectionError(database.ReasonNetwork, myErr.Message, err)
		}
		return database.NewConnectionError(database.ReasonUnknown, myErr.Message, err)
	}

	switch {
	case errors.Is(err, gomysql.ErrNativePassword),
		errors.Is(err, gomysql.ErrCleartextPassword),
		errors.Is(err, gomysql.ErrOldPassword):
		return database.NewConnectionError(database.ReasonAuth, "authentication method not allowed", err)
	case errors.Is(err, gomysql.ErrOldProtocol),
		errors.Is(err, gomysql.ErrMalformPkt),
		errors.Is(err, gomysql.ErrNoTLS),
		errors.Is(err, gomysql.ErrUnknownPlugin),
		errors.Is(err, gomysql.ErrPktSync):
		return database.NewConnectionError(database.ReasonProtocol, "server speaks an incompatible protocol", err)
	}

	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.As(err, &dnsErr):
		return database.NewConnectionError(database.ReasonNetwork, fmt.Sprintf("cannot resolve host %s", dnsErr.Name), err)
	case errors.As(err, &netErr), errors.Is(err, driver.ErrBadConn), errors.Is(err, gomysql.ErrInvalidConn):
		return database.NewConnectionError(database.ReasonNetwork, "server unreachable", err)
	case errors.Is(err, context.DeadlineExceeded):
		return database.NewConnectionError(database.ReasonNetwork, "connection timed out", err)
	}

	return database.NewConnectionError(database.ReasonUnknown, "connection failed", err)
}

// mapQueryError converts an error raised while running SQL.
func mapQueryError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return database.Canceled(err)
	}

	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		return &database.QueryError{Message: myErr.Message, Cause: err}
	}

	return database.Internal(op, err)
}
