package sqlite

import (
	"context"
	"errors"

	"github.com/joacominatel/dbnav/internal/database"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func mapConnectError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return database.Canceled(err)
	}

	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() & 0xff {
		case sqlite3.SQLITE_NOTADB:
			return database.NewConnectionError(database.ReasonProtocol, "file is not a SQLite database", err)
		case sqlite3.SQLITE_AUTH, sqlite3.SQLITE_PERM:
			return database.NewConnectionError(database.ReasonAuth, "access denied", err)
		}
	}
	return database.NewConnectionError(database.ReasonUnknown, "cannot open database", err)
}

func mapQueryError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return database.Canceled(err)
	}

	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		return &database.QueryError{Message: sqErr.Error(), Cause: err}
	}
	return database.Internal(op, err)
}
