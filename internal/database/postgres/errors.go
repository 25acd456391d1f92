package postgres

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joacominatel/dbnav/internal/database"
)

// PostgreSQL SQLSTATE codes relevant to connection classification.
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgClassInvalidAuthorization = "28"
	pgErrInvalidCatalogName     = "3D000"
	pgErrProtocolViolation      = "08P01"
	pgErrFeatureNotSupported    = "0A000"
	pgErrTooManyConnections     = "53300"
	pgErrQueryCanceled          = "57014"
)

// mapConnectError classifies a failure returned by pgx.ConnectConfig.
func mapConnectError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return database.Canceled(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, pgClassInvalidAuthorization):
			return database.NewConnectionError(database.ReasonAuth, "authentication rejected", err)
		case pgErr.Code == pgErrInvalidCatalogName:
			return database.NewConnectionError(database.ReasonAuth, fmt.Sprintf("database not accessible: %s", pgErr.Message), err)
		case pgErr.Code == pgErrProtocolViolation, pgErr.Code == pgErrFeatureNotSupported:
			return database.NewConnectionError(database.ReasonProtocol, pgErr.Message, err)
		case pgErr.Code == pgErrTooManyConnections:
			return database.NewConnectionError(database.ReasonNetwork, pgErr.Message, err)
		}
		return database.NewConnectionError(database.ReasonUnknown, pgErr.Message, err)
	}

	var netErr net.Error
	var dnsErr *net.DNSError
	var opErr *net.OpError
	switch {
	case errors.As(err, &dnsErr):
		return database.NewConnectionError(database.ReasonNetwork, fmt.Sprintf("cannot resolve host %s", dnsErr.Name), err)
	case isTLSFailure(err):
		return database.NewConnectionError(database.ReasonProtocol, "TLS negotiation failed", err)
	case errors.As(err, &opErr), errors.As(err, &netErr):
		return database.NewConnectionError(database.ReasonNetwork, "server unreachable", err)
	case errors.Is(err, context.DeadlineExceeded):
		return database.NewConnectionError(database.ReasonNetwork, "connection timed out", err)
	}

	return database.NewConnectionError(database.ReasonUnknown, "connection failed", err)
}

func isTLSFailure(err error) bool {
	var recErr tls.RecordHeaderError
	if errors.As(err, &recErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "refused tls") ||
		strings.Contains(msg, "tls:") ||
		strings.Contains(msg, "ssl is not enabled")
}

// mapQueryError converts an error raised while running SQL into the
// database error taxonomy.
func mapQueryError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return database.Canceled(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgErrQueryCanceled {
			return database.Canceled(err)
		}
		qe := &database.QueryError{Message: pgErr.Message, Cause: err}
		if pgErr.Position > 0 {
			pos := int(pgErr.Position)
			qe.Position = &pos
		}
		return qe
	}

	return database.Internal(op, err)
}
