package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/joacominatel/dbnav/internal/database"
)

// Message turns an error into a single line fit for the status area.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var (
		ve *database.ConfigValidationError
		ce *database.ConnectionError
		qe *database.QueryError
		ue *database.UnknownBackendError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &ce):
		return connectionMessage(ce)
	case errors.As(err, &qe):
		return "Query failed: " + qe.Error()
	case errors.As(err, &ue):
		return fmt.Sprintf("Backend %s is not available", ue.Kind.Label())
	case errors.Is(err, database.ErrNotConnected):
		return "Not connected"
	case errors.Is(err, context.DeadlineExceeded):
		return "Operation timed out"
	case database.IsCanceled(err):
		return "Operation canceled"
	case database.IsInternal(err):
		return "Unexpected database error, see log for details"
	default:
		return err.Error()
	}
}

func connectionMessage(ce *database.ConnectionError) string {
	switch ce.Reason {
	case database.ReasonNetwork:
		return fmt.Sprintf("Cannot reach server: %s", ce.Message)
	case database.ReasonAuth:
		return fmt.Sprintf("Authentication failed: %s", ce.Message)
	case database.ReasonProtocol:
		return fmt.Sprintf("Protocol mismatch: %s", ce.Message)
	default:
		return fmt.Sprintf("Connection failed: %s", ce.Message)
	}
}
