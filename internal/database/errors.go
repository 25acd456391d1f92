package database

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConnected is returned when an operation needs a connection and none
// is open.
var ErrNotConnected = errors.New("not connected")

// ErrCanceled is wrapped by errors caused by a canceled or expired context.
var ErrCanceled = errors.New("operation canceled")

// ConfigValidationError reports a connection form field that failed
// validation before any network activity.
type ConfigValidationError struct {
	Field  string
	Reason string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConnectionReason classifies why a connection attempt failed.
type ConnectionReason int

const (
	ReasonUnknown ConnectionReason = iota
	ReasonNetwork
	ReasonAuth
	ReasonProtocol
)

func (r ConnectionReason) String() string {
	switch r {
	case ReasonNetwork:
		return "network_failure"
	case ReasonAuth:
		return "auth_failure"
	case ReasonProtocol:
		return "protocol_mismatch"
	default:
		return "unknown"
	}
}

// ConnectionError is returned by Adapter.Connect.
type ConnectionError struct {
	Reason  ConnectionReason
	Message string
	Cause   error
}

func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("connection failed [%s] %s: %v", e.Reason, e.Message, e.Cause)
	}
	return fmt.Sprintf("connection failed [%s] %s", e.Reason, e.Message)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// QueryError is an error reported by the engine while running a statement
// or a catalog query.
type QueryError struct {
	Message string
	// Position is the 1-based character offset into the statement, when the
	// engine reports one.
	Position *int
	Cause    error
}

func (e *QueryError) Error() string {
	if e.Position != nil {
		return fmt.Sprintf("%s (at character %d)", e.Message, *e.Position)
	}
	return e.Message
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}

// InternalError wraps an unexpected driver failure.
type InternalError struct {
	Op    string
	Cause error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error during %s: %v", e.Op, e.Cause)
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

// UnknownBackendError is returned when no adapter is registered for a kind.
type UnknownBackendError struct {
	Kind Kind
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown backend %q", string(e.Kind))
}

// NewConnectionError builds a *ConnectionError.
func NewConnectionError(reason ConnectionReason, msg string, cause error) *ConnectionError {
	return &ConnectionError{Reason: reason, Message: msg, Cause: cause}
}

// NewQueryError builds a *QueryError without position.
func NewQueryError(msg string, cause error) *QueryError {
	return &QueryError{Message: msg, Cause: cause}
}

// Internal wraps cause as an *InternalError, unless it is already part of the
// taxonomy or a context error.
func Internal(op string, cause error) error {
	if cause == nil {
		return nil
	}
	if IsCanceled(cause) {
		return Canceled(cause)
	}
	if IsQueryError(cause) || IsConnectionError(cause) || IsInternal(cause) {
		return cause
	}
	return &InternalError{Op: op, Cause: cause}
}

// Canceled wraps a context error so that it matches ErrCanceled.
func Canceled(cause error) error {
	if errors.Is(cause, ErrCanceled) {
		return cause
	}
	return fmt.Errorf("%w: %w", ErrCanceled, cause)
}

// IsCanceled reports whether err stems from a canceled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// IsConnectionError reports whether err is a *ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// IsQueryError reports whether err is a *QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}

// IsInternal reports whether err is an *InternalError.
func IsInternal(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}

// IsValidation reports whether err is a *ConfigValidationError.
func IsValidation(err error) bool {
	var ve *ConfigValidationError
	return errors.As(err, &ve)
}

// ReasonOf returns the connection failure reason carried by err, and false
// when err is not a *ConnectionError.
func ReasonOf(err error) (ConnectionReason, bool) {
	var ce *ConnectionError
	if errors.As(err, &ce) {
		return ce.Reason, true
	}
	return ReasonUnknown, false
}
