package app

import (
	"context"
	"sync"

	"github.com/joacominatel/dbnav/internal/database"
	"github.com/rs/zerolog"
)

// Registry owns the session's single live connection.
type Registry struct {
	backends *database.Backends
	log      zerolog.Logger

	mu   sync.Mutex
	conn database.Conn
	cfg  database.ConnectionConfig
}

// NewRegistry creates an empty registry backed by the given adapters.
func NewRegistry(backends *database.Backends, log zerolog.Logger) *Registry {
	return &Registry{backends: backends, log: log}
}

// Backends returns the adapter catalog.
func (r *Registry) Backends() *database.Backends {
	return r.backends
}

// Open closes any held connection and opens a new one for cfg.
//
// If ctx is canceled while the adapter is connecting, a connection that
// completes anyway is closed and the cancellation is returned.
func (r *Registry) Open(ctx context.Context, cfg database.ConnectionConfig) (database.Conn, error) {
	adapter, err := r.backends.Get(cfg.Kind)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.closeLocked()

	conn, err := adapter.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		conn.Close()
		r.log.Debug().Str("target", cfg.String()).Msg("discarded connection opened after cancel")
		return nil, database.Canceled(ctxErr)
	}

	r.conn, r.cfg = conn, cfg
	return conn, nil
}

// Current returns the live connection, if any.
func (r *Registry) Current() (database.Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn, r.conn != nil
}

// Config returns the config of the live connection.
func (r *Registry) Config() (database.ConnectionConfig, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg, r.conn != nil
}

// Close releases the live connection. Calling it with nothing open is a
// no-op.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
}

func (r *Registry) closeLocked() {
	if r.conn == nil {
		return
	}
	r.conn.Close()
	r.log.Debug().Str("target", r.cfg.String()).Msg("connection released")
	r.conn = nil
	r.cfg = database.ConnectionConfig{}
}
