package app

import (
	"context"
	"time"

	"github.com/joacominatel/dbnav/internal/database"
	"github.com/rs/zerolog"
)

const restoreTimeout = 10 * time.Second

// Service runs backend operations on behalf of the session.
type Service struct {
	registry *Registry
	log      zerolog.Logger
}

// NewService creates a new application service.
func NewService(registry *Registry, log zerolog.Logger) *Service {
	return &Service{registry: registry, log: log}
}

// Backends returns the kinds the service can connect to.
func (s *Service) Backends() []database.Kind {
	return s.registry.Backends().Kinds()
}

// Connect opens a connection for cfg and lists its databases. On failure no
// connection is held.
func (s *Service) Connect(ctx context.Context, cfg database.ConnectionConfig) ([]database.Database, error) {
	log := s.log.With().Str("backend", cfg.Kind.String()).Str("target", cfg.String()).Logger()

	conn, err := s.registry.Open(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("connect failed")
		return nil, err
	}

	dbs, err := conn.ListDatabases(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("list databases failed")
		s.registry.Close()
		return nil, err
	}

	log.Info().Int("databases", len(dbs)).Msg("session connected")
	return dbs, nil
}

// UseDatabase reconnects to the named database and lists its tables.
//
// On failure the previous connection is restored when possible; connected
// reports whether a connection is held afterwards.
func (s *Service) UseDatabase(ctx context.Context, name string) (tables []database.Table, connected bool, err error) {
	prev, ok := s.registry.Config()
	if !ok {
		return nil, false, database.ErrNotConnected
	}

	conn, _ := s.registry.Current()
	if prev.Database != name {
		conn, err = s.registry.Open(ctx, prev.WithDatabase(name))
		if err != nil {
			s.log.Warn().Err(err).Str("database", name).Msg("switch database failed")
			return nil, s.restore(ctx, prev), err
		}
	}

	tables, err = conn.ListTables(ctx, database.Database{Name: name})
	if err != nil {
		s.log.Warn().Err(err).Str("database", name).Msg("list tables failed")
		if prev.Database == name {
			return nil, true, err
		}
		return nil, s.restore(ctx, prev), err
	}
	return tables, true, nil
}

// restore reopens cfg, ignoring cancellation of the original request.
func (s *Service) restore(ctx context.Context, cfg database.ConnectionConfig) bool {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
	defer cancel()

	if _, err := s.registry.Open(rctx, cfg); err != nil {
		s.log.Error().Err(err).Str("target", cfg.String()).Msg("restore connection failed")
		return false
	}
	return true
}

// reopenIfClosed replaces conn when the driver closed it during a failed
// operation, so the registry never holds a dead handle.
func (s *Service) reopenIfClosed(ctx context.Context, conn database.Conn) {
	cr, ok := conn.(database.ClosedReporter)
	if !ok || !cr.IsClosed() {
		return
	}
	cur, held := s.registry.Current()
	cfg, _ := s.registry.Config()
	if !held || cur != conn {
		return
	}
	s.log.Warn().Str("target", cfg.String()).Msg("connection closed by driver, reopening")
	if !s.restore(ctx, cfg) {
		s.registry.Close()
	}
}

// ListTables lists the tables of the currently selected database.
func (s *Service) ListTables(ctx context.Context) ([]database.Table, error) {
	conn, cfg, err := s.current()
	if err != nil {
		return nil, err
	}
	tables, err := conn.ListTables(ctx, database.Database{Name: cfg.Database})
	if err != nil {
		s.reopenIfClosed(ctx, conn)
	}
	return tables, err
}

// DescribeTable returns column metadata for a table.
func (s *Service) DescribeTable(ctx context.Context, t database.Table) ([]database.Column, error) {
	conn, _, err := s.current()
	if err != nil {
		return nil, err
	}
	cols, err := conn.DescribeTable(ctx, t)
	if err != nil {
		s.logFailure(err, "describe table")
		s.reopenIfClosed(ctx, conn)
	}
	return cols, err
}

// ExecuteQuery runs a SQL statement and returns the results.
func (s *Service) ExecuteQuery(ctx context.Context, query string) (*database.QueryResult, error) {
	conn, _, err := s.current()
	if err != nil {
		return nil, err
	}
	res, err := conn.ExecuteQuery(ctx, query)
	if err != nil {
		s.logFailure(err, "execute query")
		s.reopenIfClosed(ctx, conn)
		return nil, err
	}
	s.log.Debug().Dur("took", res.Duration).Int("rows", len(res.Rows)).Msg("query executed")
	return res, nil
}

// Disconnect releases the connection.
func (s *Service) Disconnect() {
	s.registry.Close()
}

// Connected reports whether a connection is held.
func (s *Service) Connected() bool {
	_, ok := s.registry.Current()
	return ok
}

func (s *Service) current() (database.Conn, database.ConnectionConfig, error) {
	conn, ok := s.registry.Current()
	if !ok {
		return nil, database.ConnectionConfig{}, database.ErrNotConnected
	}
	cfg, _ := s.registry.Config()
	return conn, cfg, nil
}

func (s *Service) logFailure(err error, op string) {
	switch {
	case database.IsInternal(err):
		s.log.Error().Err(err).Msg(op)
	case database.IsCanceled(err):
		s.log.Debug().Err(err).Msg(op)
	default:
		s.log.Info().Err(err).Msg(op)
	}
}
