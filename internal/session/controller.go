package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joacominatel/dbnav/internal/database"
	"github.com/rs/zerolog"
)

// Backend performs the calls behind effects. *app.Service implements it.
type Backend interface {
	Connect(ctx context.Context, cfg database.ConnectionConfig) ([]database.Database, error)
	UseDatabase(ctx context.Context, name string) ([]database.Table, bool, error)
	ListTables(ctx context.Context) ([]database.Table, error)
	DescribeTable(ctx context.Context, t database.Table) ([]database.Column, error)
	ExecuteQuery(ctx context.Context, query string) (*database.QueryResult, error)
	Disconnect()
	Connected() bool
}

// Options tunes the Controller.
type Options struct {
	// ConnectTimeout bounds Connect and the reconnect part of UseDatabase.
	ConnectTimeout time.Duration
	// QueryTimeout bounds catalog reads and statements.
	QueryTimeout time.Duration
}

// Controller is the single entry point for intents.
type Controller struct {
	backend Backend
	opts    Options
	log     zerolog.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// NewController starts a session on the backend selection screen.
func NewController(backend Backend, kinds []database.Kind, opts Options, log zerolog.Logger) *Controller {
	return &Controller{
		backend: backend,
		opts:    opts,
		log:     log,
		state:   Initial(kinds),
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit applies an intent. When the transition needs backend work, the
// returned Task must be run and its Outcome passed to Resolve.
func (c *Controller) Submit(in Intent) (State, *Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state
	next, eff := Transition(prev, in)

	if prev.Pending != nil && (next.Pending == nil || next.Pending.ID != prev.Pending.ID) {
		c.cancelPending()
	}

	var task *Task
	switch e := eff.(type) {
	case nil:
	case Release:
		c.backend.Disconnect()
	default:
		if ce, ok := e.(Connect); ok && ce.Config.Timeout == 0 {
			ce.Config.Timeout = c.opts.ConnectTimeout
			eff = ce
		}
		task = c.newTask(eff)
		next.Pending.ID = task.ID
		next.Pending.Effect = eff
	}

	c.state = next
	c.log.Debug().
		Str("intent", in.intent()).
		Stringer("from", prev.Screen).
		Stringer("to", next.Screen).
		Bool("busy", next.Busy()).
		Msg("transition")
	return next, task
}

// Resolve applies a task outcome. Outcomes of canceled or superseded tasks
// are discarded; a connection they opened is released when the session no
// longer expects one.
func (c *Controller) Resolve(o Outcome) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Pending == nil || c.state.Pending.ID != o.ID {
		c.log.Debug().Str("task", o.ID).Msg("discarded stale outcome")
		if c.state.Pending == nil {
			c.reconcileStale(o)
		}
		return c.state
	}

	c.cancelPending()
	prev := c.state
	c.state = Resolve(c.state, o)

	ev := c.log.Debug()
	if o.Err != nil {
		ev = c.log.Info().Err(o.Err)
	}
	ev.Str("effect", o.Effect.effect()).
		Stringer("from", prev.Screen).
		Stringer("to", c.state.Screen).
		Msg("resolved")
	return c.state
}

// Dispatch submits an intent and, if needed, runs its task to completion on
// the calling goroutine.
func (c *Controller) Dispatch(ctx context.Context, in Intent) State {
	state, task := c.Submit(in)
	if task == nil {
		return state
	}
	return c.Resolve(task.Run(ctx))
}

// reconcileStale keeps an idle session in line with the registry after a
// canceled task finished anyway.
func (c *Controller) reconcileStale(o Outcome) {
	switch {
	case !c.state.Connected:
		if o.Err == nil && opensConnection(o.Effect) {
			c.backend.Disconnect()
		}

	case o.Err == nil:
		// The switch went through before the cancel reached it.
		if u, ok := o.Effect.(UseDatabase); ok {
			c.state.Config = c.state.Config.WithDatabase(u.Database.Name)
		}

	case !o.Connected:
		if _, ok := o.Effect.(UseDatabase); ok && !c.backend.Connected() {
			c.state = failed(c.state.disconnected(), ScreenInputConnection, o.Err)
		}
	}
}

func (c *Controller) cancelPending() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) newTask(eff Effect) *Task {
	timeout := c.opts.QueryTimeout
	switch eff.(type) {
	case Connect:
		timeout = c.opts.ConnectTimeout
	case UseDatabase:
		if c.opts.ConnectTimeout > 0 && c.opts.QueryTimeout > 0 {
			timeout = c.opts.ConnectTimeout + c.opts.QueryTimeout
		} else {
			timeout = 0
		}
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	c.cancel = cancel

	return &Task{
		ID:      uuid.NewString(),
		Effect:  eff,
		ctx:     ctx,
		cancel:  cancel,
		backend: c.backend,
	}
}

func opensConnection(eff Effect) bool {
	switch eff.(type) {
	case Connect, UseDatabase:
		return true
	}
	return false
}
