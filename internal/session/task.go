package session

import (
	"context"

	"github.com/joacominatel/dbnav/internal/database"
)

// Task is a pending effect ready to run on a worker.
type Task struct {
	ID     string
	Effect Effect

	ctx     context.Context
	cancel  context.CancelFunc
	backend Backend
}

// Run executes the effect. It stops early when either ctx or the task's own
// context (canceled by Cancel, Quit or its timeout) is done.
func (t *Task) Run(ctx context.Context) Outcome {
	stop := context.AfterFunc(ctx, t.cancel)
	defer stop()
	defer t.cancel()

	out := Outcome{ID: t.ID, Effect: t.Effect}
	run := t.ctx

	switch e := t.Effect.(type) {
	case Connect:
		out.Databases, out.Err = t.backend.Connect(run, e.Config)
	case UseDatabase:
		out.Tables, out.Connected, out.Err = t.backend.UseDatabase(run, e.Database.Name)
	case ListTables:
		out.Tables, out.Err = t.backend.ListTables(run)
	case Describe:
		out.Columns, out.Err = t.backend.DescribeTable(run, e.Table)
	case Execute:
		out.Result, out.Err = t.backend.ExecuteQuery(run, e.SQL)
	default:
		out.Err = database.Internal("run task", errUnknownEffect)
	}
	return out
}
