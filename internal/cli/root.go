// Package cli provides the dbnav command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joacominatel/dbnav/internal/app"
	"github.com/joacominatel/dbnav/internal/config"
	"github.com/joacominatel/dbnav/internal/database"
	"github.com/joacominatel/dbnav/internal/database/mysql"
	"github.com/joacominatel/dbnav/internal/database/postgres"
	"github.com/joacominatel/dbnav/internal/database/sqlite"
	"github.com/joacominatel/dbnav/internal/logger"
	"github.com/joacominatel/dbnav/internal/session"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

type options struct {
	configPath string
	logLevel   string
	backend    string
}

// NewRootCmd creates the root command. Without a subcommand it starts the
// interactive navigator.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "dbnav",
		Short: "Browse PostgreSQL and MySQL databases from the terminal",
		Long: `dbnav connects to a database server, lists its databases and tables,
describes table columns and runs ad-hoc SQL.

Preferences and connection profiles are read from ~/.dbnav/config.yaml.
Profile passwords come from the OS keyring, never from the file.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.dbnav/config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error, off")
	root.PersistentFlags().StringVarP(&opts.backend, "backend", "b", "", "backend: postgres, mysql or sqlite")

	_ = root.RegisterFlagCompletionFunc("backend", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"postgres", "mysql", "sqlite"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(newQueryCmd(opts))
	root.AddCommand(newBackendsCmd(opts))
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// runtime is the wired object graph shared by every command.
type runtime struct {
	cfg      *config.Config
	log      zerolog.Logger
	backends *database.Backends
	service  *app.Service
	closers  []io.Closer
}

func newRuntime(opts *options, stderr io.Writer) (*runtime, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Preferences.LogLevel = opts.logLevel
	}
	if opts.backend != "" {
		cfg.Preferences.DefaultBackend = opts.backend
	}

	rt := &runtime{cfg: cfg, log: logger.Discard()}
	if logger.ParseLevel(cfg.Preferences.LogLevel) != zerolog.Disabled && cfg.Preferences.LogFile != "" {
		f, err := logger.OpenFile(cfg.Preferences.LogFile)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: logging disabled: %v\n", err)
		} else {
			rt.closers = append(rt.closers, f)
			rt.log = logger.New(logger.Config{
				Level:  cfg.Preferences.LogLevel,
				Format: cfg.Preferences.LogFormat,
				Output: f,
			})
		}
	}

	rt.backends = database.NewBackends(
		postgres.New(rt.log),
		mysql.New(rt.log),
		sqlite.New(rt.log),
	)
	if kind := database.Kind(cfg.Preferences.DefaultBackend); kind != "" && !rt.backends.Has(kind) {
		rt.Close()
		return nil, &database.UnknownBackendError{Kind: kind}
	}
	rt.service = app.NewService(app.NewRegistry(rt.backends, rt.log), rt.log)
	return rt, nil
}

func (rt *runtime) controller() *session.Controller {
	return session.NewController(rt.service, rt.backends.Kinds(), session.Options{
		ConnectTimeout: rt.cfg.Preferences.ConnectTimeout,
		QueryTimeout:   rt.cfg.Preferences.QueryTimeout,
	}, rt.log)
}

func (rt *runtime) Close() {
	if rt.service != nil {
		rt.service.Disconnect()
	}
	for _, c := range rt.closers {
		_ = c.Close()
	}
}

// Main runs the CLI and returns the process exit code.
func Main(ctx context.Context) int {
	if err := Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
