package cli

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joacominatel/dbnav/internal/session"
	"github.com/joacominatel/dbnav/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errNoTTY = errors.New("dbnav needs an interactive terminal; use 'dbnav query' in scripts")

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func runTUI(cmd *cobra.Command, opts *options) error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return errNoTTY
	}

	rt, err := newRuntime(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	ctrl := rt.controller()
	rt.log.Info().Str("version", Version).Msg("session started")

	p := tea.NewProgram(tui.NewModel(ctrl, rt.cfg),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)
	_, err = p.Run()

	// Covers exits that did not go through the Quit intent, such as a signal.
	ctrl.Dispatch(cmd.Context(), session.Quit{})
	rt.log.Info().Msg("session ended")

	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
