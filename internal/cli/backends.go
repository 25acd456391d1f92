package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joacominatel/dbnav/internal/database"
	"github.com/spf13/cobra"
)

func newBackendsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the available database backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"backend", "name", "default port", "default database", "status"})
			for _, k := range rt.backends.Kinds() {
				port := "-"
				if p := k.DefaultPort(); p > 0 {
					port = fmt.Sprint(p)
				}
				status := "supported"
				if k == database.KindSQLite {
					status = "preview"
				}
				t.AppendRow(table.Row{string(k), k.Label(), port, k.DefaultDatabase(), status})
			}
			t.Render()
			return nil
		},
	}
}
