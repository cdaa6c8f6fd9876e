package main

import (
	"fmt"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gridview/internal/core"
	"github.com/JonMunkholm/gridview/internal/tui"
)

func newTablesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the registered tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tGROUP\tLABEL\tCOLUMNS")
			for _, t := range a.service.ListTables() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", t.Key, t.Group, t.Label, len(t.Columns))
			}
			return w.Flush()
		},
	}
}

func newPrintCmd(a *app) *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "print <table>",
		Short: "Print one page of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			def, err := a.service.Table(args[0])
			if err != nil {
				return userError(err)
			}
			res, err := a.service.QueryView(cmd.Context(), args[0], req)
			if err != nil {
				return userError(err)
			}
			return tui.PrintView(cmd.OutOrStdout(), def, res)
		},
	}
	flags.register(cmd)
	return cmd
}

func newBrowseCmd(a *app) *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "browse [table]",
		Short: "Browse a table interactively, picking one from a menu if none is named",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}

			var table string
			if len(args) == 1 {
				table = args[0]
			} else {
				picker := tui.NewPicker(a.service)
				if _, err := tea.NewProgram(picker).Run(); err != nil {
					return err
				}
				if table = picker.Chosen(); table == "" {
					return nil
				}
			}

			b, err := tui.NewBrowser(cmd.Context(), a.service, table, req)
			if err != nil {
				return userError(err)
			}
			defer b.Close()

			_, err = tea.NewProgram(b, tea.WithAltScreen()).Run()
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

// userError replaces err with its user-facing message and code.
func userError(err error) error {
	msg := core.MapError(err)
	return fmt.Errorf("%s (%s): %w", msg.Message, msg.Code, err)
}
