package cli

import (
	"github.com/spf13/cobra"

	"tiger-client/internal/journal"
	"tiger-client/internal/selector"
)

func newJournalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect recorded sessions",
	}

	open := func(cmd *cobra.Command) (journal.Log, error) {
		return journal.Open(cmd.Context(), app.journalPath())
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := open(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.Close()
			sessions, err := l.Sessions(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if sessions == nil {
				sessions = []journal.SessionInfo{}
			}
			return writeOut(cmd, app, sessions)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <session-id>",
		Short: "Print every entry of one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := open(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.Close()
			entries, err := l.Entries(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if len(entries) == 0 {
				return writeErr(cmd, errNotFound("session", args[0]))
			}
			return writeOut(cmd, app, entries)
		},
	})

	var asView bool
	replay := &cobra.Command{
		Use:   "replay <session-id>",
		Short: "Rebuild the tree a session ended with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := open(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.Close()
			st, err := journal.Replay(cmd.Context(), l, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if asView {
				return writeOut(cmd, app, selector.Compute(st.Snapshot()))
			}
			return writeOut(cmd, app, st.Raw())
		},
	}
	replay.Flags().BoolVar(&asView, "view", false, "Print the derived view instead of the tree")
	cmd.AddCommand(replay)

	return cmd
}
