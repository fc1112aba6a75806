package cli

import (
	"github.com/spf13/cobra"

	"tiger-client/internal/keymap"
	"tiger-client/internal/tui"
)

func runTUI(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	dialogs := tui.NewDialogs()
	c, err := app.connect(ctx, dialogs)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer c.Close()

	return tui.Run(ctx, tui.Replica{
		Gateway:   c.gw,
		Sessions:  c.sessions,
		Dialogs:   dialogs,
		Keys:      keymap.Default(),
		Textures:  c.textures,
		Templates: c.templates,
	}, tui.Options{AltScreen: app.cfg.UI.AltScreen})
}
