package cli

import (
	"github.com/spf13/cobra"

	"tiger-client/internal/config"
)

type configEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change client settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show [key]",
		Short: "Print the effective settings (file, then TIGER_* environment)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := config.Keys()
			if len(args) == 1 {
				keys = args
			}
			out := make([]configEntry, 0, len(keys))
			for _, k := range keys {
				v, err := app.cfg.Get(k)
				if err != nil {
					return writeErr(cmd, err)
				}
				out = append(out, configEntry{Key: k, Value: v})
			}
			return writeOut(cmd, app, map[string]any{
				"path":     config.Path(),
				"settings": out,
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting and write the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg
			if err := cfg.Set(args[0], args[1]); err != nil {
				return writeErr(cmd, err)
			}
			if err := config.Save(cfg); err != nil {
				return writeErr(cmd, err)
			}
			app.cfg = cfg
			v, _ := cfg.Get(args[0])
			return writeOut(cmd, app, configEntry{Key: args[0], Value: v})
		},
	})

	return cmd
}
