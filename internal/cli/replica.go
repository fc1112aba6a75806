package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"tiger-client/internal/gateway"
	"tiger-client/internal/keymap"
	"tiger-client/internal/selector"
)

func newStateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Sync with the engine and print the replicated tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.connect(cmd.Context(), nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer c.Close()
			return writeOut(cmd, app, c.st.Raw())
		},
	}
}

func newViewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Sync with the engine and print the derived view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.connect(cmd.Context(), nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer c.Close()
			return writeOut(cmd, app, selector.Compute(c.st.Snapshot()))
		},
	}
}

type invokeResult struct {
	Seq       uint64         `json:"seq,omitempty"`
	Command   string         `json:"command,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
	Cancelled bool           `json:"cancelled,omitempty"`
	View      *selector.View `json:"view"`
	Textures  []textureCount `json:"textures,omitempty"`
}

type textureCount struct {
	Path  string `json:"path"`
	Count uint64 `json:"count"`
}

func newInvokeCmd(app *App) *cobra.Command {
	var picks []string
	var save string

	cmd := &cobra.Command{
		Use:   "invoke <action> [name=value...]",
		Short: "Run one action against the engine and print the resulting view",
		Long: strings.TrimSpace(`
Values are parsed as JSON when they parse, and taken as strings otherwise:
  tiger invoke select_animation name=walk shift=false ctrl=false
  tiger invoke nudge_selection direction=Left largeNudge=true
  tiger invoke create_hitbox position=[4,-2]

Actions that normally show a file picker (new_document, open_documents,
save_as, import_frames) take their answer from --pick and --save-path when
the path argument is omitted. Without an answer the action is cancelled.
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := args[0]
			params, err := gateway.ParseArgs(args[1:])
			if err != nil {
				return writeErr(cmd, err)
			}

			ctx := cmd.Context()
			c, err := app.connect(ctx, gateway.StaticDialogs{Open: picks, Save: save})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer c.Close()

			call, handled, err := c.sessions.Invoke(ctx, action, params)
			if !handled {
				call, err = c.gw.Dispatch(ctx, action, params)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			res := invokeResult{Cancelled: call == nil}
			if call != nil {
				if err := call.Wait(ctx); err != nil {
					return writeErr(cmd, err)
				}
				res.Seq = call.Seq
				res.Command = call.Request.Command
				res.Args = call.Request.Args
			}
			res.View = selector.Compute(c.st.Snapshot())
			for _, e := range c.textures.Entries() {
				res.Textures = append(res.Textures, textureCount{Path: e.Path, Count: e.Count})
			}
			return writeOut(cmd, app, res)
		},
	}

	cmd.Flags().StringArrayVar(&picks, "pick", nil, "Answer open pickers with this path (repeatable)")
	cmd.Flags().StringVar(&save, "save-path", "", "Answer save pickers with this path")
	return cmd
}

type commandOut struct {
	Name string   `json:"name"`
	Args []argOut `json:"args"`
}

type argOut struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func newCommandsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "commands [name]",
		Short: "List the engine command surface",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list := gateway.Commands()
			if len(args) == 1 {
				c, ok := gateway.LookupCommand(args[0])
				if !ok {
					return writeErr(cmd, errNotFound("command", args[0]))
				}
				list = []gateway.Command{c}
			}
			out := make([]commandOut, 0, len(list))
			for _, c := range list {
				co := commandOut{Name: c.Name, Args: []argOut{}}
				for _, a := range c.Args {
					co.Args = append(co.Args, argOut{Name: a.Name, Kind: string(a.Kind)})
				}
				out = append(out, co)
			}
			return writeOut(cmd, app, out)
		},
	}
}

type keyOut struct {
	Chord  string         `json:"chord"`
	Action string         `json:"action"`
	Args   map[string]any `json:"args,omitempty"`
	Help   string         `json:"help,omitempty"`
}

func newKeysCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the default keyboard shortcuts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := keymap.Default().Entries()
			out := make([]keyOut, 0, len(entries))
			for _, e := range entries {
				out = append(out, keyOut{
					Chord:  e.Chord.String(),
					Action: e.Binding.Action,
					Args:   e.Binding.Args,
					Help:   e.Binding.Help,
				})
			}
			return writeOut(cmd, app, out)
		},
	}
}
