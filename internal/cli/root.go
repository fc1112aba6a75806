package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tiger-client/internal/config"
	"tiger-client/internal/format"
)

type App struct {
	EngineURL   string
	JournalPath string
	NoJournal   bool
	PrettyJSON  bool
	Format      string

	cfg config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "tiger",
		Short:        "Tiger sprite sheet client: replica inspector and engine CLI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive inspector
  tiger

  # Print the replicated tree
  tiger state --pretty

  # Issue one command and print the resulting view
  tiger invoke select_animation name=walk shift=false ctrl=false

  # Rebuild a past session from the journal
  tiger journal replay <session-id>
`),
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// glog reads its flags from the standard flag set; cobra has already
		// filled them in through AddGoFlagSet.
		if !flag.Parsed() {
			_ = flag.CommandLine.Parse(nil)
		}
		cfg, err := config.Load()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		if _, err := format.Parse(app.Format); err != nil {
			return writeErr(cmd, err)
		}
		return nil
	}

	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		glog.Flush()
	}

	addGlobalFlags(cmd.PersistentFlags(), app)

	cmd.AddCommand(newStateCmd(app))
	cmd.AddCommand(newViewCmd(app))
	cmd.AddCommand(newInvokeCmd(app))
	cmd.AddCommand(newCommandsCmd(app))
	cmd.AddCommand(newKeysCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newJournalCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func addGlobalFlags(fs *pflag.FlagSet, app *App) {
	fs.StringVar(&app.EngineURL, "engine", envOr("TIGER_ENGINE", ""), "Engine websocket URL (default: engine.url from config)")
	fs.StringVar(&app.JournalPath, "journal", envOr("TIGER_JOURNAL", ""), "Journal file; .jsonl selects the JSONL backend (default: journal.path from config)")
	fs.BoolVar(&app.NoJournal, "no-journal", false, "Do not record this session")
	fs.BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	fs.StringVar(&app.Format, "format", envOr("TIGER_FORMAT", "json"), "Output format (json|edn)")
	fs.AddGoFlagSet(flag.CommandLine)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
