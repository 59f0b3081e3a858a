package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/nathoo/statuscore/cli"
	"github.com/nathoo/statuscore/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the sandbox on an arena",
	Long: `Builds the arena (from --scenario, or a default field) and opens the
sandbox. The TUI is used on a terminal; --plain or piped output selects the
line REPL, and --script plays a command file back through it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer s.Close()

		script, _ := cmd.Flags().GetString("script")
		if script != "" {
			f, err := os.Open(script)
			if err != nil {
				return fmt.Errorf("opening script: %w", err)
			}
			defer f.Close()
			c := newCLI(s)
			c.In = f
			c.EchoInput = true
			c.Run(ctx)
			return nil
		}

		if cfg.Plain || !isatty.IsTerminal(os.Stdout.Fd()) {
			newCLI(s).Run(ctx)
			return nil
		}
		return tui.Run(ctx, s.engine, tui.Options{
			SaveDir:  cfg.SaveDir,
			Scenario: s.scenario,
			Journal:  s.journal,
			Trace:    cfg.Trace,
		})
	},
}

func newCLI(s *session) *cli.CLI {
	c := cli.New(s.engine)
	c.Journal = s.journal
	c.SaveDir = cfg.SaveDir
	c.Scenario = s.scenario
	c.Trace = cfg.Trace
	return c
}

func init() {
	f := playCmd.Flags()
	f.String("scenario", "", "scenario YAML file")
	f.String("saves", "", "directory for /save and /load")
	f.Bool("plain", false, "use the line REPL instead of the TUI")
	f.String("script", "", "play back commands from a file")
	rootCmd.AddCommand(playCmd)
}
