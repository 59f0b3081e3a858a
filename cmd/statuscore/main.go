// Statuscore is a sandbox for the status-effect engine of a turn-based tile
// game: load Lua content, build an arena from a scenario, and drive it from
// a TUI or a plain REPL.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nathoo/statuscore/config"
	"github.com/nathoo/statuscore/engine/telemetry"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  = telemetry.WrapLogger(log.New(os.Stderr, "statuscore: ", 0))
)

var rootCmd = &cobra.Command{
	Use:   "statuscore",
	Short: "Status-effect sandbox for turn-based tile games",
	Long: `Statuscore loads status, tile, item and rule definitions from Lua content,
builds an arena from a YAML scenario and lets you apply statuses, strike,
move and end rounds while every engine event is narrated.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		config.SetDefaults(v)
		if err := config.BindFlags(v, cmd.Flags()); err != nil {
			return err
		}
		c, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		cfg = c
		if cfg.File != "" && cfg.Trace {
			logger.Printf("using config %s", cfg.File)
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default statuscore.yaml in . or $HOME/.statuscore)")
	pf.String("content", "", "content directory holding the .lua catalog")
	pf.String("journal", "", "sqlite file that records every engine event")
	pf.Int64("seed", 0, "RNG seed (overrides the scenario seed when non-zero)")
	pf.Bool("trace", false, "print the events behind every command")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
