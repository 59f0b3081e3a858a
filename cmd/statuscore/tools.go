package main

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/journal"
	"github.com/nathoo/statuscore/loader"
)

var validateCmd = &cobra.Command{
	Use:   "validate [content_dir]",
	Short: "Load and validate a content directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.ContentDir
		if len(args) == 1 {
			dir = args[0]
		}
		defs, err := loader.LoadWith(dir, logger)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d statuses, %d tiles, %d items, %d rules\n",
			dir, len(defs.Statuses), len(defs.Tiles), len(defs.Items), len(defs.Rules))
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [scenario]",
	Short: "Build a scenario and print every entity's snapshot",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			cfg.Scenario = args[0]
		}
		cfg.JournalPath = ""
		s, err := openSession(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer s.Close()

		e := s.engine
		fmt.Printf("%s: %dx%d, turn %d, seed %d\n", s.scenario, e.World.Width, e.World.Height, e.World.Turn, e.RNG.Seed())
		for _, ent := range e.World.Entities {
			fmt.Println()
			for _, line := range e.Describe(state.EntityID(ent)) {
				fmt.Println(line)
			}
		}
		return nil
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List events recorded in the journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.JournalPath == "" {
			return errors.New("no journal configured: pass --journal or set journal_path")
		}
		j, err := journal.Open(cfg.JournalPath, logger)
		if err != nil {
			return err
		}
		defer j.Close()

		q := journal.Query{Newest: true}
		q.Entity, _ = cmd.Flags().GetString("entity")
		q.Type, _ = cmd.Flags().GetString("type")
		q.SinceTurn, _ = cmd.Flags().GetInt("since")
		q.Limit, _ = cmd.Flags().GetInt("limit")
		entries, err := j.Events(cmd.Context(), q)
		if err != nil {
			return err
		}
		for _, en := range entries {
			fmt.Printf("%6d  T%-4d %-18s %-12s %s\n", en.ID, en.Turn, en.Type, en.Entity, formatData(en.Data))
		}
		return nil
	},
}

func formatData(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, data[k])
	}
	return strings.Join(parts, " ")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("statuscore %s (commit %s, built %s) %s/%s\n", version, commit, date, runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	f := eventsCmd.Flags()
	f.String("entity", "", "only events for this entity id")
	f.String("type", "", "only events of this type")
	f.Int("since", 0, "only events from this turn on")
	f.Int("limit", 50, "maximum events to list (0 for all)")

	inspectCmd.Flags().String("scenario", "", "scenario YAML file")

	rootCmd.AddCommand(validateCmd, inspectCmd, eventsCmd, versionCmd)
}
