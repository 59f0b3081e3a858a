package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nathoo/statuscore/config"
	"github.com/nathoo/statuscore/engine"
	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/engine/telemetry"
	"github.com/nathoo/statuscore/journal"
	"github.com/nathoo/statuscore/loader"
	"github.com/nathoo/statuscore/scenario"
)

// session is a loaded catalog, a built arena and the optional journal.
type session struct {
	engine   *engine.Engine
	journal  *journal.Journal
	scenario string
}

func (s *session) Close() error {
	if s.journal == nil {
		return nil
	}
	return s.journal.Close()
}

// openSession loads content, opens the journal and builds the arena from
// the configured scenario, or the default arena when none is set.
func openSession(ctx context.Context, cfg *config.Config, logger telemetry.Logger) (*session, error) {
	defs, err := loader.LoadWith(cfg.ContentDir, logger)
	if err != nil {
		return nil, err
	}

	s := &session{}
	opts := cfg.EngineOptions(logger)
	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath, logger)
		if err != nil {
			return nil, err
		}
		s.journal = j
		opts.Publisher = j
	}

	if cfg.Scenario == "" {
		s.engine, err = defaultArena(defs, cfg.Seed, opts)
		s.scenario = "arena"
	} else {
		s.engine, s.scenario, err = buildScenario(ctx, cfg.Scenario, cfg.Seed, defs, opts)
	}
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func buildScenario(ctx context.Context, path string, seed int64, defs *state.Defs, opts engine.Options) (*engine.Engine, string, error) {
	sc, err := scenario.Load(path)
	if err != nil {
		return nil, "", err
	}
	if seed != 0 {
		sc.Seed = seed
	}
	e, err := sc.Build(ctx, defs, opts)
	if err != nil {
		return nil, "", fmt.Errorf("scenario %s: %w", path, err)
	}
	name := sc.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return e, name, nil
}

// defaultArena is a small open field with a pond and one goblin.
func defaultArena(defs *state.Defs, seed int64, opts engine.Options) (*engine.Engine, error) {
	w := state.NewWorld(12, 8, seed)
	for x := 4; x <= 6; x++ {
		state.SetTile(w, x, 5, "water")
	}
	player := state.Spawn(w, state.PlayerID, "You", 1, 1, 20)
	player.Stats["attack"] = 2
	goblin := state.Spawn(w, "goblin", "Goblin", 7, 3, 12)
	goblin.Stats["attack"] = 3
	goblin.Stats["defense"] = 1
	return engine.New(defs, w, opts)
}
