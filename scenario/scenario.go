// Package scenario loads arena set-ups from YAML: a tile map, the
// environment and the entities with their gear and opening statuses.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nathoo/statuscore/engine"
	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/engine/tags"
	"github.com/nathoo/statuscore/types"
)

// Floor is the glyph for a plain tile. It never needs a legend entry.
const Floor = '.'

// Scenario is the decoded YAML document.
type Scenario struct {
	Name      string            `yaml:"name"`
	Seed      int64             `yaml:"seed"`
	Biome     string            `yaml:"biome"`
	Weather   string            `yaml:"weather"`
	TimeOfDay string            `yaml:"time_of_day"`
	Map       []string          `yaml:"map"`
	Legend    map[string]string `yaml:"legend"` // glyph → tile name
	Entities  []EntitySpec      `yaml:"entities"`
}

// EntitySpec places one entity.
type EntitySpec struct {
	ID       string         `yaml:"id"`
	Kind     string         `yaml:"kind"`
	Name     string         `yaml:"name"`
	X        int            `yaml:"x"`
	Y        int            `yaml:"y"`
	HP       int            `yaml:"hp"`
	Stats    map[string]int `yaml:"stats"`
	Gear     []string       `yaml:"gear"` // catalog item ids
	Statuses []StatusSpec   `yaml:"statuses"`
}

// StatusSpec is an opening status.
type StatusSpec struct {
	ID       string `yaml:"id"`
	Turns    int    `yaml:"turns"`
	Value    int    `yaml:"value"`
	Quantity int    `yaml:"quantity"`
}

// Load reads and decodes a scenario file.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario: %w", err)
	}
	defer f.Close()
	sc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// Decode parses a scenario document. Unknown keys are rejected.
func Decode(r io.Reader) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if len(sc.Map) == 0 {
		return nil, errors.New("map has no rows")
	}
	return &sc, nil
}

// Size reports the arena dimensions. The widest row sets the width;
// shorter rows are padded with floor.
func (sc *Scenario) Size() (width, height int) {
	for _, row := range sc.Map {
		if n := len([]rune(row)); n > width {
			width = n
		}
	}
	return width, len(sc.Map)
}

// World builds the arena against a catalog without touching an engine.
func (sc *Scenario) World(defs *state.Defs) (*types.World, error) {
	if defs == nil {
		defs = state.DefaultDefs()
	}
	width, height := sc.Size()
	w := state.NewWorld(width, height, sc.Seed)
	w.Env = types.Environment{Biome: sc.Biome, Weather: sc.Weather, TimeOfDay: sc.TimeOfDay}

	if sc.Biome != "" {
		if _, ok := defs.Biomes[sc.Biome]; !ok {
			return nil, fmt.Errorf("unknown biome %q", sc.Biome)
		}
	}
	if sc.Weather != "" {
		if _, ok := defs.Weather[sc.Weather]; !ok {
			return nil, fmt.Errorf("unknown weather %q", sc.Weather)
		}
	}

	for y, row := range sc.Map {
		for x, glyph := range []rune(row) {
			if glyph == Floor {
				continue
			}
			tile, ok := sc.Legend[string(glyph)]
			if !ok {
				return nil, fmt.Errorf("map row %d: glyph %q has no legend entry", y, glyph)
			}
			if _, ok := defs.Tiles[tile]; !ok {
				return nil, fmt.Errorf("map row %d: legend maps %q to unknown tile %q", y, glyph, tile)
			}
			state.SetTile(w, x, y, tile)
		}
	}

	seen := map[string]bool{}
	for i, spec := range sc.Entities {
		ent, err := spawn(w, spec)
		if err != nil {
			return nil, fmt.Errorf("entity %d (%s): %w", i+1, spec.label(), err)
		}
		id := state.EntityID(ent)
		if seen[id] {
			return nil, fmt.Errorf("entity %d (%s): duplicate id %q", i+1, spec.label(), id)
		}
		seen[id] = true
	}
	return w, nil
}

func spawn(w *types.World, spec EntitySpec) (*types.Entity, error) {
	if spec.Kind == "" {
		return nil, errors.New("kind is required")
	}
	if spec.HP <= 0 {
		return nil, fmt.Errorf("hp must be positive, got %d", spec.HP)
	}
	if !state.InBounds(w, spec.X, spec.Y) {
		return nil, fmt.Errorf("position (%d,%d) is off the map", spec.X, spec.Y)
	}
	if other := state.OccupantAt(w, spec.X, spec.Y); other != nil {
		return nil, fmt.Errorf("position (%d,%d) already holds %s", spec.X, spec.Y, state.EntityID(other))
	}
	name := spec.Name
	if name == "" {
		name = spec.Kind
	}
	ent := state.Spawn(w, spec.Kind, name, spec.X, spec.Y, spec.HP)
	if spec.ID != "" && spec.Kind != state.PlayerID {
		ent.ID = spec.ID
	}
	for stat, v := range spec.Stats {
		ent.Stats[stat] = v
	}
	return ent, nil
}

func (s EntitySpec) label() string {
	if s.ID != "" {
		return s.ID
	}
	if s.Name != "" {
		return s.Name
	}
	return s.Kind
}

// Build creates an engine for the scenario. Gear is equipped through the
// engine so item hooks run, then the opening statuses are applied.
func (sc *Scenario) Build(ctx context.Context, defs *state.Defs, opts engine.Options) (*engine.Engine, error) {
	if defs == nil {
		defs = state.DefaultDefs()
	}
	if err := sc.check(defs); err != nil {
		return nil, err
	}
	w, err := sc.World(defs)
	if err != nil {
		return nil, err
	}
	e, err := engine.New(defs, w, opts)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	for i, spec := range sc.Entities {
		id := state.EntityID(w.Entities[i])
		for _, itemID := range spec.Gear {
			item, _ := e.ItemFor(itemID)
			e.Equip(ctx, id, item)
		}
		for _, st := range spec.Statuses {
			var sopts []engine.StatusOption
			if st.Quantity > 0 {
				sopts = append(sopts, engine.WithQuantity(st.Quantity))
			}
			e.ApplyStatus(ctx, id, st.ID, st.Turns, st.Value, sopts...)
		}
	}
	return e, nil
}

// check verifies catalog references before anything is built.
func (sc *Scenario) check(defs *state.Defs) error {
	for i, spec := range sc.Entities {
		for _, itemID := range spec.Gear {
			if _, ok := defs.Items[itemID]; !ok {
				return fmt.Errorf("entity %d (%s): unknown item %q", i+1, spec.label(), itemID)
			}
		}
		for _, st := range spec.Statuses {
			if _, ok := defs.Statuses[tags.Canonical(defs, st.ID)]; !ok {
				return fmt.Errorf("entity %d (%s): unknown status %q", i+1, spec.label(), st.ID)
			}
			if st.Turns <= 0 {
				return fmt.Errorf("entity %d (%s): status %s needs positive turns", i+1, spec.label(), st.ID)
			}
		}
	}
	return nil
}
