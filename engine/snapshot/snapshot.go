// Package snapshot builds the read-only view of an entity that rules
// evaluate. A snapshot is derived fresh on every call and never cached.
package snapshot

import (
	"sort"

	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/engine/status"
	"github.com/nathoo/statuscore/engine/tags"
	"github.com/nathoo/statuscore/types"
)

// Environment defaults when no biome or weather overrides apply.
const (
	DefaultTemperatureC = 20.0
	DefaultOxygen       = 1.0
)

// Material names synthesized by the builder.
const (
	MaterialWater = "water"
	MaterialMetal = "metal"
)

// WetStatus is the coating whose quantity mirrors onto a water material.
const WetStatus = "wet"

// GearSlots are the equipment slots, in the order they are scanned.
var GearSlots = []string{"armor", "headgear", "weapon", "ring"}

// Build derives the snapshot of e. It reads the world, store and catalog
// and writes nothing.
func Build(defs *state.Defs, w *types.World, store *status.Store, e *types.Entity) types.Snapshot {
	id := state.EntityID(e)
	snap := types.Snapshot{
		EntityID:  id,
		Statuses:  []types.StatusFacts{},
		Materials: []types.MaterialFacts{},
	}
	if e == nil {
		snap.Env = environment(defs, w, "")
		return snap
	}
	snap.HP = e.HP
	snap.HPMax = e.HPMax
	snap.Alive = e.Alive

	if store != nil {
		for _, v := range store.AsList(id) {
			snap.Statuses = append(snap.Statuses, types.StatusFacts{
				ID:       v.Type,
				Tags:     tags.ForStatus(defs, v.Type),
				Value:    v.Value,
				Turns:    v.Turns,
				Quantity: v.Quantity,
			})
			if tags.Canonical(defs, v.Type) == WetStatus && v.Quantity > 0 {
				snap.Materials = append(snap.Materials, types.MaterialFacts{
					ID:    MaterialWater,
					Tags:  tags.ForMaterial(defs, MaterialWater),
					Props: map[string]any{"quantity": v.Quantity, "source": "status:" + v.Type},
				})
			}
		}
	}

	tile := state.TileAt(w, e.X, e.Y)
	if tile != "" && defs != nil {
		if def, ok := defs.Tiles[tile]; ok && def.Material != "" {
			snap.Materials = append(snap.Materials, types.MaterialFacts{
				ID:    def.Material,
				Tags:  tags.ForMaterial(defs, def.Material),
				Props: map[string]any{"source": "tile:" + tile},
			})
		}
	}

	snap.Materials = append(snap.Materials, gearMaterials(defs, e)...)
	snap.Env = environment(defs, w, tile)
	return snap
}

func gearMaterials(defs *state.Defs, e *types.Entity) []types.MaterialFacts {
	var out []types.MaterialFacts
	metal := false
	seen := map[string]bool{}
	for _, slot := range SlotOrder(e.Equipment) {
		item := e.Equipment[slot]
		if item.Metal && !metal {
			metal = true
			out = append(out, types.MaterialFacts{
				ID:    MaterialMetal,
				Tags:  tags.ForMaterial(defs, MaterialMetal),
				Props: map[string]any{"source": "gear:" + slot, "item": item.ID},
			})
		}
		if item.Material != "" && item.Material != MaterialMetal && !seen[item.Material] {
			seen[item.Material] = true
			out = append(out, types.MaterialFacts{
				ID:    item.Material,
				Tags:  tags.ForMaterial(defs, item.Material),
				Props: map[string]any{"source": "gear:" + slot, "item": item.ID},
			})
		}
	}
	return out
}

// SlotOrder yields the known slots first, then any others sorted.
func SlotOrder(equipment map[string]types.Item) []string {
	var out []string
	known := map[string]bool{}
	for _, slot := range GearSlots {
		known[slot] = true
		if _, ok := equipment[slot]; ok {
			out = append(out, slot)
		}
	}
	var extra []string
	for slot := range equipment {
		if !known[slot] {
			extra = append(extra, slot)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func environment(defs *state.Defs, w *types.World, tile string) types.EnvFacts {
	env := types.EnvFacts{
		TemperatureC: DefaultTemperatureC,
		Oxygen:       DefaultOxygen,
		Tile:         tile,
		TileTags:     tags.ForTile(defs, tile),
	}
	if w == nil {
		return env
	}
	env.TimeOfDay = w.Env.TimeOfDay
	env.Weather = w.Env.Weather
	if defs == nil {
		return env
	}
	if b, ok := defs.Biomes[w.Env.Biome]; ok {
		env.TemperatureC = b.TemperatureC
		env.Oxygen = b.Oxygen
	}
	if wd, ok := defs.Weather[w.Env.Weather]; ok {
		env.TemperatureC += wd.TemperatureDelta
		env.Oxygen += wd.OxygenDelta
	}
	return env
}
