package rules

import (
	"fmt"

	"github.com/nathoo/statuscore/engine/actions"
	"github.com/nathoo/statuscore/engine/snapshot"
	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/engine/tags"
	"github.com/nathoo/statuscore/types"
)

// Built-in rule ids.
const (
	ConductiveLethality    = "conductive_lethality"
	WetDampensFire         = "wet_dampens_fire"
	ImmobilizePreventsTurn = "immobilize_prevents_turn"
	StatusStatModifiers    = "status_stat_modifiers"
	HazardTile             = "hazard_tile"
	WaterTileSoak          = "water_tile_soak"
	WetDrip                = "wet_drip"
	ExtinguishBurn         = "extinguish_burn"
	ThawOnFire             = "thaw_on_fire"
)

// Built-in priorities. Lethality must outrank anything that reduces damage.
const (
	PriorityLethality = 1000
	PriorityDampen    = 500
	PriorityBuiltin   = 100
)

// DefaultLethalAmount is the instant-kill sentinel. It exceeds any hpMax.
const DefaultLethalAmount = 99999

// WetDripAmount is the wet quantity lost per tick.
const WetDripAmount = 10

// Options configures the built-in rules.
type Options struct {
	LethalAmount   int
	ExtinguishBurn bool
	ThawOnFire     bool
}

// DefaultOptions enables every built-in rule.
func DefaultOptions() Options {
	return Options{
		LethalAmount:   DefaultLethalAmount,
		ExtinguishBurn: true,
		ThawOnFire:     true,
	}
}

// RegisterBuiltins registers the built-in interactions. Toggleable rules are
// always registered and disabled per opts so they can be re-enabled by id.
func RegisterBuiltins(set *Set, defs *state.Defs, opts Options) error {
	lethal := opts.LethalAmount
	if lethal < DefaultLethalAmount {
		lethal = DefaultLethalAmount
	}

	builtins := []Rule{
		{ID: ConductiveLethality, Phase: types.PhasePreDamage, Priority: PriorityLethality, Eval: conductiveLethality(lethal)},
		{ID: WetDampensFire, Phase: types.PhasePreDamage, Priority: PriorityDampen, Eval: wetDampensFire},
		{ID: ImmobilizePreventsTurn, Phase: types.PhasePreTurn, Priority: PriorityBuiltin, Eval: immobilizePreventsTurn},
		{ID: StatusStatModifiers, Phase: types.PhasePreTurn, Priority: PriorityBuiltin, Eval: statusStatModifiers(defs)},
		{ID: HazardTile, Phase: types.PhasePreTurn, Priority: PriorityBuiltin, Eval: hazardTile(defs)},
		{ID: WaterTileSoak, Phase: types.PhasePreTurn, Priority: PriorityBuiltin, Eval: waterTileSoak(defs)},
		{ID: WetDrip, Phase: types.PhaseTick, Priority: PriorityBuiltin, Eval: wetDrip},
		{ID: ExtinguishBurn, Phase: types.PhaseApply, Priority: PriorityBuiltin, Eval: extinguishBurn},
		{ID: ThawOnFire, Phase: types.PhaseApply, Priority: PriorityBuiltin, Eval: thawOnFire},
	}
	for _, r := range builtins {
		if err := set.Register(r); err != nil {
			return fmt.Errorf("builtins: %w", err)
		}
	}
	set.SetEnabled(ExtinguishBurn, opts.ExtinguishBurn)
	set.SetEnabled(ThawOnFire, opts.ThawOnFire)
	return nil
}

// Conductive reports whether electric damage is lethal to the snapshot's
// entity: a conductive status, or a conductive material that is not metal.
// Metal gear only counts alongside water.
func Conductive(snap types.Snapshot) bool {
	if snapshot.HasStatusTag(snap, "conductive") {
		return true
	}
	for _, m := range snap.Materials {
		if tags.Has(m.Tags, "conductive") && !tags.Has(m.Tags, "metal") {
			return true
		}
	}
	return false
}

func conductiveLethality(amount int) Func {
	return func(snap types.Snapshot, ctx types.RuleContext) []types.Action {
		if ctx.Damage == nil || ctx.Damage.Type != "electric" {
			return nil
		}
		if !Conductive(snap) {
			return nil
		}
		return []types.Action{actions.OverrideDamage(amount)}
	}
}

func wetDampensFire(snap types.Snapshot, ctx types.RuleContext) []types.Action {
	if ctx.Damage == nil || ctx.Damage.Type != "fire" {
		return nil
	}
	if !snapshot.HasStatusTag(snap, "extinguisher") {
		return nil
	}
	// An override already queued is final.
	for _, q := range ctx.Queued {
		if q.Type == types.ActionOverrideDamage {
			return nil
		}
	}
	return []types.Action{actions.ScaleDamage(0.5)}
}

func immobilizePreventsTurn(snap types.Snapshot, _ types.RuleContext) []types.Action {
	held := snapshot.StatusesWithTag(snap, "immobilize")
	if len(held) == 0 {
		return nil
	}
	return []types.Action{actions.PreventTurn(held[0])}
}

func statusStatModifiers(defs *state.Defs) Func {
	return func(snap types.Snapshot, _ types.RuleContext) []types.Action {
		if defs == nil {
			return nil
		}
		var out []types.Action
		for _, st := range snap.Statuses {
			def, ok := defs.Statuses[st.ID]
			if !ok || def.Stat == "" {
				continue
			}
			scale := def.StatScale
			if scale == 0 {
				scale = 1
			}
			out = append(out, actions.ModifyStat(def.Stat, st.Value*scale, st.ID))
		}
		return out
	}
}

func hazardTile(defs *state.Defs) Func {
	return func(snap types.Snapshot, _ types.RuleContext) []types.Action {
		if defs == nil || !tags.Has(snap.Env.TileTags, "hazard") {
			return nil
		}
		tile, ok := defs.Tiles[snap.Env.Tile]
		if !ok || tile.Damage <= 0 {
			return nil
		}
		return []types.Action{actions.Damage(tile.Damage, tile.DamageType, "tile:"+tile.Name)}
	}
}

func waterTileSoak(defs *state.Defs) Func {
	return func(snap types.Snapshot, _ types.RuleContext) []types.Action {
		if defs == nil {
			return nil
		}
		tile, ok := defs.Tiles[snap.Env.Tile]
		if !ok || tile.Soak == nil || tile.Soak.Status == "" {
			return nil
		}
		return []types.Action{actions.RefreshStatus(tile.Soak.Status, tile.Soak.Turns, tile.Soak.Value, tile.Soak.Quantity)}
	}
}

func wetDrip(snap types.Snapshot, _ types.RuleContext) []types.Action {
	wet, ok := snapshot.Status(snap, snapshot.WetStatus)
	if !ok || wet.Quantity <= 0 {
		return nil
	}
	return []types.Action{actions.ConsumeCoating(snapshot.WetStatus, WetDripAmount)}
}

func extinguishBurn(snap types.Snapshot, ctx types.RuleContext) []types.Action {
	applied, ok := snapshot.Status(snap, ctx.Applied)
	if !ok || !tags.Has(applied.Tags, "extinguisher") {
		return nil
	}
	var out []types.Action
	for _, id := range snapshot.StatusesWithTag(snap, "fire") {
		out = append(out, actions.RemoveStatus(id))
	}
	return out
}

func thawOnFire(snap types.Snapshot, ctx types.RuleContext) []types.Action {
	applied, ok := snapshot.Status(snap, ctx.Applied)
	if !ok || !tags.Has(applied.Tags, "fire") {
		return nil
	}
	var out []types.Action
	for _, id := range snapshot.StatusesWithTag(snap, "ice") {
		out = append(out, actions.RemoveStatus(id))
	}
	return out
}
