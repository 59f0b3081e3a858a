// Package engine provides the turn and attack orchestrator that wires the
// status store, snapshot builder, rule pipeline and action applier into the
// public status-effect operations.
package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nathoo/statuscore/engine/actions"
	"github.com/nathoo/statuscore/engine/events"
	"github.com/nathoo/statuscore/engine/rules"
	"github.com/nathoo/statuscore/engine/snapshot"
	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/engine/status"
	"github.com/nathoo/statuscore/engine/tags"
	"github.com/nathoo/statuscore/engine/telemetry"
	"github.com/nathoo/statuscore/types"
)

// Options configures a new engine.
type Options struct {
	Logger    telemetry.Logger
	Publisher events.Publisher
	Rules     rules.Options
	// Disabled lists rule ids switched off after registration.
	Disabled []string
}

// DefaultOptions enables every built-in rule and drops events.
func DefaultOptions() Options {
	return Options{Rules: rules.DefaultOptions()}
}

// Engine holds the catalog, the arena and every piece of mutable engine
// state. It is single-threaded: one operation completes before the next.
type Engine struct {
	Defs      *state.Defs
	World     *types.World
	Store     *status.Store
	Rules     *rules.Set
	Applier   *actions.Applier
	Publisher events.Publisher
	Logger    telemetry.Logger
	RNG       *RNG
	Hooks     map[string]GearHooks // item id → hooks

	processed map[string]int // entity id → World.Turn it last ran in
	resolving map[string]int // entity id → predamage resolutions in progress
}

// New creates an engine over a world. Built-in rules are registered first,
// then the catalog's data rules.
func New(defs *state.Defs, w *types.World, opts Options) (*Engine, error) {
	if defs == nil {
		defs = state.DefaultDefs()
	}
	if w == nil {
		w = state.NewWorld(0, 0, 0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = telemetry.Discard
	}
	pub := opts.Publisher
	if pub == nil {
		pub = events.NopPublisher()
	}

	store := status.NewStore(familyFunc(defs))
	set := rules.NewSet(logger)
	if err := rules.RegisterBuiltins(set, defs, opts.Rules); err != nil {
		return nil, err
	}
	if len(defs.Rules) > 0 {
		ev, err := rules.NewEvaluator(logger)
		if err != nil {
			return nil, err
		}
		if err := rules.RegisterData(set, ev, defs.Rules); err != nil {
			return nil, fmt.Errorf("data rules: %w", err)
		}
	}
	for _, id := range opts.Disabled {
		if !set.SetEnabled(id, false) {
			telemetry.Diag(logger, "cannot disable unknown rule %q", id)
		}
	}

	e := &Engine{
		Defs:      defs,
		World:     w,
		Store:     store,
		Rules:     set,
		Applier:   actions.New(defs, store, logger),
		Publisher: pub,
		Logger:    logger,
		RNG:       RestoreRNG(w.RNGSeed, w.RNGPosition),
		Hooks:     map[string]GearHooks{},
		processed: map[string]int{},
		resolving: map[string]int{},
	}
	e.catalogHooks()
	return e, nil
}

// familyFunc classifies by catalog family, falling back to the built-in
// table for names the catalog does not know.
func familyFunc(defs *state.Defs) status.FamilyFunc {
	return func(name string) types.Family {
		if def, ok := defs.Statuses[tags.Canonical(defs, name)]; ok {
			return def.Family
		}
		return status.DefaultFamily(name)
	}
}

// RestoreRNG re-creates the RNG from seed and advances to the saved position.
func (e *Engine) RestoreRNG(seed int64, position int64) {
	e.RNG = RestoreRNG(seed, position)
	e.World.RNGSeed = seed
	e.World.RNGPosition = position
}

// Restore swaps in a saved arena and status set. Turn bookkeeping restarts.
func (e *Engine) Restore(w *types.World, records []status.Record, seed, position int64) {
	e.World = w
	e.Store.Import(records)
	e.RestoreRNG(seed, position)
	e.processed = map[string]int{}
}

// Entity resolves an id to a live entity. Returns nil when absent.
func (e *Engine) Entity(id string) *types.Entity {
	return state.Lookup(e.World, id)
}

// Snapshot builds the current rule view of an entity.
func (e *Engine) Snapshot(id string) (types.Snapshot, bool) {
	ent := e.Entity(id)
	if ent == nil {
		return types.Snapshot{}, false
	}
	return snapshot.Build(e.Defs, e.World, e.Store, ent), true
}

// StatusOption adjusts a status application.
type StatusOption func(*types.StatusEntry)

// WithSource records who applied the status.
func WithSource(id string) StatusOption {
	return func(s *types.StatusEntry) { s.SourceID = id }
}

// WithQuantity attaches a coating quantity.
func WithQuantity(q int) StatusOption {
	return func(s *types.StatusEntry) { s.Quantity = q }
}

// WithExtra attaches a free-form field preserved on the entry.
func WithExtra(key string, value any) StatusOption {
	return func(s *types.StatusEntry) {
		if s.Extra == nil {
			s.Extra = map[string]any{}
		}
		s.Extra[key] = value
	}
}

// ApplyStatus stacks a status on an entity (register when new, merge when
// present) and runs the apply phase. Unknown or dead targets are a no-op;
// the result reports whether anything was applied.
func (e *Engine) ApplyStatus(ctx context.Context, id, name string, turns, value int, opts ...StatusOption) bool {
	ent := e.Entity(id)
	if ent == nil || !ent.Alive || name == "" {
		return false
	}
	entry := types.StatusEntry{Turns: turns, Value: value}
	for _, opt := range opts {
		opt(&entry)
	}
	props := map[string]any{
		"turns":    entry.Turns,
		"value":    entry.Value,
		"quantity": entry.Quantity,
		"source":   entry.SourceID,
	}
	for k, v := range entry.Extra {
		props[k] = v
	}
	e.apply(ctx, ent, "", []types.Action{actions.AddStatusProps(name, props)}, nil)
	return true
}

// RemoveStatus drops a status from an entity. Reports whether it was present.
func (e *Engine) RemoveStatus(ctx context.Context, id, name string) bool {
	ent := e.Entity(id)
	if ent == nil || !e.HasStatus(id, name) {
		return false
	}
	e.apply(ctx, ent, "", []types.Action{actions.RemoveStatus(name)}, nil)
	return true
}

// GetStatusList returns the read-only status views of an entity.
func (e *Engine) GetStatusList(id string) []types.StatusView {
	return e.Store.AsList(id)
}

// HasStatus reports whether the entity carries a status. Aliases resolve.
func (e *Engine) HasStatus(id, name string) bool {
	return e.Store.Has(id, tags.Canonical(e.Defs, name))
}

// IsImmobilized reports whether any active status is tagged immobilize.
func (e *Engine) IsImmobilized(id string) bool {
	for _, v := range e.Store.AsList(id) {
		if tags.Has(tags.ForStatus(e.Defs, v.Type), "immobilize") {
			return true
		}
	}
	return false
}

// StatMod returns the per-turn modifier accumulated for a stat.
func (e *Engine) StatMod(id, stat string) int {
	ent := e.Entity(id)
	if ent == nil || ent.Engine == nil {
		return 0
	}
	return ent.Engine.StatMods[stat]
}

// EffectiveStat is the base stat plus this turn's modifiers.
func (e *Engine) EffectiveStat(id, stat string) int {
	return state.Stat(e.Entity(id), stat) + e.StatMod(id, stat)
}

// ResolveDamage runs predamage for a pending hit on the defender and returns
// the final amount. Side effects queued by predamage rules (status changes,
// coating consumption) are applied; hp is never touched here. Unknown or
// dead defenders resolve to 0. A resolution started while another is in
// progress for the same defender skips predamage.
func (e *Engine) ResolveDamage(ctx context.Context, attackerID, defenderID string, ev types.DamageEvent) int {
	def := e.Entity(defenderID)
	if def == nil || !def.Alive {
		return 0
	}
	ctx, span := telemetry.Tracer().Start(ctx, "engine.ResolveDamage", trace.WithAttributes(
		attribute.String("defender", defenderID),
		attribute.String("dtype", ev.Type),
		attribute.Int("amount", ev.Amount),
	))
	defer span.End()

	if ev.SourceID == "" {
		ev.SourceID = attackerID
	}
	// Damage raised while this defender's hit is still resolving (apply
	// rules fired by a predamage status change) lands raw.
	if e.resolving[defenderID] > 0 {
		telemetry.Diag(e.Logger, "nested %s damage on %s lands raw", ev.Type, defenderID)
		span.SetAttributes(attribute.Bool("nested", true))
		return max(ev.Amount, 0)
	}
	e.resolving[defenderID]++
	defer func() { e.resolving[defenderID]-- }()

	pending := ev
	snap := snapshot.Build(e.Defs, e.World, e.Store, def)
	acts := e.Rules.RunPhase(ctx, types.PhasePreDamage, snap, types.RuleContext{
		Turn:   e.World.Turn,
		Damage: &pending,
	})
	e.apply(ctx, def, types.PhasePreDamage, acts, &pending)

	if pending.Amount < 0 {
		pending.Amount = 0
	}
	span.SetAttributes(attribute.Int("final", pending.Amount))
	return pending.Amount
}

// ApplyDamage subtracts a resolved amount from hp and emits damage_taken and,
// at 0 hp, entity_died. Reports whether the hit killed the entity.
func (e *Engine) ApplyDamage(ctx context.Context, defenderID string, amount int, dtype, source string) bool {
	ent := e.Entity(defenderID)
	if ent == nil || !ent.Alive {
		return false
	}
	evts := e.Applier.Hit(ent, types.DamageEvent{Amount: amount, Type: dtype, SourceID: source})
	events.Dispatch(ctx, e.Publisher, evts)
	return !ent.Alive
}

// Damage is the two-step contract in one call: resolve, then apply.
// Returns the final amount.
func (e *Engine) Damage(ctx context.Context, attackerID, defenderID string, ev types.DamageEvent) int {
	final := e.ResolveDamage(ctx, attackerID, defenderID, ev)
	source := ev.SourceID
	if source == "" {
		source = attackerID
	}
	e.ApplyDamage(ctx, defenderID, final, ev.Type, source)
	return final
}

// Heal restores hp up to hpMax. Returns the amount actually healed.
func (e *Engine) Heal(ctx context.Context, id string, amount int, source string) int {
	ent := e.Entity(id)
	if ent == nil {
		return 0
	}
	before := ent.HP
	events.Dispatch(ctx, e.Publisher, e.Applier.Heal(ent, amount, source))
	return ent.HP - before
}

// apply runs an action queue produced in phase ("" for direct calls).
// Every status it adds triggers one apply-phase pass. Damage deferred by the
// applier goes through the two-step contract.
func (e *Engine) apply(ctx context.Context, ent *types.Entity, phase types.Phase, acts []types.Action, pending *types.DamageEvent) {
	if len(acts) == 0 {
		return
	}
	id := state.EntityID(ent)
	out := e.Applier.Apply(ent, acts, actions.Context{Phase: phase, Pending: pending})
	events.Dispatch(ctx, e.Publisher, out.Events)

	for _, name := range out.Applied {
		if !e.Store.Has(id, name) {
			continue
		}
		e.runApplyPhase(ctx, ent, name)
	}

	for _, dmg := range out.Damage {
		if !ent.Alive {
			break
		}
		e.Damage(ctx, dmg.SourceID, id, dmg)
	}
}

// runApplyPhase evaluates apply rules for a freshly applied status. Actions
// they produce are applied without re-entering the apply phase.
func (e *Engine) runApplyPhase(ctx context.Context, ent *types.Entity, name string) {
	snap := snapshot.Build(e.Defs, e.World, e.Store, ent)
	acts := e.Rules.RunPhase(ctx, types.PhaseApply, snap, types.RuleContext{
		Turn:    e.World.Turn,
		Applied: name,
	})
	if len(acts) == 0 {
		return
	}
	out := e.Applier.Apply(ent, acts, actions.Context{Phase: types.PhaseApply})
	events.Dispatch(ctx, e.Publisher, out.Events)
	for _, dmg := range out.Damage {
		if !ent.Alive {
			break
		}
		e.Damage(ctx, dmg.SourceID, state.EntityID(ent), dmg)
	}
}
