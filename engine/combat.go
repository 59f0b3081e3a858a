package engine

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nathoo/statuscore/engine/events"
	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/engine/telemetry"
	"github.com/nathoo/statuscore/types"
)

// Stat names the engine reads during an attack.
const (
	StatAttack   = "attack"
	StatDefense  = "defense"
	StatAccuracy = "accuracy"
)

// DefaultDamageType is used when an attack names none.
const DefaultDamageType = "physical"

// MaxMissChance caps the miss chance from negative accuracy, in percent.
const MaxMissChance = 90

// DamageCalc computes damage: max(1, roll(1d6) + attack - defense).
// Returns (damage, dieRoll).
func DamageCalc(attack, defense int, rng *RNG) (damage, roll int) {
	roll = rng.Roll(6)
	damage = roll + attack - defense
	if damage < 1 {
		damage = 1
	}
	return damage, roll
}

// Attack describes one strike. Amount > 0 skips the dice.
type Attack struct {
	Type   string
	Amount int
}

// StrikeResult reports one Strike call.
type StrikeResult struct {
	Hit        bool
	Roll       int // die roll, 0 for fixed amounts
	Raw        int // amount before predamage
	Final      int
	Killed     bool
	HookErrors []*HookError
}

// Strike resolves a melee or spell hit from attacker onto defender through
// the two-step damage contract, then runs the attacker's on_attack hooks.
// Negative effective accuracy gives a 10% miss chance per point.
func (e *Engine) Strike(ctx context.Context, attackerID, defenderID string, atk Attack) StrikeResult {
	att, def := e.Entity(attackerID), e.Entity(defenderID)
	if att == nil || def == nil || !att.Alive || !def.Alive {
		return StrikeResult{}
	}
	ctx, span := telemetry.Tracer().Start(ctx, "engine.Strike", trace.WithAttributes(
		attribute.String("attacker", attackerID),
		attribute.String("defender", defenderID),
	))
	defer span.End()
	defer e.syncRNG()

	if acc := e.EffectiveStat(attackerID, StatAccuracy); acc < 0 {
		chance := -acc * 10
		if chance > MaxMissChance {
			chance = MaxMissChance
		}
		if e.RNG.Chance(chance) {
			events.Dispatch(ctx, e.Publisher, []types.Event{events.New(events.AttackMissed, defenderID, map[string]any{
				"attacker": attackerID,
				"chance":   chance,
			})})
			return StrikeResult{}
		}
	}

	res := StrikeResult{Hit: true, Raw: atk.Amount}
	if res.Raw <= 0 {
		res.Raw, res.Roll = DamageCalc(
			e.EffectiveStat(attackerID, StatAttack),
			e.EffectiveStat(defenderID, StatDefense),
			e.RNG,
		)
	}
	dtype := atk.Type
	if dtype == "" {
		dtype = DefaultDamageType
	}

	res.Final = e.ResolveDamage(ctx, attackerID, defenderID, types.DamageEvent{Amount: res.Raw, Type: dtype, SourceID: attackerID})
	res.Killed = e.ApplyDamage(ctx, defenderID, res.Final, dtype, attackerID)
	res.HookErrors = e.runHook(ctx, HookAttack, att, def, equipped(att))
	span.SetAttributes(attribute.Int("final", res.Final), attribute.Bool("killed", res.Killed))
	return res
}

// ExplosionHit is one entity caught in an explosion.
type ExplosionHit struct {
	ID     string
	Final  int
	Killed bool
}

// Explode hits every living entity within radius (Chebyshev) of (x, y),
// each through the full damage contract, in arena order.
func (e *Engine) Explode(ctx context.Context, x, y, radius int, ev types.DamageEvent) []ExplosionHit {
	ctx, span := telemetry.Tracer().Start(ctx, "engine.Explode", trace.WithAttributes(
		attribute.Int("x", x),
		attribute.Int("y", y),
		attribute.Int("radius", radius),
	))
	defer span.End()

	var hits []ExplosionHit
	for _, ent := range state.EntitiesWithin(e.World, x, y, radius) {
		id := state.EntityID(ent)
		final := e.ResolveDamage(ctx, ev.SourceID, id, ev)
		killed := e.ApplyDamage(ctx, id, final, ev.Type, ev.SourceID)
		hits = append(hits, ExplosionHit{ID: id, Final: final, Killed: killed})
	}
	return hits
}

func (e *Engine) syncRNG() {
	e.World.RNGSeed = e.RNG.Seed()
	e.World.RNGPosition = e.RNG.Position()
}
