package engine

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nathoo/statuscore/engine/events"
	"github.com/nathoo/statuscore/engine/snapshot"
	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/engine/status"
	"github.com/nathoo/statuscore/engine/tags"
	"github.com/nathoo/statuscore/engine/telemetry"
	"github.com/nathoo/statuscore/types"
)

// Reasons a turn ends without the entity acting.
const (
	ReasonMissing = "no such entity"
	ReasonDead    = "dead"
)

// TurnResult reports one entity turn.
type TurnResult struct {
	Acted  bool
	Reason string // why the entity did not act
	Ticked []status.TickResult
}

// RunTurn processes one entity turn: preturn rules, tick rules and the
// per-tick status pass, the act callback when the entity may act, and
// cleanup. A prevented turn still ticks. The scratch bag is cleared at the
// start and at the end of every turn whatever happened.
func (e *Engine) RunTurn(ctx context.Context, id string, act func(ent *types.Entity)) TurnResult {
	ent := e.Entity(id)
	if ent == nil {
		return TurnResult{Reason: ReasonMissing}
	}
	if !ent.Alive {
		return TurnResult{Reason: ReasonDead}
	}
	ctx, span := telemetry.Tracer().Start(ctx, "engine.RunTurn", trace.WithAttributes(
		attribute.String("entity", id),
		attribute.Int("turn", e.World.Turn),
	))
	defer span.End()
	defer func() {
		ent.Engine = nil
		e.processed[id] = e.World.Turn
	}()
	// Scratch written outside a turn (apply or predamage rules) does not
	// carry into it.
	ent.Engine = nil

	e.runPhase(ctx, ent, types.PhasePreTurn)

	var res TurnResult
	if ent.Engine != nil {
		res.Reason = ent.Engine.PreventTurn
	}

	if ent.Alive {
		e.runPhase(ctx, ent, types.PhaseTick)
	}
	if ent.Alive {
		res.Ticked = e.tick(ctx, ent)
	}

	switch {
	case !ent.Alive:
		res.Reason = ReasonDead
	case res.Reason == "":
		res.Acted = true
		if act != nil {
			act(ent)
		}
	}

	if ent.Alive {
		e.runPhase(ctx, ent, types.PhaseCleanup)
	}
	span.SetAttributes(attribute.Bool("acted", res.Acted))
	return res
}

// RunTurnPhases runs a turn with no action, for entities the caller does
// not drive.
func (e *Engine) RunTurnPhases(ctx context.Context, id string) TurnResult {
	return e.RunTurn(ctx, id, nil)
}

// RoundResult reports one EndRound call.
type RoundResult struct {
	Turn    int      // turn number that just ended
	Ran     []string // ids whose phases ran during EndRound
	Skipped []string // ids that already had their turn this round
}

// EndRound runs the turn phases of every entity with active statuses that
// has not yet had a turn this round, then advances the turn counter.
// Store entries whose entity no longer resolves are dropped.
func (e *Engine) EndRound(ctx context.Context) RoundResult {
	res := RoundResult{Turn: e.World.Turn}
	for _, id := range e.Store.Active() {
		if last, ok := e.processed[id]; ok && last == e.World.Turn {
			res.Skipped = append(res.Skipped, id)
			continue
		}
		ent := e.Entity(id)
		if ent == nil {
			telemetry.Diag(e.Logger, "dropping statuses of vanished entity %q", id)
			e.Store.Clear(id)
			continue
		}
		if !ent.Alive {
			continue
		}
		e.RunTurnPhases(ctx, id)
		res.Ran = append(res.Ran, id)
	}
	e.World.Turn++
	events.Dispatch(ctx, e.Publisher, []types.Event{events.New(events.RoundEnded, "", map[string]any{
		"turn": res.Turn,
		"ran":  len(res.Ran),
	})})
	return res
}

// runPhase evaluates a turn phase for one entity and applies the result.
func (e *Engine) runPhase(ctx context.Context, ent *types.Entity, phase types.Phase) {
	snap := snapshot.Build(e.Defs, e.World, e.Store, ent)
	acts := e.Rules.RunPhase(ctx, phase, snap, types.RuleContext{Turn: e.World.Turn})
	e.apply(ctx, ent, phase, acts, nil)
}

// tick runs the per-tick status pass. DOT amounts go through the damage
// contract typed by the status definition; HOT amounts heal.
func (e *Engine) tick(ctx context.Context, ent *types.Entity) []status.TickResult {
	id := state.EntityID(ent)
	results := e.Store.Tick(id,
		func(name string, amount int) {
			dtype := e.Defs.Statuses[tags.Canonical(e.Defs, name)].DamageType
			e.Damage(ctx, "", id, types.DamageEvent{Amount: amount, Type: dtype, SourceID: "status:" + name})
		},
		func(name string, amount int) {
			e.Heal(ctx, id, amount, "status:"+name)
		},
	)
	evts := make([]types.Event, 0, len(results))
	for _, r := range results {
		evts = append(evts, events.New(events.StatusTicked, id, map[string]any{
			"status": r.Name,
			"family": string(r.Family),
			"amount": r.Amount,
			"turns":  r.Turns,
		}))
		if r.Expired {
			evts = append(evts, events.New(events.StatusExpired, id, map[string]any{"status": r.Name}))
		}
	}
	events.Dispatch(ctx, e.Publisher, evts)
	return results
}
