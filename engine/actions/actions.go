// Package actions interprets rule-emitted actions against a live entity.
// Every action type is one atomic operation applied in queue order; the
// applier owns the stacking decision for status applications.
package actions

import (
	"math"

	"github.com/nathoo/statuscore/engine/events"
	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/engine/status"
	"github.com/nathoo/statuscore/engine/tags"
	"github.com/nathoo/statuscore/engine/telemetry"
	"github.com/nathoo/statuscore/types"
)

// Context carries the phase the actions were produced in.
type Context struct {
	Phase types.Phase
	// Pending is the damage event being resolved. Only set for predamage;
	// overrideDamage and scaleDamage fold onto it. An override is final.
	Pending *types.DamageEvent
}

// Outcome is what applying a queue produced.
type Outcome struct {
	Events []types.Event
	// Applied lists canonical status names added or refreshed, in order.
	Applied []string
	// Damage lists damage actions deferred to the caller. Outside predamage
	// every damage action is resolved and applied by the engine.
	Damage []types.DamageEvent
	// Ignored lists action types the applier does not understand.
	Ignored []string
}

// Applier mutates entities and the status store.
type Applier struct {
	Defs   *state.Defs
	Store  *status.Store
	Logger telemetry.Logger
}

// New creates an applier.
func New(defs *state.Defs, store *status.Store, logger telemetry.Logger) *Applier {
	if logger == nil {
		logger = telemetry.Discard
	}
	return &Applier{Defs: defs, Store: store, Logger: logger}
}

// Apply interprets each action against e in queue order. Malformed actions
// are skipped and unknown types are reported in Outcome.Ignored; nothing
// here fails.
func (a *Applier) Apply(e *types.Entity, acts []types.Action, ctx Context) Outcome {
	var out Outcome
	if e == nil {
		return out
	}
	id := state.EntityID(e)

	for _, act := range acts {
		switch act.Type {
		case types.ActionAddStatus, types.ActionRefreshStatus:
			name, entry, ok := a.statusParams(act.Params)
			if !ok {
				telemetry.Diag(a.Logger, "%s on %s without status id", act.Type, id)
				continue
			}
			kind := events.StatusRegistered
			if act.Type == types.ActionRefreshStatus {
				a.Store.Register(id, name, entry)
			} else if a.Store.Stack(id, name, entry) {
				kind = events.StatusStacked
			}
			cur, _ := a.Store.Entry(id, name)
			ev := statusEvent(kind, id, name, cur)
			if act.Type == types.ActionRefreshStatus {
				ev.Data["refresh"] = true
			}
			out.Events = append(out.Events, ev)
			out.Applied = append(out.Applied, name)

		case types.ActionRemoveStatus:
			name := tags.Canonical(a.Defs, paramString(act.Params, "id"))
			if a.Store.Remove(id, name) {
				out.Events = append(out.Events, events.New(events.StatusRemoved, id, map[string]any{
					"status": name,
				}))
			}

		case types.ActionDamage:
			ev := types.DamageEvent{
				Amount:   toInt(act.Params["amount"]),
				Type:     paramString(act.Params, "dtype"),
				SourceID: paramString(act.Params, "source"),
			}
			if ctx.Phase == types.PhasePreDamage {
				// No nested predamage: damage queued while resolving a hit lands raw.
				out.Events = append(out.Events, a.Hit(e, ev)...)
				continue
			}
			out.Damage = append(out.Damage, ev)

		case types.ActionHeal:
			out.Events = append(out.Events, a.Heal(e, toInt(act.Params["amount"]), paramString(act.Params, "source"))...)

		case types.ActionConsumeCoating:
			name := tags.Canonical(a.Defs, paramString(act.Params, "id"))
			if !a.Store.Has(id, name) {
				continue
			}
			all := paramString(act.Params, "qty") == AllQuantity
			qty := toInt(act.Params["qty"])
			remaining, removed := a.Store.Consume(id, name, qty, all)
			out.Events = append(out.Events, events.New(events.CoatingConsumed, id, map[string]any{
				"status":    name,
				"amount":    qty,
				"all":       all,
				"remaining": remaining,
				"removed":   removed,
			}))

		case types.ActionPreventTurn:
			reason := paramString(act.Params, "reason")
			if reason == "" {
				reason = "prevented"
			}
			state.Scratch(e).PreventTurn = reason
			out.Events = append(out.Events, events.New(events.TurnPrevented, id, map[string]any{
				"reason": reason,
			}))

		case types.ActionModifyStat:
			stat := paramString(act.Params, "stat")
			if stat == "" {
				continue
			}
			mod := toInt(act.Params["modifier"])
			s := state.Scratch(e)
			if s.StatMods == nil {
				s.StatMods = map[string]int{}
			}
			s.StatMods[stat] += mod
			out.Events = append(out.Events, events.New(events.StatModified, id, map[string]any{
				"stat":     stat,
				"modifier": mod,
				"total":    s.StatMods[stat],
				"source":   paramString(act.Params, "source"),
			}))

		case types.ActionOverrideDamage, types.ActionScaleDamage:
			if ctx.Pending == nil {
				telemetry.Diag(a.Logger, "%s on %s outside predamage", act.Type, id)
				continue
			}
			if ctx.Pending.Final {
				telemetry.Diag(a.Logger, "%s on %s ignored: damage already overridden", act.Type, id)
				continue
			}
			from := ctx.Pending.Amount
			if act.Type == types.ActionOverrideDamage {
				ctx.Pending.Amount = toInt(act.Params["amount"])
				ctx.Pending.Final = true
			} else {
				ctx.Pending.Amount = int(math.Round(float64(from) * toFloat(act.Params["factor"])))
			}
			if ctx.Pending.Amount < 0 {
				ctx.Pending.Amount = 0
			}
			out.Events = append(out.Events, events.New(events.DamageRewritten, id, map[string]any{
				"from":   from,
				"to":     ctx.Pending.Amount,
				"action": act.Type,
				"dtype":  ctx.Pending.Type,
			}))

		default:
			out.Ignored = append(out.Ignored, act.Type)
			telemetry.Diag(a.Logger, "unknown action type %q ignored", act.Type)
		}
	}
	return out
}

// Hit subtracts damage from hp, clamping at 0. At 0 the entity dies and its
// statuses are cleared. Dead entities take no damage.
func (a *Applier) Hit(e *types.Entity, ev types.DamageEvent) []types.Event {
	if e == nil || !e.Alive {
		return nil
	}
	id := state.EntityID(e)
	amount := ev.Amount
	if amount < 0 {
		amount = 0
	}
	e.HP -= amount
	if e.HP < 0 {
		e.HP = 0
	}
	evts := []types.Event{events.New(events.DamageTaken, id, map[string]any{
		"amount": amount,
		"dtype":  ev.Type,
		"source": ev.SourceID,
		"hp":     e.HP,
		"hp_max": e.HPMax,
	})}
	if e.HP == 0 {
		e.Alive = false
		if a.Store != nil {
			a.Store.Clear(id)
		}
		evts = append(evts, events.New(events.EntityDied, id, map[string]any{
			"dtype":  ev.Type,
			"source": ev.SourceID,
		}))
	}
	return evts
}

// Heal restores hp up to hpMax. Returns nil when nothing was healed.
func (a *Applier) Heal(e *types.Entity, amount int, source string) []types.Event {
	if e == nil || !e.Alive || amount <= 0 {
		return nil
	}
	before := e.HP
	e.HP += amount
	if e.HPMax > 0 && e.HP > e.HPMax {
		e.HP = e.HPMax
	}
	if e.HP == before {
		return nil
	}
	return []types.Event{events.New(events.EntityHealed, state.EntityID(e), map[string]any{
		"amount": e.HP - before,
		"source": source,
		"hp":     e.HP,
	})}
}

// statusParams reads {id, props} with the props bag optional; top-level
// turns/value/quantity are accepted when props is absent.
func (a *Applier) statusParams(params map[string]any) (string, types.StatusEntry, bool) {
	name := tags.Canonical(a.Defs, paramString(params, "id"))
	if name == "" {
		return "", types.StatusEntry{}, false
	}
	props, nested := params["props"].(map[string]any)
	if !nested {
		props = params
	}
	entry := types.StatusEntry{}
	for k, v := range props {
		switch k {
		case "turns":
			entry.Turns = toInt(v)
		case "value":
			entry.Value = toInt(v)
		case "quantity":
			entry.Quantity = toInt(v)
		case "source", "sourceId", "source_id":
			entry.SourceID, _ = v.(string)
		default:
			if nested {
				entry.Extra = setExtra(entry.Extra, k, v)
			}
		}
	}
	return name, entry, true
}

func statusEvent(kind, id, name string, e types.StatusEntry) types.Event {
	return events.New(kind, id, map[string]any{
		"status":   name,
		"turns":    e.Turns,
		"value":    e.Value,
		"quantity": e.Quantity,
		"source":   e.SourceID,
	})
}

func setExtra(m map[string]any, k string, v any) map[string]any {
	if m == nil {
		m = map[string]any{}
	}
	m[k] = v
	return m
}

func paramString(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(math.Round(n))
	case int64:
		return int(n)
	case uint64:
		return int(n)
	default:
		return 0
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
