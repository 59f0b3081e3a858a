// Package rules implements the phase-based rule pipeline. A rule inspects a
// snapshot and its context and may emit actions; every enabled rule of a
// phase runs, ranked by priority then registration order, and their actions
// are concatenated into one queue.
package rules

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nathoo/statuscore/engine/telemetry"
	"github.com/nathoo/statuscore/types"
)

// Func is the body of a rule. It must treat missing data as "does not
// apply" and return nil.
type Func func(snap types.Snapshot, ctx types.RuleContext) []types.Action

// Rule is one registered rule.
type Rule struct {
	ID          string
	Phase       types.Phase
	Priority    int
	SourceOrder int // assigned by Register
	Eval        Func
}

// Phases lists every valid phase in turn order.
var Phases = []types.Phase{
	types.PhasePreTurn,
	types.PhaseTick,
	types.PhasePreDamage,
	types.PhaseApply,
	types.PhaseCleanup,
}

// ValidPhase reports whether p names a known phase.
func ValidPhase(p types.Phase) bool {
	for _, known := range Phases {
		if p == known {
			return true
		}
	}
	return false
}

// Set holds registered rules.
type Set struct {
	rules    []Rule
	disabled map[string]bool
	next     int
	logger   telemetry.Logger
}

// NewSet creates an empty rule set. A nil logger discards diagnostics.
func NewSet(logger telemetry.Logger) *Set {
	if logger == nil {
		logger = telemetry.Discard
	}
	return &Set{disabled: map[string]bool{}, logger: logger}
}

// Register adds a rule. Rule ids are unique across phases.
func (s *Set) Register(r Rule) error {
	if r.ID == "" {
		return fmt.Errorf("register rule: empty id")
	}
	if !ValidPhase(r.Phase) {
		return fmt.Errorf("register rule %q: unknown phase %q", r.ID, r.Phase)
	}
	if r.Eval == nil {
		return fmt.Errorf("register rule %q: nil eval", r.ID)
	}
	for _, existing := range s.rules {
		if existing.ID == r.ID {
			return fmt.Errorf("register rule %q: duplicate id", r.ID)
		}
	}
	r.SourceOrder = s.next
	s.next++
	s.rules = append(s.rules, r)
	return nil
}

// SetEnabled toggles a rule by id. Reports whether the rule exists.
func (s *Set) SetEnabled(id string, enabled bool) bool {
	if !s.Has(id) {
		return false
	}
	if enabled {
		delete(s.disabled, id)
	} else {
		s.disabled[id] = true
	}
	return true
}

// Enabled reports whether a registered rule is enabled.
func (s *Set) Enabled(id string) bool {
	return s.Has(id) && !s.disabled[id]
}

// Has reports whether a rule with this id is registered.
func (s *Set) Has(id string) bool {
	for _, r := range s.rules {
		if r.ID == id {
			return true
		}
	}
	return false
}

// Ranked returns the rules of a phase in evaluation order: priority (desc)
// then source order (asc). Disabled rules are included.
func (s *Set) Ranked(phase types.Phase) []Rule {
	var out []Rule
	for _, r := range s.rules {
		if r.Phase == phase {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].SourceOrder < out[j].SourceOrder
	})
	return out
}

// RunPhase evaluates every enabled rule of the phase and returns the
// concatenated action queue. It never short-circuits: each rule sees the
// actions queued before it in rc.Queued. A rule that panics contributes
// nothing and is logged.
func (s *Set) RunPhase(ctx context.Context, phase types.Phase, snap types.Snapshot, rc types.RuleContext) []types.Action {
	if !ValidPhase(phase) {
		telemetry.Diag(s.logger, "unknown phase %q for %s", phase, snap.EntityID)
		return nil
	}
	_, span := telemetry.Tracer().Start(ctx, "rules.RunPhase", trace.WithAttributes(
		attribute.String("phase", string(phase)),
		attribute.String("entity", snap.EntityID),
	))
	defer span.End()

	rc.Phase = phase
	rc.EntityID = snap.EntityID

	var queue []types.Action
	ran := 0
	for _, r := range s.Ranked(phase) {
		if s.disabled[r.ID] {
			continue
		}
		rc.Queued = append([]types.Action(nil), queue...)
		queue = append(queue, s.eval(r, snap, rc)...)
		ran++
	}
	span.SetAttributes(attribute.Int("rules", ran), attribute.Int("actions", len(queue)))
	return queue
}

func (s *Set) eval(r Rule, snap types.Snapshot, rc types.RuleContext) (acts []types.Action) {
	defer func() {
		if rec := recover(); rec != nil {
			telemetry.Diag(s.logger, "rule %s panicked in %s: %v", r.ID, r.Phase, rec)
			acts = nil
		}
	}()
	return r.Eval(snap, rc)
}

// IDs returns every registered rule id in registration order.
func (s *Set) IDs() []string {
	out := make([]string, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.ID
	}
	return out
}
