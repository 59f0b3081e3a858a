// Package events defines the notification surface the engine produces and
// the publishers that consume it. Publishing is single pass: subscribers
// observe events, they never feed actions back into the engine.
package events

import (
	"context"

	"github.com/nathoo/statuscore/types"
)

// Event types emitted by the engine.
const (
	StatusRegistered = "status_registered"
	StatusStacked    = "status_stacked"
	StatusTicked     = "status_ticked"
	StatusExpired    = "status_expired"
	StatusRemoved    = "status_removed"
	CoatingConsumed  = "coating_consumed"
	DamageTaken      = "damage_taken"
	DamageRewritten  = "damage_rewritten"
	EntityHealed     = "entity_healed"
	EntityDied       = "entity_died"
	EntityMoved      = "entity_moved"
	MoveCancelled    = "move_cancelled"
	TurnPrevented    = "turn_prevented"
	StatModified     = "stat_modified"
	ItemEquipped     = "item_equipped"
	ItemUnequipped   = "item_unequipped"
	HookFailed       = "hook_failed"
	AttackMissed     = "attack_missed"
	RoundEnded       = "round_ended"
)

// Publisher consumes engine events.
type Publisher interface {
	Publish(ctx context.Context, event types.Event)
}

// PublisherFunc adapts functions into the Publisher interface.
type PublisherFunc func(ctx context.Context, event types.Event)

// Publish implements Publisher for PublisherFunc.
func (f PublisherFunc) Publish(ctx context.Context, event types.Event) {
	if f == nil {
		return
	}
	f(ctx, event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, types.Event) {}

// NopPublisher returns a publisher that drops everything.
func NopPublisher() Publisher {
	return nopPublisher{}
}

type fanout []Publisher

func (f fanout) Publish(ctx context.Context, event types.Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(ctx, event)
		}
	}
}

// Fanout publishes every event to each publisher in order.
func Fanout(pubs ...Publisher) Publisher {
	return fanout(pubs)
}

// Dispatch publishes events in order. A nil publisher drops them.
func Dispatch(ctx context.Context, pub Publisher, evts []types.Event) {
	if pub == nil {
		return
	}
	for _, ev := range evts {
		pub.Publish(ctx, ev)
	}
}

// New builds an event for an entity.
func New(kind, entity string, data map[string]any) types.Event {
	if data == nil {
		data = map[string]any{}
	}
	return types.Event{Type: kind, Entity: entity, Data: data}
}
