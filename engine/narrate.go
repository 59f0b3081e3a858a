package engine

import (
	"fmt"

	"github.com/nathoo/statuscore/engine/events"
	"github.com/nathoo/statuscore/types"
)

// DisplayName returns an entity's name, or the id when it has none.
func (e *Engine) DisplayName(id string) string {
	if ent := e.Entity(id); ent != nil && ent.Name != "" {
		return ent.Name
	}
	return id
}

// Narrate renders an event as one line of text. Events that only matter to
// tracing (ticks, stat modifiers) render as "".
func (e *Engine) Narrate(ev types.Event) string {
	who := e.DisplayName(ev.Entity)
	d := ev.Data
	switch ev.Type {
	case events.StatusRegistered:
		if d["refresh"] == true {
			return fmt.Sprintf("%s's %v is refreshed (%v turns).", who, d["status"], d["turns"])
		}
		return fmt.Sprintf("%s gains %v (%v turns).", who, d["status"], d["turns"])
	case events.StatusStacked:
		return fmt.Sprintf("%s's %v stacks (%v turns, value %v).", who, d["status"], d["turns"], d["value"])
	case events.StatusExpired:
		return fmt.Sprintf("%s's %v wears off.", who, d["status"])
	case events.StatusRemoved:
		return fmt.Sprintf("%s loses %v.", who, d["status"])
	case events.CoatingConsumed:
		if d["removed"] == true {
			return fmt.Sprintf("%s's %v is used up.", who, d["status"])
		}
		return fmt.Sprintf("%s's %v thins (%v left).", who, d["status"], d["remaining"])
	case events.DamageTaken:
		if dt, _ := d["dtype"].(string); dt != "" {
			return fmt.Sprintf("%s takes %v %s damage (%v/%v hp).", who, d["amount"], dt, d["hp"], d["hp_max"])
		}
		return fmt.Sprintf("%s takes %v damage (%v/%v hp).", who, d["amount"], d["hp"], d["hp_max"])
	case events.DamageRewritten:
		return fmt.Sprintf("Damage to %s changes from %v to %v.", who, d["from"], d["to"])
	case events.EntityHealed:
		if n, _ := d["amount"].(int); n == 0 {
			return ""
		}
		return fmt.Sprintf("%s heals %v (%v hp).", who, d["amount"], d["hp"])
	case events.EntityDied:
		return fmt.Sprintf("%s dies.", who)
	case events.EntityMoved:
		line := fmt.Sprintf("%s moves", who)
		if to, ok := d["to"].([]int); ok && len(to) == 2 {
			line += fmt.Sprintf(" to (%d,%d)", to[0], to[1])
		}
		if tile, _ := d["tile"].(string); tile != "" {
			line += " onto " + tile
		}
		return line + "."
	case events.MoveCancelled:
		return fmt.Sprintf("%s cannot move (%v).", who, d["reason"])
	case events.TurnPrevented:
		return fmt.Sprintf("%s loses the turn (%v).", who, d["reason"])
	case events.ItemEquipped:
		return fmt.Sprintf("%s equips %s.", who, e.itemName(d["item"]))
	case events.ItemUnequipped:
		return fmt.Sprintf("%s takes off %s.", who, e.itemName(d["item"]))
	case events.HookFailed:
		return fmt.Sprintf("%s hook of %v failed: %v", d["hook"], d["item"], d["error"])
	case events.AttackMissed:
		return fmt.Sprintf("%s misses %s.", e.DisplayName(fmt.Sprint(d["attacker"])), who)
	case events.RoundEnded:
		return fmt.Sprintf("Round %v ends.", d["turn"])
	}
	return ""
}

func (e *Engine) itemName(v any) string {
	id := fmt.Sprint(v)
	if def, ok := e.Defs.Items[id]; ok && def.Name != "" {
		return def.Name
	}
	return id
}
