package engine

import (
	"context"

	"github.com/nathoo/statuscore/engine/events"
	"github.com/nathoo/statuscore/engine/snapshot"
	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/engine/telemetry"
	"github.com/nathoo/statuscore/types"
)

// EquipResult reports an Equip or Unequip call. Removed is the item that
// left its slot, if any.
type EquipResult struct {
	Done       bool
	Removed    *types.Item
	HookErrors []*HookError
}

// ValidSlot reports whether slot is one of the gear slots.
func ValidSlot(slot string) bool {
	for _, s := range snapshot.GearSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// Equip puts an item in its slot, unequipping whatever was there. Hooks run
// after the equipment map changes; hook failures are reported, never fatal.
func (e *Engine) Equip(ctx context.Context, id string, item types.Item) EquipResult {
	ent := e.Entity(id)
	if ent == nil || !ent.Alive {
		return EquipResult{}
	}
	if !ValidSlot(item.Slot) {
		telemetry.Diag(e.Logger, "item %q has unknown slot %q", item.ID, item.Slot)
		return EquipResult{}
	}
	var res EquipResult
	if _, ok := ent.Equipment[item.Slot]; ok {
		res = e.Unequip(ctx, id, item.Slot)
	}
	if ent.Equipment == nil {
		ent.Equipment = map[string]types.Item{}
	}
	ent.Equipment[item.Slot] = item
	res.Done = true
	events.Dispatch(ctx, e.Publisher, []types.Event{events.New(events.ItemEquipped, state.EntityID(ent), map[string]any{
		"item":  item.ID,
		"slot":  item.Slot,
		"metal": item.Metal,
	})})
	res.HookErrors = append(res.HookErrors, e.runHook(ctx, HookEquip, ent, nil, []types.Item{item})...)
	return res
}

// Unequip empties a slot. Done is false when the slot was already empty.
func (e *Engine) Unequip(ctx context.Context, id, slot string) EquipResult {
	ent := e.Entity(id)
	if ent == nil {
		return EquipResult{}
	}
	item, ok := ent.Equipment[slot]
	if !ok {
		return EquipResult{}
	}
	delete(ent.Equipment, slot)
	events.Dispatch(ctx, e.Publisher, []types.Event{events.New(events.ItemUnequipped, state.EntityID(ent), map[string]any{
		"item": item.ID,
		"slot": slot,
	})})
	return EquipResult{
		Done:       true,
		Removed:    &item,
		HookErrors: e.runHook(ctx, HookUnequip, ent, nil, []types.Item{item}),
	}
}

// ItemFor resolves an item id against the catalog.
func (e *Engine) ItemFor(id string) (types.Item, bool) {
	def, ok := e.Defs.Items[id]
	if !ok {
		return types.Item{}, false
	}
	item := def.Item
	if item.ID == "" {
		item.ID = id
	}
	return item, true
}

// equipped lists worn items in slot order.
func equipped(ent *types.Entity) []types.Item {
	slots := snapshot.SlotOrder(ent.Equipment)
	items := make([]types.Item, 0, len(slots))
	for _, slot := range slots {
		items = append(items, ent.Equipment[slot])
	}
	return items
}
