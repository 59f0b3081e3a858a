package engine

import (
	"context"
	"fmt"

	"github.com/nathoo/statuscore/engine/events"
	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/engine/telemetry"
	"github.com/nathoo/statuscore/types"
)

// Hook names, as reported in HookError.
const (
	HookEquip   = "on_equip"
	HookUnequip = "on_unequip"
	HookAttack  = "on_attack"
)

// GearHook is a callback attached to an item. Target is the struck entity
// for on_attack and nil otherwise.
type GearHook func(ctx context.Context, e *Engine, owner, target *types.Entity, item types.Item) error

// GearHooks groups the callbacks of one item.
type GearHooks struct {
	OnEquip   GearHook
	OnUnequip GearHook
	OnAttack  GearHook
}

func (h GearHooks) get(name string) GearHook {
	switch name {
	case HookEquip:
		return h.OnEquip
	case HookUnequip:
		return h.OnUnequip
	case HookAttack:
		return h.OnAttack
	}
	return nil
}

// HookError reports a gear hook that failed or panicked. The operation that
// invoked it still completes.
type HookError struct {
	Item string
	Hook string
	Err  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("hook %s on %s: %v", e.Hook, e.Item, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

// RegisterHooks attaches callbacks to an item id, replacing earlier ones.
func (e *Engine) RegisterHooks(itemID string, hooks GearHooks) {
	e.Hooks[itemID] = hooks
}

// catalogHooks turns item definitions carrying hook actions into callbacks.
func (e *Engine) catalogHooks() {
	for id, def := range e.Defs.Items {
		if len(def.OnEquip)+len(def.OnUnequip)+len(def.OnAttack) == 0 {
			continue
		}
		e.RegisterHooks(id, GearHooks{
			OnEquip:   actionHook(def.OnEquip, false),
			OnUnequip: actionHook(def.OnUnequip, false),
			OnAttack:  actionHook(def.OnAttack, true),
		})
	}
}

func actionHook(acts []types.Action, onTarget bool) GearHook {
	if len(acts) == 0 {
		return nil
	}
	return func(ctx context.Context, e *Engine, owner, target *types.Entity, _ types.Item) error {
		ent := owner
		if onTarget {
			ent = target
		}
		if ent == nil || !ent.Alive {
			return nil
		}
		e.apply(ctx, ent, "", acts, nil)
		return nil
	}
}

// runHook invokes one hook of every item in scope. A failing hook is logged
// and collected; it never aborts its caller or the other hooks.
func (e *Engine) runHook(ctx context.Context, hook string, owner, target *types.Entity, items []types.Item) []*HookError {
	var errs []*HookError
	for _, item := range items {
		fn := e.Hooks[item.ID].get(hook)
		if fn == nil {
			continue
		}
		if herr := e.invokeHook(ctx, hook, fn, owner, target, item); herr != nil {
			errs = append(errs, herr)
		}
	}
	return errs
}

func (e *Engine) invokeHook(ctx context.Context, hook string, fn GearHook, owner, target *types.Entity, item types.Item) (herr *HookError) {
	defer func() {
		if r := recover(); r != nil {
			herr = &HookError{Item: item.ID, Hook: hook, Err: fmt.Errorf("panic: %v", r)}
		}
		if herr != nil {
			telemetry.Diag(e.Logger, "%v", herr)
			events.Dispatch(ctx, e.Publisher, []types.Event{events.New(events.HookFailed, state.EntityID(owner), map[string]any{
				"item":  item.ID,
				"hook":  hook,
				"error": herr.Err.Error(),
			})})
		}
	}()
	if err := fn(ctx, e, owner, target, item); err != nil {
		return &HookError{Item: item.ID, Hook: hook, Err: err}
	}
	return nil
}
