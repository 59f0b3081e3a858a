package actions

import "github.com/nathoo/statuscore/types"

// AllQuantity is the consumeCoating qty that strips the coating entirely.
const AllQuantity = "all"

// AddStatus stacks a status onto the entity.
func AddStatus(id string, turns, value int) types.Action {
	return types.Action{Type: types.ActionAddStatus, Params: map[string]any{
		"id":    id,
		"props": map[string]any{"turns": turns, "value": value},
	}}
}

// AddStatusProps stacks a status with an explicit props bag. Unknown props
// are kept as extra fields on the entry.
func AddStatusProps(id string, props map[string]any) types.Action {
	return types.Action{Type: types.ActionAddStatus, Params: map[string]any{"id": id, "props": props}}
}

// RefreshStatus registers a status, overwriting any existing entry.
func RefreshStatus(id string, turns, value, quantity int) types.Action {
	return types.Action{Type: types.ActionRefreshStatus, Params: map[string]any{
		"id":    id,
		"props": map[string]any{"turns": turns, "value": value, "quantity": quantity},
	}}
}

// RemoveStatus deletes a status if present.
func RemoveStatus(id string) types.Action {
	return types.Action{Type: types.ActionRemoveStatus, Params: map[string]any{"id": id}}
}

// Damage deals damage of a type. Source is informational.
func Damage(amount int, dtype, source string) types.Action {
	return types.Action{Type: types.ActionDamage, Params: map[string]any{
		"amount": amount, "dtype": dtype, "source": source,
	}}
}

// Heal restores hp, clamped to hpMax.
func Heal(amount int, source string) types.Action {
	return types.Action{Type: types.ActionHeal, Params: map[string]any{"amount": amount, "source": source}}
}

// ConsumeCoating decrements a quantity-bearing status.
func ConsumeCoating(id string, qty int) types.Action {
	return types.Action{Type: types.ActionConsumeCoating, Params: map[string]any{"id": id, "qty": qty}}
}

// StripCoating removes a quantity-bearing status entirely.
func StripCoating(id string) types.Action {
	return types.Action{Type: types.ActionConsumeCoating, Params: map[string]any{"id": id, "qty": AllQuantity}}
}

// PreventTurn stops the entity acting this turn.
func PreventTurn(reason string) types.Action {
	return types.Action{Type: types.ActionPreventTurn, Params: map[string]any{"reason": reason}}
}

// ModifyStat accumulates a per-turn stat modifier.
func ModifyStat(stat string, modifier int, source string) types.Action {
	return types.Action{Type: types.ActionModifyStat, Params: map[string]any{
		"stat": stat, "modifier": modifier, "source": source,
	}}
}

// OverrideDamage replaces the pending damage amount.
func OverrideDamage(amount int) types.Action {
	return types.Action{Type: types.ActionOverrideDamage, Params: map[string]any{"amount": amount}}
}

// ScaleDamage multiplies the pending damage amount.
func ScaleDamage(factor float64) types.Action {
	return types.Action{Type: types.ActionScaleDamage, Params: map[string]any{"factor": factor}}
}

// Known reports whether the applier understands the action type.
func Known(kind string) bool {
	switch kind {
	case types.ActionAddStatus, types.ActionRefreshStatus, types.ActionRemoveStatus,
		types.ActionDamage, types.ActionHeal, types.ActionConsumeCoating,
		types.ActionPreventTurn, types.ActionModifyStat,
		types.ActionOverrideDamage, types.ActionScaleDamage:
		return true
	}
	return false
}
