package rules

import (
	"errors"
	"fmt"

	"github.com/nathoo/statuscore/engine/snapshot"
	"github.com/nathoo/statuscore/engine/tags"
	"github.com/nathoo/statuscore/types"
)

// Condition types accepted in a data rule's requires list.
const (
	CondHasStatus        = "has_status"
	CondLacksStatus      = "lacks_status"
	CondHasTag           = "has_tag"
	CondHasMaterial      = "has_material"
	CondOnTile           = "on_tile"
	CondHPBelow          = "hp_below"
	CondTemperatureBelow = "temperature_below"
	CondTemperatureAbove = "temperature_above"
	CondWeatherIs        = "weather_is"
	CondTimeIs           = "time_is"
	CondDamageType       = "damage_type"
	CondApplied          = "applied"
	CondNot              = "not"
)

var conditionTypes = map[string]bool{
	CondHasStatus: true, CondLacksStatus: true, CondHasTag: true, CondHasMaterial: true,
	CondOnTile: true, CondHPBelow: true, CondTemperatureBelow: true, CondTemperatureAbove: true,
	CondWeatherIs: true, CondTimeIs: true, CondDamageType: true, CondApplied: true, CondNot: true,
}

// KnownCondition reports whether t is a condition type.
func KnownCondition(t string) bool {
	return conditionTypes[t]
}

func checkCondition(c types.Condition) error {
	if !KnownCondition(c.Type) {
		return fmt.Errorf("unknown condition type %q", c.Type)
	}
	if c.Type == CondNot {
		if c.Inner == nil {
			return errors.New("not without a condition")
		}
		return checkCondition(*c.Inner)
	}
	return nil
}

// EvalCondition evaluates a single condition against a snapshot and the
// phase context. Unknown types never hold.
func EvalCondition(c types.Condition, snap types.Snapshot, ctx types.RuleContext) bool {
	switch c.Type {
	case CondHasStatus:
		_, ok := snapshot.Status(snap, str(c.Params, "status"))
		return ok

	case CondLacksStatus:
		_, ok := snapshot.Status(snap, str(c.Params, "status"))
		return !ok

	case CondHasTag:
		return tags.Has(snapshot.AllTags(snap), str(c.Params, "tag"))

	case CondHasMaterial:
		_, ok := snapshot.Material(snap, str(c.Params, "material"))
		return ok

	case CondOnTile:
		return snap.Env.Tile == str(c.Params, "tile")

	case CondHPBelow:
		return snap.HP < toInt(c.Params["value"])

	case CondTemperatureBelow:
		return snap.Env.TemperatureC < toFloat(c.Params["value"])

	case CondTemperatureAbove:
		return snap.Env.TemperatureC > toFloat(c.Params["value"])

	case CondWeatherIs:
		return snap.Env.Weather == str(c.Params, "weather")

	case CondTimeIs:
		return snap.Env.TimeOfDay == str(c.Params, "time")

	case CondDamageType:
		return ctx.Damage != nil && ctx.Damage.Type == str(c.Params, "type")

	case CondApplied:
		return ctx.Applied != "" && ctx.Applied == str(c.Params, "status")

	case CondNot:
		if c.Inner == nil {
			return true
		}
		return !EvalCondition(*c.Inner, snap, ctx)

	default:
		return false
	}
}

// EvalAllConditions returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAllConditions(conditions []types.Condition, snap types.Snapshot, ctx types.RuleContext) bool {
	for _, c := range conditions {
		if !EvalCondition(c, snap, ctx) {
			return false
		}
	}
	return true
}

func str(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}

// toInt converts an any value to int, handling float64 from Lua.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}
