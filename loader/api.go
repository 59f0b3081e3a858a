package loader

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/statuscore/engine/rules"
	"github.com/nathoo/statuscore/types"
)

// registerAPI registers all Lua constructors and action helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerActionHelpers(L)
	registerConditionHelpers(L)
}

// curried builds a constructor of the form Name "id" { ... }.
func curried(L *lua.LState, into *[]rawDef, coll *collector) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			*into = append(*into, rawDef{id: id, table: tbl, order: coll.nextSourceOrder()})
			return 0
		}))
		return 1
	})
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Status "burn" { tags = {...}, family = "dot", damage_type = "fire" }
	L.SetGlobal("Status", curried(L, &coll.statuses, coll))
	// Material "stone" { tags = {...} }
	L.SetGlobal("Material", curried(L, &coll.materials, coll))
	// Tile "lava" { tags = {...}, material = "...", soak = {...}, damage = 3 }
	L.SetGlobal("Tile", curried(L, &coll.tiles, coll))
	// Biome "tundra" { temperature = -15, oxygen = 0.9 }
	L.SetGlobal("Biome", curried(L, &coll.biomes, coll))
	// Weather "storm" { temperature = -3, oxygen = -0.1 }
	L.SetGlobal("Weather", curried(L, &coll.weather, coll))
	// Item "chainmail" { slot = "armor", metal = true, on_equip = {...} }
	L.SetGlobal("Item", curried(L, &coll.items, coll))
	// Rule "id" { phase = "...", priority = 0, requires = {...}, when = "<cel>", actions = {...} }
	L.SetGlobal("Rule", curried(L, &coll.rules, coll))

	// Alias("burning", "burn")
	L.SetGlobal("Alias", L.NewFunction(func(L *lua.LState) int {
		alias := L.CheckString(1)
		target := L.CheckString(2)
		coll.aliases = append(coll.aliases, [2]string{alias, target})
		return 0
	}))
}

// action builds the Lua table form of an action.
func action(L *lua.LState, kind string, fields map[string]lua.LValue) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(kind))
	for k, v := range fields {
		if v != lua.LNil {
			tbl.RawSetString(k, v)
		}
	}
	return tbl
}

func registerActionHelpers(L *lua.LState) {
	// AddStatus("burn", { turns = 3, value = 2 })
	L.SetGlobal("AddStatus", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(action(L, types.ActionAddStatus, map[string]lua.LValue{
			"id": lua.LString(id), "props": L.Get(2),
		}))
		return 1
	}))

	// RefreshStatus("wet", { turns = 4, quantity = 40 })
	L.SetGlobal("RefreshStatus", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(action(L, types.ActionRefreshStatus, map[string]lua.LValue{
			"id": lua.LString(id), "props": L.Get(2),
		}))
		return 1
	}))

	// RemoveStatus("burn")
	L.SetGlobal("RemoveStatus", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(action(L, types.ActionRemoveStatus, map[string]lua.LValue{"id": lua.LString(id)}))
		return 1
	}))

	// Damage(amount, "fire", "source"). Amount may be a number or "=<cel>".
	L.SetGlobal("Damage", L.NewFunction(func(L *lua.LState) int {
		amount := L.CheckAny(1)
		L.Push(action(L, types.ActionDamage, map[string]lua.LValue{
			"amount": amount, "dtype": L.Get(2), "source": L.Get(3),
		}))
		return 1
	}))

	// Heal(amount, "source")
	L.SetGlobal("Heal", L.NewFunction(func(L *lua.LState) int {
		amount := L.CheckAny(1)
		L.Push(action(L, types.ActionHeal, map[string]lua.LValue{
			"amount": amount, "source": L.Get(2),
		}))
		return 1
	}))

	// ConsumeCoating("wet", 10) or ConsumeCoating("wet", "all")
	L.SetGlobal("ConsumeCoating", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(action(L, types.ActionConsumeCoating, map[string]lua.LValue{
			"id": lua.LString(id), "qty": L.CheckAny(2),
		}))
		return 1
	}))

	// PreventTurn("stunned")
	L.SetGlobal("PreventTurn", L.NewFunction(func(L *lua.LState) int {
		L.Push(action(L, types.ActionPreventTurn, map[string]lua.LValue{"reason": L.Get(1)}))
		return 1
	}))

	// ModifyStat("attack", -2, "source")
	L.SetGlobal("ModifyStat", L.NewFunction(func(L *lua.LState) int {
		stat := L.CheckString(1)
		L.Push(action(L, types.ActionModifyStat, map[string]lua.LValue{
			"stat": lua.LString(stat), "modifier": L.CheckAny(2), "source": L.Get(3),
		}))
		return 1
	}))

	// OverrideDamage(0)
	L.SetGlobal("OverrideDamage", L.NewFunction(func(L *lua.LState) int {
		L.Push(action(L, types.ActionOverrideDamage, map[string]lua.LValue{"amount": L.CheckAny(1)}))
		return 1
	}))

	// ScaleDamage(1.5)
	L.SetGlobal("ScaleDamage", L.NewFunction(func(L *lua.LState) int {
		L.Push(action(L, types.ActionScaleDamage, map[string]lua.LValue{"factor": L.CheckAny(1)}))
		return 1
	}))
}

// condition builds the Lua table form of a condition.
func condition(L *lua.LState, kind, key string, value lua.LValue) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(kind))
	tbl.RawSetString(key, value)
	return tbl
}

func registerConditionHelpers(L *lua.LState) {
	byString := map[string][2]string{
		"HasStatus":   {rules.CondHasStatus, "status"},
		"LacksStatus": {rules.CondLacksStatus, "status"},
		"HasTag":      {rules.CondHasTag, "tag"},
		"HasMaterial": {rules.CondHasMaterial, "material"},
		"OnTile":      {rules.CondOnTile, "tile"},
		"WeatherIs":   {rules.CondWeatherIs, "weather"},
		"TimeIs":      {rules.CondTimeIs, "time"},
		"DamageType":  {rules.CondDamageType, "type"},
		"Applied":     {rules.CondApplied, "status"},
	}
	for name, spec := range byString {
		kind, key := spec[0], spec[1]
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			L.Push(condition(L, kind, key, lua.LString(L.CheckString(1))))
			return 1
		}))
	}

	byNumber := map[string]string{
		"HpBelow":          rules.CondHPBelow,
		"TemperatureBelow": rules.CondTemperatureBelow,
		"TemperatureAbove": rules.CondTemperatureAbove,
	}
	for name, kind := range byNumber {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			L.Push(condition(L, kind, "value", L.CheckNumber(1)))
			return 1
		}))
	}

	// Not(HasStatus("wet"))
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		L.Push(condition(L, rules.CondNot, "inner", L.CheckTable(1)))
		return 1
	}))
}
