// Package loader loads Lua content into Go structs at load time.
// The Lua VM is discarded after loading; nothing runs Lua at play time.
package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/engine/tags"
	"github.com/nathoo/statuscore/types"
)

// rawDef holds a constructor table before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
	order int
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or def if missing.
func getNumber(tbl *lua.LTable, key string, def float64) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return def
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key, 0))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns the string elements of an array field.
func getStrings(tbl *lua.LTable, key string) []string {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil
	}
	var out []string
	for i := 1; i <= arr.MaxN(); i++ {
		if s, ok := arr.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// toGoValue converts a Lua value to a Go value recursively. Whole numbers
// become int.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Check if it's an array (sequential integer keys starting at 1).
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// compile converts all collected Lua data into a Defs struct holding only
// what the content declared.
func compile(coll *collector) (*state.Defs, error) {
	defs := &state.Defs{
		Statuses:  map[string]types.StatusDef{},
		Aliases:   map[string]string{},
		Materials: map[string]types.MaterialDef{},
		Tiles:     map[string]types.TileDef{},
		Biomes:    map[string]types.BiomeDef{},
		Weather:   map[string]types.WeatherDef{},
		Items:     map[string]types.ItemDef{},
	}

	for _, raw := range coll.statuses {
		defs.Statuses[raw.id] = compileStatus(raw)
	}
	for _, pair := range coll.aliases {
		defs.Aliases[pair[0]] = pair[1]
	}
	for _, raw := range coll.materials {
		defs.Materials[raw.id] = types.MaterialDef{Name: raw.id, Tags: getStrings(raw.table, "tags")}
	}
	for _, raw := range coll.tiles {
		defs.Tiles[raw.id] = compileTile(raw)
	}
	for _, raw := range coll.biomes {
		defs.Biomes[raw.id] = types.BiomeDef{
			Name:         raw.id,
			TemperatureC: getNumber(raw.table, "temperature", 20),
			Oxygen:       getNumber(raw.table, "oxygen", 1),
		}
	}
	for _, raw := range coll.weather {
		defs.Weather[raw.id] = types.WeatherDef{
			Name:             raw.id,
			TemperatureDelta: getNumber(raw.table, "temperature", 0),
			OxygenDelta:      getNumber(raw.table, "oxygen", 0),
		}
	}
	for _, raw := range coll.items {
		item, err := compileItem(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling item %s: %w", raw.id, err)
		}
		defs.Items[raw.id] = item
	}
	for _, raw := range coll.rules {
		rule, err := compileRule(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling rule %s: %w", raw.id, err)
		}
		defs.Rules = append(defs.Rules, rule)
	}
	return defs, nil
}

func compileStatus(raw rawDef) types.StatusDef {
	return types.StatusDef{
		Name:       raw.id,
		Tags:       getStrings(raw.table, "tags"),
		Family:     types.Family(getString(raw.table, "family")),
		DamageType: getString(raw.table, "damage_type"),
		Stat:       getString(raw.table, "stat"),
		StatScale:  getInt(raw.table, "stat_scale"),
	}
}

func compileTile(raw rawDef) types.TileDef {
	tile := types.TileDef{
		Name:       raw.id,
		Tags:       getStrings(raw.table, "tags"),
		Material:   getString(raw.table, "material"),
		Damage:     getInt(raw.table, "damage"),
		DamageType: getString(raw.table, "damage_type"),
	}
	if soak := getTable(raw.table, "soak"); soak != nil {
		tile.Soak = &types.SoakDef{
			Status:   getString(soak, "status"),
			Turns:    getInt(soak, "turns"),
			Value:    getInt(soak, "value"),
			Quantity: getInt(soak, "quantity"),
		}
	}
	return tile
}

func compileItem(raw rawDef) (types.ItemDef, error) {
	name := getString(raw.table, "name")
	if name == "" {
		name = raw.id
	}
	item := types.ItemDef{Item: types.Item{
		ID:       raw.id,
		Name:     name,
		Slot:     getString(raw.table, "slot"),
		Metal:    getBool(raw.table, "metal", false),
		Material: getString(raw.table, "material"),
	}}
	var err error
	if item.OnEquip, err = compileActions(getTable(raw.table, "on_equip")); err != nil {
		return item, fmt.Errorf("on_equip: %w", err)
	}
	if item.OnUnequip, err = compileActions(getTable(raw.table, "on_unequip")); err != nil {
		return item, fmt.Errorf("on_unequip: %w", err)
	}
	if item.OnAttack, err = compileActions(getTable(raw.table, "on_attack")); err != nil {
		return item, fmt.Errorf("on_attack: %w", err)
	}
	return item, nil
}

func compileRule(raw rawDef) (types.RuleDef, error) {
	acts, err := compileActions(getTable(raw.table, "actions"))
	if err != nil {
		return types.RuleDef{}, err
	}
	conds, err := compileConditions(getTable(raw.table, "requires"))
	if err != nil {
		return types.RuleDef{}, err
	}
	return types.RuleDef{
		ID:          raw.id,
		Phase:       types.Phase(getString(raw.table, "phase")),
		Priority:    getInt(raw.table, "priority"),
		SourceOrder: raw.order,
		Requires:    conds,
		When:        getString(raw.table, "when"),
		Actions:     acts,
		Disabled:    getBool(raw.table, "disabled", false),
	}, nil
}

// compileActions converts an array of action tables. Every non-type field
// becomes a param.
func compileActions(tbl *lua.LTable) ([]types.Action, error) {
	if tbl == nil {
		return nil, nil
	}
	var out []types.Action
	for i := 1; i <= tbl.MaxN(); i++ {
		at, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("action %d is not a table", i)
		}
		act := types.Action{Type: getString(at, "type"), Params: map[string]any{}}
		at.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok && string(ks) != "type" {
				act.Params[string(ks)] = toGoValue(v)
			}
		})
		out = append(out, act)
	}
	return out, nil
}

func compileConditions(tbl *lua.LTable) ([]types.Condition, error) {
	if tbl == nil {
		return nil, nil
	}
	var out []types.Condition
	for i := 1; i <= tbl.MaxN(); i++ {
		ct, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("condition %d is not a table", i)
		}
		out = append(out, compileCondition(ct))
	}
	return out, nil
}

func compileCondition(tbl *lua.LTable) types.Condition {
	c := types.Condition{Type: getString(tbl, "type"), Params: map[string]any{}}
	if inner := getTable(tbl, "inner"); inner != nil {
		in := compileCondition(inner)
		c.Inner = &in
	}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok && string(ks) != "type" && string(ks) != "inner" {
			c.Params[string(ks)] = toGoValue(v)
		}
	})
	return c
}

// canonicalConditions rewrites status names in rule conditions to their
// canonical form so they match snapshot ids.
func canonicalConditions(defs *state.Defs) {
	for i := range defs.Rules {
		for j := range defs.Rules[i].Requires {
			canonicalCondition(defs, &defs.Rules[i].Requires[j])
		}
	}
}

func canonicalCondition(defs *state.Defs, c *types.Condition) {
	if name, ok := c.Params["status"].(string); ok {
		c.Params["status"] = tags.Canonical(defs, name)
	}
	if c.Inner != nil {
		canonicalCondition(defs, c.Inner)
	}
}

// sortedLuaFiles returns .lua files with statuses.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var first string
	var others []string
	for _, f := range files {
		if f == "statuses.lua" {
			first = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if first != "" {
		return append([]string{first}, others...)
	}
	return others
}
