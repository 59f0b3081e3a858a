package state

import "github.com/nathoo/statuscore/types"

// DefaultDefs returns the built-in catalog. Lua content merges over it.
func DefaultDefs() *Defs {
	return &Defs{
		Statuses: map[string]types.StatusDef{
			"wet":       {Name: "wet", Tags: []string{"conductive", "extinguisher"}},
			"burn":      {Name: "burn", Tags: []string{"fire", "dot"}, Family: types.FamilyDOT, DamageType: "fire"},
			"freeze":    {Name: "freeze", Tags: []string{"ice", "immobilize"}, Family: types.FamilyControl},
			"poison":    {Name: "poison", Tags: []string{"toxic", "dot"}, Family: types.FamilyDOT, DamageType: "poison"},
			"shock":     {Name: "shock", Tags: []string{"electric"}, Family: types.FamilyDOT, DamageType: "electric"},
			"bleed":     {Name: "bleed", Tags: []string{"dot"}, Family: types.FamilyDOT, DamageType: "physical"},
			"regen":     {Name: "regen", Family: types.FamilyHOT},
			"lifesteal": {Name: "lifesteal", Family: types.FamilyHOT},
			"weaken":    {Name: "weaken", Family: types.FamilyControl, Stat: "attack", StatScale: -1},
			"blind":     {Name: "blind", Family: types.FamilyControl, Stat: "accuracy", StatScale: -1},
			"bless":     {Name: "bless", Stat: "attack", StatScale: 1},
		},
		Aliases: map[string]string{
			"burning": "burn",
		},
		Materials: map[string]types.MaterialDef{
			"metal": {Name: "metal", Tags: []string{"conductive", "metal"}},
			"water": {Name: "water", Tags: []string{"conductive"}},
		},
		Tiles: map[string]types.TileDef{
			"water": {
				Name:     "water",
				Tags:     []string{"water", "liquid"},
				Material: "water",
				Soak:     &types.SoakDef{Status: "wet", Turns: 4, Quantity: 40},
			},
			"spikes": {
				Name:       "spikes",
				Tags:       []string{"spikes", "hazard"},
				Damage:     2,
				DamageType: "physical",
			},
		},
		Biomes:  map[string]types.BiomeDef{},
		Weather: map[string]types.WeatherDef{},
		Items: map[string]types.ItemDef{
			"chainmail":   {Item: types.Item{ID: "chainmail", Name: "Chainmail", Slot: "armor", Metal: true}},
			"leather_cap": {Item: types.Item{ID: "leather_cap", Name: "Leather Cap", Slot: "headgear"}},
			"iron_sword":  {Item: types.Item{ID: "iron_sword", Name: "Iron Sword", Slot: "weapon", Metal: true}},
			"copper_ring": {Item: types.Item{ID: "copper_ring", Name: "Copper Ring", Slot: "ring", Metal: true}},
		},
	}
}

// Merge layers other on top of d. Entries in other replace entries of the
// same name; rules are appended.
func Merge(d, other *Defs) *Defs {
	out := &Defs{
		Statuses:  map[string]types.StatusDef{},
		Aliases:   map[string]string{},
		Materials: map[string]types.MaterialDef{},
		Tiles:     map[string]types.TileDef{},
		Biomes:    map[string]types.BiomeDef{},
		Weather:   map[string]types.WeatherDef{},
		Items:     map[string]types.ItemDef{},
	}
	for _, src := range []*Defs{d, other} {
		if src == nil {
			continue
		}
		for k, v := range src.Statuses {
			out.Statuses[k] = v
		}
		for k, v := range src.Aliases {
			out.Aliases[k] = v
		}
		for k, v := range src.Materials {
			out.Materials[k] = v
		}
		for k, v := range src.Tiles {
			out.Tiles[k] = v
		}
		for k, v := range src.Biomes {
			out.Biomes[k] = v
		}
		for k, v := range src.Weather {
			out.Weather[k] = v
		}
		for k, v := range src.Items {
			out.Items[k] = v
		}
		out.Rules = append(out.Rules, src.Rules...)
	}
	return out
}
