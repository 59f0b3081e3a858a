// Package tags maps status, material and tile names to the semantic tags
// rules key off. Lookups are pure and never fail: unknown names yield no
// tags.
package tags

import (
	"strings"

	"github.com/nathoo/statuscore/engine/state"
)

// Canonical resolves aliases and normalizes case. "burning" and "burn"
// canonicalize to the same name.
func Canonical(defs *state.Defs, name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if defs == nil {
		return name
	}
	// Aliases may chain once content layers over the defaults.
	for i := 0; i < 4; i++ {
		target, ok := defs.Aliases[name]
		if !ok || target == name {
			break
		}
		name = target
	}
	return name
}

// ForStatus returns the tags of a status. Aliases share the tags of their
// target.
func ForStatus(defs *state.Defs, name string) []string {
	if defs == nil {
		return []string{}
	}
	def, ok := defs.Statuses[Canonical(defs, name)]
	if !ok {
		return []string{}
	}
	return clone(def.Tags)
}

// ForMaterial returns the tags of a material.
func ForMaterial(defs *state.Defs, name string) []string {
	if defs == nil {
		return []string{}
	}
	def, ok := defs.Materials[strings.ToLower(name)]
	if !ok {
		return []string{}
	}
	return clone(def.Tags)
}

// ForTile returns the tags of a tile kind. Plain floor and unknown tiles
// have none.
func ForTile(defs *state.Defs, name string) []string {
	if defs == nil || name == "" {
		return []string{}
	}
	def, ok := defs.Tiles[strings.ToLower(name)]
	if !ok {
		return []string{}
	}
	return clone(def.Tags)
}

// Has reports whether tag is in the set.
func Has(set []string, tag string) bool {
	for _, t := range set {
		if t == tag {
			return true
		}
	}
	return false
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
