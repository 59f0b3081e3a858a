package snapshot

import (
	"github.com/nathoo/statuscore/engine/tags"
	"github.com/nathoo/statuscore/types"
)

// HasStatusTag reports whether any active status carries tag.
func HasStatusTag(s types.Snapshot, tag string) bool {
	for _, st := range s.Statuses {
		if tags.Has(st.Tags, tag) {
			return true
		}
	}
	return false
}

// HasMaterialTag reports whether any material carries tag.
func HasMaterialTag(s types.Snapshot, tag string) bool {
	for _, m := range s.Materials {
		if tags.Has(m.Tags, tag) {
			return true
		}
	}
	return false
}

// StatusesWithTag returns the ids of active statuses carrying tag.
func StatusesWithTag(s types.Snapshot, tag string) []string {
	var out []string
	for _, st := range s.Statuses {
		if tags.Has(st.Tags, tag) {
			out = append(out, st.ID)
		}
	}
	return out
}

// Status finds an active status by id.
func Status(s types.Snapshot, id string) (types.StatusFacts, bool) {
	for _, st := range s.Statuses {
		if st.ID == id {
			return st, true
		}
	}
	return types.StatusFacts{}, false
}

// Material finds the first material with the given id.
func Material(s types.Snapshot, id string) (types.MaterialFacts, bool) {
	for _, m := range s.Materials {
		if m.ID == id {
			return m, true
		}
	}
	return types.MaterialFacts{}, false
}

// AllTags is the union of status, material and tile tags, first-seen order.
func AllTags(s types.Snapshot) []string {
	seen := map[string]bool{}
	var out []string
	add := func(list []string) {
		for _, t := range list {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	for _, st := range s.Statuses {
		add(st.Tags)
	}
	for _, m := range s.Materials {
		add(m.Tags)
	}
	add(s.Env.TileTags)
	return out
}
