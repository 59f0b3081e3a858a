// Package resolve maps entity names typed at the sandbox prompt to entity
// ids.
package resolve

import (
	"fmt"
	"strings"

	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/types"
)

// selfNames always resolve to the player.
var selfNames = map[string]bool{
	"me": true, "self": true, "myself": true, "player": true, "you": true,
}

// AmbiguityError indicates multiple entities matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates no entity matched a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("you don't see %q here", e.Name)
}

// Entity resolves a name to an entity id. Exact ids win, then living
// entities whose name, any word of the name, or kind matches.
func Entity(w *types.World, name string) (string, error) {
	nameLower := strings.ToLower(strings.TrimSpace(name))
	if nameLower == "" {
		return "", &NotFoundError{Name: name}
	}
	if selfNames[nameLower] && state.Lookup(w, state.PlayerID) != nil {
		return state.PlayerID, nil
	}
	if ent := state.Lookup(w, nameLower); ent != nil {
		return state.EntityID(ent), nil
	}

	var matches []string
	for _, ent := range w.Entities {
		if !ent.Alive {
			continue
		}
		if matchesName(ent, nameLower) {
			matches = append(matches, state.EntityID(ent))
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguityError{Name: name, Candidates: matches}
	}
}

// matchesName checks an entity's display name and kind (case-insensitive).
// Supports exact match, word-based partial match, and underscore
// normalization.
func matchesName(ent *types.Entity, nameLower string) bool {
	entityNameLower := strings.ToLower(ent.Name)
	if entityNameLower == nameLower {
		return true
	}
	// "goblin" matches "cave goblin".
	for _, word := range strings.Fields(entityNameLower) {
		if word == nameLower {
			return true
		}
	}
	kind := strings.ToLower(ent.Kind)
	return kind == nameLower || kind == strings.ReplaceAll(nameLower, " ", "_")
}
