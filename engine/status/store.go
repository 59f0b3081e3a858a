// Package status implements the status store: per-entity named status
// entries, their stacking policy, per-tick resolution and expiry, plus the
// active-entity index the end-of-round pass iterates.
package status

import (
	"github.com/nathoo/statuscore/types"
)

// FamilyFunc classifies a status name for the tick pass.
type FamilyFunc func(name string) types.Family

// DefaultFamily is the built-in classification.
func DefaultFamily(name string) types.Family {
	switch name {
	case "poison", "burn", "burning", "bleed", "shock":
		return types.FamilyDOT
	case "regen", "lifesteal":
		return types.FamilyHOT
	case "freeze", "weaken", "blind":
		return types.FamilyControl
	}
	return types.FamilyNone
}

// TickResult describes what happened to one entry during Tick.
type TickResult struct {
	Name    string
	Family  types.Family
	Amount  int // DOT/HOT magnitude handed to the callback, 0 otherwise
	Turns   int // remaining turns after the decrement
	Expired bool
}

// Record is one stored entry in export form.
type Record struct {
	Entity string            `json:"entity"`
	Name   string            `json:"name"`
	Entry  types.StatusEntry `json:"entry"`
}

type entitySet struct {
	entries map[string]*types.StatusEntry
	order   []string // insertion order of names
}

// Store owns every status entry. It is not safe for concurrent use; the
// engine is turn-stepped and single-threaded.
type Store struct {
	family   FamilyFunc
	entities map[string]*entitySet
	active   []string // entities with at least one entry, first-registered order
}

// NewStore creates an empty store. A nil family uses DefaultFamily.
func NewStore(family FamilyFunc) *Store {
	if family == nil {
		family = DefaultFamily
	}
	return &Store{
		family:   family,
		entities: map[string]*entitySet{},
	}
}

// Register inserts or overwrites an entry.
func (s *Store) Register(entityID, name string, entry types.StatusEntry) {
	if entityID == "" || name == "" {
		return
	}
	set := s.ensure(entityID)
	if _, ok := set.entries[name]; !ok {
		set.order = append(set.order, name)
	}
	stored := copyEntry(entry)
	set.entries[name] = &stored
}

// Stack applies entry with the stacking policy: an existing entry gets
// turns added and the larger value kept; a missing one is registered.
// Reports whether an existing entry was merged.
func (s *Store) Stack(entityID, name string, entry types.StatusEntry) bool {
	existing := s.entry(entityID, name)
	if existing == nil {
		s.Register(entityID, name, entry)
		return false
	}
	existing.Turns += entry.Turns
	if entry.Value > existing.Value {
		existing.Value = entry.Value
	}
	if entry.Quantity > existing.Quantity {
		existing.Quantity = entry.Quantity
	}
	if entry.SourceID != "" {
		existing.SourceID = entry.SourceID
	}
	for k, v := range entry.Extra {
		if existing.Extra == nil {
			existing.Extra = map[string]any{}
		}
		existing.Extra[k] = v
	}
	return true
}

// Remove deletes a named entry. Reports whether it existed.
func (s *Store) Remove(entityID, name string) bool {
	set, ok := s.entities[entityID]
	if !ok {
		return false
	}
	if _, ok := set.entries[name]; !ok {
		return false
	}
	delete(set.entries, name)
	set.order = removeName(set.order, name)
	s.prune(entityID)
	return true
}

// Consume decrements the quantity of a coating status. The entry is removed
// when all is set or the quantity drops to zero or below. Returns the
// remaining quantity and whether the entry was removed. Missing entries are
// a no-op.
func (s *Store) Consume(entityID, name string, qty int, all bool) (remaining int, removed bool) {
	e := s.entry(entityID, name)
	if e == nil {
		return 0, false
	}
	if all || e.Quantity-qty <= 0 {
		s.Remove(entityID, name)
		return 0, true
	}
	e.Quantity -= qty
	return e.Quantity, false
}

// Tick resolves one turn of every entry on the entity, in insertion order.
// DOT entries call onDamage with abs(value), HOT entries call onHeal, control
// entries have no direct effect. Each processed entry then loses one turn
// and is removed at zero or below. Entries removed by a callback are not
// decremented; entries added by a callback wait for the next tick.
func (s *Store) Tick(entityID string, onDamage, onHeal func(name string, amount int)) []TickResult {
	set, ok := s.entities[entityID]
	if !ok {
		return nil
	}
	names := append([]string(nil), set.order...)

	var results []TickResult
	for _, name := range names {
		e := s.entry(entityID, name)
		if e == nil {
			continue
		}
		res := TickResult{Name: name, Family: s.family(name)}
		amount := abs(e.Value)
		switch res.Family {
		case types.FamilyDOT:
			res.Amount = amount
			if onDamage != nil {
				onDamage(name, amount)
			}
		case types.FamilyHOT:
			res.Amount = amount
			if onHeal != nil {
				onHeal(name, amount)
			}
		}

		// The callback may have removed or replaced the entry.
		e = s.entry(entityID, name)
		if e == nil {
			continue
		}
		e.Turns--
		res.Turns = e.Turns
		if e.Turns <= 0 {
			s.Remove(entityID, name)
			res.Expired = true
			res.Turns = 0
		}
		results = append(results, res)
	}
	return results
}

// Get returns a copy of every entry on the entity.
func (s *Store) Get(entityID string) map[string]types.StatusEntry {
	out := map[string]types.StatusEntry{}
	set, ok := s.entities[entityID]
	if !ok {
		return out
	}
	for name, e := range set.entries {
		out[name] = copyEntry(*e)
	}
	return out
}

// Entry returns a copy of one entry.
func (s *Store) Entry(entityID, name string) (types.StatusEntry, bool) {
	e := s.entry(entityID, name)
	if e == nil {
		return types.StatusEntry{}, false
	}
	return copyEntry(*e), true
}

// Has reports whether the entity carries the named status.
func (s *Store) Has(entityID, name string) bool {
	return s.entry(entityID, name) != nil
}

// Clear drops every entry on the entity.
func (s *Store) Clear(entityID string) {
	if _, ok := s.entities[entityID]; !ok {
		return
	}
	delete(s.entities, entityID)
	s.active = removeName(s.active, entityID)
}

// AsList flattens the entity's entries into views. Entries come back in
// insertion order, but callers should not rely on ordering across names.
func (s *Store) AsList(entityID string) []types.StatusView {
	set, ok := s.entities[entityID]
	if !ok {
		return []types.StatusView{}
	}
	views := make([]types.StatusView, 0, len(set.order))
	for _, name := range set.order {
		e := set.entries[name]
		views = append(views, types.StatusView{
			Type:     name,
			Turns:    e.Turns,
			Value:    e.Value,
			SourceID: e.SourceID,
			Quantity: e.Quantity,
			Extra:    copyExtra(e.Extra),
		})
	}
	return views
}

// Active returns the ids of entities carrying at least one entry.
func (s *Store) Active() []string {
	return append([]string(nil), s.active...)
}

// IsActive reports whether the entity is in the active index.
func (s *Store) IsActive(entityID string) bool {
	_, ok := s.entities[entityID]
	return ok
}

// Export returns every entry as records, ordered by the active index then
// insertion order.
func (s *Store) Export() []Record {
	var out []Record
	for _, id := range s.active {
		set := s.entities[id]
		for _, name := range set.order {
			out = append(out, Record{Entity: id, Name: name, Entry: copyEntry(*set.entries[name])})
		}
	}
	return out
}

// Import replaces the store contents with records.
func (s *Store) Import(records []Record) {
	s.entities = map[string]*entitySet{}
	s.active = nil
	for _, r := range records {
		s.Register(r.Entity, r.Name, r.Entry)
	}
}

func (s *Store) ensure(entityID string) *entitySet {
	set, ok := s.entities[entityID]
	if !ok {
		set = &entitySet{entries: map[string]*types.StatusEntry{}}
		s.entities[entityID] = set
		s.active = append(s.active, entityID)
	}
	return set
}

func (s *Store) entry(entityID, name string) *types.StatusEntry {
	set, ok := s.entities[entityID]
	if !ok {
		return nil
	}
	return set.entries[name]
}

// prune drops the entity from the index once it has no entries left.
func (s *Store) prune(entityID string) {
	set, ok := s.entities[entityID]
	if !ok || len(set.entries) > 0 {
		return
	}
	delete(s.entities, entityID)
	s.active = removeName(s.active, entityID)
}

func copyEntry(e types.StatusEntry) types.StatusEntry {
	e.Extra = copyExtra(e.Extra)
	return e
}

func copyExtra(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func removeName(list []string, name string) []string {
	for i, n := range list {
		if n == name {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
