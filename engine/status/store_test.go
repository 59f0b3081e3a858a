package status

import (
	"testing"

	"github.com/nathoo/statuscore/types"
)

func TestStack_AdditiveTurnsMaxValue(t *testing.T) {
	s := NewStore(nil)
	s.Stack("goblin-1", "burn", types.StatusEntry{Turns: 3, Value: 2})
	merged := s.Stack("goblin-1", "burn", types.StatusEntry{Turns: 2, Value: 5})

	if !merged {
		t.Error("expected second application to merge")
	}
	e, ok := s.Entry("goblin-1", "burn")
	if !ok {
		t.Fatal("expected burn entry")
	}
	if e.Turns != 5 || e.Value != 5 {
		t.Errorf("expected turns=5 value=5, got turns=%d value=%d", e.Turns, e.Value)
	}
}

func TestStack_ValueNotAdditive(t *testing.T) {
	tests := []struct {
		name           string
		t1, v1, t2, v2 int
		wantT, wantV   int
	}{
		{"higher first", 2, 7, 1, 3, 3, 7},
		{"higher second", 1, 1, 1, 4, 2, 4},
		{"equal", 4, 2, 4, 2, 8, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(nil)
			s.Stack("e", "poison", types.StatusEntry{Turns: tt.t1, Value: tt.v1})
			s.Stack("e", "poison", types.StatusEntry{Turns: tt.t2, Value: tt.v2})
			e, _ := s.Entry("e", "poison")
			if e.Turns != tt.wantT || e.Value != tt.wantV {
				t.Errorf("got turns=%d value=%d, want turns=%d value=%d", e.Turns, e.Value, tt.wantT, tt.wantV)
			}
		})
	}
}

func TestStack_OneEntryPerName(t *testing.T) {
	s := NewStore(nil)
	for i := 0; i < 3; i++ {
		s.Stack("e", "wet", types.StatusEntry{Turns: 1})
	}
	if got := len(s.AsList("e")); got != 1 {
		t.Errorf("expected 1 entry, got %d", got)
	}
}

func TestRegister_Overwrites(t *testing.T) {
	s := NewStore(nil)
	s.Register("e", "wet", types.StatusEntry{Turns: 3, Quantity: 20})
	s.Register("e", "wet", types.StatusEntry{Turns: 4, Quantity: 40})

	e, _ := s.Entry("e", "wet")
	if e.Turns != 4 || e.Quantity != 40 {
		t.Errorf("expected overwrite to turns=4 quantity=40, got %+v", e)
	}
}

func TestRegister_PreservesExtra(t *testing.T) {
	s := NewStore(nil)
	s.Register("e", "slow", types.StatusEntry{Turns: 2, Extra: map[string]any{"duration": 3}})

	list := s.AsList("e")
	if len(list) != 1 || list[0].Extra["duration"] != 3 {
		t.Errorf("expected extra field to survive, got %+v", list)
	}
}

func TestTick_DecrementAndExpiry(t *testing.T) {
	s := NewStore(nil)
	s.Register("e", "freeze", types.StatusEntry{Turns: 1})

	res := s.Tick("e", nil, nil)
	if len(res) != 1 || !res[0].Expired {
		t.Fatalf("expected freeze to expire, got %+v", res)
	}
	if s.Has("e", "freeze") {
		t.Error("expected freeze to be removed")
	}
	if s.IsActive("e") || len(s.Active()) != 0 {
		t.Error("expected entity to leave the active index")
	}
}

func TestTick_Families(t *testing.T) {
	s := NewStore(nil)
	s.Register("e", "poison", types.StatusEntry{Turns: 3, Value: -2})
	s.Register("e", "regen", types.StatusEntry{Turns: 3, Value: 4})
	s.Register("e", "weaken", types.StatusEntry{Turns: 3, Value: 1})
	s.Register("e", "burning", types.StatusEntry{Turns: 3, Value: 1})

	damage := map[string]int{}
	heal := map[string]int{}
	s.Tick("e",
		func(name string, amt int) { damage[name] += amt },
		func(name string, amt int) { heal[name] += amt },
	)

	if damage["poison"] != 2 {
		t.Errorf("expected poison abs(value)=2, got %d", damage["poison"])
	}
	if damage["burning"] != 1 {
		t.Errorf("expected burning to tick as DOT, got %d", damage["burning"])
	}
	if heal["regen"] != 4 {
		t.Errorf("expected regen heal 4, got %d", heal["regen"])
	}
	if _, ok := damage["weaken"]; ok {
		t.Error("control statuses must not deal damage")
	}
	for _, name := range []string{"poison", "regen", "weaken", "burning"} {
		if e, _ := s.Entry("e", name); e.Turns != 2 {
			t.Errorf("expected %s turns=2, got %d", name, e.Turns)
		}
	}
}

func TestTick_CustomFamily(t *testing.T) {
	s := NewStore(func(name string) types.Family {
		if name == "acid" {
			return types.FamilyDOT
		}
		return types.FamilyNone
	})
	s.Register("e", "acid", types.StatusEntry{Turns: 2, Value: 3})

	var hit int
	s.Tick("e", func(_ string, amt int) { hit = amt }, nil)
	if hit != 3 {
		t.Errorf("expected acid damage 3, got %d", hit)
	}
}

func TestTick_CallbackRemovesEntry(t *testing.T) {
	s := NewStore(nil)
	s.Register("e", "poison", types.StatusEntry{Turns: 3, Value: 1})
	s.Register("e", "burn", types.StatusEntry{Turns: 3, Value: 1})

	res := s.Tick("e", func(name string, _ int) {
		if name == "poison" {
			s.Clear("e")
		}
	}, nil)

	if len(res) != 0 {
		t.Errorf("expected no results after clear, got %+v", res)
	}
	if s.IsActive("e") {
		t.Error("expected entity gone from the index")
	}
}

func TestTick_CallbackAddedEntryWaits(t *testing.T) {
	s := NewStore(nil)
	s.Register("e", "burn", types.StatusEntry{Turns: 3, Value: 1})

	s.Tick("e", func(string, int) {
		s.Register("e", "freeze", types.StatusEntry{Turns: 2})
	}, nil)

	if e, _ := s.Entry("e", "freeze"); e.Turns != 2 {
		t.Errorf("expected freeze untouched this tick, got turns=%d", e.Turns)
	}
}

func TestNoOps_MissingEntity(t *testing.T) {
	s := NewStore(nil)

	if res := s.Tick("ghost", nil, nil); res != nil {
		t.Errorf("expected nil results, got %+v", res)
	}
	s.Clear("ghost")
	if s.Remove("ghost", "wet") {
		t.Error("expected Remove on missing entity to report false")
	}
	if _, removed := s.Consume("ghost", "wet", 10, false); removed {
		t.Error("expected Consume on missing entity to be a no-op")
	}
	if s.IsActive("ghost") || len(s.Active()) != 0 {
		t.Error("no-ops must not create a spurious entry")
	}
	if list := s.AsList("ghost"); len(list) != 0 {
		t.Errorf("expected empty list, got %+v", list)
	}
}

func TestConsume(t *testing.T) {
	s := NewStore(nil)
	s.Register("e", "wet", types.StatusEntry{Turns: 3, Quantity: 40})

	remaining, removed := s.Consume("e", "wet", 10, false)
	if removed || remaining != 30 {
		t.Errorf("expected 30 remaining, got %d removed=%v", remaining, removed)
	}
	if _, removed = s.Consume("e", "wet", 30, false); !removed {
		t.Error("expected removal when quantity hits zero")
	}

	s.Register("e", "wet", types.StatusEntry{Turns: 3, Quantity: 40})
	if _, removed = s.Consume("e", "wet", 0, true); !removed {
		t.Error("expected removal for all")
	}
}

func TestActive_IndexOrder(t *testing.T) {
	s := NewStore(nil)
	s.Register("b", "wet", types.StatusEntry{Turns: 1})
	s.Register("a", "wet", types.StatusEntry{Turns: 1})
	s.Register("c", "wet", types.StatusEntry{Turns: 1})
	s.Remove("a", "wet")

	got := s.Active()
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("expected [b c], got %v", got)
	}
}

func TestExportImport(t *testing.T) {
	s := NewStore(nil)
	s.Register("p", "wet", types.StatusEntry{Turns: 2, Quantity: 30, SourceID: "tile"})
	s.Register("g", "burn", types.StatusEntry{Turns: 3, Value: 2})

	records := s.Export()
	restored := NewStore(nil)
	restored.Import(records)

	if e, _ := restored.Entry("p", "wet"); e.Quantity != 30 || e.SourceID != "tile" {
		t.Errorf("unexpected restored wet %+v", e)
	}
	if got := restored.Active(); len(got) != 2 || got[0] != "p" {
		t.Errorf("expected index order preserved, got %v", got)
	}
}

func TestGet_ReturnsCopies(t *testing.T) {
	s := NewStore(nil)
	s.Register("e", "burn", types.StatusEntry{Turns: 3, Value: 2})

	m := s.Get("e")
	entry := m["burn"]
	entry.Turns = 99
	m["burn"] = entry

	if e, _ := s.Entry("e", "burn"); e.Turns != 3 {
		t.Error("mutating Get result leaked into the store")
	}
}
