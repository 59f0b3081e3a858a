package resolve

import (
	"errors"
	"testing"

	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/types"
)

func testWorld() *types.World {
	w := state.NewWorld(8, 8, 1)
	state.Spawn(w, state.PlayerID, "Hero", 0, 0, 20)
	state.Spawn(w, "goblin", "Cave Goblin", 2, 2, 8)
	state.Spawn(w, "fire_imp", "Imp", 3, 3, 5)
	state.Spawn(w, "rat", "Rat", 4, 4, 2)
	state.Spawn(w, "rat", "Rat", 5, 5, 2)
	return w
}

func TestEntity(t *testing.T) {
	w := testWorld()
	tests := []struct {
		name string
		want string
	}{
		{"me", state.PlayerID},
		{"Hero", state.PlayerID},
		{"goblin", "goblin-1"},
		{"cave goblin", "goblin-1"},
		{"GOBLIN-1", "goblin-1"},
		{"fire imp", "fire_imp-2"},
		{"imp", "fire_imp-2"},
		{"rat-3", "rat-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Entity(w, tt.name)
			if err != nil {
				t.Fatalf("Entity(%q) error: %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("Entity(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestEntity_Ambiguous(t *testing.T) {
	_, err := Entity(testWorld(), "rat")
	var amb *AmbiguityError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguityError, got %v", err)
	}
	if len(amb.Candidates) != 2 {
		t.Errorf("candidates = %v, want 2", amb.Candidates)
	}
}

func TestEntity_NotFound(t *testing.T) {
	w := testWorld()
	for _, name := range []string{"dragon", "", "  "} {
		_, err := Entity(w, name)
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("Entity(%q): expected NotFoundError, got %v", name, err)
		}
	}
}

func TestEntity_DeadSkippedByName(t *testing.T) {
	w := testWorld()
	w.Entities[4].Alive = false

	got, err := Entity(w, "rat")
	if err != nil {
		t.Fatal(err)
	}
	if got != "rat-3" {
		t.Errorf("got %q, want the living rat", got)
	}
}
