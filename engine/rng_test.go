package engine

import "testing"

func TestRNG_Deterministic(t *testing.T) {
	rng1 := NewRNG(42)
	rng2 := NewRNG(42)

	for i := 0; i < 20; i++ {
		a := rng1.Roll(6)
		b := rng2.Roll(6)
		if a != b {
			t.Fatalf("roll %d: got %d and %d from same seed", i, a, b)
		}
	}
}

func TestRNG_Roll_Range(t *testing.T) {
	rng := NewRNG(99)

	for i := 0; i < 1000; i++ {
		r := rng.Roll(6)
		if r < 1 || r > 6 {
			t.Fatalf("roll out of range [1,6]: got %d", r)
		}
	}
}

func TestRNG_Roll_Degenerate(t *testing.T) {
	rng := NewRNG(1)

	for _, sides := range []int{1, 0, -3} {
		if r := rng.Roll(sides); r != 1 {
			t.Fatalf("Roll(%d) = %d, want 1", sides, r)
		}
	}
}

func TestRNG_Chance_Bounds(t *testing.T) {
	rng := NewRNG(5)
	for i := 0; i < 50; i++ {
		if rng.Chance(0) {
			t.Fatal("Chance(0) returned true")
		}
		if !rng.Chance(100) {
			t.Fatal("Chance(100) returned false")
		}
	}
	if rng.Position() != 0 {
		t.Errorf("bounded chances drew %d times, want 0", rng.Position())
	}
}

func TestRNG_RestoreReplaysSequence(t *testing.T) {
	rng := NewRNG(7)
	for i := 0; i < 13; i++ {
		rng.Roll(6)
		rng.Chance(30)
	}
	pos := rng.Position()
	if pos < 26 {
		t.Fatalf("position = %d, want at least one draw per call", pos)
	}

	restored := RestoreRNG(7, pos)
	if restored.Position() != pos {
		t.Fatalf("restored position = %d, want %d", restored.Position(), pos)
	}
	for i := 0; i < 20; i++ {
		a, b := rng.Roll(20), restored.Roll(20)
		if a != b {
			t.Fatalf("roll %d after restore: got %d, want %d", i, b, a)
		}
	}
}

func TestRNG_Seed(t *testing.T) {
	if got := NewRNG(1234).Seed(); got != 1234 {
		t.Errorf("Seed() = %d, want 1234", got)
	}
}
