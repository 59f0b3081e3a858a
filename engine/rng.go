package engine

import "math/rand"

// countingSource counts every draw from the underlying source so a saved
// position replays exactly, however many draws a single roll consumed.
type countingSource struct {
	src rand.Source64
	n   int64
}

func (c *countingSource) Int63() int64 {
	c.n++
	return c.src.Int63()
}

func (c *countingSource) Uint64() uint64 {
	c.n++
	return c.src.Uint64()
}

func (c *countingSource) Seed(seed int64) {
	c.src.Seed(seed)
	c.n = 0
}

// RNG is the engine's deterministic dice. Position is the number of source
// draws since seeding and is persisted with saves.
type RNG struct {
	seed int64
	cs   *countingSource
	r    *rand.Rand
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	cs := &countingSource{src: rand.NewSource(seed).(rand.Source64)}
	return &RNG{seed: seed, cs: cs, r: rand.New(cs)}
}

// Roll returns a random integer in [1, sides]. Sides below 1 roll as 1.
func (r *RNG) Roll(sides int) int {
	if sides < 1 {
		return 1
	}
	return r.r.Intn(sides) + 1
}

// Chance reports true with the given percentage. 0 never draws.
func (r *RNG) Chance(percent int) bool {
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	return r.Roll(100) <= percent
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of source draws since creation.
func (r *RNG) Position() int64 {
	return r.cs.n
}

// RestoreRNG creates an RNG and advances it to the given position.
func RestoreRNG(seed int64, position int64) *RNG {
	rng := NewRNG(seed)
	for i := int64(0); i < position; i++ {
		rng.cs.Int63()
	}
	return rng
}
