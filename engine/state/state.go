// Package state holds the content catalog and the arena lookups the engine
// runs against. World mutation outside of these helpers belongs to the
// engine packages.
package state

import (
	"fmt"

	"github.com/nathoo/statuscore/types"
)

// PlayerID is the fixed identifier of the player entity.
const PlayerID = "player"

// Defs holds the immutable content catalog loaded from Lua.
type Defs struct {
	Statuses  map[string]types.StatusDef
	Aliases   map[string]string // alias → canonical status name
	Materials map[string]types.MaterialDef
	Tiles     map[string]types.TileDef
	Biomes    map[string]types.BiomeDef
	Weather   map[string]types.WeatherDef
	Items     map[string]types.ItemDef
	Rules     []types.RuleDef
}

// NewWorld creates an empty arena of the given size.
func NewWorld(width, height int, seed int64) *types.World {
	return &types.World{
		Width:    width,
		Height:   height,
		Tiles:    make([]string, width*height),
		Entities: []*types.Entity{},
		RNGSeed:  seed,
	}
}

// Spawn places a new entity in the arena. Every spawned entity receives an
// explicit arena id (kind-<slot>) so its identity survives movement; the
// player kind always gets PlayerID.
func Spawn(w *types.World, kind, name string, x, y, hp int) *types.Entity {
	id := fmt.Sprintf("%s-%d", kind, len(w.Entities))
	if kind == PlayerID {
		id = PlayerID
	}
	e := &types.Entity{
		ID:        id,
		Kind:      kind,
		Name:      name,
		X:         x,
		Y:         y,
		HP:        hp,
		HPMax:     hp,
		Alive:     hp > 0,
		Stats:     map[string]int{},
		Equipment: map[string]types.Item{},
	}
	w.Entities = append(w.Entities, e)
	return e
}

// EntityID derives the status-store key for an entity. The player has a
// fixed id, an explicit id wins next, and anything else falls back to its
// coordinates. Coordinate ids change when the entity moves.
func EntityID(e *types.Entity) string {
	if e == nil {
		return ""
	}
	if e.Kind == PlayerID {
		return PlayerID
	}
	if e.ID != "" {
		return e.ID
	}
	return fmt.Sprintf("%s_%d_%d", e.Kind, e.X, e.Y)
}

// Lookup finds an entity by its derived id. Returns nil when absent.
func Lookup(w *types.World, id string) *types.Entity {
	if w == nil || id == "" {
		return nil
	}
	for _, e := range w.Entities {
		if EntityID(e) == id {
			return e
		}
	}
	return nil
}

// InBounds reports whether (x, y) lies on the grid.
func InBounds(w *types.World, x, y int) bool {
	return x >= 0 && y >= 0 && x < w.Width && y < w.Height
}

// TileAt returns the tile name at (x, y). Off-grid and plain floor are "".
func TileAt(w *types.World, x, y int) string {
	if w == nil || !InBounds(w, x, y) || len(w.Tiles) != w.Width*w.Height {
		return ""
	}
	return w.Tiles[y*w.Width+x]
}

// SetTile sets the tile at (x, y). Off-grid writes are ignored.
func SetTile(w *types.World, x, y int, tile string) {
	if !InBounds(w, x, y) {
		return
	}
	if len(w.Tiles) != w.Width*w.Height {
		w.Tiles = make([]string, w.Width*w.Height)
	}
	w.Tiles[y*w.Width+x] = tile
}

// OccupantAt returns the living entity standing on (x, y), if any.
func OccupantAt(w *types.World, x, y int) *types.Entity {
	for _, e := range w.Entities {
		if e.Alive && e.X == x && e.Y == y {
			return e
		}
	}
	return nil
}

// Distance is the Chebyshev distance between two cells. Every radius check
// in the engine uses it.
func Distance(ax, ay, bx, by int) int {
	dx, dy := abs(ax-bx), abs(ay-by)
	if dx > dy {
		return dx
	}
	return dy
}

// EntitiesWithin returns living entities within radius of (x, y), in arena
// order.
func EntitiesWithin(w *types.World, x, y, radius int) []*types.Entity {
	var result []*types.Entity
	for _, e := range w.Entities {
		if !e.Alive {
			continue
		}
		if Distance(x, y, e.X, e.Y) <= radius {
			result = append(result, e)
		}
	}
	return result
}

// Stat returns a base stat. Missing stats are 0.
func Stat(e *types.Entity, name string) int {
	if e == nil {
		return 0
	}
	return e.Stats[name]
}

// Scratch returns the entity's per-turn scratch bag, creating it if absent.
func Scratch(e *types.Entity) *types.Scratch {
	if e.Engine == nil {
		e.Engine = &types.Scratch{}
	}
	return e.Engine
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
