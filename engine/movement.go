package engine

import (
	"context"

	"github.com/nathoo/statuscore/engine/actions"
	"github.com/nathoo/statuscore/engine/events"
	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/engine/tags"
	"github.com/nathoo/statuscore/types"
)

// Reasons a move is refused.
const (
	ReasonOutOfBounds = "out of bounds"
	ReasonBlocked     = "blocked"
)

// MoveResult reports one Move call.
type MoveResult struct {
	Moved  bool
	Reason string
	X, Y   int
}

// Move steps an entity by (dx, dy). Immobilizing statuses and a prevented
// turn cancel the move. Entering a tile applies its soak and hazard.
func (e *Engine) Move(ctx context.Context, id string, dx, dy int) MoveResult {
	ent := e.Entity(id)
	if ent == nil {
		return MoveResult{Reason: ReasonMissing}
	}
	if !ent.Alive {
		return MoveResult{Reason: ReasonDead, X: ent.X, Y: ent.Y}
	}
	if reason := e.moveBlocker(ent); reason != "" {
		events.Dispatch(ctx, e.Publisher, []types.Event{events.New(events.MoveCancelled, id, map[string]any{"reason": reason})})
		return MoveResult{Reason: reason, X: ent.X, Y: ent.Y}
	}
	nx, ny := ent.X+dx, ent.Y+dy
	if !state.InBounds(e.World, nx, ny) {
		return MoveResult{Reason: ReasonOutOfBounds, X: ent.X, Y: ent.Y}
	}
	if occ := state.OccupantAt(e.World, nx, ny); occ != nil && occ != ent {
		return MoveResult{Reason: ReasonBlocked, X: ent.X, Y: ent.Y}
	}

	from := []int{ent.X, ent.Y}
	ent.X, ent.Y = nx, ny
	tile := state.TileAt(e.World, nx, ny)
	events.Dispatch(ctx, e.Publisher, []types.Event{events.New(events.EntityMoved, state.EntityID(ent), map[string]any{
		"from": from,
		"to":   []int{nx, ny},
		"tile": tile,
	})})
	e.EnterTile(ctx, ent)
	return MoveResult{Moved: true, X: nx, Y: ny}
}

// EnterTile applies the effects of the tile an entity stands on: the soak
// status is refreshed and hazards deal their damage.
func (e *Engine) EnterTile(ctx context.Context, ent *types.Entity) {
	def, ok := e.Defs.Tiles[state.TileAt(e.World, ent.X, ent.Y)]
	if !ok || !ent.Alive {
		return
	}
	var acts []types.Action
	if s := def.Soak; s != nil && s.Status != "" {
		acts = append(acts, actions.RefreshStatus(s.Status, s.Turns, s.Value, s.Quantity))
	}
	if def.Damage > 0 && tags.Has(def.Tags, "hazard") {
		acts = append(acts, actions.Damage(def.Damage, def.DamageType, "tile:"+def.Name))
	}
	e.apply(ctx, ent, "", acts, nil)
}

func (e *Engine) moveBlocker(ent *types.Entity) string {
	if ent.Engine != nil && ent.Engine.PreventTurn != "" {
		return ent.Engine.PreventTurn
	}
	for _, v := range e.Store.AsList(state.EntityID(ent)) {
		if tags.Has(tags.ForStatus(e.Defs, v.Type), "immobilize") {
			return v.Type
		}
	}
	return ""
}
