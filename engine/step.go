package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/statuscore/engine/events"
	"github.com/nathoo/statuscore/engine/parser"
	"github.com/nathoo/statuscore/engine/resolve"
	"github.com/nathoo/statuscore/engine/snapshot"
	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/engine/tags"
	"github.com/nathoo/statuscore/types"
)

// Sandbox defaults for omitted numbers, and fixed replies.
const (
	DefaultApplyTurns     = 3
	DefaultApplyValue     = 1
	DefaultExplodeRadius  = 1
	DefaultExplodeAmount  = 5
	DefaultExplosionType  = "fire"
	explosionSource       = "explosion"
	sandboxSource         = "sandbox"
	noPlayerMessage       = "There is no player in this arena."
	unknownCommandMessage = "I don't understand that. Type help for commands."
)

// StepResult is what one sandbox command produced.
type StepResult struct {
	Output []string
	Events []types.Event
	Quit   bool
}

// Step parses and executes one sandbox command. Events published while it
// runs are narrated into Output and returned for tracing.
func (e *Engine) Step(ctx context.Context, input string) StepResult {
	intent := parser.Parse(input)
	if intent.Verb == "" {
		return StepResult{}
	}

	rec := events.NewRecorder()
	orig := e.Publisher
	e.Publisher = events.Fanout(orig, rec)
	defer func() { e.Publisher = orig }()

	var res StepResult
	switch intent.Verb {
	case "apply":
		res.Output = e.cmdApply(ctx, intent)
	case "remove":
		res.Output = e.cmdRemove(ctx, intent)
	case "attack":
		res.Output = e.cmdAttack(ctx, intent)
	case "explode":
		res.Output = e.cmdExplode(ctx, intent)
	case "move":
		res.Output = e.cmdMove(ctx, intent)
	case "equip":
		res.Output = e.cmdEquip(ctx, intent)
	case "unequip":
		res.Output = e.cmdUnequip(ctx, intent)
	case "turn":
		res.Output = e.cmdTurn(ctx, intent)
	case "end":
		e.EndRound(ctx)
	case "inspect":
		res.Output = e.cmdInspect(intent)
	case "status":
		res.Output = e.cmdStatus()
	case "rules":
		res.Output = e.cmdRules()
	case "enable", "disable":
		res.Output = e.cmdToggle(intent)
	case "help":
		res.Output = HelpText()
	case "quit":
		res.Quit = true
	default:
		res.Output = []string{unknownCommandMessage}
	}

	res.Events = rec.Events()
	for _, ev := range res.Events {
		if line := e.Narrate(ev); line != "" {
			res.Output = append(res.Output, line)
		}
	}
	return res
}

// HelpText lists the sandbox commands.
func HelpText() []string {
	return []string{
		"Commands:",
		"  apply <status> to <who> [for N] [at V] [Q]   add or stack a status",
		"  remove <status> from <who>                   drop a status",
		"  attack <who> [with <type>] [N]               strike (N fixes the damage)",
		"  explode at X Y [radius R] [with <type>] [amount N]",
		"  move <direction>                             n/s/e/w/ne/nw/se/sw",
		"  equip <item> [on <who>]  /  unequip <slot or item> [from <who>]",
		"  turn [who]                                   run one entity turn",
		"  end                                          end the round",
		"  inspect [who]  /  status  /  rules",
		"  enable <rule>  /  disable <rule>",
		"  help  /  quit",
	}
}

// target resolves a name, defaulting to the player when empty.
func (e *Engine) target(name string) (string, string) {
	if name == "" {
		if e.Entity(state.PlayerID) == nil {
			return "", noPlayerMessage
		}
		return state.PlayerID, ""
	}
	id, err := resolve.Entity(e.World, name)
	if err != nil {
		return "", capitalize(err.Error()) + "."
	}
	return id, ""
}

func (e *Engine) cmdApply(ctx context.Context, in types.Intent) []string {
	if in.Object == "" {
		return []string{"Apply what?"}
	}
	name := tags.Canonical(e.Defs, in.Object)
	if _, ok := e.Defs.Statuses[name]; !ok {
		return []string{fmt.Sprintf("Unknown status %q.", in.Object)}
	}
	id, msg := e.target(in.Target)
	if msg != "" {
		return []string{msg}
	}
	turns, value := DefaultApplyTurns, DefaultApplyValue
	opts := []StatusOption{WithSource(sandboxSource)}
	if len(in.Numbers) > 0 {
		turns = in.Numbers[0]
	}
	if len(in.Numbers) > 1 {
		value = in.Numbers[1]
	}
	if len(in.Numbers) > 2 {
		opts = append(opts, WithQuantity(in.Numbers[2]))
	}
	if turns <= 0 {
		return []string{"Turns must be positive."}
	}
	if !e.ApplyStatus(ctx, id, in.Object, turns, value, opts...) {
		return []string{"Nothing happens."}
	}
	return nil
}

func (e *Engine) cmdRemove(ctx context.Context, in types.Intent) []string {
	if in.Object == "" {
		return []string{"Remove what?"}
	}
	id, msg := e.target(in.Target)
	if msg != "" {
		return []string{msg}
	}
	if !e.RemoveStatus(ctx, id, in.Object) {
		return []string{fmt.Sprintf("%s has no %s.", e.DisplayName(id), in.Object)}
	}
	return nil
}

// playerRound runs the player's turn with act as its action, then ends the
// round.
func (e *Engine) playerRound(ctx context.Context, act func(ent *types.Entity)) []string {
	if e.Entity(state.PlayerID) == nil {
		return []string{noPlayerMessage}
	}
	res := e.RunTurn(ctx, state.PlayerID, act)
	e.EndRound(ctx)
	switch {
	case res.Reason == ReasonDead:
		return []string{"You are dead."}
	case !res.Acted:
		return []string{fmt.Sprintf("You cannot act (%s).", res.Reason)}
	}
	return nil
}

func (e *Engine) cmdAttack(ctx context.Context, in types.Intent) []string {
	if in.Object == "" {
		return []string{"Attack whom?"}
	}
	id, msg := e.target(in.Object)
	if msg != "" {
		return []string{msg}
	}
	if id == state.PlayerID {
		return []string{"You decide against it."}
	}
	atk := Attack{Type: parser.DamageType(in.Target)}
	if len(in.Numbers) > 0 {
		atk.Amount = in.Numbers[0]
	}
	var out []string
	blocked := e.playerRound(ctx, func(*types.Entity) {
		res := e.Strike(ctx, state.PlayerID, id, atk)
		if !res.Hit {
			if t := e.Entity(id); t != nil && !t.Alive {
				out = append(out, fmt.Sprintf("%s is already dead.", e.DisplayName(id)))
			}
			return
		}
		line := fmt.Sprintf("You strike %s: %d damage", e.DisplayName(id), res.Raw)
		if res.Roll > 0 {
			line += fmt.Sprintf(" (rolled %d)", res.Roll)
		}
		if res.Final != res.Raw {
			line += fmt.Sprintf(", %d after resolution", res.Final)
		}
		out = append(out, line+".")
		out = append(out, hookLines(res.HookErrors)...)
	})
	return append(out, blocked...)
}

func (e *Engine) cmdExplode(ctx context.Context, in types.Intent) []string {
	if len(in.Numbers) < 2 {
		return []string{"Explode where? Try: explode at 5 5 radius 2 with fire amount 6"}
	}
	x, y := in.Numbers[0], in.Numbers[1]
	if !state.InBounds(e.World, x, y) {
		return []string{fmt.Sprintf("(%d,%d) is outside the arena.", x, y)}
	}
	radius, amount := DefaultExplodeRadius, DefaultExplodeAmount
	if len(in.Numbers) > 2 {
		radius = in.Numbers[2]
	}
	if len(in.Numbers) > 3 {
		amount = in.Numbers[3]
	}
	dtype := DefaultExplosionType
	if in.Target != "" {
		dtype = parser.DamageType(in.Target)
	}
	hits := e.Explode(ctx, x, y, radius, types.DamageEvent{Amount: amount, Type: dtype, SourceID: explosionSource})
	if len(hits) == 0 {
		return []string{"The blast hits nothing."}
	}
	return []string{fmt.Sprintf("The blast catches %d.", len(hits))}
}

func (e *Engine) cmdMove(ctx context.Context, in types.Intent) []string {
	dx, dy, ok := parser.Direction(in.Object)
	if !ok {
		return []string{"Move where?"}
	}
	var out []string
	blocked := e.playerRound(ctx, func(*types.Entity) {
		res := e.Move(ctx, state.PlayerID, dx, dy)
		switch res.Reason {
		case ReasonOutOfBounds:
			out = append(out, "You can't go that way.")
		case ReasonBlocked:
			out = append(out, "Something is in the way.")
		}
	})
	return append(out, blocked...)
}

func (e *Engine) cmdEquip(ctx context.Context, in types.Intent) []string {
	if in.Object == "" {
		return []string{"Equip what?"}
	}
	item, ok := e.findItem(in.Object)
	if !ok {
		return []string{fmt.Sprintf("No item called %q.", in.Object)}
	}
	id, msg := e.target(in.Target)
	if msg != "" {
		return []string{msg}
	}
	res := e.Equip(ctx, id, item)
	if !res.Done {
		return []string{fmt.Sprintf("%s cannot wear that.", e.DisplayName(id))}
	}
	return hookLines(res.HookErrors)
}

func (e *Engine) cmdUnequip(ctx context.Context, in types.Intent) []string {
	if in.Object == "" {
		return []string{"Unequip what?"}
	}
	id, msg := e.target(in.Target)
	if msg != "" {
		return []string{msg}
	}
	slot := in.Object
	if !ValidSlot(slot) {
		slot = ""
		ent := e.Entity(id)
		for _, s := range snapshot.SlotOrder(ent.Equipment) {
			if matchesItem(ent.Equipment[s], in.Object) {
				slot = s
				break
			}
		}
	}
	res := e.Unequip(ctx, id, slot)
	if !res.Done {
		return []string{fmt.Sprintf("%s is not wearing %s.", e.DisplayName(id), in.Object)}
	}
	return hookLines(res.HookErrors)
}

func (e *Engine) cmdTurn(ctx context.Context, in types.Intent) []string {
	id, msg := e.target(in.Object)
	if msg != "" {
		return []string{msg}
	}
	res := e.RunTurnPhases(ctx, id)
	if res.Reason == ReasonDead {
		return []string{fmt.Sprintf("%s is dead.", e.DisplayName(id))}
	}
	return []string{fmt.Sprintf("%s's turn passes.", e.DisplayName(id))}
}

func (e *Engine) cmdInspect(in types.Intent) []string {
	id, msg := e.target(in.Object)
	if msg != "" {
		return []string{msg}
	}
	return e.Describe(id)
}

// Describe renders an entity's snapshot as text lines.
func (e *Engine) Describe(id string) []string {
	ent := e.Entity(id)
	snap, ok := e.Snapshot(id)
	if !ok {
		return []string{fmt.Sprintf("No entity %q.", id)}
	}
	out := []string{fmt.Sprintf("%s [%s] at (%d,%d)  hp %d/%d", ent.Name, id, ent.X, ent.Y, snap.HP, snap.HPMax)}
	if !snap.Alive {
		out[0] += "  (dead)"
	}
	if snap.Env.Tile != "" {
		out = append(out, "  tile: "+snap.Env.Tile)
	}
	out = append(out, fmt.Sprintf("  env: %.0fC, oxygen %.2f", snap.Env.TemperatureC, snap.Env.Oxygen))
	for _, st := range snap.Statuses {
		line := fmt.Sprintf("  %s: %d turns, value %d", st.ID, st.Turns, st.Value)
		if st.Quantity > 0 {
			line += fmt.Sprintf(", quantity %d", st.Quantity)
		}
		out = append(out, line)
	}
	for _, slot := range snapshot.SlotOrder(ent.Equipment) {
		out = append(out, fmt.Sprintf("  %s: %s", slot, ent.Equipment[slot].Name))
	}
	if ids := materialIDs(snap.Materials); len(ids) > 0 {
		out = append(out, "  materials: "+strings.Join(ids, ", "))
	}
	if all := snapshot.AllTags(snap); len(all) > 0 {
		out = append(out, "  tags: "+strings.Join(all, ", "))
	}
	return out
}

func (e *Engine) cmdStatus() []string {
	out := []string{fmt.Sprintf("Turn %d", e.World.Turn)}
	for _, ent := range e.World.Entities {
		id := state.EntityID(ent)
		line := fmt.Sprintf("  %-12s hp %d/%d", id, ent.HP, ent.HPMax)
		if !ent.Alive {
			line += " dead"
		}
		var names []string
		for _, v := range e.GetStatusList(id) {
			names = append(names, fmt.Sprintf("%s(%d)", v.Type, v.Turns))
		}
		if len(names) > 0 {
			line += "  " + strings.Join(names, " ")
		}
		out = append(out, line)
	}
	return out
}

func (e *Engine) cmdRules() []string {
	ids := e.Rules.IDs()
	sort.Strings(ids)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		mark := "on "
		if !e.Rules.Enabled(id) {
			mark = "off"
		}
		out = append(out, fmt.Sprintf("  [%s] %s", mark, id))
	}
	return out
}

func (e *Engine) cmdToggle(in types.Intent) []string {
	if in.Object == "" {
		return []string{"Which rule?"}
	}
	on := in.Verb == "enable"
	if !e.Rules.SetEnabled(in.Object, on) {
		return []string{fmt.Sprintf("No rule named %q.", in.Object)}
	}
	return []string{fmt.Sprintf("Rule %s %sd.", in.Object, in.Verb)}
}

// findItem looks an item up by catalog id or display name.
func (e *Engine) findItem(name string) (types.Item, bool) {
	if item, ok := e.ItemFor(strings.ReplaceAll(name, " ", "_")); ok {
		return item, true
	}
	ids := make([]string, 0, len(e.Defs.Items))
	for id := range e.Defs.Items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		item, _ := e.ItemFor(id)
		if matchesItem(item, name) {
			return item, true
		}
	}
	return types.Item{}, false
}

func matchesItem(item types.Item, name string) bool {
	name = strings.ToLower(name)
	return strings.ToLower(item.ID) == strings.ReplaceAll(name, " ", "_") ||
		strings.ToLower(item.Name) == name
}

func hookLines(errs []*HookError) []string {
	var out []string
	for _, herr := range errs {
		out = append(out, fmt.Sprintf("[%v]", herr))
	}
	return out
}

func materialIDs(ms []types.MaterialFacts) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
