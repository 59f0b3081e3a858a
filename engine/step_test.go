package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/nathoo/statuscore/engine/events"
	"github.com/nathoo/statuscore/engine/rules"
	"github.com/nathoo/statuscore/engine/state"
)

func step(t *testing.T, e *Engine, input string) StepResult {
	t.Helper()
	return e.Step(context.Background(), input)
}

func hasLine(out []string, want string) bool {
	for _, line := range out {
		if strings.Contains(line, want) {
			return true
		}
	}
	return false
}

func TestStep_Apply(t *testing.T) {
	tests := []struct {
		input string
		id    string
		name  string
		turns int
		value int
		line  string
	}{
		{"apply burn to goblin for 4 at 2", "goblin-1", "burn", 4, 2, "Goblin gains burn (4 turns)."},
		{"apply burning to the goblin", "goblin-1", "burn", DefaultApplyTurns, DefaultApplyValue, "Goblin gains burn"},
		{"apply poison", state.PlayerID, "poison", DefaultApplyTurns, DefaultApplyValue, "You gains poison"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, _ := testEngine(t, Options{})
			res := step(t, e, tt.input)
			got := entry(t, e, tt.id, tt.name)
			if got.Turns != tt.turns || got.Value != tt.value {
				t.Errorf("entry = %+v, want turns %d value %d", got, tt.turns, tt.value)
			}
			if !hasLine(res.Output, tt.line) {
				t.Errorf("output %q missing %q", res.Output, tt.line)
			}
		})
	}
}

func TestStep_ApplyQuantity(t *testing.T) {
	e, _ := testEngine(t, Options{})
	step(t, e, "apply wet to goblin for 3 at 0 25")
	if got := entry(t, e, "goblin-1", "wet"); got.Quantity != 25 || got.SourceID != sandboxSource {
		t.Errorf("wet = %+v", got)
	}
}

func TestStep_Errors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"apply doom to goblin", `Unknown status "doom".`},
		{"apply burn to dragon", `You don't see "dragon" here.`},
		{"apply", "Apply what?"},
		{"apply burn to goblin for 0", "Turns must be positive."},
		{"remove burn from goblin", "Goblin has no burn."},
		{"attack", "Attack whom?"},
		{"attack me", "You decide against it."},
		{"explode", "Explode where?"},
		{"explode at 50 50", "(50,50) is outside the arena."},
		{"move", "Move where?"},
		{"west", "You can't go that way."},
		{"equip excalibur", `No item called "excalibur".`},
		{"unequip ring", "You is not wearing ring."},
		{"disable nothing", `No rule named "nothing".`},
		{"dance wildly", unknownCommandMessage},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, _ := testEngine(t, Options{})
			res := step(t, e, tt.input)
			if !hasLine(res.Output, tt.want) {
				t.Errorf("output %q missing %q", res.Output, tt.want)
			}
		})
	}
}

func TestStep_Remove(t *testing.T) {
	e, _ := testEngine(t, Options{})
	step(t, e, "apply burn to goblin")
	res := step(t, e, "cure burn from goblin")
	if e.HasStatus("goblin-1", "burn") {
		t.Error("burn still present")
	}
	if !hasLine(res.Output, "Goblin loses burn.") {
		t.Errorf("output = %q", res.Output)
	}
}

func TestStep_AttackRunsRound(t *testing.T) {
	e, _ := testEngine(t, Options{})
	res := step(t, e, "attack goblin with lightning 4")

	if hp := e.Entity("goblin-1").HP; hp != 6 {
		t.Errorf("goblin hp = %d, want 6", hp)
	}
	for _, want := range []string{
		"You strike Goblin: 4 damage.",
		"Goblin takes 4 electric damage (6/10 hp).",
		"Round 0 ends.",
	} {
		if !hasLine(res.Output, want) {
			t.Errorf("output %q missing %q", res.Output, want)
		}
	}
	if e.World.Turn != 1 {
		t.Errorf("turn = %d, want 1", e.World.Turn)
	}
}

func TestStep_WetLightningKills(t *testing.T) {
	e, _ := testEngine(t, Options{})
	step(t, e, "apply wet to goblin for 3")
	res := step(t, e, "zap goblin with lightning 1")

	if e.Entity("goblin-1").Alive {
		t.Fatal("goblin survived")
	}
	if !hasLine(res.Output, "after resolution") || !hasLine(res.Output, "Goblin dies.") {
		t.Errorf("output = %q", res.Output)
	}
	res = step(t, e, "attack goblin-1 3")
	if !hasLine(res.Output, "Goblin is already dead.") {
		t.Errorf("output = %q", res.Output)
	}
}

func TestStep_Explode(t *testing.T) {
	e, _ := testEngine(t, Options{})
	res := step(t, e, "explode at 5 5 radius 1 amount 3")
	if hp := e.Entity("goblin-1").HP; hp != 7 {
		t.Errorf("goblin hp = %d, want 7", hp)
	}
	if e.Entity(state.PlayerID).HP != 20 {
		t.Error("player outside the radius was hit")
	}
	if !hasLine(res.Output, "The blast catches 1.") || !hasLine(res.Output, "3 fire damage") {
		t.Errorf("output = %q", res.Output)
	}

	res = step(t, e, "blast at 9 9 with frost")
	if !hasLine(res.Output, "The blast hits nothing.") {
		t.Errorf("output = %q", res.Output)
	}
}

func TestStep_Move(t *testing.T) {
	e, _ := testEngine(t, Options{})
	res := step(t, e, "e")
	p := e.Entity(state.PlayerID)
	if p.X != 1 || p.Y != 0 {
		t.Errorf("player at (%d,%d), want (1,0)", p.X, p.Y)
	}
	if !hasLine(res.Output, "You moves to (1,0).") {
		t.Errorf("output = %q", res.Output)
	}

	step(t, e, "apply freeze to me for 2")
	res = step(t, e, "go south")
	if p.Y != 0 {
		t.Error("frozen player moved")
	}
	if !hasLine(res.Output, "You cannot act (freeze).") {
		t.Errorf("output = %q", res.Output)
	}
}

func TestStep_WaterWalkVisibleWet(t *testing.T) {
	e, _ := testEngine(t, Options{})
	for x := 1; x <= 3; x++ {
		state.SetTile(e.World, x, 0, "water")
	}

	// A sandbox move is the turn's action, so it lands after the tick and
	// the fresh soak is what shows.
	for i := 1; i <= 3; i++ {
		step(t, e, "move east")
		wet := entry(t, e, state.PlayerID, "wet")
		if wet.Turns != 4 || wet.Quantity != 40 {
			t.Errorf("move %d: wet = %d turns, %d quantity; want 4 and 40", i, wet.Turns, wet.Quantity)
		}
	}

	// A turn spent standing in the water ticks the soak down to 3.
	for i := 1; i <= 2; i++ {
		step(t, e, "end round")
		wet := entry(t, e, state.PlayerID, "wet")
		if wet.Turns != 3 || wet.Quantity != 30 {
			t.Errorf("round %d: wet = %d turns, %d quantity; want 3 and 30", i, wet.Turns, wet.Quantity)
		}
	}
}

func TestStep_Gear(t *testing.T) {
	e, _ := testEngine(t, Options{})

	res := step(t, e, "equip chainmail")
	if got := e.Entity(state.PlayerID).Equipment["armor"].ID; got != "chainmail" {
		t.Errorf("armor = %q", got)
	}
	if !hasLine(res.Output, "equips Chainmail.") {
		t.Errorf("output = %q", res.Output)
	}

	step(t, e, "wield iron sword on goblin")
	if got := e.Entity("goblin-1").Equipment["weapon"].ID; got != "iron_sword" {
		t.Errorf("goblin weapon = %q", got)
	}

	res = step(t, e, "take off chainmail")
	if _, ok := e.Entity(state.PlayerID).Equipment["armor"]; ok {
		t.Error("chainmail still worn")
	}
	if !hasLine(res.Output, "takes off Chainmail.") {
		t.Errorf("output = %q", res.Output)
	}

	step(t, e, "unequip weapon from goblin")
	if len(e.Entity("goblin-1").Equipment) != 0 {
		t.Error("goblin weapon still worn")
	}
}

func TestStep_TurnAndEnd(t *testing.T) {
	e, _ := testEngine(t, Options{})
	step(t, e, "apply poison to goblin for 2 at 3")

	res := step(t, e, "turn goblin")
	if hp := e.Entity("goblin-1").HP; hp != 7 {
		t.Errorf("goblin hp = %d, want 7", hp)
	}
	if !hasLine(res.Output, "Goblin's turn passes.") || !hasLine(res.Output, "Goblin takes 3 poison damage") {
		t.Errorf("output = %q", res.Output)
	}

	res = step(t, e, "end round")
	if e.World.Turn != 1 {
		t.Errorf("turn = %d, want 1", e.World.Turn)
	}
	if hp := e.Entity("goblin-1").HP; hp != 7 {
		t.Errorf("goblin ticked twice in one round: hp %d", hp)
	}
	if !hasLine(res.Output, "Round 0 ends.") {
		t.Errorf("output = %q", res.Output)
	}
}

func TestStep_InspectAndStatus(t *testing.T) {
	e, _ := testEngine(t, Options{})
	step(t, e, "apply wet to goblin for 3 at 0 40")
	step(t, e, "equip iron_sword on goblin")

	res := step(t, e, "look at goblin")
	for _, want := range []string{
		"Goblin [goblin-1] at (5,5)  hp 10/10",
		"wet: 3 turns, value 0, quantity 40",
		"weapon: Iron Sword",
		"materials: metal",
		"tags: conductive",
	} {
		if !hasLine(res.Output, want) {
			t.Errorf("inspect output %q missing %q", res.Output, want)
		}
	}

	res = step(t, e, "status")
	if !hasLine(res.Output, "Turn 0") || !hasLine(res.Output, "wet(3)") {
		t.Errorf("status output = %q", res.Output)
	}
}

func TestStep_Rules(t *testing.T) {
	e, _ := testEngine(t, Options{})

	res := step(t, e, "disable wet_drip")
	if e.Rules.Enabled(rules.WetDrip) {
		t.Error("wet_drip still enabled")
	}
	if !hasLine(res.Output, "Rule wet_drip disabled.") {
		t.Errorf("output = %q", res.Output)
	}
	res = step(t, e, "rules")
	if !hasLine(res.Output, "[off] wet_drip") || !hasLine(res.Output, "[on ] wet_dampens_fire") {
		t.Errorf("rules output = %q", res.Output)
	}
	step(t, e, "turn on wet_drip")
	if !e.Rules.Enabled(rules.WetDrip) {
		t.Error("wet_drip not re-enabled")
	}
}

func TestStep_Meta(t *testing.T) {
	e, rec := testEngine(t, Options{})

	if res := step(t, e, "   "); len(res.Output) != 0 || res.Quit {
		t.Errorf("blank input = %+v", res)
	}
	if res := step(t, e, "help"); !hasLine(res.Output, "Commands:") {
		t.Errorf("help = %q", res.Output)
	}
	if res := step(t, e, "quit"); !res.Quit {
		t.Error("quit did not set Quit")
	}

	step(t, e, "apply burn to goblin")
	if e.Publisher != events.Publisher(rec) {
		t.Error("publisher not restored after Step")
	}
	if len(rec.OfType(events.StatusRegistered)) != 1 {
		t.Error("events did not reach the engine publisher")
	}
}
