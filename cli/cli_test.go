package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/statuscore/engine"
	"github.com/nathoo/statuscore/engine/state"
	"github.com/nathoo/statuscore/engine/telemetry"
	"github.com/nathoo/statuscore/journal"
)

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	w := state.NewWorld(8, 8, 42)
	p := state.Spawn(w, state.PlayerID, "You", 0, 0, 20)
	p.Stats["attack"] = 2
	state.Spawn(w, "goblin", "Goblin", 1, 0, 10)
	e, err := engine.New(state.DefaultDefs(), w, engine.DefaultOptions())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return e
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	c := &CLI{
		Engine:  testEngine(t),
		In:      strings.NewReader(input),
		Out:     &out,
		SaveDir: t.TempDir(),
	}
	return c, &out
}

func run(c *CLI) {
	c.Run(context.Background())
}

func TestCLI_StartupShowsArena(t *testing.T) {
	c, out := newTestCLI(t, "/quit\n")
	run(c)

	output := out.String()
	if !strings.Contains(output, "Type help for commands") {
		t.Error("expected startup hint")
	}
	if !strings.Contains(output, "Turn 0") {
		t.Error("expected arena status at startup")
	}
}

func TestCLI_CommandsRunAndAreLogged(t *testing.T) {
	c, out := newTestCLI(t, "apply poison to goblin for 3 at 2\n/quit\n")
	run(c)

	if !strings.Contains(out.String(), "Goblin gains poison (3 turns).") {
		t.Errorf("output = %q", out.String())
	}
	if !c.Engine.HasStatus("goblin-1", "poison") {
		t.Error("poison not applied")
	}
	log := c.Log()
	if len(log) != 1 || log[0] != "apply poison to goblin for 3 at 2" {
		t.Errorf("log = %v", log)
	}
}

func TestCLI_HelpCommand(t *testing.T) {
	c, out := newTestCLI(t, "/help\n/quit\n")
	run(c)

	output := out.String()
	for _, want := range []string{"/save", "/load", "/quit", "apply <status>", "again (g)"} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestCLI_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	var out bytes.Buffer
	c := &CLI{
		Engine:   testEngine(t),
		In:       strings.NewReader("apply poison to goblin for 3 at 2\nattack goblin 1\n/save test\n/quit\n"),
		Out:      &out,
		SaveDir:  dir,
		Scenario: "duel",
	}
	run(c)
	if !strings.Contains(out.String(), "Arena saved to test.") {
		t.Fatalf("expected save confirmation, got %q", out.String())
	}
	wantHP := c.Engine.Entity("goblin-1").HP
	wantPoison, _ := c.Engine.Store.Entry("goblin-1", "poison")

	j, err := journal.Open(filepath.Join(t.TempDir(), "events.db"), telemetry.Discard)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	defer j.Close()

	var out2 bytes.Buffer
	c2 := &CLI{
		Engine:  testEngine(t),
		Journal: j,
		In:      strings.NewReader("/load test\n/state\n/quit\n"),
		Out:     &out2,
		SaveDir: dir,
	}
	run(c2)

	output := out2.String()
	if !strings.Contains(output, "Arena loaded from test (turn 1).") {
		t.Errorf("expected load confirmation, got %q", output)
	}
	if !strings.Contains(output, "Scenario: duel") {
		t.Error("scenario name not restored")
	}
	if got := c2.Engine.Entity("goblin-1").HP; got != wantHP {
		t.Errorf("goblin hp = %d, want %d", got, wantHP)
	}
	got, ok := c2.Engine.Store.Entry("goblin-1", "poison")
	if !ok || got.Turns != wantPoison.Turns || got.Value != wantPoison.Value {
		t.Errorf("poison = %+v, want %+v", got, wantPoison)
	}
	if len(c2.Log()) != 2 {
		t.Errorf("command log = %v", c2.Log())
	}
	if j.Turn() != 1 {
		t.Errorf("journal turn = %d, want 1", j.Turn())
	}
}

func TestCLI_LoadNonexistent(t *testing.T) {
	c, out := newTestCLI(t, "/load nonexistent\n/quit\n")
	run(c)

	if !strings.Contains(out.String(), "Load failed") {
		t.Error("expected load failure message")
	}
}

func TestCLI_UnknownMetaCommand(t *testing.T) {
	c, out := newTestCLI(t, "/bogus\n/quit\n")
	run(c)

	if !strings.Contains(out.String(), "Unknown command: /bogus") {
		t.Error("expected unknown command message")
	}
}

func TestCLI_TraceToggle(t *testing.T) {
	c, out := newTestCLI(t, "/trace\napply burn to goblin\n/trace\napply wet to goblin\n/quit\n")
	run(c)

	output := out.String()
	if !strings.Contains(output, "Trace output enabled") || !strings.Contains(output, "Trace output disabled") {
		t.Error("expected trace toggle messages")
	}
	if !strings.Contains(output, "[trace]   status_registered goblin-1") {
		t.Errorf("expected traced event, got %q", output)
	}
	if strings.Count(output, "[trace]   status_registered") != 1 {
		t.Error("events traced after trace was disabled")
	}
}

func TestCLI_StateCommand(t *testing.T) {
	c, out := newTestCLI(t, "/state\n/quit\n")
	run(c)

	output := out.String()
	for _, want := range []string{"Turn: 0", "Arena: 8x8, 2 entities", "RNG: seed 42, position 0"} {
		if !strings.Contains(output, want) {
			t.Errorf("state output missing %q", want)
		}
	}
}

func TestCLI_Again_RepeatsLastCommand(t *testing.T) {
	for _, again := range []string{"again", "g"} {
		t.Run(again, func(t *testing.T) {
			c, _ := newTestCLI(t, "apply poison to goblin for 3\n"+again+"\n/quit\n")
			run(c)

			got, _ := c.Engine.Store.Entry("goblin-1", "poison")
			if got.Turns != 6 {
				t.Errorf("poison turns = %d, want 6 after repeat", got.Turns)
			}
			if len(c.Log()) != 2 {
				t.Errorf("log = %v", c.Log())
			}
		})
	}
}

func TestCLI_Again_NothingToRepeat(t *testing.T) {
	c, out := newTestCLI(t, "again\n/quit\n")
	run(c)

	if !strings.Contains(out.String(), "Nothing to repeat") {
		t.Error("expected 'Nothing to repeat' when no prior command")
	}
}

func TestCLI_QuitCommandStopsLoop(t *testing.T) {
	c, out := newTestCLI(t, "quit\napply poison\n")
	run(c)

	if !strings.Contains(out.String(), "Goodbye.") {
		t.Error("expected goodbye")
	}
	if c.Engine.HasStatus(state.PlayerID, "poison") {
		t.Error("input after quit was run")
	}
	if len(c.Log()) != 0 {
		t.Errorf("quit was logged: %v", c.Log())
	}
}

func TestCLI_ScriptPlayback(t *testing.T) {
	c, out := newTestCLI(t, "# set up\n\napply burn to goblin\n")
	c.EchoInput = true
	run(c)

	output := out.String()
	if strings.Contains(output, "set up") {
		t.Error("comment line was echoed")
	}
	if !strings.Contains(output, "> apply burn to goblin") {
		t.Errorf("expected echoed input, got %q", output)
	}
}
