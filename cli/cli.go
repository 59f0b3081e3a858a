// Package cli provides the line-oriented sandbox shell: terminal I/O, output
// formatting and meta-command dispatch around engine.Step.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/statuscore/engine"
	"github.com/nathoo/statuscore/engine/save"
	"github.com/nathoo/statuscore/journal"
	"github.com/nathoo/statuscore/types"
)

// CLI handles terminal interaction with the operator.
type CLI struct {
	Engine    *engine.Engine
	Journal   *journal.Journal // optional; its turn counter follows /load
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Scenario  string
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)

	lastCmd string // for "again"/"g" repeat
	log     []string
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	return &CLI{
		Engine:  eng,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: "saves",
	}
}

// Log returns the commands run so far, in order.
func (c *CLI) Log() []string {
	return append([]string(nil), c.log...)
}

// Run starts the loop: prompt, input, dispatch, output. It returns when the
// input ends or the operator quits.
func (c *CLI) Run(ctx context.Context) {
	c.printSystem("Type help for commands, /help for system commands.")
	c.printResult(c.Engine.Step(ctx, "status"))

	scanner := bufio.NewScanner(c.In)
	for {
		if ctx.Err() != nil {
			return
		}
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(ctx, input) {
				return
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Engine.Step(ctx, input)
		if !result.Quit {
			c.log = append(c.log, input)
		}
		c.printResult(result)
		if c.Trace {
			c.printTrace(result.Events)
		}
		if result.Quit {
			c.printSystem("Goodbye.")
			return
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the shell should exit.
func (c *CLI) handleMeta(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true
	case "/save":
		c.cmdSave(arg)
	case "/load":
		c.cmdLoad(ctx, arg)
	case "/help":
		c.cmdHelp()
	case "/state":
		c.cmdState()
	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}
	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
	return false
}

func (c *CLI) savePath(name string) string {
	if name == "" {
		name = "quicksave"
	}
	return filepath.Join(c.SaveDir, name+".json")
}

func (c *CLI) cmdSave(name string) {
	data, err := save.Save(c.Engine, c.Scenario, c.Log())
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	path := c.savePath(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Arena saved to %s.", strings.TrimSuffix(filepath.Base(path), ".json")))
}

func (c *CLI) cmdLoad(ctx context.Context, name string) {
	data, err := os.ReadFile(c.savePath(name))
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	sd, err := save.Load(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	save.ApplySave(c.Engine, sd)
	if c.Journal != nil {
		c.Journal.SetTurn(sd.Turn)
	}
	c.Scenario = sd.Scenario
	c.log = append([]string(nil), sd.CommandLog...)
	c.lastCmd = ""

	if name == "" {
		name = "quicksave"
	}
	c.printSystem(fmt.Sprintf("Arena loaded from %s (turn %d).", name, sd.Turn))
	c.printResult(c.Engine.Step(ctx, "status"))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]   save the arena (default: quicksave)",
		"  /load [name]   load a save (default: quicksave)",
		"  /state         dump turn, rng and command log",
		"  /trace         toggle event trace output",
		"  /help          show this help",
		"  /quit          exit",
		"",
	}
	help = append(help, engine.HelpText()...)
	help = append(help, "  again (g)      repeat the last command")
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	e := c.Engine
	if c.Scenario != "" {
		c.printSystem(fmt.Sprintf("Scenario: %s", c.Scenario))
	}
	c.printSystem(fmt.Sprintf("Turn: %d", e.World.Turn))
	c.printSystem(fmt.Sprintf("Arena: %dx%d, %d entities", e.World.Width, e.World.Height, len(e.World.Entities)))
	c.printSystem(fmt.Sprintf("RNG: seed %d, position %d", e.RNG.Seed(), e.RNG.Position()))
	c.printSystem(fmt.Sprintf("Commands: %d", len(c.log)))
}

func (c *CLI) printTrace(evts []types.Event) {
	if len(evts) == 0 {
		return
	}
	c.printSystem(fmt.Sprintf("[trace] Events: %d", len(evts)))
	for _, ev := range evts {
		c.printSystem(fmt.Sprintf("[trace]   %s %s %v", ev.Type, ev.Entity, ev.Data))
	}
}

func (c *CLI) printResult(result engine.StepResult) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
