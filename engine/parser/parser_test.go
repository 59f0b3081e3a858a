package parser

import (
	"reflect"
	"testing"

	"github.com/nathoo/statuscore/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Intent
	}{
		{
			name:  "empty string",
			input: "",
			want:  types.Intent{},
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  types.Intent{},
		},
		{
			name:  "bare verb",
			input: "turn",
			want:  types.Intent{Verb: "turn"},
		},
		{
			name:  "wait alias",
			input: "z",
			want:  types.Intent{Verb: "turn"},
		},
		{
			name:  "end round",
			input: "end round",
			want:  types.Intent{Verb: "end"},
		},
		{
			name:  "direction shortcut",
			input: "e",
			want:  types.Intent{Verb: "move", Object: "east"},
		},
		{
			name:  "full direction",
			input: "southwest",
			want:  types.Intent{Verb: "move", Object: "southwest"},
		},
		{
			name:  "move with short direction",
			input: "go n",
			want:  types.Intent{Verb: "move", Object: "north"},
		},
		{
			name:  "apply with turns and value",
			input: "apply burn to goblin for 3 at 2",
			want:  types.Intent{Verb: "apply", Object: "burn", Target: "goblin", Numbers: []int{3, 2}},
		},
		{
			name:  "apply to the player",
			input: "Inflict Wet on me",
			want:  types.Intent{Verb: "apply", Object: "wet", Target: "me"},
		},
		{
			name:  "attack with type and amount",
			input: "attack the goblin with lightning 10",
			want:  types.Intent{Verb: "attack", Object: "goblin", Target: "lightning", Numbers: []int{10}},
		},
		{
			name:  "attack alias",
			input: "hit goblin",
			want:  types.Intent{Verb: "attack", Object: "goblin"},
		},
		{
			name:  "explode",
			input: "explode fire at 3 4 radius 2 for 5",
			want:  types.Intent{Verb: "explode", Object: "fire", Numbers: []int{3, 4, 2, 5}},
		},
		{
			name:  "inspect via look at",
			input: "look at cave goblin",
			want:  types.Intent{Verb: "inspect", Object: "cave goblin"},
		},
		{
			name:  "equip alias",
			input: "wear chainmail",
			want:  types.Intent{Verb: "equip", Object: "chainmail"},
		},
		{
			name:  "take off",
			input: "take off armor",
			want:  types.Intent{Verb: "unequip", Object: "armor"},
		},
		{
			name:  "disable rule",
			input: "turn off extinguish_burn",
			want:  types.Intent{Verb: "disable", Object: "extinguish_burn"},
		},
		{
			name:  "remove status",
			input: "cure poison from goblin",
			want:  types.Intent{Verb: "remove", Object: "poison", Target: "goblin"},
		},
		{
			name:  "marker without number stays a word",
			input: "inspect at",
			want:  types.Intent{Verb: "inspect", Object: "at"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		name   string
		dx, dy int
		ok     bool
	}{
		{"north", 0, -1, true},
		{"se", 1, 1, true},
		{"w", -1, 0, true},
		{"up", 0, 0, false},
	}
	for _, tt := range tests {
		dx, dy, ok := Direction(tt.name)
		if dx != tt.dx || dy != tt.dy || ok != tt.ok {
			t.Errorf("Direction(%q) = (%d, %d, %v), want (%d, %d, %v)", tt.name, dx, dy, ok, tt.dx, tt.dy, tt.ok)
		}
	}
}

func TestDamageType(t *testing.T) {
	tests := map[string]string{
		"lightning": "electric",
		"flame":     "fire",
		"electric":  "electric",
		"acid":      "acid",
	}
	for in, want := range tests {
		if got := DamageType(in); got != want {
			t.Errorf("DamageType(%q) = %q, want %q", in, got, want)
		}
	}
}
