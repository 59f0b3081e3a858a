// Package parser converts sandbox command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strconv"
	"strings"

	"github.com/nathoo/statuscore/types"
)

var directionExpansions = map[string]string{
	"n":  "north",
	"s":  "south",
	"e":  "east",
	"w":  "west",
	"ne": "northeast",
	"nw": "northwest",
	"se": "southeast",
	"sw": "southwest",
}

var directionOffsets = map[string][2]int{
	"north":     {0, -1},
	"south":     {0, 1},
	"east":      {1, 0},
	"west":      {-1, 0},
	"northeast": {1, -1},
	"northwest": {-1, -1},
	"southeast": {1, 1},
	"southwest": {-1, 1},
}

var verbAliases = map[string]string{
	// Inspection
	"l":       "inspect",
	"look":    "inspect",
	"x":       "inspect",
	"examine": "inspect",
	"check":   "inspect",

	// Movement
	"walk": "move",
	"go":   "move",
	"step": "move",

	// Combat
	"hit":    "attack",
	"strike": "attack",
	"zap":    "attack",
	"cast":   "attack",
	"boom":   "explode",
	"blast":  "explode",

	// Status
	"inflict": "apply",
	"give":    "apply",
	"cure":    "remove",
	"cleanse": "remove",

	// Gear
	"wear":    "equip",
	"wield":   "equip",
	"doff":    "unequip",
	"unwield": "unequip",

	// Time
	"z":     "turn",
	"wait":  "turn",
	"pass":  "turn",
	"round": "end",
	"next":  "end",

	// Misc
	"?":     "help",
	"q":     "quit",
	"exit":  "quit",
	"stats": "status",
	"hud":   "status",
}

// damageTypeAliases map attack words onto damage types.
var damageTypeAliases = map[string]string{
	"lightning": "electric",
	"thunder":   "electric",
	"shock":     "electric",
	"flame":     "fire",
	"fireball":  "fire",
	"frost":     "ice",
	"venom":     "poison",
	"sword":     "physical",
	"blade":     "physical",
}

var prepositions = map[string]bool{
	"on": true, "to": true, "with": true, "from": true, "onto": true,
}

// numberMarkers introduce a numeric argument and are dropped with it.
var numberMarkers = map[string]bool{
	"for": true, "at": true, "x": true, "radius": true, "r": true, "value": true, "turns": true, "amount": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Direction shortcut: bare "n", "east", etc. → move <direction>
	if len(words) == 1 {
		if dir, ok := directionExpansions[words[0]]; ok {
			return types.Intent{Verb: "move", Object: dir}
		}
		if _, ok := directionOffsets[words[0]]; ok {
			return types.Intent{Verb: "move", Object: words[0]}
		}
	}

	words = expandMultiWordVerbs(words)

	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest, numbers := extractNumbers(stripArticles(words[1:]))
	object, target := splitOnPreposition(rest)

	if verb == "move" {
		if dir, ok := directionExpansions[object]; ok {
			object = dir
		}
	}

	return types.Intent{
		Verb:    verb,
		Object:  object,
		Target:  target,
		Numbers: numbers,
	}
}

// Direction returns the grid offset for a direction name.
func Direction(name string) (dx, dy int, ok bool) {
	if full, found := directionExpansions[name]; found {
		name = full
	}
	off, ok := directionOffsets[name]
	return off[0], off[1], ok
}

// DamageType maps an attack word onto a damage type. Unknown words pass
// through unchanged.
func DamageType(word string) string {
	if dt, ok := damageTypeAliases[word]; ok {
		return dt
	}
	return word
}

// expandMultiWordVerbs handles "look at", "end round", "take off" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "look":
		if words[1] == "at" {
			return append([]string{"inspect"}, words[2:]...)
		}
	case "end":
		if words[1] == "round" || words[1] == "turn" {
			return append([]string{"end"}, words[2:]...)
		}
	case "take":
		if words[1] == "off" {
			return append([]string{"unequip"}, words[2:]...)
		}
	case "put":
		if words[1] == "on" {
			return append([]string{"equip"}, words[2:]...)
		}
	case "turn":
		if words[1] == "on" {
			return append([]string{"enable"}, words[2:]...)
		}
		if words[1] == "off" {
			return append([]string{"disable"}, words[2:]...)
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// extractNumbers pulls integer arguments out of the word list. A marker
// word directly before a number is dropped with it.
func extractNumbers(words []string) (rest []string, numbers []int) {
	rest = make([]string, 0, len(words))
	for i := 0; i < len(words); i++ {
		if numberMarkers[words[i]] && i+1 < len(words) {
			if n, err := strconv.Atoi(words[i+1]); err == nil {
				numbers = append(numbers, n)
				i++
				continue
			}
		}
		if n, err := strconv.Atoi(words[i]); err == nil {
			numbers = append(numbers, n)
			continue
		}
		rest = append(rest, words[i])
	}
	return rest, numbers
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the target.
// If no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}
