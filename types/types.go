// Package types defines the shared data structures for the StatusCore engine.
// This package contains only type definitions with no logic.
package types

// Phase names a stage of turn or attack processing during which rules run.
type Phase string

const (
	PhasePreTurn   Phase = "preturn"
	PhaseTick      Phase = "tick"
	PhasePreDamage Phase = "predamage"
	PhaseApply     Phase = "apply"
	PhaseCleanup   Phase = "cleanup"
)

// Family classifies a status for the per-tick pass.
type Family string

const (
	FamilyNone    Family = ""
	FamilyDOT     Family = "dot"
	FamilyHOT     Family = "hot"
	FamilyControl Family = "control"
)

// Action type names understood by the action applier.
const (
	ActionAddStatus      = "addStatus"
	ActionRefreshStatus  = "refreshStatus"
	ActionRemoveStatus   = "removeStatus"
	ActionDamage         = "damage"
	ActionHeal           = "heal"
	ActionConsumeCoating = "consumeCoating"
	ActionPreventTurn    = "preventTurn"
	ActionModifyStat     = "modifyStat"
	ActionOverrideDamage = "overrideDamage"
	ActionScaleDamage    = "scaleDamage"
)

// Action is a single instruction emitted by a rule and interpreted once by
// the action applier.
type Action struct {
	Type   string
	Params map[string]any
}

// StatusEntry is one named condition attached to an entity.
type StatusEntry struct {
	Value    int            `json:"value"`
	Turns    int            `json:"turns"`
	SourceID string         `json:"source_id,omitempty"`
	Quantity int            `json:"quantity,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// StatusView is the read-only projection of a status entry for HUD and
// inspection. Extra carries any free-form fields callers attached.
type StatusView struct {
	Type     string
	Turns    int
	Value    int
	SourceID string
	Quantity int
	Extra    map[string]any
}

// StatusDef is the catalog definition of a status name.
type StatusDef struct {
	Name       string
	Tags       []string
	Family     Family
	DamageType string // damage type used when the status ticks as DOT
	Stat       string // stat modified every turn while active (optional)
	StatScale  int    // multiplier applied to the entry value for Stat
}

// MaterialDef is the catalog definition of a material.
type MaterialDef struct {
	Name string
	Tags []string
}

// SoakDef describes a status a tile registers on entities standing on it.
type SoakDef struct {
	Status   string
	Turns    int
	Value    int
	Quantity int
}

// TileDef is the catalog definition of a tile kind.
type TileDef struct {
	Name       string
	Tags       []string
	Material   string   // material contributed to occupants ("" for none)
	Soak       *SoakDef // nil when the tile does not soak
	Damage     int      // hazard damage per entry/turn
	DamageType string
}

// BiomeDef overrides the default environment for a world.
type BiomeDef struct {
	Name         string
	TemperatureC float64
	Oxygen       float64
}

// WeatherDef adjusts the environment on top of the biome.
type WeatherDef struct {
	Name             string
	TemperatureDelta float64
	OxygenDelta      float64
}

// RuleDef is a data-driven rule loaded from content.
type RuleDef struct {
	ID          string
	Phase       Phase
	Priority    int
	SourceOrder int
	Requires    []Condition // all must hold before When is evaluated
	When        string      // CEL predicate; empty always matches
	Actions     []Action
	Disabled    bool
}

// Condition is a structured rule precondition. A "not" condition negates
// Inner.
type Condition struct {
	Type   string
	Params map[string]any
	Inner  *Condition
}

// Item is a piece of equippable gear.
type Item struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Slot     string `json:"slot" yaml:"slot"`
	Metal    bool   `json:"metal,omitempty" yaml:"metal"`
	Material string `json:"material,omitempty" yaml:"material"`
}

// ItemDef is the catalog definition of gear. Hook actions apply to the
// owner on equip and unequip, and to the struck target on attack.
type ItemDef struct {
	Item
	OnEquip   []Action
	OnUnequip []Action
	OnAttack  []Action
}

// Scratch is the per-entity transient bag written during one turn's phases
// and cleared at cleanup.
type Scratch struct {
	PreventTurn string
	StatMods    map[string]int
}

// Entity is a live combatant in the arena.
type Entity struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Name      string          `json:"name"`
	X         int             `json:"x"`
	Y         int             `json:"y"`
	HP        int             `json:"hp"`
	HPMax     int             `json:"hp_max"`
	Alive     bool            `json:"alive"`
	Stats     map[string]int  `json:"stats,omitempty"`
	Equipment map[string]Item `json:"equipment,omitempty"` // slot → item
	Engine    *Scratch        `json:"-"`
}

// Environment holds world-level environmental facts.
type Environment struct {
	Biome     string `json:"biome,omitempty"`
	Weather   string `json:"weather,omitempty"`
	TimeOfDay string `json:"time_of_day,omitempty"`
}

// World is the complete mutable arena state.
type World struct {
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Tiles       []string    `json:"tiles"` // row-major tile names, "" is plain floor
	Entities    []*Entity   `json:"entities"`
	Env         Environment `json:"env"`
	Turn        int         `json:"turn"`
	RNGSeed     int64       `json:"rng_seed"`
	RNGPosition int64       `json:"rng_position"`
}

// StatusFacts is one active status as seen by rules.
type StatusFacts struct {
	ID       string
	Tags     []string
	Value    int
	Turns    int
	Quantity int
}

// MaterialFacts is one material source as seen by rules.
type MaterialFacts struct {
	ID    string
	Tags  []string
	Props map[string]any
}

// EnvFacts is the environment block of a snapshot.
type EnvFacts struct {
	TemperatureC float64
	Oxygen       float64
	Tile         string
	TileTags     []string
	TimeOfDay    string
	Weather      string
}

// Snapshot is the read-only, rebuilt-per-call view of an entity fed to rules.
type Snapshot struct {
	EntityID  string
	HP        int
	HPMax     int
	Alive     bool
	Statuses  []StatusFacts
	Materials []MaterialFacts
	Env       EnvFacts
}

// DamageEvent is a pending hit before predamage rules run.
type DamageEvent struct {
	Amount   int
	Type     string
	SourceID string
	Final    bool // set by overrideDamage; later rewrites are ignored
}

// RuleContext carries the event data a rule may inspect.
type RuleContext struct {
	Phase    Phase
	EntityID string
	Turn     int
	Damage   *DamageEvent // predamage only
	Applied  string       // apply only: canonical name of the status just applied
	Queued   []Action     // actions emitted by earlier rules of this phase
}

// Intent is a parsed sandbox command. Numbers holds the numeric arguments
// in the order they appeared.
type Intent struct {
	Verb    string
	Object  string
	Target  string
	Numbers []int
}

// Event is emitted after actions are applied.
type Event struct {
	Type   string
	Entity string
	Data   map[string]any
}
