// Package save implements JSON serialization and deserialization of arena
// state, including the status store and the RNG position.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/nathoo/statuscore/engine"
	"github.com/nathoo/statuscore/engine/status"
	"github.com/nathoo/statuscore/types"
)

// FormatVersion is written into every save.
const FormatVersion = "1"

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version     string          `json:"version"`
	Scenario    string          `json:"scenario,omitempty"`
	Turn        int             `json:"turn"`
	World       *types.World    `json:"world"`
	Statuses    []status.Record `json:"statuses"`
	RNGSeed     int64           `json:"rng_seed"`
	RNGPosition int64           `json:"rng_position"`
	CommandLog  []string        `json:"command_log"`
}

// Save serializes the engine's arena, statuses and RNG position.
func Save(e *engine.Engine, scenario string, log []string) ([]byte, error) {
	data := SaveData{
		Version:     FormatVersion,
		Scenario:    scenario,
		Turn:        e.World.Turn,
		World:       e.World,
		Statuses:    e.Store.Export(),
		RNGSeed:     e.RNG.Seed(),
		RNGPosition: e.RNG.Position(),
		CommandLog:  log,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported save version %q", sd.Version)
	}
	if sd.World == nil {
		return nil, fmt.Errorf("save has no world")
	}
	// Ensure collections are never nil after load.
	if sd.World.Entities == nil {
		sd.World.Entities = []*types.Entity{}
	}
	for _, ent := range sd.World.Entities {
		if ent.Stats == nil {
			ent.Stats = map[string]int{}
		}
		if ent.Equipment == nil {
			ent.Equipment = map[string]types.Item{}
		}
	}
	if sd.Statuses == nil {
		sd.Statuses = []status.Record{}
	}
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
	return &sd, nil
}

// ApplySave replaces the engine's arena and statuses with the saved ones.
func ApplySave(e *engine.Engine, sd *SaveData) {
	sd.World.Turn = sd.Turn
	e.Restore(sd.World, sd.Statuses, sd.RNGSeed, sd.RNGPosition)
}
