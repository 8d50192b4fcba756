package world

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Location represents a place in the game world with exits and present entities.
type Location struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Exits       map[string]string `json:"exits,omitempty"` // Direction → Location ID
	NPCs        []string          `json:"npcs,omitempty"`  // NPC IDs present; authority for who can react to a turn
	Items       []string          `json:"items,omitempty"` // Item IDs present
}

// World is the static world data loaded at game start.
// Locations and NPCs are copied into the game state, which owns them from then on.
type World struct {
	Locations map[string]Location `json:"locations"`
	NPCs      map[string]*NPC     `json:"npcs"`
}

// LoadDir reads world data from a directory containing locations.json and npcs.json.
func LoadDir(dir string) (*World, error) {
	w := &World{}

	locData, err := os.ReadFile(filepath.Join(dir, "locations.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read locations: %w", err)
	}
	if err := json.Unmarshal(locData, &w.Locations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal locations: %w", err)
	}

	npcData, err := os.ReadFile(filepath.Join(dir, "npcs.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read npcs: %w", err)
	}
	if err := json.Unmarshal(npcData, &w.NPCs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal npcs: %w", err)
	}

	// Map keys are canonical. Backfill IDs so entities are usable standalone.
	for id, loc := range w.Locations {
		if loc.ID == "" {
			loc.ID = id
			w.Locations[id] = loc
		}
	}
	for id, npc := range w.NPCs {
		if npc.ID == "" {
			npc.ID = id
		}
	}

	return w, nil
}

// Check runs referential integrity checks over the world data and
// returns one message per problem found.
func (w *World) Check() []string {
	var problems []string

	for id, loc := range w.Locations {
		if strings.TrimSpace(loc.Name) == "" {
			problems = append(problems, fmt.Sprintf("location %q has an empty name", id))
		}
		for dir, dest := range loc.Exits {
			if _, ok := w.Locations[dest]; !ok {
				problems = append(problems, fmt.Sprintf("location %q exit %q points to unknown location %q", id, dir, dest))
			}
		}
		for _, npcID := range loc.NPCs {
			if _, ok := w.NPCs[npcID]; !ok {
				problems = append(problems, fmt.Sprintf("location %q lists unknown NPC %q", id, npcID))
			}
		}
	}

	for id, npc := range w.NPCs {
		if strings.TrimSpace(npc.Name) == "" {
			problems = append(problems, fmt.Sprintf("npc %q has an empty name", id))
		}
		if npc.Location != "" {
			if _, ok := w.Locations[npc.Location]; !ok {
				problems = append(problems, fmt.Sprintf("npc %q placed at unknown location %q", id, npc.Location))
			}
		}
	}

	return problems
}
