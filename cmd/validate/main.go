package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/jwebster45206/dm-engine/pkg/world"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <data-dir>\n", os.Args[0])
		os.Exit(1)
	}

	dataDir := os.Args[1]
	validator := &WorldValidator{}

	if err := validator.validateDir(dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("World data is valid!")
}

type WorldValidator struct {
	errors []string
}

func (v *WorldValidator) validateDir(dataDir string) error {
	fmt.Printf("Validating %s...\n", dataDir)

	w, err := world.LoadDir(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load world data: %w", err)
	}

	v.errors = nil
	v.validateWorld(w)

	for _, problem := range w.Check() {
		v.addError(problem)
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", dataDir, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *WorldValidator) validateWorld(w *world.World) {
	if len(w.Locations) == 0 {
		v.addError("world has no locations")
	}

	for locationID, loc := range w.Locations {
		v.validateIDFormat("location ID", locationID)
		if loc.Name == "" {
			v.addError(fmt.Sprintf("location '%s' has no name", locationID))
		}
		for direction := range loc.Exits {
			v.validateIDFormat("exit direction", direction)
		}
	}

	for npcID, npc := range w.NPCs {
		v.validateIDFormat("NPC ID", npcID)
		if npc.Name == "" {
			v.addError(fmt.Sprintf("NPC '%s' has no name", npcID))
		}
		if npc.Role != "" && !isValidID(strings.ToLower(npc.Role)) {
			v.addError(fmt.Sprintf("NPC '%s' role '%s' should be lowercase snake_case", npcID, npc.Role))
		}
	}
}

func (v *WorldValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *WorldValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
