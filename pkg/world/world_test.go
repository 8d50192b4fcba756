package world

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeTestData(t *testing.T, locations, npcs string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "locations.json"), []byte(locations), 0o644); err != nil {
		t.Fatalf("write locations: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "npcs.json"), []byte(npcs), 0o644); err != nil {
		t.Fatalf("write npcs: %v", err)
	}
	return dir
}

func TestLoadDir(t *testing.T) {
	dir := writeTestData(t,
		`{"tavern": {"name": "The Rusty Flagon", "exits": {"out": "square"}, "npcs": ["greta"]}, "square": {"name": "Town Square", "exits": {"in": "tavern"}}}`,
		`{"greta": {"name": "Greta", "role": "bartender", "location": "tavern"}}`,
	)

	w, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}

	if len(w.Locations) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(w.Locations))
	}
	// IDs are backfilled from map keys.
	if w.Locations["tavern"].ID != "tavern" {
		t.Errorf("expected location ID backfilled, got %q", w.Locations["tavern"].ID)
	}
	if w.NPCs["greta"].ID != "greta" {
		t.Errorf("expected NPC ID backfilled, got %q", w.NPCs["greta"].ID)
	}

	if problems := w.Check(); len(problems) != 0 {
		t.Errorf("expected clean check, got %v", problems)
	}
}

func TestLoadDir_MissingFiles(t *testing.T) {
	if _, err := LoadDir(t.TempDir()); err == nil {
		t.Error("expected error for empty data directory")
	}
}

func TestCheck_FindsProblems(t *testing.T) {
	w := &World{
		Locations: map[string]Location{
			"tavern": {ID: "tavern", Name: "The Rusty Flagon",
				Exits: map[string]string{"out": "nowhere"},
				NPCs:  []string{"ghost"}},
			"void": {ID: "void", Name: "  "},
		},
		NPCs: map[string]*NPC{
			"greta": {ID: "greta", Name: "Greta", Location: "atlantis"},
			"anon":  {ID: "anon", Name: ""},
		},
	}

	problems := w.Check()
	if len(problems) != 5 {
		t.Fatalf("expected 5 problems, got %d: %v", len(problems), problems)
	}
}

func TestNPC_HasCommerceRole(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"merchant", true},
		{"Merchant", true},
		{" bartender ", true},
		{"shopkeeper", true},
		{"vendor", true},
		{"trader", true},
		{"guard", false},
		{"", false},
	}
	for _, tt := range tests {
		npc := &NPC{Role: tt.role}
		if got := npc.HasCommerceRole(); got != tt.want {
			t.Errorf("HasCommerceRole(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestNPC_ExtraFieldsRoundTrip(t *testing.T) {
	raw := `{"name": "Marek", "role": "merchant", "wares": ["rope", "herbs"], "haggle_floor": 0.8}`

	var npc NPC
	if err := json.Unmarshal([]byte(raw), &npc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if npc.Name != "Marek" || npc.Role != "merchant" {
		t.Errorf("known fields lost: %+v", npc)
	}
	if _, ok := npc.Extra["wares"]; !ok {
		t.Fatalf("expected unknown fields preserved in Extra, got %v", npc.Extra)
	}
	if _, ok := npc.Extra["name"]; ok {
		t.Error("known fields must not leak into Extra")
	}

	out, err := json.Marshal(&npc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode merged output: %v", err)
	}
	for _, key := range []string{"name", "role", "wares", "haggle_floor"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("merged output missing %q: %s", key, out)
		}
	}
}
