package main

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/jwebster45206/dm-engine/internal/services"
	"github.com/jwebster45206/dm-engine/internal/storage"
	"github.com/jwebster45206/dm-engine/pkg/actor"
	"github.com/jwebster45206/dm-engine/pkg/engine"
	"github.com/jwebster45206/dm-engine/pkg/response"
	"github.com/jwebster45206/dm-engine/pkg/state"
	"github.com/jwebster45206/dm-engine/pkg/world"
)

func newTestUI(t *testing.T) (GameUI, *storage.MockStorage) {
	t.Helper()

	player, err := actor.NewPlayerFromSpec(&actor.PlayerSpec{
		Name: "Rowan", HP: 10, MaxHP: 10, Gold: 20,
	})
	if err != nil {
		t.Fatalf("NewPlayerFromSpec failed: %v", err)
	}

	w := &world.World{
		Locations: map[string]world.Location{
			"tavern": {ID: "tavern", Name: "The Rusty Flagon", NPCs: []string{"greta"}},
		},
		NPCs: map[string]*world.NPC{
			"greta": {ID: "greta", Name: "Greta", Role: "bartender"},
		},
	}
	gs := state.NewGameState(player, w, "tavern")

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := storage.NewMockStorage()
	narrator := services.NewNarrator(services.NewMockLLM(), logger, 2, 0.8)

	return NewGameUI(gs, narrator, store, nil, logger), store
}

func TestNeedsConfirmation(t *testing.T) {
	neutral := response.NewEffect()

	costly := response.NewEffect()
	costly.GoldChange = -5

	hurtful := response.NewEffect()
	hurtful.HPChange = -3

	souring := response.NewEffect()
	souring.RelationshipChanges = map[string]float64{"greta": -0.2}

	beneficial := response.NewEffect()
	beneficial.GoldChange = 10
	beneficial.HPChange = 2
	beneficial.RelationshipChanges = map[string]float64{"greta": 0.3}

	tests := []struct {
		name   string
		effect *response.Effect
		issues engine.Issues
		want   bool
	}{
		{"neutral effect", neutral, nil, false},
		{"nil effect", nil, nil, false},
		{"gold cost", costly, nil, true},
		{"hp cost", hurtful, nil, true},
		{"soured relationship", souring, nil, true},
		{"purely beneficial", beneficial, nil, false},
		{"warning present", neutral, engine.Issues{{Severity: engine.SeverityWarning, Message: "iffy"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsConfirmation(tt.effect, tt.issues); got != tt.want {
				t.Errorf("needsConfirmation = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeclineTurn_LeavesStateUntouched(t *testing.T) {
	ui, store := newTestUI(t)

	resp := response.Fallback("rob the bar")
	resp.Effect.GoldChange = -10
	ui.pendingAction = "rob the bar"
	ui.pendingResponse = resp

	ui.declineTurn()

	gs := ui.gs
	if gs.Turn != 0 {
		t.Errorf("declined turn must not advance the counter, got %d", gs.Turn)
	}
	if gs.Player.Gold() != 20 {
		t.Errorf("declined turn must not touch gold, got %d", gs.Player.Gold())
	}
	if len(gs.History) != 0 {
		t.Errorf("declined turn must not enter history, got %d records", len(gs.History))
	}

	ids, err := store.ListGameStates(context.Background())
	if err != nil {
		t.Fatalf("ListGameStates failed: %v", err)
	}
	if len(ids) != 0 {
		t.Error("declined turn must not be saved")
	}
}

func TestCommitTurn_AppliesAndSaves(t *testing.T) {
	ui, store := newTestUI(t)

	resp := &response.Response{
		Narration: "Greta takes your coin.",
		Speeches:  []response.Speech{{NPCID: "greta", Text: "Pleasure.", Emotion: "neutral"}},
		Effect:    response.NewEffect(),
	}
	resp.Effect.GoldChange = -2

	_, cmd := ui.commitTurn("order an ale", resp)

	gs := ui.gs
	if gs.Turn != 1 {
		t.Errorf("expected turn 1, got %d", gs.Turn)
	}
	if gs.Player.Gold() != 18 {
		t.Errorf("expected gold 18, got %d", gs.Player.Gold())
	}
	if len(gs.History) != 1 || gs.History[0].PlayerAction != "order an ale" {
		t.Errorf("expected committed turn in history, got %+v", gs.History)
	}

	// Run the returned save command and confirm the state was persisted.
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	if msg, ok := cmd().(savedMsg); !ok || msg.err != nil {
		t.Fatalf("save command failed: %+v", msg)
	}

	loaded, err := store.LoadGameState(context.Background(), gs.ID)
	if err != nil {
		t.Fatalf("LoadGameState failed: %v", err)
	}
	if loaded == nil || loaded.Turn != 1 {
		t.Errorf("expected persisted save at turn 1, got %+v", loaded)
	}
}
