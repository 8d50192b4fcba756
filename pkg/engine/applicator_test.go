package engine

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jwebster45206/dm-engine/pkg/response"
	"github.com/jwebster45206/dm-engine/pkg/state"
)

func applyOne(t *testing.T, gs *state.GameState, effect *response.Effect, action, narration string) []string {
	t.Helper()
	gs.BeginTurn(action)
	return NewApplier(gs, quietLogger()).Apply(effect, TurnContext{
		PlayerAction: action,
		Narration:    narration,
		Timestamp:    time.Now(),
	})
}

func TestApply_FullEffect(t *testing.T) {
	gs := newTestState(t)
	before := gs.GameTime

	effect := response.NewEffect()
	effect.Location = "market"
	effect.TimeDelta = 30
	effect.HPChange = -5
	effect.GoldChange = -10
	effect.NewItems = []string{"rope"}
	effect.RelationshipChanges = map[string]float64{"marek": 0.2}

	log := applyOne(t, gs, effect, "head to the market and buy rope", "You buy fifty feet of rope.")

	if gs.CurrentLocationID != "market" {
		t.Errorf("expected move to market, at %q", gs.CurrentLocationID)
	}
	if got := gs.GameTime.Sub(before); got != 30*time.Minute {
		t.Errorf("expected 30 minutes to pass, got %v", got)
	}
	if gs.Player.HP() != 10 {
		t.Errorf("expected HP 10, got %d", gs.Player.HP())
	}
	if gs.Player.Gold() != 40 {
		t.Errorf("expected gold 40, got %d", gs.Player.Gold())
	}
	if gs.Player.Spec.Inventory["rope"] != 1 {
		t.Errorf("expected rope in inventory, got %v", gs.Player.Spec.Inventory)
	}
	if gs.Relationship("marek") != 0.2 {
		t.Errorf("expected marek relationship 0.2, got %g", gs.Relationship("marek"))
	}
	if gs.NPCs["marek"].LastInteractionTurn != gs.Turn {
		t.Errorf("expected marek last interaction at turn %d, got %d", gs.Turn, gs.NPCs["marek"].LastInteractionTurn)
	}

	joined := strings.Join(log, "\n")
	for _, want := range []string{
		"Moved: The Rusty Flagon -> Market Row",
		"Time: +30 minutes",
		"HP: 15 -> 10 (-5)",
		"Gold: 50 -> 40 (-10)",
		"Gained: rope",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("change log missing %q:\n%s", want, joined)
		}
	}
}

func TestApply_LogsActualClampedDelta(t *testing.T) {
	gs := newTestState(t) // 15/20 HP

	effect := response.NewEffect()
	effect.HPChange = 999 // sanitizer missed it; applier clamps and logs what happened

	log := applyOne(t, gs, effect, "drink the elixir", "Warmth floods through you.")

	if gs.Player.HP() != 20 {
		t.Errorf("expected HP capped at 20, got %d", gs.Player.HP())
	}
	joined := strings.Join(log, "\n")
	if !strings.Contains(joined, "HP: 15 -> 20 (+5)") {
		t.Errorf("log must carry the applied delta, not the requested one:\n%s", joined)
	}
}

func TestApply_RelationshipAccumulates(t *testing.T) {
	gs := newTestState(t)

	for i := 0; i < 2; i++ {
		effect := response.NewEffect()
		effect.RelationshipChanges = map[string]float64{"greta": 0.3}
		applyOne(t, gs, effect, fmt.Sprintf("help greta %d", i), "Greta smiles.")
	}

	if got := gs.Relationship("greta"); got != 0.6 {
		t.Errorf("expected accumulated 0.6, got %g", got)
	}
	if band := state.RelationshipBand(gs.Relationship("greta")); band != "friendly" {
		t.Errorf("expected friendly at 0.6, got %q", band)
	}
}

func TestApply_RelationshipClampsAtBounds(t *testing.T) {
	gs := newTestState(t)
	gs.SetRelationship("greta", 0.9)

	effect := response.NewEffect()
	effect.RelationshipChanges = map[string]float64{"greta": 0.5}
	applyOne(t, gs, effect, "save greta's life", "Greta is speechless.")

	if got := gs.Relationship("greta"); got != 1.0 {
		t.Errorf("expected clamp at 1.0, got %g", got)
	}
}

func TestApply_QuestLifecycle(t *testing.T) {
	gs := newTestState(t)

	effect := response.NewEffect()
	effect.NewQuests = []string{"find_the_locket"}
	log := applyOne(t, gs, effect, "ask greta about work", "Greta mentions a lost locket.")

	quest, ok := gs.ActiveQuests["find_the_locket"]
	if !ok {
		t.Fatal("expected quest to be created")
	}
	if quest.Title != "Find The Locket" {
		t.Errorf("expected synthesized title, got %q", quest.Title)
	}
	if !strings.Contains(strings.Join(log, "\n"), "New quest: Find The Locket") {
		t.Errorf("missing quest log line: %v", log)
	}

	quest.RewardGold = 25
	goldBefore := gs.Player.Gold()

	effect = response.NewEffect()
	effect.CompletedQuests = []string{"find_the_locket"}
	log = applyOne(t, gs, effect, "return the locket", "Greta clutches the locket.")

	if !quest.Completed {
		t.Error("expected quest marked completed")
	}
	if gs.Player.Gold() != goldBefore+25 {
		t.Errorf("expected reward gold, got %d", gs.Player.Gold())
	}
	joined := strings.Join(log, "\n")
	if !strings.Contains(joined, "Quest complete: Find The Locket") || !strings.Contains(joined, "Quest reward: +25 gold") {
		t.Errorf("missing quest completion log lines:\n%s", joined)
	}
}

func TestApply_NoOpEffectProducesNoLog(t *testing.T) {
	gs := newTestState(t)

	effect := response.NewEffect()
	effect.TimeDelta = 0

	log := applyOne(t, gs, effect, "stand perfectly still", "Nothing happens.")
	if len(log) != 0 {
		t.Errorf("expected empty change log, got %v", log)
	}

	// History still records the turn.
	if len(gs.History) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(gs.History))
	}
	if len(gs.History[0].EffectLog) != 0 {
		t.Errorf("expected empty effects summary, got %v", gs.History[0].EffectLog)
	}
}

func TestApply_HistoryCap(t *testing.T) {
	gs := newTestState(t)

	for i := 1; i <= state.HistoryLimit+5; i++ {
		effect := response.NewEffect()
		applyOne(t, gs, effect, fmt.Sprintf("action %d", i), fmt.Sprintf("narration %d", i))
	}

	if len(gs.History) != state.HistoryLimit {
		t.Fatalf("expected history capped at %d, got %d", state.HistoryLimit, len(gs.History))
	}
	if gs.History[0].PlayerAction != "action 6" {
		t.Errorf("expected oldest surviving record to be action 6, got %q", gs.History[0].PlayerAction)
	}
	if gs.History[len(gs.History)-1].PlayerAction != fmt.Sprintf("action %d", state.HistoryLimit+5) {
		t.Errorf("expected newest record last, got %q", gs.History[len(gs.History)-1].PlayerAction)
	}
}

func TestApply_NoHistoryWithoutNarration(t *testing.T) {
	gs := newTestState(t)

	effect := response.NewEffect()
	effect.GoldChange = 5
	gs.BeginTurn("internal adjustment")
	NewApplier(gs, quietLogger()).Apply(effect, TurnContext{})

	if len(gs.History) != 0 {
		t.Errorf("turn without action and narration must not enter history, got %d records", len(gs.History))
	}
	if gs.Player.Gold() != 55 {
		t.Errorf("effect must still apply, gold is %d", gs.Player.Gold())
	}
}

func TestApply_MemoryEvents(t *testing.T) {
	gs := newTestState(t)
	sink := &fakeSink{}

	// A band change (0.0 neutral -> 0.3 friendly) produces a memory.
	effect := response.NewEffect()
	effect.RelationshipChanges = map[string]float64{"greta": 0.3}

	gs.BeginTurn("help greta carry kegs")
	NewApplier(gs, quietLogger()).WithMemory(sink).Apply(effect, TurnContext{
		PlayerAction: "help greta carry kegs",
		Narration:    "Greta thanks you warmly.",
	})

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 memory event, got %d", len(sink.events))
	}
	ev := sink.events[0]
	if ev.NPCID != "greta" || ev.Emotion != "joy" {
		t.Errorf("unexpected memory event: %+v", ev)
	}
	if ev.Turn != gs.Turn || ev.Location != "The Rusty Flagon" {
		t.Errorf("expected event stamped with turn and location, got %+v", ev)
	}
}

func TestApply_UnknownLocationSkipsMove(t *testing.T) {
	gs := newTestState(t)

	effect := response.NewEffect()
	effect.Location = "atlantis" // sanitizer bug; applier must not move blindly

	applyOne(t, gs, effect, "swim down", "You dive.")
	if gs.CurrentLocationID != "tavern" {
		t.Errorf("expected no move, at %q", gs.CurrentLocationID)
	}
}

func TestApply_NilEffect(t *testing.T) {
	gs := newTestState(t)
	before := gs.GameTime

	gs.BeginTurn("wait")
	log := NewApplier(gs, quietLogger()).Apply(nil, TurnContext{
		PlayerAction: "wait",
		Narration:    "Time passes.",
	})

	// A nil effect is the neutral default: five minutes pass.
	if got := gs.GameTime.Sub(before); got != 5*time.Minute {
		t.Errorf("expected default 5 minutes, got %v", got)
	}
	if !strings.Contains(strings.Join(log, "\n"), "Time: +5 minutes") {
		t.Errorf("unexpected log: %v", log)
	}
}
