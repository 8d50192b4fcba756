package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/dm-engine/pkg/response"
	"github.com/jwebster45206/dm-engine/pkg/state"
)

// TurnContext carries the per-turn inputs the applicator needs beyond
// the effect itself: what the player did and what the model narrated.
type TurnContext struct {
	PlayerAction string
	Narration    string
	Speeches     []response.Speech
	Timestamp    time.Time
}

// Applier commits validated and sanitized effects to game state. It is
// the only component allowed to mutate a GameState. Out-of-range values
// reaching it indicate an upstream bug, so it clamps defensively and
// logs instead of failing; no apply path can abort a turn.
type Applier struct {
	gs     *state.GameState
	logger *slog.Logger
	memory MemorySink
	ctx    context.Context
}

// NewApplier creates an applier bound to one game state.
func NewApplier(gs *state.GameState, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{
		gs:     gs,
		logger: logger,
		ctx:    context.Background(),
	}
}

// WithMemory sets an optional memory sink notified after commit.
// Returns the Applier for method chaining.
func (a *Applier) WithMemory(sink MemorySink) *Applier {
	a.memory = sink
	return a
}

// WithContext sets the context used for memory sink calls.
// Returns the Applier for method chaining.
func (a *Applier) WithContext(ctx context.Context) *Applier {
	a.ctx = ctx
	return a
}

// Apply commits an effect in a fixed order: location, time, HP, gold,
// items, new quests, completed quests, relationships, history. The
// order is load-bearing: later steps read values earlier steps may
// have just changed. Each step is unconditional on the others; a no-op
// field produces no log line and no side effect. Returns the
// human-readable change log.
func (a *Applier) Apply(effect *response.Effect, turnCtx TurnContext) []string {
	if effect == nil {
		effect = response.NewEffect()
	}
	gs := a.gs
	log := make([]string, 0, 8)
	var events []Memory

	// 1. Location.
	if effect.Location != "" {
		if dest, ok := gs.Locations[effect.Location]; ok {
			oldName := effect.Location
			if old, ok := gs.CurrentLocation(); ok {
				oldName = old.Name
			}
			gs.CurrentLocationID = effect.Location
			log = append(log, fmt.Sprintf("Moved: %s -> %s", oldName, dest.Name))
		} else {
			a.logger.Warn("Applier received unknown location, skipping move", "location", effect.Location)
		}
	}

	// 2. Time. Negative deltas are allowed (time magic).
	if effect.TimeDelta != 0 {
		gs.GameTime = gs.GameTime.Add(time.Duration(effect.TimeDelta) * time.Minute)
		log = append(log, fmt.Sprintf("Time: %+d minutes", effect.TimeDelta))
	}

	// 3. HP, clamped even though upstream should have guaranteed safety.
	if effect.HPChange != 0 {
		oldHP := gs.Player.HP()
		gs.Player.SetHP(oldHP + effect.HPChange)
		newHP := gs.Player.HP()
		if newHP-oldHP != effect.HPChange {
			a.logger.Warn("HP change clamped at apply time; upstream validation missed it",
				"requested", effect.HPChange, "applied", newHP-oldHP)
		}
		log = append(log, fmt.Sprintf("HP: %d -> %d (%+d)", oldHP, newHP, newHP-oldHP))
		if newHP == 0 {
			events = append(events, Memory{
				NPCID:      "all",
				Text:       fmt.Sprintf("%s collapsed at %s", gs.Player.Spec.Name, a.locationName()),
				Emotion:    "fear",
				Importance: 0.9,
			})
		}
	}

	// 4. Gold, clamped at zero.
	if effect.GoldChange != 0 {
		oldGold := gs.Player.Gold()
		newGold := gs.Player.AddGold(effect.GoldChange)
		if newGold-oldGold != effect.GoldChange {
			a.logger.Warn("Gold change clamped at apply time; upstream validation missed it",
				"requested", effect.GoldChange, "applied", newGold-oldGold)
		}
		log = append(log, fmt.Sprintf("Gold: %d -> %d (%+d)", oldGold, newGold, newGold-oldGold))
	}

	// 5. Items.
	itemsGained := make([]string, 0, len(effect.NewItems))
	for _, itemID := range effect.NewItems {
		gs.Player.AddItem(itemID, 1)
		itemsGained = append(itemsGained, itemID)
		log = append(log, fmt.Sprintf("Gained: %s", itemID))
	}

	// 6. New quests. Unknown IDs get a synthesized default quest.
	for _, questID := range effect.NewQuests {
		if _, exists := gs.ActiveQuests[questID]; exists {
			continue
		}
		quest := state.SynthesizeQuest(questID, time.Now())
		gs.ActiveQuests[questID] = quest
		log = append(log, fmt.Sprintf("New quest: %s", quest.Title))
	}

	// 7. Completed quests, with reward gold as its own log line.
	for _, questID := range effect.CompletedQuests {
		quest, ok := gs.ActiveQuests[questID]
		if !ok {
			continue
		}
		quest.Completed = true
		log = append(log, fmt.Sprintf("Quest complete: %s", quest.Title))
		if quest.RewardGold > 0 {
			gs.Player.AddGold(quest.RewardGold)
			log = append(log, fmt.Sprintf("Quest reward: +%d gold", quest.RewardGold))
		}
		events = append(events, Memory{
			NPCID:      quest.GiverNPCID,
			Text:       fmt.Sprintf("%s completed the quest %q", gs.Player.Spec.Name, quest.Title),
			Emotion:    "gratitude",
			Importance: 0.8,
		})
	}

	// 8. Relationship changes: clamp, band, update last interaction.
	for npcID, delta := range effect.RelationshipChanges {
		oldScore := gs.Relationship(npcID)
		newScore := gs.SetRelationship(npcID, oldScore+delta)
		band := state.RelationshipBand(newScore)
		name := gs.NPCName(npcID)
		log = append(log, fmt.Sprintf("%s: %+.1f (%s)", name, delta, band))

		if npc, ok := gs.NPCs[npcID]; ok {
			npc.LastInteractionTurn = gs.Turn
		}
		if oldBand := state.RelationshipBand(oldScore); oldBand != band {
			emotion := "joy"
			if newScore < oldScore {
				emotion = "anger"
			}
			events = append(events, Memory{
				NPCID:      npcID,
				Text:       fmt.Sprintf("My relationship with %s is now %s", gs.Player.Spec.Name, band),
				Emotion:    emotion,
				Importance: 0.6,
			})
		}
	}

	// 9. Conversation-history append, capped to the most recent turns.
	if turnCtx.PlayerAction != "" && turnCtx.Narration != "" {
		ts := turnCtx.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		logCopy := make([]string, len(log))
		copy(logCopy, log)
		gs.AppendTurn(state.TurnRecord{
			Turn:         gs.Turn,
			PlayerAction: turnCtx.PlayerAction,
			Narration:    turnCtx.Narration,
			Speeches:     turnCtx.Speeches,
			EffectLog:    logCopy,
			ItemsGained:  itemsGained,
			Timestamp:    ts,
		})
		gs.LastNarration = turnCtx.Narration
	}

	a.notify(events)
	return log
}

// notify forwards significant events to the memory sink, if configured.
// Sink failures are logged and otherwise ignored; memory is best-effort.
func (a *Applier) notify(events []Memory) {
	if a.memory == nil || len(events) == 0 {
		return
	}
	loc := a.locationName()
	for _, ev := range events {
		ev.Turn = a.gs.Turn
		ev.Location = loc
		ev.Timestamp = time.Now()
		if err := a.memory.Record(a.ctx, a.gs.ID, ev); err != nil {
			a.logger.Error("Failed to record memory", "error", err, "npc_id", ev.NPCID)
		}
	}
}

func (a *Applier) locationName() string {
	if loc, ok := a.gs.CurrentLocation(); ok {
		return loc.Name
	}
	return a.gs.CurrentLocationID
}
