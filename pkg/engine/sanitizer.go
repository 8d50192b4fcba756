package engine

import (
	"log/slog"

	"github.com/jwebster45206/dm-engine/pkg/response"
	"github.com/jwebster45206/dm-engine/pkg/state"
)

// Sanitize repairs a response in place so it is always safe to apply:
// clamp what can be clamped, drop what can't be resolved, null out the
// rest. Every rule re-derives its decision from current state rather
// than trusting the validator's issue list, which makes the operation
// idempotent. Sanitize never fails.
func Sanitize(r *response.Response, gs *state.GameState, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if r.Effect == nil {
		r.Effect = response.NewEffect()
	}
	effect := r.Effect

	// Location: unresolvable means "no move", never a rejected turn.
	if effect.Location != "" {
		if resolved, ok := ResolveLocation(effect.Location, gs); ok {
			effect.Location = resolved
		} else {
			logger.Warn("Sanitized invalid location to no change", "location", effect.Location)
			effect.Location = ""
		}
	}

	// Speeches: drop unresolvable speakers, keep order, canonicalize IDs.
	kept := r.Speeches[:0]
	for _, sp := range r.Speeches {
		resolved, ok := ResolveNPC(sp.NPCID, gs)
		if !ok {
			logger.Warn("Dropped speech from unknown NPC", "npc_id", sp.NPCID)
			continue
		}
		sp.NPCID = resolved
		kept = append(kept, sp)
	}
	r.Speeches = kept

	// Relationship changes: rebuild with resolvable keys, clamp deltas.
	cleaned := make(map[string]float64, len(effect.RelationshipChanges))
	for npcID, delta := range effect.RelationshipChanges {
		resolved, ok := ResolveNPC(npcID, gs)
		if !ok {
			logger.Warn("Dropped relationship change for unknown NPC", "npc_id", npcID)
			continue
		}
		clamped := state.ClampRelationship(delta)
		if clamped != delta {
			logger.Warn("Clamped relationship change", "npc_id", resolved, "from", delta, "to", clamped)
		}
		cleaned[resolved] = clamped
	}
	effect.RelationshipChanges = cleaned

	// Completed quests: only active quests can complete.
	validQuests := effect.CompletedQuests[:0]
	for _, questID := range effect.CompletedQuests {
		if _, ok := gs.ActiveQuests[questID]; ok {
			validQuests = append(validQuests, questID)
			continue
		}
		logger.Warn("Dropped completion of unknown quest", "quest_id", questID)
	}
	effect.CompletedQuests = validQuests

	// HP delta: clamp so the result lands exactly on the boundary
	// instead of dropping the rest of the turn.
	if hp := gs.Player.HP() + effect.HPChange; hp < 0 {
		logger.Warn("Clamped HP change to prevent negative HP", "hp_change", effect.HPChange)
		effect.HPChange = -gs.Player.HP()
	} else if hp > gs.Player.MaxHP() {
		logger.Warn("Clamped HP change to prevent exceeding max HP", "hp_change", effect.HPChange)
		effect.HPChange = gs.Player.MaxHP() - gs.Player.HP()
	}

	// Gold delta: never below zero.
	if gold := gs.Player.Gold() + effect.GoldChange; gold < 0 {
		logger.Warn("Clamped gold change to prevent negative gold", "gold_change", effect.GoldChange)
		effect.GoldChange = -gs.Player.Gold()
	}
}
