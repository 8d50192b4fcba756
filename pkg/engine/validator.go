package engine

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/dm-engine/pkg/response"
	"github.com/jwebster45206/dm-engine/pkg/state"
)

// Severity separates hard consistency failures from heuristic warnings.
// Both trigger sanitization before commit; only warnings are surfaced
// in the confirmation gate rather than treated as model errors.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Issue is one validation finding.
type Issue struct {
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s", i.Severity, i.Message)
}

// Issues is the accumulated finding list for one response.
type Issues []Issue

// Valid reports whether the response can be applied as-is.
func (is Issues) Valid() bool { return len(is) == 0 }

// HasErrors reports whether any finding is a hard failure.
func (is Issues) HasErrors() bool {
	for _, i := range is {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Warnings returns only the warning-class findings.
func (is Issues) Warnings() []Issue {
	var out []Issue
	for _, i := range is {
		if i.Severity == SeverityWarning {
			out = append(out, i)
		}
	}
	return out
}

func (is *Issues) addError(format string, args ...any) {
	*is = append(*is, Issue{Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
}

func (is *Issues) addWarning(format string, args ...any) {
	*is = append(*is, Issue{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
}

// duplicatePurchaseWindow is how many recent turns are scanned for a
// repeated item purchase.
const duplicatePurchaseWindow = 2

// Validate checks a parsed response against current game state. It
// never mutates state and never changes numeric values, but it does
// canonicalize identifiers it can resolve, rewriting them into the
// response. Checks accumulate; nothing short-circuits.
func Validate(r *response.Response, gs *state.GameState) Issues {
	var issues Issues
	effect := r.Effect
	if effect == nil {
		effect = response.NewEffect()
		r.Effect = effect
	}

	// Location resolution.
	if effect.Location != "" {
		if resolved, ok := ResolveLocation(effect.Location, gs); ok {
			effect.Location = resolved
		} else {
			issues.addError("invalid location: %s", effect.Location)
		}
	}

	// NPC resolution for speeches.
	for i := range r.Speeches {
		if resolved, ok := ResolveNPC(r.Speeches[i].NPCID, gs); ok {
			r.Speeches[i].NPCID = resolved
		} else {
			issues.addError("invalid NPC in speech: %s", r.Speeches[i].NPCID)
		}
	}

	// NPC resolution for relationship changes. Unresolvable keys are
	// dropped here, not just flagged; deltas pass through unclamped.
	cleaned := make(map[string]float64, len(effect.RelationshipChanges))
	for npcID, delta := range effect.RelationshipChanges {
		resolved, ok := ResolveNPC(npcID, gs)
		if !ok {
			issues.addError("invalid NPC in relationship changes: %s", npcID)
			continue
		}
		cleaned[resolved] = delta
		if delta < -1.0 || delta > 1.0 {
			issues.addError("relationship change out of range for %s: %g", resolved, delta)
		}
	}
	effect.RelationshipChanges = cleaned

	// Quest completion must reference an active quest.
	for _, questID := range effect.CompletedQuests {
		if _, ok := gs.ActiveQuests[questID]; !ok {
			issues.addError("cannot complete non-existent quest: %s", questID)
		}
	}

	// HP bounds.
	if hp := gs.Player.HP() + effect.HPChange; hp < 0 || hp > gs.Player.MaxHP() {
		issues.addError("HP change would result in invalid HP: %d", hp)
	}

	// Gold bounds. The message includes the current amount so the model
	// can be re-prompted with it.
	if gold := gs.Player.Gold() + effect.GoldChange; gold < 0 {
		issues.addError("gold change would result in negative gold: %d (player only has %d gold)", gold, gs.Player.Gold())
	}

	// Unpaid-goods heuristic: items appearing with no gold spent while a
	// commerce NPC is present usually means the model forgot to charge.
	if len(effect.NewItems) > 0 && effect.GoldChange >= 0 {
		if loc, ok := gs.CurrentLocation(); ok {
			for _, npcID := range loc.NPCs {
				npc, ok := gs.NPCs[npcID]
				if !ok || !npc.HasCommerceRole() {
					continue
				}
				issues.addWarning("receiving items from %s without gold cost; items should be paid for", strings.ToLower(npc.Role))
				break
			}
		}
	}

	// Duplicate-purchase heuristic: the same item bought again within
	// the last few turns is usually the model double-charging.
	if len(effect.NewItems) > 0 && effect.GoldChange < 0 {
		if overlap := recentItemOverlap(effect.NewItems, gs); len(overlap) > 0 {
			issues.addWarning("possible duplicate purchase: %s already received in recent turns", strings.Join(overlap, ", "))
		}
	}

	return issues
}

func recentItemOverlap(newItems []string, gs *state.GameState) []string {
	recent := make(map[string]bool)
	for _, rec := range gs.RecentTurns(duplicatePurchaseWindow) {
		for _, item := range rec.ItemsGained {
			recent[item] = true
		}
	}

	var overlap []string
	for _, item := range newItems {
		if recent[item] {
			overlap = append(overlap, item)
		}
	}
	return overlap
}
