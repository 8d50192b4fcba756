// Package prompts builds the system and user prompts sent to the model
// each turn. It is read-only with respect to game state.
package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/dm-engine/pkg/state"
)

// DefaultHistoryTurns is how many recent turns are serialized into the
// game context by default.
const DefaultHistoryTurns = 5

// Builder constructs the prompt pair for one turn using a fluent
// interface. It separates prompt building from game state management.
type Builder struct {
	gs           *state.GameState
	playerAction string
	historyLimit int
}

// New creates a prompt builder with default settings.
func New() *Builder {
	return &Builder{historyLimit: DefaultHistoryTurns}
}

// WithState sets the game state to serialize into the context.
func (b *Builder) WithState(gs *state.GameState) *Builder {
	b.gs = gs
	return b
}

// WithPlayerAction sets the player's action text for this turn.
func (b *Builder) WithPlayerAction(action string) *Builder {
	b.playerAction = action
	return b
}

// WithHistoryLimit sets the conversation history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build returns the system prompt and the user prompt for this turn.
func (b *Builder) Build() (system string, user string, err error) {
	if b.gs == nil {
		return "", "", fmt.Errorf("gamestate is required")
	}
	if b.playerAction == "" {
		return "", "", fmt.Errorf("player action is required")
	}

	var sb strings.Builder
	sb.WriteString(b.GameContext())
	sb.WriteString("\n\nPlayer action: ")
	sb.WriteString(b.playerAction)
	sb.WriteString("\n\nDM response (JSON):")

	return SystemPrompt(), sb.String(), nil
}

// GameContext serializes the current game state for the model: where
// the player is, who is present, player status, quests, and a window of
// recent history.
func (b *Builder) GameContext() string {
	gs := b.gs
	var sb strings.Builder

	sb.WriteString("=== CURRENT GAME STATE ===\n")
	sb.WriteString(fmt.Sprintf("Turn: %d\n", gs.Turn))
	sb.WriteString(fmt.Sprintf("Time: %s\n", gs.GameTime.Format("Mon 15:04")))

	p := gs.Player.Spec
	sb.WriteString(fmt.Sprintf("Player: %s (%s, level %d) | HP %d/%d | Gold %d\n",
		p.Name, p.Class, p.Level, gs.Player.HP(), gs.Player.MaxHP(), gs.Player.Gold()))

	if len(p.Inventory) > 0 {
		items := make([]string, 0, len(p.Inventory))
		for id, qty := range p.Inventory {
			items = append(items, fmt.Sprintf("%s x%d", id, qty))
		}
		sb.WriteString("Inventory: " + strings.Join(items, ", ") + "\n")
	}

	if loc, ok := gs.CurrentLocation(); ok {
		sb.WriteString(fmt.Sprintf("\nLocation: %s (location_id: %s)\n%s\n", loc.Name, loc.ID, loc.Description))
		if len(loc.Exits) > 0 {
			sb.WriteString("Exits:")
			for dir, dest := range loc.Exits {
				sb.WriteString(fmt.Sprintf(" %s->%s", dir, dest))
			}
			sb.WriteString("\n")
		}
		for _, npcID := range loc.NPCs {
			npc, ok := gs.NPCs[npcID]
			if !ok {
				continue
			}
			band := state.RelationshipBand(gs.Relationship(npcID))
			sb.WriteString(fmt.Sprintf("NPC present: %s (npc_id: %s, role: %s, archetype: %s, standing: %s)\n",
				npc.Name, npcID, npc.Role, npc.Archetype, band))
		}
	}

	if len(gs.ActiveQuests) > 0 {
		sb.WriteString("\nActive quests:\n")
		for _, q := range gs.ActiveQuests {
			status := "open"
			if q.Completed {
				status = "completed"
			}
			sb.WriteString(fmt.Sprintf("- %s [%s]: %s\n", q.Title, status, q.Description))
		}
	}

	if recent := gs.RecentTurns(b.historyLimit); len(recent) > 0 {
		sb.WriteString("\nRecent conversation:\n")
		for _, rec := range recent {
			sb.WriteString(fmt.Sprintf("[Turn %d] Player: %s\n", rec.Turn, rec.PlayerAction))
			sb.WriteString(fmt.Sprintf("[Turn %d] DM: %s\n", rec.Turn, rec.Narration))
			for _, sp := range rec.Speeches {
				sb.WriteString(fmt.Sprintf("[Turn %d] %s (%s): %s\n", rec.Turn, gs.NPCName(sp.NPCID), sp.Emotion, sp.Text))
			}
			if len(rec.EffectLog) > 0 {
				sb.WriteString(fmt.Sprintf("[Turn %d] Effects: %s\n", rec.Turn, strings.Join(rec.EffectLog, "; ")))
			}
		}
	}

	return sb.String()
}
