// Package state holds the mutable session state for one playthrough:
// the player, the world as the session sees it, quests, relationships,
// and the rolling conversation history.
package state

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/dm-engine/pkg/actor"
	"github.com/jwebster45206/dm-engine/pkg/response"
	"github.com/jwebster45206/dm-engine/pkg/world"
)

// HistoryLimit bounds the rolling conversation history to the most
// recent turns. Older turns are dropped, oldest first.
const HistoryLimit = 10

// TurnRecord is the flattened summary of one committed turn. It is the
// only form in which a model response survives past its own turn.
type TurnRecord struct {
	Turn         int               `json:"turn"`
	PlayerAction string            `json:"player_action"`
	Narration    string            `json:"narration"`
	Speeches     []response.Speech `json:"npc_speeches,omitempty"`
	EffectLog    []string          `json:"effects_summary,omitempty"`
	ItemsGained  []string          `json:"items_gained,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

// GameState is the single source of truth for a game session. It is
// created once (new game) or deserialized (load), mutated turn-by-turn
// only by the effect applicator, and serialized wholesale on save.
type GameState struct {
	ID                uuid.UUID                 `json:"id"`
	Player            *actor.Player             `json:"player"`
	CurrentLocationID string                    `json:"current_location_id"`
	GameTime          time.Time                 `json:"game_time"`
	Turn              int                       `json:"turn"`
	Locations         map[string]world.Location `json:"locations"`
	ActiveQuests      map[string]*Quest         `json:"active_quests"`
	NPCs              map[string]*world.NPC     `json:"npcs"`
	EventLog          []string                  `json:"world_events_log,omitempty"`
	History           []TurnRecord              `json:"conversation_history,omitempty"`
	Relationships     map[string]float64        `json:"npc_relationships,omitempty"` // NPC ID → score in [-1, 1]
	LastNarration     string                    `json:"last_narration,omitempty"`
	UpdatedAt         time.Time                 `json:"updated_at,omitempty"`
}

// NewGameState creates a fresh session over the given world data.
func NewGameState(player *actor.Player, w *world.World, startLocationID string) *GameState {
	return &GameState{
		ID:                uuid.New(),
		Player:            player,
		CurrentLocationID: startLocationID,
		GameTime:          time.Now(),
		Locations:         w.Locations,
		ActiveQuests:      make(map[string]*Quest),
		NPCs:              w.NPCs,
		EventLog:          make([]string, 0),
		History:           make([]TurnRecord, 0),
		Relationships:     make(map[string]float64),
	}
}

// CurrentLocation resolves the player's location. The second return is
// false only if the state violates its own invariant.
func (gs *GameState) CurrentLocation() (world.Location, bool) {
	loc, ok := gs.Locations[gs.CurrentLocationID]
	return loc, ok
}

// NPCName returns the display name for an NPC ID, falling back to the
// ID itself for unknown NPCs.
func (gs *GameState) NPCName(npcID string) string {
	if npc, ok := gs.NPCs[npcID]; ok && npc.Name != "" {
		return npc.Name
	}
	return npcID
}

// Relationship returns the player's standing with an NPC, 0.0 if never set.
func (gs *GameState) Relationship(npcID string) float64 {
	return gs.Relationships[npcID]
}

// SetRelationship stores a relationship score, clamped into [-1, 1].
func (gs *GameState) SetRelationship(npcID string, score float64) float64 {
	score = ClampRelationship(score)
	if gs.Relationships == nil {
		gs.Relationships = make(map[string]float64)
	}
	gs.Relationships[npcID] = score
	return score
}

// ClampRelationship bounds a relationship score into [-1, 1].
func ClampRelationship(score float64) float64 {
	if score > 1.0 {
		return 1.0
	}
	if score < -1.0 {
		return -1.0
	}
	return score
}

// RelationshipBand classifies a score into one of five qualitative labels.
func RelationshipBand(score float64) string {
	switch {
	case score >= 0.7:
		return "trusted ally"
	case score >= 0.3:
		return "friendly"
	case score >= -0.3:
		return "neutral"
	case score >= -0.7:
		return "unfriendly"
	default:
		return "hostile"
	}
}

// BeginTurn advances the turn counter and records the player's action
// in the rolling event log. Called once per committed turn, before
// effects are applied; declined turns never reach it.
func (gs *GameState) BeginTurn(playerAction string) {
	gs.Turn++
	gs.EventLog = append(gs.EventLog, fmt.Sprintf("Turn %d: Player action: %s", gs.Turn, playerAction))
}

// AppendTurn adds a turn record and truncates history to HistoryLimit,
// dropping the oldest entries first.
func (gs *GameState) AppendTurn(rec TurnRecord) {
	gs.History = append(gs.History, rec)
	if len(gs.History) > HistoryLimit {
		gs.History = gs.History[len(gs.History)-HistoryLimit:]
	}
}

// RecentTurns returns up to n most recent turn records, oldest first.
func (gs *GameState) RecentTurns(n int) []TurnRecord {
	if n <= 0 || len(gs.History) == 0 {
		return nil
	}
	if n > len(gs.History) {
		n = len(gs.History)
	}
	return gs.History[len(gs.History)-n:]
}
