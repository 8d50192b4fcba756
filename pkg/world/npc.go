package world

import (
	"encoding/json"
	"strings"
)

// Commerce roles trigger the unpaid-goods check when items appear
// without a matching gold cost.
var commerceRoles = map[string]bool{
	"merchant":   true,
	"shopkeeper": true,
	"bartender":  true,
	"vendor":     true,
	"trader":     true,
}

// NPC represents a non-player character in the game.
type NPC struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role,omitempty"` // e.g. "merchant", "guard", "bartender"
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Archetype   string `json:"archetype,omitempty"` // speech style, e.g. "gruff", "smooth"

	// LastInteractionTurn is the most recent turn the player affected
	// this NPC's relationship. Zero means never.
	LastInteractionTurn int `json:"last_interaction_turn,omitempty"`

	// Extra preserves world-data fields this engine does not model,
	// so authored files round-trip through save/load unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

// HasCommerceRole reports whether this NPC sells goods or services.
func (n *NPC) HasCommerceRole() bool {
	return commerceRoles[strings.ToLower(strings.TrimSpace(n.Role))]
}

var npcKnownFields = map[string]bool{
	"id": true, "name": true, "role": true, "description": true,
	"location": true, "archetype": true, "last_interaction_turn": true,
}

// UnmarshalJSON decodes the known fields and stashes everything else in Extra.
func (n *NPC) UnmarshalJSON(data []byte) error {
	type alias NPC
	if err := json.Unmarshal(data, (*alias)(n)); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range raw {
		if npcKnownFields[k] {
			delete(raw, k)
		}
	}
	if len(raw) > 0 {
		n.Extra = raw
	}
	return nil
}

// MarshalJSON merges Extra back alongside the known fields.
func (n *NPC) MarshalJSON() ([]byte, error) {
	type alias NPC
	base, err := json.Marshal((*alias)(n))
	if err != nil {
		return nil, err
	}
	if len(n.Extra) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range n.Extra {
		if _, taken := merged[k]; !taken {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}
