// Package response defines the wire contract produced by the model each
// turn: a narration, NPC speeches, one effect, and suggested actions.
// Everything in it is untrusted until validated against game state.
package response

import (
	"encoding/json"
	"time"
)

// DefaultTimeDelta is the number of game minutes a turn takes
// when the model doesn't say otherwise.
const DefaultTimeDelta = 5

// Speech is a single NPC's spoken line with an emotion tag.
type Speech struct {
	NPCID   string `json:"npc_id"`
	Text    string `json:"text"`
	Emotion string `json:"emotion"`
}

// Effect is the sole channel through which the model can change game
// state. Every field is a proposal; the validator and sanitizer decide
// what actually reaches the applicator.
type Effect struct {
	Location            string             `json:"location,omitempty"` // destination location ID, empty for no move
	TimeDelta           int                `json:"time_delta"`         // minutes, may be negative
	HPChange            int                `json:"hp_change"`
	GoldChange          int                `json:"gold_change"`
	NewItems            []string           `json:"new_items"`
	NewQuests           []string           `json:"new_quests"`
	CompletedQuests     []string           `json:"completed_quests"`
	RelationshipChanges map[string]float64 `json:"npc_relationship_changes"`
}

// NewEffect returns a neutral effect: time passes, nothing else changes.
func NewEffect() *Effect {
	return &Effect{
		TimeDelta:           DefaultTimeDelta,
		NewItems:            []string{},
		NewQuests:           []string{},
		CompletedQuests:     []string{},
		RelationshipChanges: map[string]float64{},
	}
}

// UnmarshalJSON applies defaults for every absent optional field.
func (e *Effect) UnmarshalJSON(data []byte) error {
	type alias Effect
	aux := &struct {
		TimeDelta *int `json:"time_delta"`
		*alias
	}{alias: (*alias)(e)}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if aux.TimeDelta != nil {
		e.TimeDelta = *aux.TimeDelta
	} else {
		e.TimeDelta = DefaultTimeDelta
	}
	if e.NewItems == nil {
		e.NewItems = []string{}
	}
	if e.NewQuests == nil {
		e.NewQuests = []string{}
	}
	if e.CompletedQuests == nil {
		e.CompletedQuests = []string{}
	}
	if e.RelationshipChanges == nil {
		e.RelationshipChanges = map[string]float64{}
	}
	return nil
}

// Response is the complete structured reply for one turn. It is
// transient: constructed from model output, consumed within the turn,
// and never persisted except as a flattened turn record.
type Response struct {
	Narration        string    `json:"narration"`
	Speeches         []Speech  `json:"npc_speeches"`
	Effect           *Effect   `json:"effects"`
	SuggestedOptions []string  `json:"suggested_options"`
	Timestamp        time.Time `json:"timestamp"`
}

// UnmarshalJSON fills defaults: a neutral effect when absent, empty
// lists, "neutral" emotions, and a fresh timestamp when the model's is
// missing or unparseable.
func (r *Response) UnmarshalJSON(data []byte) error {
	type alias Response
	aux := &struct {
		Timestamp json.RawMessage `json:"timestamp"`
		*alias
	}{alias: (*alias)(r)}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if r.Effect == nil {
		r.Effect = NewEffect()
	}
	if r.Speeches == nil {
		r.Speeches = []Speech{}
	}
	for i := range r.Speeches {
		if r.Speeches[i].Emotion == "" {
			r.Speeches[i].Emotion = "neutral"
		}
	}
	if r.SuggestedOptions == nil {
		r.SuggestedOptions = []string{}
	}

	r.Timestamp = time.Now()
	var raw string
	if json.Unmarshal(aux.Timestamp, &raw) == nil {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			r.Timestamp = ts
		}
	}
	return nil
}
