package state

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Quest tracks a single objective. Quests transition open → completed
// exactly once and are never reopened.
type Quest struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	GiverNPCID  string    `json:"giver_npc_id"`
	Completed   bool      `json:"completed"`
	RewardGold  int       `json:"reward_gold,omitempty"`
	StartedAt   time.Time `json:"started_at"`
}

var questTitleCaser = cases.Title(language.English)

// SynthesizeQuest builds a default quest for an ID the model referenced
// but the world never defined: underscores become spaces and the title
// is cased, the giver is unknown.
func SynthesizeQuest(questID string, now time.Time) *Quest {
	title := questTitleCaser.String(strings.ReplaceAll(questID, "_", " "))
	return &Quest{
		ID:          questID,
		Title:       title,
		Description: fmt.Sprintf("New quest: %s", title),
		GiverNPCID:  "unknown",
		StartedAt:   now,
	}
}
