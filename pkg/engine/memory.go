package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Memory is one memory-worthy fact emitted after a turn commits.
type Memory struct {
	NPCID      string    `json:"npc_id"` // "all" for facts shared by everyone present
	Text       string    `json:"text"`
	Emotion    string    `json:"emotion,omitempty"`
	Importance float64   `json:"importance"` // 0.0–1.0
	Turn       int       `json:"turn"`
	Location   string    `json:"location,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// MemorySink receives significant events after the applicator commits a
// turn. A nil sink disables the memory subsystem; its presence or
// absence never changes the applicator's own behavior.
type MemorySink interface {
	Record(ctx context.Context, gameID uuid.UUID, m Memory) error
}
