package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jwebster45206/dm-engine/pkg/actor"
	"github.com/jwebster45206/dm-engine/pkg/state"
	"github.com/jwebster45206/dm-engine/pkg/world"
)

// Storage defines the interface for persistence operations.
// Game saves are Redis-backed; world data and player templates
// are static resources read from the filesystem.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// GameState operations
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error
	ListGameStates(ctx context.Context) ([]uuid.UUID, error)

	// Static resource operations (filesystem-backed)
	LoadWorld(ctx context.Context) (*world.World, error)
	GetPlayerSpec(ctx context.Context, path string) (*actor.PlayerSpec, error)
}
