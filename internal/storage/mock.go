package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dm-engine/pkg/actor"
	"github.com/jwebster45206/dm-engine/pkg/state"
	"github.com/jwebster45206/dm-engine/pkg/world"
)

// MockStorage is an in-memory implementation of Storage for testing
type MockStorage struct {
	gameStates map[uuid.UUID]*state.GameState
	World      *world.World
	PlayerSpec *actor.PlayerSpec

	SaveErr error
	LoadErr error

	mu sync.Mutex
}

var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new in-memory storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		gameStates: make(map[uuid.UUID]*state.GameState),
	}
}

func (m *MockStorage) Ping(ctx context.Context) error { return nil }

func (m *MockStorage) Close() error { return nil }

func (m *MockStorage) SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}

	gs.UpdatedAt = time.Now()

	// Deep copy through JSON so later mutations don't leak into the store,
	// matching the isolation a real backend provides.
	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("failed to marshal gamestate: %w", err)
	}
	var cp state.GameState
	if err := json.Unmarshal(data, &cp); err != nil {
		return fmt.Errorf("failed to unmarshal gamestate: %w", err)
	}

	m.gameStates[id] = &cp
	return nil
}

func (m *MockStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LoadErr != nil {
		return nil, m.LoadErr
	}

	gs, ok := m.gameStates[id]
	if !ok {
		return nil, nil
	}

	data, err := json.Marshal(gs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gamestate: %w", err)
	}
	var cp state.GameState
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gamestate: %w", err)
	}

	return &cp, nil
}

func (m *MockStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.gameStates, id)
	return nil
}

func (m *MockStorage) ListGameStates(ctx context.Context) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(m.gameStates))
	for id := range m.gameStates {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MockStorage) LoadWorld(ctx context.Context) (*world.World, error) {
	if m.World == nil {
		return nil, fmt.Errorf("no world configured")
	}
	return m.World, nil
}

func (m *MockStorage) GetPlayerSpec(ctx context.Context, path string) (*actor.PlayerSpec, error) {
	if m.PlayerSpec == nil {
		return nil, fmt.Errorf("player spec not found: %s", path)
	}
	return m.PlayerSpec, nil
}
