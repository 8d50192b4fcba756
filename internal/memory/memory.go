// Package memory persists per-NPC episodic memories so NPCs can recall
// notable moments from past turns. Memories live in Redis lists keyed by
// game and NPC, capped to the most recent entries.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/dm-engine/pkg/engine"
)

// maxMemoriesPerNPC caps each NPC's memory list. Oldest entries are
// trimmed first.
const maxMemoriesPerNPC = 50

// RedisStore implements engine.MemorySink over a Redis list per NPC.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

var _ engine.MemorySink = (*RedisStore)(nil)

// NewRedisStore creates a memory store on the given Redis address.
func NewRedisStore(redisURL string, logger *slog.Logger) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})
	return &RedisStore{
		client: rdb,
		logger: logger,
	}
}

// NewRedisStoreWithClient wraps an existing client, sharing the
// connection with gamestate storage.
func NewRedisStoreWithClient(client *redis.Client, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger,
	}
}

func memoryKey(gameID uuid.UUID, npcID string) string {
	return fmt.Sprintf("memories:%s:%s", gameID.String(), npcID)
}

// Record appends a memory to the NPC's list and trims it to the cap.
func (s *RedisStore) Record(ctx context.Context, gameID uuid.UUID, m engine.Memory) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal memory: %w", err)
	}

	key := memoryKey(gameID, m.NPCID)
	if err := s.client.RPush(ctx, key, string(data)).Err(); err != nil {
		return fmt.Errorf("failed to store memory: %w", err)
	}
	if err := s.client.LTrim(ctx, key, -maxMemoriesPerNPC, -1).Err(); err != nil {
		return fmt.Errorf("failed to trim memories: %w", err)
	}

	s.logger.Debug("Recorded NPC memory",
		"game_id", gameID,
		"npc_id", m.NPCID,
		"emotion", m.Emotion)
	return nil
}

// NPCMemories returns up to n most recent memories for an NPC, oldest first.
func (s *RedisStore) NPCMemories(ctx context.Context, gameID uuid.UUID, npcID string, n int) ([]engine.Memory, error) {
	if n <= 0 || n > maxMemoriesPerNPC {
		n = maxMemoriesPerNPC
	}

	key := memoryKey(gameID, npcID)
	raw, err := s.client.LRange(ctx, key, int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch memories: %w", err)
	}

	memories := make([]engine.Memory, 0, len(raw))
	for _, item := range raw {
		var m engine.Memory
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			s.logger.Warn("Skipping unreadable memory entry", "key", key, "error", err)
			continue
		}
		memories = append(memories, m)
	}
	return memories, nil
}

// DeleteGameMemories removes all memories belonging to a game session.
func (s *RedisStore) DeleteGameMemories(ctx context.Context, gameID uuid.UUID) error {
	pattern := fmt.Sprintf("memories:%s:*", gameID.String())
	keys, err := s.client.Keys(ctx, pattern).Result()
	if err != nil {
		return fmt.Errorf("failed to list memory keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete memories: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
