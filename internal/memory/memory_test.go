package memory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/jwebster45206/dm-engine/pkg/engine"
)

func setupTestStore(t *testing.T) *RedisStore {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := NewRedisStore(mr.Addr(), logger)

	t.Cleanup(func() {
		_ = store.Close()
		mr.Close()
	})

	return store
}

func TestRedisStore_RecordAndFetch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	gameID := uuid.New()

	memories := []engine.Memory{
		{NPCID: "greta", Text: "Player bought a round for the whole tavern.", Emotion: "joy", Importance: 0.6, Turn: 3, Location: "tavern", Timestamp: time.Now().UTC()},
		{NPCID: "greta", Text: "Player returned the lost locket.", Emotion: "joy", Importance: 0.9, Turn: 7, Location: "tavern", Timestamp: time.Now().UTC()},
	}

	for _, m := range memories {
		if err := store.Record(ctx, gameID, m); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	got, err := store.NPCMemories(ctx, gameID, "greta", 10)
	if err != nil {
		t.Fatalf("NPCMemories failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 memories, got %d", len(got))
	}
	if got[0].Text != memories[0].Text || got[1].Text != memories[1].Text {
		t.Errorf("memories out of order or corrupted: %+v", got)
	}
	if got[1].Importance != 0.9 {
		t.Errorf("expected importance 0.9, got %f", got[1].Importance)
	}
}

func TestRedisStore_CapsPerNPC(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	gameID := uuid.New()

	for i := 0; i < maxMemoriesPerNPC+10; i++ {
		m := engine.Memory{
			NPCID: "greta",
			Text:  fmt.Sprintf("event %d", i),
			Turn:  i + 1,
		}
		if err := store.Record(ctx, gameID, m); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	got, err := store.NPCMemories(ctx, gameID, "greta", maxMemoriesPerNPC)
	if err != nil {
		t.Fatalf("NPCMemories failed: %v", err)
	}
	if len(got) != maxMemoriesPerNPC {
		t.Fatalf("expected %d memories after trim, got %d", maxMemoriesPerNPC, len(got))
	}
	// The oldest 10 must be gone.
	if got[0].Text != "event 10" {
		t.Errorf("expected oldest surviving memory to be event 10, got %q", got[0].Text)
	}
}

func TestRedisStore_IsolatesGamesAndNPCs(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	gameA := uuid.New()
	gameB := uuid.New()

	_ = store.Record(ctx, gameA, engine.Memory{NPCID: "greta", Text: "a"})
	_ = store.Record(ctx, gameA, engine.Memory{NPCID: "marek", Text: "b"})
	_ = store.Record(ctx, gameB, engine.Memory{NPCID: "greta", Text: "c"})

	got, err := store.NPCMemories(ctx, gameA, "greta", 10)
	if err != nil {
		t.Fatalf("NPCMemories failed: %v", err)
	}
	if len(got) != 1 || got[0].Text != "a" {
		t.Errorf("expected only game A greta memory, got %+v", got)
	}
}

func TestRedisStore_DeleteGameMemories(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	gameID := uuid.New()

	_ = store.Record(ctx, gameID, engine.Memory{NPCID: "greta", Text: "a"})
	_ = store.Record(ctx, gameID, engine.Memory{NPCID: "marek", Text: "b"})

	if err := store.DeleteGameMemories(ctx, gameID); err != nil {
		t.Fatalf("DeleteGameMemories failed: %v", err)
	}

	got, err := store.NPCMemories(ctx, gameID, "greta", 10)
	if err != nil {
		t.Fatalf("NPCMemories failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no memories after delete, got %d", len(got))
	}
}
