package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jwebster45206/dm-engine/internal/config"
	"github.com/jwebster45206/dm-engine/internal/logger"
	"github.com/jwebster45206/dm-engine/internal/memory"
	"github.com/jwebster45206/dm-engine/internal/services"
	"github.com/jwebster45206/dm-engine/internal/storage"
	"github.com/jwebster45206/dm-engine/pkg/actor"
	"github.com/jwebster45206/dm-engine/pkg/engine"
	"github.com/jwebster45206/dm-engine/pkg/state"
)

const defaultStartLocation = "tavern"

func main() {
	loadID := flag.String("load", "", "UUID of a saved game to resume")
	playerFile := flag.String("player", "", "path to a player spec JSON file (default: <data>/player.json)")
	startLocation := flag.String("start", defaultStartLocation, "starting location ID for new games")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Setup(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	defer func() {
		_ = store.Close()
	}()

	if err := store.WaitForConnection(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Could not connect to Redis at %s: %v\n", cfg.RedisURL, err)
		os.Exit(1)
	}

	w, err := store.LoadWorld(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load world data: %v\n", err)
		os.Exit(1)
	}
	if problems := w.Check(); len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "World data problem: %s\n", p)
		}
		os.Exit(1)
	}

	var gs *state.GameState
	if *loadID != "" {
		id, err := uuid.Parse(*loadID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid game ID %q: %v\n", *loadID, err)
			os.Exit(1)
		}
		gs, err = store.LoadGameState(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load game: %v\n", err)
			os.Exit(1)
		}
		if gs == nil {
			fmt.Fprintf(os.Stderr, "No saved game with ID %s\n", id)
			os.Exit(1)
		}
		log.Info("Resumed saved game", "game_id", gs.ID, "turn", gs.Turn)
	} else {
		specPath := *playerFile
		if specPath == "" {
			specPath = filepath.Join(cfg.DataDir, "player.json")
		}
		spec, err := store.GetPlayerSpec(ctx, specPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load player spec from %s: %v\n", specPath, err)
			os.Exit(1)
		}
		player, err := actor.NewPlayerFromSpec(spec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create player: %v\n", err)
			os.Exit(1)
		}
		if _, ok := w.Locations[*startLocation]; !ok {
			fmt.Fprintf(os.Stderr, "Unknown starting location %q\n", *startLocation)
			os.Exit(1)
		}
		gs = state.NewGameState(player, w, *startLocation)
		log.Info("Started new game", "game_id", gs.ID, "player", spec.Name)
	}

	llm := services.NewOllamaService(cfg.OllamaURL, cfg.ModelName, log)
	if err := llm.InitModel(ctx, cfg.ModelName); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize model %s: %v\n", cfg.ModelName, err)
		os.Exit(1)
	}

	narrator := services.NewNarrator(llm, log, cfg.MaxRetries, cfg.Temperature)

	var sink engine.MemorySink
	if cfg.MemoryEnabled {
		memStore := memory.NewRedisStore(cfg.RedisURL, log)
		defer func() {
			_ = memStore.Close()
		}()
		sink = memStore
	}

	p := tea.NewProgram(NewGameUI(gs, narrator, store, sink, log),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Game saved. Resume with: game -load %s\n", gs.ID)
}
