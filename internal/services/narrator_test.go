package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"strings"
	"testing"
)

func quietTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNarrator_ParsesFirstAttempt(t *testing.T) {
	mock := NewMockLLM()
	mock.SetGenerateResponse(`{"narration": "Greta pours an ale.", "effects": {"gold_change": -2}}`)

	n := NewNarrator(mock, quietTestLogger(), 2, 0.8)
	resp := n.GenerateDMResponse(context.Background(), "system", "user", "order an ale")

	if resp.Narration != "Greta pours an ale." {
		t.Errorf("unexpected narration: %q", resp.Narration)
	}
	if resp.Effect.GoldChange != -2 {
		t.Errorf("unexpected gold change: %d", resp.Effect.GoldChange)
	}
	if calls := mock.GetGenerateCalls(); len(calls) != 1 {
		t.Errorf("expected 1 generation call, got %d", len(calls))
	}
}

func TestNarrator_TemperatureDecayOnRetry(t *testing.T) {
	mock := NewMockLLM()
	mock.GenerateFunc = func(ctx context.Context, system, prompt string, temperature float64) (string, error) {
		return "I cannot answer in JSON today.", nil
	}

	n := NewNarrator(mock, quietTestLogger(), 2, 0.8)
	resp := n.GenerateDMResponse(context.Background(), "system", "user", "open the chest")

	calls := mock.GetGenerateCalls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 attempts (1 + 2 retries), got %d", len(calls))
	}

	wantTemps := []float64{0.8, 0.56, 0.392}
	for i, want := range wantTemps {
		if math.Abs(calls[i].Temperature-want) > 1e-9 {
			t.Errorf("attempt %d: temperature %g, want %g", i+1, calls[i].Temperature, want)
		}
	}

	// Exhausted retries produce the fallback, never an error.
	if !strings.Contains(resp.Narration, "open the chest") {
		t.Errorf("expected fallback narration echoing the action, got %q", resp.Narration)
	}
	if resp.Effect.HPChange != 0 || resp.Effect.GoldChange != 0 {
		t.Errorf("fallback must be a neutral effect: %+v", resp.Effect)
	}
}

func TestNarrator_RecoversOnSecondAttempt(t *testing.T) {
	mock := NewMockLLM()
	attempt := 0
	mock.GenerateFunc = func(ctx context.Context, system, prompt string, temperature float64) (string, error) {
		attempt++
		if attempt == 1 {
			return "gibberish with no braces", nil
		}
		return `{"narration": "Second time lucky."}`, nil
	}

	n := NewNarrator(mock, quietTestLogger(), 2, 0.8)
	resp := n.GenerateDMResponse(context.Background(), "system", "user", "try again")

	if resp.Narration != "Second time lucky." {
		t.Errorf("expected parsed retry response, got %q", resp.Narration)
	}
	if attempt != 2 {
		t.Errorf("expected 2 attempts, got %d", attempt)
	}
}

func TestNarrator_TransportErrorFallsBack(t *testing.T) {
	mock := NewMockLLM()
	mock.SetGenerateError(errors.New("connection refused"))

	n := NewNarrator(mock, quietTestLogger(), 2, 0.8)
	resp := n.GenerateDMResponse(context.Background(), "system", "user", "flee the dungeon")

	// Transport failures do not retry; the fallback is immediate.
	if calls := mock.GetGenerateCalls(); len(calls) != 1 {
		t.Errorf("expected 1 attempt on transport error, got %d", len(calls))
	}
	if !strings.Contains(resp.Narration, "flee the dungeon") {
		t.Errorf("expected fallback narration, got %q", resp.Narration)
	}
}

func TestNewNarrator_Defaults(t *testing.T) {
	n := NewNarrator(NewMockLLM(), quietTestLogger(), 0, 0)
	if n.maxRetries != DefaultMaxRetries {
		t.Errorf("expected default retries %d, got %d", DefaultMaxRetries, n.maxRetries)
	}
	if n.temperature != DefaultTemperature {
		t.Errorf("expected default temperature %g, got %g", DefaultTemperature, n.temperature)
	}
}
