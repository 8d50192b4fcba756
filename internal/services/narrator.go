package services

import (
	"context"
	"log/slog"

	"github.com/jwebster45206/dm-engine/pkg/response"
)

const (
	// DefaultTemperature is the sampling temperature for the first attempt.
	DefaultTemperature = 0.8

	// DefaultMaxRetries is how many re-attempts are made after a failed parse.
	DefaultMaxRetries = 2

	// temperatureDecay is applied to the temperature before each retry,
	// nudging the model toward more deterministic output.
	temperatureDecay = 0.7
)

// Narrator wraps an LLMService and guarantees a usable DM response: model
// output is parsed into a structured Response, malformed output triggers a
// retry at reduced temperature, and exhausted retries produce a safe
// fallback. Narrator never returns an error to the caller.
type Narrator struct {
	llm         LLMService
	logger      *slog.Logger
	maxRetries  int
	temperature float64
}

// NewNarrator creates a Narrator with the given retry budget and starting
// temperature. Values <= 0 fall back to the defaults.
func NewNarrator(llm LLMService, logger *slog.Logger, maxRetries int, temperature float64) *Narrator {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &Narrator{
		llm:         llm,
		logger:      logger,
		maxRetries:  maxRetries,
		temperature: temperature,
	}
}

// GenerateDMResponse asks the model to narrate the outcome of playerInput.
// The returned Response is always non-nil and safe to validate and apply.
func (n *Narrator) GenerateDMResponse(ctx context.Context, system, userPrompt, playerInput string) *response.Response {
	temperature := n.temperature

	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		raw, err := n.llm.Generate(ctx, system, userPrompt, temperature)
		if err != nil {
			n.logger.Error("LLM generation failed", "error", err, "attempt", attempt+1)
			return response.Fallback(playerInput)
		}

		resp, err := response.Parse(raw)
		if err == nil {
			return resp
		}

		n.logger.Warn("Failed to parse model output, retrying",
			"error", err,
			"attempt", attempt+1,
			"temperature", temperature)
		temperature *= temperatureDecay
	}

	n.logger.Warn("All parse attempts exhausted, using fallback narration",
		"attempts", n.maxRetries+1)
	return response.Fallback(playerInput)
}
