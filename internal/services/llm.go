package services

import "context"

// LLMService defines the interface for the text-generation collaborator.
// The core never depends on how the call is transported.
type LLMService interface {
	// InitModel prepares the model on startup, pulling it if necessary.
	InitModel(ctx context.Context, modelName string) error

	// Generate produces raw text for a system/user prompt pair at the
	// given sampling temperature.
	Generate(ctx context.Context, system, prompt string, temperature float64) (string, error)

	// IsModelReady checks if the specified model is ready for use.
	IsModelReady(ctx context.Context, modelName string) (bool, error)
}
