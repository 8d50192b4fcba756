package services

import (
	"context"
	"sync"
)

// Ensure MockLLM implements LLMService interface
var _ LLMService = (*MockLLM)(nil)

// MockLLM is a mock implementation of LLMService for testing
type MockLLM struct {
	InitModelFunc    func(ctx context.Context, modelName string) error
	GenerateFunc     func(ctx context.Context, system, prompt string, temperature float64) (string, error)
	IsModelReadyFunc func(ctx context.Context, modelName string) (bool, error)

	// Track calls for testing
	InitModelCalls    []string
	GenerateCalls     []GenerateCall
	IsModelReadyCalls []string

	mu sync.Mutex // protects all fields above
}

type GenerateCall struct {
	System      string
	Prompt      string
	Temperature float64
}

// NewMockLLM creates a new mock LLM service
func NewMockLLM() *MockLLM {
	return &MockLLM{
		InitModelCalls:    make([]string, 0),
		GenerateCalls:     make([]GenerateCall, 0),
		IsModelReadyCalls: make([]string, 0),
	}
}

// InitModel mocks model initialization
func (m *MockLLM) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)

	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}

	// Default behavior - success
	return nil
}

// Generate mocks text generation
func (m *MockLLM) Generate(ctx context.Context, system, prompt string, temperature float64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateCalls = append(m.GenerateCalls, GenerateCall{
		System:      system,
		Prompt:      prompt,
		Temperature: temperature,
	})

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, system, prompt, temperature)
	}

	// Default behavior - minimal valid DM response
	return `{"narration": "Mock narration.", "effects": {}}`, nil
}

// IsModelReady mocks model readiness check
func (m *MockLLM) IsModelReady(ctx context.Context, modelName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IsModelReadyCalls = append(m.IsModelReadyCalls, modelName)

	if m.IsModelReadyFunc != nil {
		return m.IsModelReadyFunc(ctx, modelName)
	}

	// Default behavior - model is ready
	return true, nil
}

// Reset clears all call tracking
func (m *MockLLM) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.GenerateCalls = make([]GenerateCall, 0)
	m.IsModelReadyCalls = make([]string, 0)
}

// SetGenerateError sets up the mock to return an error on Generate
func (m *MockLLM) SetGenerateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, system, prompt string, temperature float64) (string, error) {
		return "", err
	}
}

// SetGenerateResponse sets up the mock to always return the given raw text
func (m *MockLLM) SetGenerateResponse(raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, system, prompt string, temperature float64) (string, error) {
		return raw, nil
	}
}

// GetGenerateCalls returns a copy of the Generate call log in a thread-safe way
func (m *MockLLM) GetGenerateCalls() []GenerateCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]GenerateCall, len(m.GenerateCalls))
	copy(calls, m.GenerateCalls)
	return calls
}
