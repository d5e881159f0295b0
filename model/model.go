package model

import (
	"context"
	"sync"
)

// Info contains metadata about a provider implementation.
type Info struct {
	Name   string `json:"name"`
	Model  string `json:"model"`
	Vendor string `json:"vendor"` // "openai", "anthropic", "mock"
}

// Provider is the minimal capability the orchestrator drives: one prompt in,
// one block of text out. Errors should be *ProviderError values so the
// quota/generic distinction survives.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)

	// Info returns information about the provider implementation.
	Info() Info
}

// Step is one scripted outcome of a MockProvider call.
type Step struct {
	Text string
	Err  error
}

// MockProvider is a lightweight in-memory Provider useful for tests and
// examples. Scripted steps are consumed in order; the last one repeats.
type MockProvider struct {
	info Info

	mu      sync.Mutex
	steps   []Step
	prompts []string
}

// NewMockProvider constructs an empty MockProvider.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{info: Info{Name: name, Model: name + "-mock", Vendor: "mock"}}
}

// AddResponse appends a successful step.
func (m *MockProvider) AddResponse(text string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, Step{Text: text})
	return m
}

// AddError appends a failing step.
func (m *MockProvider) AddError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, Step{Err: err})
	return m
}

// Generate implements Provider.
func (m *MockProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := len(m.prompts)
	m.prompts = append(m.prompts, prompt)
	if len(m.steps) == 0 {
		return "", &ProviderError{Provider: m.info.Name, Kind: KindGeneric, Err: ErrEmptyResponse}
	}
	if idx >= len(m.steps) {
		idx = len(m.steps) - 1
	}
	step := m.steps[idx]
	return step.Text, step.Err
}

// Calls returns how many times Generate was invoked.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns a copy of every prompt received.
func (m *MockProvider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Info implements Provider.
func (m *MockProvider) Info() Info { return m.info }
