// Package model defines the provider-agnostic abstraction used by the
// consulting engine to talk to language models.
//
// A Provider turns one prompt into one block of text. Adapters for concrete
// vendors live in the openai and anthropic subpackages; they report failures
// as *ProviderError so the orchestrator can tell quota exhaustion apart from
// every other failure without knowing anything about the vendor.
//
// MockProvider is a scripted Provider for tests and examples.
package model
