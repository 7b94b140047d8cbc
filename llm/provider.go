// Package llm defines the completion provider interface and common types for
// interacting with hosted language-model backends.
package llm

import "context"

// Provider is the interface that LLM backends must implement.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// IsAvailable checks if the backend is reachable.
	IsAvailable(ctx context.Context) bool

	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
