// Package transcription defines the speech-recognition provider interface,
// the normalized result types, and upload admission checks.
package transcription

import "context"

// Provider is the interface that speech-recognition backends must implement.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// IsAvailable checks if the backend is reachable.
	IsAvailable(ctx context.Context) bool

	// Transcribe runs the engine on the media file at path in the given task
	// mode. A missing or unreadable file is a fatal error; the engine is
	// invoked exactly once, with no retry.
	Transcribe(ctx context.Context, path string, task Task) (*Result, error)
}
