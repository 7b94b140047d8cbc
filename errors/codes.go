package errors

// ErrorCode is a machine-readable identifier for an error class.
type ErrorCode string

const (
	// ErrCodeUnauthorized marks a rejected credential check.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeUnsupportedMedia marks an upload with a disallowed extension or media type.
	ErrCodeUnsupportedMedia ErrorCode = "UNSUPPORTED_MEDIA"
	// ErrCodeInvalidInput marks malformed request input.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeStagingFailed marks an I/O failure writing the upload to staging.
	ErrCodeStagingFailed ErrorCode = "STAGING_FAILED"
	// ErrCodeTranscriptionFailed marks a fatal speech-engine failure.
	ErrCodeTranscriptionFailed ErrorCode = "TRANSCRIPTION_FAILED"
	// ErrCodeNotFound marks a missing staged file.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInternal marks an unexpected server error.
	ErrCodeInternal ErrorCode = "INTERNAL"
)
