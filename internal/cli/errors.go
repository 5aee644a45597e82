package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrTokenMissing indicates RECKING_API_TOKEN is not set.
	ErrTokenMissing = errors.New("RECKING_API_TOKEN environment variable not set")

	// ErrOpenAIKeyMissing indicates OPENAI_API_KEY is not set (whisper provider).
	ErrOpenAIKeyMissing = errors.New("OPENAI_API_KEY environment variable not set")

	// ErrFileNotFound indicates the specified audio file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedFormat indicates an audio file has an unsupported extension.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrProbesFailed indicates one or more doctor probes failed.
	ErrProbesFailed = errors.New("diagnostics failed")
)
