// Package transcribe converts probe audio to text through one of the
// speech-to-text providers the diagnostics exercise: the Recording King
// cloud service (asynchronous upload/enqueue/poll workflow) or OpenAI
// Whisper (synchronous).
package transcribe

import (
	"context"
	"errors"
	"fmt"
)

// Transcriber converts an audio file to text.
type Transcriber interface {
	// Transcribe converts the audio file at audioPath to text.
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Provider names.
const (
	ProviderCloud   = "cloud"
	ProviderWhisper = "whisper"
)

// ErrInvalidProvider indicates an invalid provider name was specified.
var ErrInvalidProvider = errors.New("invalid provider")

// validProviders contains the set of valid provider names.
var validProviders = map[string]bool{
	ProviderCloud:   true,
	ProviderWhisper: true,
}

// Provider represents a validated speech-to-text provider.
// Zero value is invalid; use ParseProvider or the pre-parsed constants.
type Provider struct {
	name string
}

// Compile-time interface compliance check.
var _ fmt.Stringer = Provider{}

// Pre-parsed provider constants.
var (
	CloudProvider   = Provider{name: ProviderCloud}
	WhisperProvider = Provider{name: ProviderWhisper}
)

// ParseProvider validates and parses a provider name string.
// Returns ErrInvalidProvider if the name is not recognized.
func ParseProvider(s string) (Provider, error) {
	if s == "" {
		return Provider{}, fmt.Errorf("provider cannot be empty: %w", ErrInvalidProvider)
	}
	if !validProviders[s] {
		return Provider{}, fmt.Errorf("unknown provider %q (use 'cloud' or 'whisper'): %w", s, ErrInvalidProvider)
	}
	return Provider{name: s}, nil
}

// MustParseProvider parses a provider name, panicking if invalid.
// Use only for compile-time constants and tests.
func MustParseProvider(s string) Provider {
	p, err := ParseProvider(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the provider name string.
func (p Provider) String() string {
	return p.name
}

// IsZero returns true if this is the zero value (no provider set).
func (p Provider) IsZero() bool {
	return p.name == ""
}

// IsCloud returns true if this provider is the Recording King cloud service.
func (p Provider) IsCloud() bool {
	return p.name == ProviderCloud
}

// OrDefault returns the provider, or CloudProvider if zero.
func (p Provider) OrDefault() Provider {
	if p.IsZero() {
		return CloudProvider
	}
	return p
}
