// Package clipboard wraps the system clipboard behind a small
// capability interface and provides the round-trip diagnostic used to
// verify that dictated text can actually reach the paste buffer.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"
)

// Sentinel errors for clipboard diagnostics.
var (
	// ErrUnavailable indicates no clipboard utility is usable on this system.
	ErrUnavailable = errors.New("clipboard unavailable")

	// ErrMismatch indicates the text read back differs from the text written.
	ErrMismatch = errors.New("clipboard content mismatch")
)

// Clipboard is the capability surface the diagnostics need.
type Clipboard interface {
	// Write replaces the clipboard content with text.
	Write(text string) error
	// Read returns the current clipboard content.
	Read() (string, error)
}

// System returns the real system clipboard.
func System() Clipboard {
	return systemClipboard{}
}

// systemClipboard delegates to the platform clipboard utilities
// (pbcopy/pbpaste on macOS, xclip/xsel on Linux).
type systemClipboard struct{}

var _ Clipboard = systemClipboard{}

func (systemClipboard) Write(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	return nil
}

func (systemClipboard) Read() (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnavailable
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("clipboard read: %w", err)
	}
	return text, nil
}

// SentinelText returns a unique marker for a round-trip check. The
// random suffix ensures stale clipboard content can never produce a
// false pass.
func SentinelText() string {
	return "rkdiag-probe-" + uuid.NewString()
}

// RoundTrip writes text to the clipboard, reads it back, and verifies
// the two match. An empty text selects a fresh sentinel. Returns the
// text that was written.
func RoundTrip(c Clipboard, text string) (string, error) {
	if text == "" {
		text = SentinelText()
	}

	if err := c.Write(text); err != nil {
		return text, err
	}

	got, err := c.Read()
	if err != nil {
		return text, err
	}
	if got != text {
		return text, fmt.Errorf("wrote %q, read %q: %w", text, got, ErrMismatch)
	}
	return text, nil
}
