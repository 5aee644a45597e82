package inject

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidCombo indicates a keystroke combination string could not be parsed.
var ErrInvalidCombo = errors.New("invalid key combination")

// modifierNames maps accepted modifier spellings to AppleScript
// System Events modifier keywords.
var modifierNames = map[string]string{
	"cmd":     "command",
	"command": "command",
	"ctrl":    "control",
	"control": "control",
	"opt":     "option",
	"option":  "option",
	"alt":     "option",
	"shift":   "shift",
}

// modifierOrder fixes the emission order so the same combo always
// produces the same script, whatever order the user typed.
var modifierOrder = []string{"command", "control", "option", "shift"}

// Combo is a validated keystroke combination such as cmd+v.
// The zero value is invalid; use ParseCombo.
type Combo struct {
	key       string
	modifiers map[string]bool
}

// Compile-time interface compliance check.
var _ fmt.Stringer = Combo{}

// ParseCombo parses a combination like "cmd+v" or "shift+cmd+a".
// The last segment must be a single character; earlier segments must be
// modifiers. Matching is case-insensitive.
func ParseCombo(s string) (Combo, error) {
	if strings.TrimSpace(s) == "" {
		return Combo{}, fmt.Errorf("combination cannot be empty: %w", ErrInvalidCombo)
	}

	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	keyPart := strings.TrimSpace(parts[len(parts)-1])
	if utf8.RuneCountInString(keyPart) != 1 {
		return Combo{}, fmt.Errorf("key %q must be a single character: %w", keyPart, ErrInvalidCombo)
	}

	mods := make(map[string]bool)
	for _, part := range parts[:len(parts)-1] {
		name, ok := modifierNames[strings.TrimSpace(part)]
		if !ok {
			return Combo{}, fmt.Errorf("unknown modifier %q (use cmd, ctrl, opt, shift): %w",
				part, ErrInvalidCombo)
		}
		mods[name] = true
	}

	return Combo{key: keyPart, modifiers: mods}, nil
}

// MustParseCombo parses a combination, panicking if invalid.
// Use only for compile-time constants and tests.
func MustParseCombo(s string) Combo {
	c, err := ParseCombo(s)
	if err != nil {
		panic(err)
	}
	return c
}

// IsZero returns true if this is the zero value (no key set).
func (c Combo) IsZero() bool {
	return c.key == ""
}

// String returns the canonical spelling, e.g. "cmd+shift+a".
func (c Combo) String() string {
	if c.IsZero() {
		return ""
	}
	var parts []string
	for _, mod := range modifierOrder {
		if c.modifiers[mod] {
			switch mod {
			case "command":
				parts = append(parts, "cmd")
			case "control":
				parts = append(parts, "ctrl")
			case "option":
				parts = append(parts, "opt")
			default:
				parts = append(parts, mod)
			}
		}
	}
	return strings.Join(append(parts, c.key), "+")
}

// Script returns the AppleScript System Events statement that dispatches
// this combination.
func (c Combo) Script() string {
	var mods []string
	for _, mod := range modifierOrder {
		if c.modifiers[mod] {
			mods = append(mods, mod+" down")
		}
	}

	stmt := fmt.Sprintf("keystroke %q", c.key)
	if len(mods) > 0 {
		stmt += " using {" + strings.Join(mods, ", ") + "}"
	}
	return fmt.Sprintf("tell application \"System Events\" to %s", stmt)
}
