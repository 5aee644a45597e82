// Package inject dispatches synthetic keystrokes through the macOS
// automation surface (osascript + System Events). It exists to verify
// that Recording King's paste-based text injection path works: if
// cmd+v cannot be sent from here, dictated text will never land in the
// target application either.
package inject

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// osascriptBin is the macOS AppleScript runner.
const osascriptBin = "osascript"

// defaultDispatchTimeout bounds one osascript invocation. Dispatch
// normally returns in well under a second; a hang means the automation
// permission dialog is blocking.
const defaultDispatchTimeout = 5 * time.Second

// Sentinel errors for keystroke dispatch.
var (
	// ErrOsascriptNotFound indicates osascript is not on PATH (not macOS).
	ErrOsascriptNotFound = errors.New("osascript not found")

	// ErrDispatchFailed indicates osascript ran but refused the keystroke,
	// usually missing Accessibility permission for the terminal.
	ErrDispatchFailed = errors.New("keystroke dispatch failed")
)

// runFn executes a binary with args and returns its combined stderr output.
type runFn func(ctx context.Context, bin string, args []string) (string, error)

// lookPathFn locates a binary on PATH.
type lookPathFn func(file string) (string, error)

// Injector sends keystroke combinations via osascript.
type Injector struct {
	run      runFn
	lookPath lookPathFn
	timeout  time.Duration
}

// InjectorOption configures an Injector.
type InjectorOption func(*Injector)

// WithRunner sets a custom command runner (for testing).
func WithRunner(fn runFn) InjectorOption {
	return func(i *Injector) { i.run = fn }
}

// WithLookPath sets a custom PATH lookup (for testing).
func WithLookPath(fn lookPathFn) InjectorOption {
	return func(i *Injector) { i.lookPath = fn }
}

// WithDispatchTimeout sets the per-dispatch timeout.
func WithDispatchTimeout(d time.Duration) InjectorOption {
	return func(i *Injector) {
		if d > 0 {
			i.timeout = d
		}
	}
}

// NewInjector creates an Injector with the given options.
func NewInjector(opts ...InjectorOption) *Injector {
	i := &Injector{
		run:      defaultRun,
		lookPath: exec.LookPath,
		timeout:  defaultDispatchTimeout,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Available reports whether the automation surface is present, without
// dispatching anything. Safe for the doctor probe.
func (i *Injector) Available() error {
	if _, err := i.lookPath(osascriptBin); err != nil {
		return fmt.Errorf("%v: %w", err, ErrOsascriptNotFound)
	}
	return nil
}

// SendKeystroke dispatches the combination to the frontmost application.
func (i *Injector) SendKeystroke(ctx context.Context, combo Combo) error {
	if combo.IsZero() {
		return fmt.Errorf("empty combination: %w", ErrInvalidCombo)
	}
	if err := i.Available(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	output, err := i.run(ctx, osascriptBin, []string{"-e", combo.Script()})
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("osascript timed out (automation permission dialog?): %w", ErrDispatchFailed)
		}
		msg := strings.TrimSpace(output)
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("%s: %w", msg, ErrDispatchFailed)
	}
	return nil
}

// defaultRun is the production runner. osascript writes its error
// messages to stderr, so stderr is captured and returned either way.
func defaultRun(ctx context.Context, bin string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stderr.String(), err
}
