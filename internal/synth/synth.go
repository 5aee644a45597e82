// Package synth generates short probe audio files with the macOS `say`
// text-to-speech command. The API smoke test needs a real audio file to
// upload; synthesizing one on the fly keeps the diagnostic self-contained.
package synth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// sayBin is the macOS text-to-speech command.
const sayBin = "say"

// dataFormat matches what the speech service accepts for WAV probes.
const dataFormat = "LEF32@22050"

// defaultSynthTimeout bounds one say invocation.
const defaultSynthTimeout = 30 * time.Second

// ErrSayNotFound indicates the say command is not on PATH (not macOS).
var ErrSayNotFound = errors.New("say not found")

// runFn executes a binary with args and returns its stderr output.
type runFn func(ctx context.Context, bin string, args []string) (string, error)

// lookPathFn locates a binary on PATH.
type lookPathFn func(file string) (string, error)

// Synthesizer renders text to an audio file.
type Synthesizer struct {
	run      runFn
	lookPath lookPathFn
	timeout  time.Duration
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithRunner sets a custom command runner (for testing).
func WithRunner(fn runFn) Option {
	return func(s *Synthesizer) { s.run = fn }
}

// WithLookPath sets a custom PATH lookup (for testing).
func WithLookPath(fn lookPathFn) Option {
	return func(s *Synthesizer) { s.lookPath = fn }
}

// New creates a Synthesizer with the given options.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		run:      defaultRun,
		lookPath: exec.LookPath,
		timeout:  defaultSynthTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Available reports whether say is present without rendering anything.
func (s *Synthesizer) Available() error {
	if _, err := s.lookPath(sayBin); err != nil {
		return fmt.Errorf("%v: %w", err, ErrSayNotFound)
	}
	return nil
}

// Synthesize renders text as a WAV file at outPath.
func (s *Synthesizer) Synthesize(ctx context.Context, text, outPath string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to synthesize: empty text")
	}
	if err := s.Available(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := []string{"-o", outPath, "--data-format=" + dataFormat, text}
	output, err := s.run(ctx, sayBin, args)
	if err != nil {
		msg := strings.TrimSpace(output)
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("say: %s", msg)
	}
	return nil
}

// defaultRun is the production runner; say reports errors on stderr.
func defaultRun(ctx context.Context, bin string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stderr.String(), err
}
