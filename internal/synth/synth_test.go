package synth_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/recordingking/rkdiag/internal/synth"
)

type mockRunner struct {
	mu     sync.Mutex
	args   [][]string
	output string
	err    error
}

func (m *mockRunner) run(ctx context.Context, bin string, args []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.args = append(m.args, args)
	return m.output, m.err
}

func (m *mockRunner) LastArgs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.args) == 0 {
		return nil
	}
	return m.args[len(m.args)-1]
}

func foundLookPath(file string) (string, error) { return "/usr/bin/" + file, nil }

func TestSynthesize_BuildsSayInvocation(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{}
	s := synth.New(synth.WithRunner(runner.run), synth.WithLookPath(foundLookPath))

	err := s.Synthesize(context.Background(), "Hello, this is a test", "/tmp/probe.wav")
	if err != nil {
		t.Fatalf("Synthesize() unexpected error: %v", err)
	}

	want := []string{"-o", "/tmp/probe.wav", "--data-format=LEF32@22050", "Hello, this is a test"}
	if got := runner.LastArgs(); !slices.Equal(got, want) {
		t.Errorf("say args = %v, want %v", got, want)
	}
}

func TestSynthesize_EmptyText(t *testing.T) {
	t.Parallel()

	s := synth.New(synth.WithRunner((&mockRunner{}).run), synth.WithLookPath(foundLookPath))
	if err := s.Synthesize(context.Background(), "   ", "/tmp/probe.wav"); err == nil {
		t.Error("Synthesize() with blank text expected error, got nil")
	}
}

func TestSynthesize_SayMissing(t *testing.T) {
	t.Parallel()

	s := synth.New(
		synth.WithRunner((&mockRunner{}).run),
		synth.WithLookPath(func(string) (string, error) { return "", errors.New("not found") }),
	)

	err := s.Synthesize(context.Background(), "probe", "/tmp/probe.wav")
	if !errors.Is(err, synth.ErrSayNotFound) {
		t.Errorf("Synthesize() error = %v, want wrapping %v", err, synth.ErrSayNotFound)
	}
}

func TestSynthesize_RunnerFailure(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{output: "Opening output file failed", err: errors.New("exit status 1")}
	s := synth.New(synth.WithRunner(runner.run), synth.WithLookPath(foundLookPath))

	err := s.Synthesize(context.Background(), "probe", "/nope/probe.wav")
	if err == nil {
		t.Fatal("Synthesize() expected error, got nil")
	}
}
