package cli_test

import (
	"context"
	"sync"
	"time"

	"github.com/recordingking/rkdiag/internal/cli"
	"github.com/recordingking/rkdiag/internal/config"
	"github.com/recordingking/rkdiag/internal/inject"
	"github.com/recordingking/rkdiag/internal/transcribe"
)

// mockConfigLoader returns a fixed Config without touching the filesystem.
type mockConfigLoader struct {
	cfg config.Config
	err error
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	if m.err != nil {
		return config.Config{}, m.err
	}
	if m.cfg == (config.Config{}) {
		return config.Config{
			APIBase:      "https://ly.gl173.com",
			PollInterval: 2 * time.Second,
			MaxAttempts:  30,
		}, nil
	}
	return m.cfg, nil
}

// fakeClipboard is an in-memory clipboard with injectable failures.
type fakeClipboard struct {
	mu       sync.Mutex
	content  string
	writeErr error
	readErr  error
	mangle   bool
	writes   []string
}

func (f *fakeClipboard) Write(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.content = text
	f.writes = append(f.writes, text)
	return nil
}

func (f *fakeClipboard) Read() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return "", f.readErr
	}
	if f.mangle {
		return f.content + " (mangled)", nil
	}
	return f.content, nil
}

func (f *fakeClipboard) Writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

// mockKeystroker records dispatched combos.
type mockKeystroker struct {
	mu           sync.Mutex
	availableErr error
	sendErr      error
	sent         []inject.Combo
}

func (m *mockKeystroker) Available() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.availableErr
}

func (m *mockKeystroker) SendKeystroke(ctx context.Context, combo inject.Combo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, combo)
	return nil
}

func (m *mockKeystroker) Sent() []inject.Combo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]inject.Combo(nil), m.sent...)
}

// mockSynthesizer records synthesis requests.
type mockSynthesizer struct {
	mu           sync.Mutex
	availableErr error
	synthErr     error
	texts        []string
	paths        []string
}

func (m *mockSynthesizer) Available() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.availableErr
}

func (m *mockSynthesizer) Synthesize(ctx context.Context, text, outPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.synthErr != nil {
		return m.synthErr
	}
	m.texts = append(m.texts, text)
	m.paths = append(m.paths, outPath)
	return nil
}

func (m *mockSynthesizer) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// mockPinger reports service reachability.
type mockPinger struct {
	mu    sync.Mutex
	err   error
	bases []string
}

func (m *mockPinger) Ping(ctx context.Context, baseURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bases = append(m.bases, baseURL)
	return m.err
}

// mockTranscriberFactory returns canned transcribers and records the
// options it was built with.
type mockTranscriberFactory struct {
	mu         sync.Mutex
	transcript string
	err        error
	cloudOpts  []cli.CloudOptions
	apiKeys    []string
}

func (m *mockTranscriberFactory) NewCloud(opts cli.CloudOptions) transcribe.Transcriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cloudOpts = append(m.cloudOpts, opts)
	return &mockTranscriber{text: m.transcript, err: m.err}
}

func (m *mockTranscriberFactory) NewWhisper(apiKey string) transcribe.Transcriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiKeys = append(m.apiKeys, apiKey)
	return &mockTranscriber{text: m.transcript, err: m.err}
}

func (m *mockTranscriberFactory) CloudOpts() []cli.CloudOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]cli.CloudOptions(nil), m.cloudOpts...)
}

func (m *mockTranscriberFactory) APIKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.apiKeys...)
}

// mockTranscriber returns a fixed transcript or error.
type mockTranscriber struct {
	mu    sync.Mutex
	text  string
	err   error
	paths []string
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, audioPath)
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}
