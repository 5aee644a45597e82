package cli

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/recordingking/rkdiag/internal/clipboard"
	"github.com/recordingking/rkdiag/internal/config"
	"github.com/recordingking/rkdiag/internal/inject"
	"github.com/recordingking/rkdiag/internal/poller"
	"github.com/recordingking/rkdiag/internal/recapi"
	"github.com/recordingking/rkdiag/internal/synth"
	"github.com/recordingking/rkdiag/internal/transcribe"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing commands in isolation.
//
// All fields have production defaults via DefaultEnv(). Tests override
// specific fields with the With* options or a custom Env.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Now    func() time.Time
	Sleep  func(ctx context.Context, d time.Duration) error

	// Capabilities and factories
	ConfigLoader ConfigLoader
	Clipboard    clipboard.Clipboard
	Keystroker   Keystroker
	Synth        Synthesizer
	Pinger       Pinger
	Transcribers TranscriberFactory
}

// ConfigLoader loads persistent configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// Keystroker dispatches synthetic keystrokes.
type Keystroker interface {
	Available() error
	SendKeystroke(ctx context.Context, combo inject.Combo) error
}

// Synthesizer renders probe audio from text.
type Synthesizer interface {
	Available() error
	Synthesize(ctx context.Context, text, outPath string) error
}

// Pinger checks that the speech service is reachable at all.
type Pinger interface {
	Ping(ctx context.Context, baseURL string) error
}

// CloudOptions parameterizes the asynchronous cloud transcriber.
type CloudOptions struct {
	BaseURL   string
	Token     string
	Poll      poller.Config
	OnAttempt transcribe.AttemptFunc
}

// TranscriberFactory creates transcribers for the API smoke test.
type TranscriberFactory interface {
	NewCloud(opts CloudOptions) transcribe.Transcriber
	NewWhisper(apiKey string) transcribe.Transcriber
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) { e.Stdout = w }
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) { e.Stderr = w }
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) { e.Getenv = fn }
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) { e.Now = fn }
}

// WithSleep sets the sleep function.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) EnvOption {
	return func(e *Env) { e.Sleep = fn }
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) { e.ConfigLoader = l }
}

// WithClipboard sets the clipboard capability.
func WithClipboard(c clipboard.Clipboard) EnvOption {
	return func(e *Env) { e.Clipboard = c }
}

// WithKeystroker sets the keystroke dispatcher.
func WithKeystroker(k Keystroker) EnvOption {
	return func(e *Env) { e.Keystroker = k }
}

// WithSynthesizer sets the audio synthesizer.
func WithSynthesizer(s Synthesizer) EnvOption {
	return func(e *Env) { e.Synth = s }
}

// WithPinger sets the service reachability prober.
func WithPinger(p Pinger) EnvOption {
	return func(e *Env) { e.Pinger = p }
}

// WithTranscriberFactory sets the transcriber factory.
func WithTranscriberFactory(f TranscriberFactory) EnvOption {
	return func(e *Env) { e.Transcribers = f }
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Getenv:       os.Getenv,
		Now:          time.Now,
		Sleep:        defaultSleep,
		ConfigLoader: &defaultConfigLoader{},
		Clipboard:    clipboard.System(),
		Keystroker:   inject.NewInjector(),
		Synth:        synth.New(),
		Pinger:       &defaultPinger{},
		Transcribers: &defaultTranscriberFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// defaultSleep blocks for d or until ctx is canceled.
func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultPinger checks reachability with a HEAD request. Any HTTP
// response counts as reachable; only transport failures are errors.
type defaultPinger struct{}

func (defaultPinger) Ping(ctx context.Context, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, baseURL, nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

// defaultTranscriberFactory builds production transcribers.
type defaultTranscriberFactory struct{}

func (defaultTranscriberFactory) NewCloud(opts CloudOptions) transcribe.Transcriber {
	client := recapi.NewClient(opts.BaseURL, opts.Token)
	return transcribe.NewCloudTranscriber(client, opts.Poll,
		transcribe.WithOnAttempt(opts.OnAttempt))
}

func (defaultTranscriberFactory) NewWhisper(apiKey string) transcribe.Transcriber {
	return transcribe.NewWhisperTranscriber(openai.NewClient(apiKey))
}

// Compile-time interface verification.
var (
	_ ConfigLoader       = (*defaultConfigLoader)(nil)
	_ Pinger             = (*defaultPinger)(nil)
	_ TranscriberFactory = (*defaultTranscriberFactory)(nil)
	_ Keystroker         = (*inject.Injector)(nil)
	_ Synthesizer        = (*synth.Synthesizer)(nil)
)
