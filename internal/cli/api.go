package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/recordingking/rkdiag/internal/config"
	"github.com/recordingking/rkdiag/internal/format"
	"github.com/recordingking/rkdiag/internal/poller"
	"github.com/recordingking/rkdiag/internal/transcribe"
)

// defaultProbeText is spoken into the probe audio when no file is given.
const defaultProbeText = "Hello, this is a test"

// supportedFormats lists audio formats the speech service accepts.
var supportedFormats = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".ogg":  true,
	".flac": true,
	".webm": true,
}

// supportedFormatsList returns a sorted, comma-separated list for error messages.
func supportedFormatsList() string {
	formats := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		formats = append(formats, strings.TrimPrefix(ext, "."))
	}
	slices.Sort(formats)
	return strings.Join(formats, ", ")
}

// APICmd creates the api command.
// The env parameter provides injectable dependencies for testing.
func APICmd(env *Env) *cobra.Command {
	var (
		say         string
		provider    string
		base        string
		interval    time.Duration
		maxAttempts int
	)

	cmd := &cobra.Command{
		Use:   "api [audio-file]",
		Short: "Smoke-test the speech-to-text API",
		Long: `Smoke-test the speech-to-text API end to end.

The cloud provider runs the full asynchronous workflow: upload the audio,
enqueue a conversion task, and poll its progress on a fixed interval until
the transcript arrives or the attempt budget runs out. The whisper provider
transcribes synchronously through OpenAI instead.

Without an audio file, a short probe is synthesized with the system
text-to-speech voice.

The cloud provider reads RECKING_API_TOKEN; whisper reads OPENAI_API_KEY.`,
		Example: `  rkdiag api
  rkdiag api recording.wav
  rkdiag api --say "testing one two three" --interval 2s --max-attempts 30
  rkdiag api recording.wav --provider whisper`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audioPath := ""
			if len(args) == 1 {
				audioPath = args[0]
			}
			return runAPI(cmd.Context(), env, apiParams{
				audioPath:   audioPath,
				say:         say,
				provider:    provider,
				base:        base,
				interval:    interval,
				maxAttempts: maxAttempts,
			})
		},
	}

	cmd.Flags().StringVar(&say, "say", "", "Synthesize this text as the probe audio (conflicts with a file argument)")
	cmd.Flags().StringVarP(&provider, "provider", "p", transcribe.ProviderCloud, "Speech provider: cloud, whisper")
	cmd.Flags().StringVar(&base, "base", "", "API base URL (default: config api-base)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Poll interval (default: config poll-interval)")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "Poll attempt budget (default: config poll-max-attempts)")

	return cmd
}

// apiParams carries the api command's flag values.
type apiParams struct {
	audioPath   string
	say         string
	provider    string
	base        string
	interval    time.Duration
	maxAttempts int
}

// runAPI executes the API smoke test.
// Validation order: provider -> file/say -> format -> credentials.
func runAPI(ctx context.Context, env *Env, p apiParams) error {
	prov, err := transcribe.ParseProvider(p.provider)
	if err != nil {
		return err
	}

	if p.audioPath != "" && p.say != "" {
		return fmt.Errorf("cannot combine an audio file with --say")
	}

	audioPath := p.audioPath
	if audioPath != "" {
		if _, err := os.Stat(audioPath); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", ErrFileNotFound, audioPath)
			}
			return fmt.Errorf("cannot access audio file: %w", err)
		}
		ext := strings.ToLower(filepath.Ext(audioPath))
		if !supportedFormats[ext] {
			return fmt.Errorf("unsupported format %q (supported: %s): %w",
				ext, supportedFormatsList(), ErrUnsupportedFormat)
		}
	} else {
		text := p.say
		if text == "" {
			text = defaultProbeText
		}
		tmpDir, err := os.MkdirTemp("", "rkdiag-probe-*")
		if err != nil {
			return fmt.Errorf("cannot create temp dir: %w", err)
		}
		defer func() { _ = os.RemoveAll(tmpDir) }()

		audioPath = filepath.Join(tmpDir, "probe.wav")
		fmt.Fprintf(env.Stderr, "Synthesizing probe audio: %q\n", text)
		if err := env.Synth.Synthesize(ctx, text, audioPath); err != nil {
			return err
		}
	}

	if info, err := os.Stat(audioPath); err == nil {
		fmt.Fprintf(env.Stderr, "Audio: %s (%s)\n", filepath.Base(audioPath), format.Size(info.Size()))
	}

	t, err := newTranscriber(env, prov, p)
	if err != nil {
		return err
	}

	start := env.Now()
	text, err := t.Transcribe(ctx, audioPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Done in %s\n", format.Duration(env.Now().Sub(start)))
	fmt.Fprintln(env.Stdout, text)
	return nil
}

// newTranscriber builds the transcriber for the chosen provider,
// resolving configuration and credentials. Flags win over config values.
func newTranscriber(env *Env, prov transcribe.Provider, p apiParams) (transcribe.Transcriber, error) {
	if !prov.IsCloud() {
		apiKey := env.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, ErrOpenAIKeyMissing
		}
		return env.Transcribers.NewWhisper(apiKey), nil
	}

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if p.base != "" {
		cfg.APIBase = p.base
	}
	if p.interval > 0 {
		cfg.PollInterval = p.interval
	}
	if p.maxAttempts > 0 {
		cfg.MaxAttempts = p.maxAttempts
	}

	token := env.Getenv(config.EnvAPIToken)
	if token == "" {
		return nil, ErrTokenMissing
	}

	opts := CloudOptions{
		BaseURL: cfg.APIBase,
		Token:   token,
		Poll: poller.Config{
			Interval:    cfg.PollInterval,
			MaxAttempts: cfg.MaxAttempts,
		},
		OnAttempt: pollProgressReporter(env),
	}
	return env.Transcribers.NewCloud(opts), nil
}

// pollProgressReporter prints one line per poll attempt.
func pollProgressReporter(env *Env) transcribe.AttemptFunc {
	return func(attempt int, update poller.Update, err error) {
		if err != nil {
			fmt.Fprintf(env.Stderr, "  attempt %d: %v\n", attempt, err)
			return
		}
		fmt.Fprintf(env.Stderr, "  attempt %d: %s (%.0f%%)\n",
			attempt, update.Status, update.Progress*100)
	}
}
