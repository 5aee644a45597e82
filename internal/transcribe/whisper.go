package transcribe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/recordingking/rkdiag/internal/apierr"
)

// whisperModel is the synchronous transcription model the original
// Recording King network path calls.
const whisperModel = "whisper-1"

// Default retry configuration for transient Whisper failures.
const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 10 * time.Second
)

// audioTranscriber is the slice of the OpenAI client this package uses.
// *openai.Client implements it implicitly; tests inject mocks.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// WhisperTranscriber transcribes audio synchronously via OpenAI.
// Transient errors (rate limits, timeouts, 5xx) are retried with
// exponential backoff; this retry policy is separate from the cloud
// poller's fixed-interval loop.
type WhisperTranscriber struct {
	client     audioTranscriber
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// WhisperOption configures a WhisperTranscriber.
type WhisperOption func(*WhisperTranscriber)

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) WhisperOption {
	return func(t *WhisperTranscriber) {
		if n >= 0 {
			t.maxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) WhisperOption {
	return func(t *WhisperTranscriber) {
		if base > 0 {
			t.baseDelay = base
		}
		if max > 0 {
			t.maxDelay = max
		}
	}
}

// NewWhisperTranscriber creates a WhisperTranscriber for the client.
func NewWhisperTranscriber(client *openai.Client, opts ...WhisperOption) *WhisperTranscriber {
	return newWhisper(client, opts...)
}

func newWhisper(client audioTranscriber, opts ...WhisperOption) *WhisperTranscriber {
	t := &WhisperTranscriber{
		client:     client,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var _ Transcriber = (*WhisperTranscriber)(nil)

// Transcribe transcribes the audio file, retrying transient failures.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	req := openai.AudioRequest{
		Model:    whisperModel,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatJSON,
	}

	return retryWithBackoff(ctx, t.maxRetries, t.baseDelay, t.maxDelay, func() (string, error) {
		resp, err := t.client.CreateTranscription(ctx, req)
		if err != nil {
			return "", classifyError(err)
		}
		return resp.Text, nil
	})
}

// retryWithBackoff executes fn with exponential backoff, retrying only
// errors isRetryableError accepts.
func retryWithBackoff(
	ctx context.Context,
	maxRetries int,
	baseDelay, maxDelay time.Duration,
	fn func() (string, error),
) (string, error) {
	var lastErr error
	delay := baseDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return "", ctx.Err()
			case <-timer.C:
			}
			delay = min(delay*2, maxDelay)
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !isRetryableError(lastErr) {
			return "", lastErr
		}
	}

	return "", fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, lastErr)
}

// classifyError maps OpenAI API errors to sentinel errors.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			// Quota exhaustion is a billing problem, not a transient limit.
			if strings.Contains(apiErr.Message, "quota") ||
				strings.Contains(apiErr.Message, "billing") {
				return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrQuotaExceeded)
			}
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrRateLimit)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrAuthFailed)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrTimeout)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	return err
}

// isRetryableError determines if an error is transient and should be retried.
func isRetryableError(err error) bool {
	if errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrTimeout) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}
