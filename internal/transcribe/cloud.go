package transcribe

import (
	"context"
	"fmt"

	"github.com/recordingking/rkdiag/internal/apierr"
	"github.com/recordingking/rkdiag/internal/poller"
)

// jobAPI is the slice of the cloud client the transcriber needs.
// *recapi.Client implements it.
type jobAPI interface {
	Submit(ctx context.Context, path string) (poller.Job, error)
	TaskProgress(ctx context.Context, taskID string) (poller.Update, error)
}

// AttemptFunc observes one poll attempt. err is nil when the query
// succeeded; update is the zero value when it did not.
type AttemptFunc func(attempt int, update poller.Update, err error)

// CloudTranscriber runs the asynchronous cloud workflow: upload the
// audio, enqueue a conversion task, then poll on a fixed interval until
// the transcript arrives or the attempt budget runs out.
type CloudTranscriber struct {
	api       jobAPI
	cfg       poller.Config
	onAttempt AttemptFunc
}

// CloudOption configures a CloudTranscriber.
type CloudOption func(*CloudTranscriber)

// WithOnAttempt registers a per-attempt observer, used by the CLI to
// print progress while polling.
func WithOnAttempt(fn AttemptFunc) CloudOption {
	return func(t *CloudTranscriber) { t.onAttempt = fn }
}

// NewCloudTranscriber creates a CloudTranscriber polling with cfg.
func NewCloudTranscriber(api jobAPI, cfg poller.Config, opts ...CloudOption) *CloudTranscriber {
	t := &CloudTranscriber{api: api, cfg: cfg}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var _ Transcriber = (*CloudTranscriber)(nil)

// Transcribe submits the audio file and polls for its transcript.
// Terminal outcomes map to sentinel errors: an explicit service-side
// failure wraps apierr.ErrRemoteFailure, an exhausted attempt budget
// wraps apierr.ErrPollTimeout.
func (t *CloudTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	job, err := t.api.Submit(ctx, audioPath)
	if err != nil {
		return "", err
	}

	attempt := 0
	query := func(ctx context.Context, jobID string) (poller.Update, error) {
		attempt++
		update, err := t.api.TaskProgress(ctx, jobID)
		if t.onAttempt != nil {
			t.onAttempt(attempt, update, err)
		}
		return update, err
	}

	outcome, err := poller.Poll(ctx, job, t.cfg, query)
	if err != nil {
		return "", err
	}

	switch outcome.State {
	case poller.StateSuccess:
		return outcome.Result, nil
	case poller.StateFailed:
		return "", fmt.Errorf("task %s: %s: %w", job.ID, outcome.Detail, apierr.ErrRemoteFailure)
	default:
		if outcome.LastErr != nil {
			return "", fmt.Errorf("task %s after %d attempts (last error: %v): %w",
				job.ID, outcome.Attempts, outcome.LastErr, apierr.ErrPollTimeout)
		}
		return "", fmt.Errorf("task %s after %d attempts: %w",
			job.ID, outcome.Attempts, apierr.ErrPollTimeout)
	}
}
