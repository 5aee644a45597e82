// Package apierr provides shared error sentinels for the HTTP-based
// speech-to-text clients. Provider-specific error types are classified
// into these sentinels at the adapter boundary.
//
// Adapters map HTTP status codes to these errors using
// fmt.Errorf("%s: %w", msg, sentinel). Callers check with
// errors.Is(err, apierr.ErrAuthFailed) etc., and main maps them to
// exit codes.
package apierr

import "errors"

// Sentinel errors for API interaction failures.
var (
	// ErrSubmission indicates the remote service rejected a work unit
	// or the transport failed while submitting it. No job exists when
	// this error is returned.
	ErrSubmission = errors.New("submission rejected")

	// ErrRemoteFailure indicates the service explicitly reported that a
	// job failed. The wrapped message carries the service's detail.
	ErrRemoteFailure = errors.New("remote job failed")

	// ErrPollTimeout indicates the poll attempt budget was exhausted
	// without the job reaching a terminal status.
	ErrPollTimeout = errors.New("poll attempts exhausted")

	// ErrRateLimit indicates the API rate limit was exceeded (temporary, retryable).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded indicates the API quota was exceeded (billing issue, not retryable).
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout indicates a single request timed out.
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed indicates API authentication failed (invalid or expired token).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest indicates a client error (4xx) that is not otherwise classified.
	ErrBadRequest = errors.New("bad request")
)
