package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/recordingking/rkdiag/internal/apierr"
	"github.com/recordingking/rkdiag/internal/cli"
	"github.com/recordingking/rkdiag/internal/clipboard"
	"github.com/recordingking/rkdiag/internal/inject"
	"github.com/recordingking/rkdiag/internal/synth"
	"github.com/recordingking/rkdiag/internal/transcribe"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"generic", errors.New("boom"), ExitGeneral},
		{"interrupt", context.Canceled, 130},
		{"wrapped interrupt", fmt.Errorf("poll: %w", context.Canceled), 130},
		{"unknown flag", errors.New("unknown flag: --fast"), ExitUsage},
		{"unknown command", errors.New(`unknown command "clipbord" for "rkdiag"`), ExitUsage},
		{"too many args", errors.New("accepts at most 1 arg(s), received 2"), ExitUsage},
		{"osascript missing", inject.ErrOsascriptNotFound, ExitSetup},
		{"say missing", synth.ErrSayNotFound, ExitSetup},
		{"clipboard unavailable", clipboard.ErrUnavailable, ExitSetup},
		{"token missing", cli.ErrTokenMissing, ExitSetup},
		{"openai key missing", cli.ErrOpenAIKeyMissing, ExitSetup},
		{"invalid combo", inject.ErrInvalidCombo, ExitValidation},
		{"file not found", cli.ErrFileNotFound, ExitValidation},
		{"unsupported format", cli.ErrUnsupportedFormat, ExitValidation},
		{"invalid provider", transcribe.ErrInvalidProvider, ExitValidation},
		{"submission rejected", apierr.ErrSubmission, ExitAPI},
		{"remote failure", apierr.ErrRemoteFailure, ExitAPI},
		{"auth failed", apierr.ErrAuthFailed, ExitAPI},
		{"rate limited", apierr.ErrRateLimit, ExitAPI},
		{"quota exceeded", apierr.ErrQuotaExceeded, ExitAPI},
		{"request timeout", apierr.ErrTimeout, ExitAPI},
		{"bad request", apierr.ErrBadRequest, ExitAPI},
		{"dispatch failed", inject.ErrDispatchFailed, ExitAPI},
		{"clipboard mismatch", clipboard.ErrMismatch, ExitAPI},
		{"probes failed", fmt.Errorf("3 of 4 probes failed: %w", cli.ErrProbesFailed), ExitAPI},
		{"poll timeout", apierr.ErrPollTimeout, ExitTimeout},
		{"wrapped poll timeout", fmt.Errorf("no transcript after 30 attempts: %w", apierr.ErrPollTimeout), ExitTimeout},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsCobraUsageError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unknown flag", errors.New("unknown flag: --verbose"), true},
		{"shorthand", errors.New("unknown shorthand flag: 'x' in -x"), true},
		{"flag needs argument", errors.New("flag needs an argument: --say"), true},
		{"invalid argument", errors.New(`invalid argument "abc" for "--max-attempts" flag`), true},
		{"domain error", apierr.ErrSubmission, false},
		{"plain error", errors.New("something else"), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isCobraUsageError(tt.err); got != tt.want {
				t.Errorf("isCobraUsageError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
