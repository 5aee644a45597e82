package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/recordingking/rkdiag/internal/apierr"
	"github.com/recordingking/rkdiag/internal/cli"
	"github.com/recordingking/rkdiag/internal/clipboard"
	"github.com/recordingking/rkdiag/internal/inject"
	"github.com/recordingking/rkdiag/internal/interrupt"
	"github.com/recordingking/rkdiag/internal/synth"
	"github.com/recordingking/rkdiag/internal/transcribe"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitAPI        = 5
	ExitTimeout    = 6
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// First Ctrl+C cancels the running diagnostic; a second aborts.
	notifier, ctx := interrupt.Notify(context.Background())
	defer notifier.Stop()

	// Create the CLI environment with production defaults.
	env := cli.DefaultEnv()

	// Root command.
	rootCmd := &cobra.Command{
		Use:     "rkdiag",
		Short:   "Diagnostics for Recording King's dictation pipeline",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Subcommands.
	rootCmd.AddCommand(cli.ClipboardCmd(env))
	rootCmd.AddCommand(cli.InjectCmd(env))
	rootCmd.AddCommand(cli.APICmd(env))
	rootCmd.AddCommand(cli.DoctorCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Interrupt (Ctrl+C during a poll run or countdown).
	if errors.Is(err, context.Canceled) {
		return interrupt.ExitCode
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors.
	// Cobra doesn't expose typed errors, so we check for known error
	// message patterns. These are stable across Cobra versions.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors (ExitSetup = 3): missing binaries, credentials,
	// or platform capabilities.
	if errors.Is(err, inject.ErrOsascriptNotFound) || errors.Is(err, synth.ErrSayNotFound) ||
		errors.Is(err, clipboard.ErrUnavailable) || errors.Is(err, cli.ErrTokenMissing) ||
		errors.Is(err, cli.ErrOpenAIKeyMissing) {
		return ExitSetup
	}

	// Validation errors (ExitValidation = 4).
	if errors.Is(err, inject.ErrInvalidCombo) || errors.Is(err, cli.ErrFileNotFound) ||
		errors.Is(err, cli.ErrUnsupportedFormat) || errors.Is(err, transcribe.ErrInvalidProvider) {
		return ExitValidation
	}

	// API and probe failures (ExitAPI = 5).
	if errors.Is(err, apierr.ErrSubmission) || errors.Is(err, apierr.ErrRemoteFailure) ||
		errors.Is(err, apierr.ErrAuthFailed) || errors.Is(err, apierr.ErrRateLimit) ||
		errors.Is(err, apierr.ErrQuotaExceeded) || errors.Is(err, apierr.ErrTimeout) ||
		errors.Is(err, apierr.ErrBadRequest) || errors.Is(err, inject.ErrDispatchFailed) ||
		errors.Is(err, clipboard.ErrMismatch) || errors.Is(err, cli.ErrProbesFailed) {
		return ExitAPI
	}

	// Poll budget exhausted (ExitTimeout = 6): the service may just be slow.
	if errors.Is(err, apierr.ErrPollTimeout) {
		return ExitTimeout
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate
// Cobra usage errors.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments
	"unknown command",           // Subcommand doesn't exist
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
