package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/recordingking/rkdiag/internal/clipboard"
	"github.com/recordingking/rkdiag/internal/config"
)

// probe is one non-destructive diagnostic check.
type probe struct {
	name string
	run  func(ctx context.Context) error
}

// probeResult pairs a probe with its outcome.
type probeResult struct {
	name string
	err  error
}

// DoctorCmd creates the doctor command.
// The env parameter provides injectable dependencies for testing.
func DoctorCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run all non-destructive diagnostics",
		Long: `Run every diagnostic that is safe without user interaction:

  clipboard    write/read round trip with a unique marker
  keystrokes   automation surface present (no keys are sent)
  speech       text-to-speech synthesizer present
  api          speech service reachable and token configured

Probes run concurrently; the command exits non-zero if any fail.`,
		Example: `  rkdiag doctor`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context(), env)
		},
	}
}

// runDoctor executes all probes concurrently and reports per-probe results.
func runDoctor(ctx context.Context, env *Env) error {
	probes := []probe{
		{
			name: "clipboard",
			run: func(ctx context.Context) error {
				_, err := clipboard.RoundTrip(env.Clipboard, "")
				return err
			},
		},
		{
			name: "keystrokes",
			run: func(ctx context.Context) error {
				return env.Keystroker.Available()
			},
		},
		{
			name: "speech",
			run: func(ctx context.Context) error {
				return env.Synth.Available()
			},
		},
		{
			name: "api",
			run: func(ctx context.Context) error {
				cfg, err := env.ConfigLoader.Load()
				if err != nil {
					return err
				}
				if env.Getenv(config.EnvAPIToken) == "" {
					return ErrTokenMissing
				}
				return env.Pinger.Ping(ctx, cfg.APIBase)
			},
		},
	}

	// Probes are independent; run them all and keep every result.
	// The errgroup is used for lifecycle only, never for an early error.
	results := make([]probeResult, len(probes))
	g, ctx := errgroup.WithContext(ctx)

	for i, p := range probes {
		i, p := i, p
		g.Go(func() error {
			results[i] = probeResult{name: p.name, err: p.run(ctx)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(env.Stdout, "FAIL  %-12s %v\n", r.name, r.err)
			continue
		}
		fmt.Fprintf(env.Stdout, "ok    %s\n", r.name)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d probes failed: %w", failed, len(probes), ErrProbesFailed)
	}
	fmt.Fprintf(env.Stderr, "All %d probes passed\n", len(probes))
	return nil
}
