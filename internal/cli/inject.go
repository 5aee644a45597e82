package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/recordingking/rkdiag/internal/inject"
)

// defaultInjectDelay gives the user time to focus the target
// application before the keystroke fires.
const defaultInjectDelay = 5 * time.Second

// InjectCmd creates the inject command.
// The env parameter provides injectable dependencies for testing.
func InjectCmd(env *Env) *cobra.Command {
	var (
		combo string
		delay time.Duration
		text  string
	)

	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Send a synthetic keystroke",
		Long: `Send a synthetic keystroke to the frontmost application.

A countdown runs first so you can switch focus to the target (an editor,
a browser address bar). With --text, the text is placed on the clipboard
before cmd+v fires, reproducing Recording King's full paste-injection
path end to end.

Requires Accessibility permission for your terminal under
System Settings > Privacy & Security.`,
		Example: `  rkdiag inject
  rkdiag inject --text "dictation test" --delay 3s
  rkdiag inject --combo shift+cmd+a`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInject(cmd.Context(), env, combo, delay, text)
		},
	}

	cmd.Flags().StringVar(&combo, "combo", "cmd+v", "Key combination to send")
	cmd.Flags().DurationVar(&delay, "delay", defaultInjectDelay, "Countdown before the keystroke fires")
	cmd.Flags().StringVar(&text, "text", "", "Text to place on the clipboard before pasting")

	return cmd
}

// runInject executes the keystroke injection diagnostic.
// Validation order: combo -> automation surface -> clipboard preload.
func runInject(ctx context.Context, env *Env, comboStr string, delay time.Duration, text string) error {
	parsed, err := inject.ParseCombo(comboStr)
	if err != nil {
		return err
	}

	if err := env.Keystroker.Available(); err != nil {
		return err
	}

	if text != "" {
		if err := env.Clipboard.Write(text); err != nil {
			return fmt.Errorf("clipboard preload: %w", err)
		}
		fmt.Fprintf(env.Stderr, "Placed %q on the clipboard\n", text)
	}

	if delay > 0 {
		fmt.Fprintf(env.Stderr, "Switch to the target application. Sending %s in...\n", parsed)
		if err := countdown(ctx, env, delay); err != nil {
			return err
		}
	}

	if err := env.Keystroker.SendKeystroke(ctx, parsed); err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "Sent %s\n", parsed)
	return nil
}

// countdown prints whole seconds remaining while sleeping off the delay.
func countdown(ctx context.Context, env *Env, delay time.Duration) error {
	for remaining := delay; remaining > 0; remaining -= time.Second {
		fmt.Fprintf(env.Stderr, "  %d...\n", int(remaining.Round(time.Second)/time.Second))
		step := time.Second
		if remaining < step {
			step = remaining
		}
		if err := env.Sleep(ctx, step); err != nil {
			return err
		}
	}
	return nil
}
