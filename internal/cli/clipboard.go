package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recordingking/rkdiag/internal/clipboard"
)

// ClipboardCmd creates the clipboard command.
// The env parameter provides injectable dependencies for testing.
func ClipboardCmd(env *Env) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "clipboard",
		Short: "Verify clipboard write and read",
		Long: `Verify that text written to the system clipboard can be read back intact.

Recording King delivers dictated text by placing it on the clipboard and
pasting it; if this round trip fails, dictation output is silently lost.
By default a unique probe marker is used, so stale clipboard content
cannot produce a false pass.`,
		Example: `  rkdiag clipboard
  rkdiag clipboard --text "dictated text 789"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClipboard(env, text)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Probe text (default: unique marker)")

	return cmd
}

// runClipboard executes the clipboard round-trip diagnostic.
func runClipboard(env *Env, text string) error {
	written, err := clipboard.RoundTrip(env.Clipboard, text)
	if err != nil {
		return fmt.Errorf("clipboard round trip: %w", err)
	}

	fmt.Fprintf(env.Stdout, "Clipboard OK: wrote and read back %q\n", written)
	return nil
}
