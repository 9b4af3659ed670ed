// ABOUTME: End command closes a session with a short summary
// ABOUTME: Falls back to a fixed closing line when the model is unavailable
package commands

import (
	"github.com/spf13/cobra"
)

// NewEndCmd creates the end command
func NewEndCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "end",
		Short: "End the session with a closing summary",
		Long: `End the current session.

Summarises what was discussed recently in two or three warm sentences.

Examples:
  confidant end
  confidant end --user alice --format json`,
		Args: cobra.NoArgs,
		RunE: runEnd,
	}

	return cmd
}

func runEnd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.sessions.EndSession(cmd.Context(), a.user())
	if err != nil {
		return err
	}
	return printText(cmd.OutOrStdout(), "summary", summary)
}
