// ABOUTME: Seed command replays a scripted conversation set to populate a user
// ABOUTME: Prints per-message progress and optionally writes a JSON report
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/confidant/internal/demo"
)

var (
	seedList   bool
	seedReport string
)

// NewSeedCmd creates the seed command
func NewSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [set]",
		Short: "Seed a user with a scripted conversation",
		Long: `Seed a user by replaying a scripted conversation through the
full pipeline: replies, memory extraction, streaks and achievements.

Sets: journal (default, user demo_trader) and quickstart (fresh user).
Messages that fail are reported and the run continues.

Examples:
  confidant seed
  confidant seed quickstart
  confidant seed journal --user alice --report seed.json
  confidant seed --list`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSeed,
	}

	cmd.Flags().BoolVar(&seedList, "list", false, "List available conversation sets")
	cmd.Flags().StringVar(&seedReport, "report", "", "Write a JSON report to this path")

	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if seedList {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "SET\tMESSAGES\tDESCRIPTION\n")
		for _, set := range demo.Sets() {
			fmt.Fprintf(w, "%s\t%d\t%s\n", set.ID, len(set.Messages), set.Description)
		}
		return w.Flush()
	}

	setID := "journal"
	if len(args) == 1 {
		setID = args[0]
	}
	set, ok := demo.Lookup(setID)
	if !ok {
		return fmt.Errorf("unknown conversation set %q (try --list)", setID)
	}

	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	runner := demo.NewRunner(a.sessions)
	if !quiet && !jsonOutput() {
		runner.Progress = func(total int, r demo.Result) {
			fmt.Fprintf(out, "[%d/%d] User: %s\n", r.Index, total, r.Message)
			if r.Error != "" {
				fmt.Fprintf(out, "        Error: %s\n", r.Error)
				return
			}
			fmt.Fprintf(out, "        Confidant: %s\n", truncate(r.Response, 100))
		}
	}

	report, err := runner.Run(cmd.Context(), set, userID)
	if err != nil {
		return err
	}

	if seedReport != "" {
		if err := demo.WriteReport(seedReport, report); err != nil {
			return err
		}
	}

	if jsonOutput() {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(out, "%s\n", data)
		return nil
	}

	if !quiet {
		fmt.Fprintf(out, "\nSeeded user %s: %d succeeded, %d failed\n", report.UserKey, report.Succeeded, report.Failed)
	}
	return nil
}
