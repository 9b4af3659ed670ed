// ABOUTME: Stats command shows the relationship, streak and dashboard numbers
// ABOUTME: Also lists recurring struggle themes worth working on
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/confidant/internal/models"
)

const statsAreaLimit = 5

type statsView struct {
	User         string                   `json:"user"`
	Relationship models.RelationshipStats `json:"relationship"`
	Streak       models.StreakStatus      `json:"streak"`
	Dashboard    models.DashboardStats    `json:"dashboard"`
	Areas        []models.AreaToWorkOn    `json:"areas_to_work_on"`
}

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show relationship and streak statistics",
		Long: `Show relationship and streak statistics.

Includes days together, streaks, connection depth, totals and the
struggle themes that keep coming back.

Examples:
  confidant stats
  confidant stats --user alice --format json`,
		Args: cobra.NoArgs,
		RunE: runStats,
	}

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	now := time.Now()
	view := statsView{User: a.user()}

	if view.Relationship, err = a.memory.RelationshipStats(ctx, view.User, now); err != nil {
		return err
	}
	if view.Streak, err = a.memory.StreakStatus(ctx, view.User, now); err != nil {
		return err
	}
	if view.Dashboard, err = a.memory.DashboardStats(ctx, view.User); err != nil {
		return err
	}
	if view.Areas, err = a.memory.AreasToWorkOn(ctx, view.User, statsAreaLimit); err != nil {
		return err
	}
	if view.Areas == nil {
		view.Areas = []models.AreaToWorkOn{}
	}

	out := cmd.OutOrStdout()
	if jsonOutput() {
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(out, "%s\n", data)
		return nil
	}

	rel, streak, dash := view.Relationship, view.Streak, view.Dashboard
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "User:\t%s\n", view.User)
	fmt.Fprintf(w, "Days together:\t%d\n", rel.DaysTogether)
	fmt.Fprintf(w, "Sessions:\t%d\n", rel.TotalSessions)
	fmt.Fprintf(w, "Memories:\t%d\n", dash.TotalMemories)
	fmt.Fprintf(w, "Active patterns:\t%d\n", dash.ActivePatterns)
	fmt.Fprintf(w, "Streak:\t%d (longest %d)\n", streak.CurrentStreak, streak.LongestStreak)
	fmt.Fprintf(w, "Connection:\t%d - %s\n", rel.ConnectionDepth, rel.ConnectionDepthLabel)
	if dash.LastSession != nil {
		fmt.Fprintf(w, "Last session:\t%s\n", formatTime(*dash.LastSession))
	}
	_ = w.Flush()

	if streak.StreakAtRisk && !quiet {
		fmt.Fprintf(out, "\nCheck in today to keep your %d day streak going.\n", streak.CurrentStreak)
	}

	if len(view.Areas) > 0 {
		fmt.Fprintf(out, "\nAreas to work on:\n")
		for _, area := range view.Areas {
			fmt.Fprintf(out, "  • %s (%d)\n", area.Title, area.Frequency)
			for _, ex := range area.Examples {
				fmt.Fprintf(out, "      %s\n", truncate(ex, 70))
			}
		}
	}
	return nil
}
