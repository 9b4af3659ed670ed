// ABOUTME: Achievements command lists unlocked milestones
// ABOUTME: Subcommands check for new unlocks and mark one as celebrated
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/confidant/internal/models"
	"github.com/harper/confidant/internal/relationship"
	"github.com/harper/confidant/internal/storage"
)

var achievementsPending bool

// NewAchievementsCmd creates the achievements command and its subcommands
func NewAchievementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "achievements",
		Short: "List unlocked achievements",
		Long: `List unlocked achievements.

Examples:
  confidant achievements
  confidant achievements --pending
  confidant achievements check
  confidant achievements celebrate 3`,
		Args: cobra.NoArgs,
		RunE: runAchievements,
	}

	cmd.Flags().BoolVar(&achievementsPending, "pending", false, "Only show achievements not yet celebrated")

	cmd.AddCommand(newAchievementsCheckCmd(), newAchievementsCelebrateCmd())

	return cmd
}

func newAchievementsCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Unlock any achievements that are now earned",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.memory.User(cmd.Context(), a.user())
			if err != nil {
				return err
			}
			unlocked, err := a.store.CheckAndUnlockAchievements(cmd.Context(), u.ID, time.Now())
			if err != nil {
				return err
			}
			if len(unlocked) == 0 && !jsonOutput() {
				if !quiet {
					fmt.Fprintf(cmd.OutOrStdout(), "Nothing new unlocked\n")
				}
				return nil
			}
			return printAchievements(cmd.OutOrStdout(), unlocked)
		},
	}
}

func newAchievementsCelebrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "celebrate <id>",
		Short: "Mark an achievement as celebrated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid achievement id %q", args[0])
			}

			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.memory.User(cmd.Context(), a.user())
			if err != nil {
				return err
			}
			ach, err := a.store.MarkCelebrated(cmd.Context(), u.ID, id)
			if err != nil {
				return err
			}
			if ach == nil {
				return fmt.Errorf("achievement %d: %w", id, storage.ErrNotFound)
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Celebrated %s\n", achievementTitle(ach.Key))
			}
			return nil
		},
	}
}

func runAchievements(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.memory.User(cmd.Context(), a.user())
	if err != nil {
		return err
	}

	var list []models.Achievement
	if achievementsPending {
		list, err = a.store.UncelebratedAchievements(cmd.Context(), u.ID)
	} else {
		list, err = a.store.ListAchievements(cmd.Context(), u.ID)
	}
	if err != nil {
		return err
	}

	if len(list) == 0 && !jsonOutput() {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No achievements yet\n")
		}
		return nil
	}
	return printAchievements(cmd.OutOrStdout(), list)
}

func printAchievements(out io.Writer, list []models.Achievement) error {
	if jsonOutput() {
		if list == nil {
			list = []models.Achievement{}
		}
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(out, "%s\n", data)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tACHIEVEMENT\tUNLOCKED\tCELEBRATED\n")
	fmt.Fprintf(w, "--\t-----------\t--------\t----------\n")
	for _, ach := range list {
		celebrated := "no"
		if ach.Celebrated {
			celebrated = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", ach.ID, achievementTitle(ach.Key), formatTime(ach.UnlockedAt), celebrated)
	}
	return w.Flush()
}

func achievementTitle(key string) string {
	if def, ok := relationship.Lookup(key); ok {
		return def.Title
	}
	return key
}
