// ABOUTME: CLI command to list stored memories
// ABOUTME: Filters by category, identity statements or breakthrough moments
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/confidant/internal/models"
)

var (
	memoriesLimit         int
	memoriesCategory      string
	memoriesIdentity      bool
	memoriesBreakthroughs bool
)

// NewMemoriesCmd creates the memories command
func NewMemoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memories",
		Short: "List stored memories",
		Long: `List stored memories, newest first.

Examples:
  confidant memories
  confidant memories --category fear_patterns
  confidant memories --identity --format json`,
		Args: cobra.NoArgs,
		RunE: runMemories,
	}

	cmd.Flags().IntVarP(&memoriesLimit, "limit", "n", 20, "Maximum number of memories")
	cmd.Flags().StringVar(&memoriesCategory, "category", "", "Only show this category")
	cmd.Flags().BoolVar(&memoriesIdentity, "identity", false, "Only show identity statements")
	cmd.Flags().BoolVar(&memoriesBreakthroughs, "breakthroughs", false, "Only show breakthrough moments")
	cmd.MarkFlagsMutuallyExclusive("category", "identity", "breakthroughs")

	return cmd
}

func runMemories(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(memoriesLimit, "limit"); err != nil {
		return err
	}

	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	u, err := a.memory.User(ctx, a.user())
	if err != nil {
		return err
	}

	var list []models.Memory
	switch {
	case memoriesIdentity:
		list, err = a.store.IdentityStatements(ctx, u.ID, memoriesLimit)
	case memoriesBreakthroughs:
		list, err = a.store.BreakthroughMoments(ctx, u.ID, memoriesLimit)
	default:
		list, err = a.store.RecentMemories(ctx, u.ID, memoriesLimit, memoriesCategory)
	}
	if err != nil {
		return fmt.Errorf("listing memories: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput() {
		if list == nil {
			list = []models.Memory{}
		}
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(out, "%s\n", data)
		return nil
	}

	if len(list) == 0 {
		if !quiet {
			fmt.Fprintf(out, "No memories found\n")
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tCATEGORY\tSCORE\tCREATED\tOBSERVATION\n")
	fmt.Fprintf(w, "--\t--------\t-----\t-------\t-----------\n")
	for _, m := range list {
		category := m.Category
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			m.ID,
			category,
			m.RelevanceScore,
			formatTime(m.CreatedAt),
			truncate(m.Observation, 60))
	}
	_ = w.Flush()

	if !quiet {
		fmt.Fprintf(out, "\nTotal: %d memor%s\n", len(list), plural(len(list), "y", "ies"))
	}
	return nil
}
