// ABOUTME: Export command writes a user's full journal to YAML or JSON
// ABOUTME: Writes to a file when a path is given, stdout otherwise
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harper/confidant/internal/storage"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Export memories, sessions and achievements",
		Long: `Export everything stored for a user.

Files ending in .json are written as JSON, anything else as YAML.
Without a path the export is printed to stdout as YAML, or JSON
with --format json.

Examples:
  confidant export
  confidant export journal.yaml
  confidant export --user alice alice.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExport,
	}

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := a.store.Export(cmd.Context(), a.user())
	if err != nil {
		return err
	}

	if len(args) == 1 {
		if err := storage.WriteExport(args[0], data); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d memories, %d sessions and %d achievements to %s\n",
				len(data.Memories), len(data.Interactions), len(data.Achievements), args[0])
		}
		return nil
	}

	var out []byte
	if jsonOutput() {
		out, err = json.MarshalIndent(data, "", "  ")
		out = append(out, '\n')
	} else {
		out, err = yaml.Marshal(data)
	}
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
