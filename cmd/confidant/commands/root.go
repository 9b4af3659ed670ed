// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Global flags control verbosity, output format, database and user
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	dbPath       string
	userID       string
)

var outputFormats = []string{"auto", "json", "table"}

const banner = `
 ██████╗ ██████╗ ███╗   ██╗███████╗██╗██████╗  █████╗ ███╗   ██╗████████╗
██╔════╝██╔═══██╗████╗  ██║██╔════╝██║██╔══██╗██╔══██╗████╗  ██║╚══██╔══╝
██║     ██║   ██║██╔██╗ ██║█████╗  ██║██║  ██║███████║██╔██╗ ██║   ██║
██║     ██║   ██║██║╚██╗██║██╔══╝  ██║██║  ██║██╔══██║██║╚██╗██║   ██║
╚██████╗╚██████╔╝██║ ╚████║██║     ██║██████╔╝██║  ██║██║ ╚████║   ██║
 ╚═════╝ ╚═════╝ ╚═╝  ╚═══╝╚═╝     ╚═╝╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═══╝   ╚═╝`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confidant",
		Short: "A reflective journaling companion that remembers",
		Long: banner + `

Confidant is a journaling companion. Each conversation is turned into
scored memories that shape later replies, while streaks, connection
depth and achievements track the relationship over time.

Run it as an HTTP API (serve), an MCP server for LLM agents (mcp),
or talk to it straight from the terminal (chat).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !containsString(outputFormats, outputFormat) {
				return fmt.Errorf("invalid --format %q (want auto, json or table)", outputFormat)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, json or table")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path or postgres:// URL (default: $DATABASE_URL or the XDG data dir)")
	cmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "User id (default: $DEFAULT_USER_ID)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewServeCmd(),
		NewChatCmd(),
		NewEndCmd(),
		NewMemoriesCmd(),
		NewStatsCmd(),
		NewAchievementsCmd(),
		NewExportCmd(),
		NewSeedCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func jsonOutput() bool {
	return outputFormat == "json"
}
