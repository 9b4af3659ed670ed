// ABOUTME: MCP command starts the Model Context Protocol server
// ABOUTME: Lets LLM agents like Claude reflect, read stats and achievements via stdio
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/confidant/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs confidant as an MCP (Model Context Protocol) server, letting
LLM agents like Claude hold reflective conversations, list memories
and read relationship stats via stdio.

Configure in Claude Desktop's config file to enable the tools.`,
		Args: cobra.NoArgs,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  confidant mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "confidant": {
  #       "command": "confidant",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	server := mcpserver.NewMCPServer("confidant", versionInfo.Version)
	mcp.RegisterTools(server, a.sessions, a.user())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("MCP server starting on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
