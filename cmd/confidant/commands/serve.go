// ABOUTME: Serve command runs the HTTP API
// ABOUTME: Shuts down gracefully on SIGINT or SIGTERM
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/confidant/internal/api"
)

var serveAddr string

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Serves conversation, coaching, transcription and dashboard endpoints
as JSON. The listen address defaults to $HTTP_ADDR (:8000).

Examples:
  confidant serve
  confidant serve --addr 127.0.0.1:9000
  confidant serve --db postgres://localhost/confidant`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: $HTTP_ADDR)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.HTTPAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := api.New(a.sessions, api.Options{
		Addr:        addr,
		DefaultUser: a.user(),
		Transcriber: a.transcriber,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
