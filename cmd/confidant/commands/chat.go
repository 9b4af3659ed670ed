// ABOUTME: Chat command for talking to the companion from the terminal
// ABOUTME: One message as an argument, or an interactive loop reading stdin
package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/confidant/internal/relationship"
	"github.com/harper/confidant/internal/session"
)

var chatCoach bool

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to your confidant",
		Long: `Talk to your confidant.

With a message argument, runs a single turn and prints the reply.
Without one, reads messages from stdin until EOF or "/end", then
prints a closing summary.

Examples:
  confidant chat "I finally told my sister how I feel"
  confidant chat --coach "I keep cutting my winners early"
  confidant chat --user alice`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChat,
	}

	cmd.Flags().BoolVar(&chatCoach, "coach", false, "Use the coaching persona (no memories are extracted)")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		return chatTurn(ctx, out, a.sessions, a.user(), args[0])
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && f == os.Stdin && !quiet && !jsonOutput() {
		fmt.Fprintln(out, "Say what's on your mind. Type /end to finish.")
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/end" {
			break
		}
		if err := chatTurn(ctx, out, a.sessions, a.user(), line); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	if chatCoach {
		return nil
	}
	summary, err := a.sessions.EndSession(ctx, a.user())
	if err != nil {
		return err
	}
	return printText(out, "summary", summary)
}

func chatTurn(ctx context.Context, out io.Writer, sessions *session.Service, user, message string) error {
	if chatCoach {
		reply, err := sessions.ProcessCoachInput(ctx, user, message)
		if err != nil {
			return err
		}
		return printText(out, "response", reply)
	}

	result, err := sessions.ProcessInput(ctx, user, message)
	if err != nil {
		return err
	}

	if jsonOutput() {
		data, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(out, "%s\n", data)
		return nil
	}

	fmt.Fprintf(out, "%s\n", result.Response)
	if quiet {
		return nil
	}
	if result.MemoriesStored > 0 {
		fmt.Fprintf(out, "  (remembered %d thing(s))\n", result.MemoriesStored)
	}
	for _, ach := range result.Unlocked {
		title := ach.Key
		if def, ok := relationship.Lookup(ach.Key); ok {
			title = def.Title
		}
		fmt.Fprintf(out, "  ★ Achievement unlocked: %s\n", title)
	}
	return nil
}

func printText(out io.Writer, key, text string) error {
	if jsonOutput() {
		data, err := json.Marshal(map[string]string{key: text})
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(out, "%s\n", data)
		return nil
	}
	fmt.Fprintf(out, "%s\n", text)
	return nil
}
