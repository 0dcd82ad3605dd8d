package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/rcliao/sentiment-agent/internal/agent"
)

// chatThoughts is how many internal thoughts are shown after each reply.
const chatThoughts = 3

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Long:  "Start an interactive conversation. Type 'reflect' for self-reflection, 'personality' for a snapshot, 'exit' to quit.",
		Run:   runChat,
	}

	cmd.Flags().Bool("simple", false, "Read plain lines from stdin instead of using line editing")

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	simple, _ := cmd.Flags().GetBool("simple")

	a, logger := openAgent(cmd)
	defer logger.Sync()
	defer a.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s is ready for conversation. Type 'exit' to quit.\n\n", a.Name())

	if simple {
		simpleChat(cmd.Context(), a, cmd.InOrStdin(), out)
		return
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "You: ",
		HistoryFile:     filepath.Join(os.TempDir(), ".sentiment_agent_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(out, "Error initializing readline: %v\n", err)
		fmt.Fprintln(out, "Falling back to simple input mode...")
		simpleChat(cmd.Context(), a, cmd.InOrStdin(), out)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}
		if !chatTurn(cmd.Context(), a, line, out) {
			return
		}
	}
}

func simpleChat(ctx context.Context, a *agent.Agent, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\nGoodbye!")
			return
		}
		if !chatTurn(ctx, a, scanner.Text(), out) {
			return
		}
	}
}

// chatTurn handles one input line and reports whether the session continues.
func chatTurn(ctx context.Context, a *agent.Agent, line string, out io.Writer) bool {
	input := strings.TrimSpace(line)
	switch strings.ToLower(input) {
	case "":
		return true
	case "exit", "quit":
		fmt.Fprintln(out, "Goodbye!")
		return false
	case "personality":
		printJSON(out, a.Personality())
		return true
	case "reflect":
		fmt.Fprintf(out, "\n%s: %s\n", a.Name(), a.SelfReflect(ctx))
	default:
		fmt.Fprintf(out, "\n%s: %s\n", a.Name(), a.Think(ctx, input))
	}

	if thoughts := a.RecentThoughts(chatThoughts); len(thoughts) > 0 {
		fmt.Fprintln(out, "\nInternal thoughts:")
		for _, t := range thoughts {
			fmt.Fprintf(out, "  - [%s %.1f] %s\n", t.Kind, t.Confidence, t.Content)
		}
	}
	fmt.Fprintln(out)
	return true
}
