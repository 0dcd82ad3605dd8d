package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/sentiment-agent/internal/agent"
	"github.com/rcliao/sentiment-agent/internal/memory"
)

func init() {
	cmd := &cobra.Command{
		Use:   "think [text]",
		Short: "Run one thinking cycle",
		Long:  "Run one thinking cycle. The stimulus can be a positional arg or piped via stdin. Prints the full cycle as JSON.",
		Run:   runThink,
	}

	cmd.Flags().BoolP("quiet", "q", false, "Print only the reply")

	RootCmd.AddCommand(cmd)
}

func runThink(cmd *cobra.Command, args []string) {
	quiet, _ := cmd.Flags().GetBool("quiet")

	var stimulus string
	if len(args) > 0 {
		stimulus = strings.Join(args, " ")
	} else {
		piped, err := readPiped(cmd.InOrStdin())
		if err != nil {
			exitErr("read stdin", err)
		}
		stimulus = piped
	}
	stimulus = strings.TrimSpace(stimulus)
	if stimulus == "" {
		exitErr("think", fmt.Errorf("stimulus is required (positional arg or stdin)"))
	}

	a, logger := openAgent(cmd)
	defer logger.Sync()
	defer a.Close()

	res, err := a.Cycle(cmd.Context(), stimulus)
	var pf *agent.PipelineFault
	var sf *memory.PersistenceFault
	switch {
	case errors.As(err, &pf):
		res.Response = agent.Fallback
	case errors.As(err, &sf):
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	if quiet {
		fmt.Fprintln(cmd.OutOrStdout(), res.Response)
		return
	}
	printJSON(cmd.OutOrStdout(), res)
}

// readPiped reads all of in unless it is an interactive terminal.
func readPiped(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
