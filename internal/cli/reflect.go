package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reflect",
		Short: "Ask the agent to reflect on its own development",
		Run:   runReflect,
	}

	RootCmd.AddCommand(cmd)
}

func runReflect(cmd *cobra.Command, args []string) {
	a, logger := openAgent(cmd)
	defer logger.Sync()
	defer a.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", a.Name(), a.SelfReflect(cmd.Context()))
}
