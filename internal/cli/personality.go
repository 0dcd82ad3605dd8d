package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "personality",
		Short: "Show the agent's personality snapshot",
		Run:   runPersonality,
	}

	RootCmd.AddCommand(cmd)
}

func runPersonality(cmd *cobra.Command, args []string) {
	a, logger := openAgent(cmd)
	defer logger.Sync()
	defer a.Close()

	printJSON(cmd.OutOrStdout(), a.Personality())
}
