package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/sentiment-agent/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show memory store statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	b := openBackend()
	defer b.Close()

	stats, err := store.CollectStats(cmd.Context(), b)
	if err != nil {
		exitErr("stats", err)
	}

	printJSON(cmd.OutOrStdout(), stats)
}
