package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export memories as JSON",
		Long:  "Export every stored memory, oldest first, as a JSON array.",
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	b := openBackend()
	defer b.Close()

	memories, err := b.Load(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	printJSON(cmd.OutOrStdout(), memories)
}
