package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/sentiment-agent/internal/experiment"
)

func init() {
	cmd := &cobra.Command{
		Use:   "experiment",
		Short: "Run the prompt battery and print an analysis report",
		Long:  "Run five phases of prompts through the agent and summarize its confidence, valence, thought kinds, and reply lengths.",
		Run:   runExperiment,
	}

	cmd.Flags().StringP("out", "o", "", "Write the interaction log as JSON to this file")
	cmd.Flags().BoolP("verbose", "v", false, "Print every question and reply as it runs")
	cmd.Flags().Bool("advanced", false, "Also run the temporal, theory-of-mind, and identity phases")

	RootCmd.AddCommand(cmd)
}

func runExperiment(cmd *cobra.Command, args []string) {
	outPath, _ := cmd.Flags().GetString("out")
	verbose, _ := cmd.Flags().GetBool("verbose")
	advanced, _ := cmd.Flags().GetBool("advanced")

	a, logger := openAgent(cmd)
	defer logger.Sync()
	defer a.Close()

	out := cmd.OutOrStdout()
	r := experiment.NewRunner(a, logger)
	if verbose {
		r.Observe = func(e experiment.Entry) {
			fmt.Fprintf(out, "[%s] Q: %s\n", e.Category, e.Question)
			fmt.Fprintf(out, "  A: %s\n", e.Response)
		}
	}

	phases := experiment.Battery()
	if advanced {
		phases = append(phases, experiment.AdvancedBattery()...)
	}

	entries, err := r.Run(cmd.Context(), phases)
	if err != nil {
		exitErr("experiment", err)
	}

	fmt.Fprintf(out, "Experiment with %s\n\n", a.Name())
	r.Report(entries).WriteText(out)

	if outPath != "" {
		b, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			exitErr("encode log", err)
		}
		if err := os.WriteFile(outPath, b, 0o644); err != nil {
			exitErr("write log", err)
		}
		fmt.Fprintf(out, "\nInteraction log saved to %s\n", outPath)
	}
}
