// Package cli implements the sentiment-agent CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/sentiment-agent/internal/agent"
	"github.com/rcliao/sentiment-agent/internal/config"
	"github.com/rcliao/sentiment-agent/internal/store"
)

var (
	nameFlag     string
	storeFlag    string
	backendFlag  string
	traitsFlag   string
	logLevelFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "sentiment-agent",
	Short: "A reflective conversational agent with persistent memory",
	Long: "Talk to an agent that perceives, recalls, deliberates, and remembers.\n" +
		"Settings come from SENTIMENT_AGENT_* environment variables; flags override them.",
}

func init() {
	RootCmd.PersistentFlags().StringVar(&nameFlag, "name", "", "Agent name (default: $SENTIMENT_AGENT_NAME or ARIA)")
	RootCmd.PersistentFlags().StringVarP(&storeFlag, "store", "s", "", "Memory store path (default: <name>_memory.json or .db)")
	RootCmd.PersistentFlags().StringVarP(&backendFlag, "backend", "b", "", "Store backend: json or sqlite")
	RootCmd.PersistentFlags().StringVar(&traitsFlag, "traits", "", "YAML persona file with traits and dispositions")
	RootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig merges flags over the environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if nameFlag != "" {
		cfg.Name = nameFlag
	}
	if storeFlag != "" {
		cfg.StorePath = storeFlag
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	if traitsFlag != "" {
		cfg.TraitsFile = traitsFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openAgent(cmd *cobra.Command) (*agent.Agent, *zap.Logger) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("config", err)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		exitErr("logger", err)
	}
	persona, err := config.LoadPersona(cfg.TraitsFile)
	if err != nil {
		exitErr("persona", err)
	}

	a, err := agent.New(cmd.Context(), agent.Options{
		Name:         cfg.Name,
		StorePath:    cfg.StorePath,
		Backend:      cfg.BackendKind(),
		Traits:       persona.Traits,
		Dispositions: persona.Dispositions,
		HistoryLimit: cfg.HistoryLimit,
		Logger:       logger,
	})
	if err != nil {
		exitErr("open agent", err)
	}
	return a, logger
}

func openBackend() store.Backend {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("config", err)
	}
	kind := cfg.BackendKind()
	path := cfg.StorePath
	if path == "" {
		path = store.DefaultPath(kind, cfg.Name)
	}
	b, err := store.Open(kind, path)
	if err != nil {
		exitErr("open store", err)
	}
	return b
}

func printJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
