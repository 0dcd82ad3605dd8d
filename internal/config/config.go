// Package config loads agent settings from the environment and an optional
// YAML persona file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/sentiment-agent/internal/model"
	"github.com/rcliao/sentiment-agent/internal/store"
)

// Config holds the agent settings read from SENTIMENT_AGENT_* variables.
type Config struct {
	Name         string `env:"SENTIMENT_AGENT_NAME" envDefault:"ARIA"`
	StorePath    string `env:"SENTIMENT_AGENT_STORE"`
	Backend      string `env:"SENTIMENT_AGENT_BACKEND" envDefault:"json"`
	HistoryLimit int    `env:"SENTIMENT_AGENT_HISTORY_LIMIT" envDefault:"256"`
	LogLevel     string `env:"SENTIMENT_AGENT_LOG_LEVEL" envDefault:"warn"`
	LogFormat    string `env:"SENTIMENT_AGENT_LOG_FORMAT" envDefault:"console"`
	TraitsFile   string `env:"SENTIMENT_AGENT_TRAITS"`
}

// Persona is the optional YAML file that tunes an agent's character.
//
//	traits:
//	  curiosity: 0.4
//	dispositions:
//	  analytical: false
type Persona struct {
	Traits       model.Traits       `yaml:"traits"`
	Dispositions model.Dispositions `yaml:"dispositions"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the backend, history limit, log level, and log format.
func (c *Config) Validate() error {
	if _, err := store.ParseKind(c.Backend); err != nil {
		return err
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history limit must not be negative, got %d", c.HistoryLimit)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("log format must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// BackendKind returns the parsed store backend.
func (c *Config) BackendKind() store.Kind {
	k, _ := store.ParseKind(c.Backend)
	return k
}

// LoadPersona reads a persona file. An empty path yields an empty persona.
func LoadPersona(path string) (*Persona, error) {
	p := &Persona{}
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona: %w", err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse persona %s: %w", path, err)
	}
	if err := p.Traits.Validate(); err != nil {
		return nil, fmt.Errorf("persona %s: %w", path, err)
	}
	return p, nil
}

// NewLogger builds a zap logger writing to stderr. Diagnostics never share a
// stream with agent replies.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var zc zap.Config
	switch strings.ToLower(c.LogFormat) {
	case "json":
		zc = zap.NewProductionConfig()
	case "console", "":
		zc = zap.NewDevelopmentConfig()
		zc.DisableStacktrace = true
	default:
		return nil, errors.New("log format must be console or json")
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
