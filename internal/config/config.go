// Package config handles configuration loading from TOML files and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Fuzzy FuzzyConfig `toml:"fuzzy"`
	Log   LogConfig   `toml:"log"`
	Undo  UndoConfig  `toml:"undo"`
}

// FuzzyConfig holds FuzzyMatcher tuning.
type FuzzyConfig struct {
	SimilarityThreshold float64 `toml:"similarity_threshold"`
}

// ThresholdOrDefault returns the configured similarity threshold, or 0.85 if
// unset or out of range.
func (f FuzzyConfig) ThresholdOrDefault() float64 {
	if f.SimilarityThreshold <= 0 || f.SimilarityThreshold > 1 {
		return 0.85
	}
	return f.SimilarityThreshold
}

// LogConfig holds structured-logging settings.
type LogConfig struct {
	Level string `toml:"level"` // zerolog level name; defaults to "info"
	Path  string `toml:"path"`  // log file path; defaults to <data dir>/logs/hashedit.log
}

// LevelOrDefault returns the configured log level, or "info" if unset.
func (l LogConfig) LevelOrDefault() string {
	if l.Level == "" {
		return "info"
	}
	return l.Level
}

// UndoConfig holds undo/rollback safety-net settings.
type UndoConfig struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path"` // defaults to <data dir>/undo.db
}

// Load reads configuration from a TOML file and applies environment
// variable overrides. A missing path yields the zero-value Config with
// defaults applied by its accessor methods — the engine runs fine
// unconfigured.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if t := c.Fuzzy.SimilarityThreshold; t != 0 && (t < 0 || t > 1) {
		errs = append(errs, fmt.Errorf("fuzzy.similarity_threshold=%v must be between 0.0 and 1.0", t))
	}

	switch c.Log.LevelOrDefault() {
	case "debug", "info", "warn", "error", "disabled":
	default:
		errs = append(errs, fmt.Errorf("log.level=%q is not a recognized zerolog level", c.Log.Level))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"HASHEDIT_LOG_LEVEL", func(v string) {
			if v != "" {
				cfg.Log.Level = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}

// DataDir returns the path to hashedit's data directory (~/.config/hashedit).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "hashedit"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}
