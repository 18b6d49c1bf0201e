// Package models defines data structures for configuration, input records and run state.
package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultRegistryID is stamped on every report unless overridden.
const DefaultRegistryID uint32 = 107587

// DefaultDataDir is where per-site .jsonl files are read from.
const DefaultDataDir = "data"

// RunConfig holds runtime configuration for a collection run.
// Values come from CLI flags, optionally seeded by a YAML file.
type RunConfig struct {
	DataDir    string       `yaml:"data_dir"`
	Workers    int          `yaml:"-"`
	Format     OutputFormat `yaml:"format"`
	Output     string       `yaml:"output"`
	RegistryID uint32       `yaml:"registry_id"`
	Lenient    bool         `yaml:"lenient"`
}

// DefaultRunConfig returns the configuration used when no file or flag overrides it.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		DataDir:    DefaultDataDir,
		Format:     FormatJSON,
		RegistryID: DefaultRegistryID,
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*RunConfig, error) {
	cfg := DefaultRunConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Format.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values a run cannot start without.
func (c *RunConfig) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("worker count must be a positive integer, got %d", c.Workers)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data directory must not be empty")
	}
	if err := c.Format.Validate(); err != nil {
		return err
	}
	if c.Format == FormatSQLite && c.Output == "" {
		return fmt.Errorf("format %q requires --output", c.Format)
	}
	return nil
}
