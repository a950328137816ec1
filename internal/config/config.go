// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultFormat        = "plain"
	DefaultWatchInterval = time.Second
)

// ValidFormats returns the output formats accepted by the CLI.
func ValidFormats() []string {
	return []string{"plain", "json", "yaml", "tree"}
}

// Config represents the notchbar CLI configuration.
type Config struct {
	Output  OutputConfig                 `toml:"output"`
	Watch   WatchConfig                  `toml:"watch"`
	Presets map[string]map[string]string `toml:"presets"`
}

// OutputConfig holds default output options.
type OutputConfig struct {
	Format string `toml:"format"` // plain, json, yaml, tree
}

// WatchConfig holds settings for the live watch view.
type WatchConfig struct {
	Interval Duration `toml:"interval"` // Polling interval
	ShowHelp bool     `toml:"show_help"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: DefaultFormat,
		},
		Watch: WatchConfig{
			Interval: Duration(DefaultWatchInterval),
			ShowHelp: true,
		},
		Presets: make(map[string]map[string]string),
	}
}

// ConfigPath returns the path to the CLI config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "notchbar", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(ValidFormats(), c.Output.Format) {
		return fmt.Errorf("invalid output format %q, must be one of: %v", c.Output.Format, ValidFormats())
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %s", c.Watch.Interval.Duration())
	}
	return nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Preset returns a copy of the named property preset.
// Returns false if no such preset exists.
func (c *Config) Preset(name string) (map[string]string, bool) {
	p, ok := c.Presets[name]
	if !ok {
		return nil, false
	}
	return maps.Clone(p), true
}

// PresetNames returns the configured preset names in sorted order.
func (c *Config) PresetNames() []string {
	return slices.Sorted(maps.Keys(c.Presets))
}
