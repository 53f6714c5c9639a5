// Package config holds constgen configuration, loaded from .constgen.yaml
// with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = ".constgen.yaml"

// Config holds all constgen settings.
type Config struct {
	// Output is the name of the generated file written into each
	// scanned package directory.
	Output string `yaml:"output"`

	// BuildTag, when set, adds a //go:build constraint to generated
	// files.
	BuildTag string `yaml:"build_tag"`

	// Verify re-checks generated output against the folded plans.
	Verify bool `yaml:"verify"`

	// Exclude lists directory names skipped during scanning.
	Exclude []string `yaml:"exclude"`

	// Watch configures the regeneration watcher.
	Watch WatchConfig `yaml:"watch"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	// Debounce is how long a file must stay quiet before regeneration.
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: "constgen_gen.go",
		Verify: true,
		Exclude: []string{
			"vendor", "testdata", ".git",
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment variables override either.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies CONSTGEN_* environment variables.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CONSTGEN_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("CONSTGEN_BUILD_TAG"); v != "" {
		c.BuildTag = v
	}
	if v := os.Getenv("CONSTGEN_VERIFY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Verify = b
		}
	}
	if v := os.Getenv("CONSTGEN_WATCH_DEBOUNCE"); v != "" {
		c.Watch.Debounce = v
	}
}

// validate rejects settings the pipeline cannot work with.
func (c *Config) validate() error {
	if c.Output == "" {
		return fmt.Errorf("output file name must not be empty")
	}
	if filepath.Ext(c.Output) != ".go" {
		return fmt.Errorf("output file %q must be a .go file", c.Output)
	}
	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		return fmt.Errorf("invalid watch debounce %q: %w", c.Watch.Debounce, err)
	}
	return nil
}

// DebounceDuration returns the parsed watch debounce, falling back to the
// default when unset or invalid.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}
