// Package config holds the configuration of the expressions command.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/PavelStransky/expressions/ie"
)

// Config is the configuration of the expressions command.
type Config struct {
	Global    GlobalConfig `yaml:"global"`
	Precision uint         `yaml:"precision"`
	LogLevel  string       `yaml:"log_level"`
}

// GlobalConfig describes where the Global Context lives.
type GlobalConfig struct {
	// Store is "file" or "sqlite".
	Store string `yaml:"store"`
	// Path is the file, or the database for the sqlite store.
	Path string `yaml:"path"`
	// Name is the row of the sqlite store.
	Name string `yaml:"name"`
	// Mode is the record stream mode: text, binary, compressed or raw.
	Mode string `yaml:"mode"`
}

// Stores lists the supported Global Context stores.
var Stores = []string{"file", "sqlite"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			Store: "file",
			Path:  defaultGlobalPath(),
			Name:  "global",
			Mode:  ie.Compressed.String(),
		},
		Precision: 64,
		LogLevel:  "info",
	}
}

func defaultGlobalPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "expressions", "global.ie")
}

// DefaultPath returns the default location of the configuration file.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "expressions", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment variables override the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults.
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
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

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("EXPRESSIONS_GLOBAL"); path != "" {
		c.Global.Path = path
	}
	if mode := os.Getenv("EXPRESSIONS_MODE"); mode != "" {
		c.Global.Mode = mode
	}
	if store := os.Getenv("EXPRESSIONS_STORE"); store != "" {
		c.Global.Store = store
	}
	if prec := os.Getenv("EXPRESSIONS_PRECISION"); prec != "" {
		if p, err := strconv.ParseUint(prec, 10, 32); err == nil {
			c.Precision = uint(p)
		}
	}
}

// Mode returns the parsed record stream mode.
func (c *Config) Mode() (ie.Mode, error) {
	return ie.ParseMode(c.Global.Mode)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	valid := false
	for _, s := range Stores {
		if c.Global.Store == s {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid global store: %s (valid: %v)", c.Global.Store, Stores)
	}
	if c.Global.Path == "" {
		return fmt.Errorf("global path not configured (set EXPRESSIONS_GLOBAL)")
	}
	if _, err := c.Mode(); err != nil {
		return err
	}
	if c.Precision == 0 {
		return fmt.Errorf("precision must be positive")
	}
	return nil
}
