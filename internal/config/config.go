// Package config loads and validates the stackd daemon configuration.
//
// Configuration is a small YAML file; after decoding it is unified with
// an embedded CUE schema so every bound (capacities, log level, socket
// path) is checked in one place before the daemon touches it.
package config

import (
	"fmt"
	"os"

	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/evgd/stackd/internal/stack"
)

// DefaultSocket is where the daemon listens when no socket is
// configured.
const DefaultSocket = "/tmp/stackd.sock"

// Config is the daemon configuration. The zero value is not usable
// directly; obtain one from Default or Load.
type Config struct {
	// Socket is the Unix domain socket path.
	Socket string `yaml:"socket" json:"socket"`

	// DefaultCapacity is allocated on the first attach.
	DefaultCapacity int `yaml:"default_capacity" json:"default_capacity"`

	// MaxCapacity bounds the capacity a resize may request.
	MaxCapacity int `yaml:"max_capacity" json:"max_capacity"`

	// Journal is the SQLite journal path; empty disables journaling.
	Journal string `yaml:"journal,omitempty" json:"journal,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Socket:          DefaultSocket,
		DefaultCapacity: stack.DefaultCapacity,
		MaxCapacity:     stack.MaxCapacity,
		LogLevel:        "info",
	}
}

// Load reads a YAML config file, fills omitted fields with defaults,
// and validates the result. An empty path returns Default unchanged.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults fills zero-valued fields so a partial file validates.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Socket == "" {
		c.Socket = d.Socket
	}
	if c.MaxCapacity == 0 {
		c.MaxCapacity = d.MaxCapacity
	}
	if c.DefaultCapacity == 0 {
		c.DefaultCapacity = c.MaxCapacity
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}
