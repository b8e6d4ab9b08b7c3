// Package config loads runtime tuning for recipekit. Values are layered:
// embedded defaults, then an optional recipekit.toml next to the recipe,
// then RECIPEKIT_* environment variables.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// Retry controls the transient-error retry policy.
type Retry struct {
	Attempts int `koanf:"attempts"`
	Backoff  int `koanf:"backoff"` // milliseconds
}

// HTTP controls download behavior.
type HTTP struct {
	Timeout int `koanf:"timeout"` // seconds
}

// Git controls clone behavior.
type Git struct {
	Timeout int `koanf:"timeout"` // seconds
	Depth   int `koanf:"depth"`
}

// Temp controls the scratch directory.
type Temp struct {
	Prefix string `koanf:"prefix"`
}

// Delay bounds waste_time tasks.
type Delay struct {
	Max int `koanf:"max"` // seconds
}

// Config is the merged runtime configuration.
type Config struct {
	Retry Retry `koanf:"retry"`
	HTTP  HTTP  `koanf:"http"`
	Git   Git   `koanf:"git"`
	Temp  Temp  `koanf:"temp"`
	Delay Delay `koanf:"delay"`
}

// BackoffDuration returns the retry backoff as a duration.
func (c *Config) BackoffDuration() time.Duration {
	return time.Duration(c.Retry.Backoff) * time.Millisecond
}

// HTTPTimeout returns the download timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.Timeout) * time.Second
}

// GitTimeout returns the clone timeout as a duration.
func (c *Config) GitTimeout() time.Duration {
	return time.Duration(c.Git.Timeout) * time.Second
}

// MaxDelay returns the waste_time cap as a duration.
func (c *Config) MaxDelay() time.Duration {
	return time.Duration(c.Delay.Max) * time.Second
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Load builds the configuration, layering embedded defaults, an optional
// recipekit.toml in recipeDir, and RECIPEKIT_* environment overrides.
func Load(recipeDir string) (*Config, error) {
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file next to the recipe, if present
	for _, filename := range []string{".recipekit.toml", "recipekit.toml"} {
		path := filepath.Join(recipeDir, filename)
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
			}
			break
		}
	}

	// 3. Environment overrides, e.g. RECIPEKIT_GIT_TIMEOUT=30
	if err := k.Load(env.Provider("RECIPEKIT_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "RECIPEKIT_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in defaults without touching disk or the
// environment. Handy for tests and library callers.
func Default() *Config {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		panic(fmt.Sprintf("embedded defaults are invalid: %v", err))
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		panic(fmt.Sprintf("embedded defaults do not match Config: %v", err))
	}
	return &cfg
}
