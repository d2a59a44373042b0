// Package config resolves touchsweep settings from built-in defaults, an INI
// file and TOUCHSWEEP_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/mobile-next/touchsweep/gesture"
	"github.com/mobile-next/touchsweep/surface"
	"gopkg.in/ini.v1"
)

const (
	DefaultListen = "localhost:12000"

	configDir  = ".touchsweep"
	configFile = "config.ini"
)

// Config is the resolved configuration. Source names the INI file that was
// read, or is empty when none was.
type Config struct {
	Threshold    float64 `env:"TOUCHSWEEP_THRESHOLD"`
	Listen       string  `env:"TOUCHSWEEP_LISTEN"`
	CORS         bool    `env:"TOUCHSWEEP_CORS"`
	Auth         bool    `env:"TOUCHSWEEP_AUTH"`
	RegistrySize int     `env:"TOUCHSWEEP_REGISTRY_SIZE"`
	Verbose      bool    `env:"TOUCHSWEEP_VERBOSE"`
	Source       string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Threshold:    gesture.DefaultThreshold,
		Listen:       DefaultListen,
		RegistrySize: surface.DefaultRegistrySize,
	}
}

// DefaultPath returns ~/.touchsweep/config.ini.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir, configFile), nil
}

// Load resolves the configuration. An empty path means DefaultPath, which
// may be missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	file, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	root := file.Section("")
	if root.HasKey("verbose") {
		c.Verbose = root.Key("verbose").MustBool(c.Verbose)
	}

	tracker := file.Section("tracker")
	if tracker.HasKey("threshold") {
		threshold, err := tracker.Key("threshold").Float64()
		if err != nil {
			return fmt.Errorf("%s: [tracker] threshold: %w", path, err)
		}
		c.Threshold = threshold
	}

	srv := file.Section("server")
	if srv.HasKey("listen") {
		c.Listen = srv.Key("listen").String()
	}
	if srv.HasKey("cors") {
		c.CORS = srv.Key("cors").MustBool(c.CORS)
	}
	if srv.HasKey("auth") {
		c.Auth = srv.Key("auth").MustBool(c.Auth)
	}

	registry := file.Section("registry")
	if registry.HasKey("size") {
		size, err := registry.Key("size").Int()
		if err != nil {
			return fmt.Errorf("%s: [registry] size: %w", path, err)
		}
		c.RegistrySize = size
	}

	c.Source = path
	return nil
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	if c.Threshold <= 0 || math.IsNaN(c.Threshold) || math.IsInf(c.Threshold, 0) {
		return fmt.Errorf("threshold must be a positive number, got %v", c.Threshold)
	}
	if c.RegistrySize <= 0 {
		return fmt.Errorf("registry size must be positive, got %d", c.RegistrySize)
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	return nil
}
