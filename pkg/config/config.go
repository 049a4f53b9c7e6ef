// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
// Package config loads the TOML configuration of the sgpt tool.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/gwangyi/pysgutils/pkg/logger"
)

// Config holds the settings of the sgpt tool. Command line options
// override whatever the file says.
type Config struct {
	Device         string `toml:"device"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	LogLevel       string `toml:"log_level"`
	Verbose        bool   `toml:"verbose"`
}

// Default returns the settings used when no config file is given.
func Default() Config {
	return Config{
		TimeoutSeconds: 60,
		LogLevel:       "info",
	}
}

// Load reads a TOML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	loaded := Default()
	if _, err := toml.DecodeFile(path, &loaded); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := loaded.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return loaded, nil
}

// Validate rejects settings no command could run with.
func (config Config) Validate() error {
	if config.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", config.TimeoutSeconds)
	}
	if _, ok := logger.ParseLevel(config.LogLevel); !ok {
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}
	return nil
}
