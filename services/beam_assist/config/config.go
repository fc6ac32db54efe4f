// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates the BeamBuddy configuration file.
//
// The file is YAML. A missing file is not an error: defaults apply, and the
// runtime connection simply stays down until a file appears.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig indicates the file parsed but failed validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultPath is where Load looks when no explicit path is given.
const DefaultPath = "~/.config/beambuddy/config.yaml"

// Runtime configures the connection to the beamline control runtime.
type Runtime struct {
	// Endpoint is the websocket URL of the runtime's namespace feed.
	Endpoint string `yaml:"endpoint" validate:"omitempty,uri"`

	// ReconnectInterval is the minimum delay between reconnect attempts.
	ReconnectInterval time.Duration `yaml:"reconnect_interval" validate:"min=0"`

	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration `yaml:"handshake_timeout" validate:"min=0"`
}

// Completions configures the completion provider.
type Completions struct {
	// Eager resolves documentation for every item up front instead of
	// deferring it to the client's resolve round trip.
	Eager bool `yaml:"eager"`

	// Fuzzy enables subsequence matching instead of prefix matching.
	Fuzzy bool `yaml:"fuzzy"`

	// ResolveAtMost caps how many items get documentation attached when
	// Eager is set.
	ResolveAtMost int `yaml:"resolve_at_most" validate:"min=0"`
}

// Logging configures the server's log output.
type Logging struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" validate:"oneof=debug info warn error"`

	// Dir enables file logging to the given directory; stdout is
	// reserved for the protocol stream either way.
	Dir string `yaml:"dir"`
}

// Config is the root configuration document.
type Config struct {
	Runtime     Runtime     `yaml:"runtime"`
	Completions Completions `yaml:"completions"`
	Logging     Logging     `yaml:"logging"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Runtime: Runtime{
			ReconnectInterval: 5 * time.Second,
			HandshakeTimeout:  10 * time.Second,
		},
		Completions: Completions{
			Eager:         false,
			Fuzzy:         true,
			ResolveAtMost: 25,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Equal reports whether two configurations are identical. The runtime
// client uses this to decide whether a restart is needed.
func (c Config) Equal(other Config) bool {
	return c == other
}

// ExpandPath resolves a leading ~ against the current user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// Load reads the configuration at path, layering it over DefaultConfig.
//
// Description:
//
//	A missing file returns the defaults with no error. A file that fails
//	to parse or validate returns the defaults alongside the error so the
//	caller can keep running on known-good settings.
//
// Inputs:
//
//	path - File path, ~ expanded. Empty means DefaultPath.
//
// Outputs:
//
//	Config - The effective configuration.
//	error - Parse or validation failure, nil for a missing file.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}
	path = ExpandPath(path)

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}
