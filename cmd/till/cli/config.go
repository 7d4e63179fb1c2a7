// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// Config is the CLI configuration, read from a JSONC file so operators
// can keep comments and trailing commas in it.
type Config struct {
	// ServerURL is the base URL of the till server. The saved profile's
	// server URL (from "till login") takes precedence when present.
	ServerURL string `json:"server_url"`

	// PageSize is the default page size for "till orders list".
	PageSize int `json:"page_size"`

	// LookupConcurrency bounds the parallel customer lookups during
	// order aggregation.
	LookupConcurrency int `json:"lookup_concurrency"`
}

// DefaultConfig returns the configuration used when no config file
// exists.
func DefaultConfig() Config {
	return Config{
		ServerURL:         "http://localhost:5000",
		PageSize:          10,
		LookupConcurrency: 8,
	}
}

// ConfigFilePath returns the path of the CLI config file:
// $TILL_CONFIG_FILE if set, otherwise ~/.config/till/config.jsonc
// (honoring $XDG_CONFIG_HOME).
func ConfigFilePath() string {
	if path := os.Getenv("TILL_CONFIG_FILE"); path != "" {
		return path
	}
	return filepath.Join(configDir(), "config.jsonc")
}

// SessionFilePath returns the path of the saved session token file:
// $TILL_SESSION_FILE if set, otherwise ~/.config/till/session.json.
func SessionFilePath() string {
	if path := os.Getenv("TILL_SESSION_FILE"); path != "" {
		return path
	}
	return filepath.Join(configDir(), "session.json")
}

// ProfileFilePath returns the path of the saved profile file, which
// lives next to the session token file.
func ProfileFilePath() string {
	return filepath.Join(filepath.Dir(SessionFilePath()), "profile.json")
}

// configDir returns the till configuration directory.
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "till")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory: fall back to a relative path so the
		// error surfaces as a file error at the call site.
		return ".till"
	}
	return filepath.Join(home, ".config", "till")
}

// LoadConfig reads the config file. A missing file yields the
// defaults. Values absent from the file keep their defaults, so a
// config containing only server_url leaves paging untouched.
func LoadConfig() (Config, error) {
	path := ConfigFilePath()
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, fmt.Errorf("reading config file %s: %w", path, err)
	}

	// Strip comments and trailing commas before handing the document
	// to encoding/json.
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return config, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if config.PageSize < 1 {
		return config, fmt.Errorf("config file %s: page_size must be positive, got %d", path, config.PageSize)
	}
	if config.LookupConcurrency < 1 {
		return config, fmt.Errorf("config file %s: lookup_concurrency must be positive, got %d", path, config.LookupConcurrency)
	}
	return config, nil
}
