// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: JSON section store for client configuration.
//
// One file, sections per concern. A missing or broken file degrades to the
// defaults with a log line; configuration can never stop the client from
// starting.

package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
)

const configName = "neoview.json"

// Config stores configuration sections as JSON-compatible data.
type Config map[string]interface{}

// Section stores key/value pairs for a configuration section.
type Section map[string]interface{}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "neoview", configName), nil
}

// Load reads the config at path, or the default path when path is empty.
// Read or parse failures are logged and yield the defaults.
func Load(path string) Config {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			log.Printf("config: no config directory: %v", err)
			cfg := make(Config)
			applyDefaults(cfg)
			return cfg
		}
	}

	cfg, exists, err := readConfig(path)
	if err != nil {
		log.Printf("config: failed to read %s: %v", path, err)
		cfg = make(Config)
	}
	if !exists {
		cfg = make(Config)
	}
	applyDefaults(cfg)
	if err == nil && exists {
		log.Printf("config: loaded %s", path)
	}
	return cfg
}

// Save writes the config to path, creating parent directories.
func Save(path string, cfg Config) error {
	if cfg == nil {
		cfg = make(Config)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func readConfig(path string) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}
