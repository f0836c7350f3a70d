// Copyright © 2026 Texel5250 contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: JSON configuration store for texel5250.

package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const systemConfigName = "config.json"

// Config holds the user-tunable session settings.
type Config struct {
	Rows         int    `json:"rows"`
	Cols         int    `json:"cols"`
	CCSID        int    `json:"ccsid"`
	TraceEnabled bool   `json:"traceEnabled"`
	TracePath    string `json:"tracePath"`
}

var (
	mu      sync.RWMutex
	once    sync.Once
	current Config
	loadErr error
)

// Default returns the baseline configuration: a 24x80 model 2 display with
// the US/Canada code page and tracing off.
func Default() Config {
	return Config{
		Rows:  24,
		Cols:  80,
		CCSID: 37,
	}
}

func applyDefaults(c *Config) {
	def := Default()
	if c.Rows <= 0 {
		c.Rows = def.Rows
	}
	if c.Cols <= 0 {
		c.Cols = def.Cols
	}
	if c.CCSID == 0 {
		c.CCSID = def.CCSID
	}
	if c.TraceEnabled && c.TracePath == "" {
		root, err := configRoot()
		if err == nil {
			c.TracePath = filepath.Join(root, "trace.db")
		}
	}
}

func initStore() {
	path, err := systemConfigPath()
	if err != nil {
		log.Printf("Config: Failed to resolve config path: %v", err)
		current = Default()
		loadErr = err
		return
	}
	cfg, exists, err := readConfig(path)
	if err != nil {
		log.Printf("Config: Failed to read %s: %v", path, err)
		current = Default()
		loadErr = err
		return
	}
	applyDefaults(&cfg)
	current = cfg
	if !exists {
		if err := writeConfig(path, cfg); err != nil {
			log.Printf("Config: Failed to write default config: %v", err)
			loadErr = err
		}
	}
}

// System returns the loaded configuration, reading it on first use.
func System() Config {
	once.Do(initStore)
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Err returns the most recent load error.
func Err() error {
	once.Do(initStore)
	mu.RLock()
	defer mu.RUnlock()
	return loadErr
}

// Update replaces the in-memory configuration and persists it.
func Update(cfg Config) error {
	once.Do(initStore)
	applyDefaults(&cfg)
	path, err := systemConfigPath()
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	if err := writeConfig(path, cfg); err != nil {
		return err
	}
	current = cfg
	return nil
}

func readConfig(path string) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), false, nil
	}
	if err != nil {
		return Config{}, false, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, true, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, true, nil
}

func writeConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
