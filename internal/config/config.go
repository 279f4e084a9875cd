// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

// Package config loads and persists the TOML configuration at
// ~/.cheap-gpt/config.toml. Missing files yield defaults; environment
// variables override whatever was loaded.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// ===== TYPES =====

// Config is the full on-disk configuration.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Chat    ChatConfig    `toml:"chat"`
	UI      UIConfig      `toml:"ui"`
}

// BackendConfig controls how the transport reaches the server.
type BackendConfig struct {
	URL          string `toml:"url"`
	TimeoutSecs  int    `toml:"timeout_secs"`
	HistoryLimit int    `toml:"history_limit"`
}

// ChatConfig holds conversation defaults.
type ChatConfig struct {
	DefaultModel string `toml:"default_model"`
}

// UIConfig holds presentation preferences.
type UIConfig struct {
	Theme          string `toml:"theme"` // "dark", "light", or "auto"
	ShowTimestamps bool   `toml:"show_timestamps"`
	CompactMode    bool   `toml:"compact_mode"`
}

// ===== DEFAULTS =====

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:          "http://localhost:8000",
			TimeoutSecs:  30,
			HistoryLimit: 20,
		},
		Chat: ChatConfig{
			DefaultModel: "auto",
		},
		UI: UIConfig{
			Theme:          "auto",
			ShowTimestamps: true,
		},
	}
}

// Timeout returns the request deadline as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// ===== PATHS =====

// ConfigDir returns the directory holding the config file,
// ~/.cheap-gpt by default.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".cheap-gpt"), nil
}

// ConfigPath returns the full path of the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ===== LOAD / SAVE =====

// Load reads the config file, fills in defaults for anything missing,
// applies environment overrides, and validates the result. A missing
// file is not an error.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit path, for tests and the --config
// flag.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run: defaults plus env.
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		ensureSecurePermissions(path)
	}

	cfg.applyEnvOverrides()
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to its default location, creating the
// directory on first use.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.toml")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ===== OVERRIDES & VALIDATION =====

// applyEnvOverrides lets CHEAPGPT_* variables win over the file, so a
// one-off backend can be targeted without editing anything.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CHEAPGPT_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("CHEAPGPT_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Backend.TimeoutSecs = n
		}
	}
	if v := os.Getenv("CHEAPGPT_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Backend.HistoryLimit = n
		}
	}
	if v := os.Getenv("CHEAPGPT_MODEL"); v != "" {
		c.Chat.DefaultModel = v
	}
	if v := os.Getenv("CHEAPGPT_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// setDefaults backfills zero values left by a partial config file.
func (c *Config) setDefaults() {
	def := Default()
	if c.Backend.URL == "" {
		c.Backend.URL = def.Backend.URL
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = def.Backend.TimeoutSecs
	}
	if c.Backend.HistoryLimit == 0 {
		c.Backend.HistoryLimit = def.Backend.HistoryLimit
	}
	if c.Chat.DefaultModel == "" {
		c.Chat.DefaultModel = def.Chat.DefaultModel
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
}

// Validate rejects configurations the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.url %q is not a valid http(s) URL", c.Backend.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.url scheme %q is not supported", u.Scheme)
	}
	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 600 {
		return fmt.Errorf("backend.timeout_secs %d out of range [1, 600]", c.Backend.TimeoutSecs)
	}
	if c.Backend.HistoryLimit < 1 || c.Backend.HistoryLimit > 500 {
		return fmt.Errorf("backend.history_limit %d out of range [1, 500]", c.Backend.HistoryLimit)
	}
	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return fmt.Errorf("ui.theme %q must be dark, light, or auto", c.UI.Theme)
	}
	return nil
}

// ensureSecurePermissions tightens the config file to owner-only.
// SECURITY: the file may point at an internal backend; keep it private.
func ensureSecurePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.Mode().Perm() != 0o600 {
		_ = os.Chmod(path, 0o600)
	}
}
