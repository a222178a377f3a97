// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for planterm.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. File location (in order of precedence):
//   - ~/.planterm/config.toml
//   - Built-in defaults
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/planterm/planterm/internal/llm"
	"github.com/planterm/planterm/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete planterm configuration.
type Config struct {
	// Provider selects the chat backend: "ollama", "openai", or "anthropic".
	Provider string `toml:"provider"`

	// SystemPrompt is prepended to every conversation when non-empty.
	SystemPrompt string `toml:"system_prompt"`

	// Ollama configuration
	Ollama OllamaConfig `toml:"ollama"`

	// OpenAI configuration
	OpenAI OpenAIConfig `toml:"openai"`

	// Anthropic configuration
	Anthropic AnthropicConfig `toml:"anthropic"`

	// Server configuration
	Server ServerConfig `toml:"server"`

	// Storage configuration
	Storage StorageConfig `toml:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// OllamaConfig contains local Ollama settings.
type OllamaConfig struct {
	// BaseURL is the URL of the Ollama server
	BaseURL string `toml:"base_url"`
	// Model is the default model to use with Ollama
	Model string `toml:"model"`
	// TimeoutSecs is the per-request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs"`
}

// OpenAIConfig contains OpenAI API settings.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key (also settable via OPENAI_API_KEY)
	APIKey string `toml:"api_key"`
	// BaseURL overrides the API endpoint (for proxies and compatible servers)
	BaseURL string `toml:"base_url"`
	// Model is the default OpenAI model
	Model string `toml:"model"`
	// TimeoutSecs is the per-request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs"`
}

// AnthropicConfig contains Anthropic API settings.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key (also settable via ANTHROPIC_API_KEY)
	APIKey string `toml:"api_key"`
	// BaseURL overrides the API endpoint
	BaseURL string `toml:"base_url"`
	// Model is the default Anthropic model
	Model string `toml:"model"`
	// TimeoutSecs is the per-request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs"`
	// MaxTokens caps the response length (0 = provider default)
	MaxTokens int `toml:"max_tokens"`
}

// ServerConfig contains HTTP API server settings.
type ServerConfig struct {
	// Host is the bind address for the API server
	Host string `toml:"host"`
	// Port is the listen port for the API server
	Port int `toml:"port"`
	// AuthToken, when non-empty, requires Bearer authentication on /api routes
	AuthToken string `toml:"auth_token"`
	// RateLimitRPS limits requests per second (0 = unlimited)
	RateLimitRPS float64 `toml:"rate_limit_rps"`
	// CORSEnabled enables permissive CORS headers for browser clients
	CORSEnabled bool `toml:"cors_enabled"`
}

// StorageConfig contains chat persistence settings.
type StorageConfig struct {
	// Backend selects chat persistence: "sqlite" or "memory"
	Backend string `toml:"backend"`
	// DBPath is the SQLite database path (empty = ~/.planterm/chats.db)
	DBPath string `toml:"db_path"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme selects the color theme: "dark" or "light"
	Theme string `toml:"theme"`
	// ShowTimestamps displays message timestamps in the chat view
	ShowTimestamps bool `toml:"show_timestamps"`
	// PlansExpanded renders project plan panels expanded by default
	PlansExpanded bool `toml:"plans_expanded"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Provider: "ollama",
		Ollama: OllamaConfig{
			BaseURL:     "http://127.0.0.1:11434",
			Model:       "qwen2.5-coder:14b",
			TimeoutSecs: 120,
		},
		OpenAI: OpenAIConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			TimeoutSecs: 120,
		},
		Anthropic: AnthropicConfig{
			BaseURL:     "https://api.anthropic.com",
			Model:       "claude-sonnet-4-20250514",
			TimeoutSecs: 120,
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8737,
			RateLimitRPS: 10,
			CORSEnabled:  false,
		},
		Storage: StorageConfig{
			Backend: "sqlite",
		},
		UI: UIConfig{
			Theme:          "dark",
			ShowTimestamps: false,
			PlansExpanded:  false,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the planterm configuration directory (~/.planterm).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".planterm"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultDBPath returns the default SQLite database path.
func DefaultDBPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chats.db"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	return nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from the default location.
//
// Falls back to built-in defaults when no config file exists. Environment
// overrides are applied after loading, then the result is validated.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if loadErr := LoadTOML(cfg, path); loadErr != nil && !errors.Is(loadErr, os.ErrNotExist) {
			return nil, loadErr
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath reads configuration from an explicit file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTOML decodes a TOML config file into cfg, leaving defaults in place
// for any keys the file does not set.
func LoadTOML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("invalid TOML in %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes cfg to the default config location atomically with 0600 perms.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML to path.
func SaveTOML(cfg *Config, path string) error {
	var buf strings.Builder
	buf.WriteString("# planterm configuration file\n")
	buf.WriteString("# See https://github.com/planterm/planterm for documentation\n\n")

	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("cannot encode config: %w", err)
	}

	// Config may hold API keys, so keep it owner-only.
	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("cannot write config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid configuration value.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidateErrors aggregates all validation failures.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return fmt.Sprintf("%d config errors:\n  %s", len(e), strings.Join(msgs, "\n  "))
}

// Validate checks the configuration for invalid values. All failures are
// collected so the user can fix them in one pass.
func (c *Config) Validate() error {
	var errs ValidateErrors

	switch c.Provider {
	case "", "ollama", "openai", "anthropic":
	default:
		errs = append(errs, ValidationError{
			Field:   "provider",
			Message: fmt.Sprintf("unknown provider %q (want ollama, openai, or anthropic)", c.Provider),
		})
	}

	for _, u := range []struct {
		field string
		value string
	}{
		{"ollama.base_url", c.Ollama.BaseURL},
		{"openai.base_url", c.OpenAI.BaseURL},
		{"anthropic.base_url", c.Anthropic.BaseURL},
	} {
		if u.value == "" {
			continue
		}
		parsed, err := url.Parse(u.value)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			errs = append(errs, ValidationError{
				Field:   u.field,
				Message: fmt.Sprintf("invalid URL %q", u.value),
			})
		}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port %d out of range", c.Server.Port),
		})
	}
	if c.Server.RateLimitRPS < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.rate_limit_rps",
			Message: "must not be negative",
		})
	}

	switch c.Storage.Backend {
	case "", "sqlite", "memory":
	default:
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("unknown backend %q (want sqlite or memory)", c.Storage.Backend),
		})
	}

	switch c.UI.Theme {
	case "", "dark", "light":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("unknown theme %q (want dark or light)", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// PLANTERM_* variables take precedence over file values; the conventional
// provider key variables (OPENAI_API_KEY, ANTHROPIC_API_KEY) fill in keys
// only when the file left them empty.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PLANTERM_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("PLANTERM_SYSTEM_PROMPT"); v != "" {
		c.SystemPrompt = v
	}
	if v := os.Getenv("PLANTERM_OLLAMA_URL"); v != "" {
		c.Ollama.BaseURL = v
	}
	if v := os.Getenv("PLANTERM_MODEL"); v != "" {
		switch c.Provider {
		case "openai":
			c.OpenAI.Model = v
		case "anthropic":
			c.Anthropic.Model = v
		default:
			c.Ollama.Model = v
		}
	}
	if v := os.Getenv("PLANTERM_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("PLANTERM_AUTH_TOKEN"); v != "" {
		c.Server.AuthToken = v
	}
	if v := os.Getenv("PLANTERM_DB_PATH"); v != "" {
		c.Storage.DBPath = v
	}

	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Anthropic.APIKey == "" {
		c.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
}

// =============================================================================
// PROVIDER WIRING
// =============================================================================

// LLM translates the configuration into the llm package's provider config.
func (c *Config) LLM() llm.Config {
	return llm.Config{
		Provider: c.Provider,
		Ollama: llm.OllamaConfig{
			BaseURL: c.Ollama.BaseURL,
			Model:   c.Ollama.Model,
			Timeout: secsToDuration(c.Ollama.TimeoutSecs),
		},
		OpenAI: llm.OpenAIConfig{
			APIKey:  c.OpenAI.APIKey,
			BaseURL: c.OpenAI.BaseURL,
			Model:   c.OpenAI.Model,
			Timeout: secsToDuration(c.OpenAI.TimeoutSecs),
		},
		Anthropic: llm.AnthropicConfig{
			APIKey:    c.Anthropic.APIKey,
			BaseURL:   c.Anthropic.BaseURL,
			Model:     c.Anthropic.Model,
			Timeout:   secsToDuration(c.Anthropic.TimeoutSecs),
			MaxTokens: c.Anthropic.MaxTokens,
		},
	}
}

// Model returns the configured model for the active provider.
func (c *Config) Model() string {
	switch c.Provider {
	case "openai":
		return c.OpenAI.Model
	case "anthropic":
		return c.Anthropic.Model
	default:
		return c.Ollama.Model
	}
}

func secsToDuration(secs int) time.Duration {
	if secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
