// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
}

func TestLoadTOMLPartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
provider = "openai"

[openai]
model = "gpt-4o"

[server]
port = 9000
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}

	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", cfg.Provider)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("OpenAI.Model = %q, want gpt-4o", cfg.OpenAI.Model)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	// Keys the file does not set keep their defaults.
	if cfg.Ollama.BaseURL != "http://127.0.0.1:11434" {
		t.Errorf("Ollama.BaseURL lost its default: %q", cfg.Ollama.BaseURL)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Storage.Backend lost its default: %q", cfg.Storage.Backend)
	}
}

func TestLoadTOMLMissingFile(t *testing.T) {
	cfg := Default()
	err := LoadTOML(cfg, filepath.Join(t.TempDir(), "nope.toml"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadTOMLInvalidSyntax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("provider = [broken"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := LoadTOML(Default(), path); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Provider = "gemini"
	cfg.Server.Port = 99999
	cfg.Storage.Backend = "postgres"
	cfg.UI.Theme = "solarized"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	verrs, ok := err.(ValidateErrors)
	if !ok {
		t.Fatalf("expected ValidateErrors, got %T", err)
	}
	if len(verrs) != 4 {
		t.Errorf("got %d errors, want 4: %v", len(verrs), err)
	}
}

func TestValidateBadURL(t *testing.T) {
	cfg := Default()
	cfg.Ollama.BaseURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bad URL")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PLANTERM_PROVIDER", "anthropic")
	t.Setenv("PLANTERM_MODEL", "claude-opus-4-20250514")
	t.Setenv("PLANTERM_SERVER_PORT", "8080")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Provider != "anthropic" {
		t.Errorf("Provider = %q, want anthropic", cfg.Provider)
	}
	if cfg.Anthropic.Model != "claude-opus-4-20250514" {
		t.Errorf("Anthropic.Model = %q", cfg.Anthropic.Model)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Anthropic.APIKey != "sk-test" {
		t.Errorf("Anthropic.APIKey = %q", cfg.Anthropic.APIKey)
	}
}

func TestEnvDoesNotClobberFileKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg := Default()
	cfg.OpenAI.APIKey = "sk-file"
	cfg.ApplyEnvOverrides()

	if cfg.OpenAI.APIKey != "sk-file" {
		t.Errorf("file key was clobbered by env: %q", cfg.OpenAI.APIKey)
	}
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	want := Default()
	want.Provider = "openai"
	want.OpenAI.APIKey = "sk-secret"
	want.Server.Port = 9999

	if err := SaveTOML(want, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file perms = %o, want 0600", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# planterm configuration file") {
		t.Error("saved file missing header comment")
	}

	got := Default()
	if err := LoadTOML(got, path); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Provider != "openai" || got.OpenAI.APIKey != "sk-secret" || got.Server.Port != 9999 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestLLMWiring(t *testing.T) {
	cfg := Default()
	cfg.Provider = "anthropic"
	cfg.Anthropic.APIKey = "sk-a"
	cfg.Anthropic.TimeoutSecs = 30
	cfg.Anthropic.MaxTokens = 2048

	lc := cfg.LLM()
	if lc.Provider != "anthropic" {
		t.Errorf("Provider = %q", lc.Provider)
	}
	if lc.Anthropic.APIKey != "sk-a" {
		t.Errorf("APIKey = %q", lc.Anthropic.APIKey)
	}
	if lc.Anthropic.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", lc.Anthropic.Timeout)
	}
	if lc.Anthropic.MaxTokens != 2048 {
		t.Errorf("MaxTokens = %d", lc.Anthropic.MaxTokens)
	}
}

func TestModelForProvider(t *testing.T) {
	cfg := Default()
	if cfg.Model() != cfg.Ollama.Model {
		t.Errorf("default provider model = %q", cfg.Model())
	}
	cfg.Provider = "openai"
	if cfg.Model() != cfg.OpenAI.Model {
		t.Errorf("openai model = %q", cfg.Model())
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.Provider = "openai"
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-reloaded:
		if got.Provider != "openai" {
			t.Errorf("reloaded Provider = %q, want openai", got.Provider)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not reload within 3s")
	}
}

func TestWatcherReportsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatal(err)
	}

	errs := make(chan error, 1)
	w, err := NewWatcher(path, func(cfg *Config) {}, func(err error) {
		select {
		case errs <- err:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("provider = [broken"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-errs:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the invalid config within 3s")
	}
}
