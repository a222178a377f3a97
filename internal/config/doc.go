// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for planterm.
//
// Configuration is a single TOML file at ~/.planterm/config.toml with
// built-in defaults for every key and environment variable overrides
// applied on top (PLANTERM_* plus the conventional OPENAI_API_KEY and
// ANTHROPIC_API_KEY).
//
// # Key Types
//
//   - Config: the complete configuration tree
//   - ValidationError / ValidateErrors: per-field validation failures
//   - Watcher: fsnotify-based hot reload of the config file
//
// # Usage
//
// Load configuration with defaults, file, and environment applied:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	provider, err := llm.Pick(cfg.LLM())
//
// Watch for changes:
//
//	w, _ := config.NewWatcher(path, func(cfg *config.Config) {
//	    // swap in the new config
//	}, nil)
//	_ = w.Watch()
//	defer w.Close()
package config
