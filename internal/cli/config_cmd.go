// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration subcommands for the planterm CLI.
package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/planterm/planterm/internal/config"
)

// RunConfig handles "planterm config <subcommand>".
func RunConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return configShow()
	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	case "init":
		return configInit()
	case "set":
		return configSet(args.ConfigKey, args.ConfigVal)
	default:
		return fmt.Errorf("unknown config subcommand %q (want show, path, init, or set)", args.Subcommand)
	}
}

func configShow() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// API keys stay out of terminal output.
	redacted := *cfg
	redacted.OpenAI.APIKey = redactKey(cfg.OpenAI.APIKey)
	redacted.Anthropic.APIKey = redactKey(cfg.Anthropic.APIKey)
	redacted.Server.AuthToken = redactKey(cfg.Server.AuthToken)

	return toml.NewEncoder(os.Stdout).Encode(redacted)
}

func redactKey(key string) string {
	if key == "" {
		return ""
	}
	return "(set)"
}

func configInit() error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}

	if err := config.Save(config.Default()); err != nil {
		return err
	}
	fmt.Printf("Wrote default config to %s\n", path)
	return nil
}

// configSet updates a single key in the config file.
func configSet(key, value string) error {
	if key == "" {
		return fmt.Errorf("usage: planterm config set <key> <value>")
	}

	// Edit the file contents only: env overrides must not leak into the
	// saved file, so this does not use config.Load.
	cfg := config.Default()
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if loadErr := config.LoadTOML(cfg, path); loadErr != nil && !os.IsNotExist(loadErr) {
		return loadErr
	}

	if err := applyKey(cfg, key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Printf("Set %s\n", key)
	return nil
}

func applyKey(cfg *config.Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "system_prompt":
		cfg.SystemPrompt = value
	case "ollama.base_url":
		cfg.Ollama.BaseURL = value
	case "ollama.model":
		cfg.Ollama.Model = value
	case "openai.api_key":
		cfg.OpenAI.APIKey = value
	case "openai.base_url":
		cfg.OpenAI.BaseURL = value
	case "openai.model":
		cfg.OpenAI.Model = value
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.base_url":
		cfg.Anthropic.BaseURL = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "server.port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("server.port must be a number")
		}
		cfg.Server.Port = port
	case "server.auth_token":
		cfg.Server.AuthToken = value
	case "storage.backend":
		cfg.Storage.Backend = value
	case "storage.db_path":
		cfg.Storage.DBPath = value
	case "ui.theme":
		cfg.UI.Theme = value
	case "ui.plans_expanded":
		expanded, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("ui.plans_expanded must be true or false")
		}
		cfg.UI.PlansExpanded = expanded
	case "ui.show_timestamps":
		show, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("ui.show_timestamps must be true or false")
		}
		cfg.UI.ShowTimestamps = show
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
