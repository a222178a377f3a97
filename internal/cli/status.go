// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Backend connectivity check for the planterm CLI.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/planterm/planterm/internal/config"
	"github.com/planterm/planterm/internal/llm"
)

// RunStatus handles "planterm status".
func RunStatus(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	provider, err := llm.Pick(cfg.LLM())
	if err != nil {
		return err
	}

	fmt.Printf("provider:  %s\n", provider.Name())
	fmt.Printf("model:     %s\n", cfg.Model())
	fmt.Printf("storage:   %s\n", storageSummary(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := provider.Ping(ctx); err != nil {
		fmt.Printf("backend:   unreachable (%v)\n", err)
		return nil
	}
	fmt.Printf("backend:   ok (%s)\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func storageSummary(cfg *config.Config) string {
	if cfg.Storage.Backend == "memory" {
		return "memory"
	}
	path := cfg.Storage.DBPath
	if path == "" {
		if p, err := config.DefaultDBPath(); err == nil {
			path = p
		}
	}
	return fmt.Sprintf("sqlite (%s)", path)
}
