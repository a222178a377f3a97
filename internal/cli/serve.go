// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// serve.go - HTTP API server command for the planterm CLI.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/planterm/planterm/internal/config"
	"github.com/planterm/planterm/internal/llm"
	"github.com/planterm/planterm/internal/server"
	"github.com/planterm/planterm/internal/store"
)

// RunServe handles "planterm serve".
func RunServe(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	provider, err := llm.Pick(cfg.LLM())
	if err != nil {
		return err
	}

	st, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	model := args.Model
	if model == "" {
		model = cfg.Model()
	}

	srv := server.NewServer(cfg.Server, provider, st).
		WithSystemPrompt(cfg.SystemPrompt).
		WithDefaultModel(model)

	// Auth token and rate limit changes apply without a restart.
	if path, err := config.ConfigPath(); err == nil {
		watcher, werr := config.NewWatcher(path,
			func(updated *config.Config) { srv.UpdateConfig(updated.Server) },
			func(werr error) { log.Printf("CONFIG_RELOAD_FAILED | error=%v", werr) },
		)
		if werr == nil && watcher.Watch() == nil {
			defer watcher.Close()
		}
	}

	// Shut down cleanly on SIGINT/SIGTERM.
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-done:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// OpenStore opens the configured chat store.
func OpenStore(cfg *config.Config) (store.Store, error) {
	if cfg.Storage.Backend == "memory" {
		return store.NewMemoryStore(), nil
	}

	path := cfg.Storage.DBPath
	if path == "" {
		var err error
		path, err = config.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	st, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open chat database: %w", err)
	}
	return st, nil
}
