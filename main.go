// planterm - chat with an LLM, get structured project plans.
//
// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/planterm/planterm/internal/cli"
	"github.com/planterm/planterm/internal/config"
	"github.com/planterm/planterm/internal/llm"
	"github.com/planterm/planterm/internal/model"
	"github.com/planterm/planterm/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args)
	case cli.CmdAsk:
		err = cli.RunAsk(args)
	case cli.CmdChat:
		err = cli.RunChat(args)
	case cli.CmdServe:
		err = cli.RunServe(args)
	case cli.CmdStatus:
		err = cli.RunStatus(args)
	case cli.CmdConfig:
		err = cli.RunConfig(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		err = runTUI(args)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI starts the full-screen chat interface.
func runTUI(args cli.Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	provider, err := llm.Pick(cfg.LLM())
	if err != nil {
		return err
	}

	st, err := cli.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	c := model.NewChat()
	c.Model = args.Model
	if c.Model == "" {
		c.Model = cfg.Model()
	}
	c.SystemPrompt = cfg.SystemPrompt

	p := tea.NewProgram(
		chat.NewModel(cfg, provider, st, c),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running planterm: %w", err)
	}
	return nil
}
