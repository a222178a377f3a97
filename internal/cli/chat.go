// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL for the planterm CLI.
//
// Provides a readline-style loop with input history. Replies render the
// same way as "ask": markdown text plus structured plan outlines.
//
// Interactive commands:
//   /help           Show available commands
//   /clear          Clear conversation history
//   /plan           Reprint the most recent project plan
//   /quit           Exit chat
//   Ctrl+C, Ctrl+D  Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/planterm/planterm/internal/config"
	"github.com/planterm/planterm/internal/llm"
	"github.com/planterm/planterm/internal/model"
	"github.com/planterm/planterm/internal/plan"
	"github.com/planterm/planterm/internal/ui/components"
)

// chatTimeout bounds a single REPL request.
const chatTimeout = 5 * time.Minute

// =============================================================================
// INPUT HISTORY
// =============================================================================

// replInput wraps liner with persistent history.
type replInput struct {
	line        *liner.State
	historyFile string
}

func newReplInput() *replInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	in := &replInput{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	if f, err := os.Open(in.historyFile); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
	return in
}

func (in *replInput) read(prompt string) (string, error) {
	input, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		in.line.AppendHistory(input)
	}
	return input, nil
}

// close saves history and releases the terminal.
func (in *replInput) close() {
	if err := config.EnsureConfigDir(); err == nil {
		// History may contain sensitive prompts, so keep it owner-only.
		if f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			in.line.WriteHistory(f)
			f.Close()
		}
	}
	in.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// RunChat handles "planterm chat".
func RunChat(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	provider, err := llm.Pick(cfg.LLM())
	if err != nil {
		return err
	}

	chat := model.NewChat()
	chat.Model = args.Model
	if chat.Model == "" {
		chat.Model = cfg.Model()
	}
	chat.SystemPrompt = cfg.SystemPrompt

	input := newReplInput()
	defer input.close()

	fmt.Printf("planterm %s | provider: %s | model: %s\n", Version, provider.Name(), chat.Model)
	fmt.Println("Type /help for commands. Ask for a project plan to get a structured one.")

	var lastPlan *plan.ProjectPlan
	for {
		text, err := input.read("planterm> ")
		if err != nil {
			// Ctrl+C or Ctrl+D
			fmt.Println()
			return nil
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "/") {
			if quit := handleSlashCommand(text, chat, lastPlan); quit {
				return nil
			}
			continue
		}

		chat.AddMessage(model.NewUserMessage(text))

		var extra string
		if plan.IsPlanRequest(text) {
			extra = plan.Instruction()
		}

		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		reply, err := provider.Chat(ctx, chat.History(extra), llm.Options{Model: chat.Model})
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "[error] %v\n", err)
			continue
		}

		assistantMsg := model.NewAssistantMessage(reply)
		if parsed := plan.Extract(reply, nil); parsed.Plan != nil {
			assistantMsg.ProjectPlan = parsed.Plan
			lastPlan = parsed.Plan
		}
		chat.AddMessage(assistantMsg)

		fmt.Println()
		printReply(reply)
		fmt.Println()
	}
}

// handleSlashCommand processes a /command. Returns true when the REPL
// should exit.
func handleSlashCommand(cmd string, chat *model.Chat, lastPlan *plan.ProjectPlan) bool {
	switch strings.ToLower(strings.Fields(cmd)[0]) {
	case "/quit", "/q", "/exit":
		return true
	case "/clear", "/c":
		chat.ClearHistory()
		fmt.Println("History cleared.")
	case "/plan":
		if lastPlan == nil {
			fmt.Println("No project plan in this session yet.")
		} else {
			fmt.Println(components.PlanOutline(lastPlan))
		}
	case "/help", "/h":
		fmt.Println("Commands: /clear (reset history), /plan (reprint last plan), /quit")
	default:
		fmt.Printf("Unknown command %s (try /help)\n", cmd)
	}
	return false
}
