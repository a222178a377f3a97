// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command for the planterm CLI.
//
// Sends one question to the configured provider and prints the reply.
// Markdown is rendered with glamour when stdout is a terminal; a reply
// carrying a project plan block prints the structured outline in place
// of the raw tags.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/planterm/planterm/internal/config"
	"github.com/planterm/planterm/internal/llm"
	"github.com/planterm/planterm/internal/plan"
	"github.com/planterm/planterm/internal/ui/components"
)

// askTimeout bounds a single ask request.
const askTimeout = 5 * time.Minute

// RunAsk handles "planterm ask <question>".
func RunAsk(args Args) error {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return fmt.Errorf("usage: planterm ask <question>")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	provider, err := llm.Pick(cfg.LLM())
	if err != nil {
		return err
	}

	messages := []llm.ChatMessage{}
	if cfg.SystemPrompt != "" {
		messages = append(messages, llm.ChatMessage{Role: llm.RoleSystem, Content: cfg.SystemPrompt})
	}
	if plan.IsPlanRequest(query) {
		messages = append(messages, llm.ChatMessage{Role: llm.RoleSystem, Content: plan.Instruction()})
	}
	messages = append(messages, llm.ChatMessage{Role: llm.RoleUser, Content: query})

	opts := llm.Options{Model: args.Model}
	if opts.Model == "" {
		opts.Model = cfg.Model()
	}

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	reply, err := provider.Chat(ctx, messages, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", provider.Name(), err)
	}

	printReply(reply)
	return nil
}

// printReply renders the reply region by region: text as markdown, plan
// blocks as plain-text outlines.
func printReply(reply string) {
	for _, region := range plan.Regions(reply, nil) {
		switch region.Kind {
		case plan.RegionPlan:
			fmt.Println(components.PlanOutline(region.Plan))
		default:
			fmt.Println(renderMarkdown(region.Text))
		}
	}
}

// renderMarkdown renders markdown for terminals, falling back to the raw
// text for pipes or on renderer failure.
func renderMarkdown(text string) string {
	if !IsStdoutTTY() {
		return text
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(TerminalWidth()),
	)
	if err != nil {
		return text
	}

	out, err := renderer.Render(text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "markdown rendering failed: %v\n", err)
		return text
	}
	return strings.TrimRight(out, "\n")
}
