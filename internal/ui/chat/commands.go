// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/planterm/planterm/internal/llm"
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// relayCmd sends the conversation history to the provider and returns the
// reply as a ResponseMsg.
func relayCmd(provider llm.Provider, history []llm.ChatMessage, opts llm.Options) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		reply, err := provider.Chat(context.Background(), history, opts)
		if err != nil {
			return ResponseErrMsg{Err: err}
		}
		return ResponseMsg{Reply: reply, Duration: time.Since(start)}
	}
}

// checkBackendCmd pings the provider to report reachability at startup.
func checkBackendCmd(provider llm.Provider) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := provider.Ping(ctx)
		return BackendStatusMsg{Reachable: err == nil, Err: err}
	}
}
