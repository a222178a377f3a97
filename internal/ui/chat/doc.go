// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for planterm.
//
// The view owns a single conversation: typed messages are relayed to the
// configured LLM provider and replies are rendered inline, with project
// plan blocks shown as collapsible panels between the surrounding text.
//
// # Key Types
//
//   - Model: the tea.Model with input, viewport, spinner, and key handling
//   - KeyMap: keyboard shortcuts (Enter send, C-p toggle plans, C-c quit)
//
// Messages are persisted through the store as they are exchanged; a
// storage failure surfaces as an error banner without interrupting the
// conversation.
package chat
