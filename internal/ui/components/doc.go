// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the planterm TUI.
//
// Components take a *styles.Theme and render to strings; they hold no
// bubbletea state of their own except the Spinner, which wraps the
// bubbles spinner model.
//
// # Key Types
//
//   - MessageBubble / MessageList: chat messages rendered by role, with
//     assistant replies split into ordered text and plan regions
//   - PlanView: collapsible project plan panel with workstream outline
//   - CodeBlock: chroma-highlighted fenced code blocks
//   - Spinner: "thinking" indicator with elapsed time
package components
