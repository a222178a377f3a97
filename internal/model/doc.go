// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chats and messages.
//
// # Key Types
//
//   - Role: Message sender (user, assistant, system)
//   - Message: Single chat message with content and metadata
//   - Chat: Ordered message history with a title and model name
//
// Assistant messages may carry an optional pre-parsed project plan in
// Message.ProjectPlan. That field is a fallback side channel only: the
// message content is the single source of truth, and rendering always
// re-extracts the plan from the raw text.
package model
