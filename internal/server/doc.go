// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the HTTP API for planterm chats.
//
// The server exposes a small REST surface over the chat store and relays
// conversation history to the configured LLM provider. Assistant replies
// that carry a well-formed project plan block are surfaced with a
// structured plan alongside the verbatim content.
//
// # Key Types
//
//   - Server: the HTTP server with routing and middleware
//   - Stats: usage counters exposed at /stats
//
// # Endpoints
//
//   - POST   /api/chats                - create a chat
//   - GET    /api/chats                - list chats
//   - GET    /api/chats/{id}           - get a chat with messages
//   - DELETE /api/chats/{id}           - delete a chat
//   - POST   /api/chats/{id}/messages  - send a message, relay to the LLM
//   - GET    /health                   - health check
//   - GET    /stats                    - usage statistics
//
// # Middleware
//
// Requests pass through panic recovery, security headers, logging,
// optional CORS, a global token-bucket rate limit, and optional Bearer
// authentication, in that order.
package server
