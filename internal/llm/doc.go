// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm provides the chat-completion clients planterm relays
// messages through.
//
// The rest of the application treats a model as one opaque capability:
// hand it the conversation history, get back the reply text. Three
// backends implement that capability:
//
//   - Ollama: local inference over the Ollama HTTP API
//   - OpenAI: any OpenAI-compatible /v1/chat/completions endpoint
//   - Anthropic: the Anthropic /v1/messages API
//
// All backends speak plain HTTP with encoding/json; there are no vendor
// SDKs involved. Errors are reported as *ClientError values categorized
// by ErrorType, with sentinel values for the common cases.
package llm
