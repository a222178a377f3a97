// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm provides the chat-completion clients planterm relays through.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from a provider client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeTimeout
	ErrTypeAuth
	ErrTypeModelNotFound
	ErrTypeRateLimited
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable   = &ClientError{Type: ErrTypeUnreachable, Message: "provider is not reachable"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrAuth          = &ClientError{Type: ErrTypeAuth, Message: "authentication failed"}
	ErrModelNotFound = &ClientError{Type: ErrTypeModelNotFound, Message: "model not found"}
	ErrRateLimited   = &ClientError{Type: ErrTypeRateLimited, Message: "rate limited by provider"}
)

// =============================================================================
// CHAT MESSAGES
// =============================================================================

// Valid chat roles on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of conversation history in wire format.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// =============================================================================
// PROVIDER INTERFACE
// =============================================================================

// Options holds per-request generation settings.
type Options struct {
	// Model overrides the backend's default model when non-empty.
	Model string

	// Temperature in [0, 2]. Zero means "backend default".
	Temperature float64

	// MaxTokens caps the reply length. Zero means "backend default".
	MaxTokens int
}

// Provider is the opaque chat capability the rest of planterm consumes:
// conversation history in, reply text out.
type Provider interface {
	// Name identifies the backend ("ollama", "openai", "anthropic").
	Name() string

	// Chat sends the history and returns the assistant's reply text.
	Chat(ctx context.Context, messages []ChatMessage, opts Options) (string, error)

	// Ping verifies the backend is reachable and configured.
	Ping(ctx context.Context) error
}

// =============================================================================
// PROVIDER SELECTION
// =============================================================================

// Config selects and configures a backend.
type Config struct {
	// Provider is the backend name: "ollama", "openai", or "anthropic".
	Provider string

	Ollama    OllamaConfig
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
}

// Pick constructs the configured provider.
func Pick(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "ollama":
		return NewOllama(cfg.Ollama), nil
	case "openai":
		return NewOpenAI(cfg.OpenAI), nil
	case "anthropic":
		return NewAnthropic(cfg.Anthropic), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want ollama, openai, or anthropic)", cfg.Provider)
	}
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// retryDelay computes the exponential backoff delay for a retry attempt.
func retryDelay(base time.Duration, attempt int) time.Duration {
	d := base << uint(attempt)
	if max := 10 * time.Second; d > max {
		return max
	}
	return d
}
