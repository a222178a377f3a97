// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm provides the chat-completion clients planterm relays through.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// ANTHROPIC CONFIGURATION
// =============================================================================

// anthropicVersion is the API version header value.
const anthropicVersion = "2023-06-01"

// anthropicDefaultMaxTokens is used when the caller does not cap the
// reply; the /v1/messages API requires max_tokens to be set.
const anthropicDefaultMaxTokens = 4096

// AnthropicConfig holds settings for the Anthropic backend.
type AnthropicConfig struct {
	// BaseURL is the API root (default: https://api.anthropic.com).
	BaseURL string

	// APIKey is the x-api-key value.
	APIKey string

	// Model is the default model (default: "claude-3-5-sonnet-latest").
	Model string

	// Timeout for chat requests (default: 120s).
	Timeout time.Duration

	// MaxTokens caps the response length when the per-request option does
	// not set one (default: 4096).
	MaxTokens int
}

func (c *AnthropicConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.anthropic.com"
	}
	if c.Model == "" {
		c.Model = "claude-3-5-sonnet-latest"
	}
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
}

// =============================================================================
// ANTHROPIC CLIENT
// =============================================================================

// Anthropic is the Anthropic /v1/messages backend. Safe for concurrent use.
type Anthropic struct {
	config     AnthropicConfig
	httpClient *http.Client
}

// NewAnthropic creates an Anthropic backend.
func NewAnthropic(config AnthropicConfig) *Anthropic {
	config.applyDefaults()
	return &Anthropic{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name implements Provider.
func (a *Anthropic) Name() string { return "anthropic" }

// Ping verifies the backend is configured. The messages API has no cheap
// unauthenticated health endpoint, so this only checks local config.
func (a *Anthropic) Ping(ctx context.Context) error {
	if a.config.APIKey == "" {
		return ErrAuth
	}
	return nil
}

// anthropicRequest is the body for POST /v1/messages. System prompts are
// not part of the message list on this API; they ride in a top-level field.
type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

// anthropicResponse is the subset of the response we consume.
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// anthropicErrorBody is the error envelope the API returns.
type anthropicErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Chat sends the conversation history and returns the reply text.
// System messages anywhere in the history are lifted into the top-level
// system field, joined in order.
func (a *Anthropic) Chat(ctx context.Context, messages []ChatMessage, opts Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = a.config.Model
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = a.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	var system []string
	turns := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}

	reqBody := anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      strings.Join(system, "\n\n"),
		Messages:    turns,
		Temperature: opts.Temperature,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.config.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr anthropicErrorBody
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			switch resp.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				return "", &ClientError{Type: ErrTypeAuth, Message: apiErr.Error.Message}
			case http.StatusNotFound:
				return "", &ClientError{Type: ErrTypeModelNotFound, Message: apiErr.Error.Message}
			case http.StatusTooManyRequests:
				return "", &ClientError{Type: ErrTypeRateLimited, Message: apiErr.Error.Message}
			default:
				return "", &ClientError{Type: ErrTypeInvalidResponse, Message: apiErr.Error.Message}
			}
		}
		return "", &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "messages request failed: " + resp.Status,
		}
	}

	var result anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	var text strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}
