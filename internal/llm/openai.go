// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm provides the chat-completion clients planterm relays through.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// OPENAI CONFIGURATION
// =============================================================================

// OpenAIConfig holds settings for an OpenAI-compatible backend. The base
// URL is configurable so any /v1/chat/completions-speaking service works
// (OpenAI, OpenRouter, a local proxy).
type OpenAIConfig struct {
	// BaseURL is the API root (default: https://api.openai.com/v1).
	BaseURL string

	// APIKey is the bearer token for the service.
	APIKey string

	// Model is the default model (default: "gpt-4o-mini").
	Model string

	// Timeout for chat requests (default: 120s).
	Timeout time.Duration
}

func (c *OpenAIConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
}

// =============================================================================
// OPENAI CLIENT
// =============================================================================

// OpenAI is the OpenAI-compatible backend. Safe for concurrent use.
type OpenAI struct {
	config     OpenAIConfig
	httpClient *http.Client
}

// NewOpenAI creates an OpenAI-compatible backend.
func NewOpenAI(config OpenAIConfig) *OpenAI {
	config.applyDefaults()
	return &OpenAI{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name implements Provider.
func (o *OpenAI) Name() string { return "openai" }

// Ping verifies the API key works by listing models.
func (o *OpenAI) Ping(ctx context.Context) error {
	if o.config.APIKey == "" {
		return ErrAuth
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.config.BaseURL+"/models", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+o.config.APIKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrUnreachable
	}
	defer resp.Body.Close()

	return statusToError(resp.StatusCode, resp.Body)
}

// openaiChatRequest is the body for POST /chat/completions.
type openaiChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

// openaiChatResponse is the subset of the completion response we consume.
type openaiChatResponse struct {
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// apiErrorBody is the error envelope OpenAI-style APIs return.
type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Chat sends the conversation history and returns the reply text.
func (o *OpenAI) Chat(ctx context.Context, messages []ChatMessage, opts Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = o.config.Model
	}

	reqBody := openaiChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Stream:      false,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.config.APIKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", ErrUnreachable
	}
	defer resp.Body.Close()

	if err := statusToError(resp.StatusCode, resp.Body); err != nil {
		return "", err
	}

	var result openaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	if len(result.Choices) == 0 {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "response contained no choices"}
	}
	return result.Choices[0].Message.Content, nil
}

// statusToError maps an HTTP status to the client error taxonomy,
// pulling the API's own message out of the body when one is present.
// Returns nil for 200.
func statusToError(status int, body io.Reader) error {
	if status == http.StatusOK {
		return nil
	}

	msg := ""
	var apiErr apiErrorBody
	if err := json.NewDecoder(io.LimitReader(body, 64*1024)).Decode(&apiErr); err == nil {
		msg = strings.TrimSpace(apiErr.Error.Message)
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		if msg != "" {
			return &ClientError{Type: ErrTypeAuth, Message: msg}
		}
		return ErrAuth
	case http.StatusNotFound:
		if msg != "" {
			return &ClientError{Type: ErrTypeModelNotFound, Message: msg}
		}
		return ErrModelNotFound
	case http.StatusTooManyRequests:
		if msg != "" {
			return &ClientError{Type: ErrTypeRateLimited, Message: msg}
		}
		return ErrRateLimited
	default:
		if msg == "" {
			msg = "request failed with status " + http.StatusText(status)
		}
		return &ClientError{Type: ErrTypeInvalidResponse, Message: msg}
	}
}
