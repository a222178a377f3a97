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
	"time"
)

// =============================================================================
// OLLAMA CONFIGURATION
// =============================================================================

// OllamaConfig holds settings for the local Ollama backend.
type OllamaConfig struct {
	// BaseURL is the Ollama API base URL (default: http://127.0.0.1:11434).
	// Uses the explicit IPv4 address instead of localhost to avoid IPv6
	// resolution issues on Windows.
	BaseURL string

	// Model is the default model (default: "qwen2.5-coder:14b").
	Model string

	// Timeout for chat requests (default: 120s).
	Timeout time.Duration

	// MaxRetries for transient failures (default: 3).
	MaxRetries int

	// RetryDelay is the base delay between retries (default: 1s).
	RetryDelay time.Duration
}

func (c *OllamaConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://127.0.0.1:11434"
	}
	if c.Model == "" {
		c.Model = "qwen2.5-coder:14b"
	}
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 1 * time.Second
	}
}

// =============================================================================
// OLLAMA CLIENT
// =============================================================================

// Ollama is the local-inference backend. Safe for concurrent use.
type Ollama struct {
	config     OllamaConfig
	httpClient *http.Client
}

// NewOllama creates an Ollama backend, filling defaults for zero values.
func NewOllama(config OllamaConfig) *Ollama {
	config.applyDefaults()
	return &Ollama{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name implements Provider.
func (o *Ollama) Name() string { return "ollama" }

// Ping verifies that Ollama is reachable and running.
func (o *Ollama) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.config.BaseURL, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeUnreachable,
			Message: "unexpected status from Ollama: " + resp.Status,
		}
	}
	return nil
}

// ollamaChatRequest is the request body for /api/chat.
type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []ChatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  *ollamaOptions `json:"options,omitempty"`
}

// ollamaOptions carries model parameters for inference.
type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// ollamaChatResponse is the response from /api/chat.
type ollamaChatResponse struct {
	Model   string      `json:"model"`
	Message ChatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// ollamaError is the error body Ollama returns on failure.
type ollamaError struct {
	Error string `json:"error"`
}

// Chat sends the conversation history and returns the reply text.
// Transient connection failures are retried with exponential backoff.
func (o *Ollama) Chat(ctx context.Context, messages []ChatMessage, opts Options) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= o.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ErrTimeout
			case <-time.After(retryDelay(o.config.RetryDelay, attempt-1)):
			}
		}

		text, err := o.chatOnce(ctx, messages, opts)
		if err == nil {
			return text, nil
		}
		lastErr = err

		// Only connection-level failures are worth retrying.
		var ce *ClientError
		if !errors.As(err, &ce) || ce.Type != ErrTypeUnreachable {
			return "", err
		}
	}
	return "", lastErr
}

func (o *Ollama) chatOnce(ctx context.Context, messages []ChatMessage, opts Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = o.config.Model
	}

	reqBody := ollamaChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
	}
	if opts.Temperature != 0 || opts.MaxTokens != 0 {
		reqBody.Options = &ollamaOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrModelNotFound
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr ollamaError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return "", &ClientError{Type: ErrTypeInvalidResponse, Message: apiErr.Error}
		}
		return "", &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "chat request failed: " + resp.Status,
		}
	}

	var result ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return result.Message.Content, nil
}
