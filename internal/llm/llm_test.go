// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// =============================================================================
// PROVIDER SELECTION TESTS
// =============================================================================

func TestPick(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
		wantErr  bool
	}{
		{"ollama", "ollama", false},
		{"", "ollama", false},
		{"OpenAI", "openai", false},
		{"anthropic", "anthropic", false},
		{"cohere", "", true},
	}

	for _, tt := range tests {
		p, err := Pick(Config{Provider: tt.provider})
		if tt.wantErr {
			if err == nil {
				t.Errorf("Pick(%q) expected error", tt.provider)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Pick(%q) failed: %v", tt.provider, err)
		}
		if p.Name() != tt.wantName {
			t.Errorf("Pick(%q).Name() = %q, want %q", tt.provider, p.Name(), tt.wantName)
		}
	}
}

// =============================================================================
// OLLAMA BACKEND TESTS
// =============================================================================

func TestOllama_Chat(t *testing.T) {
	var gotReq ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ChatMessage{Role: RoleAssistant, Content: "hi there"},
			Done:    true,
		})
	}))
	defer srv.Close()

	o := NewOllama(OllamaConfig{BaseURL: srv.URL, Model: "test-model", MaxRetries: 1})
	text, err := o.Chat(context.Background(), []ChatMessage{NewUserMessage("hi")}, Options{})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if text != "hi there" {
		t.Errorf("reply = %q, want 'hi there'", text)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("model = %q, want 'test-model'", gotReq.Model)
	}
	if gotReq.Stream {
		t.Error("stream should be false")
	}
}

func TestOllama_ModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	o := NewOllama(OllamaConfig{BaseURL: srv.URL, MaxRetries: 1})
	_, err := o.Chat(context.Background(), nil, Options{})
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("err = %v, want ErrModelNotFound", err)
	}
}

func TestOllama_ErrorBodySurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ollamaError{Error: "model requires more memory"})
	}))
	defer srv.Close()

	o := NewOllama(OllamaConfig{BaseURL: srv.URL, MaxRetries: 1})
	_, err := o.Chat(context.Background(), nil, Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %T, want *ClientError", err)
	}
	if ce.Message != "model requires more memory" {
		t.Errorf("message = %q, want the API's own message", ce.Message)
	}
}

// =============================================================================
// OPENAI BACKEND TESTS
// =============================================================================

func TestOpenAI_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "reply"}, "finish_reason": "stop"}]}`))
	}))
	defer srv.Close()

	o := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-test"})
	text, err := o.Chat(context.Background(), []ChatMessage{NewUserMessage("hi")}, Options{})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if text != "reply" {
		t.Errorf("reply = %q", text)
	}
}

func TestOpenAI_AuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	o := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, APIKey: "bad"})
	_, err := o.Chat(context.Background(), nil, Options{})

	var ce *ClientError
	if !errors.As(err, &ce) || ce.Type != ErrTypeAuth {
		t.Errorf("err = %v, want auth error", err)
	}
}

func TestOpenAI_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	o := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, APIKey: "k"})
	if _, err := o.Chat(context.Background(), nil, Options{}); err == nil {
		t.Error("empty choices should be an error")
	}
}

// =============================================================================
// ANTHROPIC BACKEND TESTS
// =============================================================================

func TestAnthropic_Chat(t *testing.T) {
	var gotReq anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q, want /v1/messages", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "ak-test" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != anthropicVersion {
			t.Errorf("anthropic-version = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Write([]byte(`{"content": [{"type": "text", "text": "claude says hi"}], "stop_reason": "end_turn"}`))
	}))
	defer srv.Close()

	a := NewAnthropic(AnthropicConfig{BaseURL: srv.URL, APIKey: "ak-test"})
	messages := []ChatMessage{
		NewSystemMessage("be brief"),
		NewUserMessage("hi"),
	}
	text, err := a.Chat(context.Background(), messages, Options{})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if text != "claude says hi" {
		t.Errorf("reply = %q", text)
	}

	// System messages ride the top-level field, not the message list.
	if gotReq.System != "be brief" {
		t.Errorf("system = %q, want 'be brief'", gotReq.System)
	}
	for _, m := range gotReq.Messages {
		if m.Role == RoleSystem {
			t.Error("system role must not appear in the message list")
		}
	}
	if gotReq.MaxTokens != anthropicDefaultMaxTokens {
		t.Errorf("max_tokens = %d, want default %d", gotReq.MaxTokens, anthropicDefaultMaxTokens)
	}
}

func TestAnthropic_PingRequiresKey(t *testing.T) {
	a := NewAnthropic(AnthropicConfig{})
	if err := a.Ping(context.Background()); !errors.Is(err, ErrAuth) {
		t.Errorf("Ping without key = %v, want ErrAuth", err)
	}
}
