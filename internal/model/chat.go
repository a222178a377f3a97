// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chats and messages.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/planterm/planterm/internal/llm"
)

// MaxMessages is the maximum number of messages to keep in a chat.
// When exceeded, old messages are pruned to prevent unbounded memory growth.
const MaxMessages = 1000

// titleMaxRunes caps the auto-generated chat title length.
const titleMaxRunes = 50

// =============================================================================
// CHAT TYPE
// =============================================================================

// Chat holds one conversation: ordered messages plus metadata.
type Chat struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages, in arrival order.
	Messages []*Message `json:"messages"`

	// Model configuration
	Model string `json:"model"`

	// Context tracking
	TokensUsed int `json:"tokens_used"`

	// SystemPrompt is the standing system prompt, if any. The per-turn
	// plan instruction is NOT stored here; it is attached transiently by
	// the relay for plan-request turns only.
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// NewChat creates a new chat with a generated ID.
func NewChat() *Chat {
	now := time.Now()
	return &Chat{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// NewChatWithModel creates a new chat pinned to a specific model.
func NewChatWithModel(model string) *Chat {
	c := NewChat()
	c.Model = model
	return c
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message and refreshes derived metadata.
func (c *Chat) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	c.updateTokenEstimate()
	c.updateTitle()
	c.pruneOldMessages()
}

// AddUserMessage creates and adds a user message.
func (c *Chat) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.AddMessage(msg)
	return msg
}

// AddAssistantMessage creates and adds an assistant message.
func (c *Chat) AddAssistantMessage(content string) *Message {
	msg := NewAssistantMessage(content)
	c.AddMessage(msg)
	return msg
}

// LastMessage returns the most recent message, or nil if empty.
func (c *Chat) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// LastUserMessage returns the most recent user message, or nil.
func (c *Chat) LastUserMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return c.Messages[i]
		}
	}
	return nil
}

// MessageByID returns a message by its ID, or nil.
func (c *Chat) MessageByID(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// MessageCount returns the number of messages.
func (c *Chat) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Chat) IsEmpty() bool {
	return len(c.Messages) == 0
}

// ClearHistory removes all messages from the chat.
func (c *Chat) ClearHistory() {
	c.Messages = make([]*Message, 0)
	c.TokensUsed = 0
	c.UpdatedAt = time.Now()
}

// =============================================================================
// WIRE CONVERSION
// =============================================================================

// History converts the chat into provider wire format. extraSystem, when
// non-empty, is appended as an additional system message for this call
// only; it never becomes part of the stored history. This is how the plan
// instruction rides along on plan-request turns.
func (c *Chat) History(extraSystem string) []llm.ChatMessage {
	messages := make([]llm.ChatMessage, 0, len(c.Messages)+2)

	if c.SystemPrompt != "" {
		messages = append(messages, llm.NewSystemMessage(c.SystemPrompt))
	}
	if extraSystem != "" {
		messages = append(messages, llm.NewSystemMessage(extraSystem))
	}

	for _, msg := range c.Messages {
		if !msg.Role.Valid() || msg.Content == "" {
			continue
		}
		messages = append(messages, llm.ChatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return messages
}

// =============================================================================
// DERIVED METADATA
// =============================================================================

// updateTitle derives the chat title from the first user message.
func (c *Chat) updateTitle() {
	if c.Title != "" {
		return
	}
	for _, msg := range c.Messages {
		if msg.Role == RoleUser && msg.Content != "" {
			c.Title = msg.Preview(titleMaxRunes)
			return
		}
	}
}

// updateTokenEstimate recomputes the rough token total.
func (c *Chat) updateTokenEstimate() {
	total := 0
	for _, msg := range c.Messages {
		total += msg.EstimateTokens()
	}
	c.TokensUsed = total
}

// pruneOldMessages drops the oldest messages once MaxMessages is exceeded.
func (c *Chat) pruneOldMessages() {
	if len(c.Messages) <= MaxMessages {
		return
	}
	excess := len(c.Messages) - MaxMessages
	c.Messages = append(c.Messages[:0:0], c.Messages[excess:]...)
	c.updateTokenEstimate()
}
