// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides chat persistence keyed by chat id.
package store

import (
	"errors"
	"time"

	"github.com/planterm/planterm/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound indicates the requested chat id does not exist.
	ErrNotFound = errors.New("chat not found")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("store is closed")
)

// =============================================================================
// STORE INTERFACE
// =============================================================================

// ChatMeta contains metadata for listing chats without their messages.
type ChatMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Model        string    `json:"model"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// Store is the chat key-value store. Implementations are safe for
// concurrent use.
type Store interface {
	// Create persists a new chat.
	Create(chat *model.Chat) error

	// Get returns the chat with the given id, or ErrNotFound.
	Get(id string) (*model.Chat, error)

	// List returns metadata for all chats, most recently updated first.
	List() ([]ChatMeta, error)

	// Delete removes a chat, or returns ErrNotFound.
	Delete(id string) error

	// AppendMessage adds a message to an existing chat.
	AppendMessage(chatID string, msg *model.Message) error

	// Close releases any resources held by the store.
	Close() error
}

// metaOf extracts listing metadata from a chat.
func metaOf(c *model.Chat) ChatMeta {
	return ChatMeta{
		ID:           c.ID,
		Title:        c.Title,
		Model:        c.Model,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		MessageCount: c.MessageCount(),
	}
}
