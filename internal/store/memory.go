// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides chat persistence keyed by chat id.
package store

import (
	"sort"
	"sync"

	"github.com/planterm/planterm/internal/model"
)

// =============================================================================
// IN-MEMORY STORE
// =============================================================================

// MemoryStore keeps chats in a process-local map. It is the default
// store for a single-user session and loses everything on exit.
type MemoryStore struct {
	mu    sync.RWMutex
	chats map[string]*model.Chat
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chats: make(map[string]*model.Chat),
	}
}

// Create persists a new chat. The store keeps its own snapshot so later
// mutations of the caller's chat don't alias stored state.
func (s *MemoryStore) Create(chat *model.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[chat.ID] = snapshotChat(chat)
	return nil
}

// Get returns a snapshot of the chat with the given id.
func (s *MemoryStore) Get(id string) (*model.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chat, ok := s.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshotChat(chat), nil
}

// snapshotChat copies the chat struct and its message slice. Messages are
// immutable after creation, so their pointers are shared.
func snapshotChat(chat *model.Chat) *model.Chat {
	clone := *chat
	clone.Messages = append([]*model.Message(nil), chat.Messages...)
	return &clone
}

// List returns metadata for all chats, most recently updated first.
func (s *MemoryStore) List() ([]ChatMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metas := make([]ChatMeta, 0, len(s.chats))
	for _, c := range s.chats {
		metas = append(metas, metaOf(c))
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Delete removes a chat.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[id]; !ok {
		return ErrNotFound
	}
	delete(s.chats, id)
	return nil
}

// AppendMessage adds a message to an existing chat.
func (s *MemoryStore) AppendMessage(chatID string, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return ErrNotFound
	}
	chat.AddMessage(msg)
	return nil
}

// Close implements Store; a memory store has nothing to release.
func (s *MemoryStore) Close() error {
	return nil
}
