// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides chat persistence keyed by chat id.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/planterm/planterm/internal/model"
	"github.com/planterm/planterm/internal/plan"
)

// =============================================================================
// SCHEMA
// =============================================================================

// schemaVersion tracks the database schema version for migrations.
const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS chats (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    model TEXT NOT NULL,
    system_prompt TEXT NOT NULL DEFAULT '',
    tokens_used INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,  -- Unix nanoseconds
    updated_at INTEGER NOT NULL
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS messages (
    id TEXT NOT NULL,
    chat_id TEXT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,         -- arrival order within the chat
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    plan_json TEXT,               -- side-channel pre-parse, NULL when absent
    token_count INTEGER NOT NULL DEFAULT 0,
    duration_ns INTEGER NOT NULL DEFAULT 0,
    timestamp INTEGER NOT NULL,
    PRIMARY KEY (chat_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id);
`

// =============================================================================
// SQLITE STORE
// =============================================================================

// SQLiteStore persists chats in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection keeps SQLite happy under concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.Exec(
		`INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)`,
		fmt.Sprintf("%d", schemaVersion),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to record schema version: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Create persists a new chat and all of its messages.
func (s *SQLiteStore) Create(chat *model.Chat) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO chats (id, title, model, system_prompt, tokens_used, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		chat.ID, chat.Title, chat.Model, chat.SystemPrompt, chat.TokensUsed,
		chat.CreatedAt.UnixNano(), chat.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat: %w", err)
	}

	for i, msg := range chat.Messages {
		if err := insertMessage(tx, chat.ID, i, msg); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Get returns the chat with the given id, messages in arrival order.
func (s *SQLiteStore) Get(id string) (*model.Chat, error) {
	chat := &model.Chat{ID: id}

	var createdAt, updatedAt int64
	err := s.db.QueryRow(
		`SELECT title, model, system_prompt, tokens_used, created_at, updated_at
		 FROM chats WHERE id = ?`, id,
	).Scan(&chat.Title, &chat.Model, &chat.SystemPrompt, &chat.TokensUsed, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load chat: %w", err)
	}
	chat.CreatedAt = time.Unix(0, createdAt)
	chat.UpdatedAt = time.Unix(0, updatedAt)

	rows, err := s.db.Query(
		`SELECT id, role, content, plan_json, token_count, duration_ns, timestamp
		 FROM messages WHERE chat_id = ? ORDER BY seq`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		msg := &model.Message{}
		var role string
		var planJSON sql.NullString
		var durationNs, timestamp int64
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &planJSON,
			&msg.TokenCount, &durationNs, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = model.Role(role)
		msg.Duration = time.Duration(durationNs)
		msg.Timestamp = time.Unix(0, timestamp)
		if planJSON.Valid {
			// The stored pre-parse is advisory; a corrupt row just
			// loses the fallback, never the message.
			if p, ok := plan.Decode(planJSON.String); ok {
				msg.ProjectPlan = p
			}
		}
		chat.Messages = append(chat.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	return chat, nil
}

// List returns metadata for all chats, most recently updated first.
func (s *SQLiteStore) List() ([]ChatMeta, error) {
	rows, err := s.db.Query(
		`SELECT c.id, c.title, c.model, c.created_at, c.updated_at,
		        (SELECT COUNT(*) FROM messages m WHERE m.chat_id = c.id)
		 FROM chats c ORDER BY c.updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	var metas []ChatMeta
	for rows.Next() {
		var m ChatMeta
		var createdAt, updatedAt int64
		if err := rows.Scan(&m.ID, &m.Title, &m.Model, &createdAt, &updatedAt, &m.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		m.CreatedAt = time.Unix(0, createdAt)
		m.UpdatedAt = time.Unix(0, updatedAt)
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Delete removes a chat and its messages.
func (s *SQLiteStore) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM chats WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendMessage adds a message to an existing chat.
func (s *SQLiteStore) AppendMessage(chatID string, msg *model.Message) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var seq int
	err = tx.QueryRow(
		`SELECT COALESCE(MAX(seq)+1, 0) FROM messages WHERE chat_id = ?`, chatID,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("failed to compute sequence: %w", err)
	}

	res, err := tx.Exec(
		`UPDATE chats SET updated_at = ?,
		        title = CASE WHEN title = '' AND ? = 'user' THEN ? ELSE title END
		 WHERE id = ?`,
		time.Now().UnixNano(), string(msg.Role), msg.Preview(50), chatID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch chat: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	if err := insertMessage(tx, chatID, seq, msg); err != nil {
		return err
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// insertMessage writes one message row inside a transaction.
func insertMessage(tx *sql.Tx, chatID string, seq int, msg *model.Message) error {
	var planJSON interface{}
	if msg.ProjectPlan != nil {
		b, err := json.Marshal(msg.ProjectPlan)
		if err == nil {
			planJSON = string(b)
		}
	}

	_, err := tx.Exec(
		`INSERT INTO messages (id, chat_id, seq, role, content, plan_json, token_count, duration_ns, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, chatID, seq, string(msg.Role), msg.Content, planJSON,
		msg.TokenCount, int64(msg.Duration), msg.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}
