// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/planterm/planterm/internal/model"
	"github.com/planterm/planterm/internal/plan"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "chats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// =============================================================================
// SQLITE STORE TESTS
// =============================================================================

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s := newTestSQLite(t)

	chat := model.NewChatWithModel("test-model")
	chat.SystemPrompt = "be helpful"
	chat.AddUserMessage("write a project plan for the rollout")
	chat.AddAssistantMessage("here it is")
	require.NoError(t, s.Create(chat))

	got, err := s.Get(chat.ID)
	require.NoError(t, err)
	require.Equal(t, chat.Title, got.Title)
	require.Equal(t, "test-model", got.Model)
	require.Equal(t, "be helpful", got.SystemPrompt)
	require.Equal(t, 2, got.MessageCount())
	require.Equal(t, "write a project plan for the rollout", got.Messages[0].Content)
	require.Equal(t, model.RoleAssistant, got.Messages[1].Role)
}

func TestSQLiteStore_MessageOrder(t *testing.T) {
	s := newTestSQLite(t)

	chat := model.NewChat()
	require.NoError(t, s.Create(chat))

	for _, content := range []string{"one", "two", "three"} {
		require.NoError(t, s.AppendMessage(chat.ID, model.NewUserMessage(content)))
	}

	got, err := s.Get(chat.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.MessageCount())
	require.Equal(t, "one", got.Messages[0].Content)
	require.Equal(t, "three", got.Messages[2].Content)
}

func TestSQLiteStore_SideChannelPlanPersisted(t *testing.T) {
	s := newTestSQLite(t)

	chat := model.NewChat()
	require.NoError(t, s.Create(chat))

	msg := model.NewAssistantMessage("reply with plan")
	msg.ProjectPlan = &plan.ProjectPlan{
		Workstreams: []plan.Workstream{
			{Title: "a", Description: "b", Deliverables: []plan.Deliverable{}},
		},
	}
	require.NoError(t, s.AppendMessage(chat.ID, msg))

	got, err := s.Get(chat.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Messages[0].ProjectPlan)
	require.Len(t, got.Messages[0].ProjectPlan.Workstreams, 1)
}

func TestSQLiteStore_DeleteCascades(t *testing.T) {
	s := newTestSQLite(t)

	chat := model.NewChat()
	chat.AddUserMessage("hello")
	require.NoError(t, s.Create(chat))
	require.NoError(t, s.Delete(chat.ID))

	_, err := s.Get(chat.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// Messages must not survive their chat.
	var count int
	require.NoError(t, s.db.QueryRow(
		`SELECT COUNT(*) FROM messages WHERE chat_id = ?`, chat.ID).Scan(&count))
	require.Zero(t, count)
}

func TestSQLiteStore_NotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.Delete("missing"), ErrNotFound)
	require.ErrorIs(t, s.AppendMessage("missing", model.NewUserMessage("x")), ErrNotFound)
}

func TestSQLiteStore_TitleFromFirstUserMessage(t *testing.T) {
	s := newTestSQLite(t)

	chat := model.NewChat()
	require.NoError(t, s.Create(chat))
	require.NoError(t, s.AppendMessage(chat.ID, model.NewUserMessage("name this chat")))

	metas, err := s.List()
	require.NoError(t, err)
	require.Len(t, metas, 1)
	require.Equal(t, "name this chat", metas[0].Title)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chats.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	chat := model.NewChat()
	chat.AddUserMessage("persist me")
	require.NoError(t, s.Create(chat))
	require.NoError(t, s.Close())

	s2, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get(chat.ID)
	require.NoError(t, err)
	require.Equal(t, "persist me", got.Messages[0].Content)
}
