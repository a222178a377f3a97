// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"

	"github.com/planterm/planterm/internal/llm"
	"github.com/planterm/planterm/internal/plan"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessage(t *testing.T) {
	msg := NewUserMessage("hello")

	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want user", msg.Role)
	}
	if msg.Content != "hello" {
		t.Errorf("Content = %q", msg.Content)
	}
	if msg.ID == "" {
		t.Error("ID should be generated")
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestMessage_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewUserMessage("x").ID
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := NewUserMessage(strings.Repeat("a", 100))
	got := msg.Preview(10)
	if len([]rune(got)) != 10 {
		t.Errorf("Preview length = %d, want 10", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Preview = %q, want ellipsis suffix", got)
	}

	short := NewUserMessage("short")
	if short.Preview(10) != "short" {
		t.Errorf("short content should not be truncated")
	}
}

func TestMessage_PreviewUnicode(t *testing.T) {
	msg := NewUserMessage(strings.Repeat("日", 50))
	got := msg.Preview(10)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Preview = %q", got)
	}
	// Must not split a rune.
	if strings.ContainsRune(got, '�') {
		t.Error("Preview corrupted a multi-byte character")
	}
}

func TestMessage_EstimateTokens(t *testing.T) {
	msg := NewUserMessage(strings.Repeat("a", 40))
	if got := msg.EstimateTokens(); got != 10 {
		t.Errorf("EstimateTokens = %d, want 10", got)
	}
}

func TestMessage_Regions(t *testing.T) {
	msg := NewAssistantMessage("before " + plan.OpenTag + `{"workstreams": []}` + plan.CloseTag)
	regions := msg.Regions()
	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}
	if regions[1].Kind != plan.RegionPlan {
		t.Error("second region should be the plan")
	}
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestChat_AddMessages(t *testing.T) {
	c := NewChat()
	c.AddUserMessage("first question")
	c.AddAssistantMessage("answer")

	if c.MessageCount() != 2 {
		t.Errorf("MessageCount = %d, want 2", c.MessageCount())
	}
	if c.LastMessage().Role != RoleAssistant {
		t.Error("last message should be the assistant reply")
	}
	if c.LastUserMessage().Content != "first question" {
		t.Error("LastUserMessage mismatch")
	}
}

func TestChat_TitleFromFirstUserMessage(t *testing.T) {
	c := NewChat()
	c.AddUserMessage("Plan my data migration")
	if c.Title != "Plan my data migration" {
		t.Errorf("Title = %q", c.Title)
	}

	// Title sticks once set.
	c.AddUserMessage("something else")
	if c.Title != "Plan my data migration" {
		t.Error("Title should not change after being set")
	}
}

func TestChat_History(t *testing.T) {
	c := NewChat()
	c.SystemPrompt = "You are concise."
	c.AddUserMessage("hi")
	c.AddAssistantMessage("hello")

	history := c.History("")
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	if history[0].Role != llm.RoleSystem {
		t.Error("system prompt should lead the history")
	}
}

func TestChat_HistoryWithExtraSystem(t *testing.T) {
	c := NewChat()
	c.AddUserMessage("write a project plan")

	history := c.History("emit one plan block")
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Role != llm.RoleSystem || history[0].Content != "emit one plan block" {
		t.Errorf("history[0] = %+v, want the per-turn instruction", history[0])
	}

	// The instruction is transient: it must not be stored on the chat.
	for _, m := range c.Messages {
		if m.Role == RoleSystem {
			t.Error("per-turn instruction leaked into stored messages")
		}
	}
}

func TestChat_Prune(t *testing.T) {
	c := NewChat()
	for i := 0; i < MaxMessages+10; i++ {
		c.AddMessage(NewUserMessage("m"))
	}
	if c.MessageCount() != MaxMessages {
		t.Errorf("MessageCount = %d, want %d", c.MessageCount(), MaxMessages)
	}
}

func TestChat_ClearHistory(t *testing.T) {
	c := NewChat()
	c.AddUserMessage("hi")
	c.ClearHistory()
	if !c.IsEmpty() || c.TokensUsed != 0 {
		t.Error("ClearHistory should empty the chat")
	}
}
