// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/planterm/planterm/internal/model"
	"github.com/planterm/planterm/internal/plan"
	"github.com/planterm/planterm/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders a single message for the chat view.
//
// Assistant messages are split into ordered regions: plain text regions
// render inside the usual bubble and plan regions render as plan panels
// between them, preserving the original order of the reply.
type MessageBubble struct {
	Message       *model.Message
	Width         int
	ShowTimestamp bool
	PlanExpanded  bool

	// WorkstreamExpanded overrides PlanExpanded for individual
	// workstreams of this message's plan panel.
	WorkstreamExpanded map[int]bool

	theme *styles.Theme
}

// NewMessageBubble creates a bubble for msg.
func NewMessageBubble(msg *model.Message, theme *styles.Theme) *MessageBubble {
	if msg == nil {
		msg = &model.Message{Role: model.RoleSystem}
	}
	return &MessageBubble{
		Message: msg,
		Width:   80,
		theme:   theme,
	}
}

// SetWidth sets the bubble width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// View renders the message.
func (b *MessageBubble) View() string {
	switch b.Message.Role {
	case model.RoleUser:
		return b.renderUserBubble()
	case model.RoleAssistant:
		return b.renderAssistantMessage()
	default:
		return b.renderSystemBubble()
	}
}

// ==========================================================================
// USER BUBBLE
// ==========================================================================

func (b *MessageBubble) renderUserBubble() string {
	content := b.Message.Content
	if content == "" {
		content = "..."
	}

	wrapped := wordWrap(content, b.contentWidth())
	contentWidth := minInt(maxLineWidth(wrapped)+4, b.Width-8)

	bubble := b.theme.UserBubble.Width(contentWidth).Render(wrapped)

	header := b.theme.RoleLabel.Render("you")
	if ts := b.renderTimestamp(); ts != "" {
		header += " " + ts
	}

	// Right-align with a left margin.
	leftMargin := b.Width - contentWidth - 4
	if leftMargin < 0 {
		leftMargin = 0
	}
	margin := lipgloss.NewStyle().MarginLeft(leftMargin)

	return margin.Render(header) + "\n" + margin.Render(bubble)
}

// ==========================================================================
// ASSISTANT MESSAGE
// ==========================================================================

// renderAssistantMessage renders the reply's regions in order. Suppressed
// empty text around a plan block never produces an empty bubble.
func (b *MessageBubble) renderAssistantMessage() string {
	regions := b.Message.Regions()

	header := b.theme.RoleLabel.Render("assistant")
	if ts := b.renderTimestamp(); ts != "" {
		header += " " + ts
	}

	parts := []string{header}
	for _, region := range regions {
		switch region.Kind {
		case plan.RegionPlan:
			pv := NewPlanView(region.Plan, b.theme)
			pv.SetWidth(b.Width)
			pv.SetAllExpanded(b.PlanExpanded)
			for i, on := range b.WorkstreamExpanded {
				pv.SetWorkstreamExpanded(i, on)
			}
			parts = append(parts, pv.View())
		default:
			parts = append(parts, b.renderAssistantText(region.Text))
		}
	}

	// A reply can legitimately be empty when the backend returns nothing.
	if len(parts) == 1 {
		parts = append(parts, b.renderAssistantText("..."))
	}

	return strings.Join(parts, "\n")
}

func (b *MessageBubble) renderAssistantText(text string) string {
	rendered := ParseCodeBlocks(text, b.contentWidth())
	wrapped := wordWrapPreformatted(rendered, b.contentWidth())
	contentWidth := minInt(maxLineWidth(wrapped)+4, b.Width-8)
	return b.theme.AssistantBubble.Width(contentWidth).Render(wrapped)
}

// ==========================================================================
// SYSTEM BUBBLE
// ==========================================================================

func (b *MessageBubble) renderSystemBubble() string {
	return b.theme.SystemBubble.Render(wordWrap(b.Message.Content, b.contentWidth()))
}

// ==========================================================================
// HELPERS
// ==========================================================================

func (b *MessageBubble) contentWidth() int {
	w := b.Width - 12
	if w < 20 {
		w = 20
	}
	return w
}

func (b *MessageBubble) renderTimestamp() string {
	if !b.ShowTimestamp || b.Message.Timestamp.IsZero() {
		return ""
	}
	return b.theme.Timestamp.Render(formatTime(b.Message.Timestamp))
}

// wordWrap wraps text at word boundaries to the given width.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		if runewidth.StringWidth(line) <= width {
			out = append(out, line)
			continue
		}

		var current string
		for _, word := range strings.Fields(line) {
			if current == "" {
				current = word
				continue
			}
			if runewidth.StringWidth(current)+1+runewidth.StringWidth(word) <= width {
				current += " " + word
			} else {
				out = append(out, current)
				current = word
			}
		}
		if current != "" {
			out = append(out, current)
		}
	}
	return strings.Join(out, "\n")
}

// wordWrapPreformatted wraps only lines without ANSI escapes, leaving
// highlighted code untouched.
func wordWrapPreformatted(text string, width int) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.ContainsRune(line, '\x1b') {
			out = append(out, line)
			continue
		}
		out = append(out, wordWrap(line, width))
	}
	return strings.Join(out, "\n")
}

func maxLineWidth(text string) int {
	max := 0
	for _, line := range strings.Split(text, "\n") {
		if w := runewidth.StringWidth(line); w > max {
			max = w
		}
	}
	return max
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// formatTime renders a timestamp relative to today.
func formatTime(t time.Time) string {
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("Jan 2 15:04")
}

// =============================================================================
// MESSAGE LIST
// =============================================================================

// MessageList renders a slice of messages as a vertical list.
type MessageList struct {
	Messages       []*model.Message
	Width          int
	ShowTimestamps bool
	PlansExpanded  bool

	// WorkstreamExpanded holds per-workstream overrides keyed by
	// message id.
	WorkstreamExpanded map[string]map[int]bool

	theme *styles.Theme
}

// NewMessageList creates an empty message list.
func NewMessageList(theme *styles.Theme) *MessageList {
	return &MessageList{Width: 80, theme: theme}
}

// SetMessages replaces the list contents.
func (ml *MessageList) SetMessages(messages []*model.Message) {
	ml.Messages = messages
}

// SetWidth sets the render width.
func (ml *MessageList) SetWidth(width int) {
	ml.Width = width
}

// View renders all messages separated by blank lines.
func (ml *MessageList) View() string {
	var parts []string
	for _, msg := range ml.Messages {
		bubble := NewMessageBubble(msg, ml.theme)
		bubble.SetWidth(ml.Width)
		bubble.ShowTimestamp = ml.ShowTimestamps
		bubble.PlanExpanded = ml.PlansExpanded
		bubble.WorkstreamExpanded = ml.WorkstreamExpanded[msg.ID]
		parts = append(parts, bubble.View())
	}
	return strings.Join(parts, "\n\n")
}
