// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/planterm/planterm/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Starting planterm..."
	}

	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	if m.state == StateWaiting {
		sb.WriteString(m.spinner.View())
		sb.WriteString("\n")
	}
	if m.state == StateError && m.lastError != nil {
		sb.WriteString(m.renderError())
		sb.WriteString("\n")
	}

	sb.WriteString(m.theme.InputContainer.Width(m.width - 2).Render(m.input.View()))
	sb.WriteString("\n")
	sb.WriteString(m.renderStatusBar())

	return sb.String()
}

func (m Model) renderHeader() string {
	title := m.chat.Title
	if title == "" {
		title = "New chat"
	}

	left := m.theme.HeaderTitle.Render(title)
	right := m.theme.HeaderMeta.Render(fmt.Sprintf("%s | %s | backend: %s",
		m.provider.Name(), m.chat.Model, m.backendStatus))

	gap := m.width - visibleWidth(left) - visibleWidth(right) - 4
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderMessages() string {
	if len(m.chat.Messages) == 0 {
		return m.theme.HeaderMeta.Render("No messages yet. Say hello, or ask for a project plan.")
	}

	list := components.NewMessageList(m.theme)
	list.SetMessages(m.chat.Messages)
	list.SetWidth(m.viewport.Width)
	list.ShowTimestamps = m.cfg.UI.ShowTimestamps
	list.PlansExpanded = m.plansExpanded
	list.WorkstreamExpanded = m.wsExpanded
	return list.View()
}

func (m Model) renderError() string {
	body := m.theme.ErrorTitle.Render("Error") + "\n" +
		m.theme.ErrorMessage.Render(m.lastError.Error()) + "\n" +
		m.theme.HeaderMeta.Render("Esc to dismiss")
	return m.theme.ErrorBox.Width(m.width - 4).Render(body)
}

func (m Model) renderStatusBar() string {
	var parts []string
	for _, b := range m.keyMap.ShortHelp() {
		parts = append(parts,
			m.theme.ShortcutKey.Render(b.Help().Key)+" "+
				m.theme.ShortcutDesc.Render(b.Help().Desc))
	}
	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, "  "))
}

// visibleWidth approximates rendered width by stripping ANSI sequences.
func visibleWidth(s string) int {
	width := 0
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			width++
		}
	}
	return width
}
