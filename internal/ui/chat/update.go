// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/planterm/planterm/internal/model"
	"github.com/planterm/planterm/internal/plan"
	"github.com/planterm/planterm/internal/store"
)

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ResponseMsg:
		return m.handleResponse(msg)

	case ResponseErrMsg:
		m.state = StateError
		m.lastError = msg.Err
		m.spinner.Stop()
		return m, nil

	case BackendStatusMsg:
		if msg.Reachable {
			m.backendStatus = "ok"
		} else {
			m.backendStatus = "unreachable"
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey dispatches keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Cancel):
		if m.state == StateError {
			m.state = StateReady
			m.lastError = nil
		}
		return m, nil

	case key.Matches(msg, m.keyMap.TogglePlans):
		m.plansExpanded = !m.plansExpanded
		// The global toggle is authoritative: individual workstream
		// overrides are cleared.
		m.wsExpanded = make(map[string]map[int]bool)
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleWorkstream):
		m.toggleWorkstream(msg.String())
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.Clear):
		m.chat.ClearHistory()
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the typed message to the provider.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.state == StateWaiting {
		return m, nil
	}

	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}

	// Clear any prior error before persisting so a storage failure on
	// this turn stays visible.
	m.lastError = nil

	userMsg := model.NewUserMessage(content)
	m.chat.AddMessage(userMsg)
	m.persist(userMsg)
	m.input.Reset()

	// A plan request gets the format instruction attached for this
	// request only; it is never stored.
	var extra string
	if plan.IsPlanRequest(content) {
		extra = plan.Instruction()
	}

	m.state = StateWaiting
	m.refreshViewport()

	opts := m.chatOptions()
	return m, tea.Batch(
		m.spinner.Start(),
		relayCmd(m.provider, m.chat.History(extra), opts),
	)
}

// handleResponse stores the assistant reply and refreshes the view.
func (m Model) handleResponse(msg ResponseMsg) (tea.Model, tea.Cmd) {
	assistantMsg := model.NewAssistantMessage(msg.Reply)
	assistantMsg.Duration = msg.Duration

	// Keep the structured plan alongside the verbatim content when the
	// reply carries a well-formed tagged block.
	parsed := plan.Extract(msg.Reply, nil)
	if parsed.Plan != nil {
		assistantMsg.ProjectPlan = parsed.Plan
	}

	m.chat.AddMessage(assistantMsg)
	m.persist(assistantMsg)

	m.state = StateReady
	m.spinner.Stop()
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, nil
}

// toggleWorkstream flips one workstream of the most recent plan in the
// conversation. The key string carries the workstream number, so "alt+3"
// toggles the third. Out-of-range numbers are ignored.
func (m *Model) toggleWorkstream(keyStr string) {
	n := int(keyStr[len(keyStr)-1] - '1')
	if n < 0 || n > 8 {
		return
	}

	for i := len(m.chat.Messages) - 1; i >= 0; i-- {
		msg := m.chat.Messages[i]
		for _, region := range msg.Regions() {
			if region.Kind != plan.RegionPlan {
				continue
			}
			if n >= len(region.Plan.Workstreams) {
				return
			}
			ws := m.wsExpanded[msg.ID]
			if ws == nil {
				ws = make(map[int]bool)
				m.wsExpanded[msg.ID] = ws
			}
			// Flip relative to the global baseline so the override
			// works in both directions.
			if _, seen := ws[n]; seen {
				ws[n] = !ws[n]
			} else {
				ws[n] = !m.plansExpanded
			}
			return
		}
	}
}

// persist appends msg to the store, creating the chat on first write.
// Storage failures are shown but do not block the conversation.
func (m *Model) persist(msg *model.Message) {
	if m.store == nil {
		return
	}
	err := m.store.AppendMessage(m.chat.ID, msg)
	if err == nil {
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		if createErr := m.store.Create(m.chat); createErr != nil {
			m.lastError = createErr
		}
		return
	}
	m.lastError = err
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	// Header, input, and status bar take fixed rows.
	viewportHeight := height - 6
	if viewportHeight < 3 {
		viewportHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = viewportHeight
	}
	m.input.Width = width - 6
}

// refreshViewport re-renders the message list into the viewport.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages())
	if atBottom {
		m.viewport.GotoBottom()
	}
}
