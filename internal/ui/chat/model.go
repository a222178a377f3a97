// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for planterm.
package chat

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/planterm/planterm/internal/config"
	"github.com/planterm/planterm/internal/llm"
	"github.com/planterm/planterm/internal/model"
	"github.com/planterm/planterm/internal/store"
	"github.com/planterm/planterm/internal/ui/components"
	"github.com/planterm/planterm/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateReady   State = iota // Ready for input
	StateWaiting              // Waiting for the model's reply
	StateError                // Showing an error
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// State
	state State

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int
	ready  bool

	// Wiring
	cfg      *config.Config
	provider llm.Provider
	store    store.Store

	// Conversation
	chat *model.Chat

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  components.Spinner
	keyMap   KeyMap

	// Plan panels render expanded when true (toggled with C-p).
	plansExpanded bool

	// Per-workstream overrides on top of plansExpanded, keyed by message
	// id then workstream index (toggled with M-1..M-9). Render-only state,
	// reset by C-p and never persisted.
	wsExpanded map[string]map[int]bool

	// Error state
	lastError error

	// Backend reachability from the startup ping.
	backendStatus string
}

// NewModel creates the chat model for an existing or new chat.
func NewModel(cfg *config.Config, provider llm.Provider, st store.Store, c *model.Chat) Model {
	theme := styles.NewTheme()

	input := textinput.New()
	input.Placeholder = "Type a message (ask for a project plan to get a structured one)"
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.TextStyle = theme.InputText
	input.PlaceholderStyle = theme.InputPlaceholder
	input.CharLimit = 0
	input.Focus()

	if c == nil {
		c = model.NewChat()
		c.Model = cfg.Model()
		c.SystemPrompt = cfg.SystemPrompt
	}

	return Model{
		state:         StateReady,
		theme:         theme,
		cfg:           cfg,
		provider:      provider,
		store:         st,
		chat:          c,
		input:         input,
		spinner:       components.NewSpinner(theme),
		keyMap:        DefaultKeyMap(),
		plansExpanded: cfg.UI.PlansExpanded,
		wsExpanded:    make(map[string]map[int]bool),
		backendStatus: "checking",
	}
}

// Chat returns the underlying conversation.
func (m Model) Chat() *model.Chat {
	return m.chat
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, checkBackendCmd(m.provider))
}

// chatOptions returns the per-request provider options.
func (m Model) chatOptions() llm.Options {
	opts := llm.Options{Model: m.chat.Model}
	if opts.Model == "" {
		opts.Model = m.cfg.Model()
	}
	return opts
}
