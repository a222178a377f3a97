// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the planterm TUI.
//
// Colors are defined as Lip Gloss AdaptiveColor values so every style
// works on both light and dark terminal backgrounds. Theme aggregates
// the configured styles for the whole application; components take a
// *Theme rather than constructing styles themselves.
//
// # Key Types
//
//   - Theme: all configured lipgloss styles plus terminal capabilities
//   - LayoutMode: narrow/normal/wide responsive breakpoints
package styles
