// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the planterm TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/planterm/planterm/internal/plan"
	"github.com/planterm/planterm/internal/ui/styles"
)

// =============================================================================
// PLAN VIEW COMPONENT
// =============================================================================

// PlanView renders a project plan as a bordered panel.
//
// Every workstream is its own collapsible unit, collapsed by default to a
// title-only summary line. Expansion state is per-render UI state: a fresh
// PlanView always starts fully collapsed.
type PlanView struct {
	Plan  *plan.ProjectPlan
	Width int

	theme    *styles.Theme
	expanded map[int]bool
}

// NewPlanView creates a plan view for p with all workstreams collapsed.
func NewPlanView(p *plan.ProjectPlan, theme *styles.Theme) *PlanView {
	return &PlanView{
		Plan:     p,
		Width:    80,
		theme:    theme,
		expanded: make(map[int]bool),
	}
}

// SetWidth sets the panel width.
func (pv *PlanView) SetWidth(width int) {
	pv.Width = width
}

// ToggleWorkstream flips the collapse state of one workstream.
func (pv *PlanView) ToggleWorkstream(i int) {
	if i < 0 || pv.Plan == nil || i >= len(pv.Plan.Workstreams) {
		return
	}
	pv.expanded[i] = !pv.expanded[i]
}

// WorkstreamExpanded reports whether workstream i is expanded.
func (pv *PlanView) WorkstreamExpanded(i int) bool {
	return pv.expanded[i]
}

// SetWorkstreamExpanded sets the collapse state of one workstream.
func (pv *PlanView) SetWorkstreamExpanded(i int, expanded bool) {
	if i < 0 || pv.Plan == nil || i >= len(pv.Plan.Workstreams) {
		return
	}
	pv.expanded[i] = expanded
}

// SetAllExpanded expands or collapses every workstream at once.
func (pv *PlanView) SetAllExpanded(expanded bool) {
	if pv.Plan == nil {
		return
	}
	for i := range pv.Plan.Workstreams {
		pv.expanded[i] = expanded
	}
}

// Summary returns the panel header line for the plan.
func (pv *PlanView) Summary() string {
	n := len(pv.Plan.Workstreams)
	if n == 1 {
		return "Project plan (1 workstream)"
	}
	return fmt.Sprintf("Project plan (%d workstreams)", n)
}

// View renders the plan panel.
func (pv *PlanView) View() string {
	if pv.Plan == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(pv.theme.PlanHeader.Render(pv.Summary()))
	sb.WriteString("  ")
	sb.WriteString(pv.theme.PlanToggleHint.Render("(M-1..9 toggles a workstream)"))

	for i := range pv.Plan.Workstreams {
		sb.WriteString("\n")
		if pv.expanded[i] {
			sb.WriteString("\n")
		}
		sb.WriteString(pv.renderWorkstream(i, &pv.Plan.Workstreams[i]))
	}

	return pv.panelStyle().Render(sb.String())
}

func (pv *PlanView) renderWorkstream(i int, ws *plan.Workstream) string {
	marker := "+"
	if pv.expanded[i] {
		marker = "-"
	}
	title := fmt.Sprintf("%s %d. %s", marker, i+1, ws.Title)

	var sb strings.Builder
	sb.WriteString(pv.theme.PlanWorkstream.Render(title))

	// Collapsed workstreams show the title line only.
	if !pv.expanded[i] {
		return sb.String()
	}

	sb.WriteString("\n")
	sb.WriteString(pv.theme.PlanDescription.Render(wordWrap(ws.Description, pv.contentWidth())))

	for _, d := range ws.Deliverables {
		sb.WriteString("\n")
		line := fmt.Sprintf("  - %s: %s", d.Title, d.Description)
		sb.WriteString(pv.theme.PlanDeliverable.Render(wordWrap(line, pv.contentWidth())))
	}

	return sb.String()
}

func (pv *PlanView) panelStyle() lipgloss.Style {
	width := pv.Width - 6
	if width < 20 {
		width = 20
	}
	return pv.theme.PlanPanel.Width(width)
}

func (pv *PlanView) contentWidth() int {
	width := pv.Width - 12
	if width < 20 {
		width = 20
	}
	return width
}

// =============================================================================
// PLAIN TEXT OUTLINE
// =============================================================================

// PlanOutline renders a plan as indented plain text for non-TUI output.
func PlanOutline(p *plan.ProjectPlan) string {
	if p == nil {
		return ""
	}

	var sb strings.Builder
	n := len(p.Workstreams)
	if n == 1 {
		sb.WriteString("Project plan (1 workstream)\n")
	} else {
		fmt.Fprintf(&sb, "Project plan (%d workstreams)\n", n)
	}

	for i, ws := range p.Workstreams {
		fmt.Fprintf(&sb, "\n%d. %s\n", i+1, ws.Title)
		fmt.Fprintf(&sb, "   %s\n", ws.Description)
		for _, d := range ws.Deliverables {
			fmt.Fprintf(&sb, "   - %s: %s\n", d.Title, d.Description)
		}
	}

	return sb.String()
}
