// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/planterm/planterm/internal/plan"
	"github.com/planterm/planterm/internal/ui/styles"
)

func testPlan(workstreams int) *plan.ProjectPlan {
	p := &plan.ProjectPlan{Workstreams: []plan.Workstream{}}
	for i := 0; i < workstreams; i++ {
		p.Workstreams = append(p.Workstreams, plan.Workstream{
			Title:       "Workstream",
			Description: "Some work",
			Deliverables: []plan.Deliverable{
				{Title: "Deliverable", Description: "An artifact"},
			},
		})
	}
	return p
}

func TestPlanViewSummaryPluralization(t *testing.T) {
	theme := styles.NewTheme()

	pv := NewPlanView(testPlan(0), theme)
	if got := pv.Summary(); got != "Project plan (0 workstreams)" {
		t.Errorf("zero summary = %q", got)
	}

	pv = NewPlanView(testPlan(1), theme)
	if got := pv.Summary(); got != "Project plan (1 workstream)" {
		t.Errorf("singular summary = %q", got)
	}

	pv = NewPlanView(testPlan(3), theme)
	if got := pv.Summary(); got != "Project plan (3 workstreams)" {
		t.Errorf("plural summary = %q", got)
	}
}

func TestPlanViewSetWorkstreamExpanded(t *testing.T) {
	pv := NewPlanView(testPlan(2), styles.NewTheme())

	pv.SetWorkstreamExpanded(1, true)
	if pv.WorkstreamExpanded(0) || !pv.WorkstreamExpanded(1) {
		t.Error("only workstream 1 should be expanded")
	}

	pv.SetWorkstreamExpanded(1, false)
	if pv.WorkstreamExpanded(1) {
		t.Error("workstream 1 should collapse")
	}

	// Out-of-range indices are ignored.
	pv.SetWorkstreamExpanded(-1, true)
	pv.SetWorkstreamExpanded(7, true)
	if pv.WorkstreamExpanded(0) {
		t.Error("out-of-range set must not change state")
	}
}

func TestPlanViewCollapsedByDefault(t *testing.T) {
	pv := NewPlanView(testPlan(2), styles.NewTheme())

	out := pv.View()
	if !strings.Contains(out, "2 workstreams") {
		t.Errorf("view missing summary: %q", out)
	}
	// Collapsed workstreams show their title line only.
	if !strings.Contains(out, "1. Workstream") || !strings.Contains(out, "2. Workstream") {
		t.Errorf("collapsed view missing workstream titles: %q", out)
	}
	if strings.Contains(out, "Deliverable") {
		t.Error("collapsed view should not show deliverables")
	}
	if strings.Contains(out, "Some work") {
		t.Error("collapsed view should not show descriptions")
	}
}

func TestPlanViewToggleWorkstreamIsIndependent(t *testing.T) {
	pv := NewPlanView(testPlan(2), styles.NewTheme())
	pv.ToggleWorkstream(0)

	if !pv.WorkstreamExpanded(0) {
		t.Error("workstream 0 should be expanded after toggle")
	}
	if pv.WorkstreamExpanded(1) {
		t.Error("workstream 1 should remain collapsed")
	}

	out := pv.View()
	if !strings.Contains(out, "Deliverable") {
		t.Errorf("expanded workstream missing deliverables: %q", out)
	}

	pv.ToggleWorkstream(0)
	if pv.WorkstreamExpanded(0) {
		t.Error("second toggle should collapse again")
	}
}

func TestPlanViewToggleOutOfRange(t *testing.T) {
	pv := NewPlanView(testPlan(1), styles.NewTheme())
	pv.ToggleWorkstream(-1)
	pv.ToggleWorkstream(5)
	if pv.WorkstreamExpanded(0) {
		t.Error("out-of-range toggles must not change state")
	}
}

func TestPlanViewExpandAllShowsOutline(t *testing.T) {
	pv := NewPlanView(testPlan(2), styles.NewTheme())
	pv.SetAllExpanded(true)

	out := pv.View()
	for _, want := range []string{"1. Workstream", "2. Workstream", "Deliverable", "An artifact", "Some work"} {
		if !strings.Contains(out, want) {
			t.Errorf("expanded view missing %q", want)
		}
	}

	pv.SetAllExpanded(false)
	if strings.Contains(pv.View(), "An artifact") {
		t.Error("collapse-all should hide deliverables")
	}
}

func TestPlanOutline(t *testing.T) {
	out := PlanOutline(testPlan(2))
	if !strings.HasPrefix(out, "Project plan (2 workstreams)") {
		t.Errorf("outline header = %q", out)
	}
	if !strings.Contains(out, "1. Workstream") || !strings.Contains(out, "2. Workstream") {
		t.Errorf("outline missing numbered workstreams: %q", out)
	}
	if !strings.Contains(out, "- Deliverable: An artifact") {
		t.Errorf("outline missing deliverables: %q", out)
	}
}

func TestPlanOutlineNil(t *testing.T) {
	if out := PlanOutline(nil); out != "" {
		t.Errorf("nil plan outline = %q, want empty", out)
	}
}
