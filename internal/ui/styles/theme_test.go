// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewThemeInitializesStyles(t *testing.T) {
	th := NewTheme()
	if th == nil {
		t.Fatal("NewTheme returned nil")
	}
	// Spot-check a few styles carry their configuration.
	if !th.HeaderTitle.GetBold() {
		t.Error("HeaderTitle should be bold")
	}
	if !th.PlanHeader.GetBold() {
		t.Error("PlanHeader should be bold")
	}
	if !th.InputPlaceholder.GetItalic() {
		t.Error("InputPlaceholder should be italic")
	}
}

func TestLayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{79, LayoutNarrow},
		{80, LayoutNormal},
		{119, LayoutNormal},
		{120, LayoutWide},
		{200, LayoutWide},
	}

	th := NewTheme()
	for _, tt := range tests {
		th.SetSize(tt.width, 40)
		if got := th.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: mode = %v, want %v", tt.width, got, tt.want)
		}
	}
}
