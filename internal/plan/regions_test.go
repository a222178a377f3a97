// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package plan

import "testing"

// =============================================================================
// REGION SPLIT TESTS
// =============================================================================

func TestRegions_PlanOnly(t *testing.T) {
	content := OpenTag + `{"workstreams": []}` + CloseTag
	regions := Regions(content, nil)

	if len(regions) != 1 {
		t.Fatalf("got %d regions, want exactly 1", len(regions))
	}
	if regions[0].Kind != RegionPlan {
		t.Error("sole region should be the plan")
	}
}

func TestRegions_TextPlanText(t *testing.T) {
	content := "intro " + OpenTag + `{"workstreams": []}` + CloseTag + " outro"
	regions := Regions(content, nil)

	if len(regions) != 3 {
		t.Fatalf("got %d regions, want 3", len(regions))
	}
	if regions[0].Kind != RegionText || regions[0].Text != "intro " {
		t.Errorf("region 0 = %+v, want leading text", regions[0])
	}
	if regions[1].Kind != RegionPlan || regions[1].Plan == nil {
		t.Errorf("region 1 = %+v, want plan", regions[1])
	}
	if regions[2].Kind != RegionText || regions[2].Text != " outro" {
		t.Errorf("region 2 = %+v, want trailing text", regions[2])
	}
}

func TestRegions_BlankTextSuppressed(t *testing.T) {
	content := "  \n " + OpenTag + `{"workstreams": []}` + CloseTag + "\t\n"
	regions := Regions(content, nil)

	if len(regions) != 1 {
		t.Fatalf("whitespace-only text regions must be suppressed, got %d regions", len(regions))
	}
	if regions[0].Kind != RegionPlan {
		t.Error("remaining region should be the plan")
	}
}

func TestRegions_PlainMessage(t *testing.T) {
	regions := Regions("just prose", nil)
	if len(regions) != 1 || regions[0].Kind != RegionText {
		t.Fatalf("plain message should yield one text region, got %+v", regions)
	}
}

func TestRegions_EmptyMessage(t *testing.T) {
	if regions := Regions("", nil); len(regions) != 0 {
		t.Errorf("empty message should yield no regions, got %d", len(regions))
	}
}

func TestRegions_SideChannelRendersAfterText(t *testing.T) {
	side := validPlan()
	regions := Regions("all the prose", side)

	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}
	if regions[0].Kind != RegionText || regions[1].Kind != RegionPlan {
		t.Error("side-channel plan must render after all text")
	}
}
