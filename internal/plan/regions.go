// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package plan implements the project-plan pipeline.
package plan

import "strings"

// =============================================================================
// RENDER REGIONS
// =============================================================================

// RegionKind discriminates the two region variants.
type RegionKind int

const (
	// RegionText - a run of plain message text
	RegionText RegionKind = iota

	// RegionPlan - a structured plan panel
	RegionPlan
)

// Region is one contiguous renderable unit of an assistant message:
// either plain text or a plan. Regions arrive in display order.
type Region struct {
	Kind RegionKind

	// Text holds the content for RegionText regions.
	Text string

	// Plan holds the plan for RegionPlan regions.
	Plan *ProjectPlan
}

// Regions splits message content into its ordered display regions.
// Text regions that are blank after trimming are suppressed entirely, so
// a message that is nothing but a plan block yields exactly one region.
// A message with no plan yields at most one text region.
func Regions(content string, side *ProjectPlan) []Region {
	parsed := Extract(content, side)

	regions := make([]Region, 0, 3)
	if strings.TrimSpace(parsed.BeforeText) != "" {
		regions = append(regions, Region{Kind: RegionText, Text: parsed.BeforeText})
	}
	if parsed.Plan != nil {
		regions = append(regions, Region{Kind: RegionPlan, Plan: parsed.Plan})
	}
	if strings.TrimSpace(parsed.AfterText) != "" {
		regions = append(regions, Region{Kind: RegionText, Text: parsed.AfterText})
	}
	return regions
}
