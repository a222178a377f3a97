// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package plan

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

// validPlan returns a plan that satisfies the structural contract.
func validPlan() *ProjectPlan {
	return &ProjectPlan{
		Workstreams: []Workstream{
			{
				Title:       "Discovery",
				Description: "Understand the problem space",
				Deliverables: []Deliverable{
					{Title: "Interviews", Description: "Talk to five users"},
					{Title: "Summary", Description: "One-page findings doc"},
				},
			},
			{
				Title:        "Build",
				Description:  "Ship the first cut",
				Deliverables: []Deliverable{},
			},
		},
	}
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return string(b)
}

// =============================================================================
// NO-TAGS IDENTITY
// =============================================================================

func TestExtract_NoTags(t *testing.T) {
	content := "Just a normal reply with no plan in it."
	parsed := Extract(content, nil)

	if parsed.BeforeText != content {
		t.Errorf("BeforeText = %q, want full content", parsed.BeforeText)
	}
	if parsed.AfterText != "" {
		t.Errorf("AfterText = %q, want empty", parsed.AfterText)
	}
	if parsed.Plan != nil {
		t.Error("Plan should be nil when no tags are present")
	}
}

func TestExtract_EmptyContent(t *testing.T) {
	parsed := Extract("", nil)
	if parsed.BeforeText != "" || parsed.AfterText != "" || parsed.Plan != nil {
		t.Errorf("empty content: got %+v, want zero-value split", parsed)
	}
}

// =============================================================================
// VALID ROUND-TRIP
// =============================================================================

func TestExtract_ValidBlock(t *testing.T) {
	want := validPlan()
	content := "Here is the plan:\n" + OpenTag + "\n" + mustJSON(t, want) + "\n" + CloseTag + "\nLet me know what to adjust."

	parsed := Extract(content, nil)

	if parsed.Plan == nil {
		t.Fatal("Plan not extracted from valid block")
	}
	if !reflect.DeepEqual(parsed.Plan, want) {
		t.Errorf("Plan = %+v, want %+v", parsed.Plan, want)
	}
	if parsed.BeforeText != "Here is the plan:\n" {
		t.Errorf("BeforeText = %q", parsed.BeforeText)
	}
	if parsed.AfterText != "\nLet me know what to adjust." {
		t.Errorf("AfterText = %q", parsed.AfterText)
	}
}

func TestExtract_PlanOnly(t *testing.T) {
	content := OpenTag + mustJSON(t, validPlan()) + CloseTag
	parsed := Extract(content, nil)

	if parsed.Plan == nil {
		t.Fatal("Plan not extracted")
	}
	if parsed.BeforeText != "" || parsed.AfterText != "" {
		t.Errorf("surrounding text should be empty, got before=%q after=%q",
			parsed.BeforeText, parsed.AfterText)
	}
}

func TestExtract_ZeroWorkstreams(t *testing.T) {
	content := OpenTag + `{"workstreams": []}` + CloseTag
	parsed := Extract(content, nil)

	if parsed.Plan == nil {
		t.Fatal("empty workstream list is a valid plan")
	}
	if len(parsed.Plan.Workstreams) != 0 {
		t.Errorf("Workstreams = %d, want 0", len(parsed.Plan.Workstreams))
	}
}

func TestExtract_PayloadWhitespaceTrimmed(t *testing.T) {
	content := OpenTag + "\n\n  " + mustJSON(t, validPlan()) + "  \n" + CloseTag
	if parsed := Extract(content, nil); parsed.Plan == nil {
		t.Error("whitespace around the payload should not break decoding")
	}
}

// =============================================================================
// FAIL-CLOSED PATHS
// =============================================================================

func TestExtract_MalformedJSON(t *testing.T) {
	content := "X" + OpenTag + "{not json" + CloseTag + "Y"
	parsed := Extract(content, nil)

	if parsed.Plan != nil {
		t.Error("malformed JSON must not produce a plan")
	}
	// Fail-closed: the split is discarded and the entire original message,
	// tags included, becomes plain text.
	if parsed.BeforeText != content {
		t.Errorf("BeforeText = %q, want full original content", parsed.BeforeText)
	}
	if parsed.AfterText != "" {
		t.Errorf("AfterText = %q, want empty", parsed.AfterText)
	}
}

func TestExtract_InvalidShape(t *testing.T) {
	content := "X" + OpenTag + `{"workstreams": [{"title": "t"}]}` + CloseTag + "Y"
	parsed := Extract(content, nil)

	if parsed.Plan != nil {
		t.Error("schema-invalid payload must not produce a plan")
	}
	if parsed.BeforeText != content {
		t.Errorf("BeforeText = %q, want full original content", parsed.BeforeText)
	}
}

func TestExtract_WrongType(t *testing.T) {
	content := OpenTag + `{"workstreams": "not a list"}` + CloseTag
	if parsed := Extract(content, nil); parsed.Plan != nil {
		t.Error("type mismatch must not produce a plan")
	}
}

func TestExtract_MisorderedTags(t *testing.T) {
	content := CloseTag + " prose " + OpenTag
	parsed := Extract(content, nil)

	if parsed.Plan != nil {
		t.Error("closing tag before opening tag is not a block")
	}
	if parsed.BeforeText != content {
		t.Errorf("BeforeText = %q, want full content", parsed.BeforeText)
	}
}

func TestExtract_OpeningTagOnly(t *testing.T) {
	content := "start " + OpenTag + ` {"workstreams": []}`
	parsed := Extract(content, nil)
	if parsed.Plan != nil || parsed.BeforeText != content {
		t.Error("unclosed block must be treated as plain text")
	}
}

// =============================================================================
// MULTIPLE TAG PAIRS
// =============================================================================

func TestExtract_MultiplePairs(t *testing.T) {
	first := mustJSON(t, validPlan())
	second := OpenTag + `{"workstreams": []}` + CloseTag
	content := "a" + OpenTag + first + CloseTag + "b" + second + "c"

	parsed := Extract(content, nil)

	if parsed.Plan == nil {
		t.Fatal("first pair should be consumed")
	}
	wantAfter := "b" + second + "c"
	if parsed.AfterText != wantAfter {
		t.Errorf("AfterText = %q, want second pair verbatim: %q", parsed.AfterText, wantAfter)
	}
}

// =============================================================================
// SIDE-CHANNEL FALLBACK
// =============================================================================

func TestExtract_SideChannelUsedWithoutTags(t *testing.T) {
	side := validPlan()
	content := "No tags here."
	parsed := Extract(content, side)

	if parsed.Plan != side {
		t.Error("valid side-channel plan should be used when no tags exist")
	}
	if parsed.BeforeText != content {
		t.Errorf("BeforeText = %q, want full content", parsed.BeforeText)
	}
	if parsed.AfterText != "" {
		t.Errorf("AfterText = %q, want empty", parsed.AfterText)
	}
}

func TestExtract_InvalidSideChannelIgnored(t *testing.T) {
	side := &ProjectPlan{Workstreams: []Workstream{{Title: "   "}}}
	parsed := Extract("No tags here.", side)
	if parsed.Plan != nil {
		t.Error("invalid side-channel plan must be silently ignored")
	}
}

func TestExtract_TagBlockBeatsSideChannel(t *testing.T) {
	side := &ProjectPlan{Workstreams: []Workstream{}}
	content := OpenTag + mustJSON(t, validPlan()) + CloseTag
	parsed := Extract(content, side)

	if parsed.Plan == side {
		t.Error("freshly parsed tag block must win over the side channel")
	}
	if parsed.Plan == nil || len(parsed.Plan.Workstreams) != 2 {
		t.Error("tag block should have been parsed")
	}
}

func TestExtract_SideChannelNotUsedOnBrokenBlock(t *testing.T) {
	// A tag pair exists but its payload is broken. That is the fail-closed
	// path, not the no-tags path: the side channel stays out of it.
	side := validPlan()
	content := OpenTag + "{oops" + CloseTag
	parsed := Extract(content, side)
	if parsed.Plan != nil {
		t.Error("broken tag block must not fall back to the side channel")
	}
}

// =============================================================================
// TOTALITY
// =============================================================================

func TestExtract_Totality(t *testing.T) {
	inputs := []string{
		"",
		"\x00\x01\xff\xfe binary garbage \x80",
		OpenTag,
		CloseTag,
		OpenTag + CloseTag,
		OpenTag + OpenTag + CloseTag + CloseTag,
		strings.Repeat("x", 4<<20),
		strings.Repeat(OpenTag, 100),
		OpenTag + `{"workstreams": null}` + CloseTag,
		OpenTag + "null" + CloseTag,
		OpenTag + "[]" + CloseTag,
	}
	for i, in := range inputs {
		parsed := Extract(in, nil)
		if parsed.Plan == nil && parsed.BeforeText != in {
			t.Errorf("input %d: planless result must carry the full content", i)
		}
	}
}

func TestExtract_EmptyPayloadBetweenTags(t *testing.T) {
	parsed := Extract(OpenTag+CloseTag, nil)
	if parsed.Plan != nil {
		t.Error("empty payload is not valid JSON and must fail closed")
	}
}

func TestExtract_Idempotent(t *testing.T) {
	content := "a" + OpenTag + mustJSON(t, validPlan()) + CloseTag + "b"
	first := Extract(content, nil)
	second := Extract(content, nil)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated extraction of the same input must yield equal results")
	}
}
