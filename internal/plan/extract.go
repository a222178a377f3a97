// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package plan implements the project-plan pipeline.
package plan

import "strings"

// =============================================================================
// SENTINEL TAGS
// =============================================================================

// The tags bracketing a plan payload in assistant output. Case-sensitive,
// matched verbatim; only the first occurrence of each is consulted.
const (
	OpenTag  = "<project_plan>"
	CloseTag = "</project_plan>"
)

// =============================================================================
// PARSED MESSAGE
// =============================================================================

// ParsedMessage is the three-part split of one assistant message around
// its plan block. It is rebuilt from the message content on every render
// and never persisted.
type ParsedMessage struct {
	// BeforeText is the text preceding the plan block, or the entire
	// message when no valid block exists.
	BeforeText string

	// AfterText is the text following the plan block. Empty when no
	// valid block exists.
	AfterText string

	// Plan is the validated plan, or nil when none was found.
	Plan *ProjectPlan
}

// =============================================================================
// EXTRACTION
// =============================================================================

// Extract locates the first <project_plan> block in content, decodes and
// validates its payload, and splits the message around it.
//
// The model producing content is uncontrolled, so Extract assumes nothing:
// missing or misordered tags, malformed JSON, and schema-invalid payloads
// all degrade to "the whole original message is plain text" (tags
// included). Showing the raw reply beats showing a truncated one.
//
// side is an optional pre-parsed plan attached upstream. It is a fallback
// only: it is consulted solely when content has no tag pair at all, and
// only if it independently passes validation. A freshly parsed tag block
// always wins over the side channel.
//
// Extract is a total function. It performs no I/O, touches no shared
// state, and is safe to call concurrently and repeatedly.
func Extract(content string, side *ProjectPlan) ParsedMessage {
	openAt := strings.Index(content, OpenTag)
	closeAt := strings.Index(content, CloseTag)

	if openAt == -1 || closeAt == -1 || closeAt <= openAt {
		// No tag block. The side channel may still supply a plan; with
		// no split point known it renders after all of the text.
		if side.Valid() {
			return ParsedMessage{BeforeText: content, Plan: side}
		}
		return ParsedMessage{BeforeText: content}
	}

	payload := strings.TrimSpace(content[openAt+len(OpenTag) : closeAt])
	p, ok := Decode(payload)
	if !ok {
		// Well-formed tags around a broken payload: discard the split
		// entirely rather than show a mangled message.
		return ParsedMessage{BeforeText: content}
	}

	return ParsedMessage{
		BeforeText: content[:openAt],
		AfterText:  content[closeAt+len(CloseTag):],
		Plan:       p,
	}
}
