// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package plan implements the project-plan pipeline.
package plan

import "strings"

// =============================================================================
// PLAN-REQUEST DETECTION
// =============================================================================

// requestPhrase is the literal phrase that marks a plan request.
// Deliberately coarse: a false positive only costs an extra system hint.
const requestPhrase = "project plan"

// IsPlanRequest reports whether the user's message is asking for a
// project plan. Case-insensitive substring match, no fuzzy matching.
func IsPlanRequest(text string) bool {
	return strings.Contains(strings.ToLower(text), requestPhrase)
}

// =============================================================================
// PROMPT INJECTION
// =============================================================================

// instruction is attached as a system message for plan-request turns only.
// It is best-effort guidance to an uncontrolled model; Extract enforces
// the actual contract and assumes none of this was obeyed.
const instruction = `When your response includes a project plan, emit exactly one plan block delimited by the literal tags ` + OpenTag + ` and ` + CloseTag + `. The content between the tags must be strict JSON with this exact shape and nothing else:

{"workstreams": [{"title": "...", "description": "...", "deliverables": [{"title": "...", "description": "..."}]}]}

Do not wrap the JSON in markdown code fences. Do not put any text other than the JSON inside the tags. Write normal prose outside the tags; prose before and after the block is expected. Never emit more than one plan block per message.`

// Instruction returns the system-prompt text that tells the model how to
// emit a plan block.
func Instruction() string {
	return instruction
}
