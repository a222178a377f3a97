// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package plan implements the project-plan pipeline: detecting when the
// user is asking for a plan, instructing the model how to emit one, and
// extracting tag-delimited plan blocks from assistant replies.
//
// # Key Types
//
//   - ProjectPlan: Structured plan with ordered workstreams
//   - Workstream: Titled unit of work with ordered deliverables
//   - ParsedMessage: Three-part split of a message around its plan block
//   - Region: One renderable unit (plain text or plan) in display order
//
// # Extraction
//
// Assistant replies may carry at most one plan, bracketed by the literal
// <project_plan> and </project_plan> tags with a strict-JSON payload
// between them. Extract splits a reply around that block:
//
//	parsed := plan.Extract(msg.Content, msg.ProjectPlan)
//	if parsed.Plan != nil {
//	    // render parsed.BeforeText, the plan, parsed.AfterText
//	}
//
// Extract is total: any malformed, partial, or adversarial input degrades
// to "the whole message is plain text". It never panics and never returns
// an error, so callers can re-run it on every render.
package plan
