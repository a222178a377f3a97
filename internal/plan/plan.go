// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package plan implements the project-plan pipeline.
package plan

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// PLAN TYPES
// =============================================================================

// ProjectPlan is the structured artifact an assistant reply can carry.
// Workstream order is presentation order and is never re-sorted.
type ProjectPlan struct {
	Workstreams []Workstream `json:"workstreams"`
}

// Workstream is a titled unit of work within a plan.
type Workstream struct {
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Deliverables []Deliverable `json:"deliverables"`
}

// Deliverable is a single concrete output of a workstream.
type Deliverable struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// =============================================================================
// STRUCTURAL VALIDATION
// =============================================================================

// Valid reports whether the plan satisfies the structural contract.
// Acceptance is all-or-nothing: every workstream and every deliverable
// must pass, or the whole plan is rejected. A nil plan is invalid.
//
// The workstreams and deliverables fields must be present in the source
// JSON (decoded nil slices are rejected, empty slices are accepted), and
// every title and description must be non-empty after trimming whitespace.
func (p *ProjectPlan) Valid() bool {
	if p == nil || p.Workstreams == nil {
		return false
	}
	for i := range p.Workstreams {
		if !p.Workstreams[i].valid() {
			return false
		}
	}
	return true
}

func (w *Workstream) valid() bool {
	if !nonBlank(w.Title) || !nonBlank(w.Description) {
		return false
	}
	if w.Deliverables == nil {
		return false
	}
	for i := range w.Deliverables {
		d := &w.Deliverables[i]
		if !nonBlank(d.Title) || !nonBlank(d.Description) {
			return false
		}
	}
	return true
}

func nonBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

// =============================================================================
// DECODING
// =============================================================================

// Decode parses a JSON payload into a validated ProjectPlan.
// It returns (nil, false) on a JSON syntax error, on any type mismatch
// against the schema, or when the decoded value fails Valid. There is no
// partial acceptance and no best-effort repair of broken payloads.
func Decode(payload string) (*ProjectPlan, bool) {
	var p ProjectPlan
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, false
	}
	if !p.Valid() {
		return nil, false
	}
	return &p, true
}
