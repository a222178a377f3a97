// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared across planterm: atomic file
// writes for config persistence and rune-safe string truncation for
// previews and titles.
package util
