// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides chat persistence keyed by chat id.
//
// Two implementations back the same Store interface:
//
//   - MemoryStore: mutex-guarded in-process map, the default
//   - SQLiteStore: durable history in a local SQLite database
//
// The store holds whole chats; message content is stored raw (plan tags
// included) so that rendering can always re-extract plans from the
// original text.
package store
