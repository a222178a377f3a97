// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "time"

// =============================================================================
// TEA MESSAGES
// =============================================================================

// ResponseMsg carries a completed assistant reply.
type ResponseMsg struct {
	Reply    string
	Duration time.Duration
}

// ResponseErrMsg carries a failed relay.
type ResponseErrMsg struct {
	Err error
}

// BackendStatusMsg reports the result of the startup backend check.
type BackendStatusMsg struct {
	Reachable bool
	Err       error
}
