// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session holds the session lifecycle: creating sessions and
// moving them from Active to Ended.
//
// The state machine has two states and one transition:
//
//	Active (EndTimestamp == SentinelMax) --End--> Ended (EndTimestamp = ts)
//
// Nothing here locks. The [Registry] is daemon state and is only
// touched under the daemon's dispatch lock.
package session
