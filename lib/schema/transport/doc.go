// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport defines the records exchanged between transportd,
// its producers, and its remote callers: events, event groups,
// sessions, command statuses, and the request and response types of
// every socket action.
//
// All types use `cbor` struct tags. Timestamps are monotonic
// nanoseconds as reported by the daemon clock.
package transport
