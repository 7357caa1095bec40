// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ring provides a fixed-capacity, insertion-ordered container
// that overwrites its oldest entry when full.
//
// A [Ring] is an arena (a backing slice that grows up to the capacity
// and is then reused in place) plus a head index and a count. Adding
// to a full ring evicts the oldest retained item; evicted items are
// gone for good.
//
// Rings are not safe for concurrent use. Every ring in transportd is
// owned by exactly one container (the event log, an event group, the
// byte cache) which serializes access under its own mutex.
package ring
