// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventlog is the daemon's bounded in-memory event store.
//
// A [Log] retains the most recent events in one ring and a derived
// group index (one entry per EventID) in another. When either ring is
// full the oldest entry is overwritten, so long sessions silently lose
// their earliest history: the store favors recency over completeness.
//
// One mutex serializes Add, every query, and watcher registration.
// Each operation is a scan bounded by capacity and performs no I/O
// while the lock is held, so the worst-case hold time follows from
// the configured capacities.
//
// The log never fails. Absence is an empty result or found == false.
package eventlog
