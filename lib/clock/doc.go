// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the injectable time source used by the
// daemon, its commands, and its samplers.
//
// Two readings are exposed. [Clock.Now] is wall time for logs and
// uptime. [Clock.NowNanos] is the monotonic nanosecond reading that
// every event and session timestamp is expressed in; on Linux it is
// CLOCK_MONOTONIC, the same clock on-device producers stamp their
// samples with.
//
// Production code holds a Clock field set to [Real]. Tests use
// [Fake], which stands still until Advance is called:
//
//	fake := clock.Fake(time.Unix(0, 100))
//	daemon := newDaemon(fake)
//	fake.Advance(50) // NowNanos now reports 150
//
// Goroutines that wait on a ticker register a pending waiter; tests
// call WaitForTimers before Advance so the tick is not lost.
package clock
