// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"time"

	"golang.org/x/sys/unix"
)

// processStart anchors the fallback reading if clock_gettime ever
// fails (it does not on any supported kernel).
var processStart = time.Now()

// monotonicNanos reads CLOCK_MONOTONIC so timestamps line up with
// the ones on-device producers write.
func monotonicNanos() int64 {
	var spec unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &spec); err != nil {
		return int64(time.Since(processStart))
	}
	return spec.Nano()
}
