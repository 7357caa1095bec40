// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package clock

import "time"

var processStart = time.Now()

// monotonicNanos measures from process start using the runtime's
// monotonic clock reading.
func monotonicNanos() int64 {
	return int64(time.Since(processStart))
}
