// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sampler is a daemon component that records resource usage
// of every Active session's process as events.
//
// On each tick the sampler snapshots the Active sessions and adds one
// cpu_usage, one memory_usage, and one network_speed event per
// session. Each (session, kind) pair is one event group: the first
// sample is a begin event, later samples are data events, and when the
// session is no longer Active the sampler closes the group with an end
// event. Readings come from a [Probe]; [HostProbe] reads them from the
// host with gopsutil.
package sampler
