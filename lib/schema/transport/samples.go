// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

// CPUSample is the payload of a cpu_usage event. Times are cumulative
// since process start, in nanoseconds.
type CPUSample struct {
	UserNanos   int64   `cbor:"user_nanos"`
	SystemNanos int64   `cbor:"system_nanos"`
	Percent     float64 `cbor:"percent"`
}

// MemorySample is the payload of a memory_usage event.
type MemorySample struct {
	ResidentBytes uint64 `cbor:"resident_bytes"`
	VirtualBytes  uint64 `cbor:"virtual_bytes"`
	SwapBytes     uint64 `cbor:"swap_bytes"`
}

// NetworkSample is the payload of a network_speed event. Counters are
// host-wide cumulative totals.
type NetworkSample struct {
	BytesSent     uint64 `cbor:"bytes_sent"`
	BytesReceived uint64 `cbor:"bytes_received"`
}
