// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import "math"

// SentinelMax is the EndTimestamp of every Active session.
const SentinelMax int64 = math.MaxInt64

// Session is a bounded observation window on one target process.
// A session is Active exactly when EndTimestamp == SentinelMax.
//
// SessionID equals StartTimestamp. That is unique only among sessions
// one daemon creates on one clock; it is not an identity across
// devices or processes.
type Session struct {
	SessionID      int64  `cbor:"session_id"`
	DeviceSerial   string `cbor:"device_serial"`
	BootID         string `cbor:"boot_id"`
	PID            int32  `cbor:"pid"`
	StartTimestamp int64  `cbor:"start_timestamp"`
	EndTimestamp   int64  `cbor:"end_timestamp"`
}

// SessionPayload is the CBOR payload of session begin and end events.
type SessionPayload struct {
	DeviceSerial string `cbor:"device_serial,omitempty"`
	BootID       string `cbor:"boot_id,omitempty"`
	PID          int32  `cbor:"pid"`
}
