// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import "github.com/bureau-foundation/transportd/lib/schema/transport"

// Create returns an Active session started at start. The session id is
// the start timestamp itself, which is unique only per daemon clock;
// two devices or two daemons starting a session in the same
// nanosecond would collide.
func Create(deviceSerial, bootID string, pid int32, start int64) transport.Session {
	return transport.Session{
		SessionID:      start,
		DeviceSerial:   deviceSerial,
		BootID:         bootID,
		PID:            pid,
		StartTimestamp: start,
		EndTimestamp:   transport.SentinelMax,
	}
}

// IsActive reports whether the session has not been ended.
func IsActive(s transport.Session) bool {
	return s.EndTimestamp == transport.SentinelMax
}

// End moves an Active session to Ended at ts. Ending an Ended session
// changes nothing and returns false.
func End(s *transport.Session, ts int64) bool {
	if !IsActive(*s) {
		return false
	}
	s.EndTimestamp = ts
	return true
}
