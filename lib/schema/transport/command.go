// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

// Command names accepted by the "execute" action.
const (
	CommandBeginSession   = "begin_session"
	CommandEndSession     = "end_session"
	CommandEcho           = "echo"
	CommandDiscardSession = "discard_session"
)

// BeginSessionRequest is the payload of a begin_session command.
type BeginSessionRequest struct {
	DeviceSerial string `cbor:"device_serial"`
	BootID       string `cbor:"boot_id"`
	PID          int32  `cbor:"pid"`
}

// EndSessionRequest is the payload of an end_session command.
type EndSessionRequest struct {
	SessionID int64 `cbor:"session_id"`
}

// EchoRequest is the payload of an echo command. The data is recorded
// as an echo event on the given session (zero for none).
type EchoRequest struct {
	SessionID int64  `cbor:"session_id,omitempty"`
	Data      []byte `cbor:"data"`
}

// DiscardSessionRequest is the payload of a discard_session command.
type DiscardSessionRequest struct {
	SessionID int64 `cbor:"session_id"`
}
