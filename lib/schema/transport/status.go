// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

// StatusCode classifies the outcome of a command.
type StatusCode string

const (
	StatusOK                 StatusCode = "ok"
	StatusNotFound           StatusCode = "not_found"
	StatusInvalidArgument    StatusCode = "invalid_argument"
	StatusFailedPrecondition StatusCode = "failed_precondition"
)

// Status is the result of executing a command. It is returned to the
// remote caller exactly as the command produced it.
type Status struct {
	Code    StatusCode `cbor:"code"`
	Message string     `cbor:"message,omitempty"`
	// SessionID is set by commands that create or address a session.
	SessionID int64 `cbor:"session_id,omitempty"`
	// EventID is set by commands that record a new event group.
	EventID int64 `cbor:"event_id,omitempty"`
}

// OK reports whether the status is a success.
func (s Status) OK() bool { return s.Code == StatusOK }
