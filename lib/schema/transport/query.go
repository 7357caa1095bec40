// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import "github.com/bureau-foundation/transportd/lib/codec"

// TimeResponse is the response of the "get_current_time" action.
type TimeResponse struct {
	TimestampNanos int64 `cbor:"timestamp_ns"`
}

// VersionResponse is the response of the "get_version" action.
type VersionResponse struct {
	Version string `cbor:"version"`
	Commit  string `cbor:"commit"`
}

// EventsRequest is the request of the "get_events" action. A nil
// bound is unbounded on that side.
type EventsRequest struct {
	From *int64 `cbor:"from,omitempty"`
	To   *int64 `cbor:"to,omitempty"`
}

// EventsResponse is the response of the "get_events" action. Events
// are in insertion order.
type EventsResponse struct {
	Events []Event `cbor:"events"`
}

// EventGroupsRequest is the request of the "get_event_groups" action.
// Groups match when their session and kind are equal to the request's
// and their span intersects [From, To]. Terminal is computed against
// EndType.
type EventGroupsRequest struct {
	SessionID int64  `cbor:"session_id"`
	Kind      Kind   `cbor:"kind"`
	EndType   Type   `cbor:"end_type"`
	From      *int64 `cbor:"from,omitempty"`
	To        *int64 `cbor:"to,omitempty"`
}

// EventGroupsResponse is the response of the "get_event_groups" action.
type EventGroupsResponse struct {
	Groups []EventGroup `cbor:"groups"`
}

// GroupRequest is the request of the "get_group" action.
type GroupRequest struct {
	EventID int64 `cbor:"event_id"`
}

// GroupResponse is the response of the "get_group" action. Found is
// false when no retained group has the id.
type GroupResponse struct {
	Found bool        `cbor:"found"`
	Group *EventGroup `cbor:"group,omitempty"`
}

// SessionsResponse is the response of the "get_sessions" action,
// ordered by start timestamp.
type SessionsResponse struct {
	Sessions []Session `cbor:"sessions"`
}

// ExecuteRequest is the request of the "execute" action. Payload is
// the CBOR encoding of the command's own request type (for example
// [EndSessionRequest]); it may be empty for commands without
// arguments.
type ExecuteRequest struct {
	Command string           `cbor:"command"`
	Payload codec.RawMessage `cbor:"payload,omitempty"`
}

// ExecuteResponse is the response of the "execute" action. RequestID
// matches the daemon's log lines for the execution.
type ExecuteResponse struct {
	Status    Status `cbor:"status"`
	RequestID string `cbor:"request_id"`
}

// BytesRequest is the request of the "get_bytes" action.
type BytesRequest struct {
	ID string `cbor:"id"`
}

// BytesResponse is the response of the "get_bytes" action.
type BytesResponse struct {
	Found    bool   `cbor:"found"`
	Contents []byte `cbor:"contents,omitempty"`
}

// SendEventRequest is the request of the internal "send_event" action.
type SendEventRequest struct {
	Event Event `cbor:"event"`
}

// SendBytesRequest is the request of the internal "send_bytes" action.
type SendBytesRequest struct {
	Contents []byte `cbor:"contents"`
}

// SendBytesResponse carries the id under which contents were stored.
type SendBytesResponse struct {
	ID string `cbor:"id"`
}

// LogStats summarizes event log occupancy.
type LogStats struct {
	Events        int    `cbor:"events"`
	Groups        int    `cbor:"groups"`
	EventCapacity int    `cbor:"event_capacity"`
	GroupCapacity int    `cbor:"group_capacity"`
	TotalAdded    uint64 `cbor:"total_added"`
	EventsEvicted uint64 `cbor:"events_evicted"`
	GroupsEvicted uint64 `cbor:"groups_evicted"`
	Watchers      int    `cbor:"watchers"`
	WatcherDrops  uint64 `cbor:"watcher_drops"`
}

// CacheStats summarizes byte cache occupancy.
type CacheStats struct {
	Entries         int    `cbor:"entries"`
	Capacity        int    `cbor:"capacity"`
	StoredBytes     uint64 `cbor:"stored_bytes"`
	OriginalBytes   uint64 `cbor:"original_bytes"`
	Evicted         uint64 `cbor:"evicted"`
	CompressionName string `cbor:"compression"`
}

// StatusResponse is the response of the "status" action.
type StatusResponse struct {
	EventLog       LogStats   `cbor:"event_log"`
	Cache          CacheStats `cbor:"cache"`
	Sessions       int        `cbor:"sessions"`
	ActiveSessions int        `cbor:"active_sessions"`
	Components     int        `cbor:"components"`
	Actions        int        `cbor:"actions"`
	UptimeSeconds  float64    `cbor:"uptime_seconds"`
}

// StreamEventsRequest is the request of the "stream_events" action.
// Zero-valued filters match everything.
type StreamEventsRequest struct {
	SessionID int64  `cbor:"session_id,omitempty"`
	Kinds     []Kind `cbor:"kinds,omitempty"`
}

// Matches reports whether event passes the request's filters.
func (r StreamEventsRequest) Matches(event Event) bool {
	if r.SessionID != 0 && event.SessionID != r.SessionID {
		return false
	}
	if len(r.Kinds) == 0 {
		return true
	}
	for _, kind := range r.Kinds {
		if kind == event.Kind {
			return true
		}
	}
	return false
}

// StreamAck is the first frame of every stream, and the last one when
// the server gives up on it.
type StreamAck struct {
	OK    bool   `cbor:"ok"`
	Error string `cbor:"error,omitempty"`
}

// Stream frame types.
const (
	FrameEvent     = "event"
	FrameHeartbeat = "heartbeat"
)

// StreamFrame is one message on an event stream after the ack.
type StreamFrame struct {
	Type  string `cbor:"type"`
	Event *Event `cbor:"event,omitempty"`
}
