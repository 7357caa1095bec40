// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package daemon

import (
	"fmt"

	"github.com/bureau-foundation/transportd/lib/codec"
	"github.com/bureau-foundation/transportd/lib/schema/transport"
	"github.com/bureau-foundation/transportd/lib/session"
)

// executeBeginSession ends any Active session already attached to the
// pid, then starts a new one at the current clock reading.
func executeBeginSession(state *State, args transport.BeginSessionRequest) transport.Status {
	if args.PID <= 0 {
		return transport.Status{
			Code:    transport.StatusInvalidArgument,
			Message: fmt.Sprintf("pid must be positive, got %d", args.PID),
		}
	}

	now := state.Now()
	created := session.Create(args.DeviceSerial, args.BootID, args.PID, now)
	if _, taken := state.sessions.Lookup(created.SessionID); taken {
		return transport.Status{
			Code:      transport.StatusFailedPrecondition,
			Message:   fmt.Sprintf("session %d already exists", created.SessionID),
			SessionID: created.SessionID,
		}
	}

	for _, previous := range state.sessions.ActiveForPID(args.PID) {
		endSession(state, previous, now)
	}
	state.sessions.Add(created)
	state.events.Add(sessionEvent(created, transport.TypeBegin, created.StartTimestamp))

	return transport.Status{Code: transport.StatusOK, SessionID: created.SessionID}
}

// executeEndSession ends an Active session. Ending an Ended session
// succeeds without changing it.
func executeEndSession(state *State, args transport.EndSessionRequest) transport.Status {
	stored, found := state.sessions.Lookup(args.SessionID)
	if !found {
		return transport.Status{
			Code:      transport.StatusNotFound,
			Message:   fmt.Sprintf("session %d not found", args.SessionID),
			SessionID: args.SessionID,
		}
	}

	endSession(state, stored, state.Now())
	return transport.Status{Code: transport.StatusOK, SessionID: args.SessionID}
}

// executeDiscardSession drops an Ended session from the registry. Its
// events stay in the log until evicted.
func executeDiscardSession(state *State, args transport.DiscardSessionRequest) transport.Status {
	stored, found := state.sessions.Lookup(args.SessionID)
	if !found {
		return transport.Status{
			Code:      transport.StatusNotFound,
			Message:   fmt.Sprintf("session %d not found", args.SessionID),
			SessionID: args.SessionID,
		}
	}
	if session.IsActive(*stored) {
		return transport.Status{
			Code:      transport.StatusFailedPrecondition,
			Message:   fmt.Sprintf("session %d is still active", args.SessionID),
			SessionID: args.SessionID,
		}
	}

	state.sessions.Remove(args.SessionID)
	return transport.Status{Code: transport.StatusOK, SessionID: args.SessionID}
}

// endSession transitions stored to Ended at ts and records the end
// event. No-op for sessions already Ended.
func endSession(state *State, stored *transport.Session, ts int64) {
	if !session.End(stored, ts) {
		return
	}
	state.events.Add(sessionEvent(*stored, transport.TypeEnd, ts))
}

// sessionEvent builds a session lifecycle event. Begin and end share
// the session id as event id, so each session is one group.
func sessionEvent(s transport.Session, eventType transport.Type, ts int64) transport.Event {
	payload, err := codec.Marshal(transport.SessionPayload{
		DeviceSerial: s.DeviceSerial,
		BootID:       s.BootID,
		PID:          s.PID,
	})
	if err != nil {
		// A struct of strings and an int32 always encodes.
		panic("daemon: encoding session payload: " + err.Error())
	}
	return transport.Event{
		EventID:   s.SessionID,
		Kind:      transport.KindSession,
		Type:      eventType,
		Timestamp: ts,
		SessionID: s.SessionID,
		Payload:   payload,
	}
}
