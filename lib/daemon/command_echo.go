// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package daemon

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/transportd/lib/schema/transport"
	"github.com/bureau-foundation/transportd/lib/session"
)

// executeEcho records the data as a single-event echo group. Clients
// use it to check the round trip through the daemon into their event
// streams. A non-zero session id must name an Active session.
func executeEcho(state *State, args transport.EchoRequest) transport.Status {
	if args.SessionID != 0 {
		stored, found := state.sessions.Lookup(args.SessionID)
		if !found {
			return transport.Status{
				Code:      transport.StatusNotFound,
				Message:   fmt.Sprintf("session %d not found", args.SessionID),
				SessionID: args.SessionID,
			}
		}
		if !session.IsActive(*stored) {
			return transport.Status{
				Code:      transport.StatusFailedPrecondition,
				Message:   fmt.Sprintf("session %d has ended", args.SessionID),
				SessionID: args.SessionID,
			}
		}
	}

	now := state.Now()
	state.echoes++
	eventID := echoEventID(now, state.echoes)
	state.events.Add(transport.Event{
		EventID:   eventID,
		Kind:      transport.KindEcho,
		Type:      transport.TypeData,
		Timestamp: now,
		SessionID: args.SessionID,
		Payload:   args.Data,
	})
	return transport.Status{Code: transport.StatusOK, SessionID: args.SessionID, EventID: eventID}
}

// echoDomainKey is the BLAKE3 key for echo event ids.
var echoDomainKey = [32]byte{
	't', 'r', 'a', 'n', 's', 'p', 'o', 'r', 't', 'd', '.', 'e', 'c', 'h', 'o', 0,
}

// echoEventID derives an echo's group id from the clock reading and
// the daemon's echo count, keeping echoes out of the session id space
// and apart from each other within one clock tick. Ids are positive.
func echoEventID(now int64, sequence uint64) int64 {
	hasher, err := blake3.NewKeyed(echoDomainKey[:])
	if err != nil {
		panic("daemon: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	var input [16]byte
	binary.BigEndian.PutUint64(input[:8], uint64(now))
	binary.BigEndian.PutUint64(input[8:], sequence)
	hasher.Write(input[:])
	digest := hasher.Sum(nil)
	return int64(binary.BigEndian.Uint64(digest[:8]) &^ (1 << 63))
}
