// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package daemon

import (
	"github.com/bureau-foundation/transportd/lib/clock"
	"github.com/bureau-foundation/transportd/lib/eventlog"
	"github.com/bureau-foundation/transportd/lib/schema/transport"
	"github.com/bureau-foundation/transportd/lib/session"
)

// State is the daemon state commands operate on. A *State is only
// valid inside the callback or command execution it was passed to.
type State struct {
	clock    clock.Clock
	events   *eventlog.Log
	sessions *session.Registry

	// echoes counts echo commands; it feeds echo event ids.
	echoes uint64
}

// Now returns the daemon clock's monotonic reading in nanoseconds.
func (s *State) Now() int64 { return s.clock.NowNanos() }

// Sessions returns every registered session in start order.
func (s *State) Sessions() []transport.Session { return s.sessions.All() }

// ActiveSessions returns the Active sessions in start order.
func (s *State) ActiveSessions() []transport.Session { return s.sessions.Active() }

// Session returns the session with the given id.
func (s *State) Session(id int64) (transport.Session, bool) { return s.sessions.Get(id) }
