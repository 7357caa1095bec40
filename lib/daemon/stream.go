// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package daemon

import (
	"context"
	"net"
	"time"

	"github.com/bureau-foundation/transportd/lib/codec"
	"github.com/bureau-foundation/transportd/lib/eventlog"
	"github.com/bureau-foundation/transportd/lib/netutil"
	"github.com/bureau-foundation/transportd/lib/schema/transport"
)

// streamHeartbeatInterval is how often an idle event stream gets a
// heartbeat frame. A failed heartbeat write is how the server notices
// a client that went away.
const streamHeartbeatInterval = 10 * time.Second

// streamWriteTimeout bounds each frame write so a stalled client
// cannot pin the handler.
const streamWriteTimeout = 10 * time.Second

// handleStreamEvents streams events added to the log after the call.
//
// Wire protocol:
//
//	Server → Client: StreamAck{OK: true}
//	Server → Client: StreamFrame{Type: "event", Event: ...}   (per matching event)
//	Server → Client: StreamFrame{Type: "heartbeat"}           (periodic)
//
// The stream stays open until a write fails or the daemon shuts down.
// A slow client misses events rather than slowing producers.
func (p *publicTransport) handleStreamEvents(ctx context.Context, raw []byte, conn net.Conn) {
	logger := p.daemon.logger
	encoder := codec.NewEncoder(conn)

	var request transport.StreamEventsRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		encoder.Encode(transport.StreamAck{Error: "invalid stream_events request: " + err.Error()})
		return
	}

	// Watch BEFORE the ack: once the client sees the ack, every event
	// added afterwards reaches this stream.
	events, cancel := p.daemon.events.Watch(eventlog.DefaultWatchBuffer)
	defer cancel()

	write := func(value any) bool {
		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := encoder.Encode(value); err != nil {
			switch {
			case netutil.IsExpectedCloseError(err):
				logger.Debug("event stream client disconnected")
			case netutil.IsTimeout(err):
				logger.Warn("event stream client stalled, dropping stream",
					"timeout", streamWriteTimeout,
				)
			default:
				logger.Warn("event stream write failed", "error", err)
			}
			return false
		}
		return true
	}

	if !write(transport.StreamAck{OK: true}) {
		return
	}
	logger.Debug("event stream started",
		"session_id", request.SessionID,
		"kinds", len(request.Kinds),
	)
	defer logger.Debug("event stream ended", "session_id", request.SessionID)

	heartbeat := p.daemon.clock.NewTicker(streamHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case event, open := <-events:
			if !open {
				return
			}
			if !request.Matches(event) {
				continue
			}
			if !write(transport.StreamFrame{Type: transport.FrameEvent, Event: &event}) {
				return
			}
		case <-heartbeat.C:
			if !write(transport.StreamFrame{Type: transport.FrameHeartbeat}) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
