// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package daemon

import (
	"context"
	"testing"

	"github.com/bureau-foundation/transportd/lib/schema/transport"
)

func TestStreamEvents(t *testing.T) {
	d, fakeClock := newTestDaemon(t, 1)
	client := startDaemon(t, d)

	stream, err := client.Stream(context.Background(), "stream_events", map[string]any{
		"session_id": 9,
		"kinds":      []transport.Kind{transport.KindCPUUsage},
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer stream.Close()

	var ack transport.StreamAck
	if err := stream.Recv(&ack); err != nil {
		t.Fatalf("reading ack: %v", err)
	}
	if !ack.OK {
		t.Fatalf("ack = %+v", ack)
	}

	// The heartbeat ticker is the only timer the daemon creates.
	fakeClock.WaitForTimers(1)

	d.EventLog().Add(transport.Event{EventID: 1, Kind: transport.KindMemoryUsage, Timestamp: 10, SessionID: 9})
	d.EventLog().Add(transport.Event{EventID: 2, Kind: transport.KindCPUUsage, Timestamp: 11, SessionID: 8})
	d.EventLog().Add(transport.Event{EventID: 3, Kind: transport.KindCPUUsage, Timestamp: 12, SessionID: 9, Payload: []byte("hot")})

	var frame transport.StreamFrame
	if err := stream.Recv(&frame); err != nil {
		t.Fatalf("reading event frame: %v", err)
	}
	if frame.Type != transport.FrameEvent || frame.Event == nil || frame.Event.EventID != 3 || string(frame.Event.Payload) != "hot" {
		t.Errorf("first frame = %+v, want event 3", frame)
	}

	fakeClock.Advance(streamHeartbeatInterval)
	frame = transport.StreamFrame{}
	if err := stream.Recv(&frame); err != nil {
		t.Fatalf("reading heartbeat: %v", err)
	}
	if frame.Type != transport.FrameHeartbeat {
		t.Errorf("second frame = %+v, want heartbeat", frame)
	}
}

func TestStreamEventsUnfiltered(t *testing.T) {
	d, _ := newTestDaemon(t, 1)
	client := startDaemon(t, d)

	stream, err := client.Stream(context.Background(), "stream_events", nil)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer stream.Close()

	var ack transport.StreamAck
	if err := stream.Recv(&ack); err != nil || !ack.OK {
		t.Fatalf("ack = %+v, err %v", ack, err)
	}

	for i := int64(1); i <= 3; i++ {
		d.EventLog().Add(transport.Event{EventID: i, Kind: transport.Kind(i), Timestamp: i})
	}
	for want := int64(1); want <= 3; want++ {
		var frame transport.StreamFrame
		if err := stream.Recv(&frame); err != nil {
			t.Fatalf("Recv: %v", err)
		}
		if frame.Event == nil || frame.Event.EventID != want {
			t.Errorf("frame = %+v, want event %d", frame, want)
		}
	}
}

func TestStreamEventsBadRequest(t *testing.T) {
	d, _ := newTestDaemon(t, 1)
	client := startDaemon(t, d)

	stream, err := client.Stream(context.Background(), "stream_events", map[string]any{"kinds": "cpu"})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer stream.Close()

	var ack transport.StreamAck
	if err := stream.Recv(&ack); err != nil {
		t.Fatalf("reading ack: %v", err)
	}
	if ack.OK || ack.Error == "" {
		t.Errorf("ack = %+v, want failure", ack)
	}
	if watchers := d.EventLog().Stats().Watchers; watchers != 0 {
		t.Errorf("rejected stream left %d watchers", watchers)
	}
}
