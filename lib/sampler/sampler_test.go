// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sampler

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/bureau-foundation/transportd/lib/clock"
	"github.com/bureau-foundation/transportd/lib/codec"
	"github.com/bureau-foundation/transportd/lib/daemon"
	"github.com/bureau-foundation/transportd/lib/eventlog"
	"github.com/bureau-foundation/transportd/lib/schema/transport"
	"github.com/bureau-foundation/transportd/lib/testutil"
)

type fakeProbe struct {
	failMemory bool
}

func (p *fakeProbe) CPU(pid int32) (transport.CPUSample, error) {
	return transport.CPUSample{UserNanos: int64(pid) * 1000, Percent: 12.5}, nil
}

func (p *fakeProbe) Memory(pid int32) (transport.MemorySample, error) {
	if p.failMemory {
		return transport.MemorySample{}, errors.New("process exited")
	}
	return transport.MemorySample{ResidentBytes: uint64(pid) << 20}, nil
}

func (p *fakeProbe) Network() (transport.NetworkSample, error) {
	return transport.NetworkSample{BytesSent: 10, BytesReceived: 20}, nil
}

func newTestDaemon(t *testing.T) (*daemon.Daemon, *clock.FakeClock) {
	t.Helper()
	fakeClock := clock.Fake(time.Unix(0, 1000))
	d, err := daemon.New(daemon.Config{Clock: fakeClock})
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d, fakeClock
}

func dispatch(t *testing.T, d *daemon.Daemon, kind daemon.Kind, args any) transport.Status {
	t.Helper()
	payload, err := codec.Marshal(args)
	if err != nil {
		t.Fatalf("encoding payload: %v", err)
	}
	command, err := daemon.Decode(kind, payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return d.Dispatch(command)
}

func groupOf(t *testing.T, d *daemon.Daemon, sessionID int64, kind transport.Kind) transport.EventGroup {
	t.Helper()
	groups := d.EventLog().GetGroups(eventlog.GroupQuery{
		SessionID: sessionID,
		Kind:      kind,
		EndType:   transport.TypeEnd,
		From:      eventlog.MinTimestamp,
		To:        eventlog.MaxTimestamp,
	})
	if len(groups) != 1 {
		t.Fatalf("got %d %s groups for session %d, want 1", len(groups), kind, sessionID)
	}
	return groups[0]
}

func TestSampleLifecycle(t *testing.T) {
	d, fakeClock := newTestDaemon(t)
	begin := dispatch(t, d, daemon.KindBeginSession, transport.BeginSessionRequest{PID: 42})
	sessionID := begin.SessionID

	s := New(d, Config{Probe: &fakeProbe{}})

	fakeClock.Advance(time.Second)
	s.Sample()
	fakeClock.Advance(time.Second)
	s.Sample()

	cpu := groupOf(t, d, sessionID, transport.KindCPUUsage)
	if cpu.EventID != GroupID(sessionID, transport.KindCPUUsage) {
		t.Errorf("cpu group id = %d, want %d", cpu.EventID, GroupID(sessionID, transport.KindCPUUsage))
	}
	if len(cpu.Events) != 2 || cpu.Events[0].Type != transport.TypeBegin || cpu.Events[1].Type != transport.TypeData {
		t.Fatalf("cpu events = %+v, want begin then data", cpu.Events)
	}
	if cpu.Terminal {
		t.Error("cpu group terminal while session is active")
	}
	var sample transport.CPUSample
	if err := codec.Unmarshal(cpu.Events[1].Payload, &sample); err != nil {
		t.Fatalf("decoding cpu sample: %v", err)
	}
	if sample.UserNanos != 42000 || sample.Percent != 12.5 {
		t.Errorf("cpu sample = %+v", sample)
	}

	dispatch(t, d, daemon.KindEndSession, transport.EndSessionRequest{SessionID: sessionID})
	fakeClock.Advance(time.Second)
	s.Sample()

	for _, kind := range []transport.Kind{transport.KindCPUUsage, transport.KindMemoryUsage, transport.KindNetworkSpeed} {
		group := groupOf(t, d, sessionID, kind)
		if !group.Terminal {
			t.Errorf("%s group not terminal after session ended", kind)
		}
		if last := group.Events[len(group.Events)-1]; last.Type != transport.TypeEnd || last.Timestamp != group.EndTimestamp {
			t.Errorf("%s last event = %+v", kind, last)
		}
	}

	// Nothing more is recorded for the ended session.
	before := d.EventLog().Stats().TotalAdded
	fakeClock.Advance(time.Second)
	s.Sample()
	if after := d.EventLog().Stats().TotalAdded; after != before {
		t.Errorf("sampling with no active sessions added %d events", after-before)
	}
}

func TestProbeFailureSkipsKind(t *testing.T) {
	d, _ := newTestDaemon(t)
	begin := dispatch(t, d, daemon.KindBeginSession, transport.BeginSessionRequest{PID: 7})

	New(d, Config{Probe: &fakeProbe{failMemory: true}}).Sample()

	groups := d.EventLog().GetGroups(eventlog.GroupQuery{
		SessionID: begin.SessionID,
		Kind:      transport.KindMemoryUsage,
		From:      eventlog.MinTimestamp,
		To:        eventlog.MaxTimestamp,
	})
	if len(groups) != 0 {
		t.Errorf("memory groups = %+v, want none", groups)
	}
	groupOf(t, d, begin.SessionID, transport.KindCPUUsage)
	groupOf(t, d, begin.SessionID, transport.KindNetworkSpeed)
}

func TestGroupBeginsOnFirstSuccessfulSample(t *testing.T) {
	d, fakeClock := newTestDaemon(t)
	begin := dispatch(t, d, daemon.KindBeginSession, transport.BeginSessionRequest{PID: 7})

	probe := &fakeProbe{failMemory: true}
	s := New(d, Config{Probe: probe})
	fakeClock.Advance(time.Second)
	s.Sample()

	probe.failMemory = false
	fakeClock.Advance(time.Second)
	s.Sample()

	memory := groupOf(t, d, begin.SessionID, transport.KindMemoryUsage)
	if len(memory.Events) != 1 || memory.Events[0].Type != transport.TypeBegin {
		t.Fatalf("memory events = %+v, want a single begin", memory.Events)
	}
	cpu := groupOf(t, d, begin.SessionID, transport.KindCPUUsage)
	if len(cpu.Events) != 2 || cpu.Events[1].Type != transport.TypeData {
		t.Errorf("cpu events = %+v, want begin then data", cpu.Events)
	}
}

func TestEndSkipsKindsNeverBegun(t *testing.T) {
	d, fakeClock := newTestDaemon(t)
	begin := dispatch(t, d, daemon.KindBeginSession, transport.BeginSessionRequest{PID: 7})

	s := New(d, Config{Probe: &fakeProbe{failMemory: true}})
	fakeClock.Advance(time.Second)
	s.Sample()

	dispatch(t, d, daemon.KindEndSession, transport.EndSessionRequest{SessionID: begin.SessionID})
	fakeClock.Advance(time.Second)
	s.Sample()

	groups := d.EventLog().GetGroups(eventlog.GroupQuery{
		SessionID: begin.SessionID,
		Kind:      transport.KindMemoryUsage,
		From:      eventlog.MinTimestamp,
		To:        eventlog.MaxTimestamp,
	})
	if len(groups) != 0 {
		t.Errorf("memory groups = %+v, want none", groups)
	}
	if cpu := groupOf(t, d, begin.SessionID, transport.KindCPUUsage); !cpu.Terminal {
		t.Error("cpu group not terminal after session ended")
	}
}

func TestRunSamplesOnTick(t *testing.T) {
	d, fakeClock := newTestDaemon(t)
	begin := dispatch(t, d, daemon.KindBeginSession, transport.BeginSessionRequest{PID: 9})

	s := New(d, Config{Interval: 500 * time.Millisecond, Probe: &fakeProbe{}})
	events, cancelWatch := d.EventLog().Watch(16)
	defer cancelWatch()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	fakeClock.WaitForTimers(1)
	fakeClock.Advance(500 * time.Millisecond)

	for range sampledKinds {
		event := testutil.RequireReceive(t, events, 5*time.Second, "waiting for sample event")
		if event.SessionID != begin.SessionID || event.Type != transport.TypeBegin {
			t.Errorf("sample event = %+v", event)
		}
	}

	cancel()
	if err := testutil.RequireReceive(t, done, 5*time.Second, "waiting for Run"); err != nil {
		t.Errorf("Run: %v", err)
	}
}

func TestGroupID(t *testing.T) {
	a := GroupID(100, transport.KindCPUUsage)
	if a != GroupID(100, transport.KindCPUUsage) {
		t.Error("GroupID is not deterministic")
	}
	if a <= 0 {
		t.Errorf("GroupID = %d, want positive", a)
	}
	if a == GroupID(100, transport.KindMemoryUsage) || a == GroupID(101, transport.KindCPUUsage) {
		t.Error("distinct (session, kind) pairs share a group id")
	}
}

func TestComponentHasNoHandles(t *testing.T) {
	d, _ := newTestDaemon(t)
	s := New(d, Config{})
	if s.PublicService() != nil || s.InternalService() != nil {
		t.Error("sampler exposes service handles")
	}
	before := len(d.Handles())
	d.RegisterComponent(s)
	if len(d.Handles()) != before {
		t.Error("registering the sampler added handles")
	}
}

func TestHostProbeReadsSelf(t *testing.T) {
	pid := int32(os.Getpid())
	probe := HostProbe{}

	memory, err := probe.Memory(pid)
	if err != nil {
		t.Skipf("process memory unavailable on this host: %v", err)
	}
	if memory.ResidentBytes == 0 {
		t.Error("resident memory of the test process is zero")
	}
	if _, err := probe.CPU(pid); err != nil {
		t.Errorf("CPU(self): %v", err)
	}
}
