// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"testing"

	"github.com/bureau-foundation/transportd/lib/schema/transport"
)

func TestCreateIsActive(t *testing.T) {
	s := Create("emulator-5554", "boot-1", 42, 100)

	if !IsActive(s) {
		t.Error("new session is not Active")
	}
	if s.EndTimestamp != transport.SentinelMax {
		t.Errorf("EndTimestamp = %d, want SentinelMax", s.EndTimestamp)
	}
	if s.SessionID != 100 || s.StartTimestamp != 100 {
		t.Errorf("SessionID/StartTimestamp = %d/%d, want 100/100", s.SessionID, s.StartTimestamp)
	}
	if s.DeviceSerial != "emulator-5554" || s.BootID != "boot-1" || s.PID != 42 {
		t.Errorf("identity fields = %+v", s)
	}
}

func TestEndTransitionsOnce(t *testing.T) {
	s := Create("serial", "boot", 1, 100)

	if !End(&s, 150) {
		t.Fatal("End on Active session returned false")
	}
	if IsActive(s) || s.EndTimestamp != 150 {
		t.Errorf("after End: active=%v end=%d, want ended at 150", IsActive(s), s.EndTimestamp)
	}

	if End(&s, 200) {
		t.Error("End on Ended session returned true")
	}
	if s.EndTimestamp != 150 {
		t.Errorf("second End moved EndTimestamp to %d", s.EndTimestamp)
	}
}

func TestIsActiveIsSentinelComparison(t *testing.T) {
	s := transport.Session{EndTimestamp: transport.SentinelMax - 1}
	if IsActive(s) {
		t.Error("session one below the sentinel reported Active")
	}
	s.EndTimestamp = transport.SentinelMax
	if !IsActive(s) {
		t.Error("session at the sentinel reported Ended")
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	first := Create("a", "boot", 10, 100)
	second := Create("a", "boot", 20, 200)
	third := Create("a", "boot", 10, 300)
	for _, s := range []transport.Session{first, second, third} {
		if !registry.Add(s) {
			t.Fatalf("Add(%d) rejected", s.SessionID)
		}
	}
	if registry.Add(first) {
		t.Error("duplicate Add accepted")
	}
	if registry.Len() != 3 {
		t.Errorf("Len = %d, want 3", registry.Len())
	}

	stored, _ := registry.Lookup(100)
	End(stored, 150)

	got, found := registry.Get(100)
	if !found || got.EndTimestamp != 150 {
		t.Errorf("Get(100) = %+v, found %v; want ended at 150", got, found)
	}

	// Copies returned by Get do not alias the registry.
	got.EndTimestamp = 999
	if again, _ := registry.Get(100); again.EndTimestamp != 150 {
		t.Errorf("mutating Get result changed the registry: %d", again.EndTimestamp)
	}

	active := registry.Active()
	if len(active) != 2 || active[0].SessionID != 200 || active[1].SessionID != 300 {
		t.Errorf("Active = %+v, want sessions 200 and 300", active)
	}

	forPID := registry.ActiveForPID(10)
	if len(forPID) != 1 || forPID[0].SessionID != 300 {
		t.Errorf("ActiveForPID(10) = %+v, want session 300", forPID)
	}

	if !registry.Remove(200) || registry.Remove(200) {
		t.Error("Remove(200) should succeed once")
	}
	all := registry.All()
	if len(all) != 2 || all[0].SessionID != 100 || all[1].SessionID != 300 {
		t.Errorf("All after Remove = %+v", all)
	}
	if _, found := registry.Get(200); found {
		t.Error("removed session still found")
	}
}
