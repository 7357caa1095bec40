// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventlog

import (
	"encoding/binary"
	"sync"
	"testing"

	"github.com/bureau-foundation/transportd/lib/schema/transport"
)

// consistentEvent builds an event whose every field is derived from
// one value, so a reader can tell a torn copy from a whole one.
func consistentEvent(producer, sequence int64) transport.Event {
	value := producer<<32 | sequence
	payload := make([]byte, 16)
	binary.BigEndian.PutUint64(payload[0:8], uint64(value))
	binary.BigEndian.PutUint64(payload[8:16], uint64(^value))
	return transport.Event{
		EventID:   producer,
		Kind:      transport.Kind(producer + 10),
		Type:      transport.TypeData,
		Timestamp: value,
		SessionID: -value,
		Payload:   payload,
	}
}

func checkConsistent(t *testing.T, event transport.Event) {
	t.Helper()
	value := event.Timestamp
	if event.SessionID != -value || event.EventID != value>>32 || event.Kind != transport.Kind(value>>32+10) {
		t.Errorf("torn event header: %+v", event)
		return
	}
	if len(event.Payload) != 16 ||
		int64(binary.BigEndian.Uint64(event.Payload[0:8])) != value ||
		int64(binary.BigEndian.Uint64(event.Payload[8:16])) != ^value {
		t.Errorf("torn event payload: %+v", event)
	}
}

func TestConcurrentProducersAndReaders(t *testing.T) {
	t.Parallel()

	const (
		producers = 8
		readers   = 4
		perWriter = 500
	)
	log := New(Config{EventCapacity: 64, GroupCapacity: 4})

	var writers sync.WaitGroup
	for producer := int64(1); producer <= producers; producer++ {
		writers.Add(1)
		go func() {
			defer writers.Done()
			for sequence := int64(0); sequence < perWriter; sequence++ {
				log.Add(consistentEvent(producer, sequence))
			}
		}()
	}

	done := make(chan struct{})
	var readerGroup sync.WaitGroup
	for reader := 0; reader < readers; reader++ {
		readerGroup.Add(1)
		go func() {
			defer readerGroup.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				for _, event := range log.Get(MinTimestamp, MaxTimestamp) {
					checkConsistent(t, event)
				}
				for producer := int64(1); producer <= producers; producer++ {
					group, found := log.GetGroup(producer)
					if !found {
						continue
					}
					for _, event := range group.Events {
						checkConsistent(t, event)
					}
					if group.StartTimestamp > group.EndTimestamp {
						t.Errorf("group %d span inverted: [%d, %d]", producer, group.StartTimestamp, group.EndTimestamp)
					}
				}
				log.GetGroups(GroupQuery{SessionID: 1, Kind: 11, From: MinTimestamp, To: MaxTimestamp})
			}
		}()
	}

	writers.Wait()
	close(done)
	readerGroup.Wait()

	stats := log.Stats()
	if stats.TotalAdded != producers*perWriter {
		t.Errorf("TotalAdded = %d, want %d", stats.TotalAdded, producers*perWriter)
	}
	if stats.Events != 64 {
		t.Errorf("retained events = %d, want 64", stats.Events)
	}
	if stats.Groups > 4 {
		t.Errorf("retained groups = %d, want <= 4", stats.Groups)
	}
}
