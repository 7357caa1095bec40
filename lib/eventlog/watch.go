// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventlog

import (
	"sync"

	"github.com/bureau-foundation/transportd/lib/schema/transport"
)

// DefaultWatchBuffer is the channel capacity used when Watch is called
// with a non-positive buffer.
const DefaultWatchBuffer = 64

type watcher struct {
	events chan transport.Event
}

// Watch registers a live feed of every event added from now on. The
// channel is closed by the returned cancel function, which is safe to
// call more than once.
//
// Delivery never blocks Add: when the channel is full the event is
// dropped for this watcher and counted in Stats().WatcherDrops.
// Watchers detect gaps by comparing timestamps or re-querying Get.
func (l *Log) Watch(buffer int) (<-chan transport.Event, func()) {
	if buffer <= 0 {
		buffer = DefaultWatchBuffer
	}
	registered := &watcher{events: make(chan transport.Event, buffer)}

	l.mu.Lock()
	l.watchers = append(l.watchers, registered)
	l.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			for i, existing := range l.watchers {
				if existing == registered {
					l.watchers = append(l.watchers[:i], l.watchers[i+1:]...)
					break
				}
			}
			close(registered.events)
		})
	}
	return registered.events, cancel
}

// notifyLocked hands the event to every watcher without blocking.
// Sending under l.mu keeps delivery order equal to insertion order
// and guarantees cancel never closes a channel mid-send.
func (l *Log) notifyLocked(event transport.Event) {
	for _, registered := range l.watchers {
		select {
		case registered.events <- event.Clone():
		default:
			l.watcherDrops++
		}
	}
}
