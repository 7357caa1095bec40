// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventlog

import (
	"math"
	"sync"

	"github.com/bureau-foundation/transportd/lib/ring"
	"github.com/bureau-foundation/transportd/lib/schema/transport"
)

const (
	// DefaultEventCapacity is the number of events retained when
	// Config.EventCapacity is zero.
	DefaultEventCapacity = 500

	// DefaultGroupCapacity is the number of groups retained when
	// Config.GroupCapacity is zero.
	DefaultGroupCapacity = 100
)

// Unbounded query limits. Get(MinTimestamp, MaxTimestamp) returns
// every retained event.
const (
	MinTimestamp int64 = math.MinInt64
	MaxTimestamp int64 = math.MaxInt64
)

// Config sizes a Log. Zero values select the defaults.
type Config struct {
	EventCapacity int
	GroupCapacity int
	// MemberCapacity bounds the events kept per group. Defaults to
	// EventCapacity, so a group can never hold more history than
	// the log itself.
	MemberCapacity int
}

// Log is a bounded, concurrency-safe event store. Construct with New.
type Log struct {
	mu sync.Mutex

	events *ring.Ring[transport.Event]
	groups *ring.Ring[group]

	memberCapacity int

	watchers     []*watcher
	watcherDrops uint64

	totalAdded    uint64
	eventsEvicted uint64
	groupsEvicted uint64
}

// group is the stored form of an EventGroup. Members are bounded by
// their own ring so a single long-lived id cannot grow without limit.
type group struct {
	eventID   int64
	kind      transport.Kind
	sessionID int64
	start     int64
	end       int64
	members   *ring.Ring[transport.Event]
}

// New creates an empty log.
func New(config Config) *Log {
	eventCapacity := config.EventCapacity
	if eventCapacity <= 0 {
		eventCapacity = DefaultEventCapacity
	}
	groupCapacity := config.GroupCapacity
	if groupCapacity <= 0 {
		groupCapacity = DefaultGroupCapacity
	}
	memberCapacity := config.MemberCapacity
	if memberCapacity <= 0 {
		memberCapacity = eventCapacity
	}
	return &Log{
		events:         ring.New[transport.Event](eventCapacity),
		groups:         ring.New[group](groupCapacity),
		memberCapacity: memberCapacity,
	}
}

// Add appends event and updates the group for its EventID: a new
// group starts and ends at the event's timestamp, an existing group's
// end advances to it. The log stores its own copy of the event.
func (l *Log) Add(event transport.Event) {
	stored := event.Clone()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.totalAdded++
	if _, evicted := l.events.Add(stored); evicted {
		l.eventsEvicted++
	}

	existing, found := l.groups.Find(func(candidate *group) bool {
		return candidate.eventID == stored.EventID
	})
	if found {
		existing.end = stored.Timestamp
		existing.members.Add(stored)
	} else {
		created := group{
			eventID:   stored.EventID,
			kind:      stored.Kind,
			sessionID: stored.SessionID,
			start:     stored.Timestamp,
			end:       stored.Timestamp,
			members:   ring.New[transport.Event](l.memberCapacity),
		}
		created.members.Add(stored)
		if _, evicted := l.groups.Add(created); evicted {
			l.groupsEvicted++
		}
	}

	l.notifyLocked(stored)
}

// Get returns copies of every retained event with from <= Timestamp
// <= to, in insertion order. Returns nil when nothing matches.
func (l *Log) Get(from, to int64) []transport.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := l.events.Collect(func(event *transport.Event) bool {
		return event.Timestamp >= from && event.Timestamp <= to
	})
	for i := range result {
		result[i] = result[i].Clone()
	}
	return result
}

// GroupQuery selects groups for GetGroups.
type GroupQuery struct {
	SessionID int64
	Kind      transport.Kind
	// EndType is the event type that marks a group terminal for this
	// query.
	EndType transport.Type
	From    int64
	To      int64
}

// GetGroups returns every retained group whose session and kind match
// the query and whose [start, end] span intersects [From, To], in
// group creation order. Terminal is set on each result when any
// retained member has the query's EndType.
func (l *Log) GetGroups(query GroupQuery) []transport.EventGroup {
	l.mu.Lock()
	defer l.mu.Unlock()

	var result []transport.EventGroup
	l.groups.ForEach(func(candidate *group) bool {
		if candidate.sessionID != query.SessionID || candidate.kind != query.Kind {
			return true
		}
		snapshot := candidate.snapshot()
		if !snapshot.Overlaps(query.From, query.To) {
			return true
		}
		snapshot.Terminal = snapshot.EndedBy(query.EndType)
		result = append(result, snapshot)
		return true
	})
	return result
}

// GetGroup returns the retained group for eventID. The returned
// group's Terminal field is false; check EndedBy with the end type
// that applies to the caller.
func (l *Log) GetGroup(eventID int64) (transport.EventGroup, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, found := l.groups.Find(func(candidate *group) bool {
		return candidate.eventID == eventID
	})
	if !found {
		return transport.EventGroup{}, false
	}
	return existing.snapshot(), true
}

// Stats reports the log's occupancy and lifetime counters.
func (l *Log) Stats() transport.LogStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	return transport.LogStats{
		Events:        l.events.Len(),
		Groups:        l.groups.Len(),
		EventCapacity: l.events.Cap(),
		GroupCapacity: l.groups.Cap(),
		TotalAdded:    l.totalAdded,
		EventsEvicted: l.eventsEvicted,
		GroupsEvicted: l.groupsEvicted,
		Watchers:      len(l.watchers),
		WatcherDrops:  l.watcherDrops,
	}
}

// snapshot copies the group out of the log. Caller holds l.mu.
func (g *group) snapshot() transport.EventGroup {
	members := make([]transport.Event, 0, g.members.Len())
	g.members.ForEach(func(event *transport.Event) bool {
		members = append(members, event.Clone())
		return true
	})
	return transport.EventGroup{
		EventID:        g.eventID,
		Kind:           g.kind,
		SessionID:      g.sessionID,
		StartTimestamp: g.start,
		EndTimestamp:   g.end,
		Events:         members,
	}
}
