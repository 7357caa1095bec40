// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"fmt"
	"slices"
	"strconv"
)

// Kind is the producer category of an event. Groups are queried by
// kind. Values outside the named set are valid and reserved for
// producers that define their own categories.
type Kind int32

const (
	KindUnspecified  Kind = 0
	KindSession      Kind = 1
	KindProcess      Kind = 2
	KindCPUUsage     Kind = 3
	KindMemoryUsage  Kind = 4
	KindNetworkSpeed Kind = 5
	KindEcho         Kind = 6
)

var kindNames = map[Kind]string{
	KindUnspecified:  "unspecified",
	KindSession:      "session",
	KindProcess:      "process",
	KindCPUUsage:     "cpu_usage",
	KindMemoryUsage:  "memory_usage",
	KindNetworkSpeed: "network_speed",
	KindEcho:         "echo",
}

// String returns the kind's name, or its number for producer-defined
// kinds.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return strconv.FormatInt(int64(k), 10)
}

// ParseKind accepts a kind name or a decimal number.
func ParseKind(text string) (Kind, error) {
	for kind, name := range kindNames {
		if name == text {
			return kind, nil
		}
	}
	number, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown event kind %q", text)
	}
	return Kind(number), nil
}

// Type is the phase of an event within its group. Which type ends a
// group is a per-query parameter, not a property of the stored event;
// TypeEnd is the conventional choice.
type Type int32

const (
	TypeUnspecified Type = 0
	TypeBegin       Type = 1
	TypeData        Type = 2
	TypeEnd         Type = 3
)

var typeNames = map[Type]string{
	TypeUnspecified: "unspecified",
	TypeBegin:       "begin",
	TypeData:        "data",
	TypeEnd:         "end",
}

// String returns the type's name, or its number for producer-defined
// types.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return strconv.FormatInt(int64(t), 10)
}

// ParseType accepts a type name or a decimal number.
func ParseType(text string) (Type, error) {
	for eventType, name := range typeNames {
		if name == text {
			return eventType, nil
		}
	}
	number, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown event type %q", text)
	}
	return Type(number), nil
}

// Event is one timestamped record from a producer. Events sharing an
// EventID form one logical span (an [EventGroup]).
//
// Producers are expected to append in non-decreasing Timestamp order.
// Nothing enforces this and stores never re-sort.
type Event struct {
	EventID   int64  `cbor:"event_id"`
	Kind      Kind   `cbor:"kind"`
	Type      Type   `cbor:"type"`
	Timestamp int64  `cbor:"timestamp"`
	SessionID int64  `cbor:"session_id"`
	Payload   []byte `cbor:"payload,omitempty"`
}

// Clone returns a copy of the event that shares no memory with e.
func (e Event) Clone() Event {
	e.Payload = slices.Clone(e.Payload)
	return e
}

// EventGroup aggregates every retained event sharing one EventID.
// StartTimestamp is the timestamp of the first event seen for the id;
// EndTimestamp is the timestamp of the most recent one.
//
// Terminal is only meaningful on groups returned by a group query,
// which computes it against the query's end type. Use EndedBy to
// check a group obtained any other way.
type EventGroup struct {
	EventID        int64   `cbor:"event_id"`
	Kind           Kind    `cbor:"kind"`
	SessionID      int64   `cbor:"session_id"`
	StartTimestamp int64   `cbor:"start_timestamp"`
	EndTimestamp   int64   `cbor:"end_timestamp"`
	Terminal       bool    `cbor:"terminal"`
	Events         []Event `cbor:"events"`
}

// EndedBy reports whether any member event has the given type.
func (g EventGroup) EndedBy(endType Type) bool {
	for _, event := range g.Events {
		if event.Type == endType {
			return true
		}
	}
	return false
}

// Overlaps reports whether the group's [StartTimestamp, EndTimestamp]
// interval intersects [from, to].
func (g EventGroup) Overlaps(from, to int64) bool {
	return g.StartTimestamp <= to && g.EndTimestamp >= from
}
