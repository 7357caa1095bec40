// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sampler

import (
	"context"
	"encoding/binary"
	"log/slog"
	"time"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/transportd/lib/clock"
	"github.com/bureau-foundation/transportd/lib/codec"
	"github.com/bureau-foundation/transportd/lib/daemon"
	"github.com/bureau-foundation/transportd/lib/eventlog"
	"github.com/bureau-foundation/transportd/lib/schema/transport"
)

// DefaultInterval is the sampling period when Config leaves it unset.
const DefaultInterval = time.Second

// Source is the part of the daemon the sampler needs.
type Source interface {
	WithState(fn func(state *daemon.State))
	EventLog() *eventlog.Log
	Clock() clock.Clock
}

// Config configures a Sampler.
type Config struct {
	Interval time.Duration

	// Probe defaults to HostProbe.
	Probe Probe

	Logger *slog.Logger
}

// Sampler is a daemon component without service handles.
type Sampler struct {
	source   Source
	probe    Probe
	interval time.Duration
	logger   *slog.Logger

	// tracked holds the groups that have a begin event and no end
	// event yet. Only the Run goroutine touches it.
	tracked map[groupKey]bool
}

type groupKey struct {
	sessionID int64
	kind      transport.Kind
}

var _ daemon.Component = (*Sampler)(nil)
var _ daemon.Runner = (*Sampler)(nil)

// New creates a sampler reading session state from source.
func New(source Source, config Config) *Sampler {
	interval := config.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	probe := config.Probe
	if probe == nil {
		probe = HostProbe{}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sampler{
		source:   source,
		probe:    probe,
		interval: interval,
		logger:   logger,
		tracked:  make(map[groupKey]bool),
	}
}

func (s *Sampler) PublicService() daemon.ServiceHandle   { return nil }
func (s *Sampler) InternalService() daemon.ServiceHandle { return nil }

// Run samples on every tick until ctx is cancelled.
func (s *Sampler) Run(ctx context.Context) error {
	ticker := s.source.Clock().NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("sampler started", "interval", s.interval)
	for {
		select {
		case <-ticker.C:
			s.Sample()
		case <-ctx.Done():
			return nil
		}
	}
}

var sampledKinds = []transport.Kind{
	transport.KindCPUUsage,
	transport.KindMemoryUsage,
	transport.KindNetworkSpeed,
}

// Sample takes one round of samples. Run calls it on every tick; it is
// exported for callers that drive sampling themselves. Not safe for
// concurrent use with Run.
func (s *Sampler) Sample() {
	var active []transport.Session
	s.source.WithState(func(state *daemon.State) {
		active = state.ActiveSessions()
	})

	log := s.source.EventLog()
	now := s.source.Clock().NowNanos()

	current := make(map[groupKey]bool, len(active)*len(sampledKinds))
	for _, session := range active {
		for _, kind := range sampledKinds {
			key := groupKey{sessionID: session.SessionID, kind: kind}
			begun := s.tracked[key]
			if begun {
				current[key] = true
			}
			payload, err := s.read(kind, session.PID)
			if err != nil {
				s.logger.Debug("sample skipped",
					"session_id", session.SessionID,
					"pid", session.PID,
					"kind", kind.String(),
					"error", err,
				)
				continue
			}
			eventType := transport.TypeData
			if !begun {
				eventType = transport.TypeBegin
			}
			log.Add(transport.Event{
				EventID:   GroupID(session.SessionID, kind),
				Kind:      kind,
				Type:      eventType,
				Timestamp: now,
				SessionID: session.SessionID,
				Payload:   payload,
			})
			current[key] = true
		}
	}

	for key := range s.tracked {
		if current[key] {
			continue
		}
		log.Add(transport.Event{
			EventID:   GroupID(key.sessionID, key.kind),
			Kind:      key.kind,
			Type:      transport.TypeEnd,
			Timestamp: now,
			SessionID: key.sessionID,
		})
	}
	s.tracked = current
}

func (s *Sampler) read(kind transport.Kind, pid int32) ([]byte, error) {
	var sample any
	var err error
	switch kind {
	case transport.KindCPUUsage:
		sample, err = s.probe.CPU(pid)
	case transport.KindMemoryUsage:
		sample, err = s.probe.Memory(pid)
	case transport.KindNetworkSpeed:
		sample, err = s.probe.Network()
	}
	if err != nil {
		return nil, err
	}
	return codec.Marshal(sample)
}

// groupDomainKey is the BLAKE3 key for sampler group ids.
var groupDomainKey = [32]byte{
	't', 'r', 'a', 'n', 's', 'p', 'o', 'r', 't', 'd', '.', 's', 'a', 'm', 'p', 'l',
	'e', 'r', '.', 'g', 'r', 'o', 'u', 'p', 0, 0, 0, 0, 0, 0, 0, 0,
}

// GroupID returns the event id of the group holding a session's
// samples of one kind. Ids are positive and stable across restarts.
func GroupID(sessionID int64, kind transport.Kind) int64 {
	hasher, err := blake3.NewKeyed(groupDomainKey[:])
	if err != nil {
		panic("sampler: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	var input [12]byte
	binary.BigEndian.PutUint64(input[:8], uint64(sessionID))
	binary.BigEndian.PutUint32(input[8:], uint32(kind))
	hasher.Write(input[:])
	digest := hasher.Sum(nil)
	return int64(binary.BigEndian.Uint64(digest[:8]) &^ (1 << 63))
}
