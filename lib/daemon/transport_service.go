// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package daemon

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bureau-foundation/transportd/lib/codec"
	"github.com/bureau-foundation/transportd/lib/eventlog"
	"github.com/bureau-foundation/transportd/lib/schema/transport"
	"github.com/bureau-foundation/transportd/lib/service"
	"github.com/bureau-foundation/transportd/lib/version"
)

// Handle names of the transport component.
const (
	PublicHandleName   = "transport"
	InternalHandleName = "transport.internal"
)

// TransportComponent serves the daemon's own state: the public handle
// answers client queries and executes commands; the internal handle
// accepts events and blobs from on-device agents.
type TransportComponent struct {
	daemon *Daemon
}

// NewTransportComponent creates the transport component for d. New
// registers one automatically.
func NewTransportComponent(d *Daemon) *TransportComponent {
	return &TransportComponent{daemon: d}
}

func (c *TransportComponent) PublicService() ServiceHandle {
	return &publicTransport{daemon: c.daemon}
}

func (c *TransportComponent) InternalService() ServiceHandle {
	return &internalTransport{daemon: c.daemon}
}

type publicTransport struct {
	daemon *Daemon
}

func (p *publicTransport) Name() string { return PublicHandleName }

func (p *publicTransport) Register(server *service.SocketServer) {
	server.Handle("get_current_time", p.handleGetCurrentTime)
	server.Handle("get_version", p.handleGetVersion)
	server.Handle("get_events", p.handleGetEvents)
	server.Handle("get_event_groups", p.handleGetEventGroups)
	server.Handle("get_group", p.handleGetGroup)
	server.Handle("get_sessions", p.handleGetSessions)
	server.Handle("execute", p.handleExecute)
	server.Handle("get_bytes", p.handleGetBytes)
	server.Handle("status", p.handleStatus)
	server.HandleStream("stream_events", p.handleStreamEvents)
}

func (p *publicTransport) handleGetCurrentTime(ctx context.Context, raw []byte) (any, error) {
	return transport.TimeResponse{TimestampNanos: p.daemon.clock.NowNanos()}, nil
}

func (p *publicTransport) handleGetVersion(ctx context.Context, raw []byte) (any, error) {
	return transport.VersionResponse{
		Version: version.Short(),
		Commit:  version.Commit(),
	}, nil
}

func (p *publicTransport) handleGetEvents(ctx context.Context, raw []byte) (any, error) {
	var request transport.EventsRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid get_events request: %w", err)
	}
	from, to := bounds(request.From, request.To)
	return transport.EventsResponse{Events: p.daemon.events.Get(from, to)}, nil
}

func (p *publicTransport) handleGetEventGroups(ctx context.Context, raw []byte) (any, error) {
	var request transport.EventGroupsRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid get_event_groups request: %w", err)
	}
	from, to := bounds(request.From, request.To)
	groups := p.daemon.events.GetGroups(eventlog.GroupQuery{
		SessionID: request.SessionID,
		Kind:      request.Kind,
		EndType:   request.EndType,
		From:      from,
		To:        to,
	})
	return transport.EventGroupsResponse{Groups: groups}, nil
}

func (p *publicTransport) handleGetGroup(ctx context.Context, raw []byte) (any, error) {
	var request transport.GroupRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid get_group request: %w", err)
	}
	group, found := p.daemon.events.GetGroup(request.EventID)
	if !found {
		return transport.GroupResponse{}, nil
	}
	return transport.GroupResponse{Found: true, Group: &group}, nil
}

func (p *publicTransport) handleGetSessions(ctx context.Context, raw []byte) (any, error) {
	var sessions []transport.Session
	p.daemon.WithState(func(state *State) {
		sessions = state.Sessions()
	})
	return transport.SessionsResponse{Sessions: sessions}, nil
}

// handleExecute decodes and dispatches a command. Decode failures are
// call errors; whatever status the command produces is returned as a
// successful response.
func (p *publicTransport) handleExecute(ctx context.Context, raw []byte) (any, error) {
	var request transport.ExecuteRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid execute request: %w", err)
	}

	command, err := Decode(Kind(request.Command), []byte(request.Payload))
	if err != nil {
		return nil, err
	}

	requestID := uuid.New().String()
	p.daemon.logger.Debug("executing command",
		"request_id", requestID,
		"command", request.Command,
	)

	status := p.daemon.Dispatch(command)
	if !status.OK() {
		p.daemon.logger.Info("command failed",
			"request_id", requestID,
			"command", request.Command,
			"code", string(status.Code),
			"message", status.Message,
		)
	}
	return transport.ExecuteResponse{Status: status, RequestID: requestID}, nil
}

func (p *publicTransport) handleGetBytes(ctx context.Context, raw []byte) (any, error) {
	var request transport.BytesRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid get_bytes request: %w", err)
	}
	contents, found, err := p.daemon.cache.Get(request.ID)
	if err != nil {
		return nil, err
	}
	return transport.BytesResponse{Found: found, Contents: contents}, nil
}

func (p *publicTransport) handleStatus(ctx context.Context, raw []byte) (any, error) {
	response := transport.StatusResponse{
		EventLog:      p.daemon.events.Stats(),
		Cache:         p.daemon.cache.Stats(),
		Components:    p.daemon.Components(),
		Actions:       p.daemon.server.Actions(),
		UptimeSeconds: p.daemon.Uptime().Seconds(),
	}
	p.daemon.WithState(func(state *State) {
		response.Sessions = state.sessions.Len()
		response.ActiveSessions = len(state.ActiveSessions())
	})
	return response, nil
}

// bounds resolves optional range bounds to an inclusive interval.
func bounds(from, to *int64) (int64, int64) {
	resolvedFrom, resolvedTo := eventlog.MinTimestamp, eventlog.MaxTimestamp
	if from != nil {
		resolvedFrom = *from
	}
	if to != nil {
		resolvedTo = *to
	}
	return resolvedFrom, resolvedTo
}

type internalTransport struct {
	daemon *Daemon
}

func (i *internalTransport) Name() string { return InternalHandleName }

func (i *internalTransport) Register(server *service.SocketServer) {
	server.Handle("send_event", i.handleSendEvent)
	server.Handle("send_bytes", i.handleSendBytes)
}

func (i *internalTransport) handleSendEvent(ctx context.Context, raw []byte) (any, error) {
	var request transport.SendEventRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid send_event request: %w", err)
	}
	i.daemon.events.Add(request.Event)
	return nil, nil
}

func (i *internalTransport) handleSendBytes(ctx context.Context, raw []byte) (any, error) {
	var request transport.SendBytesRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid send_bytes request: %w", err)
	}
	id, err := i.daemon.cache.Put(request.Contents)
	if err != nil {
		return nil, err
	}
	return transport.SendBytesResponse{ID: id}, nil
}
