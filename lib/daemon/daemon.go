// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/transportd/lib/bytecache"
	"github.com/bureau-foundation/transportd/lib/clock"
	"github.com/bureau-foundation/transportd/lib/eventlog"
	"github.com/bureau-foundation/transportd/lib/schema/transport"
	"github.com/bureau-foundation/transportd/lib/service"
	"github.com/bureau-foundation/transportd/lib/session"
)

// Config configures a Daemon.
type Config struct {
	EventLog eventlog.Config
	Cache    bytecache.Config

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to a logger that discards everything.
	Logger *slog.Logger
}

// Daemon owns the transport state and serves it. Construct with New.
type Daemon struct {
	clock     clock.Clock
	logger    *slog.Logger
	events    *eventlog.Log
	cache     *bytecache.Cache
	server    *service.SocketServer
	startedAt time.Time

	// dispatchMu serializes commands, state views, and component
	// registration.
	dispatchMu sync.Mutex
	state      State
	components []Component
	handles    []string
	runners    []Runner

	// running is reserved for the whole of RunServer, bind included.
	// runContext is set once the listener is bound so components
	// registered late still get started.
	running    bool
	runContext context.Context
	runGroup   sync.WaitGroup
}

// New creates a daemon and registers the built-in transport component.
// Nothing is bound until RunServer.
func New(config Config) (*Daemon, error) {
	if config.EventLog.EventCapacity < 0 || config.EventLog.GroupCapacity < 0 || config.EventLog.MemberCapacity < 0 {
		return nil, fmt.Errorf("event log capacities must not be negative: %+v", config.EventLog)
	}
	if config.Cache.Capacity < 0 {
		return nil, fmt.Errorf("cache capacity must not be negative: %d", config.Cache.Capacity)
	}

	daemonClock := config.Clock
	if daemonClock == nil {
		daemonClock = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	events := eventlog.New(config.EventLog)
	d := &Daemon{
		clock:     daemonClock,
		logger:    logger,
		events:    events,
		cache:     bytecache.New(config.Cache),
		server:    service.NewSocketServer(logger),
		startedAt: daemonClock.Now(),
		state: State{
			clock:    daemonClock,
			events:   events,
			sessions: session.NewRegistry(),
		},
	}

	d.RegisterComponent(NewTransportComponent(d))
	return d, nil
}

// EventLog returns the daemon's event log. Producers add to it
// directly; it has its own lock.
func (d *Daemon) EventLog() *eventlog.Log { return d.events }

// Clock returns the daemon clock.
func (d *Daemon) Clock() clock.Clock { return d.clock }

// Cache returns the daemon's byte cache.
func (d *Daemon) Cache() *bytecache.Cache { return d.cache }

// Logger returns the daemon logger.
func (d *Daemon) Logger() *slog.Logger { return d.logger }

// Dispatch executes cmd under the dispatch lock and returns its
// status.
func (d *Daemon) Dispatch(cmd Command) transport.Status {
	d.dispatchMu.Lock()
	status := cmd.ExecuteOn(&d.state)
	d.dispatchMu.Unlock()

	d.logger.Debug("command dispatched",
		"command", string(cmd.Kind()),
		"code", string(status.Code),
		"session_id", status.SessionID,
	)
	return status
}

// WithState calls fn with the daemon state under the dispatch lock. fn
// must not retain the State or block.
func (d *Daemon) WithState(fn func(state *State)) {
	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()
	fn(&d.state)
}

// RegisterComponent wires c's non-nil service handles into the socket
// server and retains c. A nil component is ignored. A component that
// implements Runner is started with the server, or immediately if the
// server is already running.
func (d *Daemon) RegisterComponent(c Component) {
	if c == nil {
		return
	}

	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()

	for _, handle := range []ServiceHandle{c.PublicService(), c.InternalService()} {
		if handle == nil {
			continue
		}
		handle.Register(d.server)
		d.handles = append(d.handles, handle.Name())
		d.logger.Debug("service handle registered", "handle", handle.Name())
	}
	d.components = append(d.components, c)

	if runner, ok := c.(Runner); ok {
		d.runners = append(d.runners, runner)
		if d.runContext != nil {
			d.startRunnerLocked(runner)
		}
	}
}

// Components returns the number of registered components.
func (d *Daemon) Components() int {
	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()
	return len(d.components)
}

// Handles returns the names of all registered service handles in
// registration order.
func (d *Daemon) Handles() []string {
	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()
	return append([]string(nil), d.handles...)
}

// RunServer binds address and serves until ctx is cancelled, then
// stops runners and drains in-flight requests. The bind is the only
// failure RunServer reports.
func (d *Daemon) RunServer(ctx context.Context, address string) error {
	// Reserve before binding: Listen replaces a stale unix socket, which
	// would be the running server's socket on a second call.
	d.dispatchMu.Lock()
	if d.running {
		d.dispatchMu.Unlock()
		return errors.New("transport server is already running")
	}
	d.running = true
	d.dispatchMu.Unlock()

	listener, err := service.Listen(address)
	if err != nil {
		d.dispatchMu.Lock()
		d.running = false
		d.dispatchMu.Unlock()
		return fmt.Errorf("binding transport server: %w", err)
	}

	d.dispatchMu.Lock()
	d.runContext = ctx
	for _, runner := range d.runners {
		d.startRunnerLocked(runner)
	}
	d.dispatchMu.Unlock()

	d.logger.Info("transport daemon started",
		"address", address,
		"handles", d.Handles(),
	)

	serveErr := d.server.Serve(ctx, listener)
	d.runGroup.Wait()

	d.dispatchMu.Lock()
	d.runContext = nil
	d.running = false
	d.dispatchMu.Unlock()

	d.logger.Info("transport daemon stopped")
	return serveErr
}

func (d *Daemon) startRunnerLocked(runner Runner) {
	ctx := d.runContext
	d.runGroup.Add(1)
	go func() {
		defer d.runGroup.Done()
		if err := runner.Run(ctx); err != nil && ctx.Err() == nil {
			d.logger.Error("component stopped", "error", err)
		}
	}()
}

// Uptime returns the time since New.
func (d *Daemon) Uptime() time.Duration {
	return d.clock.Now().Sub(d.startedAt)
}
