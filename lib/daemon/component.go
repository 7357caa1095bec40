// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package daemon

import (
	"context"

	"github.com/bureau-foundation/transportd/lib/service"
)

// ServiceHandle is one set of socket actions contributed by a
// component.
type ServiceHandle interface {
	// Name identifies the handle in logs and status output.
	Name() string

	// Register adds the handle's actions to server.
	Register(server *service.SocketServer)
}

// Component is a unit of daemon functionality. Either handle may be
// nil.
type Component interface {
	PublicService() ServiceHandle
	InternalService() ServiceHandle
}

// Runner is implemented by components with background work. Run
// blocks until ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}
