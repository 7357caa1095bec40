// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/bureau-foundation/transportd/lib/codec"
)

// ActionFunc processes a request for a specific action. The raw
// parameter is the full CBOR request (including the "action" field);
// the handler decodes its own fields from it.
//
// Return a value to include in the success response, or an error for
// a failure response. A nil value produces {ok: true} with no data.
type ActionFunc func(ctx context.Context, raw []byte) (any, error)

// StreamFunc processes a streaming action. The handler owns conn until
// it returns and writes whatever sequence of CBOR values its protocol
// defines; the server closes conn afterwards. ctx is cancelled when
// the server shuts down.
type StreamFunc func(ctx context.Context, raw []byte, conn net.Conn)

// Response is the wire-format envelope for request-response actions.
type Response struct {
	OK    bool             `cbor:"ok"`
	Error string           `cbor:"error,omitempty"`
	Data  codec.RawMessage `cbor:"data,omitempty"`
}

// SocketServer serves the CBOR action protocol on a listener.
//
// Actions are registered with Handle and HandleStream. Registration
// may happen while Serve is running; the handler table has its own
// lock. Unknown actions receive an error response.
type SocketServer struct {
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[string]ActionFunc
	streams  map[string]StreamFunc

	// activeConnections tracks in-flight handlers so Serve can drain
	// them before returning.
	activeConnections sync.WaitGroup
}

// NewSocketServer creates a server with no registered actions.
func NewSocketServer(logger *slog.Logger) *SocketServer {
	return &SocketServer{
		logger:   logger,
		handlers: make(map[string]ActionFunc),
		streams:  make(map[string]StreamFunc),
	}
}

// Handle registers a request-response handler. Panics if the action
// is already registered under either kind.
func (s *SocketServer) Handle(action string, handler ActionFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkUnregisteredLocked(action)
	s.handlers[action] = handler
}

// HandleStream registers a streaming handler. Panics if the action is
// already registered under either kind.
func (s *SocketServer) HandleStream(action string, handler StreamFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkUnregisteredLocked(action)
	s.streams[action] = handler
}

func (s *SocketServer) checkUnregisteredLocked(action string) {
	_, plain := s.handlers[action]
	_, stream := s.streams[action]
	if plain || stream {
		panic(fmt.Sprintf("service.SocketServer: duplicate handler for action %q", action))
	}
}

// Actions returns the number of registered actions.
func (s *SocketServer) Actions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.handlers) + len(s.streams)
}

// Serve accepts connections on listener and dispatches each request to
// its handler. Blocks until ctx is cancelled, then closes the
// listener, waits for in-flight handlers, and returns nil.
func (s *SocketServer) Serve(ctx context.Context, listener net.Listener) error {
	// Unblock Accept when the context is cancelled.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("socket server listening",
		"network", listener.Addr().Network(),
		"address", listener.Addr().String(),
	)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			s.handleConnection(ctx, conn)
		}()
	}

	s.activeConnections.Wait()
	return nil
}

// readTimeout is how long we wait for the client to send its request.
const readTimeout = 30 * time.Second

// writeTimeout is how long we wait for a response to be written.
const writeTimeout = 10 * time.Second

// maxRequestSize bounds a single CBOR request. Byte cache uploads are
// the largest requests.
const maxRequestSize = 8 * 1024 * 1024

func (s *SocketServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))

	// CBOR is self-delimiting, so no framing is needed. LimitReader
	// keeps a client from exhausting memory.
	var raw codec.RawMessage
	if err := codec.NewDecoder(io.LimitReader(conn, maxRequestSize)).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			// Client connected but sent nothing.
			return
		}
		s.writeError(conn, fmt.Sprintf("invalid request: %v", err))
		return
	}

	var header struct {
		Action string `cbor:"action"`
	}
	if err := codec.Unmarshal(raw, &header); err != nil {
		s.writeError(conn, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if header.Action == "" {
		s.writeError(conn, "missing required field: action")
		return
	}

	s.mu.RLock()
	handler, isPlain := s.handlers[header.Action]
	stream, isStream := s.streams[header.Action]
	s.mu.RUnlock()

	switch {
	case isStream:
		// Stream handlers set their own deadlines.
		conn.SetReadDeadline(time.Time{})
		stream(ctx, []byte(raw), conn)
	case isPlain:
		result, err := handler(ctx, []byte(raw))
		if err != nil {
			s.logger.Debug("action failed",
				"action", header.Action,
				"error", err,
			)
			s.writeError(conn, err.Error())
			return
		}
		s.writeSuccess(conn, result)
	default:
		s.writeError(conn, fmt.Sprintf("unknown action %q", header.Action))
	}
}

// writeError sends {ok: false, error: message}. Write failures are
// logged at debug: the connection is closing regardless.
func (s *SocketServer) writeError(conn net.Conn, message string) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := codec.NewEncoder(conn).Encode(Response{
		OK:    false,
		Error: message,
	}); err != nil {
		s.logger.Debug("failed to write error response", "error", err)
	}
}

// writeSuccess sends {ok: true} with result, if any, marshaled into
// the data field.
func (s *SocketServer) writeSuccess(conn net.Conn, result any) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	response := Response{OK: true}
	if result != nil {
		data, err := codec.Marshal(result)
		if err != nil {
			s.writeError(conn, fmt.Sprintf("internal: marshaling response: %v", err))
			return
		}
		response.Data = data
	}

	if err := codec.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Debug("failed to write success response", "error", err)
	}
}
