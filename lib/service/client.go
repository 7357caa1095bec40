// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/bureau-foundation/transportd/lib/codec"
)

// dialTimeout covers only the connect phase.
const dialTimeout = 5 * time.Second

// responseReadTimeout is how long Call waits for the response after
// writing the request.
const responseReadTimeout = 45 * time.Second

// maxResponseSize bounds a single CBOR response.
const maxResponseSize = 8 * 1024 * 1024

// ServiceError is returned by Call when the server responds with
// ok=false.
type ServiceError struct {
	Action  string
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error on %q: %s", e.Action, e.Message)
}

// Client sends CBOR requests to a daemon address. Each Call opens a
// new connection, matching the server's one-request-per-connection
// model.
type Client struct {
	network string
	target  string
}

// NewClient creates a client for an address in any of the forms
// accepted by [Listen].
func NewClient(address string) (*Client, error) {
	network, target, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}
	return &Client{network: network, target: target}, nil
}

// Call sends a request and decodes the response data into result.
//
// fields holds the action-specific request fields; the client adds
// "action". Pass nil for actions without parameters. On ok=false the
// error is a *ServiceError; transport and decoding failures are plain
// errors.
func (c *Client) Call(ctx context.Context, action string, fields map[string]any, result any) error {
	conn, err := c.open(ctx, action, fields)
	if err != nil {
		return err
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(responseReadTimeout))
	var response Response
	if err := codec.NewDecoder(io.LimitReader(conn, maxResponseSize)).Decode(&response); err != nil {
		return fmt.Errorf("calling %q on %s: reading response: %w", action, c.target, err)
	}

	if !response.OK {
		return &ServiceError{Action: action, Message: response.Error}
	}

	if result != nil && len(response.Data) > 0 {
		if err := codec.Unmarshal(response.Data, result); err != nil {
			return fmt.Errorf("decoding response data for %q: %w", action, err)
		}
	}
	return nil
}

// Stream is the client side of a streaming action: a sequence of CBOR
// values read from one connection.
type Stream struct {
	conn    net.Conn
	decoder *codec.Decoder
	stop    func() bool
}

// Stream sends a request for a streaming action and returns the open
// connection. The caller reads frames with Recv and must Close the
// stream. Cancelling ctx closes the connection, which unblocks Recv.
func (c *Client) Stream(ctx context.Context, action string, fields map[string]any) (*Stream, error) {
	conn, err := c.open(ctx, action, fields)
	if err != nil {
		return nil, err
	}

	return &Stream{
		conn:    conn,
		decoder: codec.NewDecoder(conn),
		stop:    context.AfterFunc(ctx, func() { conn.Close() }),
	}, nil
}

// Recv decodes the next value on the stream into v.
func (s *Stream) Recv(v any) error {
	return s.decoder.Decode(v)
}

// Close closes the stream connection.
func (s *Stream) Close() error {
	s.stop()
	return s.conn.Close()
}

// open dials, writes the request map, and half-closes the write side.
func (c *Client) open(ctx context.Context, action string, fields map[string]any) (net.Conn, error) {
	request := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		request[key] = value
	}
	request["action"] = action

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, c.network, c.target)
	if err != nil {
		return nil, fmt.Errorf("calling %q on %s: connecting: %w", action, c.target, err)
	}

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		conn.Close()
		return nil, fmt.Errorf("calling %q on %s: writing request: %w", action, c.target, err)
	}

	// Half-close so the server's read side sees EOF cleanly.
	if closer, ok := conn.(interface{ CloseWrite() error }); ok {
		closer.CloseWrite()
	}
	return conn, nil
}
