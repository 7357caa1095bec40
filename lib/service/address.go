// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"fmt"
	"net"
	"os"
	"strings"
)

// ParseAddress splits a listen or dial address into a network
// ("unix" or "tcp") and the network-specific address.
func ParseAddress(address string) (network, target string, err error) {
	switch {
	case address == "":
		return "", "", fmt.Errorf("empty address")
	case strings.HasPrefix(address, "unix:"):
		target = strings.TrimPrefix(address, "unix:")
		if target == "" {
			return "", "", fmt.Errorf("address %q has an empty socket path", address)
		}
		return "unix", target, nil
	case strings.HasPrefix(address, "tcp:"):
		target = strings.TrimPrefix(address, "tcp:")
		if _, _, err := net.SplitHostPort(target); err != nil {
			return "", "", fmt.Errorf("address %q: %w", address, err)
		}
		return "tcp", target, nil
	case strings.Contains(address, "/"):
		return "unix", address, nil
	default:
		if _, _, err := net.SplitHostPort(address); err != nil {
			return "", "", fmt.Errorf("address %q: %w", address, err)
		}
		return "tcp", address, nil
	}
}

// Listen binds the given address. For Unix sockets, any stale socket
// file at the path is removed first, and the listener removes the file
// when closed.
func Listen(address string) (net.Listener, error) {
	network, target, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}

	if network == "unix" {
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing stale socket %s: %w", target, err)
		}
	}

	listener, err := net.Listen(network, target)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", address, err)
	}
	if unixListener, ok := listener.(*net.UnixListener); ok {
		unixListener.SetUnlinkOnClose(true)
	}
	return listener, nil
}
