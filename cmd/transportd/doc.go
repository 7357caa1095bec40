// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// transportd is the transport daemon. It keeps a bounded in-memory log
// of profiling events and the sessions they belong to, and serves both
// over a CBOR socket to clients (queries, commands, live streams) and
// to on-device agents (event and blob uploads).
//
// Usage:
//
//	transportd [--config FILE] [--address ADDR] [--log-level LEVEL] [--no-sampler]
//
// The config file may also be named by TRANSPORTD_CONFIG. Without
// either, built-in defaults apply. Flags override file values.
package main
