// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package daemon is the transport daemon: the process-wide owner of
// the event log, the session registry, the byte cache, and the socket
// server that exposes them.
//
// State changes go through commands. A [Command] is a tagged value
// built by [Decode] from a command name and a CBOR payload; executing
// it requires a [State], and the only way to obtain one is
// [Daemon.Dispatch] (or the read-only [Daemon.WithState]), which holds
// the dispatch lock for the whole execution. Command handlers are
// CPU-bound and never block, so one lock serializes them without
// starving readers of the event log, which has its own lock.
//
// Components plug services into the daemon. Each [Component] exposes
// up to two [ServiceHandle] values, a public one for clients and an
// internal one for on-device agents; [Daemon.RegisterComponent] wires
// whichever are non-nil into the socket server. Components that also
// implement [Runner] are started by [Daemon.RunServer]. The built-in
// transport component is registered by [New].
package daemon
