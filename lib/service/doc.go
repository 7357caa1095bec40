// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the CBOR socket protocol the daemon serves
// and the client used to call it.
//
// Every connection carries one request. The client writes a single
// CBOR map with an "action" field plus action-specific fields; the
// server routes on the action and either writes one [Response]
// envelope ({ok, error, data}) and closes, or, for actions registered
// with [SocketServer.HandleStream], hands the connection to the
// handler, which writes a sequence of CBOR values until it returns.
//
// Listen accepts the address forms the daemon is configured with:
//
//	unix:/run/transportd.sock   Unix socket
//	/run/transportd.sock        anything containing "/" is a Unix socket
//	tcp:127.0.0.1:7070          TCP
//	127.0.0.1:7070              TCP
package service
