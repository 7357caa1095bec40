// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds the few helpers shared by transportd tests.
//
// [SocketDir] returns a short directory under /tmp for Unix sockets,
// whose paths are limited to 108 bytes and so cannot live under a deep
// t.TempDir(). [RequireReceive] and [RequireClosed] wrap the select
// with a timeout fallback so no test hangs forever; they are the only
// place tests read the wall clock.
//
// All helpers fail the test with t.Fatalf instead of returning errors.
package testutil
