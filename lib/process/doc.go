// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. It holds the one
// legitimate raw stderr write that happens outside the structured
// logger: reporting the error that made main() give up, when the
// logger may not exist yet.
package process
