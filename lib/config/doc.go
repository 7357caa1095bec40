// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the transportd daemon configuration.
//
// Configuration comes from a single file named by either the
// TRANSPORTD_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no discovery and no search path.
// Files ending in .json or .jsonc are read as JSONC (comments and
// trailing commas allowed); anything else is YAML.
//
// The file may carry development and production sections that
// override base values when [Config].Environment matches.
//
// ${HOME} and ${VAR:-default} patterns are expanded in the listen
// address after loading. No other environment variables override
// config values.
//
// This package depends on no other transportd packages.
package config
