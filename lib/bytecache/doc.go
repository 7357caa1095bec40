// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bytecache is a bounded in-memory content-addressed store for
// opaque byte blobs that agents upload alongside their events (trace
// files, heap dumps, screenshots). Events carry the blob id in their
// payload; clients fetch the contents by id.
//
// Ids are hex BLAKE3 keyed hashes of the uncompressed contents, so
// the same bytes always map to the same id and repeated uploads are
// free. Blobs are compressed at rest with zstd or LZ4; blobs that do
// not shrink are stored raw. When the cache is full the oldest blob
// is evicted.
package bytecache
