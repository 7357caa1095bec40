// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bytecache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bureau-foundation/transportd/lib/ring"
	"github.com/bureau-foundation/transportd/lib/schema/transport"
)

// DefaultCapacity is the number of blobs retained when Config leaves
// Capacity unset.
const DefaultCapacity = 64

// Config controls a Cache.
type Config struct {
	// Capacity is the maximum number of blobs retained.
	Capacity int

	// Compression is applied to every blob at rest.
	Compression Compression
}

type entry struct {
	id         string
	encoding   Compression
	size       int
	compressed []byte
}

// Cache stores blobs by content id. Safe for concurrent use.
type Cache struct {
	compression Compression
	capacity    int

	mu      sync.Mutex
	entries *ring.Ring[entry]
	index   map[string]struct{}

	storedBytes   uint64
	originalBytes uint64
	evicted       uint64
}

// New creates an empty cache.
func New(config Config) *Cache {
	capacity := config.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		compression: config.Compression,
		capacity:    capacity,
		entries:     ring.New[entry](capacity),
		index:       make(map[string]struct{}, capacity),
	}
}

// Put stores contents and returns its id. Storing contents already in
// the cache is a no-op that returns the same id.
func (c *Cache) Put(contents []byte) (string, error) {
	id := ID(contents)

	// Compression runs outside the lock; the result depends only on
	// contents.
	stored, err := compress(contents, c.compression)
	encoding := c.compression
	if errors.Is(err, errIncompressible) {
		stored = append([]byte(nil), contents...)
		encoding = CompressionNone
	} else if err != nil {
		return "", fmt.Errorf("storing blob %s: %w", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.index[id]; exists {
		return id, nil
	}

	old, evicted := c.entries.Add(entry{
		id:         id,
		encoding:   encoding,
		size:       len(contents),
		compressed: stored,
	})
	if evicted {
		delete(c.index, old.id)
		c.storedBytes -= uint64(len(old.compressed))
		c.originalBytes -= uint64(old.size)
		c.evicted++
	}
	c.index[id] = struct{}{}
	c.storedBytes += uint64(len(stored))
	c.originalBytes += uint64(len(contents))
	return id, nil
}

// Get returns a copy of the blob stored under id. found is false when
// the id is unknown or was evicted.
func (c *Cache) Get(id string) (contents []byte, found bool, err error) {
	c.mu.Lock()
	if _, exists := c.index[id]; !exists {
		c.mu.Unlock()
		return nil, false, nil
	}
	stored, _ := c.entries.Find(func(e *entry) bool { return e.id == id })
	snapshot := *stored
	c.mu.Unlock()

	// Stored bytes are never mutated after Put, so decompressing the
	// snapshot outside the lock is safe.
	contents, err = decompress(snapshot.compressed, snapshot.encoding, snapshot.size)
	if err != nil {
		return nil, false, fmt.Errorf("reading blob %s: %w", id, err)
	}
	if snapshot.encoding == CompressionNone {
		contents = append([]byte(nil), contents...)
	}
	return contents, true, nil
}

// Stats reports occupancy.
func (c *Cache) Stats() transport.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return transport.CacheStats{
		Entries:         c.entries.Len(),
		Capacity:        c.capacity,
		StoredBytes:     c.storedBytes,
		OriginalBytes:   c.originalBytes,
		Evicted:         c.evicted,
		CompressionName: c.compression.String(),
	}
}
