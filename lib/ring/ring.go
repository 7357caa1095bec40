// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ring

import "fmt"

// initialArenaSize bounds the first allocation for large rings. The
// arena grows by append until it reaches the ring's capacity, so a
// ring sized for thousands of items that only ever holds a handful
// stays small.
const initialArenaSize = 16

// Ring is a bounded circular container. The zero value is not usable;
// construct with [New].
type Ring[T any] struct {
	items    []T
	capacity int
	// head is the arena index of the oldest retained item once the
	// arena has reached capacity. Before that, head is always 0.
	head int
	// count is the number of retained items (0 to capacity).
	count int
}

// New creates a ring that retains at most capacity items. Panics if
// capacity is not positive.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("ring.New: capacity must be positive, got %d", capacity))
	}
	return &Ring[T]{
		items:    make([]T, 0, min(capacity, initialArenaSize)),
		capacity: capacity,
	}
}

// Add appends item as the newest entry. When the ring is full the
// oldest entry is overwritten and returned with evicted set to true.
func (r *Ring[T]) Add(item T) (old T, evicted bool) {
	if len(r.items) < r.capacity {
		r.items = append(r.items, item)
		r.count++
		return old, false
	}

	// Full arena: head is both the oldest slot and the next write slot.
	old = r.items[r.head]
	r.items[r.head] = item
	r.head = (r.head + 1) % r.capacity
	return old, true
}

// Len returns the number of retained items.
func (r *Ring[T]) Len() int { return r.count }

// Cap returns the maximum number of retained items.
func (r *Ring[T]) Cap() int { return r.capacity }

// ForEach calls fn for each retained item, oldest first, until fn
// returns false. The pointer is only valid during the call and may be
// used to update the item in place.
func (r *Ring[T]) ForEach(fn func(item *T) bool) {
	for i := 0; i < r.count; i++ {
		if !fn(&r.items[(r.head+i)%len(r.items)]) {
			return
		}
	}
}

// Find returns a pointer to the oldest item for which match returns
// true. The pointer is invalidated by the next Add.
func (r *Ring[T]) Find(match func(item *T) bool) (*T, bool) {
	var found *T
	r.ForEach(func(item *T) bool {
		if match(item) {
			found = item
			return false
		}
		return true
	})
	return found, found != nil
}

// Collect returns copies of the items for which keep returns true, in
// insertion order. A nil keep collects everything. The result is nil
// when nothing matches.
func (r *Ring[T]) Collect(keep func(item *T) bool) []T {
	var result []T
	r.ForEach(func(item *T) bool {
		if keep == nil || keep(item) {
			result = append(result, *item)
		}
		return true
	})
	return result
}
