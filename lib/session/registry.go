// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import "github.com/bureau-foundation/transportd/lib/schema/transport"

// Registry tracks every session the daemon has created and not yet
// discarded. Sessions are kept in creation order.
type Registry struct {
	byID  map[int64]*transport.Session
	order []int64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[int64]*transport.Session)}
}

// Add stores s. Returns false without storing if a session with the
// same id is already registered.
func (r *Registry) Add(s transport.Session) bool {
	if _, exists := r.byID[s.SessionID]; exists {
		return false
	}
	stored := s
	r.byID[s.SessionID] = &stored
	r.order = append(r.order, s.SessionID)
	return true
}

// Get returns a copy of the session with the given id.
func (r *Registry) Get(id int64) (transport.Session, bool) {
	s, found := r.byID[id]
	if !found {
		return transport.Session{}, false
	}
	return *s, true
}

// Lookup returns the stored session for in-place transitions.
func (r *Registry) Lookup(id int64) (*transport.Session, bool) {
	s, found := r.byID[id]
	return s, found
}

// Remove drops the session with the given id. Returns false when it
// was not registered.
func (r *Registry) Remove(id int64) bool {
	if _, found := r.byID[id]; !found {
		return false
	}
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int { return len(r.order) }

// All returns copies of every session in creation order.
func (r *Registry) All() []transport.Session {
	result := make([]transport.Session, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, *r.byID[id])
	}
	return result
}

// Active returns copies of the Active sessions in creation order.
func (r *Registry) Active() []transport.Session {
	var result []transport.Session
	for _, id := range r.order {
		if s := r.byID[id]; IsActive(*s) {
			result = append(result, *s)
		}
	}
	return result
}

// ActiveForPID returns the stored Active sessions attached to pid.
func (r *Registry) ActiveForPID(pid int32) []*transport.Session {
	var result []*transport.Session
	for _, id := range r.order {
		if s := r.byID[id]; s.PID == pid && IsActive(*s) {
			result = append(result, s)
		}
	}
	return result
}
