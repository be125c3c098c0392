// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package sysconfig

import (
	"context"
	"sync"
)

// Static is an in-memory Source. Set replaces the snapshot and fires
// every subscriber when the proxy-relevant content actually changed.
// Safe for concurrent use.
type Static struct {
	mu          sync.Mutex
	snapshot    Snapshot
	subscribers map[int]func()
	nextID      int
}

// NewStatic returns a Static source holding the given snapshot.
func NewStatic(snapshot Snapshot) *Static {
	return &Static{
		snapshot:    snapshot,
		subscribers: make(map[int]func()),
	}
}

// Current returns the held snapshot.
func (s *Static) Current(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, nil
}

// Set replaces the snapshot. Subscribers are notified only when the
// new snapshot differs from the old one, outside the lock so a
// subscriber may call Current re-entrantly.
func (s *Static) Set(snapshot Snapshot) {
	s.mu.Lock()
	changed := s.snapshot != snapshot
	s.snapshot = snapshot
	var callbacks []func()
	if changed {
		callbacks = make([]func(), 0, len(s.subscribers))
		for _, notify := range s.subscribers {
			callbacks = append(callbacks, notify)
		}
	}
	s.mu.Unlock()

	for _, notify := range callbacks {
		notify()
	}
}

// Subscribe registers a change callback. Never fails.
func (s *Static) Subscribe(notify func()) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subscribers[id] = notify

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}, nil
}
