// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-interactions.
//
// go-interactions is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package challenge

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store. Entries expire
// after the configured TTL so abandoned challenges do not accumulate for
// the life of the process.
type MemoryStore struct {
	mu         sync.RWMutex
	challenges map[string]*Challenge
	ttl        time.Duration
	overwrites uint64
}

// DefaultTTL is how long an issued challenge remains acceptable.
const DefaultTTL = 15 * time.Minute

// NewMemoryStore creates a new in-memory challenge store with the
// default TTL.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithTTL(DefaultTTL)
}

// NewMemoryStoreWithTTL creates a new in-memory challenge store with a
// custom TTL. A zero or negative TTL disables expiration.
func NewMemoryStoreWithTTL(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		challenges: make(map[string]*Challenge),
		ttl:        ttl,
	}
}

// Create inserts or overwrites the challenge for id.
func (s *MemoryStore) Create(ctx context.Context, id, challengerID, object string) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.challenges[id]; exists {
		s.overwrites++
	}

	c := &Challenge{
		ID:           id,
		ChallengerID: challengerID,
		Object:       object,
		State:        StateIssued,
		CreatedAt:    time.Now(),
	}
	s.challenges[id] = c

	return c.clone(), nil
}

// Get retrieves a challenge by id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.challenges[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.expired(c) {
		return nil, ErrNotFound
	}
	return c.clone(), nil
}

// Transition atomically moves the challenge for id from one state to
// another. The check and the write happen under the same lock, so two
// concurrent acceptance attempts resolve to exactly one winner.
func (s *MemoryStore) Transition(ctx context.Context, id string, from, to State) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.expired(c) {
		return nil, ErrNotFound
	}
	if c.State != from {
		return nil, ErrInvalidTransition
	}

	c.State = to
	return c.clone(), nil
}

// expired reports whether the entry is past its TTL. Callers must hold
// at least the read lock.
func (s *MemoryStore) expired(c *Challenge) bool {
	return s.ttl > 0 && time.Since(c.CreatedAt) > s.ttl
}

// Count returns the number of entries in the store, including expired
// entries that have not been swept yet.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.challenges)
}

// Overwrites returns how many creates replaced an existing entry.
// A nonzero value usually means the platform redelivered a webhook.
func (s *MemoryStore) Overwrites() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overwrites
}

// Clear removes all entries from the store (useful for testing).
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges = make(map[string]*Challenge)
}

// Cleanup removes expired entries and returns the count removed.
func (s *MemoryStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ttl <= 0 {
		return 0
	}

	now := time.Now()
	removed := 0
	for id, c := range s.challenges {
		if now.Sub(c.CreatedAt) > s.ttl {
			delete(s.challenges, id)
			removed++
		}
	}
	return removed
}

// StartCleanupRoutine starts a background goroutine that periodically
// sweeps expired challenges. Call the returned cancel function to stop
// the routine.
func (s *MemoryStore) StartCleanupRoutine(ctx context.Context, interval time.Duration) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()

	return cancel
}
