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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, "id-1", "user-1", "rock")
	require.NoError(t, err)
	assert.Equal(t, "id-1", created.ID)
	assert.Equal(t, "user-1", created.ChallengerID)
	assert.Equal(t, "rock", created.Object)
	assert.Equal(t, StateIssued, created.State)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := store.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, StateIssued, got.State)
}

func TestMemoryStoreCreateOverwrites(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Create(ctx, "id-1", "user-1", "rock")
	require.NoError(t, err)

	// Accept, then recreate with the same id. The second create wins
	// and resets the state.
	_, err = store.Transition(ctx, "id-1", StateIssued, StateAccepted)
	require.NoError(t, err)

	created, err := store.Create(ctx, "id-1", "user-2", "paper")
	require.NoError(t, err)
	assert.Equal(t, "user-2", created.ChallengerID)
	assert.Equal(t, StateIssued, created.State)

	assert.Equal(t, uint64(1), store.Overwrites())
	assert.Equal(t, 1, store.Count())
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreTransition(t *testing.T) {
	ctx := context.Background()

	t.Run("Issued to accepted", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.Create(ctx, "id-1", "user-1", "scissors")
		require.NoError(t, err)

		accepted, err := store.Transition(ctx, "id-1", StateIssued, StateAccepted)
		require.NoError(t, err)
		assert.Equal(t, StateAccepted, accepted.State)
		assert.Equal(t, "user-1", accepted.ChallengerID)

		got, err := store.Get(ctx, "id-1")
		require.NoError(t, err)
		assert.Equal(t, StateAccepted, got.State)
	})

	t.Run("Second transition fails", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.Create(ctx, "id-1", "user-1", "rock")
		require.NoError(t, err)

		_, err = store.Transition(ctx, "id-1", StateIssued, StateAccepted)
		require.NoError(t, err)

		_, err = store.Transition(ctx, "id-1", StateIssued, StateAccepted)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("Absent id does not create", func(t *testing.T) {
		store := NewMemoryStore()

		_, err := store.Transition(ctx, "missing", StateIssued, StateAccepted)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 0, store.Count())
	})
}

func TestMemoryStoreConcurrentTransition(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Create(ctx, "id-1", "user-1", "rock")
	require.NoError(t, err)

	const attempts = 50
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Transition(ctx, "id-1", StateIssued, StateAccepted)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for err := range results {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()

	t.Run("Expired entries are not found", func(t *testing.T) {
		store := NewMemoryStoreWithTTL(10 * time.Millisecond)
		_, err := store.Create(ctx, "id-1", "user-1", "rock")
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		_, err = store.Get(ctx, "id-1")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = store.Transition(ctx, "id-1", StateIssued, StateAccepted)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Zero TTL disables expiration", func(t *testing.T) {
		store := NewMemoryStoreWithTTL(0)
		_, err := store.Create(ctx, "id-1", "user-1", "rock")
		require.NoError(t, err)

		_, err = store.Get(ctx, "id-1")
		assert.NoError(t, err)
	})

	t.Run("Cleanup removes expired entries", func(t *testing.T) {
		store := NewMemoryStoreWithTTL(10 * time.Millisecond)
		_, err := store.Create(ctx, "id-1", "user-1", "rock")
		require.NoError(t, err)
		_, err = store.Create(ctx, "id-2", "user-2", "paper")
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		removed := store.Cleanup()
		assert.Equal(t, 2, removed)
		assert.Equal(t, 0, store.Count())
	})
}

func TestMemoryStoreCleanupRoutine(t *testing.T) {
	store := NewMemoryStoreWithTTL(10 * time.Millisecond)
	ctx := context.Background()

	_, err := store.Create(ctx, "id-1", "user-1", "rock")
	require.NoError(t, err)

	cancel := store.StartCleanupRoutine(ctx, 5*time.Millisecond)
	defer cancel()

	assert.Eventually(t, func() bool {
		return store.Count() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Create(ctx, "id-1", "user-1", "rock")
	require.NoError(t, err)

	store.Clear()
	assert.Equal(t, 0, store.Count())
}

func TestChallengeCloneIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, "id-1", "user-1", "rock")
	require.NoError(t, err)

	// Mutating the returned copy must not touch the stored entry.
	created.State = StateAccepted

	got, err := store.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, StateIssued, got.State)
}
