package inflight_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/pkg/inflight"
)

type fakeStore struct {
	leases map[string]bool
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{leases: make(map[string]bool)}
}

func (s *fakeStore) SetNX(_ context.Context, key string, _ time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.leases[key] {
		return false, nil
	}
	s.leases[key] = true
	return true, nil
}

func (s *fakeStore) Del(_ context.Context, key string) error {
	delete(s.leases, key)
	return nil
}

func TestGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("Second acquire of the same operation is refused", func(t *testing.T) {
		guard := inflight.New(newFakeStore(), time.Minute)

		assert.NoError(t, guard.Acquire(ctx, "session-1", "approve", "listing-1"))
		assert.ErrorIs(t, guard.Acquire(ctx, "session-1", "approve", "listing-1"), domain.ErrOperationInFlight)
	})

	t.Run("Release frees the lease", func(t *testing.T) {
		guard := inflight.New(newFakeStore(), time.Minute)

		assert.NoError(t, guard.Acquire(ctx, "session-1", "approve", "listing-1"))
		guard.Release(ctx, "session-1", "approve", "listing-1")
		assert.NoError(t, guard.Acquire(ctx, "session-1", "approve", "listing-1"))
	})

	t.Run("Leases are scoped to session, action and entity", func(t *testing.T) {
		guard := inflight.New(newFakeStore(), time.Minute)

		assert.NoError(t, guard.Acquire(ctx, "session-1", "approve", "listing-1"))
		assert.NoError(t, guard.Acquire(ctx, "session-2", "approve", "listing-1"))
		assert.NoError(t, guard.Acquire(ctx, "session-1", "reject", "listing-1"))
		assert.NoError(t, guard.Acquire(ctx, "session-1", "approve", "listing-2"))
	})

	t.Run("Broken store fails open", func(t *testing.T) {
		store := newFakeStore()
		store.err = errors.New("redis gone")
		guard := inflight.New(store, time.Minute)

		assert.NoError(t, guard.Acquire(ctx, "session-1", "approve", "listing-1"))
		assert.NoError(t, guard.Acquire(ctx, "session-1", "approve", "listing-1"))
	})
}
