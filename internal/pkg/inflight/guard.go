// Package inflight implements the advisory per-session concurrency guard:
// a short-lived lease that stops one caller session from double-submitting
// the same operation on the same entity while the first call is still
// outstanding. It is advisory only; two different sessions acting on the
// same entity are not serialized here, and the backing store resolves that
// race last-write-wins.
package inflight

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"contract-exchange/internal/domain"
)

// Store is the minimal lease surface the guard needs.
type Store interface {
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
}

type Guard struct {
	store Store
	ttl   time.Duration
}

func New(store Store, ttl time.Duration) *Guard {
	return &Guard{store: store, ttl: ttl}
}

func key(sessionID, action, entityID string) string {
	return fmt.Sprintf("inflight:%s:%s:%s", sessionID, action, entityID)
}

// Acquire takes the lease for (session, action, entity). It returns
// domain.ErrOperationInFlight when the same session already holds it. The
// TTL bounds how long a crashed caller can hold a lease.
func (g *Guard) Acquire(ctx context.Context, sessionID, action, entityID string) error {
	ok, err := g.store.SetNX(ctx, key(sessionID, action, entityID), g.ttl)
	if err != nil {
		// A broken guard store must not block moderation; the guard is
		// advisory.
		return nil
	}
	if !ok {
		return domain.ErrOperationInFlight
	}
	return nil
}

// Release frees the lease once the operation settles.
func (g *Guard) Release(ctx context.Context, sessionID, action, entityID string) {
	_ = g.store.Del(ctx, key(sessionID, action, entityID))
}

// RedisStore backs the guard with SET NX EX.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, 1, ttl).Result()
}

func (s *RedisStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
