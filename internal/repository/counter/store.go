// Package counter keeps expiring integer counters (token budgets, send limits).
package counter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/veritas/internal/db"
)

// store is the consumer interface for counter operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store implements TTL counters on top of DB (INCRBY + EXPIRE NX).
type Store struct {
	store store
	ttl   time.Duration
}

// New creates a counter store. Every key expires ttl after its first increment.
func New(s store, ttl time.Duration) *Store {
	return &Store{store: s, ttl: ttl}
}

// IncrBy atomically increments the key, sets TTL on first write and returns the new value.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) (int64, error) {
	n, err := s.store.IncrBy(ctx, key, val)
	if err != nil {
		return 0, fmt.Errorf("counter INCRBY %s: %w", key, err)
	}

	// NX: the window is anchored at the first increment and not extended.
	if err := s.store.Expire(ctx, key, s.ttl, true); err != nil {
		return n, fmt.Errorf("counter EXPIRE %s: %w", key, err)
	}
	return n, nil
}

// Get returns the current value. Returns 0 if the key does not exist.
func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("counter GET %s: %w", key, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("counter GET %s parse: %w", key, err)
	}
	return val, nil
}
