// Package verifycode stores one-time e-mail verification codes.
package verifycode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/veritas/internal/db"
	"github.com/kailas-cloud/veritas/internal/domain"
)

var keyPrefix = domain.KeyPrefix + "verify_code:"

// store is the consumer interface for code storage (ISP).
type store interface {
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	GetDel(ctx context.Context, key string) ([]byte, error)
}

// Store keeps at most one live code per e-mail.
type Store struct {
	store store
}

// New creates a code store.
func New(s store) *Store {
	return &Store{store: s}
}

// Put stores code for email, replacing any previous one.
func (s *Store) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.store.SetWithTTL(ctx, key(email), []byte(code), ttl); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}
	return nil
}

// Take returns and removes the code for email. found is false when none is live.
func (s *Store) Take(ctx context.Context, email string) (code string, found bool, err error) {
	data, err := s.store.GetDel(ctx, key(email))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("take verification code: %w", err)
	}
	return string(data), true, nil
}

func key(email string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(email))
}
