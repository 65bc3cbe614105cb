package verification

import (
	"context"
	"time"
)

// CodeStore keeps one live code per e-mail.
type CodeStore interface {
	Put(ctx context.Context, email, code string, ttl time.Duration) error
	Take(ctx context.Context, email string) (code string, found bool, err error)
}

// Counter is an expiring counter used for the hourly send limit.
type Counter interface {
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
}

// Mailer delivers a code to an address.
type Mailer interface {
	SendCode(ctx context.Context, to, code string) error
}
