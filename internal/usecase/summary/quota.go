package summary

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/veritas/internal/domain"
)

const counterWriteTimeout = 2 * time.Second

// DailyTokenQuota caps the completion tokens one LLM provider may spend per UTC day.
// The live count is kept in memory. An attached TokenCounterStore seeds it on
// startup and mirrors every spend, so restarts and replicas share the day total.
type DailyTokenQuota struct {
	provider string
	limit    int64 // 0 = unlimited
	now      func() time.Time
	logger   *zap.Logger

	mu    sync.Mutex
	day   string
	spent int64
	store TokenCounterStore
}

// NewDailyTokenQuota creates a quota for provider. limit 0 means unlimited.
func NewDailyTokenQuota(provider string, limit int64, logger *zap.Logger) *DailyTokenQuota {
	return &DailyTokenQuota{provider: provider, limit: limit, now: time.Now, logger: logger}
}

// Persist attaches store and restores today's spend from it.
// A store that cannot be read leaves the count at zero.
func (q *DailyTokenQuota) Persist(ctx context.Context, store TokenCounterStore) *DailyTokenQuota {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.store = store
	q.rollover()

	spent, err := store.Get(ctx, q.counterKey(q.day))
	if err != nil {
		q.logger.Warn("Summarizer token counter unavailable, starting from zero",
			zap.String("provider", q.provider),
			zap.Error(err),
		)
		return q
	}
	q.spent = spent
	q.logger.Info("Summarizer token quota restored",
		zap.String("provider", q.provider),
		zap.String("day", q.day),
		zap.Int64("spent", q.spent),
		zap.Int64("limit", q.limit),
	)
	return q
}

// counterKey names the store counter, e.g. veritas:summarizer_tokens:openai:2024-03-04.
func (q *DailyTokenQuota) counterKey(day string) string {
	return domain.KeyPrefix + "summarizer_tokens:" + q.provider + ":" + day
}

// rollover starts a fresh count on the first call of a new UTC day. Callers hold mu.
func (q *DailyTokenQuota) rollover() {
	if today := q.now().UTC().Format(time.DateOnly); today != q.day {
		q.day, q.spent = today, 0
	}
}

// Allow returns ErrBudgetExceeded once today's spend has reached the limit.
func (q *DailyTokenQuota) Allow(context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollover()
	if q.limit > 0 && q.spent >= q.limit {
		return domain.ErrBudgetExceeded
	}
	return nil
}

// Spend charges tokens to today and mirrors them to the store, if any.
func (q *DailyTokenQuota) Spend(tokens int64) {
	q.mu.Lock()
	q.rollover()
	q.spent += tokens
	store, key := q.store, q.counterKey(q.day)
	q.mu.Unlock()

	if store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), counterWriteTimeout)
	defer cancel()

	if _, err := store.IncrBy(ctx, key, tokens); err != nil {
		q.logger.Warn("Failed to persist summarizer tokens", zap.String("key", key), zap.Error(err))
	}
}

// Left returns the tokens still available today, or -1 when unlimited.
func (q *DailyTokenQuota) Left() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollover()
	if q.limit == 0 {
		return -1
	}
	return max(q.limit-q.spent, 0)
}

// Spent returns the tokens charged today.
func (q *DailyTokenQuota) Spent() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover()
	return q.spent
}
