package summary

import (
	"context"

	"github.com/kailas-cloud/veritas/internal/domain/item"
	domsum "github.com/kailas-cloud/veritas/internal/domain/summary"
)

// Completer produces a narrative for the top-ranked items (LLM transport).
type Completer interface {
	Complete(ctx context.Context, prompt string, items []item.Item) (domsum.Completion, error)
}

// TokenCounterStore persists the per-day token counters behind DailyTokenQuota.
type TokenCounterStore interface {
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
}
