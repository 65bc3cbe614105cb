// Package summary wraps the LLM completer with a token quota, timeout and failure containment.
package summary

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/veritas/internal/domain/item"
	domsum "github.com/kailas-cloud/veritas/internal/domain/summary"
	"github.com/kailas-cloud/veritas/internal/logger"
	"github.com/kailas-cloud/veritas/internal/metrics"
)

// TokenQuota gates completions on a token allowance.
type TokenQuota interface {
	Allow(ctx context.Context) error
	Spend(tokens int64)
	Left() int64
}

// Service is the total Summarizer: it never returns an error.
// Any failure (quota, timeout, upstream) yields an empty Summary.
type Service struct {
	inner    Completer
	provider string
	model    string
	quota    TokenQuota
	timeout  time.Duration
	logger   *zap.Logger
}

// New creates a summarizer. A nil inner disables summarization.
func New(
	inner Completer, provider, model string,
	quota TokenQuota, timeout time.Duration, logger *zap.Logger,
) *Service {
	return &Service{
		inner:    inner,
		provider: provider,
		model:    model,
		quota:    quota,
		timeout:  timeout,
		logger:   logger,
	}
}

// Enabled reports whether a completer is configured.
func (s *Service) Enabled() bool { return s != nil && s.inner != nil }

// Summarize returns a narrative over the top items, or an empty Summary.
func (s *Service) Summarize(ctx context.Context, prompt string, items []item.Item) domsum.Summary {
	if !s.Enabled() || len(items) == 0 {
		return domsum.Empty()
	}
	log := logger.FromContextOr(ctx, s.logger)

	if s.quota != nil {
		if err := s.quota.Allow(ctx); err != nil {
			log.Warn("Summarizer skipped",
				zap.String("provider", s.provider),
				zap.String("reason", "budget"),
				zap.Error(err),
			)
			metrics.PipelineDegradedTotal.WithLabelValues("summarize", "budget").Inc()
			return domsum.Empty()
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	completion, err := s.inner.Complete(ctx, prompt, items)
	duration := time.Since(start)

	if err != nil {
		reason := "upstream"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		log.Warn("Summarizer failed",
			zap.String("provider", s.provider),
			zap.String("model", s.model),
			zap.String("reason", reason),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		metrics.PipelineDegradedTotal.WithLabelValues("summarize", reason).Inc()
		return domsum.Empty()
	}

	if s.quota != nil && completion.TotalTokens > 0 {
		s.quota.Spend(int64(completion.TotalTokens))
		metrics.SummarizerBudgetTokensRemaining.WithLabelValues(s.provider).Set(float64(s.quota.Left()))
	}

	log.Debug("Summarizer completed",
		zap.String("provider", s.provider),
		zap.String("model", s.model),
		zap.Duration("duration", duration),
		zap.Int("items", len(items)),
		zap.Int("total_tokens", completion.TotalTokens),
	)
	return completion.Summary()
}
