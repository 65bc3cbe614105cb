package summary

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/veritas/internal/domain/article"
	"github.com/kailas-cloud/veritas/internal/domain/explanation"
	"github.com/kailas-cloud/veritas/internal/domain/item"
	domsum "github.com/kailas-cloud/veritas/internal/domain/summary"
	"github.com/kailas-cloud/veritas/internal/domain/verdict"
	"github.com/kailas-cloud/veritas/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterPipelineMetrics()
	metrics.RegisterSummarizerMetrics()
	os.Exit(m.Run())
}

type mockCompleter struct {
	result domsum.Completion
	err    error
	delay  time.Duration
	calls  int
	items  int
}

func (m *mockCompleter) Complete(ctx context.Context, _ string, items []item.Item) (domsum.Completion, error) {
	m.calls++
	m.items = len(items)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return domsum.Completion{}, ctx.Err()
		}
	}
	return m.result, m.err
}

func testItems(n int) []item.Item {
	out := make([]item.Item, n)
	for i := range out {
		out[i] = item.New(article.New("https://example.com", "t", "b", "", ""),
			verdict.Hard(verdict.LabelReal), explanation.Explanation{}, 0, false)
	}
	return out
}

func TestSummarize_Success(t *testing.T) {
	inner := &mockCompleter{result: domsum.Completion{Answer: "A", Report: "R", TotalTokens: 30}}
	q := NewDailyTokenQuota("test", 1000, zap.NewNop())
	s := New(inner, "test", "gpt", q, time.Second, zap.NewNop())

	got := s.Summarize(context.Background(), "q", testItems(3))
	if a, _ := got.Answer(); a != "A" {
		t.Errorf("Answer() = %q", a)
	}
	if r, _ := got.Report(); r != "R" {
		t.Errorf("Report() = %q", r)
	}
	if q.Spent() != 30 {
		t.Errorf("expected 30 tokens spent, got %d", q.Spent())
	}
	if inner.items != 3 {
		t.Errorf("completer saw %d items", inner.items)
	}
}

func TestSummarize_Disabled(t *testing.T) {
	s := New(nil, "none", "", nil, 0, zap.NewNop())
	if s.Enabled() {
		t.Fatal("expected disabled")
	}
	if !s.Summarize(context.Background(), "q", testItems(1)).IsEmpty() {
		t.Error("disabled summarizer must return empty summary")
	}

	var nilSvc *Service
	if nilSvc.Enabled() {
		t.Error("nil service must be disabled")
	}
}

func TestSummarize_NoItems(t *testing.T) {
	inner := &mockCompleter{result: domsum.Completion{Answer: "A"}}
	s := New(inner, "test", "gpt", nil, 0, zap.NewNop())
	if !s.Summarize(context.Background(), "q", nil).IsEmpty() {
		t.Error("expected empty summary")
	}
	if inner.calls != 0 {
		t.Error("completer must not be called without items")
	}
}

func TestSummarize_UpstreamErrorIsEmpty(t *testing.T) {
	inner := &mockCompleter{err: errors.New("500")}
	s := New(inner, "test", "gpt", nil, 0, zap.NewNop())

	before := testutil.ToFloat64(metrics.PipelineDegradedTotal.WithLabelValues("summarize", "upstream"))
	if !s.Summarize(context.Background(), "q", testItems(1)).IsEmpty() {
		t.Error("expected empty summary on upstream error")
	}
	after := testutil.ToFloat64(metrics.PipelineDegradedTotal.WithLabelValues("summarize", "upstream"))
	if after != before+1 {
		t.Errorf("degraded counter %v -> %v", before, after)
	}
}

func TestSummarize_Timeout(t *testing.T) {
	inner := &mockCompleter{result: domsum.Completion{Answer: "late"}, delay: time.Second}
	s := New(inner, "test", "gpt", nil, 20*time.Millisecond, zap.NewNop())

	if !s.Summarize(context.Background(), "q", testItems(1)).IsEmpty() {
		t.Error("expected empty summary on timeout")
	}
}

func TestSummarize_QuotaExhaustedSkips(t *testing.T) {
	inner := &mockCompleter{result: domsum.Completion{Answer: "A"}}
	q := NewDailyTokenQuota("test", 10, zap.NewNop())
	q.Spend(10)
	s := New(inner, "test", "gpt", q, 0, zap.NewNop())

	if !s.Summarize(context.Background(), "q", testItems(2)).IsEmpty() {
		t.Error("expected empty summary when the token quota is exhausted")
	}
	if inner.calls != 0 {
		t.Error("completer must not be called when the token quota is exhausted")
	}
}
