package fetchcache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/veritas/internal/db"
	"github.com/kailas-cloud/veritas/internal/domain/article"
)

func TestFetch_CacheMiss(t *testing.T) {
	inner := &mockFetcher{doc: article.New("https://example.com/a", "Title", "Body", "", "2024-01-02")}
	cf, ms := newTestCachedFetcher(t, inner)

	var stored []byte
	var storedTTL time.Duration
	ms.setFn = func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		if !strings.HasPrefix(key, cacheKeyPrefix) {
			t.Errorf("unexpected key %q", key)
		}
		stored, storedTTL = value, ttl
		return nil
	}

	doc, err := cf.Fetch(context.Background(), "https://example.com/a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title() != "Title" || inner.calls != 1 {
		t.Fatalf("unexpected doc %+v / calls %d", doc, inner.calls)
	}
	if stored == nil || storedTTL != time.Hour {
		t.Fatal("expected document to be cached with TTL")
	}

	var dto documentDTO
	if err := json.Unmarshal(stored, &dto); err != nil {
		t.Fatalf("cached payload is not JSON: %v", err)
	}
	if dto.PublishDate != "2024-01-02" {
		t.Errorf("publish date not cached: %+v", dto)
	}
}

func TestFetch_CacheHit(t *testing.T) {
	inner := &mockFetcher{}
	cf, ms := newTestCachedFetcher(t, inner)

	payload, _ := json.Marshal(documentDTO{URL: "https://news.example.org/x", Title: "Cached", Body: "b"})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return payload, nil
	}

	doc, err := cf.Fetch(context.Background(), "https://news.example.org/x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 0 {
		t.Error("inner fetcher must not be called on hit")
	}
	if doc.Title() != "Cached" || doc.SourceDomain() != "news.example.org" {
		t.Errorf("unexpected doc: %q %q", doc.Title(), doc.SourceDomain())
	}
}

func TestFetch_CachedDocumentMatchesFresh(t *testing.T) {
	inner := &mockFetcher{doc: article.New(
		"https://a.example/story", "Title", "Body text", "Meta description", "2024-03-04")}
	cf, ms := newTestCachedFetcher(t, inner)

	saved := map[string][]byte{}
	ms.setFn = func(_ context.Context, key string, value []byte, _ time.Duration) error {
		saved[key] = value
		return nil
	}
	ms.getFn = func(_ context.Context, key string) ([]byte, error) {
		if v, ok := saved[key]; ok {
			return v, nil
		}
		return nil, db.ErrKeyNotFound
	}

	fresh, err := cf.Fetch(context.Background(), "https://a.example/story")
	if err != nil {
		t.Fatalf("miss: %v", err)
	}
	cached, err := cf.Fetch(context.Background(), "https://a.example/story")
	if err != nil {
		t.Fatalf("hit: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("inner calls = %d, want 1", inner.calls)
	}

	if cached.Snippet() != fresh.Snippet() {
		t.Errorf("snippet: fresh %q, cached %q", fresh.Snippet(), cached.Snippet())
	}
	freshText, _ := fresh.Representation(2000)
	cachedText, _ := cached.Representation(2000)
	if freshText != cachedText {
		t.Errorf("representation: fresh %q, cached %q", freshText, cachedText)
	}
	if d, _ := cached.PublishDate(); d != "2024-03-04" {
		t.Errorf("publish date = %q", d)
	}
}

func TestFetch_InnerError(t *testing.T) {
	inner := &mockFetcher{err: errors.New("timeout")}
	cf, ms := newTestCachedFetcher(t, inner)
	ms.setFn = func(context.Context, string, []byte, time.Duration) error {
		t.Error("errors must not be cached")
		return nil
	}

	if _, err := cf.Fetch(context.Background(), "https://example.com"); err == nil {
		t.Fatal("expected error")
	}
}

func TestFetch_EmptyDocumentNotCached(t *testing.T) {
	inner := &mockFetcher{doc: article.New("https://example.com", "", "", "", "")}
	cf, ms := newTestCachedFetcher(t, inner)
	ms.setFn = func(context.Context, string, []byte, time.Duration) error {
		t.Error("empty documents must not be cached")
		return nil
	}

	if _, err := cf.Fetch(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetch_StoreErrorsIgnored(t *testing.T) {
	inner := &mockFetcher{doc: article.New("https://example.com", "T", "B", "", "")}
	cf, ms := newTestCachedFetcher(t, inner)
	ms.getFn = func(context.Context, string) ([]byte, error) { return nil, errors.New("conn reset") }
	ms.setFn = func(context.Context, string, []byte, time.Duration) error { return errors.New("conn reset") }

	doc, err := cf.Fetch(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("store errors must not fail fetch: %v", err)
	}
	if doc.Title() != "T" {
		t.Errorf("unexpected doc: %q", doc.Title())
	}
}

func TestFetch_CorruptCacheFallsThrough(t *testing.T) {
	inner := &mockFetcher{doc: article.New("https://example.com", "Fresh", "", "", "")}
	cf, ms := newTestCachedFetcher(t, inner)
	ms.getFn = func(context.Context, string) ([]byte, error) { return []byte("{not json"), nil }

	doc, err := cf.Fetch(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title() != "Fresh" || inner.calls != 1 {
		t.Errorf("expected fresh fetch, got %q (calls=%d)", doc.Title(), inner.calls)
	}
}

func TestFetch_Metrics(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_fetch_cache_total"}, []string{"result"})
	inner := &mockFetcher{doc: article.New("https://example.com", "T", "", "", "")}
	cf := New(inner, &mockKVStore{}, time.Minute, counter, zap.NewNop())

	_, _ = cf.Fetch(context.Background(), "https://example.com")
	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss counter = %v, want 1", got)
	}
}
