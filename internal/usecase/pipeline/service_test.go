package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kailas-cloud/veritas/internal/domain"
	"github.com/kailas-cloud/veritas/internal/domain/item"
)

func TestRun_EmptyPrompt(t *testing.T) {
	f := newFixture()
	_, err := f.service(Config{}).Run(context.Background(), "   ", 5)
	if !errors.Is(err, domain.ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
}

func TestRun_NegativeMaxResults(t *testing.T) {
	f := newFixture()
	_, err := f.service(Config{}).Run(context.Background(), "q", -1)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestRun_ModelUnavailable(t *testing.T) {
	f := newFixture()
	f.clf.unavailable = true
	f.addHit("https://a.example/1", "t", "s")

	_, err := f.service(Config{}).Run(context.Background(), "q", 5)
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestRun_MaxResultsDefaultAndCap(t *testing.T) {
	f := newFixture()
	s := f.service(Config{MaxResults: 8})

	if _, err := s.Run(context.Background(), "q", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.search.max != 5 {
		t.Errorf("default max_results = %d, want 5", f.search.max)
	}

	if _, err := s.Run(context.Background(), "q", 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.search.max != 8 {
		t.Errorf("capped max_results = %d, want 8", f.search.max)
	}
}

func TestRun_RanksByTrust(t *testing.T) {
	f := newFixture()
	f.addHit("https://a.example/1", "plain", "")
	f.addHit("https://b.example/2", "official statement", "")
	f.addHit("https://c.example/3", "hoax alert", "")
	for _, h := range f.search.hits {
		f.addDoc(h.Link, h.Title, "body", "")
	}

	resp, err := f.service(Config{}).Run(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"https://b.example/2", "https://a.example/1", "https://c.example/3"}
	if len(resp.Results) != len(want) {
		t.Fatalf("got %d results, want %d", len(resp.Results), len(want))
	}
	for i, u := range want {
		if got := resp.Results[i].Document().URL(); got != u {
			t.Errorf("results[%d] = %s, want %s", i, got, u)
		}
	}
	for _, it := range resp.Results {
		if tr := it.Trust(); tr < 0 || tr > 1 {
			t.Errorf("trust %v outside [0,1]", tr)
		}
	}
	if resp.Prompt != "q" {
		t.Errorf("prompt = %q", resp.Prompt)
	}
}

func TestRun_FetchFallbackUsesSearchMetadata(t *testing.T) {
	f := newFixture()
	f.addHit("https://gone.example/x", "Search title", "search snippet")

	resp, err := f.service(Config{}).Run(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(resp.Results))
	}
	doc := resp.Results[0].Document()
	if doc.Title() != "Search title" || doc.Snippet() != "search snippet" || doc.Body() != "" {
		t.Errorf("unexpected fallback document: %q %q %q", doc.Title(), doc.Snippet(), doc.Body())
	}
	if doc.SourceDomain() != "gone.example" {
		t.Errorf("source domain = %q", doc.SourceDomain())
	}
}

func TestRun_AllDocumentsEmpty(t *testing.T) {
	f := newFixture()
	f.summ.enabled = true
	for i := 1; i <= 3; i++ {
		link := fmt.Sprintf("https://empty.example/%d", i)
		f.addHit(link, "", "")
		f.addDoc(link, "", "", "")
	}

	resp, err := f.service(Config{}).Run(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("empty results must not be an error: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected no results, got %d", len(resp.Results))
	}
	if !resp.Summary.IsEmpty() {
		t.Error("answer and report must be absent")
	}
	if f.summ.calls != 0 {
		t.Error("summarizer must not run without items")
	}
}

func TestRun_DropsFailedAndSkippedHits(t *testing.T) {
	f := newFixture()
	f.addHit("https://ok.example/1", "fine", "")
	f.addHit("https://boom.example/2", "boom", "")
	f.addHit("https://panic.example/3", "panic", "")
	f.addHit("https://empty.example/4", "", "")
	f.addDoc("https://empty.example/4", "", "", "")

	resp, err := f.service(Config{}).Run(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Document().URL() != "https://ok.example/1" {
		t.Fatalf("expected only the healthy hit, got %d results", len(resp.Results))
	}
}

func TestRun_Recency(t *testing.T) {
	f := newFixture()
	f.addHit("https://a.example/dated", "dated", "")
	f.addHit("https://a.example/undated", "undated", "")
	f.addDoc("https://a.example/dated", "dated", "", "2024-05-22")
	f.addDoc("https://a.example/undated", "undated", "", "")

	resp, err := f.service(Config{}).Run(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byURL := map[string]item.Item{}
	for _, it := range resp.Results {
		byURL[it.Document().URL()] = it
	}
	if d, ok := byURL["https://a.example/dated"].RecencyDays(); !ok || d != 10 {
		t.Errorf("dated recency = %d, %v; want 10, true", d, ok)
	}
	if _, ok := byURL["https://a.example/undated"].RecencyDays(); ok {
		t.Error("undated recency must be unknown")
	}
}

func TestRun_ClusterAllItems(t *testing.T) {
	f := newFixture()
	f.cluster.enabled = true
	for i := 0; i < 4; i++ {
		f.addHit(fmt.Sprintf("https://x.example/%d", i), fmt.Sprintf("title %d", i), "")
	}

	resp, err := f.service(Config{}).Run(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Clustered() {
		t.Fatal("expected clustered response")
	}
	for i, it := range resp.Results {
		if _, ok := it.Placement(); !ok {
			t.Errorf("item %d not placed", i)
		}
	}
}

func TestRun_ClusterFailureLeavesNoPlacement(t *testing.T) {
	f := newFixture()
	f.cluster.enabled = true
	f.cluster.err = fmt.Errorf("%w: svd failed", domain.ErrDegraded)
	for i := 0; i < 3; i++ {
		f.addHit(fmt.Sprintf("https://x.example/%d", i), "title", "")
	}

	resp, err := f.service(Config{}).Run(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("clustering failure must not fail the request: %v", err)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("got %d results", len(resp.Results))
	}
	for i, it := range resp.Results {
		if _, ok := it.Placement(); ok {
			t.Errorf("item %d placed despite failure", i)
		}
	}
}

func TestRun_ClusterSkippedForSingleItem(t *testing.T) {
	f := newFixture()
	f.cluster.enabled = true
	f.addHit("https://x.example/1", "title", "")

	resp, err := f.service(Config{}).Run(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Clustered() || f.cluster.calls != 0 {
		t.Error("single item batch must not be clustered")
	}
}

func TestRun_ClusterDisabled(t *testing.T) {
	f := newFixture()
	f.addHit("https://x.example/1", "a", "")
	f.addHit("https://x.example/2", "b", "")

	resp, err := f.service(Config{}).Run(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Clustered() || f.cluster.calls != 0 {
		t.Error("disabled clustering must not run")
	}
}

func TestRun_SummarizerGetsTopN(t *testing.T) {
	f := newFixture()
	f.summ.enabled = true
	for i := 0; i < 5; i++ {
		f.addHit(fmt.Sprintf("https://x.example/%d", i), "title", "")
	}

	resp, err := f.service(Config{SummaryTopN: 2}).Run(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.summ.got) != 2 {
		t.Errorf("summarizer got %d items, want 2", len(f.summ.got))
	}
	if a, ok := resp.Summary.Answer(); !ok || a != "answer" {
		t.Errorf("answer = %q, %v", a, ok)
	}
}

func TestRun_SummarizerDisabled(t *testing.T) {
	f := newFixture()
	f.addHit("https://x.example/1", "title", "")

	resp, err := f.service(Config{}).Run(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Summary.IsEmpty() || f.summ.calls != 0 {
		t.Error("disabled summarizer must not run")
	}
}

func TestRun_BoundedConcurrency(t *testing.T) {
	f := newFixture()
	f.fetch.delay = 20 * time.Millisecond
	for i := 0; i < 8; i++ {
		link := fmt.Sprintf("https://x.example/%d", i)
		f.addHit(link, "title", "")
		f.addDoc(link, "title", "body", "")
	}

	resp, err := f.service(Config{Workers: 2, MaxResults: 10}).Run(context.Background(), "q", 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 8 {
		t.Errorf("got %d results, want 8", len(resp.Results))
	}
	if peak := f.fetch.peak.Load(); peak > 2 {
		t.Errorf("peak concurrency %d exceeds 2 workers", peak)
	}
}

func TestRun_FetchTimeoutFallsBack(t *testing.T) {
	f := newFixture()
	f.fetch.delay = time.Second
	f.addHit("https://slow.example/1", "slow title", "")
	f.addDoc("https://slow.example/1", "page title", "body", "")

	resp, err := f.service(Config{FetchTimeout: 10 * time.Millisecond}).Run(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Document().Title() != "slow title" {
		t.Fatal("expected fallback document from search metadata")
	}
}

func TestRun_RequestTimeoutBoundsAllStages(t *testing.T) {
	f := newFixture()
	f.summ.enabled = true
	f.fetch.delay = 5 * time.Second
	for i := 0; i < 6; i++ {
		link := fmt.Sprintf("https://slow.example/%d", i)
		f.addHit(link, "slow title", "")
		f.addDoc(link, "page title", "body", "")
	}

	cfg := Config{Workers: 2, FetchTimeout: 5 * time.Second, RequestTimeout: 50 * time.Millisecond}
	start := time.Now()
	resp, err := f.service(cfg).Run(context.Background(), "q", 10)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("run took %v, want it bounded by the request timeout", elapsed)
	}
	if len(resp.Results) != 6 {
		t.Fatalf("got %d results, want 6 fallback documents", len(resp.Results))
	}
	for _, it := range resp.Results {
		if it.Document().Title() != "slow title" {
			t.Errorf("%s: expected fallback from search metadata", it.Document().URL())
		}
	}
	if f.summ.calls != 1 {
		t.Fatalf("summarizer calls = %d, want 1", f.summ.calls)
	}
	if f.summ.deadline.IsZero() || f.summ.deadline.After(start.Add(cfg.RequestTimeout+time.Second)) {
		t.Errorf("summarizer deadline %v not bounded by the request deadline", f.summ.deadline)
	}
}

func TestRun_SearchOrderPreservedOnTies(t *testing.T) {
	f := newFixture()
	for i := 0; i < 4; i++ {
		link := fmt.Sprintf("https://x.example/%d", i)
		f.addHit(link, "same", "")
	}
	f.fetch.delay = time.Millisecond

	resp, err := f.service(Config{Workers: 4}).Run(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, it := range resp.Results {
		want := fmt.Sprintf("https://x.example/%d", i)
		if it.Document().URL() != want {
			t.Errorf("results[%d] = %s, want %s", i, it.Document().URL(), want)
		}
	}
}

func TestInspect(t *testing.T) {
	f := newFixture()
	f.addDoc("https://news.example/a", "official report", "text", "")
	s := f.service(Config{})

	it, err := s.Inspect(context.Background(), "https://news.example/a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.Trust() != 0.9 {
		t.Errorf("trust = %v, want 0.9", it.Trust())
	}
}

func TestInspect_Errors(t *testing.T) {
	f := newFixture()
	f.addDoc("https://news.example/empty", "", "", "")
	s := f.service(Config{})

	tests := []struct {
		name string
		url  string
		want error
	}{
		{"relative", "/a/b", domain.ErrInvalidRequest},
		{"ftp", "ftp://news.example/a", domain.ErrInvalidRequest},
		{"empty document", "https://news.example/empty", domain.ErrEmptyText},
		{"fetch failure", "https://unknown.example/", domain.ErrEmptyText},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Inspect(context.Background(), tc.url); !errors.Is(err, tc.want) {
				t.Errorf("Inspect(%q) error = %v, want %v", tc.url, err, tc.want)
			}
		})
	}

	f.clf.unavailable = true
	if _, err := s.Inspect(context.Background(), "https://news.example/a"); !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}
