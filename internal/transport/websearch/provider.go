// Package websearch implements the search provider over Google CSE or a SerpAPI-compatible endpoint.
package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/kailas-cloud/veritas/internal/domain"
	"github.com/kailas-cloud/veritas/internal/domain/hit"
	"github.com/kailas-cloud/veritas/internal/logger"
	"github.com/kailas-cloud/veritas/internal/metrics"
)

// Supported providers.
const (
	ProviderGoogle  = "google"
	ProviderSerpAPI = "serpapi"
	ProviderMock    = "mock"
)

// Default endpoints per provider.
const (
	GoogleEndpoint  = "https://www.googleapis.com/customsearch/v1"
	SerpAPIEndpoint = "https://serpapi.com/search.json"
)

const (
	maxFallbackHits = 3
	maxGooglePage   = 10
	maxResponseSize = 4 << 20
)

// Config holds the search provider settings.
type Config struct {
	Provider   string
	Endpoint   string
	APIKey     string
	EngineID   string // Google "cx"
	Attempts   uint
	RetryDelay time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Provider is the total SearchProvider: it never fails, it falls back to mock hits.
type Provider struct {
	provider   string
	endpoint   string
	apiKey     string
	engineID   string
	attempts   uint
	retryDelay time.Duration
	client     *http.Client
	logger     *zap.Logger
}

// New creates a provider. Missing credentials select the mock provider.
func New(cfg *Config) *Provider {
	p := &Provider{
		provider:   cfg.Provider,
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		engineID:   cfg.EngineID,
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
		client:     cfg.HTTPClient,
		logger:     cfg.Logger,
	}
	if p.client == nil {
		p.client = &http.Client{}
	}
	if p.attempts == 0 {
		p.attempts = 1
	}
	if p.retryDelay <= 0 {
		p.retryDelay = 200 * time.Millisecond
	}
	switch p.provider {
	case ProviderGoogle:
		if p.endpoint == "" {
			p.endpoint = GoogleEndpoint
		}
		if p.apiKey == "" || p.engineID == "" {
			p.provider = ProviderMock
		}
	case ProviderSerpAPI:
		if p.endpoint == "" {
			p.endpoint = SerpAPIEndpoint
		}
		if p.apiKey == "" {
			p.provider = ProviderMock
		}
	default:
		p.provider = ProviderMock
	}
	return p
}

// Name returns the effective provider.
func (p *Provider) Name() string { return p.provider }

// Search returns up to maxResults hits in provider order.
func (p *Provider) Search(ctx context.Context, prompt string, maxResults int) []hit.Hit {
	if p.provider == ProviderMock {
		metrics.SearchRequestsTotal.WithLabelValues(p.provider, "fallback").Inc()
		return Fallback(prompt, maxResults)
	}

	var hits []hit.Hit
	err := retry.Do(
		func() error {
			var err error
			hits, err = p.query(ctx, prompt, maxResults)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(p.attempts),
		retry.Delay(p.retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(p.provider, "fallback").Inc()
		logger.FromContextOr(ctx, p.logger).Warn("Search failed, using mock hits",
			zap.String("provider", p.provider),
			zap.Error(err),
		)
		return Fallback(prompt, maxResults)
	}

	metrics.SearchRequestsTotal.WithLabelValues(p.provider, "success").Inc()
	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	return hits
}

// Fallback builds the deterministic synthetic hit set of size min(maxResults, 3).
func Fallback(prompt string, maxResults int) []hit.Hit {
	n := min(maxResults, maxFallbackHits)
	hits := make([]hit.Hit, 0, max(n, 0))
	for i := 1; i <= n; i++ {
		hits = append(hits, hit.Hit{
			Title:   fmt.Sprintf("Mock Article %d about %s", i, prompt),
			Link:    fmt.Sprintf("https://example.com/mock-article-%d", i),
			Snippet: fmt.Sprintf("This is a mock snippet for %s.", prompt),
		})
	}
	return hits
}

func (p *Provider) query(ctx context.Context, prompt string, maxResults int) ([]hit.Hit, error) {
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("search endpoint: %w", err))
	}

	q := u.Query()
	q.Set("q", prompt)
	switch p.provider {
	case ProviderGoogle:
		q.Set("key", p.apiKey)
		q.Set("cx", p.engineID)
		q.Set("num", strconv.Itoa(min(maxResults, maxGooglePage)))
	case ProviderSerpAPI:
		q.Set("api_key", p.apiKey)
		q.Set("engine", "google")
		q.Set("num", strconv.Itoa(maxResults))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %s returned status %d: %s",
			domain.ErrUpstream, p.provider, resp.StatusCode, gjson.GetBytes(body, "error.message").String())
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, retry.Unrecoverable(err)
		}
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON from %s", domain.ErrUpstream, p.provider)
	}
	return parseHits(p.provider, body), nil
}

// parseHits reads items[] (Google) or organic_results[] (SerpAPI). Entries without a link are skipped.
func parseHits(provider string, body []byte) []hit.Hit {
	path := "items"
	if provider == ProviderSerpAPI {
		path = "organic_results"
	}

	var hits []hit.Hit
	gjson.GetBytes(body, path).ForEach(func(_, v gjson.Result) bool {
		link := v.Get("link").String()
		if link == "" {
			return true
		}
		hits = append(hits, hit.Hit{
			Title:   v.Get("title").String(),
			Link:    link,
			Snippet: v.Get("snippet").String(),
		})
		return true
	})
	return hits
}
