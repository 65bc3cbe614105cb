package veritas

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	vectorizerPath string
	classifierPath string

	searchProvider string
	searchAPIKey   string
	searchEngineID string

	summarizerAPIKey  string
	summarizerModel   string
	summarizerBaseURL string

	workers       int
	clustering    bool
	clusterSeed   uint64
	cacheTTLSec   int
	explainTopK   int
	maxResultsCap int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis connects the client to a Redis or Valkey instance.
// The store backs the fetch cache and the summarizer token budget.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithModel sets the vectorizer and classifier artifact paths. Required.
func WithModel(vectorizerPath, classifierPath string) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorizerPath = vectorizerPath
		c.classifierPath = classifierPath
	})
}

// WithSearch selects the web search provider ("google" or "serpapi").
// engineID is the Google custom search cx and is ignored by serpapi.
func WithSearch(provider, apiKey, engineID string) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchProvider = provider
		c.searchAPIKey = apiKey
		c.searchEngineID = engineID
	})
}

// WithSummarizer enables the LLM answer/report stage over the top results.
func WithSummarizer(apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.summarizerAPIKey = apiKey
		c.summarizerModel = model
	})
}

// WithSummarizerBaseURL points the summarizer at an OpenAI-compatible endpoint.
func WithSummarizerBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.summarizerBaseURL = url
	})
}

// WithClustering enables the 2-D projection and k-means cluster stage.
// The same seed yields the same placements for the same batch.
func WithClustering(seed uint64) Option {
	return optionFunc(func(c *clientConfig) {
		c.clustering = true
		c.clusterSeed = seed
	})
}

// WithWorkers bounds the number of hits processed concurrently. Default: 4.
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithFetchCacheTTL caches fetched pages in the store for ttlSec seconds.
// Requires WithRedis. Default: 3600.
func WithFetchCacheTTL(ttlSec int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTLSec = ttlSec
	})
}

// WithExplainTopK sets how many contributing tokens each result carries. Default: 3.
func WithExplainTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.explainTopK = k
	})
}

// WithMaxResults caps the number of results a query may ask for. Default: 20.
func WithMaxResults(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxResultsCap = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
