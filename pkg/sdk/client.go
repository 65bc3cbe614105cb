package veritas

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/veritas/internal/app"
	"github.com/kailas-cloud/veritas/internal/config"
	"github.com/kailas-cloud/veritas/internal/db"
	dbRedis "github.com/kailas-cloud/veritas/internal/db/redis"
	"github.com/kailas-cloud/veritas/internal/domain/item"
	"github.com/kailas-cloud/veritas/internal/domain/response"
	"github.com/kailas-cloud/veritas/internal/model"
)

const defaultReadinessTimeout = 10 * time.Second

// pipelineUseCase is the internal interface for the query pipeline (swapped in tests).
type pipelineUseCase interface {
	Run(ctx context.Context, prompt string, maxResults int) (response.Response, error)
	Inspect(ctx context.Context, rawURL string) (item.Item, error)
}

// Client is the veritas SDK entry point. It is safe for concurrent use.
type Client struct {
	store     db.Store
	pipeline  pipelineUseCase
	healthSvc healthUseCase
	model     *model.Model
	obs       *observer
}

// New builds the pipeline in-process. The provided context is used for the
// database readiness check and for loading the persisted summarizer budget.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.vectorizerPath == "" || cfg.classifierPath == "" {
		return nil, errors.New("veritas: model artifacts required (use WithModel)")
	}

	var store db.Store
	if len(cfg.addrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
		if err != nil {
			return nil, fmt.Errorf("veritas: create redis store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("veritas: database not ready: %w", err)
		}
		store = s
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	a := app.Build(ctx, cfg.appConfig(), store, zap.NewNop())
	if !a.Model.Available() {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("veritas: load model: %w", ErrModelUnavailable)
	}

	return &Client{
		store:     store,
		pipeline:  a.Pipeline,
		healthSvc: a.Health,
		model:     a.Model,
		obs:       obs,
	}, nil
}

// appConfig maps SDK options onto the service configuration.
func (c *clientConfig) appConfig() config.Config {
	var cfg config.Config
	cfg.Database.Addrs = c.addrs
	cfg.Database.Password = c.password
	cfg.Model.VectorizerPath = c.vectorizerPath
	cfg.Model.ClassifierPath = c.classifierPath

	cfg.Search.Provider = c.searchProvider
	cfg.Search.APIKey = c.searchAPIKey
	cfg.Search.EngineID = c.searchEngineID

	cfg.Summarizer.Enabled = c.summarizerAPIKey != ""
	cfg.Summarizer.APIKey = c.summarizerAPIKey
	cfg.Summarizer.Model = c.summarizerModel
	cfg.Summarizer.BaseURL = c.summarizerBaseURL

	cfg.Fetch.CacheTTLSec = c.cacheTTLSec
	if cfg.Fetch.CacheTTLSec == 0 && len(c.addrs) > 0 {
		cfg.Fetch.CacheTTLSec = 3600
	}

	cfg.Pipeline.Workers = c.workers
	cfg.Pipeline.MaxResults = c.maxResultsCap
	cfg.Pipeline.ExplainTopK = c.explainTopK
	cfg.Pipeline.Clustering.Enabled = c.clustering
	cfg.Pipeline.Clustering.Seed = c.clusterSeed

	cfg.ApplyDefaults()
	return cfg
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Query searches the web for prompt and returns up to maxResults classified
// results ranked by trust. maxResults == 0 uses the default of 5.
func (c *Client) Query(ctx context.Context, prompt string, maxResults int) (_ Response, err error) {
	start := time.Now()
	defer func() { c.obs.observe("query", start, err) }()

	resp, err := c.pipeline.Run(ctx, prompt, maxResults)
	if err != nil {
		return Response{}, fmt.Errorf("query: %w", err)
	}
	return responseFromDomain(resp), nil
}

// Inspect fetches and classifies a single absolute http(s) URL.
func (c *Client) Inspect(ctx context.Context, url string) (_ Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("inspect", start, err) }()

	it, err := c.pipeline.Inspect(ctx, url)
	if err != nil {
		return Result{}, fmt.Errorf("inspect: %w", err)
	}
	return resultFromDomain(it), nil
}

// Model describes the loaded vectorizer/classifier pair.
func (c *Client) Model() ModelInfo {
	info := c.model.Info()
	return ModelInfo{
		Version:        info.Version,
		Kind:           string(info.Kind),
		VocabularySize: info.VocabularySize,
		Explainable:    info.Explainable,
	}
}
