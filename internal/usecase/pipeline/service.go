// Package pipeline drives a query through search, per-hit scoring, clustering, ranking and summarization.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/veritas/internal/domain"
	"github.com/kailas-cloud/veritas/internal/domain/article"
	"github.com/kailas-cloud/veritas/internal/domain/features"
	"github.com/kailas-cloud/veritas/internal/domain/hit"
	"github.com/kailas-cloud/veritas/internal/domain/item"
	"github.com/kailas-cloud/veritas/internal/domain/outcome"
	"github.com/kailas-cloud/veritas/internal/domain/query"
	"github.com/kailas-cloud/veritas/internal/domain/response"
	"github.com/kailas-cloud/veritas/internal/domain/summary"
	"github.com/kailas-cloud/veritas/internal/logger"
	"github.com/kailas-cloud/veritas/internal/metrics"
	"github.com/kailas-cloud/veritas/internal/usecase/rank"
)

// Defaults applied by New to zero Config fields.
const (
	DefaultWorkers        = 4
	DefaultSearchTimeout  = 10 * time.Second
	DefaultFetchTimeout   = 8 * time.Second
	// DefaultRequestTimeout bounds a whole Run; stage timeouts are cut to what remains of it.
	DefaultRequestTimeout = 45 * time.Second
)

// Config tunes the orchestrator.
type Config struct {
	Workers        int
	MaxResults     int // cap on max_results; 0 disables it
	SearchTimeout  time.Duration
	FetchTimeout   time.Duration
	// RequestTimeout caps Run end to end. Keep it below the HTTP write timeout.
	RequestTimeout time.Duration
	BodyPrefix     int
	ExplainTopK    int
	SummaryTopN    int
}

// Service is the QueryOrchestrator. It keeps no per-request state between calls.
type Service struct {
	search  SearchProvider
	fetch   DocumentFetcher
	clf     Classifier
	explain Explainer
	recency RecencyEstimator
	cluster Projector
	summ    Summarizer
	cfg     Config
	logger  *zap.Logger
}

// New creates the orchestrator. cluster and summ may be nil (stage disabled).
func New(
	search SearchProvider,
	fetch DocumentFetcher,
	clf Classifier,
	explain Explainer,
	recency RecencyEstimator,
	cluster Projector,
	summ Summarizer,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = DefaultSearchTimeout
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	return &Service{
		search:  search,
		fetch:   fetch,
		clf:     clf,
		explain: explain,
		recency: recency,
		cluster: cluster,
		summ:    summ,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run answers one query. Only an empty prompt, an invalid max_results or
// unavailable model artifacts fail the request; everything else degrades.
func (s *Service) Run(ctx context.Context, prompt string, maxResults int) (response.Response, error) {
	q, err := query.New(prompt, maxResults, s.cfg.MaxResults)
	if err != nil {
		metrics.PipelineRequestsTotal.WithLabelValues("rejected").Inc()
		return response.Response{}, fmt.Errorf("build query: %w", err)
	}
	if !s.clf.Available() {
		metrics.PipelineRequestsTotal.WithLabelValues("rejected").Inc()
		return response.Response{}, domain.ErrModelUnavailable
	}

	log := logger.FromContextOr(ctx, s.logger).With(zap.String("run_id", uuid.NewString()))
	ctx = logger.ContextWithLogger(ctx, log)

	// Stages past the deadline fail fast and degrade like any other stage failure.
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	hits := s.searchHits(ctx, q)
	outcomes := s.processHits(ctx, hits)
	items, vectors := s.fold(ctx, outcomes)
	items = s.clusterStage(ctx, items, vectors)

	start := time.Now()
	ranked := rank.ByTrust(items)
	observeStage("rank", start)

	sum := s.summarize(ctx, q.Prompt(), ranked)

	metrics.PipelineRequestsTotal.WithLabelValues("ok").Inc()
	log.Info("Pipeline completed",
		zap.Int("hits", len(hits)),
		zap.Int("results", len(ranked)),
		zap.Bool("summarized", !sum.IsEmpty()),
	)
	return response.Response{Prompt: q.Prompt(), Results: ranked, Summary: sum}, nil
}

// Inspect scores a single URL. Unlike Run, an unscorable document is an error here.
func (s *Service) Inspect(ctx context.Context, rawURL string) (item.Item, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return item.Item{}, fmt.Errorf("url must be an absolute http(s) URL: %w", domain.ErrInvalidRequest)
	}
	if !s.clf.Available() {
		return item.Item{}, domain.ErrModelUnavailable
	}

	h := hit.Hit{Link: rawURL}
	res := s.processHit(ctx, h)
	if !res.OK() {
		return item.Item{}, res.Reason()
	}
	return res.Item(), nil
}

func (s *Service) searchHits(ctx context.Context, q query.Query) []hit.Hit {
	defer observeStage("search", time.Now())

	sctx, cancel := context.WithTimeout(ctx, s.cfg.SearchTimeout)
	defer cancel()

	hits := s.search.Search(sctx, q.Prompt(), q.MaxResults())
	if len(hits) > q.MaxResults() {
		hits = hits[:q.MaxResults()]
	}
	return hits
}

// processHits scores every hit with bounded concurrency.
// outcomes[i] belongs to hits[i]; the call returns only when all hits are done.
func (s *Service) processHits(ctx context.Context, hits []hit.Hit) []outcome.Outcome {
	defer observeStage("process", time.Now())

	outcomes := make([]outcome.Outcome, len(hits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, h := range hits {
		g.Go(func() error {
			outcomes[i] = s.processHit(gctx, h)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (s *Service) processHit(ctx context.Context, h hit.Hit) (res outcome.Outcome) {
	fallback := false
	defer func() {
		if r := recover(); r != nil {
			res = outcome.Failed(fmt.Errorf("%w: panic: %v", domain.ErrClassification, r), fallback)
		}
	}()

	var doc article.Document
	doc, fallback = s.fetchDocument(ctx, h)

	text, ok := doc.Representation(s.cfg.BodyPrefix)
	if !ok {
		return outcome.Skipped(domain.ErrEmptyText, fallback)
	}

	v, vec, err := s.clf.Classify(text)
	if err != nil {
		if errors.Is(err, domain.ErrClassification) {
			return outcome.Failed(err, fallback)
		}
		return outcome.Failed(fmt.Errorf("%w: %w", domain.ErrClassification, err), fallback)
	}

	exp := s.explain.Explain(vec, s.cfg.ExplainTopK)

	date, _ := doc.PublishDate()
	days, known := s.recency.Estimate(date)

	return outcome.Success(item.New(doc, v, exp, days, known), vec, fallback)
}

// fetchDocument returns the fetched document, or one synthesized from the hit on failure.
func (s *Service) fetchDocument(ctx context.Context, h hit.Hit) (article.Document, bool) {
	fctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	doc, err := s.fetch.Fetch(fctx, h.Link)
	if err != nil {
		metrics.FetchRequestsTotal.WithLabelValues("error").Inc()
		logger.FromContextOr(ctx, s.logger).Warn("Fetch failed, using search metadata",
			zap.String("url", h.Link),
			zap.Error(err),
		)
		return article.FromHit(h), true
	}
	metrics.FetchRequestsTotal.WithLabelValues("success").Inc()
	return doc.MergeHit(h), false
}

// fold collects successful items in search order and drops the rest.
func (s *Service) fold(ctx context.Context, outcomes []outcome.Outcome) ([]item.Item, []features.Vector) {
	log := logger.FromContextOr(ctx, s.logger)

	items := make([]item.Item, 0, len(outcomes))
	vectors := make([]features.Vector, 0, len(outcomes))
	for i, o := range outcomes {
		metrics.PipelineItemsTotal.WithLabelValues(string(o.Status())).Inc()
		if !o.OK() {
			log.Info("Hit dropped",
				zap.Int("position", i),
				zap.String("outcome", string(o.Status())),
				zap.Bool("fetch_fallback", o.Fallback()),
				zap.Error(o.Reason()),
			)
			continue
		}
		items = append(items, o.Item())
		vectors = append(vectors, o.Vector())
	}
	return items, vectors
}

// clusterStage attaches placements to every item, or to none.
func (s *Service) clusterStage(ctx context.Context, items []item.Item, vectors []features.Vector) []item.Item {
	if s.cluster == nil || !s.cluster.Enabled() || len(items) < 2 {
		return items
	}
	defer observeStage("cluster", time.Now())

	placements, err := s.cluster.Project(vectors)
	if err == nil && len(placements) != len(items) {
		err = fmt.Errorf("%w: got %d placements for %d items", domain.ErrDegraded, len(placements), len(items))
	}
	if err != nil {
		metrics.PipelineDegradedTotal.WithLabelValues("cluster", "error").Inc()
		logger.FromContextOr(ctx, s.logger).Warn("Clustering skipped", zap.Error(err))
		return items
	}

	placed := make([]item.Item, len(items))
	for i := range items {
		placed[i] = items[i].WithPlacement(placements[i])
	}
	return placed
}

func (s *Service) summarize(ctx context.Context, prompt string, ranked []item.Item) summary.Summary {
	if s.summ == nil || !s.summ.Enabled() || len(ranked) == 0 {
		return summary.Empty()
	}
	defer observeStage("summarize", time.Now())
	return s.summ.Summarize(ctx, prompt, rank.Top(ranked, s.cfg.SummaryTopN))
}

func observeStage(stage string, start time.Time) {
	metrics.PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
