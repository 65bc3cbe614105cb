// Package app assembles the veritas services from configuration.
package app

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/veritas/internal/config"
	"github.com/kailas-cloud/veritas/internal/db"
	"github.com/kailas-cloud/veritas/internal/domain/recency"
	"github.com/kailas-cloud/veritas/internal/metrics"
	"github.com/kailas-cloud/veritas/internal/model"
	"github.com/kailas-cloud/veritas/internal/repository/counter"
	"github.com/kailas-cloud/veritas/internal/repository/fetchcache"
	"github.com/kailas-cloud/veritas/internal/repository/verifycode"
	"github.com/kailas-cloud/veritas/internal/transport/htmlfetch"
	openaiSum "github.com/kailas-cloud/veritas/internal/transport/openai"
	"github.com/kailas-cloud/veritas/internal/transport/smtp"
	"github.com/kailas-cloud/veritas/internal/transport/websearch"
	"github.com/kailas-cloud/veritas/internal/usecase/cluster"
	"github.com/kailas-cloud/veritas/internal/usecase/explain"
	healthuc "github.com/kailas-cloud/veritas/internal/usecase/health"
	"github.com/kailas-cloud/veritas/internal/usecase/pipeline"
	summaryuc "github.com/kailas-cloud/veritas/internal/usecase/summary"
	"github.com/kailas-cloud/veritas/internal/usecase/verification"
)

const (
	tokenCounterTTL = 48 * time.Hour
	sendLimitWindow = time.Hour
)

// App holds the assembled services.
type App struct {
	Model        *model.Model
	Pipeline     *pipeline.Service
	Health       *healthuc.Service
	Verification *verification.Service // nil when disabled
	Summarizer   *openaiSum.Summarizer // nil when disabled
	Search       *websearch.Provider
}

// Build wires every service. store may be nil (no cache, no persisted token quota, no verification).
// A model that fails to load is logged; the pipeline then rejects every query.
func Build(ctx context.Context, cfg config.Config, store db.Store, logger *zap.Logger) *App {
	metrics.RegisterPipelineMetrics()
	metrics.RegisterSummarizerMetrics()
	metrics.RegisterVerificationMetrics()

	m, err := model.Load(cfg.Model.VectorizerPath, cfg.Model.ClassifierPath)
	if err != nil {
		logger.Error("Model artifacts unavailable, queries will be rejected", zap.Error(err))
	} else {
		info := m.Info()
		logger.Info("Model loaded",
			zap.String("version", info.Version),
			zap.String("kind", string(info.Kind)),
			zap.Int("vocabulary_size", info.VocabularySize),
			zap.String("explainable", info.Explainable),
		)
	}

	search := websearch.New(&websearch.Config{
		Provider:   cfg.Search.Provider,
		Endpoint:   cfg.Search.Endpoint,
		APIKey:     cfg.Search.APIKey,
		EngineID:   cfg.Search.EngineID,
		Attempts:   uint(cfg.Search.RetryAttempts),
		HTTPClient: &http.Client{},
		Logger:     logger,
	})
	logger.Info("Search provider configured", zap.String("provider", search.Name()))

	fetcher := buildFetcher(cfg.Fetch, store, logger)

	var classifier model.Classifier
	if m != nil {
		classifier = m.Classifier()
	}
	explainer := explain.New(m, classifier)

	clusterSvc := cluster.New(cluster.Config{
		Enabled:       cfg.Pipeline.Clustering.Enabled,
		Seed:          cfg.Pipeline.Clustering.Seed,
		MaxComponents: cfg.Pipeline.Clustering.MaxComponents,
		MaxClusters:   cfg.Pipeline.Clustering.MaxClusters,
	})

	summarizer, summarySvc := buildSummarizer(ctx, cfg.Summarizer, cfg.SummarizerEnabled(), store, logger)

	pipe := pipeline.New(
		search,
		fetcher,
		m,
		explainer,
		recency.NewEstimator(time.Now),
		clusterSvc,
		summarySvc,
		pipeline.Config{
			Workers:        cfg.Pipeline.Workers,
			MaxResults:     cfg.Pipeline.MaxResults,
			SearchTimeout:  time.Duration(cfg.Search.TimeoutSec) * time.Second,
			FetchTimeout:   time.Duration(cfg.Fetch.TimeoutSec) * time.Second,
			RequestTimeout: time.Duration(cfg.Pipeline.RequestTimeoutSec) * time.Second,
			BodyPrefix:     cfg.Pipeline.BodyPrefixChars,
			ExplainTopK:    cfg.Pipeline.ExplainTopK,
			SummaryTopN:    cfg.Summarizer.TopN,
		},
		logger,
	)

	// Pass nil interface (not typed nil pointer) when the summarizer is off.
	var sumChecker healthuc.SummarizerChecker
	if summarizer != nil {
		sumChecker = summarizer
	}
	var pinger healthuc.DBPinger = noopPinger{}
	if store != nil {
		pinger = store
	}

	return &App{
		Model:        m,
		Pipeline:     pipe,
		Health:       healthuc.New(pinger, m, sumChecker),
		Verification: buildVerification(cfg.Verification, store, logger),
		Summarizer:   summarizer,
		Search:       search,
	}
}

func buildFetcher(cfg config.FetchConfig, store db.Store, logger *zap.Logger) pipeline.DocumentFetcher {
	base := htmlfetch.New(htmlfetch.Config{
		UserAgent:     cfg.UserAgent,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		MaxParagraphs: cfg.MaxParagraphs,
	})
	if store == nil || cfg.CacheTTLSec <= 0 {
		return base
	}
	return fetchcache.New(base, store, time.Duration(cfg.CacheTTLSec)*time.Second, metrics.FetchCacheTotal, logger)
}

// buildSummarizer assembles the chain: OpenAI -> quota-gated, time-boxed summary service.
func buildSummarizer(
	ctx context.Context,
	cfg config.SummarizerConfig,
	enabled bool,
	store db.Store,
	logger *zap.Logger,
) (*openaiSum.Summarizer, *summaryuc.Service) {
	if !enabled {
		logger.Info("Summarizer disabled")
		return nil, nil
	}

	base := openaiSum.NewSummarizer(&openaiSum.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Provider:    cfg.Provider,
		Logger:      logger,
	})

	var quota summaryuc.TokenQuota
	if cfg.DailyTokenLimit > 0 {
		q := summaryuc.NewDailyTokenQuota(cfg.Provider, cfg.DailyTokenLimit, logger)
		if store != nil {
			q.Persist(ctx, counter.New(store, tokenCounterTTL))
		}
		quota = q
	}

	logger.Info("Summarizer enabled",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Int64("daily_token_limit", cfg.DailyTokenLimit),
	)
	svc := summaryuc.New(base, cfg.Provider, cfg.Model, quota, time.Duration(cfg.TimeoutSec)*time.Second, logger)
	return base, svc
}

func buildVerification(cfg config.VerificationConfig, store db.Store, logger *zap.Logger) *verification.Service {
	if !cfg.Enabled {
		return nil
	}
	if store == nil {
		logger.Warn("Verification requires the database, disabled")
		return nil
	}

	mailer := smtp.New(smtp.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		Subject:  cfg.SMTP.Subject,
		Timeout:  time.Duration(cfg.SMTP.TimeoutSec) * time.Second,
	})

	return verification.New(
		verifycode.New(store),
		counter.New(store, sendLimitWindow),
		mailer,
		verification.Config{
			AllowedDomain: cfg.AllowedDomain,
			CodeTTL:       time.Duration(cfg.CodeTTLSec) * time.Second,
			SendLimit:     cfg.SendLimitPerHour,
		},
		logger,
	)
}

type noopPinger struct{}

func (noopPinger) Ping(context.Context) error { return nil }
