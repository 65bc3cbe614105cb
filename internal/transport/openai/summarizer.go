// Package openai implements the narrative summarizer over an OpenAI-compatible chat API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/kailas-cloud/veritas/internal/domain"
	"github.com/kailas-cloud/veritas/internal/domain/item"
	domsum "github.com/kailas-cloud/veritas/internal/domain/summary"
	"github.com/kailas-cloud/veritas/internal/metrics"
)

const systemPrompt = `You are a fact-checking assistant. You receive a user question and a list of
web sources, each with a credibility verdict (REAL or FAKE) and a trust score between 0 and 1.
Answer the question using the most trustworthy sources and write a short report on how
credible the evidence is overall. Reply with a JSON object: {"answer": "...", "report": "..."}.`

// Summarizer is a chat-completion based Completer.
type Summarizer struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	provider    string
	logger      *zap.Logger
}

// Config holds the summarizer provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Provider    string
	Logger      *zap.Logger
}

// NewSummarizer creates an OpenAI-compatible summarizer.
func NewSummarizer(cfg *Config) *Summarizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Summarizer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		provider:    cfg.Provider,
		logger:      cfg.Logger,
	}
}

// Complete asks the model for an answer and a credibility report over items.
func (s *Summarizer) Complete(ctx context.Context, prompt string, items []item.Item) (domsum.Completion, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage(prompt, items)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: s.temperature,
	}
	if s.maxTokens > 0 {
		req.MaxTokens = s.maxTokens
	}

	start := time.Now()

	resp, err := s.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.SummarizerRequestsTotal.WithLabelValues(s.provider, s.model, "error").Inc()
		metrics.SummarizerErrorsTotal.WithLabelValues(s.provider, s.model, "api_error").Inc()
		if ctx.Err() != nil {
			return domsum.Completion{}, fmt.Errorf("summarize: %w", ctx.Err())
		}
		return domsum.Completion{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.SummarizerRequestsTotal.WithLabelValues(s.provider, s.model, "error").Inc()
		metrics.SummarizerErrorsTotal.WithLabelValues(s.provider, s.model, "empty_response").Inc()
		return domsum.Completion{}, fmt.Errorf("empty completion response: %w", domain.ErrUpstream)
	}

	metrics.SummarizerRequestsTotal.WithLabelValues(s.provider, s.model, "success").Inc()
	metrics.SummarizerRequestDuration.WithLabelValues(s.provider, s.model).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.SummarizerTokensTotal.WithLabelValues(s.provider, s.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.SummarizerTokensTotal.WithLabelValues(s.provider, s.model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	answer, report := parseContent(resp.Choices[0].Message.Content)
	return domsum.Completion{
		Answer:       answer,
		Report:       report,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (s *Summarizer) HealthCheck(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func userMessage(prompt string, items []item.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nSources:\n", prompt)
	for i, it := range items {
		doc := it.Document()
		fmt.Fprintf(&b, "%d. %s (%s)\n   verdict: %s, trust: %.2f\n",
			i+1, doc.Title(), doc.URL(), it.Verdict().Label(), it.Trust())
		if doc.Snippet() != "" {
			fmt.Fprintf(&b, "   %s\n", doc.Snippet())
		}
	}
	return b.String()
}

// parseContent reads {"answer","report"}; a non-JSON reply is taken as the answer.
func parseContent(content string) (answer, report string) {
	content = strings.TrimSpace(content)
	if !gjson.Valid(content) {
		return content, ""
	}
	r := gjson.Parse(content)
	if !r.IsObject() {
		return content, ""
	}
	return r.Get("answer").String(), r.Get("report").String()
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrUpstream.
func parseAPIError(err error) error {
	wrap := domain.ErrUpstream

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := gjson.GetBytes(reqErr.Body, "detail").String(); detail != "" {
			return fmt.Errorf("chat API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("chat API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("chat request failed: %w", wrap)
}
