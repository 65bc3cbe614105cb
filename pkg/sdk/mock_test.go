package veritas

import (
	"context"

	"github.com/kailas-cloud/veritas/internal/domain/item"
	"github.com/kailas-cloud/veritas/internal/domain/response"
	healthuc "github.com/kailas-cloud/veritas/internal/usecase/health"
)

// --- pipelineUseCase mock ---

type mockPipeline struct {
	runFn     func(ctx context.Context, prompt string, maxResults int) (response.Response, error)
	inspectFn func(ctx context.Context, rawURL string) (item.Item, error)
}

func (m *mockPipeline) Run(ctx context.Context, prompt string, maxResults int) (response.Response, error) {
	return m.runFn(ctx, prompt, maxResults)
}

func (m *mockPipeline) Inspect(ctx context.Context, rawURL string) (item.Item, error) {
	return m.inspectFn(ctx, rawURL)
}

// --- healthUseCase mock ---

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }
