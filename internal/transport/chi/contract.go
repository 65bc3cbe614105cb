package chi

import (
	"context"

	"github.com/kailas-cloud/veritas/internal/domain/item"
	"github.com/kailas-cloud/veritas/internal/domain/response"
	healthuc "github.com/kailas-cloud/veritas/internal/usecase/health"
)

// Pipeline answers queries and inspects single URLs.
type Pipeline interface {
	Run(ctx context.Context, prompt string, maxResults int) (response.Response, error)
	Inspect(ctx context.Context, rawURL string) (item.Item, error)
}

// Verifier issues and checks e-mail codes.
type Verifier interface {
	SendCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
