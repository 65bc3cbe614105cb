package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ModelChecker reports whether the classifier artifacts are loaded.
type ModelChecker interface {
	Available() bool
}

// SummarizerChecker checks summarization provider availability.
type SummarizerChecker interface {
	HealthCheck(ctx context.Context) error
}
