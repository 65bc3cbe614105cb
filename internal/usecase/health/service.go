package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure; queries are still answered.
	Degraded Status = "degraded"
	// Unhealthy indicates the model is missing and every query is rejected.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db         DBPinger
	model      ModelChecker
	summarizer SummarizerChecker
}

// New creates a Service. summarizer can be nil.
func New(db DBPinger, model ModelChecker, summarizer SummarizerChecker) *Service {
	return &Service{db: db, model: model, summarizer: summarizer}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["database"] = result(s.db.Ping(ctx))

	if s.model.Available() {
		checks["model"] = CheckOK
	} else {
		checks["model"] = CheckError
	}

	if s.summarizer != nil {
		checks["summarizer"] = result(s.summarizer.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks["model"] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
