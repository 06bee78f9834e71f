package health

import "context"

// Status is the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult is an individual component check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing check.
	CheckError CheckResult = "error"
)

// Report aggregates component check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks over the store, the search index and
// the model provider.
type Service struct {
	store     StorePinger
	provider  ProviderChecker
	index     IndexProber
	indexName string
}

// New creates a Service. provider may be nil; index checks are skipped when
// indexName is empty.
func New(store StorePinger, provider ProviderChecker, index IndexProber, indexName string) *Service {
	return &Service{store: store, provider: provider, index: index, indexName: indexName}
}

// Check probes every component. A failed probe degrades the report but
// never errors: health must be reportable even when dependencies are down.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.store.Ping(ctx); err != nil {
		checks["store"] = CheckError
	} else {
		checks["store"] = CheckOK
	}

	if s.index != nil && s.indexName != "" {
		if ok, err := s.index.IndexExists(ctx, s.indexName); err != nil || !ok {
			checks["index"] = CheckError
		} else {
			checks["index"] = CheckOK
		}
	}

	if s.provider != nil {
		if err := s.provider.HealthCheck(ctx); err != nil {
			checks["provider"] = CheckError
		} else {
			checks["provider"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
