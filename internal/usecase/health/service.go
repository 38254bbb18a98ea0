// Package health aggregates component health checks.
package health

import (
	"context"

	"github.com/sathizz7/Street-View-Analysis/internal/domain"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status    Status
	Buildings int
	Checks    map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	footprints domain.FootprintCollection
	cache      CachePinger
}

// New creates a health service. cache can be nil when no cache store
// is configured; the cache check is then omitted from the report.
func New(footprints domain.FootprintCollection, cache CachePinger) *Service {
	return &Service{footprints: footprints, cache: cache}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.footprints.Len() > 0 {
		checks["dataset"] = CheckOK
	} else {
		checks["dataset"] = CheckError
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	status := Healthy
	for _, result := range checks {
		if result == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Buildings: s.footprints.Len(), Checks: checks}
}
