package health

import (
	"context"
	"sort"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
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

// Components lists what a Service checks. Nil members are skipped.
type Components struct {
	Store      DBPinger
	Embedding  ProviderChecker
	Completion ProviderChecker
	Dirs       map[string]DirChecker
}

// Service coordinates health checks.
type Service struct {
	c Components
}

// New creates a Service.
func New(c Components) *Service {
	return &Service{c: c}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.c.Store != nil {
		checks["database"] = result(s.c.Store.Ping(ctx))
	}
	if s.c.Embedding != nil {
		checks["embedding"] = result(s.c.Embedding.HealthCheck(ctx))
	}
	if s.c.Completion != nil {
		checks["completion"] = result(s.c.Completion.HealthCheck(ctx))
	}

	names := make([]string, 0, len(s.c.Dirs))
	for name := range s.c.Dirs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		checks[name] = result(s.c.Dirs[name].Check(ctx))
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

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
