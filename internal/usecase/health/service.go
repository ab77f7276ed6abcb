package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded means search still answers, from local scores only.
	Degraded Status = "degraded"
	// Unhealthy means content storage is unreachable and search fails.
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

// checkTimeout bounds each component probe.
const checkTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db          DBPinger
	completions map[string]CompletionChecker
}

// New creates a Service. completions maps a provider name to its checker; nil entries are ignored.
func New(db DBPinger, completions map[string]CompletionChecker) *Service {
	active := make(map[string]CompletionChecker, len(completions))
	for name, c := range completions {
		if c != nil {
			active[name] = c
		}
	}
	return &Service{db: db, completions: active}
}

// Check probes every component concurrently.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult, 1+len(s.completions))
	)
	record := func(name string, err error) {
		res := CheckOK
		if err != nil {
			res = CheckError
		}
		mu.Lock()
		checks[name] = res
		mu.Unlock()
	}
	probe := func(name string, fn func(context.Context) error) func() error {
		return func() error {
			pctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			record(name, fn(pctx))
			return nil
		}
	}

	var g errgroup.Group
	g.Go(probe("database", s.db.Ping))
	for name, c := range s.completions {
		g.Go(probe("completion_"+name, c.HealthCheck))
	}
	_ = g.Wait()

	status := Healthy
	for name, v := range checks {
		if v != CheckError {
			continue
		}
		if name == "database" {
			status = Unhealthy
			break
		}
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
