// Package health aggregates component checks into one report.
package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded means search still works but in a reduced form.
	Degraded Status = "degraded"
	// Unhealthy means the database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckUnsupported marks a capability the backend lacks.
	CheckUnsupported CheckResult = "unsupported"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// DefaultCheckTimeout bounds each probe so a hung provider cannot stall /health.
const DefaultCheckTimeout = 3 * time.Second

// Service runs the component probes.
type Service struct {
	db         DBPinger
	embedding  EmbeddingChecker
	textSearch TextSearchProber
	timeout    time.Duration
}

// New creates a Service. embedding and textSearch may be nil.
func New(db DBPinger, embedding EmbeddingChecker, textSearch TextSearchProber) *Service {
	return &Service{db: db, embedding: embedding, textSearch: textSearch, timeout: DefaultCheckTimeout}
}

// Check pings the database and the embedding provider in parallel, then
// probes keyword search when the database answered. The database being down
// is Unhealthy; any other failed or unsupported check is Degraded.
func (s *Service) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var dbErr, embErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		dbErr = s.db.Ping(ctx)
	}()
	if s.embedding != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			embErr = s.embedding.HealthCheck(ctx)
		}()
	}
	wg.Wait()

	checks := map[string]CheckResult{"database": result(dbErr)}
	if s.embedding != nil {
		checks["embedding"] = result(embErr)
	}
	if s.textSearch != nil && dbErr == nil {
		checks["keyword_search"] = CheckUnsupported
		if s.textSearch.SupportsTextSearch(ctx) {
			checks["keyword_search"] = CheckOK
		}
	}

	return Report{Status: aggregate(dbErr == nil, checks), Checks: checks}
}

func aggregate(dbUp bool, checks map[string]CheckResult) Status {
	if !dbUp {
		return Unhealthy
	}
	for _, v := range checks {
		if v != CheckOK {
			return Degraded
		}
	}
	return Healthy
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
