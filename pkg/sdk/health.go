package fieldcodec

import (
	"context"

	healthuc "github.com/kailas-cloud/fieldcodec/internal/usecase/health"
)

// HealthStatus represents the aggregated shard health.
type HealthStatus struct {
	Status string            // "ok", "error"
	Shard  string            // empty for embedded clients
	Checks map[string]string // component → "ok"/"error"
}

// Health checks the health of the backing store.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Shard:  report.Shard,
		Checks: checks,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
