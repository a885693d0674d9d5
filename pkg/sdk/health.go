package sdk

import (
	"context"

	healthuc "github.com/Coder-RL/docs-mcp-server/internal/usecase/health"
)

// Health status values.
const (
	HealthOK       = string(healthuc.Healthy)
	HealthDegraded = string(healthuc.Degraded)
	HealthError    = string(healthuc.Unhealthy)
)

// HealthStatus is the aggregated state of Redis, the passage index and
// the embedding provider. Status is HealthOK, HealthDegraded or
// HealthError; Checks maps "database", "index" and "embedding" to "ok" or
// "error".
type HealthStatus struct {
	Status string
	Checks map[string]string
}

// OK reports whether every component passed.
func (h HealthStatus) OK() bool { return h.Status == HealthOK }

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Health runs all component checks concurrently. Without Redis the
// status is HealthError; any other failing component degrades it.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)

	h := HealthStatus{Status: string(report.Status), Checks: make(map[string]string, len(report.Checks))}
	for name, res := range report.Checks {
		h.Checks[name] = string(res)
	}
	return h
}
