package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Coder-RL/docs-mcp-server/internal/db"
	"github.com/Coder-RL/docs-mcp-server/internal/domain"
	"github.com/Coder-RL/docs-mcp-server/internal/metrics"
	"github.com/Coder-RL/docs-mcp-server/internal/repository/embcache"
	embeddinguc "github.com/Coder-RL/docs-mcp-server/internal/usecase/embedding"
)

// ChainConfig describes a provider and the decorators around it.
type ChainConfig struct {
	Provider Config
	// Cache enables the embedding cache when non-nil.
	Cache    db.KVStore
	CacheTTL time.Duration
	// CachePrefix namespaces cache keys; empty uses domain.KeyPrefix.
	CachePrefix string
}

// Chain is the provider stack used by the service:
// base provider -> cache (optional) -> instrumentation.
type Chain struct {
	domain.Provider
	Spec Spec
	base domain.Provider
}

// NewChain builds the provider named by cfg.Provider.Model and wraps it.
// Provider misconfiguration is returned before anything is wrapped.
func NewChain(cfg ChainConfig) (*Chain, error) {
	base, err := New(cfg.Provider)
	if err != nil {
		return nil, err
	}
	return Wrap(base, cfg), nil
}

// Wrap decorates an already built base provider. cfg.Provider.Model names
// the cache scope and the metric labels.
func Wrap(base domain.Provider, cfg ChainConfig) *Chain {
	logger := cfg.Provider.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	spec := ParseModel(cfg.Provider.Model)

	p := base
	if cfg.Cache != nil {
		p = embcache.New(p, cfg.Cache, embcache.Config{
			Model:   spec.String(),
			Prefix:  cfg.CachePrefix,
			TTL:     cfg.CacheTTL,
			Lookups: metrics.EmbeddingCacheTotal,
			Logger:  logger,
		})
	}
	p = embeddinguc.NewInstrumentedEmbedder(p, spec.Family, spec.Model, logger)

	return &Chain{Provider: p, Spec: spec, base: base}
}

// HealthCheck probes the base provider. Providers without a remote
// dependency are always healthy.
func (c *Chain) HealthCheck(ctx context.Context) error {
	hc, ok := c.base.(domain.HealthChecker)
	if !ok {
		return nil
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return fmt.Errorf("embedding health check: %w", err)
	}
	return nil
}
