package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Coder-RL/docs-mcp-server/internal/config"
	"github.com/Coder-RL/docs-mcp-server/internal/db"
	dbRedis "github.com/Coder-RL/docs-mcp-server/internal/db/redis"
	"github.com/Coder-RL/docs-mcp-server/internal/embedding"
	logpkg "github.com/Coder-RL/docs-mcp-server/internal/logger"
	"github.com/Coder-RL/docs-mcp-server/internal/metrics"
	"github.com/Coder-RL/docs-mcp-server/internal/repository/docs"
	healthuc "github.com/Coder-RL/docs-mcp-server/internal/usecase/health"
	searchuc "github.com/Coder-RL/docs-mcp-server/internal/usecase/search"
	"github.com/Coder-RL/docs-mcp-server/internal/version"
)

// app is the composition root shared by all commands.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	store  db.Store
	chain  *embedding.Chain
	docs   *docs.Repo
	search *searchuc.Service
	health *healthuc.Service
}

// newApp loads config and wires storage, the embedding chain and services.
// The embedding provider is built before Redis is contacted so that a
// misconfigured provider fails fast.
func newApp(ctx context.Context, opts *globalOptions) (*app, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logpkg.New(logpkg.Options{
		Env:    opts.env,
		Level:  opts.level(&cfg),
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Info("Starting docs-mcp-server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", opts.env),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()
	metrics.RegisterHTTPMetrics()

	providerCfg := embedding.Config{
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		BaseURL:    cfg.Embedding.BaseURL,
		APIKey:     cfg.Embedding.APIKey,
		Logger:     logger,
	}
	base, err := embedding.New(providerCfg)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("embedding provider: %w", err)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Database.Addrs,
		Username:   cfg.Database.Username,
		Password:   cfg.Database.Password,
		DB:         cfg.Database.DB,
		Standalone: cfg.Database.Standalone,
	})
	if err != nil {
		return nil, fmt.Errorf("create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("redis not ready: %w", err)
	}
	logger.Info("Connected to Redis")

	chainCfg := embedding.ChainConfig{Provider: providerCfg}
	if cfg.Embedding.Cache.Enabled {
		chainCfg.Cache = store
		chainCfg.CacheTTL = time.Duration(cfg.Embedding.Cache.TTLSec) * time.Second
		chainCfg.CachePrefix = cfg.Storage.KeyPrefix
	}
	chain := embedding.Wrap(base, chainCfg)

	repo := docs.New(store, chain, logger).
		WithKeyPrefix(cfg.Storage.KeyPrefix).
		WithHNSW(docs.HNSWConfig{M: cfg.Index.HNSWM, EFConstruct: cfg.Index.HNSWEFConstruct})
	if err := repo.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure index: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		chain:  chain,
		docs:   repo,
		search: searchuc.New(repo, logger),
		health: healthuc.New(store, repo, chain, logger),
	}, nil
}

func (a *app) Close() {
	a.store.Close()
	_ = a.logger.Sync()
}
