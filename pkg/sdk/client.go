package sdk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/Coder-RL/docs-mcp-server/internal/db/redis"
	"github.com/Coder-RL/docs-mcp-server/internal/domain"
	"github.com/Coder-RL/docs-mcp-server/internal/embedding"
	"github.com/Coder-RL/docs-mcp-server/internal/repository/docs"
	healthuc "github.com/Coder-RL/docs-mcp-server/internal/usecase/health"
	searchuc "github.com/Coder-RL/docs-mcp-server/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultModel            = "openai:text-embedding-3-small"
	customModel             = "custom:embedder"
)

// Internal interfaces, swapped for fakes in tests.
type searchUseCase interface {
	Search(ctx context.Context, req searchuc.Request) (searchuc.Outcome, error)
}

type libraryStore interface {
	AddDocuments(ctx context.Context, library, version string, passages []domain.Passage) error
	RegisterVersion(ctx context.Context, library, version string) error
	ListVersions(ctx context.Context, library string) ([]domain.LibraryVersion, error)
	RemoveVersion(ctx context.Context, library, version string) (int, error)
}

type connection interface {
	Ping(ctx context.Context) error
	Close()
}

// Client is the docs search SDK entry point.
type Client struct {
	conn      connection
	searchSvc searchUseCase
	library   libraryStore
	healthSvc healthUseCase
	obs       *observer
}

// New builds the embedding provider, connects to Redis and ensures the
// passage index exists. The provider is built first, so a misconfigured
// provider is reported without touching Redis.
// The provided context bounds the readiness check and index creation.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		model:      defaultModel,
		dimensions: domain.DefaultDimensions,
		readiness:  defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("sdk: redis address required (use WithRedis)")
	}
	if cfg.embedder != nil && cfg.model == defaultModel {
		cfg.model = customModel
	}
	if cfg.keyPrefix != "" && !strings.HasSuffix(cfg.keyPrefix, ":") {
		return nil, fmt.Errorf("sdk: key prefix %q must end with \":\"", cfg.keyPrefix)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	base, err := buildProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("sdk: embedding provider: %w", err)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.addrs,
		Username:   cfg.username,
		Password:   cfg.password,
		DB:         cfg.db,
		Standalone: cfg.standalone,
	})
	if err != nil {
		return nil, fmt.Errorf("sdk: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, cfg.readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("sdk: redis not ready: %w", err)
	}

	logger := internalLogger(cfg)
	chainCfg := embedding.ChainConfig{
		Provider: embedding.Config{Model: cfg.model, Logger: logger},
	}
	if cfg.cache {
		chainCfg.Cache = store
		chainCfg.CacheTTL = cfg.cacheTTL
		chainCfg.CachePrefix = cfg.keyPrefix
	}
	chain := embedding.Wrap(base, chainCfg)

	repo := docs.New(store, chain, logger).
		WithKeyPrefix(cfg.keyPrefix).
		WithHNSW(docs.HNSWConfig{M: cfg.hnswM, EFConstruct: cfg.hnswEFConstruct})
	if err := repo.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("sdk: ensure index: %w", err)
	}

	return &Client{
		conn:      store,
		searchSvc: searchuc.New(repo, logger),
		library:   repo,
		healthSvc: healthuc.New(store, repo, chain, logger),
		obs:       obs,
	}, nil
}

// buildProvider returns the custom embedder when one is set, otherwise the
// provider named by the model identifier.
func buildProvider(cfg *clientConfig) (domain.Provider, error) {
	if cfg.embedder != nil {
		if cfg.embedder.Dimensions() <= 0 {
			return nil, domain.NewProviderConfiguration(cfg.model, "custom embedder reports no dimensions")
		}
		return &embedderAdapter{inner: cfg.embedder}, nil
	}
	return embedding.New(embedding.Config{
		Model:      cfg.model,
		Dimensions: cfg.dimensions,
		BaseURL:    cfg.baseURL,
		APIKey:     cfg.apiKey,
		Logger:     internalLogger(cfg),
	})
}

func internalLogger(cfg *clientConfig) *zap.Logger {
	if cfg.logger == nil {
		return zap.NewNop()
	}
	return cfg.logger.Named("docs")
}

// Close releases all resources.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// Ping checks Redis connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search resolves the requested version and returns the best passages.
// A version that cannot be served yields a response with Error set and a
// nil error; err is reserved for invalid input and infrastructure failures.
func (c *Client) Search(ctx context.Context, p SearchParams) (resp SearchResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	version := p.Version
	if version == "" && !p.ExactMatch {
		version = domain.LatestVersion
	}

	out, err := c.searchSvc.Search(ctx, searchuc.Request{
		Library:    p.Library,
		Version:    version,
		Query:      p.Query,
		Limit:      p.Limit,
		ExactMatch: p.ExactMatch,
	})
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}
	return toSearchResponse(out), nil
}

// AddDocuments embeds and stores passages under library@version and marks
// the version as indexed. An empty version stores unversioned docs.
func (c *Client) AddDocuments(ctx context.Context, library, version string, passages []Passage) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("add_documents", start, err) }()

	items := make([]domain.Passage, len(passages))
	for i, p := range passages {
		if strings.TrimSpace(p.Content) == "" {
			return fmt.Errorf("passage %d (%q): content is required", i, p.ID)
		}
		if p.ID == "" {
			return fmt.Errorf("passage %d: id is required", i)
		}
		items[i] = domain.Passage{ID: p.ID, Content: p.Content, URL: p.URL, Title: p.Title}
	}

	if err = c.library.AddDocuments(ctx, library, version, items); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

// RegisterVersion records a version as known without indexing documents.
func (c *Client) RegisterVersion(ctx context.Context, library, version string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("register_version", start, err) }()

	if err = c.library.RegisterVersion(ctx, library, version); err != nil {
		return fmt.Errorf("register version: %w", err)
	}
	return nil
}

// Versions lists the known versions of a library, newest first.
func (c *Client) Versions(ctx context.Context, library string) (versions []Version, err error) {
	start := time.Now()
	defer func() { c.obs.observe("versions", start, err) }()

	known, err := c.library.ListVersions(ctx, library)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return toVersions(known), nil
}

// RemoveVersion deletes every passage stored for library@version and
// forgets the version. It returns how many passages were deleted.
func (c *Client) RemoveVersion(ctx context.Context, library, version string) (removed int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("remove_version", start, err) }()

	removed, err = c.library.RemoveVersion(ctx, library, version)
	if err != nil {
		return removed, fmt.Errorf("remove version: %w", err)
	}
	return removed, nil
}

func toSearchResponse(out searchuc.Outcome) SearchResponse {
	results := make([]SearchResult, len(out.Results))
	for i := range out.Results {
		r := &out.Results[i]
		results[i] = SearchResult{
			ID:      r.ID(),
			Score:   r.Score(),
			Content: r.Content(),
			URL:     r.URL(),
			Title:   r.Title(),
			Library: r.Library(),
			Version: r.Version(),
		}
	}

	resp := SearchResponse{Results: results}
	if out.Error != nil {
		resp.Error = &VersionError{
			Message:           out.Error.Message,
			AvailableVersions: toVersions(out.Error.AvailableVersions),
		}
	}
	return resp
}

func toVersions(known []domain.LibraryVersion) []Version {
	versions := make([]Version, len(known))
	for i, v := range known {
		versions[i] = Version{Version: v.Version, Indexed: v.Indexed}
	}
	return versions
}
