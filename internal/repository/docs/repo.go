package docs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Coder-RL/docs-mcp-server/internal/db"
	"github.com/Coder-RL/docs-mcp-server/internal/domain"
	"github.com/Coder-RL/docs-mcp-server/internal/domain/search/result"
)

// store is the consumer interface for documentation storage (ISP).
//
//nolint:interfacebloat // docs repo needs hash, index and search operations
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Del(ctx context.Context, keys ...string) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchKeys(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error)
}

// embedder is the consumer interface for query and passage vectorization.
type embedder interface {
	domain.Embedder
	domain.BatchEmbedder
	Dimensions() int
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo stores documentation passages per library version and serves
// version resolution and vector search over them.
type Repo struct {
	store    store
	embedder embedder
	prefix   string
	hnsw     HNSWConfig
	logger   *zap.Logger
}

// New creates a documentation repository.
func New(s store, e embedder, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{
		store:    s,
		embedder: e,
		prefix:   domain.KeyPrefix,
		hnsw:     HNSWConfig{M: 16, EFConstruct: 200},
		logger:   logger,
	}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// WithKeyPrefix namespaces every key and the index under prefix.
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	if prefix != "" {
		r.prefix = prefix
	}
	return r
}

func (r *Repo) indexName() string { return r.prefix + "idx" }

func (r *Repo) docPrefix() string { return r.prefix + "doc:" }

func (r *Repo) docKey(library, version, id string) string {
	return r.docPrefix() + library + ":" + encodeVersion(version) + ":" + id
}

func (r *Repo) versionsKey(library string) string {
	return r.prefix + "lib:" + library + ":versions"
}

// EnsureIndex creates the passage index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	dims := r.embedder.Dimensions()
	if dims <= 0 {
		dims = domain.DefaultDimensions
	}

	def, err := db.NewIndex(r.indexName()).
		Prefix(r.docPrefix()).
		Tag(fieldLibrary).
		Tag(fieldVersion).
		Vector(fieldVector, db.VectorSpec{
			Algorithm:   db.VectorHNSW,
			Dim:         dims,
			Distance:    db.DistanceCosine,
			M:           r.hnsw.M,
			EFConstruct: r.hnsw.EFConstruct,
		}).
		Build()
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index: %w", err)
	}

	r.logger.Info("Created documentation index",
		zap.String("index", def.Name),
		zap.Int("dimensions", dims),
	)
	return nil
}

// RebuildIndex drops the passage index and creates it again with the
// current dimensions and HNSW parameters. Stored passages are kept and
// re-indexed by Redis in the background.
func (r *Repo) RebuildIndex(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.indexName()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index: %w", err)
	}
	r.logger.Info("Dropped documentation index", zap.String("index", r.indexName()))
	return r.EnsureIndex(ctx)
}

// ErrIndexMissing is returned by IndexReady when the passage index does not exist.
var ErrIndexMissing = errors.New("documentation index missing")

// IndexReady reports whether the passage index exists.
func (r *Repo) IndexReady(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrIndexMissing, r.indexName())
	}
	return nil
}

// Search embeds the query and returns the closest passages of one library
// version, best match first.
func (r *Repo) Search(
	ctx context.Context, library, version, query string, limit int,
) ([]result.Result, error) {
	library = domain.NormalizeLibrary(library)

	emb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: r.indexName(),
		Tags: []db.TagFilter{
			{Field: fieldLibrary, Value: library},
			{Field: fieldVersion, Value: encodeVersion(version)},
		},
		Vector:       vectorToFloat32(emb.Embedding),
		K:            limit,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search %s@%s: %w", library, version, err)
	}

	return r.parseResults(sr, r.docKey(library, version, "")), nil
}

// parseResults recovers passage ids by stripping keyPrefix, the key prefix
// shared by every passage of the searched version. Library names and ids
// may both contain colons.
func (r *Repo) parseResults(sr *db.SearchResult, keyPrefix string) []result.Result {
	if sr == nil || len(sr.Entries) == 0 {
		return []result.Result{}
	}

	results := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		f := entry.Fields
		id := strings.TrimPrefix(entry.Key, keyPrefix)
		results = append(results, result.New(
			id, entry.Score,
			f[fieldContent], f[fieldURL], f[fieldTitle],
			f[fieldLibrary], decodeVersion(f[fieldVersion]),
		))
	}
	return results
}

// AddDocuments embeds the passages, stores them under library@version and
// marks the version as indexed.
func (r *Repo) AddDocuments(
	ctx context.Context, library, version string, passages []domain.Passage,
) error {
	library = domain.NormalizeLibrary(library)
	if library == "" {
		return domain.ErrLibraryRequired
	}
	if len(passages) == 0 {
		return nil
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Content
	}

	emb, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed passages: %w", err)
	}
	if len(emb.Embeddings) != len(passages) {
		return fmt.Errorf("expected %d embeddings, got %d: %w",
			len(passages), len(emb.Embeddings), domain.ErrEmbeddingProviderError)
	}

	items := make([]db.HashSetItem, len(passages))
	for i, p := range passages {
		items[i] = db.HashSetItem{
			Key:    r.docKey(library, version, p.ID),
			Fields: buildHashFields(library, version, p, emb.Embeddings[i]),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store passages %s@%s: %w", library, version, err)
	}

	if err := r.markVersion(ctx, library, version, true); err != nil {
		return err
	}

	r.logger.Info("Indexed documentation passages",
		zap.String("library", library),
		zap.String("version", version),
		zap.Int("passages", len(passages)),
		zap.Int("total_tokens", emb.TotalTokens),
	)
	return nil
}

// RegisterVersion records a known version without documents, so it shows up
// in version listings as not indexed. An already indexed version is left as is.
func (r *Repo) RegisterVersion(ctx context.Context, library, version string) error {
	library = domain.NormalizeLibrary(library)
	if library == "" {
		return domain.ErrLibraryRequired
	}

	known, err := r.store.HGetAll(ctx, r.versionsKey(library))
	if err != nil {
		return fmt.Errorf("load versions %s: %w", library, err)
	}
	if known[encodeVersion(version)] == versionIndexed {
		return nil
	}
	return r.markVersion(ctx, library, version, false)
}

func (r *Repo) markVersion(ctx context.Context, library, version string, indexed bool) error {
	value := versionNotIndexed
	if indexed {
		value = versionIndexed
	}
	if err := r.store.HSet(ctx, r.versionsKey(library), map[string]string{encodeVersion(version): value}); err != nil {
		return fmt.Errorf("record version %s@%s: %w", library, version, err)
	}
	return nil
}
