package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Coder-RL/docs-mcp-server/internal/db"
	"github.com/Coder-RL/docs-mcp-server/internal/domain"
	"github.com/Coder-RL/docs-mcp-server/internal/metrics"
)

var _ domain.Provider = (*CachedEmbedder)(nil)

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	MGet(ctx context.Context, keys ...string) ([][]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config scopes and tunes the cache.
type Config struct {
	// Model scopes keys so switching providers never serves stale vectors.
	Model string
	// Prefix namespaces keys; defaults to domain.KeyPrefix.
	Prefix string
	// TTL <= 0 stores entries without expiry.
	TTL time.Duration
	// Lookups counts cache lookups by "result". Optional.
	Lookups *prometheus.CounterVec
	Logger  *zap.Logger
}

// CachedEmbedder serves embeddings from a key-value store and falls back
// to the inner provider on a miss. Cache failures degrade to misses.
type CachedEmbedder struct {
	inner   domain.Provider
	store   store
	dims    int
	scope   string
	ttl     time.Duration
	lookups *prometheus.CounterVec
	logger  *zap.Logger
}

// New wraps inner with a cache backed by s. Keys are scoped by prefix,
// model and inner.Dimensions(), so resizing vectors starts a fresh cache.
func New(inner domain.Provider, s store, cfg Config) *CachedEmbedder {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Prefix == "" {
		cfg.Prefix = domain.KeyPrefix
	}
	dims := inner.Dimensions()
	return &CachedEmbedder{
		inner:   inner,
		store:   s,
		dims:    dims,
		scope:   cfg.Prefix + "emb:" + cfg.Model + ":" + strconv.Itoa(dims) + ":",
		ttl:     cfg.TTL,
		lookups: cfg.Lookups,
		logger:  cfg.Logger,
	}
}

// Dimensions delegates to the wrapped provider.
func (c *CachedEmbedder) Dimensions() int {
	return c.inner.Dimensions()
}

// Embed returns the cached vector or asks the inner provider. A hit
// reports zero tokens since nothing was billed.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.key(text)

	data, err := c.store.Get(ctx, key)
	if err != nil && !errors.Is(err, db.ErrKeyNotFound) {
		c.logger.Warn("Embedding cache lookup failed", zap.String("key", key), zap.Error(err))
	}
	if vec, ok := c.decode(key, data); ok {
		c.count(metrics.CacheHit, 1)
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.count(metrics.CacheMiss, 1)

	res, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	c.put(ctx, key, res.Embedding)
	return res, nil
}

// EmbedBatch looks every text up in one round trip and sends only the
// misses to the inner provider, in one call, preserving input order.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = c.key(t)
	}
	cached, err := c.store.MGet(ctx, keys...)
	if err != nil {
		c.logger.Warn("Embedding cache batch lookup failed", zap.Int("keys", len(keys)), zap.Error(err))
		cached = nil
	}

	out := make([][]float64, len(texts))
	var misses []int
	for i := range texts {
		var data []byte
		if cached != nil {
			data = cached[i]
		}
		if vec, ok := c.decode(keys[i], data); ok {
			out[i] = vec
			continue
		}
		misses = append(misses, i)
	}
	c.count(metrics.CacheHit, len(texts)-len(misses))
	c.count(metrics.CacheMiss, len(misses))

	if len(misses) == 0 {
		return domain.BatchEmbeddingResult{Embeddings: out}, nil
	}

	missTexts := make([]string, len(misses))
	for j, i := range misses {
		missTexts[j] = texts[i]
	}
	res, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("embed batch: %w", err)
	}
	if len(res.Embeddings) != len(misses) {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("embed batch: expected %d embeddings, got %d: %w",
			len(misses), len(res.Embeddings), domain.ErrEmbeddingProviderError)
	}

	for j, i := range misses {
		out[i] = res.Embeddings[j]
		c.put(ctx, keys[i], res.Embeddings[j])
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   out,
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.scope + hex.EncodeToString(sum[:])
}

func (c *CachedEmbedder) count(result string, n int) {
	if c.lookups != nil && n > 0 {
		c.lookups.WithLabelValues(result).Add(float64(n))
	}
}

// decode treats empty and malformed entries as misses, as well as
// vectors whose length differs from the provider's dimensions.
func (c *CachedEmbedder) decode(key string, data []byte) ([]float64, bool) {
	if len(data) == 0 {
		return nil, false
	}
	vec, err := unpack(data)
	if err != nil {
		c.logger.Warn("Discarding malformed cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if c.dims > 0 && len(vec) != c.dims {
		c.logger.Warn("Discarding cached embedding of wrong size",
			zap.String("key", key), zap.Int("got", len(vec)), zap.Int("want", c.dims))
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) put(ctx context.Context, key string, vec []float64) {
	if err := c.store.Set(ctx, key, pack(vec), c.ttl); err != nil {
		c.logger.Warn("Embedding cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// pack stores float64 bits so a hit returns exactly what the provider did.
func pack(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(f))
	}
	return buf
}

func unpack(data []byte) ([]float64, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("cached embedding is %d bytes, not a multiple of 8", len(data))
	}
	v := make([]float64, len(data)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[8*i:]))
	}
	return v, nil
}
