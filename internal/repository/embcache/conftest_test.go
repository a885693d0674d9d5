package embcache

import (
	"context"
	"testing"
	"time"

	"github.com/Coder-RL/docs-mcp-server/internal/db"
	"github.com/Coder-RL/docs-mcp-server/internal/domain"
)

// mockEmbedder returns vec for every text and bills tokens per text.
type mockEmbedder struct {
	vec        []float64
	tokens     int
	err        error
	calls      int
	batchCalls int
	batchSeen  []string
	short      bool // return one embedding fewer than asked
}

func (m *mockEmbedder) Dimensions() int { return len(m.vec) }

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, PromptTokens: m.tokens, TotalTokens: m.tokens}, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	m.batchSeen = append(m.batchSeen, texts...)
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	n := len(texts)
	if m.short {
		n--
	}
	out := make([][]float64, n)
	for i := range out {
		out[i] = m.vec
	}
	total := m.tokens * len(texts)
	return domain.BatchEmbeddingResult{Embeddings: out, PromptTokens: total, TotalTokens: total}, nil
}

// memStore is an in-memory cache store with injectable failures.
type memStore struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	mgetErr error
	setErr  error
	mgets   int
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) MGet(_ context.Context, keys ...string) ([][]byte, error) {
	m.mgets++
	if m.mgetErr != nil {
		return nil, m.mgetErr
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = m.data[k]
	}
	return out, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func newTestCache(t *testing.T, inner *mockEmbedder, cfg Config) (*CachedEmbedder, *memStore) {
	t.Helper()
	if cfg.Model == "" {
		cfg.Model = "mock:test"
	}
	ms := newMemStore()
	return New(inner, ms, cfg), ms
}
