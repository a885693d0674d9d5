package sdk

import (
	"context"
	"fmt"

	"github.com/Coder-RL/docs-mcp-server/internal/domain"
)

// Embedder is a custom text embedding provider. It replaces the provider
// selected by WithEmbeddingModel.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
	// Dimensions is the length of every returned vector.
	Dimensions() int
}

// BatchEmbedder vectorizes multiple texts in a single call.
// Optional: when the Embedder also implements it, indexing uses it
// instead of one Embed call per passage.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float64
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries multiple embedding vectors and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float64
	PromptTokens int
	TotalTokens  int
}

// embedderAdapter exposes a public Embedder as a domain.Provider.
type embedderAdapter struct {
	inner Embedder
}

var _ domain.Provider = (*embedderAdapter)(nil)

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *embedderAdapter) EmbedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	be, ok := a.inner.(BatchEmbedder)
	if !ok {
		return domain.BatchFallback(ctx, a, texts)
	}
	r, err := be.EmbedBatch(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("embed batch: %w", err)
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *embedderAdapter) Dimensions() int { return a.inner.Dimensions() }
