package domain

import (
	"context"
	"fmt"
)

// DefaultDimensions matches text-embedding-3-small and is also the
// length of hash fallback vectors when nothing else is configured.
const DefaultDimensions = 1536

// EmbeddingResult is one vector plus the token usage the provider
// billed for it. Local providers report zero usage.
type EmbeddingResult struct {
	Embedding    []float64
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult holds one vector per input text, in input order,
// and the summed usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float64
	PromptTokens int
	TotalTokens  int
}

type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// Provider is what the passage store and the search resolver embed
// with: a configured backend, possibly wrapped in cache, metrics and
// fallback decorators. Every vector it returns has Dimensions() entries.
type Provider interface {
	Embedder
	BatchEmbedder
	Dimensions() int
}

// HealthChecker is implemented by providers that can probe their backend.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// BatchFallback embeds texts one at a time through e. It stops at the
// first failure and reports the failing position.
func BatchFallback(ctx context.Context, e Embedder, texts []string) (BatchEmbeddingResult, error) {
	out := BatchEmbeddingResult{Embeddings: make([][]float64, 0, len(texts))}
	for i := range texts {
		res, err := e.Embed(ctx, texts[i])
		if err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("fallback embed [%d]: %w", i, err)
		}
		out.Embeddings = append(out.Embeddings, res.Embedding)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}
	return out, nil
}
