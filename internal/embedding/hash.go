package embedding

import (
	"context"
	"math"
	"unicode/utf16"

	"github.com/Coder-RL/docs-mcp-server/internal/domain"
)

// hashScale maps |hash| into [0, 1].
const hashScale = math.MaxInt32

// Compile-time check: HashEmbedder implements domain.Provider.
var _ domain.Provider = (*HashEmbedder)(nil)

// HashEmbedder produces deterministic unit vectors from a 32-bit rolling
// hash of the input. It needs no network and is bit-for-bit reproducible,
// so it backs tests and offline setups.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder creates a hash embedder. dims <= 0 selects domain.DefaultDimensions.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = domain.DefaultDimensions
	}
	return &HashEmbedder{dimensions: dims}
}

// Dimensions returns the fixed vector size.
func (h *HashEmbedder) Dimensions() int {
	return h.dimensions
}

// Embed implements domain.Embedder.
func (h *HashEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, err
	}
	vec, err := h.Vector(text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

// EmbedBatch implements domain.BatchEmbedder. Each output equals Embed of the same text.
func (h *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchFallback(ctx, h, texts)
}

// Vector computes the unit vector for text.
func (h *HashEmbedder) Vector(text string) ([]float64, error) {
	seed := math.Abs(float64(rollingHash(text))) / hashScale

	raw := make([]float64, h.dimensions)
	var sumSquares float64
	for i := range raw {
		v := math.Sin(seed*float64(i+1))*0.5 + math.Cos(seed*float64(i+2))*0.3
		raw[i] = v
		sumSquares += v * v
	}

	norm := math.Sqrt(sumSquares)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, &domain.DegenerateVectorError{Dimensions: h.dimensions, Norm: norm}
	}

	for i := range raw {
		raw[i] /= norm
	}
	return raw, nil
}

// rollingHash is hash = hash*31 + c over UTF-16 code units with int32 wrap-around.
func rollingHash(text string) int32 {
	var hash int32
	for _, c := range utf16.Encode([]rune(text)) {
		hash = (hash << 5) - hash + int32(c)
	}
	return hash
}
