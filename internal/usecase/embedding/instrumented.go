package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Coder-RL/docs-mcp-server/internal/domain"
)

// DefaultMaxAPIBatchSize caps the number of texts sent to the provider in one call.
const DefaultMaxAPIBatchSize = 256

var _ domain.Provider = (*InstrumentedEmbedder)(nil)

// InstrumentedEmbedder is the outermost provider decorator. It logs each
// call, splits large batches into provider-sized chunks and rejects
// vectors of the wrong size. Request counters and latency histograms are
// recorded by the transports, which see the real API calls.
type InstrumentedEmbedder struct {
	inner    domain.Provider
	maxBatch int
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps inner. provider and model label every log line.
func NewInstrumentedEmbedder(inner domain.Provider, provider, model string, logger *zap.Logger) *InstrumentedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedEmbedder{
		inner:    inner,
		maxBatch: DefaultMaxAPIBatchSize,
		logger:   logger.With(zap.String("provider", provider), zap.String("model", model)),
	}
}

// Dimensions delegates to the wrapped provider.
func (p *InstrumentedEmbedder) Dimensions() int {
	return p.inner.Dimensions()
}

// Embed delegates to the inner provider and checks the vector size.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	res, err := p.inner.Embed(ctx, text)
	took := time.Since(start)
	if err != nil {
		p.logger.Error("Embedding request failed", zap.Duration("duration", took), zap.Error(err))
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	if err := p.checkDimensions(res.Embedding); err != nil {
		return domain.EmbeddingResult{}, err
	}

	p.logger.Debug("Embedding request completed",
		zap.Duration("duration", took),
		zap.Int("dimensions", len(res.Embedding)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}

// EmbedBatch sends texts in chunks of at most DefaultMaxAPIBatchSize and
// concatenates the results in input order.
func (p *InstrumentedEmbedder) EmbedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float64, 0, len(texts))}

	for offset := 0; offset < len(texts); offset += p.maxBatch {
		chunk := texts[offset:min(offset+p.maxBatch, len(texts))]

		res, err := p.inner.EmbedBatch(ctx, chunk)
		if err != nil {
			p.logger.Error("Batch embedding request failed",
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		if len(res.Embeddings) != len(chunk) {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: expected %d embeddings, got %d: %w",
				len(chunk), len(res.Embeddings), domain.ErrEmbeddingProviderError)
		}
		for _, vec := range res.Embeddings {
			if err := p.checkDimensions(vec); err != nil {
				return domain.BatchEmbeddingResult{}, err
			}
		}

		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}

	p.logger.Debug("Batch embedding completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}

func (p *InstrumentedEmbedder) checkDimensions(vec []float64) error {
	want := p.inner.Dimensions()
	if want <= 0 || len(vec) == want {
		return nil
	}
	p.logger.Error("Embedding dimension mismatch", zap.Int("expected", want), zap.Int("actual", len(vec)))
	return fmt.Errorf("got %d dimensions, want %d: %w", len(vec), want, domain.ErrDimensionMismatch)
}
