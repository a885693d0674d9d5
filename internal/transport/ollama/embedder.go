package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Coder-RL/docs-mcp-server/internal/domain"
	"github.com/Coder-RL/docs-mcp-server/internal/metrics"
)

// DefaultBaseURL is the local Ollama daemon address.
const DefaultBaseURL = "http://localhost:11434"

const (
	defaultConcurrency = 4
	defaultTimeout     = 2 * time.Minute
	providerName       = "ollama"
)

// Compile-time checks.
var (
	_ domain.Provider      = (*Embedder)(nil)
	_ domain.HealthChecker = (*Embedder)(nil)
)

// Config holds the Ollama provider settings.
type Config struct {
	BaseURL     string
	Model       string
	Dimensions  int
	Concurrency int
	Timeout     time.Duration
	Logger      *zap.Logger
}

// Embedder calls the Ollama embeddings HTTP API.
type Embedder struct {
	client      *resty.Client
	model       string
	dimensions  int
	concurrency int
	logger      *zap.Logger
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
	Error     string    `json:"error"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewEmbedder creates an Ollama embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(base, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &Embedder{
		client:      c,
		model:       cfg.Model,
		dimensions:  cfg.Dimensions,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Dimensions reports the configured vector size (0 means whatever the model emits).
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()

	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(&embedRequest{Model: e.model, Prompt: text}).
		Post("/api/embeddings")
	if err != nil {
		e.recordError("transport")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.EmbeddingResult{}, fmt.Errorf("ollama request: %w", ctxErr)
		}
		return domain.EmbeddingResult{}, fmt.Errorf("ollama request: %v: %w", err, domain.ErrEmbeddingProviderError)
	}
	if resp.StatusCode() != http.StatusOK {
		e.recordError("api_error")
		e.logger.Warn("ollama embedding failed",
			zap.String("model", e.model),
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("ollama status %d: %s: %w",
			resp.StatusCode(), strings.TrimSpace(resp.String()), domain.ErrEmbeddingProviderError)
	}

	var er embedResponse
	if err := json.Unmarshal(resp.Body(), &er); err != nil {
		e.recordError("decode")
		return domain.EmbeddingResult{}, fmt.Errorf("decode response: %v: %w", err, domain.ErrEmbeddingProviderError)
	}
	if er.Error != "" {
		e.recordError("api_error")
		return domain.EmbeddingResult{}, fmt.Errorf("ollama: %s: %w", er.Error, domain.ErrEmbeddingProviderError)
	}
	if len(er.Embedding) == 0 {
		e.recordError("empty_response")
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}
	if e.dimensions > 0 && len(er.Embedding) != e.dimensions {
		e.recordError("dimension_mismatch")
		return domain.EmbeddingResult{}, fmt.Errorf("ollama returned %d dimensions, want %d: %w",
			len(er.Embedding), e.dimensions, domain.ErrDimensionMismatch)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.model).Observe(time.Since(start).Seconds())

	return domain.EmbeddingResult{Embedding: er.Embedding}, nil
}

// EmbedBatch implements domain.BatchEmbedder. The Ollama endpoint takes one
// prompt per call, so texts are fanned out with bounded concurrency.
// Output order matches input order; the first failure cancels the rest.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	embeddings := make([][]float64, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, text := range texts {
		g.Go(func() error {
			res, err := e.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("embed [%d]: %w", i, err)
			}
			embeddings[i] = res.Embedding
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.BatchEmbeddingResult{}, err
	}

	return domain.BatchEmbeddingResult{Embeddings: embeddings}, nil
}

// HealthCheck verifies the daemon is up and the configured model is pulled.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	resp, err := e.client.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return fmt.Errorf("ollama tags: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("ollama status %d", resp.StatusCode())
	}

	var tags tagsResponse
	if err := json.Unmarshal(resp.Body(), &tags); err != nil {
		return fmt.Errorf("decode tags: %w", err)
	}

	want := baseModelName(e.model)
	for _, m := range tags.Models {
		if baseModelName(m.Name) == want {
			return nil
		}
	}
	return errors.New("ollama model " + want + " not found")
}

func (e *Embedder) recordError(kind string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, kind).Inc()
}

// baseModelName strips the ":tag" suffix so "nomic-embed-text" matches "nomic-embed-text:latest".
func baseModelName(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i]
	}
	return name
}
