package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	openai "github.com/sashabaranov/go-openai"

	"github.com/Coder-RL/docs-mcp-server/internal/domain"
	"github.com/Coder-RL/docs-mcp-server/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

// fakeAPI serves handler and returns an embedder pointed at it.
func fakeAPI(t *testing.T, model string, handler http.HandlerFunc) *Embedder {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewEmbedder(&Config{APIKey: "test-key", BaseURL: srv.URL, Model: model, Provider: "test"})
}

// replyVectors answers an embeddings call with vecs, listed under the given indexes.
func replyVectors(w http.ResponseWriter, tokens int, indexes []int, vecs ...[]float32) {
	resp := openai.EmbeddingResponse{Object: "list", Model: "test-model"}
	for i, v := range vecs {
		resp.Data = append(resp.Data, openai.Embedding{Object: "embedding", Embedding: v, Index: indexes[i]})
	}
	resp.Usage = openai.Usage{PromptTokens: tokens, TotalTokens: tokens}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func TestEmbedder_Embed(t *testing.T) {
	var req openai.EmbeddingRequest
	emb := fakeAPI(t, "text-embedding-3-small", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		replyVectors(w, 7, []int{0}, []float32{0.5, -0.25, 1})
	})
	emb.dimensions = 3

	res, err := emb.Embed(context.Background(), "how do hooks work")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	want := []float64{0.5, -0.25, 1}
	if len(res.Embedding) != len(want) {
		t.Fatalf("got %d dims, want %d", len(res.Embedding), len(want))
	}
	for i := range want {
		if res.Embedding[i] != want[i] {
			t.Errorf("vec[%d] = %v, want %v", i, res.Embedding[i], want[i])
		}
	}
	if res.PromptTokens != 7 || res.TotalTokens != 7 {
		t.Errorf("usage = %d/%d, want 7/7", res.PromptTokens, res.TotalTokens)
	}
	if req.Dimensions != 3 || req.Model != "text-embedding-3-small" {
		t.Errorf("request = %+v", req)
	}
}

func TestEmbedder_EmbedBatch_RestoresOrder(t *testing.T) {
	var inputs []string
	emb := fakeAPI(t, "test-model", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		inputs = req.Input
		replyVectors(w, 20, []int{2, 0, 1}, []float32{3}, []float32{1}, []float32{2})
	})

	res, err := emb.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(inputs) != 3 {
		t.Errorf("sent %d inputs in one call, want 3", len(inputs))
	}
	for i, v := range res.Embeddings {
		if v[0] != float64(i+1) {
			t.Errorf("embedding %d = %v, want [%d]", i, v, i+1)
		}
	}
	if res.TotalTokens != 20 {
		t.Errorf("TotalTokens = %d, want 20", res.TotalTokens)
	}
}

func TestEmbedder_EmbedBatch_Empty(t *testing.T) {
	emb := fakeAPI(t, "test-model", func(http.ResponseWriter, *http.Request) {
		t.Error("empty batch must not call the API")
	})

	res, err := emb.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embeddings != nil {
		t.Errorf("expected nil embeddings, got %v", res.Embeddings)
	}
}

func TestEmbedder_EmbedBatch_CountMismatch(t *testing.T) {
	emb := fakeAPI(t, "mismatch-model", func(w http.ResponseWriter, _ *http.Request) {
		replyVectors(w, 5, []int{0}, []float32{0.1})
	})

	_, err := emb.EmbedBatch(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	got := testutil.ToFloat64(metrics.EmbeddingErrorsTotal.WithLabelValues("test", "mismatch-model", "count_mismatch"))
	if got != 1 {
		t.Errorf("count_mismatch errors = %v, want 1", got)
	}
}

func TestEmbedder_EmptyResponse(t *testing.T) {
	emb := fakeAPI(t, "empty-model", func(w http.ResponseWriter, _ *http.Request) {
		replyVectors(w, 0, nil)
	})

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	got := testutil.ToFloat64(metrics.EmbeddingErrorsTotal.WithLabelValues("test", "empty-model", "empty_response"))
	if got != 1 {
		t.Errorf("empty_response errors = %v, want 1", got)
	}
}

func TestEmbedder_ErrorReplies(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"openai error object", http.StatusTooManyRequests, `{"error":{"message":"rate limit exceeded","type":"rate_limit_error"}}`, "rate limit exceeded"},
		{"gateway detail", http.StatusBadRequest, `{"detail":"model not found"}`, "model not found"},
		{"gateway message", http.StatusBadGateway, `{"message":"upstream down"}`, "upstream down"},
		{"plain text", http.StatusServiceUnavailable, "overloaded", "overloaded"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			emb := fakeAPI(t, "test-model", func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := emb.Embed(context.Background(), "hello")
			if !errors.Is(err, domain.ErrEmbeddingProviderError) {
				t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tc.wantMsg)
			}
		})
	}
}

func TestEmbedder_CanceledIsNotProviderError(t *testing.T) {
	emb := fakeAPI(t, "test-model", func(w http.ResponseWriter, _ *http.Request) {
		replyVectors(w, 1, []int{0}, []float32{1})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := emb.Embed(ctx, "hello")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Error("cancellation must not be reported as a provider failure")
	}
}

func TestNewEmbedder_Defaults(t *testing.T) {
	emb := NewEmbedder(&Config{APIKey: "k", Model: "text-embedding-3-small", Dimensions: 1536})
	if emb.Dimensions() != 1536 {
		t.Errorf("Dimensions() = %d, want 1536", emb.Dimensions())
	}
	if emb.provider != "openai" {
		t.Errorf("provider = %q, want openai", emb.provider)
	}
	if emb.logger == nil {
		t.Error("logger must default to a no-op logger")
	}
}

func TestEmbedder_HealthCheck(t *testing.T) {
	emb := fakeAPI(t, "m", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	})

	if err := emb.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestEmbedder_HealthCheck_Down(t *testing.T) {
	emb := fakeAPI(t, "m", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	})

	if err := emb.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check error")
	}
}
