package chi

import (
	"github.com/Coder-RL/docs-mcp-server/internal/domain"
	"github.com/Coder-RL/docs-mcp-server/internal/domain/search/result"
	searchuc "github.com/Coder-RL/docs-mcp-server/internal/usecase/search"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeValidationFailed       ErrorCode = "validation_failed"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Library    string `json:"library"`
	Version    string `json:"version,omitempty"`
	Query      string `json:"query"`
	Limit      int    `json:"limit,omitempty"`
	ExactMatch bool   `json:"exact_match,omitempty"`
}

// SearchResultItem is a single matched passage.
type SearchResultItem struct {
	ID      string  `json:"id"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
	URL     string  `json:"url,omitempty"`
	Title   string  `json:"title,omitempty"`
	Library string  `json:"library"`
	Version string  `json:"version"`
}

// SearchError reports a missing version and what the library offers instead.
type SearchError struct {
	Message           string                  `json:"message"`
	AvailableVersions []domain.LibraryVersion `json:"available_versions"`
}

// SearchResponse is the body of a successful POST /v1/search.
type SearchResponse struct {
	Results []SearchResultItem `json:"results"`
	Error   *SearchError       `json:"error,omitempty"`
}

// VersionsResponse is the body of GET /v1/libraries/{library}/versions.
type VersionsResponse struct {
	Library  string                  `json:"library"`
	Versions []domain.LibraryVersion `json:"versions"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}

// toUsecase fills request defaults. An empty version means latest for
// resolved searches and the unversioned docs for exact ones.
func (r *SearchRequest) toUsecase(defaultLimit int) searchuc.Request {
	version := r.Version
	if version == "" && !r.ExactMatch {
		version = domain.LatestVersion
	}
	limit := r.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	return searchuc.Request{
		Library:    r.Library,
		Version:    version,
		Query:      r.Query,
		Limit:      limit,
		ExactMatch: r.ExactMatch,
	}
}

func searchResultToDTO(r *result.Result) SearchResultItem {
	return SearchResultItem{
		ID:      r.ID(),
		Score:   r.Score(),
		Content: r.Content(),
		URL:     r.URL(),
		Title:   r.Title(),
		Library: r.Library(),
		Version: r.Version(),
	}
}

func outcomeToDTO(out searchuc.Outcome) SearchResponse {
	items := make([]SearchResultItem, len(out.Results))
	for i := range out.Results {
		items[i] = searchResultToDTO(&out.Results[i])
	}
	resp := SearchResponse{Results: items}
	if out.Error != nil {
		available := out.Error.AvailableVersions
		if available == nil {
			available = []domain.LibraryVersion{}
		}
		resp.Error = &SearchError{Message: out.Error.Message, AvailableVersions: available}
	}
	return resp
}
