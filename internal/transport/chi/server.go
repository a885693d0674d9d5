package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Coder-RL/docs-mcp-server/internal/domain"
	healthuc "github.com/Coder-RL/docs-mcp-server/internal/usecase/health"
	searchuc "github.com/Coder-RL/docs-mcp-server/internal/usecase/search"
	"github.com/Coder-RL/docs-mcp-server/internal/version"
)

// defaultMaxLimit caps the result count a client may ask for.
const defaultMaxLimit = 100

// VersionLister lists the known versions of a library.
type VersionLister interface {
	ListVersions(ctx context.Context, library string) ([]domain.LibraryVersion, error)
}

// Limits bounds the search result count accepted from clients. Default
// applies when a request omits limit.
type Limits struct {
	Default int
	Max     int
}

// Server is the HTTP face of the search, version listing and health use
// cases.
type Server struct {
	search   *searchuc.Service
	versions VersionLister
	health   *healthuc.Service
	limits   Limits
	logger   *zap.Logger
}

// NewServer builds a Server with default limits. A nil logger discards logs.
func NewServer(search *searchuc.Service, versions VersionLister, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		search:   search,
		versions: versions,
		health:   health,
		limits:   Limits{Default: searchuc.DefaultLimit, Max: defaultMaxLimit},
		logger:   logger,
	}
}

// WithLimits overrides the non-zero fields of l.
func (s *Server) WithLimits(l Limits) *Server {
	s.limits.Default = cmpOr(l.Default, s.limits.Default)
	s.limits.Max = cmpOr(l.Max, s.limits.Max)
	return s
}

func cmpOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.SearchDocs)
		r.Get("/libraries/{library}/versions", s.ListVersions)
	})
}

// SearchDocs handles POST /v1/search. An unknown version is not an
// error: the reply is 200 with the library's available versions.
func (s *Server) SearchDocs(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if msg := s.validate(&req); msg != "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, msg)
		return
	}

	out, err := s.search.Search(r.Context(), req.toUsecase(s.limits.Default))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomeToDTO(out))
}

func (s *Server) validate(req *SearchRequest) string {
	switch {
	case strings.TrimSpace(req.Library) == "":
		return "library is required"
	case strings.TrimSpace(req.Query) == "":
		return "query is required"
	case req.Limit < 0 || req.Limit > s.limits.Max:
		return fmt.Sprintf("limit must be between 1 and %d", s.limits.Max)
	}
	return ""
}

// ListVersions handles GET /v1/libraries/{library}/versions. The reply
// names the library in its normalized form.
func (s *Server) ListVersions(w http.ResponseWriter, r *http.Request) {
	library := domain.NormalizeLibrary(chi.URLParam(r, "library"))

	versions, err := s.versions.ListVersions(r.Context(), library)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if versions == nil {
		versions = []domain.LibraryVersion{}
	}
	writeJSON(w, http.StatusOK, VersionsResponse{Library: library, Versions: versions})
}

// HealthCheck handles GET /health. Anything short of healthy is a 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	resp := HealthResponse{
		Status:  string(report.Status),
		Checks:  make(map[string]string, len(report.Checks)),
		Version: version.Version,
	}
	for name, res := range report.Checks {
		resp.Checks[name] = string(res)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
