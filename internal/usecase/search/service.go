package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Coder-RL/docs-mcp-server/internal/domain"
	"github.com/Coder-RL/docs-mcp-server/internal/domain/search/result"
	"github.com/Coder-RL/docs-mcp-server/internal/logger"
	"github.com/Coder-RL/docs-mcp-server/internal/metrics"
)

// Service resolves the requested version of a library and searches its documentation.
type Service struct {
	store  DocumentStore
	logger *zap.Logger
}

// New creates a search service.
func New(store DocumentStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Search runs a documentation search.
// A missing version is reported in Outcome.Error; every other failure is returned as is.
func (s *Service) Search(ctx context.Context, req Request) (Outcome, error) {
	log := logger.FromContextOr(ctx, s.logger)

	if strings.TrimSpace(req.Library) == "" {
		return Outcome{}, domain.ErrLibraryRequired
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}

	mode := metrics.ModeResolved
	if req.ExactMatch {
		mode = metrics.ModeExact
	}

	log.Info("searching documentation",
		zap.String("library", req.Library),
		zap.String("version", req.Version),
		zap.String("query", req.Query),
		zap.Bool("exact_match", req.ExactMatch),
	)

	results, err := s.search(ctx, req)
	if err != nil {
		var notFound *domain.VersionNotFoundError
		if errors.As(err, &notFound) {
			metrics.SearchRequestsTotal.WithLabelValues(mode, metrics.OutcomeVersionNotFound).Inc()
			log.Info("version not found", zap.String("message", notFound.Error()))
			return notFoundOutcome(notFound), nil
		}
		metrics.SearchRequestsTotal.WithLabelValues(mode, metrics.OutcomeError).Inc()
		log.Error("search failed",
			zap.String("library", req.Library),
			zap.String("version", req.Version),
			zap.Error(err),
		)
		return Outcome{}, err
	}

	if results == nil {
		results = []result.Result{}
	}
	metrics.SearchRequestsTotal.WithLabelValues(mode, metrics.OutcomeOK).Inc()
	metrics.SearchResultsReturned.Observe(float64(len(results)))
	log.Info("search completed",
		zap.String("library", req.Library),
		zap.Int("results", len(results)),
	)

	return Outcome{Results: results}, nil
}

func (s *Service) search(ctx context.Context, req Request) ([]result.Result, error) {
	version := req.Version

	if !req.ExactMatch {
		resolved, matched, err := s.store.ResolveVersion(ctx, req.Library, req.Version)
		if err != nil {
			return nil, err
		}
		// No concrete match falls back to the unversioned docs.
		version = domain.Unversioned
		if matched {
			version = resolved
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search %s: %w", req.Library, err)
	}

	return s.store.Search(ctx, req.Library, version, req.Query, req.Limit)
}
