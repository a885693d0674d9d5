package search

import (
	"github.com/Coder-RL/docs-mcp-server/internal/domain"
	"github.com/Coder-RL/docs-mcp-server/internal/domain/search/result"
)

// DefaultLimit is used when a request carries no positive limit.
const DefaultLimit = 5

// Request is a single documentation search.
type Request struct {
	Library    string
	Version    string
	Query      string
	Limit      int
	ExactMatch bool
}

// Outcome is the shaped result of a search.
// Error is set only when the requested version could not be found.
type Outcome struct {
	Results []result.Result
	Error   *OutcomeError
}

// OutcomeError describes a missing version and what the library offers instead.
type OutcomeError struct {
	Message           string                  `json:"message"`
	AvailableVersions []domain.LibraryVersion `json:"available_versions"`
}

func notFoundOutcome(e *domain.VersionNotFoundError) Outcome {
	available := make([]domain.LibraryVersion, len(e.AvailableVersions))
	copy(available, e.AvailableVersions)
	return Outcome{
		Results: []result.Result{},
		Error:   &OutcomeError{Message: e.Error(), AvailableVersions: available},
	}
}
