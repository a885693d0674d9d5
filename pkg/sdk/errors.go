package sdk

import "github.com/Coder-RL/docs-mcp-server/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrLibraryRequired        = domain.ErrLibraryRequired
	ErrVersionNotFound        = domain.ErrVersionNotFound
	ErrProviderConfiguration  = domain.ErrProviderConfiguration
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrDimensionMismatch      = domain.ErrDimensionMismatch
)
